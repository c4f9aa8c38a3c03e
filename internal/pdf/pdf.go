package pdf

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/pagesift/pagesift/internal/config"
)

// ExtractPages pulls page images out of a PDF file using pdfcpu and
// returns them filtered to the given selection, ordered by page number.
// Pages without an embedded image are skipped.
func ExtractPages(filename string, selection config.PageSelection) ([]PageImage, error) {
	pageCount, err := api.PageCountFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read PDF %q: %w", filename, err)
	}

	wanted := selection.Pages(pageCount)
	if len(wanted) == 0 {
		return nil, fmt.Errorf("page selection matches no pages (document has %d)", pageCount)
	}

	tempDir, err := os.MkdirTemp("", "pagesift-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	pageStrings := make([]string, len(wanted))
	for i, n := range wanted {
		pageStrings[i] = strconv.Itoa(n)
	}

	if err := api.ExtractImagesFile(filename, tempDir, pageStrings, nil); err != nil {
		return nil, fmt.Errorf("extract images from PDF: %w", err)
	}

	pages, err := collectPageImages(tempDir)
	if err != nil {
		return nil, fmt.Errorf("collect extracted images: %w", err)
	}
	return pages, nil
}

// PageImage pairs an extracted page image with its 1-based page number.
type PageImage struct {
	PageNumber int
	Image      image.Image
}

// collectPageImages walks the extraction directory and keeps the first
// image per page, sorted by page number.
func collectPageImages(dir string) ([]PageImage, error) {
	byPage := make(map[int]image.Image)

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		pageNum, err := parsePageFromFilename(info.Name())
		if err != nil {
			return nil // not a page image
		}
		if _, ok := byPage[pageNum]; ok {
			return nil // keep the first image per page
		}

		img, err := loadImageFile(path)
		if err != nil {
			return nil // skip unreadable images
		}
		byPage[pageNum] = img
		return nil
	})
	if err != nil {
		return nil, err
	}

	numbers := make([]int, 0, len(byPage))
	for n := range byPage {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	pages := make([]PageImage, len(numbers))
	for i, n := range numbers {
		pages[i] = PageImage{PageNumber: n, Image: byPage[n]}
	}
	return pages, nil
}

// loadImageFile loads an image from a file path.
func loadImageFile(path string) (image.Image, error) {
	file, err := os.Open(path) //nolint:gosec // G304: reading files pdfcpu just wrote
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	return img, err
}

// parsePageFromFilename extracts the page number from a pdfcpu output
// filename such as page_1_Im0.png.
func parsePageFromFilename(filename string) (int, error) {
	if !strings.HasPrefix(filename, "page_") {
		return 0, errors.New("not a page file")
	}

	parts := strings.Split(filename, "_")
	if len(parts) < 2 {
		return 0, errors.New("invalid filename format")
	}

	pageNum, err := strconv.Atoi(parts[1])
	if err != nil || pageNum < 1 {
		return 0, errors.New("invalid page number")
	}
	return pageNum, nil
}
