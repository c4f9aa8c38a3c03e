package pipeline

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"github.com/pagesift/pagesift/internal/geometry"
	"github.com/pagesift/pagesift/internal/layout"
)

var (
	textOutline  = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	imageOutline = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)

// RenderOverlay draws the detected region boxes and IDs onto a copy of
// the page image. Text regions get blue outlines, image regions red.
// The input image is never modified.
func RenderOverlay(img image.Image, regions []Region) *image.RGBA {
	bounds := img.Bounds()
	overlay := image.NewRGBA(bounds)
	draw.Draw(overlay, bounds, img, bounds.Min, draw.Src)

	for _, region := range regions {
		col := textOutline
		if region.Type == layout.RegionImage {
			col = imageOutline
		}
		rect := region.Box.ToRect(bounds)
		geometry.DrawRect(overlay, rect, col, 2)

		labelY := rect.Min.Y - 3
		if labelY-geometry.LabelHeight() < bounds.Min.Y {
			labelY = rect.Min.Y + geometry.LabelHeight() + 3
		}
		geometry.DrawLabel(overlay, region.ID, rect.Min.X, labelY, col)
	}
	return overlay
}

// SaveOverlay renders the overlay for a page and writes it as a PNG
// under dir, named page_<n>_overlay.png.
func SaveOverlay(dir string, img image.Image, page Page) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create overlay directory: %w", err)
	}

	overlay := RenderOverlay(img, page.Regions)
	path := filepath.Join(dir, fmt.Sprintf("page_%d_overlay.png", page.PageNumber))

	f, err := os.Create(path) //nolint:gosec // path is built from the configured directory
	if err != nil {
		return "", fmt.Errorf("create overlay file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := png.Encode(f, overlay); err != nil {
		return "", fmt.Errorf("encode overlay: %w", err)
	}
	return path, nil
}
