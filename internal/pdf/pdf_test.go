package pdf

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagesift/pagesift/internal/config"
)

func parseSelection(t *testing.T, expr string) config.PageSelection {
	t.Helper()
	sel, err := config.ParsePageSelection(expr)
	require.NoError(t, err)
	return sel
}

func TestParsePageFromFilename(t *testing.T) {
	cases := map[string]int{
		"page_1_Im0.png":    1,
		"page_12_Im3.jpg":   12,
		"page_7_image_1.pn": 7,
	}
	for name, want := range cases {
		got, err := parsePageFromFilename(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestParsePageFromFilenameRejects(t *testing.T) {
	for _, name := range []string{"thumb.png", "page_.png", "page_x_Im0.png", "page_0_Im0.png", "readme.txt"} {
		_, err := parsePageFromFilename(name)
		assert.Error(t, err, name)
	}
}

func TestCollectPageImages(t *testing.T) {
	dir := t.TempDir()
	writePNG := func(name string) {
		f, err := os.Create(filepath.Join(dir, name))
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 8, 8))))
		require.NoError(t, f.Close())
	}
	writePNG("page_2_Im0.png")
	writePNG("page_1_Im0.png")
	// A second image on page 1 is ignored; only the first kept per page.
	writePNG("page_1_Im1.png")
	// Unparseable files are skipped.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	pages, err := collectPageImages(dir)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].PageNumber)
	assert.Equal(t, 2, pages[1].PageNumber)
	assert.NotNil(t, pages[0].Image)
}

func TestCollectPageImagesEmptyDir(t *testing.T) {
	pages, err := collectPageImages(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestExtractPagesMissingFile(t *testing.T) {
	_, err := ExtractPages(filepath.Join(t.TempDir(), "missing.pdf"), parseSelection(t, "all"))
	assert.Error(t, err)
}
