package pipeline

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagesift/pagesift/internal/geometry"
	"github.com/pagesift/pagesift/internal/layout"
	"github.com/pagesift/pagesift/internal/testutil"
)

func overlayRegions() []Region {
	return []Region{
		{ID: "text_1", Type: layout.RegionText, Box: geometry.NewBox(60, 60, 270, 180)},
		{ID: "image_1", Type: layout.RegionImage, Box: geometry.NewBox(100, 400, 400, 650)},
	}
}

func TestRenderOverlayColors(t *testing.T) {
	page := testutil.NewPage(testutil.DefaultPageConfig())
	overlay := RenderOverlay(page, overlayRegions())

	// Text outline pixel on the top edge of the text box is blue.
	r, g, b, _ := overlay.At(150, 60).RGBA()
	assert.Zero(t, r>>8)
	assert.Zero(t, g>>8)
	assert.Equal(t, uint32(255), b>>8)

	// Image outline pixel on the top edge of the image box is red.
	r, g, b, _ = overlay.At(200, 400).RGBA()
	assert.Equal(t, uint32(255), r>>8)
	assert.Zero(t, g>>8)
	assert.Zero(t, b>>8)
}

func TestRenderOverlayDoesNotModifyInput(t *testing.T) {
	page := testutil.NewPage(testutil.DefaultPageConfig())
	before := color.RGBAModel.Convert(page.At(150, 60))

	_ = RenderOverlay(page, overlayRegions())

	after := color.RGBAModel.Convert(page.At(150, 60))
	assert.Equal(t, before, after)
}

func TestRenderOverlayPreservesBounds(t *testing.T) {
	page := testutil.NewPage(testutil.DefaultPageConfig())
	overlay := RenderOverlay(page, nil)
	assert.Equal(t, page.Bounds(), overlay.Bounds())
}

func TestSaveOverlayWritesPNG(t *testing.T) {
	dir := t.TempDir()
	page := testutil.NewPage(testutil.DefaultPageConfig())
	result := Page{PageNumber: 7, Regions: overlayRegions()}

	path, err := SaveOverlay(dir, page, result)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "page_7_overlay.png"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestSaveOverlayCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "overlays")
	page := testutil.NewPage(testutil.DefaultPageConfig())

	_, err := SaveOverlay(dir, page, Page{PageNumber: 1})
	require.NoError(t, err)

	_, err = os.Stat(dir)
	assert.NoError(t, err)
}

func TestRenderOverlayBoxNearTopEdge(t *testing.T) {
	page := testutil.NewPage(testutil.DefaultPageConfig())
	regions := []Region{{ID: "text_1", Type: layout.RegionText, Box: geometry.NewBox(10, 2, 200, 60)}}

	// Label flips below the box top instead of escaping the canvas.
	overlay := RenderOverlay(page, regions)
	assert.Equal(t, image.Rect(0, 0, 640, 800), overlay.Bounds())
}
