package layout

import (
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagesift/pagesift/internal/geometry"
	"github.com/pagesift/pagesift/internal/testutil"
)

// sampleLine fits comfortably on the default 640px-wide test page.
const sampleLine = "the quick brown fox jumps over"

// twoBlockPage renders a paragraph above a photo block, the standard
// mixed-content page used across these tests.
func twoBlockPage(t *testing.T) (*image.RGBA, image.Rectangle, image.Rectangle) {
	t.Helper()
	page := testutil.NewPage(testutil.DefaultPageConfig())
	textRect := testutil.DrawParagraph(page, testutil.RepeatLine(sampleLine, 8), 60, 60, color.Black)
	photoRect := testutil.DrawPhoto(page, image.Rect(100, 400, 400, 650), 42)
	return page, textRect, photoRect
}

func TestDetectBlankPage(t *testing.T) {
	page := testutil.NewPage(testutil.DefaultPageConfig())
	regions := NewDetector(DefaultConfig()).Detect(page)
	assert.Empty(t, regions)
}

func TestDetectSingleParagraph(t *testing.T) {
	page, textRect := testutil.TextBlockPage(testutil.DefaultPageConfig(), sampleLine, 8)
	regions := NewDetector(DefaultConfig()).Detect(page)

	require.Len(t, regions, 1)
	r := regions[0]
	assert.Equal(t, RegionText, r.Type)
	assert.Equal(t, "text_1", r.ID)
	assert.Equal(t, 0, r.OrderIndex)

	// The detected box must cover the drawn text.
	assert.True(t, r.Box.Contains(geometry.FromRect(textRect.Inset(4))),
		"detected box %+v does not cover text %+v", r.Box, textRect)
}

func TestDetectTextAndImage(t *testing.T) {
	page, textRect, photoRect := twoBlockPage(t)
	regions := NewDetector(DefaultConfig()).Detect(page)

	require.Len(t, regions, 2)

	// Reading order: paragraph sits above the photo.
	assert.Equal(t, RegionText, regions[0].Type)
	assert.Equal(t, "text_1", regions[0].ID)
	assert.Equal(t, RegionImage, regions[1].Type)
	assert.Equal(t, "image_1", regions[1].ID)

	assert.True(t, regions[0].Box.Contains(geometry.FromRect(textRect.Inset(4))))
	assert.True(t, regions[1].Box.Contains(geometry.FromRect(photoRect.Inset(4))))
}

func TestDetectBoxesWithinPageBounds(t *testing.T) {
	page, _, _ := twoBlockPage(t)
	pageBox := geometry.FromRect(page.Bounds())

	for _, r := range NewDetector(DefaultConfig()).Detect(page) {
		assert.True(t, pageBox.Contains(r.Box), "region %s box %+v outside page", r.ID, r.Box)
		assert.False(t, r.Box.Empty(), "region %s has an empty box", r.ID)
	}
}

func TestDetectDeterministic(t *testing.T) {
	page, _, _ := twoBlockPage(t)
	det := NewDetector(DefaultConfig())

	first := det.Detect(page)
	for i := 0; i < 5; i++ {
		again := det.Detect(page)
		assert.Equal(t, first, again)
	}
}

func TestDetectIDsUniqueAndSequential(t *testing.T) {
	page := testutil.NewPage(testutil.DefaultPageConfig())
	testutil.DrawParagraph(page, testutil.RepeatLine(sampleLine, 5), 60, 40, color.Black)
	testutil.DrawParagraph(page, testutil.RepeatLine(sampleLine, 5), 60, 300, color.Black)
	testutil.DrawPhoto(page, image.Rect(80, 520, 300, 700), 7)
	testutil.DrawPhoto(page, image.Rect(380, 520, 600, 700), 8)

	regions := NewDetector(DefaultConfig()).Detect(page)
	require.Len(t, regions, 4)

	seen := make(map[string]bool)
	textN, imageN := 0, 0
	for i, r := range regions {
		assert.Equal(t, i, r.OrderIndex)
		assert.False(t, seen[r.ID], "duplicate ID %s", r.ID)
		seen[r.ID] = true
		switch r.Type {
		case RegionText:
			textN++
			assert.Equal(t, fmt.Sprintf("text_%d", textN), r.ID)
		case RegionImage:
			imageN++
			assert.Equal(t, fmt.Sprintf("image_%d", imageN), r.ID)
		}
	}
	assert.Equal(t, 2, textN)
	assert.Equal(t, 2, imageN)
}

func TestDetectSideBySideImagesOrderedLeftToRight(t *testing.T) {
	page := testutil.NewPage(testutil.DefaultPageConfig())
	left := testutil.DrawPhoto(page, image.Rect(60, 200, 280, 420), 1)
	right := testutil.DrawPhoto(page, image.Rect(360, 210, 580, 430), 2)

	regions := NewDetector(DefaultConfig()).Detect(page)
	require.Len(t, regions, 2)

	assert.Equal(t, "image_1", regions[0].ID)
	assert.Equal(t, "image_2", regions[1].ID)
	assert.Less(t, regions[0].Box.MinX, regions[1].Box.MinX)
	assert.True(t, regions[0].Box.Contains(geometry.FromRect(left.Inset(4))))
	assert.True(t, regions[1].Box.Contains(geometry.FromRect(right.Inset(4))))
}

func TestDetectIgnoresNoiseSpecks(t *testing.T) {
	page := testutil.NewPage(testutil.DefaultPageConfig())
	// A few isolated dark specks, each far below the area floor.
	for _, p := range []image.Point{{30, 30}, {500, 100}, {300, 700}} {
		testutil.DrawPhoto(page, image.Rect(p.X, p.Y, p.X+3, p.Y+3), int64(p.X))
	}

	regions := NewDetector(DefaultConfig()).Detect(page)
	assert.Empty(t, regions)
}

func TestDetectNilImage(t *testing.T) {
	assert.Nil(t, NewDetector(DefaultConfig()).Detect(nil))
}
