package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"math/rand"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// PageConfig describes a synthetic page image used in tests.
type PageConfig struct {
	Width      int
	Height     int
	Background color.Color
	Foreground color.Color
}

// DefaultPageConfig returns a letter-ish white page.
func DefaultPageConfig() PageConfig {
	return PageConfig{
		Width:      640,
		Height:     800,
		Background: color.White,
		Foreground: color.Black,
	}
}

// NewPage creates a blank page image.
func NewPage(cfg PageConfig) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{cfg.Background}, image.Point{}, draw.Src)
	return img
}

// DrawParagraph renders text lines into the page starting at (x, y), one
// line per entry, using the fixed 7x13 test font. Returns the bounding
// rectangle the drawn glyphs actually cover: from the first line's ascent
// down to the last line's descent.
func DrawParagraph(img *image.RGBA, lines []string, x, y int, col color.Color) image.Rectangle {
	face := basicfont.Face7x13
	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil() + 2
	maxWidth := 0
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
	}
	for i, line := range lines {
		drawer.Dot = fixed.P(x, y+(i+1)*lineHeight)
		drawer.DrawString(line)
		if w := font.MeasureString(face, line).Ceil(); w > maxWidth {
			maxWidth = w
		}
	}
	top := y + lineHeight - metrics.Ascent.Ceil()
	bottom := y + len(lines)*lineHeight + metrics.Descent.Ceil()
	return image.Rect(x, top, x+maxWidth, bottom)
}

// DrawPhoto fills a rectangle with deterministic pseudo-photographic
// texture so the layout classifier sees a dense high-variance block.
func DrawPhoto(img *image.RGBA, rect image.Rectangle, seed int64) image.Rectangle {
	rng := rand.New(rand.NewSource(seed))
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rng.Intn(200)),
				G: uint8(rng.Intn(200)),
				B: uint8(rng.Intn(120)),
				A: 255,
			})
		}
	}
	return rect
}

// RepeatLine builds a paragraph of n identical lines, handy for producing
// text blocks with strong horizontal line structure.
func RepeatLine(line string, n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = line
	}
	return lines
}

// TextBlockPage produces a page with a single paragraph block and returns
// the image plus the rectangle the text covers.
func TextBlockPage(cfg PageConfig, text string, lines int) (*image.RGBA, image.Rectangle) {
	img := NewPage(cfg)
	rect := DrawParagraph(img, RepeatLine(text, lines), 60, 60, cfg.Foreground)
	return img, rect
}

// RotatePage rotates a page counter-clockwise with a white fill, mimicking
// a skewed scan. The canvas grows to avoid cropping.
func RotatePage(img image.Image, degrees float64) image.Image {
	if degrees == 0 {
		return img
	}
	return imaging.Rotate(img, degrees, color.White)
}

// LongText returns a multi-word source line for paragraph rendering.
func LongText() string {
	return strings.TrimSpace(strings.Repeat("the quick brown fox jumps over the lazy dog ", 2))
}
