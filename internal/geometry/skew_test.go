package geometry

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linesPage draws a set of horizontal black bars on a white page.
func linesPage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	for y := 100; y < h-100; y += 40 {
		bar := image.Rect(60, y, w-60, y+8)
		draw.Draw(img, bar, image.NewUniform(color.Black), image.Point{}, draw.Src)
	}
	return img
}

func TestEstimateSkewStraightPage(t *testing.T) {
	img := linesPage(600, 800)
	angle := EstimateSkew(img, DefaultSkewOptions())
	assert.InDelta(t, 0.0, angle, 0.51)
}

func TestEstimateSkewBlankPage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 400))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	angle := EstimateSkew(img, DefaultSkewOptions())
	assert.Zero(t, angle)
}

func TestEstimateSkewRotatedPage(t *testing.T) {
	for _, tilt := range []float64{-10, -4, 2.5, 7, 14} {
		img := linesPage(600, 800)
		rotated := Rotate(img, tilt)

		angle := EstimateSkew(rotated, DefaultSkewOptions())
		assert.InDelta(t, tilt, angle, 1.01, "tilt %.1f", tilt)
	}
}

func TestEstimateSkewSampledPage(t *testing.T) {
	// Large pages are sampled on a stride lattice. The estimator must not
	// prefer the unrotated profile just because the sampled rows happen to
	// align with it.
	img := linesPage(600, 800)
	rotated := Rotate(img, 5)

	opts := DefaultSkewOptions()
	opts.MaxSamples = 4000
	angle := EstimateSkew(rotated, opts)
	assert.InDelta(t, 5.0, angle, 1.51)
}

func TestEstimateSkewIgnoresSpecks(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 600, 800))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	for i := 0; i < 20; i++ {
		img.Set(30*i+5, 37*i+9, color.Black)
	}

	// Zero-valued options fall back to the defaults, including the ink
	// floor that treats a speckled-but-empty page as blank.
	angle := EstimateSkew(img, SkewOptions{MaxAngle: 15, AngleStep: 0.5})
	assert.Zero(t, angle)
}

func TestEstimateSkewRespectsMaxAngle(t *testing.T) {
	img := linesPage(600, 800)
	rotated := Rotate(img, 5)

	opts := DefaultSkewOptions()
	opts.MaxAngle = 2
	angle := EstimateSkew(rotated, opts)
	assert.LessOrEqual(t, angle, 2.0)
	assert.GreaterOrEqual(t, angle, -2.0)
}

func TestUnrotateBoxMapsDeskewedFrameBack(t *testing.T) {
	orig := image.NewRGBA(image.Rect(0, 0, 600, 800))
	draw.Draw(orig, orig.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	bar := image.Rect(200, 300, 300, 350)
	draw.Draw(orig, bar, image.NewUniform(color.Black), image.Point{}, draw.Src)

	// Deskewing a page tilted by 5 degrees rotates by -5 onto an expanded
	// canvas; detection happens in that frame.
	deskewed := Rotate(orig, -5)
	db := deskewed.Bounds()

	gray := ToGray(deskewed)
	minX, minY := db.Dx(), db.Dy()
	maxX, maxY := -1, -1
	for y := 0; y < db.Dy(); y++ {
		for x := 0; x < db.Dx(); x++ {
			if gray.GrayAt(x, y).Y <= 128 {
				if x < minX {
					minX = x
				}
				if y < minY {
					minY = y
				}
				if x > maxX {
					maxX = x
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}
	require.Greater(t, maxX, minX)

	detected := NewBox(float64(minX), float64(minY), float64(maxX+1), float64(maxY+1))
	mapped := UnrotateBox(detected, db, orig.Bounds(), 5)

	assert.True(t, mapped.Contains(NewBox(202, 302, 298, 348)),
		"mapped box %+v should cover the source bar %v", mapped, bar)
	assert.GreaterOrEqual(t, mapped.MinX, 0.0)
	assert.GreaterOrEqual(t, mapped.MinY, 0.0)
	assert.LessOrEqual(t, mapped.MaxX, 600.0)
	assert.LessOrEqual(t, mapped.MaxY, 800.0)
	assert.Less(t, mapped.Width(), 130.0)
	assert.Less(t, mapped.Height(), 80.0)
}

func TestUnrotateBoxIdentityAtZero(t *testing.T) {
	box := NewBox(10, 20, 30, 40)
	r := image.Rect(0, 0, 100, 100)
	assert.Equal(t, box, UnrotateBox(box, r, r, 0))
}

func TestOtsuThresholdSeparatesBimodal(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			if x < 50 {
				gray.SetGray(x, y, color.Gray{Y: 20})
			} else {
				gray.SetGray(x, y, color.Gray{Y: 230})
			}
		}
	}

	// Ink pixels sit at or below the threshold, so the inclusive bound of
	// the dark mode is a valid split.
	th := OtsuThreshold(gray)
	assert.GreaterOrEqual(t, th, uint8(20))
	assert.Less(t, th, uint8(230))
}
