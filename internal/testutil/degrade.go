package testutil

import (
	"image"
	"image/color"
	"math/rand"
)

// DegradeConfig controls synthetic scan degradation applied to clean pages.
// It mirrors the knobs of the artifact generator that produces OCR test
// corpora from clean renders.
type DegradeConfig struct {
	Rotation     float64 // skew in degrees
	NoiseStdDev  float64 // gaussian pixel noise, 0 disables
	SpeckleCount int     // number of random dark specks
	Seed         int64
}

// Degrade returns a degraded copy of the page: skew first, then noise and
// specks. The input is never modified.
func Degrade(img image.Image, cfg DegradeConfig) image.Image {
	out := RotatePage(img, cfg.Rotation)
	if cfg.NoiseStdDev <= 0 && cfg.SpeckleCount <= 0 {
		return out
	}

	b := out.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	rng := rand.New(rand.NewSource(cfg.Seed))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.RGBAModel.Convert(out.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA)
			if cfg.NoiseStdDev > 0 {
				n := rng.NormFloat64() * cfg.NoiseStdDev
				c.R = clampByte(float64(c.R) + n)
				c.G = clampByte(float64(c.G) + n)
				c.B = clampByte(float64(c.B) + n)
			}
			dst.SetRGBA(x, y, c)
		}
	}
	for i := 0; i < cfg.SpeckleCount; i++ {
		x := rng.Intn(b.Dx())
		y := rng.Intn(b.Dy())
		dst.SetRGBA(x, y, color.RGBA{A: 255})
	}
	return dst
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
