package geometry

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// ToGray converts an image to 8-bit grayscale.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	src := imaging.Grayscale(img)
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dst.Set(x, y, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

// Rotate rotates an image counter-clockwise by angle degrees about its
// center. The canvas is resized to avoid cropping and new margins are
// filled with white, matching scanned-page background.
func Rotate(img image.Image, angle float64) image.Image {
	if angle == 0 {
		return img
	}
	return imaging.Rotate(img, angle, color.White)
}

// UnrotateBox maps a box from a deskewed frame, produced by
// Rotate(original, -angle) with its expanded canvas, back into the
// original image frame. It returns the axis-aligned hull of the mapped
// corners, clamped to the original bounds.
func UnrotateBox(box Box, rotated, original image.Rectangle, angle float64) Box {
	if angle == 0 {
		return box
	}

	rad := angle * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	rcx := float64(rotated.Min.X) + float64(rotated.Dx())/2
	rcy := float64(rotated.Min.Y) + float64(rotated.Dy())/2
	ocx := float64(original.Min.X) + float64(original.Dx())/2
	ocy := float64(original.Min.Y) + float64(original.Dy())/2

	corners := [4]Point{
		{X: box.MinX, Y: box.MinY},
		{X: box.MaxX, Y: box.MinY},
		{X: box.MaxX, Y: box.MaxY},
		{X: box.MinX, Y: box.MaxY},
	}
	out := Box{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, c := range corners {
		dx := c.X - rcx
		dy := c.Y - rcy
		// counter-clockwise visual rotation by angle in image coordinates
		x := dx*cos + dy*sin + ocx
		y := -dx*sin + dy*cos + ocy
		out.MinX = math.Min(out.MinX, x)
		out.MinY = math.Min(out.MinY, y)
		out.MaxX = math.Max(out.MaxX, x)
		out.MaxY = math.Max(out.MaxY, y)
	}

	out.MinX = math.Max(out.MinX, float64(original.Min.X))
	out.MinY = math.Max(out.MinY, float64(original.Min.Y))
	out.MaxX = math.Min(out.MaxX, float64(original.Max.X))
	out.MaxY = math.Min(out.MaxY, float64(original.Max.Y))
	return out
}

// Crop returns the sub-image covered by box, clamped to the image bounds.
func Crop(img image.Image, box Box) image.Image {
	rect := box.ToRect(img.Bounds())
	if rect.Empty() {
		return imaging.New(0, 0, color.Transparent)
	}
	return imaging.Crop(img, rect)
}

// OtsuThreshold computes the Otsu binarization threshold for a grayscale
// image. Pixels at or below the returned value are considered ink.
func OtsuThreshold(gray *image.Gray) uint8 {
	var hist [256]int
	b := gray.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 127
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[gray.GrayAt(x, y).Y]++
		}
	}

	var sum float64
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}

	var sumB, wB float64
	var maxVar float64
	var threshold uint8
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > maxVar {
			maxVar = between
			threshold = uint8(t)
		}
	}
	return threshold
}
