package layout

import (
	"image"

	"github.com/pagesift/pagesift/internal/geometry"
)

// inkMask binarizes the page with an Otsu threshold. True marks ink
// (pixels at or below the threshold on the grayscale page).
func inkMask(img image.Image) []bool {
	gray := geometry.ToGray(img)
	threshold := geometry.OtsuThreshold(gray)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	mask := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y <= threshold {
				mask[y*w+x] = true
			}
		}
	}
	return mask
}
