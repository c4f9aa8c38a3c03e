package geometry

import (
	"image"
	"math"
)

// SkewOptions controls skew estimation.
type SkewOptions struct {
	MaxAngle       float64 // search limit in degrees on either side of zero
	AngleStep      float64 // search resolution in degrees
	MaxSamples     int     // cap on ink pixels sampled for scoring
	MinInkFraction float64 // below this ink coverage the page is treated as blank
}

// DefaultSkewOptions returns the defaults used by the page preprocessor.
func DefaultSkewOptions() SkewOptions {
	return SkewOptions{
		MaxAngle:       15.0,
		AngleStep:      0.5,
		MaxSamples:     50000,
		MinInkFraction: 0.001,
	}
}

// EstimateSkew estimates the dominant text-line tilt of a page image in
// degrees using a projection-profile search. A positive result means the
// content is rotated counter-clockwise; rotating the image by the negated
// result levels the text lines. Returns 0 when no dominant orientation is
// found (blank or near-blank page).
func EstimateSkew(img image.Image, opts SkewOptions) float64 {
	if img == nil {
		return 0
	}
	if opts.MaxAngle <= 0 {
		opts.MaxAngle = DefaultSkewOptions().MaxAngle
	}
	if opts.AngleStep <= 0 {
		opts.AngleStep = DefaultSkewOptions().AngleStep
	}
	if opts.MaxSamples <= 0 {
		opts.MaxSamples = DefaultSkewOptions().MaxSamples
	}
	if opts.MinInkFraction <= 0 {
		opts.MinInkFraction = DefaultSkewOptions().MinInkFraction
	}

	gray := ToGray(img)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 2 || h < 2 {
		return 0
	}
	threshold := OtsuThreshold(gray)

	pts, total, stride := collectInkPoints(gray, threshold, opts.MaxSamples)
	if total == 0 || float64(len(pts))/float64(total) < opts.MinInkFraction {
		return 0
	}

	cx := float64(w) / 2
	cy := float64(h) / 2

	bestAngle := 0.0
	bestScore := -1.0
	// The histogram bins rows at the sampling stride. Sampled ink rows sit
	// on a lattice of that pitch; per-pixel bins would leave every other
	// bin empty and reward angle 0 with an aliased profile.
	rows := make([]float64, h/stride+2)
	for angle := -opts.MaxAngle; angle <= opts.MaxAngle+1e-9; angle += opts.AngleStep {
		score := projectionScore(pts, cx, cy, angle, float64(stride), rows)
		if score > bestScore {
			bestScore = score
			bestAngle = angle
		}
	}

	// A flat profile means no dominant orientation.
	if bestScore <= 0 {
		return 0
	}
	return bestAngle
}

// collectInkPoints samples pixels at or below the ink threshold. The stride
// is chosen so the sample count stays near maxSamples; it also returns the
// number of pixels visited so callers can judge ink coverage, and the
// stride itself so the projection histogram can bin rows at the same pitch.
func collectInkPoints(gray *image.Gray, threshold uint8, maxSamples int) ([]Point, int, int) {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	stride := 1
	for (w/stride)*(h/stride) > maxSamples*8 {
		stride++
	}
	var pts []Point
	visited := 0
	for y := 0; y < h; y += stride {
		for x := 0; x < w; x += stride {
			visited++
			if gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y <= threshold {
				pts = append(pts, Point{X: float64(x), Y: float64(y)})
				if len(pts) >= maxSamples {
					return pts, visited, stride
				}
			}
		}
	}
	return pts, visited, stride
}

// projectionScore rotates the ink points by -angle and measures the
// sharpness of the resulting horizontal projection profile as the sum of
// squared first differences of the row histogram, binned at binSize.
func projectionScore(pts []Point, cx, cy, angle, binSize float64, rows []float64) float64 {
	for i := range rows {
		rows[i] = 0
	}
	rad := angle * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	n := len(rows)
	for _, p := range pts {
		dx := p.X - cx
		dy := p.Y - cy
		// inverse of a counter-clockwise visual rotation in image coordinates
		ry := dx*sin + dy*cos + cy
		row := int(ry / binSize)
		if row >= 0 && row < n {
			rows[row]++
		}
	}
	score := 0.0
	for i := 1; i < n; i++ {
		d := rows[i] - rows[i-1]
		score += d * d
	}
	return score
}
