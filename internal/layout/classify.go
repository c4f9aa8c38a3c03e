package layout

import "math"

// classify labels a merged region as text or image. Dense, large blocks
// without line-like row alternation read as photographs; everything else
// reads as text. The cutoffs are configuration, not constants, because
// the heuristic is approximate by nature.
func (d *Detector) classify(c component, mask []bool, w, h int) RegionType {
	areaFraction := float64(c.boxArea()) / float64(w*h)
	if areaFraction < d.cfg.ImageAreaFraction {
		return RegionText
	}
	if c.width() < d.cfg.MinImageSide || c.height() < d.cfg.MinImageSide {
		return RegionText
	}

	density := fillDensity(c, mask, w)
	if density < d.cfg.FillDensityCutoff {
		return RegionText
	}

	// Dense bold text still alternates between ink rows and gap rows;
	// photographic texture fills rows uniformly.
	if rowProfileCV(c, mask, w) >= d.cfg.RowVarianceCutoff {
		return RegionText
	}
	return RegionImage
}

// fillDensity returns the fraction of ink pixels within the component's
// bounding box.
func fillDensity(c component, mask []bool, w int) float64 {
	ink := 0
	for y := c.minY; y <= c.maxY; y++ {
		row := y * w
		for x := c.minX; x <= c.maxX; x++ {
			if mask[row+x] {
				ink++
			}
		}
	}
	return float64(ink) / float64(c.boxArea())
}

// rowProfileCV returns the coefficient of variation of per-row ink counts
// inside the bounding box. Text lines separated by white gaps produce a
// strongly alternating profile and a high value.
func rowProfileCV(c component, mask []bool, w int) float64 {
	rows := c.height()
	if rows < 2 {
		return 0
	}
	counts := make([]float64, rows)
	for y := c.minY; y <= c.maxY; y++ {
		row := y * w
		n := 0.0
		for x := c.minX; x <= c.maxX; x++ {
			if mask[row+x] {
				n++
			}
		}
		counts[y-c.minY] = n
	}
	mean := 0.0
	for _, v := range counts {
		mean += v
	}
	mean /= float64(rows)
	if mean == 0 {
		return 0
	}
	variance := 0.0
	for _, v := range counts {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(rows)
	return math.Sqrt(variance) / mean
}
