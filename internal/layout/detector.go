package layout

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/pagesift/pagesift/internal/geometry"
)

// RegionType classifies a detected content region.
type RegionType string

const (
	// RegionText marks a paragraph-like block destined for OCR.
	RegionText RegionType = "text"
	// RegionImage marks a figure/photograph block, exempt from OCR.
	RegionImage RegionType = "image"
)

// Region is a detected, typed, uniquely identified content area on a page.
// IDs follow the format <type>_<n> with n a 1-based counter per type,
// assigned in reading order and never renumbered afterwards.
type Region struct {
	ID         string
	Type       RegionType
	Box        geometry.Box
	OrderIndex int
}

// Config holds segmentation thresholds. Classification is heuristic and
// approximate; these are tunables, not correctness guarantees.
type Config struct {
	// MinRegionArea discards merged regions whose bounding box covers
	// fewer pixels than this (noise specks).
	MinRegionArea int
	// ImageAreaFraction is the minimum fraction of the page area a region
	// must cover to be considered a candidate figure.
	ImageAreaFraction float64
	// MinImageSide is the minimum width and height in pixels for a figure.
	MinImageSide int
	// MergeOverlapRatio merges two components when their bounding boxes
	// overlap by at least this fraction of the smaller box.
	MergeOverlapRatio float64
	// LineGapFraction, times the page height, is the largest vertical gap
	// bridged when grouping text lines into one paragraph region.
	LineGapFraction float64
	// HorizontalGapFactor, times the line gap, is the largest horizontal
	// gap bridged within a row of text.
	HorizontalGapFactor float64
	// FillDensityCutoff separates photographic blocks (dense ink after
	// binarization) from text blocks (sparse line structure).
	FillDensityCutoff float64
	// RowVarianceCutoff keeps dense regions classified as text when their
	// row profile still alternates strongly between lines and gaps.
	RowVarianceCutoff float64
	// BandOverlapRatio controls reading-order row banding: a region joins
	// a band when its vertical overlap with the band exceeds this fraction
	// of the smaller height.
	BandOverlapRatio float64
}

// DefaultConfig returns the segmentation defaults. The merge and split
// thresholds were chosen against synthetic pages rendered at roughly
// 100-150 DPI; see the values' doc comments for their roles.
func DefaultConfig() Config {
	return Config{
		MinRegionArea:       150,
		ImageAreaFraction:   0.015,
		MinImageSide:        50,
		MergeOverlapRatio:   0.2,
		LineGapFraction:     0.012,
		HorizontalGapFactor: 2.0,
		FillDensityCutoff:   0.45,
		RowVarianceCutoff:   0.8,
		BandOverlapRatio:    0.5,
	}
}

// Detector segments a preprocessed page image into ordered, typed,
// uniquely identified regions. Detection is deterministic: identical
// input and configuration yield identical region sets.
type Detector struct {
	cfg Config
}

// NewDetector creates a detector with the given configuration, falling
// back to defaults for unset thresholds.
func NewDetector(cfg Config) *Detector {
	def := DefaultConfig()
	if cfg.MinRegionArea <= 0 {
		cfg.MinRegionArea = def.MinRegionArea
	}
	if cfg.ImageAreaFraction <= 0 {
		cfg.ImageAreaFraction = def.ImageAreaFraction
	}
	if cfg.MinImageSide <= 0 {
		cfg.MinImageSide = def.MinImageSide
	}
	if cfg.MergeOverlapRatio <= 0 {
		cfg.MergeOverlapRatio = def.MergeOverlapRatio
	}
	if cfg.LineGapFraction <= 0 {
		cfg.LineGapFraction = def.LineGapFraction
	}
	if cfg.HorizontalGapFactor <= 0 {
		cfg.HorizontalGapFactor = def.HorizontalGapFactor
	}
	if cfg.FillDensityCutoff <= 0 {
		cfg.FillDensityCutoff = def.FillDensityCutoff
	}
	if cfg.RowVarianceCutoff <= 0 {
		cfg.RowVarianceCutoff = def.RowVarianceCutoff
	}
	if cfg.BandOverlapRatio <= 0 {
		cfg.BandOverlapRatio = def.BandOverlapRatio
	}
	return &Detector{cfg: cfg}
}

// Config returns the detector configuration.
func (d *Detector) Config() Config { return d.cfg }

// Detect segments the image into regions with type, bounding box, reading
// order and ID populated. Zero regions on a blank page is a successful
// result, not an error.
func (d *Detector) Detect(img image.Image) []Region {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	mask := inkMask(img)
	comps := connectedComponents(mask, w, h)
	slog.Debug("connected components extracted", "count", len(comps))

	merged := d.mergeComponents(comps, w, h)

	// Noise filter after merging so individual glyphs survive long enough
	// to be grouped into their paragraph.
	kept := merged[:0]
	for _, c := range merged {
		if c.boxArea() >= d.cfg.MinRegionArea {
			kept = append(kept, c)
		}
	}

	regions := make([]Region, 0, len(kept))
	for _, c := range kept {
		regions = append(regions, Region{
			Type: d.classify(c, mask, w, h),
			Box:  c.box(),
		})
	}

	d.assignReadingOrder(regions)
	slog.Debug("layout detection completed", "regions", len(regions))
	return regions
}

// assignReadingOrder sorts regions into row bands (top-to-bottom, then
// left-to-right within a band), then assigns order indices and IDs.
func (d *Detector) assignReadingOrder(regions []Region) {
	orderRegions(regions, d.cfg.BandOverlapRatio)
	textCount, imageCount := 0, 0
	for i := range regions {
		regions[i].OrderIndex = i
		switch regions[i].Type {
		case RegionImage:
			imageCount++
			regions[i].ID = fmt.Sprintf("%s_%d", RegionImage, imageCount)
		default:
			textCount++
			regions[i].ID = fmt.Sprintf("%s_%d", RegionText, textCount)
		}
	}
}
