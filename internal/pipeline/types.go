package pipeline

import (
	"github.com/pagesift/pagesift/internal/geometry"
	"github.com/pagesift/pagesift/internal/layout"
)

// RegionStatus tracks how far a region has progressed through the pipeline.
type RegionStatus string

const (
	StatusPending           RegionStatus = "pending"
	StatusDetected          RegionStatus = "detected"
	StatusOCRDone           RegionStatus = "ocr_done"
	StatusOCRFailed         RegionStatus = "ocr_failed"
	StatusCorrectionDone    RegionStatus = "correction_done"
	StatusCorrectionSkipped RegionStatus = "correction_skipped"
)

// Region is one detected page region with its recognition results.
type Region struct {
	ID            string            `json:"id" yaml:"id"`
	Type          layout.RegionType `json:"type" yaml:"type"`
	Box           geometry.Box      `json:"box" yaml:"box"`
	OrderIndex    int               `json:"order_index" yaml:"order_index"`
	RawText       string            `json:"raw_text,omitempty" yaml:"raw_text,omitempty"`
	CorrectedText *string           `json:"corrected_text,omitempty" yaml:"corrected_text,omitempty"`
	Confidence    float64           `json:"confidence" yaml:"confidence"`
	Engine        string            `json:"engine,omitempty" yaml:"engine,omitempty"`
	Status        RegionStatus      `json:"status" yaml:"status"`
	Error         string            `json:"error,omitempty" yaml:"error,omitempty"`
}

// Text returns the corrected text when present, the raw text otherwise.
func (r *Region) Text() string {
	if r.CorrectedText != nil {
		return *r.CorrectedText
	}
	return r.RawText
}

// Page is the assembled result for a single page.
type Page struct {
	PageNumber int      `json:"page_number" yaml:"page_number"`
	Width      int      `json:"width" yaml:"width"`
	Height     int      `json:"height" yaml:"height"`
	SkewAngle  float64  `json:"skew_angle_corrected" yaml:"skew_angle_corrected"`
	Regions    []Region `json:"regions" yaml:"regions"`
	Failed     bool     `json:"failed,omitempty" yaml:"failed,omitempty"`
	Error      string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// TextRegions returns the page's text regions in reading order.
func (p *Page) TextRegions() []Region {
	out := make([]Region, 0, len(p.Regions))
	for _, r := range p.Regions {
		if r.Type == layout.RegionText {
			out = append(out, r)
		}
	}
	return out
}

// Document collects the pages of one input in page order.
type Document struct {
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	Pages  []Page `json:"pages" yaml:"pages"`
}
