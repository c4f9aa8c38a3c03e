package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/pagesift/pagesift/internal/geometry"
	"github.com/pagesift/pagesift/internal/layout"
)

func sampleDocument() *Document {
	corrected := "The quick brown fox"
	return &Document{
		Source: "scan.pdf",
		Pages: []Page{
			{
				PageNumber: 1,
				Width:      640,
				Height:     800,
				SkewAngle:  2.5,
				Regions: []Region{
					{
						ID:            "text_1",
						Type:          layout.RegionText,
						Box:           geometry.NewBox(60, 60, 270, 180),
						OrderIndex:    0,
						RawText:       "Teh qick brown fox",
						CorrectedText: &corrected,
						Confidence:    0.92,
						Engine:        "tesseract",
						Status:        StatusCorrectionDone,
					},
					{
						ID:         "image_1",
						Type:       layout.RegionImage,
						Box:        geometry.NewBox(100, 400, 400, 650),
						OrderIndex: 1,
						Status:     StatusDetected,
					},
				},
			},
			{
				PageNumber: 2,
				Failed:     true,
				Error:      "unreadable page image",
				Regions:    []Region{},
			},
		},
	}
}

func TestFormatDocumentJSON(t *testing.T) {
	out, err := FormatDocument(sampleDocument(), "json")
	require.NoError(t, err)

	var decoded Document
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded.Pages, 2)
	assert.Equal(t, "scan.pdf", decoded.Source)
	assert.Equal(t, "text_1", decoded.Pages[0].Regions[0].ID)
	require.NotNil(t, decoded.Pages[0].Regions[0].CorrectedText)
	assert.Equal(t, "The quick brown fox", *decoded.Pages[0].Regions[0].CorrectedText)
	assert.True(t, decoded.Pages[1].Failed)
}

func TestFormatDocumentYAML(t *testing.T) {
	out, err := FormatDocument(sampleDocument(), "yaml")
	require.NoError(t, err)

	var decoded Document
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded.Pages, 2)
	assert.Equal(t, "image_1", decoded.Pages[0].Regions[1].ID)
}

func TestFormatDocumentText(t *testing.T) {
	out, err := FormatDocument(sampleDocument(), "text")
	require.NoError(t, err)

	assert.Contains(t, out, "--- page 1 ---")
	assert.Contains(t, out, "The quick brown fox")
	assert.NotContains(t, out, "Teh qick", "corrected text replaces the raw text")
	assert.Contains(t, out, "[image_1]")
	assert.Contains(t, out, "--- page 2 ---")
	assert.Contains(t, out, "unreadable page image")
}

func TestFormatDocumentTextShowsOCRFailures(t *testing.T) {
	doc := &Document{Pages: []Page{{
		PageNumber: 1,
		Regions: []Region{{
			ID:     "text_1",
			Type:   layout.RegionText,
			Status: StatusOCRFailed,
			Error:  "engine timeout",
		}},
	}}}

	out, err := FormatDocument(doc, "text")
	require.NoError(t, err)
	assert.Contains(t, out, "text_1: OCR failed: engine timeout")
}

func TestFormatDocumentUnknownFormat(t *testing.T) {
	_, err := FormatDocument(sampleDocument(), "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestRegionTextFallback(t *testing.T) {
	r := Region{RawText: "raw"}
	assert.Equal(t, "raw", r.Text())

	corrected := "fixed"
	r.CorrectedText = &corrected
	assert.Equal(t, "fixed", r.Text())
}

func TestPageTextRegions(t *testing.T) {
	page := sampleDocument().Pages[0]
	texts := page.TextRegions()
	require.Len(t, texts, 1)
	assert.Equal(t, "text_1", texts[0].ID)
}
