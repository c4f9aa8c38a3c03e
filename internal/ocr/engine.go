// Package ocr normalizes heterogeneous OCR backends behind one capability
// interface and isolates per-region failures.
package ocr

import (
	"context"
	"fmt"
	"image"
)

// Result is the canonical recognition output. Confidence is always within
// [0,1] regardless of the backend's native scale.
type Result struct {
	Text       string
	Confidence float64
}

// Engine is the capability interface every OCR backend conforms to.
// Backends are pluggable and substitutable without changing orchestrator
// logic.
type Engine interface {
	// ID identifies the backend (e.g. "tesseract", "easyocr").
	ID() string
	// Recognize extracts text from a region image in the given language
	// (ISO 639-1 code). Implementations report their native confidence;
	// the adapter clamps it into [0,1].
	Recognize(ctx context.Context, img image.Image, language string) (Result, error)
	// Close releases backend resources.
	Close() error
}

// Config selects and parameterizes a backend engine.
type Config struct {
	Engine     string
	EasyOCRURL string
}

// NewEngine constructs the configured backend. An unknown engine name is
// a configuration error.
func NewEngine(cfg Config) (Engine, error) {
	switch cfg.Engine {
	case "tesseract":
		return NewTesseract(), nil
	case "easyocr":
		return NewEasyOCR(cfg.EasyOCRURL), nil
	default:
		return nil, fmt.Errorf("unknown OCR engine %q", cfg.Engine)
	}
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
