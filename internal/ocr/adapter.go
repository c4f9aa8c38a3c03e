package ocr

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/pagesift/pagesift/internal/geometry"
	"github.com/pagesift/pagesift/internal/layout"
)

// AdapterConfig controls region extraction and per-region limits.
type AdapterConfig struct {
	// CropPadding expands the region crop by this many pixels on every
	// side (clamped to page bounds) so descenders and serifs survive.
	CropPadding int
	// Timeout bounds one recognition call. Zero disables the limit.
	Timeout time.Duration
}

// DefaultAdapterConfig returns adapter defaults.
func DefaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		CropPadding: 5,
		Timeout:     30 * time.Second,
	}
}

// Adapter crops region images from a page and routes them through the
// configured backend. It normalizes results and contains failures: a
// backend error or timeout for one region never aborts siblings.
type Adapter struct {
	cfg    AdapterConfig
	engine Engine
}

// NewAdapter wraps an engine with cropping and timeout handling.
func NewAdapter(engine Engine, cfg AdapterConfig) *Adapter {
	if cfg.CropPadding < 0 {
		cfg.CropPadding = 0
	}
	return &Adapter{cfg: cfg, engine: engine}
}

// EngineID reports the wrapped backend's identifier.
func (a *Adapter) EngineID() string { return a.engine.ID() }

// RecognizeRegion crops the region from the page image and runs the
// backend on it. Image-typed regions are never sent to OCR; calling this
// with one is a programming error surfaced as a failure.
func (a *Adapter) RecognizeRegion(ctx context.Context, page image.Image, region layout.Region, language string) (Result, error) {
	if region.Type != layout.RegionText {
		return Result{}, fmt.Errorf("region %s has type %s and is OCR-exempt", region.ID, region.Type)
	}
	if page == nil {
		return Result{}, fmt.Errorf("nil page image")
	}

	box := region.Box.Expand(float64(a.cfg.CropPadding), page.Bounds())
	crop := geometry.Crop(page, box)
	if crop.Bounds().Empty() {
		return Result{}, fmt.Errorf("region %s crop is empty", region.ID)
	}

	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := a.engine.Recognize(ctx, crop, language)
	if err != nil {
		slog.Debug("region recognition failed",
			"region", region.ID, "engine", a.engine.ID(), "error", err)
		return Result{}, err
	}
	res.Confidence = clampConfidence(res.Confidence)
	slog.Debug("region recognized",
		"region", region.ID,
		"engine", a.engine.ID(),
		"confidence", res.Confidence,
		"duration_ms", time.Since(start).Milliseconds())
	return res, nil
}

// Close releases the wrapped backend.
func (a *Adapter) Close() error { return a.engine.Close() }
