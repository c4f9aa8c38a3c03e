package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/pagesift/pagesift/internal/config"
	"github.com/pagesift/pagesift/internal/correction"
	"github.com/pagesift/pagesift/internal/geometry"
	"github.com/pagesift/pagesift/internal/layout"
	"github.com/pagesift/pagesift/internal/ocr"
	"github.com/pagesift/pagesift/internal/preprocess"
)

// Orchestrator drives a page through preprocessing, layout detection,
// OCR and text correction. A single region failing never fails the page;
// the failure is recorded on that region and processing continues.
type Orchestrator struct {
	preprocessor *preprocess.Preprocessor
	detector     *layout.Detector
	adapter      *ocr.Adapter
	corrector    *correction.Service
	language     string
	threshold    float64
	workers      int
}

// Builder constructs an Orchestrator with fluent configuration.
type Builder struct {
	preprocessCfg preprocess.Config
	layoutCfg     layout.Config
	adapterCfg    ocr.AdapterConfig
	engine        ocr.Engine
	corrector     *correction.Service
	language      string
	threshold     float64
	workers       int
}

// NewBuilder creates a builder with component defaults.
func NewBuilder() *Builder {
	return &Builder{
		preprocessCfg: preprocess.DefaultConfig(),
		layoutCfg:     layout.DefaultConfig(),
		adapterCfg:    ocr.DefaultAdapterConfig(),
		language:      "en",
		workers:       2,
	}
}

// WithPreprocess overrides the preprocessing configuration.
func (b *Builder) WithPreprocess(cfg preprocess.Config) *Builder {
	b.preprocessCfg = cfg
	return b
}

// WithLayout overrides the layout detection configuration.
func (b *Builder) WithLayout(cfg layout.Config) *Builder {
	b.layoutCfg = cfg
	return b
}

// WithEngine sets the OCR engine. Required.
func (b *Builder) WithEngine(engine ocr.Engine) *Builder {
	b.engine = engine
	return b
}

// WithAdapterConfig overrides crop padding and per-region timeout.
func (b *Builder) WithAdapterConfig(cfg ocr.AdapterConfig) *Builder {
	b.adapterCfg = cfg
	return b
}

// WithCorrector enables text correction through the given service.
func (b *Builder) WithCorrector(svc *correction.Service) *Builder {
	b.corrector = svc
	return b
}

// WithLanguage sets the recognition and correction language (BCP-47).
func (b *Builder) WithLanguage(lang string) *Builder {
	if lang != "" {
		b.language = lang
	}
	return b
}

// WithConfidenceThreshold sets the minimum confidence below which a
// region's text is kept but flagged instead of corrected.
func (b *Builder) WithConfidenceThreshold(t float64) *Builder {
	b.threshold = t
	return b
}

// WithRegionWorkers sets how many regions are recognized concurrently.
func (b *Builder) WithRegionWorkers(n int) *Builder {
	if n > 0 {
		b.workers = n
	}
	return b
}

// Build validates the configuration and returns the orchestrator.
func (b *Builder) Build() (*Orchestrator, error) {
	if b.engine == nil {
		return nil, fmt.Errorf("pipeline: OCR engine is required")
	}
	return &Orchestrator{
		preprocessor: preprocess.New(b.preprocessCfg),
		detector:     layout.NewDetector(b.layoutCfg),
		adapter:      ocr.NewAdapter(b.engine, b.adapterCfg),
		corrector:    b.corrector,
		language:     b.language,
		threshold:    b.threshold,
		workers:      b.workers,
	}, nil
}

// FromConfig wires an orchestrator from the application configuration,
// creating the engine and corrector it specifies.
func FromConfig(cfg *config.Config) (*Orchestrator, error) {
	pc := cfg.Pipeline

	engine, err := ocr.NewEngine(ocr.Config{
		Engine:     pc.Engine,
		EasyOCRURL: pc.OCR.EasyOCRURL,
	})
	if err != nil {
		return nil, err
	}

	b := NewBuilder().
		WithEngine(engine).
		WithLanguage(pc.Language).
		WithConfidenceThreshold(pc.ConfidenceThreshold).
		WithRegionWorkers(pc.Parallel.RegionWorkers).
		WithPreprocess(preprocess.Config{
			MaxSkewAngle:  pc.Preprocess.MaxSkewAngle,
			AngleStep:     pc.Preprocess.AngleStep,
			SkewTolerance: pc.Preprocess.SkewTolerance,
			DenoiseSigma:  pc.Preprocess.DenoiseSigma,
		}).
		WithLayout(layout.Config{
			MinRegionArea:     pc.Layout.MinRegionArea,
			ImageAreaFraction: pc.Layout.ImageAreaFraction,
			MergeOverlapRatio: pc.Layout.MergeOverlapRatio,
			LineGapFraction:   pc.Layout.LineGapFraction,
			FillDensityCutoff: pc.Layout.FillDensityCutoff,
		}).
		WithAdapterConfig(ocr.AdapterConfig{
			CropPadding: pc.OCR.CropPadding,
			Timeout:     time.Duration(pc.OCR.TimeoutMS) * time.Millisecond,
		})

	if pc.EnableCorrection {
		b.WithCorrector(correctionService(pc))
	}

	return b.Build()
}

// correctionService builds the corrector factory the config asks for.
func correctionService(pc config.PipelineConfig) *correction.Service {
	timeout := time.Duration(pc.Correction.TimeoutMS) * time.Millisecond

	var factory correction.Factory
	switch pc.Correction.Provider {
	case config.CorrectorOpenAI:
		factory = func(language string) (correction.Corrector, error) {
			return correction.NewOpenAICorrector(
				pc.Correction.OpenAIKey, pc.Correction.OpenAIModel, language)
		}
	default:
		factory = func(language string) (correction.Corrector, error) {
			return correction.NewDictionary(language)
		}
	}
	return correction.NewService(factory, timeout)
}

// Close releases the OCR engine and any cached correctors.
func (o *Orchestrator) Close() error {
	err := o.adapter.Close()
	if o.corrector != nil {
		if cerr := o.corrector.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// ProcessPage runs the full pipeline on one page image. It returns a
// failed Page (zero regions, error recorded) rather than an error when
// the page itself cannot be processed; the error return is reserved for
// context cancellation.
func (o *Orchestrator) ProcessPage(ctx context.Context, img image.Image, pageNumber int) (Page, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	if img == nil {
		return failedPage(pageNumber, "nil page image"), nil
	}

	bounds := img.Bounds()
	page := Page{
		PageNumber: pageNumber,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
	}

	clean, angle := o.preprocessor.Preprocess(img)
	page.SkewAngle = angle

	detected := o.detector.Detect(clean)
	page.Regions = make([]Region, len(detected))
	for i, d := range detected {
		page.Regions[i] = Region{
			ID:         d.ID,
			Type:       d.Type,
			Box:        d.Box,
			OrderIndex: d.OrderIndex,
			Status:     StatusDetected,
		}
	}

	if err := o.recognizeRegions(ctx, clean, page.Regions); err != nil {
		return Page{}, err
	}
	o.correctRegions(ctx, page.Regions)

	// Deskewing rotates onto an expanded canvas, so detection and OCR run
	// in that frame. Map the boxes back into the input frame so they stay
	// within the reported page bounds and overlays line up with the
	// original pixels.
	if angle != 0 {
		cleanBounds := clean.Bounds()
		for i := range page.Regions {
			page.Regions[i].Box = geometry.UnrotateBox(page.Regions[i].Box, cleanBounds, bounds, angle)
		}
	}

	slog.Debug("page processed",
		"page", pageNumber,
		"regions", len(page.Regions),
		"skew", angle,
		"duration", time.Since(start))

	return page, nil
}

// regionJob carries one text region through the OCR worker pool.
type regionJob struct {
	index int
}

// recognizeRegions runs OCR over the page's text regions with a bounded
// worker pool. Image regions are skipped. Per-region failures are
// recorded on the region; only context cancellation aborts the page.
func (o *Orchestrator) recognizeRegions(ctx context.Context, pageImg image.Image, regions []Region) error {
	jobs := make(chan regionJob, len(regions))
	var wg sync.WaitGroup

	workers := o.workers
	if workers <= 0 {
		workers = 1
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				o.recognizeOne(ctx, pageImg, &regions[job.index])
			}
		}()
	}

	for i := range regions {
		if regions[i].Type != layout.RegionText {
			continue
		}
		select {
		case jobs <- regionJob{index: i}:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	return ctx.Err()
}

// recognizeOne performs OCR for a single region and records the outcome.
func (o *Orchestrator) recognizeOne(ctx context.Context, pageImg image.Image, region *Region) {
	if err := ctx.Err(); err != nil {
		region.Status = StatusOCRFailed
		region.Error = err.Error()
		return
	}

	lr := layout.Region{ID: region.ID, Type: region.Type, Box: region.Box, OrderIndex: region.OrderIndex}
	result, err := o.adapter.RecognizeRegion(ctx, pageImg, lr, o.language)
	if err != nil {
		region.Status = StatusOCRFailed
		region.Error = err.Error()
		slog.Warn("region OCR failed", "region", region.ID, "error", err)
		return
	}

	region.RawText = result.Text
	region.Confidence = result.Confidence
	region.Engine = o.adapter.EngineID()
	region.Status = StatusOCRDone
}

// correctRegions applies text correction to successfully recognized text
// regions. Low-confidence regions keep their raw text and are marked
// skipped; correction failures likewise fall back to the raw text.
func (o *Orchestrator) correctRegions(ctx context.Context, regions []Region) {
	for i := range regions {
		region := &regions[i]
		if region.Type != layout.RegionText || region.Status != StatusOCRDone {
			continue
		}
		if o.corrector == nil || region.RawText == "" {
			region.Status = StatusCorrectionSkipped
			continue
		}
		if region.Confidence < o.threshold {
			region.Status = StatusCorrectionSkipped
			slog.Debug("correction skipped, confidence below threshold",
				"region", region.ID, "confidence", region.Confidence)
			continue
		}

		corrected, err := o.corrector.Correct(ctx, region.RawText, o.language)
		if err != nil {
			region.Status = StatusCorrectionSkipped
			slog.Warn("correction failed", "region", region.ID, "error", err)
			continue
		}
		region.CorrectedText = &corrected
		region.Status = StatusCorrectionDone
	}
}

// failedPage builds the page result for an unprocessable page.
func failedPage(pageNumber int, msg string) Page {
	return Page{
		PageNumber: pageNumber,
		Regions:    []Region{},
		Failed:     true,
		Error:      msg,
	}
}
