// Package preprocess cleans raw page images before layout detection:
// optional denoising followed by skew estimation and correction.
package preprocess

import (
	"image"
	"log/slog"
	"math"

	"github.com/disintegration/imaging"

	"github.com/pagesift/pagesift/internal/geometry"
)

// Config controls page preprocessing.
type Config struct {
	// MaxSkewAngle bounds the skew search in degrees on either side of zero.
	MaxSkewAngle float64
	// AngleStep is the skew search resolution in degrees.
	AngleStep float64
	// SkewTolerance is the residual skew below which no rotation is applied.
	SkewTolerance float64
	// DenoiseSigma enables gaussian denoising when positive.
	DenoiseSigma float64
}

// DefaultConfig returns preprocessing defaults.
func DefaultConfig() Config {
	return Config{
		MaxSkewAngle:  15.0,
		AngleStep:     0.5,
		SkewTolerance: 0.5,
		DenoiseSigma:  0,
	}
}

// Preprocessor deskews and cleans raw page images.
type Preprocessor struct {
	cfg Config
}

// New creates a preprocessor, filling unset fields with defaults.
func New(cfg Config) *Preprocessor {
	def := DefaultConfig()
	if cfg.MaxSkewAngle <= 0 {
		cfg.MaxSkewAngle = def.MaxSkewAngle
	}
	if cfg.AngleStep <= 0 {
		cfg.AngleStep = def.AngleStep
	}
	if cfg.SkewTolerance <= 0 {
		cfg.SkewTolerance = def.SkewTolerance
	}
	return &Preprocessor{cfg: cfg}
}

// Config returns the preprocessor configuration.
func (p *Preprocessor) Config() Config { return p.cfg }

// Preprocess denoises and deskews a raw page image. It never fails: on
// degenerate input (nil or blank page) the input is returned unchanged
// with a zero skew angle. The returned angle is the detected skew that
// was corrected, in degrees.
func (p *Preprocessor) Preprocess(img image.Image) (image.Image, float64) {
	if img == nil {
		return nil, 0
	}

	clean := img
	if p.cfg.DenoiseSigma > 0 {
		clean = imaging.Blur(clean, p.cfg.DenoiseSigma)
	}

	angle := geometry.EstimateSkew(clean, geometry.SkewOptions{
		MaxAngle:  p.cfg.MaxSkewAngle,
		AngleStep: p.cfg.AngleStep,
	})
	if math.Abs(angle) < p.cfg.SkewTolerance {
		slog.Debug("skew negligible, skipping rotation", "angle", angle)
		return clean, 0
	}

	slog.Debug("correcting page skew", "angle", angle)
	return geometry.Rotate(clean, -angle), angle
}
