package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Supported OCR engine names.
const (
	EngineTesseract = "tesseract"
	EngineEasyOCR   = "easyocr"
)

// Supported correction providers.
const (
	CorrectorDictionary = "dictionary"
	CorrectorOpenAI     = "openai"
)

// Config represents the complete configuration for the pagesift
// application. It is populated from configuration files, environment
// variables, and command-line flags.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output" json:"output"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server" json:"server"`
}

// PipelineConfig contains document processing settings.
type PipelineConfig struct {
	// Pages is a page-selection expression: "all", a comma-separated list
	// of 1-based page numbers, or inclusive ranges like "2-5".
	Pages string `mapstructure:"pages" yaml:"pages" json:"pages"`

	Engine              string  `mapstructure:"engine" yaml:"engine" json:"engine"`
	Language            string  `mapstructure:"language" yaml:"language" json:"language"`
	EnableCorrection    bool    `mapstructure:"enable_correction" yaml:"enable_correction" json:"enable_correction"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold" yaml:"confidence_threshold" json:"confidence_threshold"`

	Preprocess PreprocessConfig `mapstructure:"preprocess" yaml:"preprocess" json:"preprocess"`
	Layout     LayoutConfig     `mapstructure:"layout" yaml:"layout" json:"layout"`
	OCR        OCRConfig        `mapstructure:"ocr" yaml:"ocr" json:"ocr"`
	Correction CorrectionConfig `mapstructure:"correction" yaml:"correction" json:"correction"`
	Parallel   ParallelConfig   `mapstructure:"parallel" yaml:"parallel" json:"parallel"`
}

// PreprocessConfig contains page cleanup settings.
type PreprocessConfig struct {
	MaxSkewAngle  float64 `mapstructure:"max_skew_angle" yaml:"max_skew_angle" json:"max_skew_angle"`
	AngleStep     float64 `mapstructure:"angle_step" yaml:"angle_step" json:"angle_step"`
	SkewTolerance float64 `mapstructure:"skew_tolerance" yaml:"skew_tolerance" json:"skew_tolerance"`
	DenoiseSigma  float64 `mapstructure:"denoise_sigma" yaml:"denoise_sigma" json:"denoise_sigma"`
}

// LayoutConfig contains region segmentation thresholds.
type LayoutConfig struct {
	MinRegionArea     int     `mapstructure:"min_region_area" yaml:"min_region_area" json:"min_region_area"`
	ImageAreaFraction float64 `mapstructure:"image_area_fraction" yaml:"image_area_fraction" json:"image_area_fraction"`
	MergeOverlapRatio float64 `mapstructure:"merge_overlap_ratio" yaml:"merge_overlap_ratio" json:"merge_overlap_ratio"`
	LineGapFraction   float64 `mapstructure:"line_gap_fraction" yaml:"line_gap_fraction" json:"line_gap_fraction"`
	FillDensityCutoff float64 `mapstructure:"fill_density_cutoff" yaml:"fill_density_cutoff" json:"fill_density_cutoff"`
}

// OCRConfig contains engine backend settings.
type OCRConfig struct {
	TimeoutMS   int    `mapstructure:"timeout_ms" yaml:"timeout_ms" json:"timeout_ms"`
	CropPadding int    `mapstructure:"crop_padding" yaml:"crop_padding" json:"crop_padding"`
	EasyOCRURL  string `mapstructure:"easyocr_url" yaml:"easyocr_url" json:"easyocr_url"`
}

// CorrectionConfig contains text correction settings.
type CorrectionConfig struct {
	Provider    string `mapstructure:"provider" yaml:"provider" json:"provider"`
	TimeoutMS   int    `mapstructure:"timeout_ms" yaml:"timeout_ms" json:"timeout_ms"`
	OpenAIModel string `mapstructure:"openai_model" yaml:"openai_model" json:"openai_model"`
	OpenAIKey   string `mapstructure:"openai_key" yaml:"openai_key" json:"openai_key"`
}

// ParallelConfig contains worker pool sizing.
type ParallelConfig struct {
	PageWorkers   int `mapstructure:"page_workers" yaml:"page_workers" json:"page_workers"`
	RegionWorkers int `mapstructure:"region_workers" yaml:"region_workers" json:"region_workers"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format     string `mapstructure:"format" yaml:"format" json:"format"`
	File       string `mapstructure:"file" yaml:"file" json:"file"`
	OverlayDir string `mapstructure:"overlay_dir" yaml:"overlay_dir" json:"overlay_dir"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	OverlayEnabled  bool   `mapstructure:"overlay_enabled" yaml:"overlay_enabled" json:"overlay_enabled"`
}

// Validate checks the configuration for errors. Violations here are fatal
// configuration errors surfaced to the caller before any page is touched.
func (c *Config) Validate() error {
	p := &c.Pipeline

	switch p.Engine {
	case EngineTesseract:
	case EngineEasyOCR:
		if p.OCR.EasyOCRURL == "" {
			return fmt.Errorf("engine %q requires ocr.easyocr_url", EngineEasyOCR)
		}
	default:
		return fmt.Errorf("unsupported OCR engine %q (supported: %s, %s)",
			p.Engine, EngineTesseract, EngineEasyOCR)
	}

	if p.Language != "" {
		if _, err := language.Parse(p.Language); err != nil {
			return fmt.Errorf("invalid language code %q: %w", p.Language, err)
		}
	}

	if _, err := ParsePageSelection(p.Pages); err != nil {
		return fmt.Errorf("invalid page selection %q: %w", p.Pages, err)
	}

	if p.ConfidenceThreshold < 0 || p.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold must be within [0,1], got %g", p.ConfidenceThreshold)
	}

	switch p.Correction.Provider {
	case "", CorrectorDictionary:
	case CorrectorOpenAI:
		if p.Correction.OpenAIKey == "" {
			return fmt.Errorf("correction provider %q requires an API key", CorrectorOpenAI)
		}
	default:
		return fmt.Errorf("unsupported correction provider %q", p.Correction.Provider)
	}

	switch strings.ToLower(c.Output.Format) {
	case "", "json", "yaml", "text":
	default:
		return fmt.Errorf("unsupported output format %q (supported: json, yaml, text)", c.Output.Format)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}

	return nil
}
