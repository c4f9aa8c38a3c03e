package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "pagesift"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "PAGESIFT"
)

// Loader handles loading configuration from files, environment variables,
// and command-line flags bound through viper.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader backed by the global viper
// instance so that cobra flag bindings are visible.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// Load loads configuration from files, environment variables, and defaults,
// then validates it.
func (l *Loader) Load() (*Config, error) {
	cfg, err := l.load("")
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadWithFile loads configuration from a specific file path and validates.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}
	cfg, err := l.load(configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadWithoutValidation loads configuration without running Validate.
func (l *Loader) LoadWithoutValidation() (*Config, error) {
	return l.load("")
}

func (l *Loader) load(configFile string) (*Config, error) {
	if configFile != "" {
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName(ConfigFileName)
		l.v.SetConfigType("yaml")
		l.addConfigPaths()
	}

	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file found; defaults and env vars apply.
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// addConfigPaths registers the configuration search locations.
func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
		l.v.AddConfigPath(filepath.Join(home, ".config", "pagesift"))
	}
	l.v.AddConfigPath("/etc/pagesift")
}

// setupEnvironmentVariables enables PAGESIFT_* overrides with nested keys
// flattened by underscores (e.g. PAGESIFT_PIPELINE_ENGINE).
func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()
}

// setDefaults registers default values for all configuration keys.
func (l *Loader) setDefaults() {
	l.v.SetDefault("log_level", "info")
	l.v.SetDefault("verbose", false)

	l.v.SetDefault("pipeline.pages", "all")
	l.v.SetDefault("pipeline.engine", EngineTesseract)
	l.v.SetDefault("pipeline.language", "en")
	l.v.SetDefault("pipeline.enable_correction", true)
	l.v.SetDefault("pipeline.confidence_threshold", 0.0)

	l.v.SetDefault("pipeline.preprocess.max_skew_angle", 15.0)
	l.v.SetDefault("pipeline.preprocess.angle_step", 0.5)
	l.v.SetDefault("pipeline.preprocess.skew_tolerance", 0.5)
	l.v.SetDefault("pipeline.preprocess.denoise_sigma", 0.0)

	l.v.SetDefault("pipeline.layout.min_region_area", 150)
	l.v.SetDefault("pipeline.layout.image_area_fraction", 0.015)
	l.v.SetDefault("pipeline.layout.merge_overlap_ratio", 0.2)
	l.v.SetDefault("pipeline.layout.line_gap_fraction", 0.012)
	l.v.SetDefault("pipeline.layout.fill_density_cutoff", 0.45)

	l.v.SetDefault("pipeline.ocr.timeout_ms", 30000)
	l.v.SetDefault("pipeline.ocr.crop_padding", 5)
	l.v.SetDefault("pipeline.ocr.easyocr_url", "http://localhost:8501")

	l.v.SetDefault("pipeline.correction.provider", CorrectorDictionary)
	l.v.SetDefault("pipeline.correction.timeout_ms", 15000)
	l.v.SetDefault("pipeline.correction.openai_model", "gpt-4o-mini")

	l.v.SetDefault("pipeline.parallel.page_workers", runtime.NumCPU())
	l.v.SetDefault("pipeline.parallel.region_workers", 2)

	l.v.SetDefault("output.format", "json")
	l.v.SetDefault("output.file", "")
	l.v.SetDefault("output.overlay_dir", "")

	l.v.SetDefault("server.host", "localhost")
	l.v.SetDefault("server.port", 8080)
	l.v.SetDefault("server.max_upload_mb", 50)
	l.v.SetDefault("server.timeout_sec", 120)
	l.v.SetDefault("server.shutdown_timeout", 10)
	l.v.SetDefault("server.overlay_enabled", false)
}

// GetConfigFileUsed returns the path of the config file used.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// GetViper returns the underlying viper instance for advanced usage.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}
