// Package config loads the legend matcher configuration from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvCatalog = "LEGEND_CATALOG"
	EnvLibrary = "LEGEND_LIBRARY"
	EnvDebug   = "LEGEND_DEBUG"
	EnvOCRLang = "LEGEND_OCR_LANG"
)

// RecognitionConfig tunes symbol and text detection on legend sheets.
type RecognitionConfig struct {
	Language       string  `yaml:"language"`
	MinSymbolArea  float64 `yaml:"min_symbol_area"`
	MaxSymbolArea  float64 `yaml:"max_symbol_area"`
	MaxAspectRatio float64 `yaml:"max_aspect_ratio"`
	MinConfidence  float64 `yaml:"min_confidence"` // 0-1, texts below are dropped
	LineTolerance  float64 `yaml:"line_tolerance"` // px, words merged into one label
}

// CanvasConfig holds viewport defaults.
type CanvasConfig struct {
	FitPadding float64 `yaml:"fit_padding"`
	FitOnLoad  bool    `yaml:"fit_on_load"`
}

// Config is the root configuration.
type Config struct {
	CatalogPath string            `yaml:"catalog"`
	LibraryPath string            `yaml:"library"`
	DraftDir    string            `yaml:"draft_dir"`
	Debug       bool              `yaml:"debug"`
	Canvas      CanvasConfig      `yaml:"canvas"`
	Recognition RecognitionConfig `yaml:"recognition"`
}

// Default returns the built-in configuration. An empty CatalogPath means the
// sample catalog; an empty LibraryPath means library.DefaultPath.
func Default() *Config {
	return &Config{
		Canvas: CanvasConfig{
			FitPadding: 50,
			FitOnLoad:  true,
		},
		Recognition: RecognitionConfig{
			Language:       "eng",
			MinSymbolArea:  200,
			MaxSymbolArea:  40000,
			MaxAspectRatio: 4,
			MinConfidence:  0.3,
			LineTolerance:  8,
		},
	}
}

// Load reads path (missing file = defaults), then applies a .env file next to
// it, if any, and process environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
			resolveRelative(cfg, filepath.Dir(path))
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		envFile := filepath.Join(filepath.Dir(path), ".env")
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

// LoadDefault tries ./legend-matcher.yaml, then ~/.config/legend-matcher/config.yaml.
func LoadDefault() (*Config, error) {
	if _, err := os.Stat("legend-matcher.yaml"); err == nil {
		return Load("legend-matcher.yaml")
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return Load("")
	}
	return Load(filepath.Join(configDir, "legend-matcher", "config.yaml"))
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvCatalog); v != "" {
		cfg.CatalogPath = v
	}
	if v := os.Getenv(EnvLibrary); v != "" {
		cfg.LibraryPath = v
	}
	if v := os.Getenv(EnvOCRLang); v != "" {
		cfg.Recognition.Language = v
	}
	if v := os.Getenv(EnvDebug); v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", EnvDebug, v, err)
		}
		cfg.Debug = b
	}
	return nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Canvas.FitPadding < 0 {
		cfg.Canvas.FitPadding = def.Canvas.FitPadding
	}
	r := &cfg.Recognition
	if r.Language == "" {
		r.Language = def.Recognition.Language
	}
	if r.MinSymbolArea <= 0 {
		r.MinSymbolArea = def.Recognition.MinSymbolArea
	}
	if r.MaxSymbolArea <= r.MinSymbolArea {
		r.MaxSymbolArea = def.Recognition.MaxSymbolArea
	}
	if r.MaxAspectRatio < 1 {
		r.MaxAspectRatio = def.Recognition.MaxAspectRatio
	}
	if r.MinConfidence < 0 || r.MinConfidence > 1 {
		r.MinConfidence = def.Recognition.MinConfidence
	}
	if r.LineTolerance <= 0 {
		r.LineTolerance = def.Recognition.LineTolerance
	}
}

func resolveRelative(cfg *Config, dir string) {
	for _, p := range []*string{&cfg.CatalogPath, &cfg.LibraryPath, &cfg.DraftDir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}
