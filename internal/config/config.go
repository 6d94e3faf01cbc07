// Package config loads the scorecard configuration: defaults, then an
// optional YAML file, then environment variables, later layers winning.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/a11ylab/scorecard/internal/template"
)

// Config is the resolved configuration for both the CLI and the server.
type Config struct {
	// Server
	Port   string `yaml:"port"`
	APIKey string `yaml:"api_key"`

	// Inputs
	MappingPath      string `yaml:"mapping_path"`
	CarryForwardPath string `yaml:"carry_forward_path"`
	WatchMapping     bool   `yaml:"watch_mapping"`

	// Upload limits (server)
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Template layout constants. These describe one template family; a
	// different layout is a config change, not a code change.
	TablesPerProduct int      `yaml:"tables_per_product"`
	Categories       []string `yaml:"categories"`
	SubtotalScoreCol int      `yaml:"subtotal_score_col"`
	SubtotalMaxCol   int      `yaml:"subtotal_max_col"`

	// Scoring
	MatchThreshold float64 `yaml:"match_threshold"`
}

// Load resolves the configuration. path names an optional YAML file; an
// empty path skips the file layer, a non-empty path must exist.
func Load(path string) (Config, error) {
	cfg := Config{
		Port:             "8091",
		MappingPath:      "mapping.json",
		MaxUploadBytes:   52428800, // 50MB
		TablesPerProduct: 5,
		Categories:       []string{"Perceivable", "Operable", "Understandable", "Robust"},
		SubtotalScoreCol: 5,
		SubtotalMaxCol:   7,
		MatchThreshold:   0.7,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Port = envOr("SCORECARD_PORT", cfg.Port)
	cfg.APIKey = envOr("SCORECARD_API_KEY", cfg.APIKey)
	cfg.MappingPath = envOr("SCORECARD_MAPPING", cfg.MappingPath)
	cfg.CarryForwardPath = envOr("SCORECARD_CARRY_FORWARD", cfg.CarryForwardPath)
	cfg.MaxUploadBytes = envInt64("SCORECARD_MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)

	if cfg.TablesPerProduct <= 0 {
		cfg.TablesPerProduct = 5
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.MatchThreshold <= 0 || cfg.MatchThreshold >= 1 {
		cfg.MatchThreshold = 0.7
	}
	return cfg, nil
}

// ValidateServer checks the settings the HTTP server cannot run without.
func (c Config) ValidateServer() error {
	if c.APIKey == "" {
		return fmt.Errorf("SCORECARD_API_KEY is required in server mode")
	}
	if c.MappingPath == "" {
		return fmt.Errorf("mapping_path is required in server mode")
	}
	return nil
}

// Layout converts the layout fields into the extractor's constants.
func (c Config) Layout() template.Layout {
	layout := template.DefaultLayout()
	layout.TablesPerProduct = c.TablesPerProduct
	layout.Categories = c.Categories
	layout.SubtotalScoreCol = c.SubtotalScoreCol
	layout.SubtotalMaxCol = c.SubtotalMaxCol
	return layout
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
