// Package config provides configuration management for the leapbuild CLI.
//
// This package layers CLI-specific settings (progress display, watch
// behaviour, output format) over the shared pipeline definitions from
// internal/config, which are re-exported here via type aliases.
package config

import (
	"time"

	sharedcfg "github.com/leapstack-labs/leapbuild/internal/config"
)

// PipelineConfig is an alias for the shared pipeline definition.
type PipelineConfig = sharedcfg.PipelineConfig

// ProjectConfig is an alias for the shared project definition.
type ProjectConfig = sharedcfg.ProjectConfig

// WatchConfig holds settings for watch mode.
type WatchConfig struct {
	Debounce    time.Duration `koanf:"debounce"`
	ClearScreen bool          `koanf:"clear_screen"`
}

// Config holds all CLI configuration options.
type Config struct {
	Pipelines       []PipelineConfig `koanf:"pipelines"`
	Progress        bool             `koanf:"progress"`
	RefreshInterval time.Duration    `koanf:"refresh_interval"`
	Watch           WatchConfig      `koanf:"watch"`
	Verbose         bool             `koanf:"verbose"`
	OutputFormat    string           `koanf:"output"`

	// ProjectRoot is where the config file was found. Pipeline paths are
	// resolved against it.
	ProjectRoot string `koanf:"-"`
}

// Project returns the pipeline definitions as a ProjectConfig.
func (c *Config) Project() *ProjectConfig {
	return &ProjectConfig{Pipelines: c.Pipelines}
}

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultRefreshInterval = sharedcfg.DefaultRefreshInterval
	DefaultDebounce        = sharedcfg.DefaultDebounce
	DefaultOutput          = "auto" // Auto-detect: TTY=text with bars, non-TTY=text
)
