package config

import "time"

// Default configuration values.
const (
	DefaultPlatform        = "browser"
	DefaultSourcemap       = "none"
	DefaultRefreshInterval = 200 * time.Millisecond
	DefaultDebounce        = 100 * time.Millisecond
)

// ApplyDefaults applies default values to every pipeline in a ProjectConfig.
func ApplyDefaults(c *ProjectConfig) {
	if c == nil {
		return
	}
	for i := range c.Pipelines {
		ApplyPipelineDefaults(&c.Pipelines[i])
	}
}

// ApplyPipelineDefaults applies default values to a PipelineConfig.
func ApplyPipelineDefaults(p *PipelineConfig) {
	if p == nil {
		return
	}
	if p.Platform == "" {
		p.Platform = DefaultPlatform
	}
	if p.Sourcemap == "" {
		p.Sourcemap = DefaultSourcemap
	}

	// Node output defaults to CommonJS; everything else is left to esbuild.
	if p.Format == "" && p.Platform == "node" {
		p.Format = "cjs"
	}
}
