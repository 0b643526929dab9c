package config

import (
	"fmt"
	"slices"
)

// OutputFormats lists the accepted values of the output setting.
var OutputFormats = []string{"auto", "text", "json"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(OutputFormats, c.OutputFormat) {
		return fmt.Errorf("invalid output format %q (allowed: %v)", c.OutputFormat, OutputFormats)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_interval must be positive, got %s", c.RefreshInterval)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}

	// Pipeline definitions are only checked by commands that build, so help
	// and init work without a valid project.
	return nil
}

// ValidatePipelines checks the pipeline definitions.
func (c *Config) ValidatePipelines() error {
	return c.Project().Validate()
}
