// Package config provides shared configuration types for leapbuild.
// This package is decoupled from CLI concerns so build pipelines can be
// described and validated without cobra or flag parsing.
package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/leapstack-labs/leapbuild/internal/pipeline"
)

// PipelineConfig describes one named build in leapbuild.yaml.
type PipelineConfig struct {
	Name        string   `koanf:"name" yaml:"name"`
	EntryPoints []string `koanf:"entry_points" yaml:"entry_points"`

	// Exactly one of Outdir or Outfile. Outfile requires a single entry point.
	Outdir  string `koanf:"outdir" yaml:"outdir,omitempty"`
	Outfile string `koanf:"outfile" yaml:"outfile,omitempty"`

	Platform  string `koanf:"platform" yaml:"platform,omitempty"`   // browser, node, neutral
	Format    string `koanf:"format" yaml:"format,omitempty"`       // iife, cjs, esm
	Target    string `koanf:"target" yaml:"target,omitempty"`       // es2015 .. es2024, esnext
	Sourcemap string `koanf:"sourcemap" yaml:"sourcemap,omitempty"` // none, inline, linked, external, both

	// Bundle defaults to true when unset.
	Bundle *bool `koanf:"bundle" yaml:"bundle,omitempty"`
	Minify bool  `koanf:"minify" yaml:"minify,omitempty"`

	External []string          `koanf:"external" yaml:"external,omitempty"`
	Define   map[string]string `koanf:"define" yaml:"define,omitempty"`
	Alias    map[string]string `koanf:"alias" yaml:"alias,omitempty"`
	Loader   map[string]string `koanf:"loader" yaml:"loader,omitempty"`
	Tsconfig string            `koanf:"tsconfig" yaml:"tsconfig,omitempty"`

	// Watch overrides the paths watched in watch mode.
	Watch []string `koanf:"watch" yaml:"watch,omitempty"`
}

// ValidationError describes an invalid pipeline definition.
type ValidationError struct {
	Pipeline string
	Field    string
	Reason   string
}

func (e *ValidationError) Error() string {
	name := e.Pipeline
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("pipeline %s: %s %s\nHint: Check the pipelines section of %s", name, e.Field, e.Reason, ConfigFileName)
}

// Validate checks a single pipeline definition.
func (p *PipelineConfig) Validate() error {
	if p.Name == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if len(p.EntryPoints) == 0 {
		return &ValidationError{Pipeline: p.Name, Field: "entry_points", Reason: "must list at least one file"}
	}
	if p.Outdir != "" && p.Outfile != "" {
		return &ValidationError{Pipeline: p.Name, Field: "outfile", Reason: "cannot be combined with outdir"}
	}
	if p.Outfile != "" && len(p.EntryPoints) > 1 {
		return &ValidationError{Pipeline: p.Name, Field: "outfile", Reason: "requires a single entry point, use outdir instead"}
	}

	// Enumerated values are owned by the pipeline package.
	if err := p.Options("").Validate(); err != nil {
		var optErr *pipeline.OptionError
		if errors.As(err, &optErr) {
			return &ValidationError{Pipeline: p.Name, Field: optErr.Option, Reason: err.Error()}
		}
		return err
	}
	return nil
}

// BundleEnabled reports whether the pipeline bundles its imports.
func (p *PipelineConfig) BundleEnabled() bool {
	return p.Bundle == nil || *p.Bundle
}

// Options converts the definition into pipeline options rooted at root.
func (p *PipelineConfig) Options(root string) pipeline.Options {
	return pipeline.Options{
		Name:        p.Name,
		EntryPoints: p.EntryPoints,
		Outdir:      p.Outdir,
		Outfile:     p.Outfile,
		Platform:    p.Platform,
		Format:      p.Format,
		Target:      p.Target,
		Sourcemap:   p.Sourcemap,
		Bundle:      p.BundleEnabled(),
		Minify:      p.Minify,
		External:    p.External,
		Define:      p.Define,
		Alias:       p.Alias,
		Loader:      p.Loader,
		Tsconfig:    p.Tsconfig,
		WorkingDir:  root,
		Watch:       p.Watch,
	}
}

// Output returns the configured output location for display.
func (p *PipelineConfig) Output() string {
	if p.Outfile != "" {
		return filepath.ToSlash(p.Outfile)
	}
	return filepath.ToSlash(p.Outdir)
}

// ProjectConfig holds the pipeline definitions of a project.
type ProjectConfig struct {
	Pipelines []PipelineConfig `koanf:"pipelines" yaml:"pipelines"`
}

// Validate checks every pipeline and rejects duplicate names.
func (c *ProjectConfig) Validate() error {
	if len(c.Pipelines) == 0 {
		return fmt.Errorf("no pipelines configured\nHint: Run 'leapbuild init' to create %s", ConfigFileName)
	}
	seen := make(map[string]bool, len(c.Pipelines))
	for i := range c.Pipelines {
		p := &c.Pipelines[i]
		if err := p.Validate(); err != nil {
			return err
		}
		if seen[p.Name] {
			return &ValidationError{Pipeline: p.Name, Field: "name", Reason: "is used by more than one pipeline"}
		}
		seen[p.Name] = true
	}
	return nil
}

// Select returns the pipelines named in names, in configuration order. An
// empty names selects every pipeline.
func (c *ProjectConfig) Select(names []string) ([]PipelineConfig, error) {
	if len(names) == 0 {
		return c.Pipelines, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	var selected []PipelineConfig
	for _, p := range c.Pipelines {
		if want[p.Name] {
			selected = append(selected, p)
			delete(want, p.Name)
		}
	}
	for _, n := range names {
		if want[n] {
			return nil, &UnknownPipelineError{Name: n, Available: c.Names()}
		}
	}
	return selected, nil
}

// Names returns the pipeline names in configuration order.
func (c *ProjectConfig) Names() []string {
	names := make([]string, 0, len(c.Pipelines))
	for _, p := range c.Pipelines {
		names = append(names, p.Name)
	}
	return names
}

// UnknownPipelineError is returned when a requested pipeline is not configured.
type UnknownPipelineError struct {
	Name      string
	Available []string
}

func (e *UnknownPipelineError) Error() string {
	return fmt.Sprintf("unknown pipeline %q (available: %v)", e.Name, e.Available)
}
