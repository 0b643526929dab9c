package pipeline

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Options describes one build target.
type Options struct {
	Name        string
	EntryPoints []string
	Outdir      string
	Outfile     string
	Platform    string // browser, node, neutral
	Format      string // iife, cjs, esm
	Target      string // es2015 .. es2024, esnext
	Sourcemap   string // none, inline, linked, external, both
	Bundle      bool
	Minify      bool
	External    []string
	Define      map[string]string
	Alias       map[string]string
	Loader      map[string]string // file extension -> loader name
	Tsconfig    string

	// WorkingDir is the directory relative paths are resolved against.
	WorkingDir string
	// Watch lists paths to watch in watch mode. Defaults to the directories
	// of the entry points.
	Watch []string
}

// OptionError reports an option value esbuild does not know.
type OptionError struct {
	Option  string
	Value   string
	Allowed []string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("invalid %s %q (allowed: %s)", e.Option, e.Value, strings.Join(e.Allowed, ", "))
}

var platforms = map[string]api.Platform{
	"":        api.PlatformDefault,
	"browser": api.PlatformBrowser,
	"node":    api.PlatformNode,
	"neutral": api.PlatformNeutral,
}

var formats = map[string]api.Format{
	"":     api.FormatDefault,
	"iife": api.FormatIIFE,
	"cjs":  api.FormatCommonJS,
	"esm":  api.FormatESModule,
}

var targets = map[string]api.Target{
	"":       api.DefaultTarget,
	"esnext": api.ESNext,
	"es5":    api.ES5,
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"es2023": api.ES2023,
	"es2024": api.ES2024,
}

var sourcemaps = map[string]api.SourceMap{
	"":         api.SourceMapNone,
	"none":     api.SourceMapNone,
	"inline":   api.SourceMapInline,
	"linked":   api.SourceMapLinked,
	"external": api.SourceMapExternal,
	"both":     api.SourceMapInlineAndExternal,
}

var loaders = map[string]api.Loader{
	"js":         api.LoaderJS,
	"jsx":        api.LoaderJSX,
	"ts":         api.LoaderTS,
	"tsx":        api.LoaderTSX,
	"json":       api.LoaderJSON,
	"css":        api.LoaderCSS,
	"local-css":  api.LoaderLocalCSS,
	"global-css": api.LoaderGlobalCSS,
	"text":       api.LoaderText,
	"base64":     api.LoaderBase64,
	"dataurl":    api.LoaderDataURL,
	"binary":     api.LoaderBinary,
	"file":       api.LoaderFile,
	"copy":       api.LoaderCopy,
	"empty":      api.LoaderEmpty,
}

func lookup[T any](option, value string, table map[string]T) (T, error) {
	if v, ok := table[strings.ToLower(value)]; ok {
		return v, nil
	}
	allowed := make([]string, 0, len(table))
	for k := range table {
		if k != "" {
			allowed = append(allowed, k)
		}
	}
	sort.Strings(allowed)
	var zero T
	return zero, &OptionError{Option: option, Value: value, Allowed: allowed}
}

// ParsePlatform converts a platform name.
func ParsePlatform(s string) (api.Platform, error) { return lookup("platform", s, platforms) }

// ParseFormat converts an output format name.
func ParseFormat(s string) (api.Format, error) { return lookup("format", s, formats) }

// ParseTarget converts a language target name.
func ParseTarget(s string) (api.Target, error) { return lookup("target", s, targets) }

// ParseSourcemap converts a source map mode.
func ParseSourcemap(s string) (api.SourceMap, error) { return lookup("sourcemap", s, sourcemaps) }

// ParseLoader converts a loader name.
func ParseLoader(s string) (api.Loader, error) { return lookup("loader", s, loaders) }

// Validate checks that every enumerated option has a known value.
func (o Options) Validate() error {
	_, err := o.BuildOptions()
	return err
}

// BuildOptions converts o to esbuild options. Plugins are not included.
func (o Options) BuildOptions() (api.BuildOptions, error) {
	platform, err := ParsePlatform(o.Platform)
	if err != nil {
		return api.BuildOptions{}, err
	}
	format, err := ParseFormat(o.Format)
	if err != nil {
		return api.BuildOptions{}, err
	}
	target, err := ParseTarget(o.Target)
	if err != nil {
		return api.BuildOptions{}, err
	}
	sourcemap, err := ParseSourcemap(o.Sourcemap)
	if err != nil {
		return api.BuildOptions{}, err
	}

	var loader map[string]api.Loader
	if len(o.Loader) > 0 {
		loader = make(map[string]api.Loader, len(o.Loader))
		for ext, name := range o.Loader {
			l, err := ParseLoader(name)
			if err != nil {
				return api.BuildOptions{}, err
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			loader[ext] = l
		}
	}

	workDir := o.WorkingDir
	if workDir != "" {
		if abs, err := filepath.Abs(workDir); err == nil {
			workDir = abs
		}
	}

	return api.BuildOptions{
		EntryPoints:       o.EntryPoints,
		Bundle:            o.Bundle,
		Outdir:            o.Outdir,
		Outfile:           o.Outfile,
		Write:             true,
		Platform:          platform,
		Format:            format,
		Target:            target,
		Sourcemap:         sourcemap,
		MinifyWhitespace:  o.Minify,
		MinifyIdentifiers: o.Minify,
		MinifySyntax:      o.Minify,
		External:          o.External,
		Define:            o.Define,
		Alias:             o.Alias,
		Loader:            loader,
		Tsconfig:          o.Tsconfig,
		AbsWorkingDir:     workDir,

		// Diagnostics are reported through the hooks.
		LogLevel: api.LogLevelSilent,
	}, nil
}

// WatchPaths returns the absolute paths to watch for changes.
func (o Options) WatchPaths() []string {
	var paths []string
	if len(o.Watch) > 0 {
		for _, p := range o.Watch {
			paths = append(paths, o.resolve(p))
		}
		return dedupe(paths)
	}
	for _, entry := range o.EntryPoints {
		paths = append(paths, filepath.Dir(o.resolve(entry)))
	}
	return dedupe(paths)
}

// OutputDir returns the absolute directory build output is written to.
func (o Options) OutputDir() string {
	switch {
	case o.Outdir != "":
		return o.resolve(o.Outdir)
	case o.Outfile != "":
		return filepath.Dir(o.resolve(o.Outfile))
	default:
		return ""
	}
}

func (o Options) resolve(p string) string {
	if !filepath.IsAbs(p) && o.WorkingDir != "" {
		p = filepath.Join(o.WorkingDir, p)
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
