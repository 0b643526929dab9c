package pipeline

import (
	"time"

	"github.com/evanw/esbuild/pkg/api"
)

// Result is the outcome of one build.
type Result struct {
	Errors   []api.Message
	Warnings []api.Message
	Duration time.Duration
}

func newResult(r *api.BuildResult, d time.Duration) *Result {
	if r == nil {
		return &Result{Duration: d}
	}
	return &Result{
		Errors:   r.Errors,
		Warnings: r.Warnings,
		Duration: d,
	}
}

// HasErrors reports whether the build failed.
func (r *Result) HasErrors() bool { return r != nil && len(r.Errors) > 0 }

// HasWarnings reports whether the build produced warnings.
func (r *Result) HasWarnings() bool { return r != nil && len(r.Warnings) > 0 }

// ErrorMessages returns the build errors.
func (r *Result) ErrorMessages() []api.Message {
	if r == nil {
		return nil
	}
	return r.Errors
}

// WarningMessages returns the build warnings.
func (r *Result) WarningMessages() []api.Message {
	if r == nil {
		return nil
	}
	return r.Warnings
}
