// Package pipeline runs esbuild builds and reports their lifecycle through
// Hooks.
package pipeline

// Hooks receives lifecycle notifications from one pipeline. Calls for a
// single pipeline never overlap, but hooks shared between pipelines must
// tolerate concurrent calls.
type Hooks interface {
	// OnCompileStart is called when a build begins.
	OnCompileStart()
	// OnProgress reports a completion estimate in [0, 1].
	OnProgress(percent float64, message string, details ...string)
	// OnDone is called with the outcome of every build.
	OnDone(res *Result)
	// OnSessionClose is called once when the pipeline is closed.
	OnSessionClose()
}
