package progress

import (
	"fmt"
	"log/slog"
	"math"
)

// Adapter follows the lifecycle of one pipeline and keeps its State in the
// Tracker up to date. Its methods are the compiler's hook callbacks.
//
// Callbacks arriving before the first compile or after the session was
// closed are ignored.
type Adapter struct {
	tracker *Tracker
	name    string
	bars    bool
	logger  *slog.Logger

	state  *State
	closed bool
}

// Name returns the pipeline name.
func (a *Adapter) Name() string {
	return a.name
}

// BarsEnabled reports whether this pipeline takes part in bar rendering.
func (a *Adapter) BarsEnabled() bool {
	return a.bars
}

// OnCompileStart is called when a compile begins.
func (a *Adapter) OnCompileStart() {
	t := a.tracker
	t.dispatch(func() {
		if a.closed {
			return
		}
		if a.state == nil {
			a.state = t.registry.Register(a.name)
		} else {
			a.state.Errors = nil
			a.state.Warnings = nil
		}
		a.state.Idle = false
		a.state.StartTime = t.now()
		a.state.Progress = 0
		a.state.Message = ""
		a.state.Details = nil

		a.logger.Debug("compile started")
		t.renderer.Clear()
		t.printer.Info(fmt.Sprintf("Compiling %s", a.name))
		if a.bars {
			t.renderer.Start()
		}
	})
}

// OnProgress records the progress of the running compile. percent is in
// [0, 1].
func (a *Adapter) OnProgress(percent float64, message string, details ...string) {
	t := a.tracker
	t.dispatch(func() {
		if a.state == nil {
			return
		}
		pct := int(math.Floor(percent * 100))
		pct = min(max(pct, 0), 100)

		a.state.Progress = pct
		if pct < 100 && message != "" {
			a.state.Message = message
		} else {
			a.state.Message = ""
		}
		a.state.Details = details

		if a.bars {
			t.renderer.Update()
		}
	})
}

// OnDone is called with the result of a finished compile.
func (a *Adapter) OnDone(res Result) {
	t := a.tracker
	t.dispatch(func() {
		if a.state == nil {
			return
		}
		s := a.state
		s.Idle = true
		s.Errors = nil
		s.Warnings = nil
		switch {
		case res != nil && res.HasErrors():
			s.Errors = res
		default:
			s.Compiled = true
			if res != nil && res.HasWarnings() {
				s.Warnings = res
			}
		}

		if a.bars && t.registry.AllIdle() {
			t.renderer.Stop()
		}

		elapsed := t.now().Sub(s.StartTime).Milliseconds()
		a.logger.Debug("compile finished",
			slog.Bool("errors", s.Errors != nil),
			slog.Bool("warnings", s.Warnings != nil),
			slog.Int64("elapsed_ms", elapsed))

		t.renderer.Clear()
		switch {
		case s.Errors != nil:
			t.printer.Fail(fmt.Sprintf("Failed to compile %s in %dms", a.name, elapsed))
		case s.Warnings != nil:
			t.printer.Warn(fmt.Sprintf("Compiled %s with warnings in %dms", a.name, elapsed))
		default:
			t.printer.Success(fmt.Sprintf("Compiled %s successfully in %dms", a.name, elapsed))
		}

		t.reporter.Report()
	})
}

// OnSessionClose is called when the pipeline's session is torn down.
func (a *Adapter) OnSessionClose() {
	t := a.tracker
	t.dispatch(func() {
		if a.closed {
			return
		}
		a.closed = true
		if a.state == nil {
			return
		}
		t.registry.Unregister(a.state)
		a.state = nil
		a.logger.Debug("session closed")

		if a.bars && t.registry.Len() == 0 {
			t.renderer.Stop()
		}
	})
}
