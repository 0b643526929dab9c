package progress

import "os"

// Mode selects the reporting policy.
type Mode int

const (
	// ModeOneShot is a single build pass; compile errors terminate the process.
	ModeOneShot Mode = iota
	// ModeWatch is a long-lived session with repeated rebuilds.
	ModeWatch
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeWatch {
		return "watch"
	}
	return "oneshot"
}

// Messages printed after the per-pipeline blocks.
const (
	FailedMessage       = "Build failed, check the log above for details"
	WithWarningsMessage = "Build succeeded with warnings, check the log above for details"
)

// Printer formats status output for the user.
type Printer interface {
	Info(msg string)
	Success(msg string)
	Warn(msg string)
	Fail(msg string)
	ErrorBlock(name string, res Result)
	WarningBlock(name string, res Result)
	Blank()
	ClearScreen()
}

// Reporter decides, after a compile finishes, what to print about all
// tracked pipelines and whether the process must exit.
type Reporter struct {
	registry    *Registry
	printer     Printer
	mode        Mode
	clearScreen bool
	exit        func(int)
}

func newReporter(registry *Registry, printer Printer, mode Mode, clearScreen bool, exit func(int)) *Reporter {
	if exit == nil {
		exit = os.Exit
	}
	return &Reporter{
		registry:    registry,
		printer:     printer,
		mode:        mode,
		clearScreen: clearScreen,
		exit:        exit,
	}
}

// Report prints errors or warnings once the pipelines have settled.
//
// Errors are reported before the one-shot idle check so a failing pipeline
// is surfaced without waiting for the others. Warnings are only reported
// once every pipeline is idle.
func (r *Reporter) Report() {
	if r.mode == ModeWatch && !r.registry.AllIdle() {
		return
	}

	states := r.registry.Snapshot()

	var failed []*State
	for _, s := range states {
		if s.Errors != nil {
			failed = append(failed, s)
		}
	}
	if len(failed) > 0 {
		if r.mode == ModeWatch && r.clearScreen {
			r.printer.ClearScreen()
		}
		for _, s := range failed {
			r.printer.ErrorBlock(s.Name, s.Errors)
		}
		r.printer.Blank()
		r.printer.Fail(FailedMessage)
		if r.mode == ModeOneShot {
			r.exit(1)
		}
		return
	}

	if r.mode == ModeOneShot && !r.registry.AllIdle() {
		return
	}

	var warned []*State
	for _, s := range states {
		if s.Warnings != nil {
			warned = append(warned, s)
		}
	}
	if len(warned) == 0 {
		return
	}
	for _, s := range warned {
		r.printer.WarningBlock(s.Name, s.Warnings)
	}
	r.printer.Blank()
	r.printer.Warn(WithWarningsMessage)
}
