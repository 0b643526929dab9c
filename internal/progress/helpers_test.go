package progress

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/leapstack-labs/leapbuild/internal/testutil"
	"github.com/muesli/termenv"
)

type printed struct {
	kind string
	text string
}

type fakePrinter struct {
	lines []printed
}

func (p *fakePrinter) add(kind, text string) { p.lines = append(p.lines, printed{kind, text}) }

func (p *fakePrinter) Info(msg string)    { p.add("info", msg) }
func (p *fakePrinter) Success(msg string) { p.add("success", msg) }
func (p *fakePrinter) Warn(msg string)    { p.add("warn", msg) }
func (p *fakePrinter) Fail(msg string)    { p.add("fail", msg) }
func (p *fakePrinter) Blank()             { p.add("blank", "") }
func (p *fakePrinter) ClearScreen()       { p.add("clear", "") }

func (p *fakePrinter) ErrorBlock(name string, _ Result)   { p.add("errors", name) }
func (p *fakePrinter) WarningBlock(name string, _ Result) { p.add("warnings", name) }

func (p *fakePrinter) kinds() []string {
	out := make([]string, 0, len(p.lines))
	for _, l := range p.lines {
		out = append(out, l.kind)
	}
	return out
}

func (p *fakePrinter) String() string {
	var sb strings.Builder
	for _, l := range p.lines {
		fmt.Fprintf(&sb, "%s: %s\n", l.kind, l.text)
	}
	return sb.String()
}

type fakeResult struct {
	errors   bool
	warnings bool
}

func (r fakeResult) HasErrors() bool   { return r.errors }
func (r fakeResult) HasWarnings() bool { return r.warnings }

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type exitRecorder struct {
	codes []int
}

func (e *exitRecorder) Exit(code int) { e.codes = append(e.codes, code) }

type harness struct {
	tracker *Tracker
	printer *fakePrinter
	clock   *fakeClock
	exits   *exitRecorder
	out     *bytes.Buffer
}

func newHarness(t *testing.T, mode Mode, bars bool) *harness {
	t.Helper()
	return newHarnessWith(t, mode, bars, nil)
}

// newHarnessWith is newHarness with a hook to adjust the tracker options.
func newHarnessWith(t *testing.T, mode Mode, bars bool, configure func(*Options)) *harness {
	t.Helper()
	h := &harness{
		printer: &fakePrinter{},
		clock:   &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)},
		exits:   &exitRecorder{},
		out:     &bytes.Buffer{},
	}
	opts := Options{
		Out:                  h.out,
		Profile:              termenv.Ascii,
		Printer:              h.printer,
		Mode:                 mode,
		DisplayBars:          bars,
		TerminalSupportsBars: true,
		RefreshInterval:      10 * time.Millisecond,
		ClearScreen:          true,
		Exit:                 h.exits.Exit,
		Now:                  h.clock.Now,
		Logger:               testutil.NewTestLogger(t),
	}
	if configure != nil {
		configure(&opts)
	}
	h.tracker = NewTracker(opts)
	t.Cleanup(h.tracker.Close)
	return h
}

// output returns what the renderer wrote so far.
func (h *harness) output() string {
	var s string
	h.tracker.Inspect(func(*Registry) { s = h.out.String() })
	return s
}

func (h *harness) state(name string) State {
	var s State
	h.tracker.Inspect(func(r *Registry) {
		if st := r.Lookup(name); st != nil {
			s = *st
		}
	})
	return s
}
