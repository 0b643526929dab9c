package progress

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/muesli/termenv"
)

// Options configures a Tracker.
type Options struct {
	// Out receives the progress bars.
	Out io.Writer
	// Profile is the color profile used for the bars.
	Profile termenv.Profile
	// Printer prints status lines and error/warning blocks.
	Printer Printer
	// Mode selects the reporting policy.
	Mode Mode

	// DisplayBars is the user setting for the progress display.
	DisplayBars bool
	// TerminalSupportsBars is the result of the terminal capability probe.
	TerminalSupportsBars bool

	// Width is the terminal width in cells; bar lines are truncated to it.
	// 0 means unlimited.
	Width int

	// RefreshInterval is the minimum time between paints.
	RefreshInterval time.Duration
	// ClearScreen clears the terminal before errors in watch mode.
	ClearScreen bool

	// Exit terminates the process. Defaults to os.Exit.
	Exit func(int)
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	Logger *slog.Logger
}

// Tracker owns the state of every pipeline of a build session. All callbacks,
// paints and reports run under its lock, one at a time.
type Tracker struct {
	mu       sync.Mutex
	registry *Registry
	renderer *Renderer
	reporter *Reporter
	printer  Printer
	mode     Mode
	now      func() time.Time
	logger   *slog.Logger
}

// NewTracker creates a tracker for one build session.
func NewTracker(opts Options) *Tracker {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	t := &Tracker{
		registry: NewRegistry(),
		printer:  opts.Printer,
		mode:     opts.Mode,
		now:      opts.Now,
		logger:   opts.Logger,
	}
	bars := opts.DisplayBars && opts.TerminalSupportsBars
	t.renderer = newRenderer(opts.Out, opts.Profile, t.registry, &t.mu, opts.RefreshInterval, opts.Width, bars)
	t.reporter = newReporter(t.registry, opts.Printer, opts.Mode, opts.ClearScreen, opts.Exit)
	return t
}

// NewAdapter creates the adapter for the pipeline called name.
func (t *Tracker) NewAdapter(name string) *Adapter {
	return &Adapter{
		tracker: t,
		name:    name,
		bars:    t.renderer.Enabled(),
		logger:  t.logger.With(slog.String("pipeline", name)),
	}
}

// Mode returns the reporting mode.
func (t *Tracker) Mode() Mode {
	return t.mode
}

// Rendering reports whether the render loop is running.
func (t *Tracker) Rendering() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.renderer.Active()
}

// Failed reports whether any tracked pipeline finished its last compile with
// errors.
func (t *Tracker) Failed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.registry.Snapshot() {
		if s.Errors != nil {
			return true
		}
	}
	return false
}

// Inspect calls fn with the registry under the tracker lock. fn must not
// retain the registry or its states.
func (t *Tracker) Inspect(fn func(*Registry)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(t.registry)
}

// Close stops the render loop. Call it once the session is over.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.renderer.Stop()
}

func (t *Tracker) dispatch(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn()
}
