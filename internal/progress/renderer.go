package progress

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
)

// DefaultRefreshInterval is the minimum time between two paints.
const DefaultRefreshInterval = 200 * time.Millisecond

const (
	branchPrefix = "├──"
	lastPrefix   = "└──"
	truncateTail = "…"
)

// Renderer paints one line per registered pipeline and redraws the block in
// place. Paints are throttled; a paint while the renderer is inactive does
// nothing.
//
// Start, Stop, Clear and Update must be called with the Tracker lock held.
type Renderer struct {
	w        io.Writer
	registry *Registry
	palette  *Palette
	throttle *Throttle
	interval time.Duration
	enabled  bool

	// width is the terminal width in cells. Lines are cut to it so each
	// occupies exactly one row; 0 disables truncation.
	width int

	buf  bytes.Buffer
	term *termenv.Output

	active bool
	ticker *time.Ticker
	done   chan struct{}
	lines  int
}

func newRenderer(w io.Writer, profile termenv.Profile, registry *Registry, lock sync.Locker, interval time.Duration, width int, enabled bool) *Renderer {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	r := &Renderer{
		w:        w,
		registry: registry,
		palette:  NewPalette(profile),
		interval: interval,
		enabled:  enabled,
		width:    max(width, 0),
	}
	r.term = termenv.NewOutput(&r.buf, termenv.WithProfile(profile))
	r.throttle = NewThrottle(interval, func() {
		lock.Lock()
		defer lock.Unlock()
		r.paint()
	})
	return r
}

// Enabled reports whether the renderer may ever draw.
func (r *Renderer) Enabled() bool {
	return r.enabled
}

// Active reports whether the render loop is running.
func (r *Renderer) Active() bool {
	return r.active
}

// Start begins a display session and the periodic refresh. It is a no-op
// when the display is disabled or already running.
func (r *Renderer) Start() {
	if !r.enabled || r.active {
		return
	}
	r.active = true
	r.ticker = time.NewTicker(r.interval)
	r.done = make(chan struct{})
	go r.loop(r.ticker, r.done)
	r.throttle.Trigger()
}

func (r *Renderer) loop(ticker *time.Ticker, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			r.throttle.Trigger()
		}
	}
}

// Update requests a throttled repaint.
func (r *Renderer) Update() {
	if !r.active {
		return
	}
	r.throttle.Trigger()
}

// Stop ends the display session. The refresh timer is released, a final
// frame is painted and left on screen.
func (r *Renderer) Stop() {
	if !r.active {
		return
	}
	r.ticker.Stop()
	close(r.done)
	r.ticker = nil
	r.done = nil
	r.throttle.Stop()

	// The final frame is painted immediately, outside the refresh interval.
	if r.registry.Len() > 0 {
		r.paint()
	} else {
		r.Clear()
	}
	r.active = false
	r.lines = 0
}

// Clear erases the currently drawn block so other output can be printed.
// The next paint draws the block again below that output.
func (r *Renderer) Clear() {
	if r.lines == 0 {
		return
	}
	r.buf.Reset()
	r.term.ClearLines(r.lines)
	_, _ = r.w.Write(r.buf.Bytes())
	r.lines = 0
}

func (r *Renderer) paint() {
	if !r.active {
		return
	}
	lines := r.Lines()

	r.buf.Reset()
	if r.lines > 0 {
		r.term.ClearLines(r.lines)
	}
	for _, line := range lines {
		r.buf.WriteString(line)
		r.buf.WriteByte('\n')
	}
	_, _ = r.w.Write(r.buf.Bytes())
	r.lines = len(lines)
}

// Lines formats the current registry, one line per pipeline. Each line fits
// the terminal width so erasing len(lines) rows removes the whole block.
func (r *Renderer) Lines() []string {
	states := r.registry.Snapshot()
	nameWidth := r.registry.MaxNameWidth()

	lines := make([]string, 0, len(states))
	for i, s := range states {
		prefix := branchPrefix
		if i == len(states)-1 {
			prefix = lastPrefix
		}
		name := s.Name + strings.Repeat(" ", max(0, nameWidth-lipgloss.Width(s.Name)))
		line := fmt.Sprintf("%s %s %s %s", prefix, name, r.palette.Bar(s.Progress), describe(s))
		if r.width > 0 {
			line = ansi.Truncate(line, r.width, truncateTail)
		}
		lines = append(lines, line)
	}
	return lines
}

func describe(s *State) string {
	if s.Idle {
		return "idle"
	}
	parts := []string{fmt.Sprintf("%d%%", s.Progress)}
	if s.Message != "" {
		parts = append(parts, s.Message)
	}
	for _, d := range s.Details {
		if d != "" {
			parts = append(parts, d)
		}
	}
	return strings.Join(parts, " ")
}
