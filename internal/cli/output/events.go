package output

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/google/uuid"

	"github.com/leapstack-labs/leapbuild/internal/progress"
)

// Event types emitted in JSON mode.
const (
	EventInfo     = "info"
	EventSuccess  = "success"
	EventWarning  = "warning"
	EventFailure  = "failure"
	EventErrors   = "errors"
	EventWarnings = "warnings"
)

// Event is one line of JSON output.
type Event struct {
	Event       string       `json:"event"`
	Session     string       `json:"session"`
	Timestamp   string       `json:"timestamp"`
	Pipeline    string       `json:"pipeline,omitempty"`
	Message     string       `json:"message,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Diagnostic is an esbuild message flattened for JSON output.
type Diagnostic struct {
	Text     string `json:"text"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	LineText string `json:"line_text,omitempty"`
	Plugin   string `json:"plugin,omitempty"`
}

// EventPrinter writes status output as JSON lines. It implements
// progress.Printer.
type EventPrinter struct {
	mu      sync.Mutex
	enc     *json.Encoder
	session string
	now     func() time.Time
}

var _ progress.Printer = (*EventPrinter)(nil)

// NewEventPrinter creates a printer for one build session.
func NewEventPrinter(w io.Writer) *EventPrinter {
	return &EventPrinter{
		enc:     json.NewEncoder(w),
		session: uuid.NewString(),
		now:     time.Now,
	}
}

// Session returns the session ID stamped on every event.
func (p *EventPrinter) Session() string { return p.session }

func (p *EventPrinter) emit(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e.Session = p.session
	e.Timestamp = p.now().UTC().Format(time.RFC3339)
	_ = p.enc.Encode(e)
}

// Info emits an info event.
func (p *EventPrinter) Info(msg string) { p.emit(Event{Event: EventInfo, Message: msg}) }

// Success emits a success event.
func (p *EventPrinter) Success(msg string) { p.emit(Event{Event: EventSuccess, Message: msg}) }

// Warn emits a warning event.
func (p *EventPrinter) Warn(msg string) { p.emit(Event{Event: EventWarning, Message: msg}) }

// Fail emits a failure event.
func (p *EventPrinter) Fail(msg string) { p.emit(Event{Event: EventFailure, Message: msg}) }

// ErrorBlock emits the errors of one pipeline.
func (p *EventPrinter) ErrorBlock(name string, res progress.Result) {
	var diags []Diagnostic
	if d, ok := res.(Diagnostics); ok {
		diags = toDiagnostics(d.ErrorMessages())
	}
	p.emit(Event{Event: EventErrors, Pipeline: name, Diagnostics: diags})
}

// WarningBlock emits the warnings of one pipeline.
func (p *EventPrinter) WarningBlock(name string, res progress.Result) {
	var diags []Diagnostic
	if d, ok := res.(Diagnostics); ok {
		diags = toDiagnostics(d.WarningMessages())
	}
	p.emit(Event{Event: EventWarnings, Pipeline: name, Diagnostics: diags})
}

// Blank does nothing; JSON output has no layout.
func (p *EventPrinter) Blank() {}

// ClearScreen does nothing; JSON output is never cleared.
func (p *EventPrinter) ClearScreen() {}

func toDiagnostics(msgs []api.Message) []Diagnostic {
	diags := make([]Diagnostic, 0, len(msgs))
	for _, m := range msgs {
		d := Diagnostic{Text: m.Text, Plugin: m.PluginName}
		if m.Location != nil {
			d.File = m.Location.File
			d.Line = m.Location.Line
			d.Column = m.Location.Column
			d.LineText = m.Location.LineText
		}
		diags = append(diags, d)
	}
	return diags
}
