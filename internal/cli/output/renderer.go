// Package output renders CLI output as styled text or JSON events.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/muesli/termenv"

	"github.com/leapstack-labs/leapbuild/internal/progress"
)

// Mode is the output format.
type Mode string

// Output modes.
const (
	ModeAuto Mode = "auto"
	ModeText Mode = "text"
	ModeJSON Mode = "json"
)

// Diagnostics is implemented by build results that carry esbuild messages.
type Diagnostics interface {
	ErrorMessages() []api.Message
	WarningMessages() []api.Message
}

// Styles holds the lipgloss styles used for text output.
type Styles struct {
	Header  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		Success: r.NewStyle().Foreground(lipgloss.Color("76")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("204")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("214")),
		Info:    r.NewStyle().Foreground(lipgloss.Color("39")),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("243")),
		Bold:    r.NewStyle().Bold(true),
	}
}

// Renderer writes human-readable output. It implements progress.Printer.
type Renderer struct {
	out     io.Writer
	errOut  io.Writer
	mode    Mode
	isTTY   bool
	profile termenv.Profile
	width   int
	term    *termenv.Output
	styles  Styles
}

var _ progress.Printer = (*Renderer)(nil)

// NewRenderer creates a renderer, probing out for terminal support.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	return NewRendererWithTTY(out, errOut, mode, IsTerminal(out))
}

// NewRendererWithTTY creates a renderer with an explicit terminal flag.
// Non-terminals never get color.
func NewRendererWithTTY(out, errOut io.Writer, mode Mode, isTTY bool) *Renderer {
	profile := termenv.Ascii
	width := defaultWidth
	if isTTY {
		profile = ColorProfile(out)
		width = TerminalWidth(out)
	}

	lg := lipgloss.NewRenderer(out)
	lg.SetColorProfile(profile)

	return &Renderer{
		out:     out,
		errOut:  errOut,
		mode:    mode,
		isTTY:   isTTY,
		profile: profile,
		width:   width,
		term:    termenv.NewOutput(out, termenv.WithProfile(profile)),
		styles:  newStyles(lg),
	}
}

// Mode returns the configured mode.
func (r *Renderer) Mode() Mode { return r.mode }

// EffectiveMode resolves ModeAuto to a concrete mode.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode == ModeAuto || r.mode == "" {
		return ModeText
	}
	return r.mode
}

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool { return r.isTTY }

// Profile returns the color profile in use.
func (r *Renderer) Profile() termenv.Profile { return r.profile }

// Styles returns the text styles.
func (r *Renderer) Styles() Styles { return r.styles }

// Writer returns the standard output writer.
func (r *Renderer) Writer() io.Writer { return r.out }

// Println writes a line to standard output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted output to standard output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Header prints a section header.
func (r *Renderer) Header(text string) {
	r.Println(r.styles.Header.Render(text))
}

// Muted prints a de-emphasized line.
func (r *Renderer) Muted(msg string) {
	r.Println(r.styles.Muted.Render(msg))
}

// Errorf prints an error line to the error writer.
func (r *Renderer) Errorf(format string, a ...any) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Error.Render("✗")+" "+fmt.Sprintf(format, a...))
}

// Info prints a status line.
func (r *Renderer) Info(msg string) {
	r.Println(r.styles.Info.Render("●") + " " + msg)
}

// Success prints a success line.
func (r *Renderer) Success(msg string) {
	r.Println(r.styles.Success.Render("✓") + " " + msg)
}

// Warn prints a warning line.
func (r *Renderer) Warn(msg string) {
	r.Println(r.styles.Warning.Render("!") + " " + msg)
}

// Fail prints a failure line.
func (r *Renderer) Fail(msg string) {
	r.Println(r.styles.Error.Render("✗") + " " + msg)
}

// ErrorBlock prints the errors of one pipeline.
func (r *Renderer) ErrorBlock(name string, res progress.Result) {
	r.Println(r.styles.Error.Bold(true).Render("ERROR in " + name))
	if d, ok := res.(Diagnostics); ok {
		r.printMessages(d.ErrorMessages(), api.ErrorMessage)
	}
}

// WarningBlock prints the warnings of one pipeline.
func (r *Renderer) WarningBlock(name string, res progress.Result) {
	r.Println(r.styles.Warning.Bold(true).Render("WARNING in " + name))
	if d, ok := res.(Diagnostics); ok {
		r.printMessages(d.WarningMessages(), api.WarningMessage)
	}
}

func (r *Renderer) printMessages(msgs []api.Message, kind api.MessageKind) {
	if len(msgs) == 0 {
		return
	}
	formatted := api.FormatMessages(msgs, api.FormatMessagesOptions{
		Kind:          kind,
		Color:         r.profile != termenv.Ascii,
		TerminalWidth: r.width,
	})
	_, _ = io.WriteString(r.out, strings.Join(formatted, ""))
}

// Blank prints an empty line.
func (r *Renderer) Blank() {
	r.Println()
}

// ClearScreen clears the terminal. It does nothing when output is not a
// terminal, so logs stay intact.
func (r *Renderer) ClearScreen() {
	if !r.isTTY {
		return
	}
	r.term.ClearScreen()
}
