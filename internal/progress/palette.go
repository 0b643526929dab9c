// Package progress aggregates the state of concurrently running compilation
// pipelines and renders it as a live multi-line terminal view.
//
// A Tracker owns the registry of pipeline states, the throttled renderer
// and the status reporter. Each pipeline talks to the Tracker through its own
// Adapter, which receives compiler lifecycle callbacks.
package progress

import (
	"fmt"
	"math"
	"strings"

	"github.com/muesli/termenv"
)

// BarWidth is the number of cells in a progress bar.
const BarWidth = 20

const barGlyph = "█"

// Palette holds the precomputed colored cells of a progress bar.
type Palette struct {
	cells [BarWidth]string
}

// NewPalette renders the bar gradient once for the given color profile.
// termenv.Ascii yields uncolored glyphs.
func NewPalette(profile termenv.Profile) *Palette {
	p := &Palette{}
	for i := range p.cells {
		color := profile.Color(GradientColor(i))
		p.cells[i] = profile.String(barGlyph).Foreground(color).String()
	}
	return p
}

// GradientColor returns the hex color of cell i, going from red through
// yellow to green.
func GradientColor(i int) string {
	p := float64(i) / BarWidth
	if p <= 0.5 {
		return fmt.Sprintf("#%02x%02x%02x", 255, int(math.Round(p*510)), 0)
	}
	return fmt.Sprintf("#%02x%02x%02x", 255-int(math.Round(p*122)), 255, 0)
}

// FilledCells returns how many cells a bar at pct percent fills.
func FilledCells(pct int) int {
	n := pct * BarWidth / 100
	if n < 0 {
		return 0
	}
	if n > BarWidth {
		return BarWidth
	}
	return n
}

// Bar renders a bar for pct percent. Unfilled cells are blank.
func (p *Palette) Bar(pct int) string {
	filled := FilledCells(pct)
	var sb strings.Builder
	for i := 0; i < filled; i++ {
		sb.WriteString(p.cells[i])
	}
	sb.WriteString(strings.Repeat(" ", BarWidth-filled))
	return sb.String()
}
