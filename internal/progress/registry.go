package progress

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Result is the outcome of one finished compile, as reported by the compiler.
type Result interface {
	HasErrors() bool
	HasWarnings() bool
}

// State is the tracked state of one pipeline. It is owned by the Adapter that
// registered it; the Registry only keeps a reference for enumeration.
type State struct {
	Name     string
	Idle     bool
	Compiled bool

	// Errors and Warnings are never both set for the same compile.
	Errors   Result
	Warnings Result

	StartTime time.Time
	Progress  int
	Message   string
	Details   []string
}

// Registry is an ordered list of pipeline states. Order is registration
// order and is never changed by updates.
//
// Registry is not safe for concurrent use; the Tracker serializes access.
type Registry struct {
	states       []*State
	maxNameWidth int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a new idle state for name.
func (r *Registry) Register(name string) *State {
	s := &State{Name: name, Idle: true}
	r.states = append(r.states, s)
	if w := lipgloss.Width(name); w > r.maxNameWidth {
		r.maxNameWidth = w
	}
	return s
}

// Unregister removes s from the registry. It reports whether s was present.
func (r *Registry) Unregister(s *State) bool {
	for i, cur := range r.states {
		if cur != s {
			continue
		}
		r.states = append(r.states[:i], r.states[i+1:]...)
		r.maxNameWidth = 0
		for _, rest := range r.states {
			if w := lipgloss.Width(rest.Name); w > r.maxNameWidth {
				r.maxNameWidth = w
			}
		}
		return true
	}
	return false
}

// Lookup returns the state registered under name, or nil.
func (r *Registry) Lookup(name string) *State {
	for _, s := range r.states {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// AllIdle reports whether no registered pipeline is compiling.
func (r *Registry) AllIdle() bool {
	for _, s := range r.states {
		if !s.Idle {
			return false
		}
	}
	return true
}

// Snapshot returns the registered states in registration order.
func (r *Registry) Snapshot() []*State {
	out := make([]*State, len(r.states))
	copy(out, r.states)
	return out
}

// Len returns the number of registered states.
func (r *Registry) Len() int {
	return len(r.states)
}

// MaxNameWidth returns the display width of the longest registered name.
func (r *Registry) MaxNameWidth() int {
	return r.maxNameWidth
}
