package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"sheetview/domain/chart"
	"sheetview/domain/table"
)

// State is where a session sits in the view lifecycle
type State string

const (
	StateNoFile        State = "no_file"
	StateLoaded        State = "loaded"
	StatePreviewed     State = "previewed"
	StateSummarized    State = "summarized"
	StateFiltered      State = "filtered"
	StatePlotRequested State = "plot_requested"
	StatePlotRendered  State = "plot_rendered"
	StatePlotRejected  State = "plot_rejected"
)

// ErrInvalidTransition is returned for a state change the lifecycle does not allow
var ErrInvalidTransition = errors.New("invalid session state transition")

// viewStates are the states reachable from any loaded state
var viewStates = []State{StatePreviewed, StateSummarized, StateFiltered, StatePlotRequested}

var transitions = map[State][]State{
	StateNoFile:        {StateLoaded},
	StateLoaded:        viewStates,
	StatePreviewed:     viewStates,
	StateSummarized:    viewStates,
	StateFiltered:      viewStates,
	StatePlotRequested: {StatePlotRequested, StatePlotRendered, StatePlotRejected},
	StatePlotRendered:  viewStates,
	StatePlotRejected:  viewStates,
}

// CanTransition reports whether from -> to is a lifecycle edge
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Session is the state of one user's view. The table is immutable; the
// predicate and last plot are replaced on every interaction.
type Session struct {
	ID       string
	FileName string
	LoadedAt time.Time

	// pass serialises interactions so each one runs its transitions uninterrupted
	pass sync.Mutex

	mu        sync.Mutex
	table     *table.Table
	state     State
	predicate *table.Predicate
	lastPlot  *chart.Spec
	updatedAt time.Time
}

func newSession(id, fileName string) *Session {
	return &Session{ID: id, FileName: fileName, state: StateNoFile}
}

// Exclusive runs fn with no other interaction on this session in flight
func (s *Session) Exclusive(fn func() error) error {
	s.pass.Lock()
	defer s.pass.Unlock()
	return fn()
}

// Load attaches the parsed table and moves the session to Loaded
func (s *Session) Load(t *table.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transitionLocked(StateLoaded); err != nil {
		return err
	}
	s.table = t
	s.LoadedAt = time.Now()
	return nil
}

// Table returns the loaded table, nil before Load
func (s *Session) Table() *table.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// UpdatedAt is the time of the last transition
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// Transition moves the session to the given state
func (s *Session) Transition(to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionLocked(to)
}

func (s *Session) transitionLocked(to State) error {
	if !CanTransition(s.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state, to)
	}
	s.state = to
	s.updatedAt = time.Now()
	return nil
}

// SetPredicate records the active filter; nil clears it
func (s *Session) SetPredicate(p *table.Predicate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.predicate = p
}

// Predicate returns the active filter, if any
func (s *Session) Predicate() (table.Predicate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.predicate == nil {
		return table.Predicate{}, false
	}
	return *s.predicate, true
}

// RecordPlot stores the last plot request
func (s *Session) RecordPlot(spec chart.Spec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPlot = &spec
}

// LastPlot returns the last plot request, if any
func (s *Session) LastPlot() (chart.Spec, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastPlot == nil {
		return chart.Spec{}, false
	}
	return *s.lastPlot, true
}
