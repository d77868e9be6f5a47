// Package selection walks an ordered list of records one at a time and
// records an accept or skip decision for each.
//
// States are Active(i) for i in [0,N) and Exhausted at i == N. Accept and
// Skip advance the position by one; neither is ever replayed backwards.
// Operations that make no sense in the current state are no-ops, reported
// through a false second return value rather than an error.
package selection

import (
	"sync"
	"time"
)

const (
	DefaultThreshold = 50.0
	DefaultSettle    = 300 * time.Millisecond
)

type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionSkip   Decision = "skip"
)

// Outcome describes one committed transition.
type Outcome struct {
	ID       int64    `json:"id"`
	Index    int      `json:"index"`
	Decision Decision `json:"decision"`
}

type Options struct {
	// Threshold is the drag distance a release must exceed to commit.
	Threshold float64
	// Settle is the window after a commit during which input is dropped.
	Settle time.Duration
	Now    func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.Settle < 0 {
		o.Settle = 0
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// State is a point-in-time copy of a session for callers and the UI.
type State struct {
	Position   int     `json:"position"`
	Total      int     `json:"total"`
	Exhausted  bool    `json:"exhausted"`
	CurrentID  *int64  `json:"currentId"`
	Accepted   []int64 `json:"accepted"`
	Seen       []int64 `json:"seen"`
	DragOffset float64 `json:"dragOffset"`
	Dragging   bool    `json:"dragging"`
	Settling   bool    `json:"settling"`
}

// Session is safe for concurrent use; transitions are serialized.
type Session struct {
	mu sync.Mutex

	ids []int64
	pos int

	accepted *idSet
	seen     *idSet

	settle    time.Duration
	now       func() time.Time
	settledAt time.Time
	gesture   Gesture
}

// New starts a session at Active(0) over ids, which is copied.
func New(ids []int64, opts Options) *Session {
	opts = opts.withDefaults()
	cp := make([]int64, len(ids))
	copy(cp, ids)
	return &Session{
		ids:      cp,
		accepted: newIDSet(),
		seen:     newIDSet(),
		settle:   opts.Settle,
		now:      opts.Now,
		gesture:  NewGesture(opts.Threshold),
	}
}

func (s *Session) Accept() (Outcome, bool) { return s.Transition(Right) }

func (s *Session) Skip() (Outcome, bool) { return s.Transition(Left) }

// Transition is the single entry point every input adapter feeds.
func (s *Session) Transition(d Direction) (Outcome, bool) {
	out, ok, _ := s.Commit(d, nil)
	return out, ok
}

// Commit is Transition with a persist step. persist sees the outcome before
// the session advances; when it fails the session stays on the same record
// and the error is returned.
func (s *Session) Commit(d Direction, persist func(Outcome) error) (Outcome, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionLocked(d, persist)
}

// CommitDrag is Drag with a persist step, as in Commit.
func (s *Session) CommitDrag(dx float64, persist func(Outcome) error) (Outcome, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exhaustedLocked() {
		return Outcome{}, false, nil
	}
	s.gesture.Begin(0)
	s.gesture.Move(dx)
	return s.transitionLocked(s.gesture.Release(), persist)
}

func (s *Session) transitionLocked(d Direction, persist func(Outcome) error) (Outcome, bool, error) {
	if d != Left && d != Right {
		return Outcome{}, false, nil
	}
	if s.exhaustedLocked() || s.settlingLocked() {
		return Outcome{}, false, nil
	}

	id := s.ids[s.pos]
	out := Outcome{ID: id, Index: s.pos, Decision: DecisionSkip}
	if d == Right {
		out.Decision = DecisionAccept
	}
	if persist != nil {
		if err := persist(out); err != nil {
			s.gesture.Cancel()
			return Outcome{}, false, err
		}
	}
	if d == Right {
		s.accepted.add(id)
	}
	s.seen.add(id)
	s.pos++
	s.gesture.Cancel()
	s.settledAt = s.now().Add(s.settle)
	return out, true, nil
}

// Reset returns to Active(0). Accepted and seen ids are kept.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = 0
	s.gesture.Cancel()
	s.settledAt = time.Time{}
}

// BeginDrag starts tracking a horizontal drag at x.
func (s *Session) BeginDrag(x float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exhaustedLocked() {
		return false
	}
	s.gesture.Begin(x)
	return true
}

// MoveDrag updates the visual offset only and returns it.
func (s *Session) MoveDrag(x float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exhaustedLocked() {
		return 0
	}
	return s.gesture.Move(x)
}

// ReleaseDrag commits when the drag crossed the threshold.
func (s *Session) ReleaseDrag() (Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exhaustedLocked() {
		s.gesture.Cancel()
		return Outcome{}, false
	}
	out, ok, _ := s.transitionLocked(s.gesture.Release(), nil)
	return out, ok
}

// Drag is a whole gesture with displacement dx, as a single call.
func (s *Session) Drag(dx float64) (Outcome, bool) {
	if !s.BeginDrag(0) {
		return Outcome{}, false
	}
	s.MoveDrag(dx)
	return s.ReleaseDrag()
}

// Key maps a discrete key press to a transition.
func (s *Session) Key(key string) (Outcome, bool) {
	return s.Transition(KeyDirection(key))
}

func (s *Session) Exhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exhaustedLocked()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Position:   s.pos,
		Total:      len(s.ids),
		Exhausted:  s.exhaustedLocked(),
		Accepted:   s.accepted.list(),
		Seen:       s.seen.list(),
		DragOffset: s.gesture.Offset(),
		Dragging:   s.gesture.Active(),
		Settling:   s.settlingLocked(),
	}
	if !st.Exhausted {
		id := s.ids[s.pos]
		st.CurrentID = &id
	}
	return st
}

func (s *Session) exhaustedLocked() bool { return s.pos >= len(s.ids) }

func (s *Session) settlingLocked() bool {
	return !s.settledAt.IsZero() && s.now().Before(s.settledAt)
}

// idSet keeps insertion order for stable output.
type idSet struct {
	order []int64
	has   map[int64]struct{}
}

func newIDSet() *idSet { return &idSet{has: map[int64]struct{}{}} }

func (s *idSet) add(id int64) {
	if _, ok := s.has[id]; ok {
		return
	}
	s.has[id] = struct{}{}
	s.order = append(s.order, id)
}

func (s *idSet) list() []int64 {
	out := make([]int64, len(s.order))
	copy(out, s.order)
	return out
}
