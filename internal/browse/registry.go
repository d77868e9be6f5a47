// Package browse runs selection sessions on behalf of users. Each session
// walks a filtered list of lawyers; accepted lawyers are written to the
// owner's shortlist and every decided lawyer is marked viewed.
package browse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"legalconnect-engine/internal/domain"
	"legalconnect-engine/internal/selection"
	"legalconnect-engine/internal/shortlist"
)

var ErrNotFound = errors.New("browse session not found")

const DefaultCacheSize = 256

type Options struct {
	CacheSize int
	Selection selection.Options
}

type Registry struct {
	shelf *shortlist.Shelf
	opts  selection.Options
	cache *lru.Cache[string, *Browse]
}

func NewRegistry(shelf *shortlist.Shelf, opts Options) (*Registry, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *Browse](size)
	if err != nil {
		return nil, fmt.Errorf("browse: session cache: %w", err)
	}
	return &Registry{shelf: shelf, opts: opts.Selection, cache: cache}, nil
}

// Browse is one live session and the records it walks.
type Browse struct {
	ID        string
	Owner     string
	CreatedAt time.Time

	lawyers []domain.Lawyer
	byID    map[int64]int
	session *selection.Session
}

// Step is what every call returns to the client.
type Step struct {
	ID      string             `json:"id"`
	Outcome *selection.Outcome `json:"outcome,omitempty"`
	State   selection.State    `json:"state"`
	Current *domain.Lawyer     `json:"current"`
	Counts  shortlist.Counts   `json:"counts"`
}

// Start opens a session over lawyers in the given order.
func (r *Registry) Start(ctx context.Context, owner string, lawyers []domain.Lawyer) (Step, error) {
	b := r.newBrowse(owner, lawyers)
	r.cache.Add(b.ID, b)
	return r.step(ctx, b, nil)
}

func (r *Registry) newBrowse(owner string, lawyers []domain.Lawyer) *Browse {
	cp := make([]domain.Lawyer, len(lawyers))
	copy(cp, lawyers)
	ids := make([]int64, len(cp))
	byID := make(map[int64]int, len(cp))
	for i, l := range cp {
		ids[i] = l.ID
		byID[l.ID] = i
	}
	return &Browse{
		ID:        uuid.NewString(),
		Owner:     owner,
		CreatedAt: time.Now().UTC(),
		lawyers:   cp,
		byID:      byID,
		session:   selection.New(ids, r.opts),
	}
}

// Get returns the session only to its owner.
func (r *Registry) Get(id, owner string) (*Browse, error) {
	b, ok := r.cache.Get(id)
	if !ok || b.Owner != owner {
		return nil, ErrNotFound
	}
	return b, nil
}

func (r *Registry) State(ctx context.Context, id, owner string) (Step, error) {
	b, err := r.Get(id, owner)
	if err != nil {
		return Step{}, err
	}
	return r.step(ctx, b, nil)
}

// Swipe feeds a discrete direction.
func (r *Registry) Swipe(ctx context.Context, id, owner string, dir selection.Direction) (Step, error) {
	return r.apply(ctx, id, owner, func(s *selection.Session, persist func(selection.Outcome) error) (selection.Outcome, bool, error) {
		return s.Commit(dir, persist)
	})
}

// Drag feeds a completed drag of horizontal displacement dx.
func (r *Registry) Drag(ctx context.Context, id, owner string, dx float64) (Step, error) {
	return r.apply(ctx, id, owner, func(s *selection.Session, persist func(selection.Outcome) error) (selection.Outcome, bool, error) {
		return s.CommitDrag(dx, persist)
	})
}

func (r *Registry) Key(ctx context.Context, id, owner, key string) (Step, error) {
	return r.apply(ctx, id, owner, func(s *selection.Session, persist func(selection.Outcome) error) (selection.Outcome, bool, error) {
		return s.Commit(selection.KeyDirection(key), persist)
	})
}

// Reset rewinds to the first record. Decisions already persisted stay.
func (r *Registry) Reset(ctx context.Context, id, owner string) (Step, error) {
	b, err := r.Get(id, owner)
	if err != nil {
		return Step{}, err
	}
	b.session.Reset()
	return r.step(ctx, b, nil)
}

// ResetAll rewinds, forgets the session's decisions, and empties the
// owner's persisted shortlist and viewed list.
func (r *Registry) ResetAll(ctx context.Context, id, owner string) (Step, error) {
	b, err := r.Get(id, owner)
	if err != nil {
		return Step{}, err
	}
	if err := r.shelf.Book(owner).ResetAll(ctx); err != nil {
		return Step{}, err
	}
	ids := make([]int64, len(b.lawyers))
	for i, l := range b.lawyers {
		ids[i] = l.ID
	}
	fresh := &Browse{
		ID:        b.ID,
		Owner:     b.Owner,
		CreatedAt: b.CreatedAt,
		lawyers:   b.lawyers,
		byID:      b.byID,
		session:   selection.New(ids, r.opts),
	}
	r.cache.Add(fresh.ID, fresh)
	return r.step(ctx, fresh, nil)
}

func (r *Registry) Close(id, owner string) bool {
	if _, err := r.Get(id, owner); err != nil {
		return false
	}
	return r.cache.Remove(id)
}

func (r *Registry) Len() int { return r.cache.Len() }

type commitFunc func(*selection.Session, func(selection.Outcome) error) (selection.Outcome, bool, error)

// apply writes the decision to the owner's shortlist book before the session
// advances, so a storage failure leaves the record current and retryable.
func (r *Registry) apply(ctx context.Context, id, owner string, fn commitFunc) (Step, error) {
	b, err := r.Get(id, owner)
	if err != nil {
		return Step{}, err
	}
	book := r.shelf.Book(owner)
	out, ok, err := fn(b.session, func(out selection.Outcome) error {
		if out.Decision == selection.DecisionAccept {
			if l, ok := b.lawyer(out.ID); ok {
				if _, err := book.Add(ctx, l); err != nil {
					return err
				}
			}
		}
		return book.MarkViewed(ctx, out.ID)
	})
	if err != nil {
		return Step{}, err
	}
	if !ok {
		return r.step(ctx, b, nil)
	}
	return r.step(ctx, b, &out)
}

func (r *Registry) step(ctx context.Context, b *Browse, out *selection.Outcome) (Step, error) {
	counts, err := r.shelf.Book(b.Owner).Counts(ctx)
	if err != nil {
		return Step{}, err
	}
	st := b.session.State()
	s := Step{ID: b.ID, Outcome: out, State: st, Counts: counts}
	if st.CurrentID != nil {
		if l, ok := b.lawyer(*st.CurrentID); ok {
			s.Current = &l
		}
	}
	return s, nil
}

func (b *Browse) lawyer(id int64) (domain.Lawyer, bool) {
	i, ok := b.byID[id]
	if !ok {
		return domain.Lawyer{}, false
	}
	return b.lawyers[i], true
}
