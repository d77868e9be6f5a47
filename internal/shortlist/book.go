// Package shortlist keeps a user's accepted lawyers and the ids they have
// already viewed. State lives in a KV collaborator so the same book survives
// restarts and can be shared by several readers.
package shortlist

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"legalconnect-engine/internal/domain"
)

// Entry is a snapshot of a lawyer taken when it was shortlisted. Later edits
// to the roster do not change it.
type Entry struct {
	domain.Lawyer
	ShortlistedAt time.Time `json:"shortlistedAt"`
}

type Counts struct {
	Shortlisted int `json:"shortlisted"`
	Viewed      int `json:"viewed"`
}

type Book struct {
	kv    KV
	owner string
	now   func() time.Time

	// serializes read-modify-write on this owner's keys
	mu sync.Mutex
}

func NewBook(kv KV, owner string) *Book {
	return &Book{kv: kv, owner: owner, now: time.Now}
}

// WithClock replaces the clock used to stamp ShortlistedAt.
func (b *Book) WithClock(now func() time.Time) *Book {
	b.now = now
	return b
}

func (b *Book) Owner() string { return b.owner }

func ShortlistKey(owner string) string { return owner + ":shortlist" }

func ViewedKey(owner string) string { return owner + ":viewed" }

func (b *Book) Entries(ctx context.Context) ([]Entry, error) {
	var out []Entry
	if err := b.load(ctx, ShortlistKey(b.owner), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Entry{}
	}
	return out, nil
}

func (b *Book) Contains(ctx context.Context, id int64) (bool, error) {
	entries, err := b.Entries(ctx)
	if err != nil {
		return false, err
	}
	return indexOf(entries, id) >= 0, nil
}

// Add appends a snapshot of l. Adding an id that is already present leaves
// the book unchanged and reports false.
func (b *Book) Add(ctx context.Context, l domain.Lawyer) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addLocked(ctx, l)
}

func (b *Book) addLocked(ctx context.Context, l domain.Lawyer) (bool, error) {
	entries, err := b.Entries(ctx)
	if err != nil {
		return false, err
	}
	if indexOf(entries, l.ID) >= 0 {
		return false, nil
	}
	entries = append(entries, Entry{Lawyer: l, ShortlistedAt: b.now().UTC()})
	return true, b.store(ctx, ShortlistKey(b.owner), entries)
}

func (b *Book) Remove(ctx context.Context, id int64) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.removeLocked(ctx, id)
}

func (b *Book) removeLocked(ctx context.Context, id int64) (bool, error) {
	entries, err := b.Entries(ctx)
	if err != nil {
		return false, err
	}
	i := indexOf(entries, id)
	if i < 0 {
		return false, nil
	}
	entries = append(entries[:i], entries[i+1:]...)
	return true, b.store(ctx, ShortlistKey(b.owner), entries)
}

// Toggle adds l when absent and removes it otherwise. It returns whether l
// is shortlisted afterwards.
func (b *Book) Toggle(ctx context.Context, l domain.Lawyer) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	removed, err := b.removeLocked(ctx, l.ID)
	if err != nil || removed {
		return false, err
	}
	_, err = b.addLocked(ctx, l)
	return err == nil, err
}

func (b *Book) Clear(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store(ctx, ShortlistKey(b.owner), []Entry{})
}

func (b *Book) Viewed(ctx context.Context) ([]int64, error) {
	var out []int64
	if err := b.load(ctx, ViewedKey(b.owner), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []int64{}
	}
	return out, nil
}

func (b *Book) MarkViewed(ctx context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ids, err := b.Viewed(ctx)
	if err != nil {
		return err
	}
	for _, v := range ids {
		if v == id {
			return nil
		}
	}
	return b.store(ctx, ViewedKey(b.owner), append(ids, id))
}

func (b *Book) ClearViewed(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store(ctx, ViewedKey(b.owner), []int64{})
}

// ResetAll empties both the shortlist and the viewed list.
func (b *Book) ResetAll(ctx context.Context) error {
	if err := b.Clear(ctx); err != nil {
		return err
	}
	return b.ClearViewed(ctx)
}

func (b *Book) Counts(ctx context.Context) (Counts, error) {
	entries, err := b.Entries(ctx)
	if err != nil {
		return Counts{}, err
	}
	viewed, err := b.Viewed(ctx)
	if err != nil {
		return Counts{}, err
	}
	return Counts{Shortlisted: len(entries), Viewed: len(viewed)}, nil
}

func (b *Book) load(ctx context.Context, key string, v any) error {
	raw, err := b.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("shortlist: get %s: %w", key, err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("shortlist: decode %s: %w", key, err)
	}
	return nil
}

func (b *Book) store(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("shortlist: encode %s: %w", key, err)
	}
	if err := b.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("shortlist: set %s: %w", key, err)
	}
	return nil
}

func indexOf(entries []Entry, id int64) int {
	for i, e := range entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}
