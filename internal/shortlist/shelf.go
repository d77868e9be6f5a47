package shortlist

import (
	"strconv"
	"sync"
	"time"
)

// UserOwner is the owner key for a registered user's shortlist.
func UserOwner(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}

// Shelf hands out one Book per owner over a shared KV, so concurrent
// requests for the same owner serialize on the same Book.
type Shelf struct {
	kv  KV
	now func() time.Time

	mu    sync.Mutex
	books map[string]*Book
}

func NewShelf(kv KV) *Shelf {
	return &Shelf{kv: kv, now: time.Now, books: map[string]*Book{}}
}

func (s *Shelf) WithClock(now func() time.Time) *Shelf {
	s.now = now
	return s
}

func (s *Shelf) Book(owner string) *Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.books[owner]; ok {
		return b
	}
	b := NewBook(s.kv, owner).WithClock(s.now)
	s.books[owner] = b
	return b
}

func (s *Shelf) KV() KV { return s.kv }
