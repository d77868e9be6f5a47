package events

import (
	"strings"
	"sync"
)

const DefaultBuffer = 16

// Message is an encoded event ready for the wire.
type Message struct {
	Seq  uint64
	Type string
	Data string
}

// Filter narrows what a subscriber receives. An empty Audience sees public
// events only; a non-empty one also sees events addressed to it. Types holds
// type prefixes ("shortlist", "lawyer.created"); empty accepts every type.
type Filter struct {
	Audience string
	Types    []string
}

func (f Filter) accepts(audience, typ string) bool {
	if audience != "" && audience != f.Audience {
		return false
	}
	if len(f.Types) == 0 {
		return true
	}
	for _, p := range f.Types {
		if typ == p || strings.HasPrefix(typ, p+".") {
			return true
		}
	}
	return false
}

// ParseTypes splits a comma separated list of type prefixes.
func ParseTypes(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type Subscription struct {
	C <-chan Message

	ch      chan Message
	filter  Filter
	dropped int
}

// Hub fans events out to subscribers. Publishing never blocks: a subscriber
// whose buffer is full loses the event.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	seq    uint64
	buffer int
	closed bool

	// OnDrop, when set, is called under the hub lock for every dropped event.
	OnDrop func()
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{}), buffer: DefaultBuffer}
}

func (h *Hub) Subscribe(f Filter) *Subscription {
	ch := make(chan Message, h.buffer)
	s := &Subscription{C: ch, ch: ch, filter: f}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return s
	}
	h.subs[s] = struct{}{}
	return s
}

// Close ends every subscription so streaming handlers return, and makes
// later subscriptions start closed. Emit after Close is a no-op.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		delete(h.subs, s)
		close(s.ch)
	}
}

// Unsubscribe closes s.C and returns how many events s missed. Calling it
// twice is safe.
func (h *Hub) Unsubscribe(s *Subscription) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; !ok {
		return s.dropped
	}
	delete(h.subs, s)
	close(s.ch)
	return s.dropped
}

// Emit publishes a public event. A nil hub drops it.
func (h *Hub) Emit(reqID, typ string, data any) {
	h.EmitTo("", reqID, typ, data)
}

// EmitTo publishes an event only subscribers of audience receive.
func (h *Hub) EmitTo(audience, reqID, typ string, data any) {
	if h == nil {
		return
	}
	e := New(reqID, typ, data)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	e.Seq = h.seq
	msg := Message{Seq: e.Seq, Type: typ, Data: e.Encode()}
	for s := range h.subs {
		if !s.filter.accepts(audience, typ) {
			continue
		}
		select {
		case s.ch <- msg:
		default:
			s.dropped++
			if h.OnDrop != nil {
				h.OnDrop()
			}
		}
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
