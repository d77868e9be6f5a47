package events

import (
	"encoding/json"
	"time"
)

// Event types published on /events.
const (
	TypePing             = "ping"
	TypeLawyerCreated    = "lawyer.created"
	TypeLawyerUpdated    = "lawyer.updated"
	TypeLawyerDeleted    = "lawyer.deleted"
	TypeRosterImported   = "roster.imported"
	TypeShortlistChanged = "shortlist.changed"
	TypeConfigUpdated    = "config.updated"
	TypeHistoryPruned    = "history.pruned"
)

// Version is the envelope version clients can switch on.
const Version = 1

// Event is the JSON envelope sent in each SSE data line. Seq is assigned by
// the hub and is zero for events that never went through one (pings).
type Event struct {
	Seq       uint64          `json:"seq,omitempty"`
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// New builds an envelope. Data that fails to marshal is left out.
func New(reqID, typ string, data any) Event {
	e := Event{
		Type:      typ,
		Version:   Version,
		At:        time.Now().UTC(),
		RequestID: reqID,
	}
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			e.Data = b
		}
	}
	return e
}

func (e Event) Encode() string {
	b, _ := json.Marshal(e)
	return string(b)
}
