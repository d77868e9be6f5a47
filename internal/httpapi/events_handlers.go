package httpapi

import (
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"legalconnect-engine/internal/auth"
	"legalconnect-engine/internal/events"
	"legalconnect-engine/internal/metrics"
)

const sseKeepAlive = 25 * time.Second

// EventsHandler streams hub events as SSE. Anonymous clients receive public
// events. A valid token, sent as a bearer header or as ?token= because
// EventSource cannot set headers, adds the caller's own shortlist events.
// ?types= narrows the stream to a comma list of type prefixes.
type EventsHandler struct {
	Hub    *events.Hub
	Tokens *atomic.Pointer[auth.Issuer]
}

func (h EventsHandler) ServeSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, r, http.StatusInternalServerError, "stream_unsupported", "Streaming unsupported")
		return
	}

	f := events.Filter{Types: events.ParseTypes(r.URL.Query().Get("types"))}
	if raw := h.token(r); raw != "" {
		claims, err := h.Tokens.Load().Verify(raw)
		if err != nil {
			metrics.RecordAuthFailure("invalid_token")
			WriteError(w, r, http.StatusForbidden, "invalid_token", "invalid or expired token")
			return
		}
		f.Audience = ownerKey(claims)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := h.Hub.Subscribe(f)
	metrics.SSEClients.Inc()
	defer func() {
		metrics.SSEClients.Dec()
		if n := h.Hub.Unsubscribe(sub); n > 0 {
			log.Printf("level=warn msg=\"sse closed\" request_id=%s dropped=%d", RequestIDFrom(r.Context()), n)
		}
	}()

	ping := events.New(RequestIDFrom(r.Context()), events.TypePing, nil)
	fmt.Fprintf(w, "event: message\ndata: %s\n\n", ping.Encode())
	flusher.Flush()

	tick := time.NewTicker(sseKeepAlive)
	defer tick.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-tick.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case msg, ok := <-sub.C:
			if !ok {
				return
			}
			fmt.Fprintf(w, "id: %d\nevent: message\ndata: %s\n\n", msg.Seq, msg.Data)
			flusher.Flush()
		}
	}
}

func (h EventsHandler) token(r *http.Request) string {
	if h.Tokens == nil {
		return ""
	}
	if raw, err := auth.BearerToken(r.Header.Get("Authorization")); err == nil {
		return raw
	}
	return r.URL.Query().Get("token")
}
