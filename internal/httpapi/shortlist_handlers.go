package httpapi

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"legalconnect-engine/internal/events"
	"legalconnect-engine/internal/export"
	"legalconnect-engine/internal/metrics"
	"legalconnect-engine/internal/shortlist"
	"legalconnect-engine/internal/store"
)

type ShortlistHandler struct {
	DB    *sql.DB
	Hub   *events.Hub
	Shelf *shortlist.Shelf
	Now   func() time.Time
}

func (h ShortlistHandler) book(r *http.Request) *shortlist.Book {
	c, _ := ClaimsFrom(r.Context())
	return h.Shelf.Book(ownerKey(c))
}

func (h ShortlistHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

type shortlistResp struct {
	Entries []shortlist.Entry `json:"entries"`
	Counts  shortlist.Counts  `json:"counts"`
}

func (h ShortlistHandler) respond(w http.ResponseWriter, r *http.Request, status int) {
	b := h.book(r)
	entries, err := b.Entries(r.Context())
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	counts, err := b.Counts(r.Context())
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	WriteJSON(w, status, shortlistResp{Entries: entries, Counts: counts})
}

func (h ShortlistHandler) List(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK)
}

func (h ShortlistHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.book(r).Clear(r.Context()); err != nil {
		writeInternal(w, r, err)
		return
	}
	h.changed(r, "clear", 0)
	w.WriteHeader(http.StatusNoContent)
}

// AddByPath shortlists a roster lawyer. Adding one already present is not an
// error and leaves the original timestamp.
func (h ShortlistHandler) AddByPath(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "/api/shortlist/")
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}
	l, err := store.GetLawyer(r.Context(), h.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", "lawyer not found")
		return
	}
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	added, err := h.book(r).Add(r.Context(), l)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
		h.changed(r, "add", id)
	}
	h.respond(w, r, status)
}

func (h ShortlistHandler) RemoveByPath(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "/api/shortlist/")
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}
	removed, err := h.book(r).Remove(r.Context(), id)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	if !removed {
		WriteError(w, r, http.StatusNotFound, "not_found", "lawyer is not shortlisted")
		return
	}
	h.changed(r, "remove", id)
	h.respond(w, r, http.StatusOK)
}

// Export downloads the shortlist as CSV.
func (h ShortlistHandler) Export(w http.ResponseWriter, r *http.Request) {
	entries, err := h.book(r).Entries(r.Context())
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(h.now())))
	if err := export.WriteCSV(w, entries); err != nil {
		logError(r, err)
		return
	}
	metrics.CSVExports.Inc()
}

func (h ShortlistHandler) Viewed(w http.ResponseWriter, r *http.Request) {
	ids, err := h.book(r).Viewed(r.Context())
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"viewed": ids})
}

func (h ShortlistHandler) ClearViewed(w http.ResponseWriter, r *http.Request) {
	if err := h.book(r).ClearViewed(r.Context()); err != nil {
		writeInternal(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h ShortlistHandler) changed(r *http.Request, action string, id int64) {
	data := map[string]any{"action": action}
	if id > 0 {
		data["lawyerId"] = id
	}
	c, _ := ClaimsFrom(r.Context())
	h.Hub.EmitTo(ownerKey(c), RequestIDFrom(r.Context()), events.TypeShortlistChanged, data)
}
