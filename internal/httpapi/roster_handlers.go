package httpapi

import (
	"database/sql"
	"net/http"

	"legalconnect-engine/internal/events"
	"legalconnect-engine/internal/roster"
)

const maxRosterBytes = 8 << 20

type RosterHandler struct {
	DB  *sql.DB
	Hub *events.Hub
}

// Import loads an uploaded roster. The format comes from ?format= or, when
// absent, from the Content-Type header. Lawyers already present are skipped.
func (h RosterHandler) Import(w http.ResponseWriter, r *http.Request) {
	var (
		f   roster.Format
		err error
	)
	if name := r.URL.Query().Get("format"); name != "" {
		f, err = roster.FormatFromName(name)
	} else {
		f, err = roster.FormatFromContentType(r.Header.Get("Content-Type"))
	}
	if err != nil {
		WriteError(w, r, http.StatusUnsupportedMediaType, "unsupported_format", err.Error())
		return
	}

	lawyers, err := roster.Parse(http.MaxBytesReader(w, r.Body, maxRosterBytes), f)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_roster", err.Error())
		return
	}
	res, err := roster.Import(r.Context(), h.DB, lawyers)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	res.Files = 1

	if res.Added > 0 {
		h.Hub.Emit(RequestIDFrom(r.Context()), events.TypeRosterImported, res)
	}
	writeJSON(w, res)
}
