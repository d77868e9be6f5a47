package httpapi

import (
	"database/sql"
	"net/http"

	"legalconnect-engine/internal/store"
)

type DBHandler struct {
	DB *sql.DB
}

// Checkpoint is also restricted to loopback callers, on top of admin auth.
func (h DBHandler) Checkpoint(w http.ResponseWriter, r *http.Request) {
	if !isLoopback(r) {
		WriteError(w, r, http.StatusForbidden, "forbidden", "checkpoint is only available from localhost")
		return
	}
	if err := store.Checkpoint(r.Context(), h.DB); err != nil {
		writeInternal(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
