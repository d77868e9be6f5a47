package httpapi

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"legalconnect-engine/internal/store"
)

type ComparisonHandler struct {
	DB *sql.DB
}

func (h ComparisonHandler) respond(w http.ResponseWriter, r *http.Request, status int) {
	c, _ := ClaimsFrom(r.Context())
	list, err := store.ListComparison(r.Context(), h.DB, c.UserID)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	WriteJSON(w, status, list)
}

func (h ComparisonHandler) List(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK)
}

func (h ComparisonHandler) Clear(w http.ResponseWriter, r *http.Request) {
	c, _ := ClaimsFrom(r.Context())
	if err := store.ClearComparison(r.Context(), h.DB, c.UserID); err != nil {
		writeInternal(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h ComparisonHandler) AddByPath(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "/api/comparison/")
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}
	c, _ := ClaimsFrom(r.Context())
	err = store.AddComparison(r.Context(), h.DB, c.UserID, id)
	switch {
	case errors.Is(err, store.ErrComparisonFull):
		WriteError(w, r, http.StatusBadRequest, "comparison_full",
			fmt.Sprintf("maximum %d lawyers can be compared", store.MaxComparison))
		return
	case errors.Is(err, store.ErrNotFound):
		WriteError(w, r, http.StatusNotFound, "not_found", "lawyer not found")
		return
	case errors.Is(err, store.ErrExists):
		WriteError(w, r, http.StatusBadRequest, "already_compared", "lawyer already in comparison")
		return
	case err != nil:
		writeInternal(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated)
}

func (h ComparisonHandler) RemoveByPath(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "/api/comparison/")
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}
	c, _ := ClaimsFrom(r.Context())
	err = store.RemoveComparison(r.Context(), h.DB, c.UserID, id)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", "lawyer not in comparison")
		return
	}
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK)
}
