package httpapi

import (
	"database/sql"
	"net/http"

	"legalconnect-engine/internal/domain"
	"legalconnect-engine/internal/store"
)

type HistoryHandler struct {
	DB       *sql.DB
	Validate *Validator
}

type historyReq struct {
	PracticeArea      string   `json:"practiceArea" validate:"max=100"`
	State             string   `json:"state" validate:"max=3"`
	Location          string   `json:"location" validate:"max=200"`
	MinExperience     int      `json:"minExperience" validate:"gte=0"`
	MaxRate           *float64 `json:"maxRate" validate:"omitempty,gte=0"`
	ResponseGuarantee bool     `json:"responseGuarantee"`
	Query             string   `json:"query" validate:"max=200"`
	ResultCount       int      `json:"resultCount" validate:"gte=0"`
}

func (h HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	c, _ := ClaimsFrom(r.Context())
	list, err := store.ListHistory(r.Context(), h.DB, c.UserID)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, list)
}

func (h HistoryHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req historyReq
	if err := decodeJSON(r, w, &req); err != nil {
		writeBadJSON(w, r, err)
		return
	}
	if verr := h.Validate.Struct(req); verr != nil {
		WriteValidation(w, r, verr)
		return
	}

	c, _ := ClaimsFrom(r.Context())
	rec, err := store.SaveHistory(r.Context(), h.DB, domain.SearchRecord{
		UserID:            c.UserID,
		PracticeArea:      req.PracticeArea,
		State:             req.State,
		Location:          req.Location,
		MinExperience:     req.MinExperience,
		MaxRate:           req.MaxRate,
		ResponseGuarantee: req.ResponseGuarantee,
		Query:             req.Query,
		ResultCount:       req.ResultCount,
	})
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, rec)
}
