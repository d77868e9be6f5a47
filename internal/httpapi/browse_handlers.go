package httpapi

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"legalconnect-engine/internal/browse"
	"legalconnect-engine/internal/domain"
	"legalconnect-engine/internal/events"
	"legalconnect-engine/internal/filter"
	"legalconnect-engine/internal/metrics"
	"legalconnect-engine/internal/selection"
	"legalconnect-engine/internal/shortlist"
	"legalconnect-engine/internal/store"
)

type BrowseHandler struct {
	DB       *sql.DB
	Hub      *events.Hub
	Registry *browse.Registry
	Shelf    *shortlist.Shelf
}

type startBrowseReq struct {
	filter.Criteria
	// SkipViewed leaves out lawyers the user already decided on.
	SkipViewed bool `json:"skipViewed"`
}

// Start opens a session over the lawyers matching the posted criteria. An
// empty body browses the whole roster.
func (h BrowseHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startBrowseReq
	if err := decodeJSON(r, w, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeBadJSON(w, r, err)
		return
	}
	crit, err := req.Criteria.Normalized()
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}
	c, _ := ClaimsFrom(r.Context())
	owner := ownerKey(c)

	all, err := store.ListLawyers(r.Context(), h.DB)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	matched := filter.Apply(all, crit)
	if req.SkipViewed {
		viewed, err := h.Shelf.Book(owner).Viewed(r.Context())
		if err != nil {
			writeInternal(w, r, err)
			return
		}
		matched = withoutIDs(matched, viewed)
	}

	step, err := h.Registry.Start(r.Context(), owner, matched)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, step)
}

func withoutIDs(in []domain.Lawyer, ids []int64) []domain.Lawyer {
	skip := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		skip[id] = struct{}{}
	}
	out := make([]domain.Lawyer, 0, len(in))
	for _, l := range in {
		if _, ok := skip[l.ID]; !ok {
			out = append(out, l)
		}
	}
	return out
}

type swipeReq struct {
	Direction string `json:"direction"`
}

type dragReq struct {
	DX float64 `json:"dx"`
}

type keyReq struct {
	Key string `json:"key"`
}

// Route serves /api/browse/{id} and /api/browse/{id}/{action}.
func (h BrowseHandler) Route(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/browse/"), "/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		WriteError(w, r, http.StatusNotFound, "not_found", "browse session not found")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.state(w, r, id)
	case action == "" && r.Method == http.MethodDelete:
		h.close(w, r, id)
	case action != "" && r.Method == http.MethodPost:
		h.act(w, r, id, action)
	default:
		WriteError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (h BrowseHandler) state(w http.ResponseWriter, r *http.Request, id string) {
	c, _ := ClaimsFrom(r.Context())
	step, err := h.Registry.State(r.Context(), id, ownerKey(c))
	h.writeStep(w, r, step, err, "")
}

func (h BrowseHandler) close(w http.ResponseWriter, r *http.Request, id string) {
	c, _ := ClaimsFrom(r.Context())
	if !h.Registry.Close(id, ownerKey(c)) {
		WriteError(w, r, http.StatusNotFound, "not_found", "browse session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h BrowseHandler) act(w http.ResponseWriter, r *http.Request, id, action string) {
	c, _ := ClaimsFrom(r.Context())
	owner := ownerKey(c)
	ctx := r.Context()

	var (
		step browse.Step
		err  error
	)
	switch action {
	case "swipe":
		var req swipeReq
		if err := decodeJSON(r, w, &req); err != nil {
			writeBadJSON(w, r, err)
			return
		}
		dir := selection.ParseDirection(strings.ToLower(strings.TrimSpace(req.Direction)))
		if dir == selection.None {
			WriteError(w, r, http.StatusBadRequest, "invalid_direction", "direction must be left, right, skip or accept")
			return
		}
		step, err = h.Registry.Swipe(ctx, id, owner, dir)
	case "drag":
		var req dragReq
		if err := decodeJSON(r, w, &req); err != nil {
			writeBadJSON(w, r, err)
			return
		}
		step, err = h.Registry.Drag(ctx, id, owner, req.DX)
	case "key":
		var req keyReq
		if err := decodeJSON(r, w, &req); err != nil {
			writeBadJSON(w, r, err)
			return
		}
		step, err = h.Registry.Key(ctx, id, owner, req.Key)
	case "reset":
		step, err = h.Registry.Reset(ctx, id, owner)
	case "reset-all":
		step, err = h.Registry.ResetAll(ctx, id, owner)
		if err == nil {
			h.Hub.EmitTo(owner, RequestIDFrom(ctx), events.TypeShortlistChanged, map[string]any{"action": "reset"})
		}
	default:
		WriteError(w, r, http.StatusNotFound, "not_found", "unknown browse action")
		return
	}
	h.writeStep(w, r, step, err, action)
}

func (h BrowseHandler) writeStep(w http.ResponseWriter, r *http.Request, step browse.Step, err error, input string) {
	if errors.Is(err, browse.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", "browse session not found")
		return
	}
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	if out := step.Outcome; out != nil {
		metrics.RecordDecision(string(out.Decision), input)
		if out.Decision == selection.DecisionAccept {
			c, _ := ClaimsFrom(r.Context())
			h.Hub.EmitTo(ownerKey(c), RequestIDFrom(r.Context()), events.TypeShortlistChanged,
				map[string]any{"action": "add", "lawyerId": out.ID})
		}
	}
	writeJSON(w, step)
}
