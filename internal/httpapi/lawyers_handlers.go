package httpapi

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"

	"legalconnect-engine/internal/config"
	"legalconnect-engine/internal/domain"
	"legalconnect-engine/internal/events"
	"legalconnect-engine/internal/filter"
	"legalconnect-engine/internal/metrics"
	"legalconnect-engine/internal/store"
)

const defaultNearestK = 5

type LawyersHandler struct {
	DB       *sql.DB
	Hub      *events.Hub
	CfgVal   *atomic.Value // stores config.Config
	Validate *Validator
}

type listResp struct {
	filter.Result
	Nearby   []domain.Lawyer `json:"nearby"`
	Criteria filter.Criteria `json:"criteria"`
}

func (h LawyersHandler) nearbyLimit() int {
	if h.CfgVal == nil {
		return 6
	}
	return h.CfgVal.Load().(config.Config).Filters.NearbyLimit
}

// List filters the roster. Criteria come from the query string under the
// same names the UI uses; state, responseGuarantee and sortBy refine the
// result, and north/south/east/west clip it to a map viewport.
func (h LawyersHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c, err := filter.FromQuery(q)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}
	bounds, hasBounds, err := boundsFromQuery(q)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_bounds", err.Error())
		return
	}

	all, err := store.ListLawyers(r.Context(), h.DB)
	if err != nil {
		writeInternal(w, r, err)
		return
	}

	res := filter.Run(all, c)
	res.Lawyers = filter.Refine(res.Lawyers, filter.RefinementFromQuery(q))
	if hasBounds {
		res.Lawyers = filter.InBounds(res.Lawyers, bounds)
	}
	res.ResultCount = len(res.Lawyers)
	metrics.FilterResults.Observe(float64(res.ResultCount))

	writeJSON(w, listResp{
		Result:   res,
		Nearby:   filter.Fallback(all, res, c, h.nearbyLimit()),
		Criteria: c,
	})
}

func boundsFromQuery(q url.Values) (filter.Bounds, bool, error) {
	keys := []string{"north", "south", "east", "west"}
	vals := make([]float64, len(keys))
	n := 0
	for i, k := range keys {
		raw := q.Get(k)
		if raw == "" {
			continue
		}
		v, err := parseFinite(raw)
		if err != nil {
			return filter.Bounds{}, false, errors.New(k + " must be a number")
		}
		vals[i] = v
		n++
	}
	if n == 0 {
		return filter.Bounds{}, false, nil
	}
	if n != len(keys) {
		return filter.Bounds{}, false, errors.New("north, south, east and west must be given together")
	}
	return filter.Bounds{North: vals[0], South: vals[1], East: vals[2], West: vals[3]}, true, nil
}

// parseFinite rejects NaN and infinities, which JSON cannot carry.
func parseFinite(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", raw)
	}
	return v, nil
}

func (h LawyersHandler) Facets(w http.ResponseWriter, r *http.Request) {
	all, err := store.ListLawyers(r.Context(), h.DB)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, filter.FacetsOf(all))
}

func (h LawyersHandler) Nearest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, errLat := parseFinite(q.Get("lat"))
	lng, errLng := parseFinite(q.Get("lng"))
	if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		WriteError(w, r, http.StatusBadRequest, "invalid_point", "lat and lng must be valid coordinates")
		return
	}
	k := defaultNearestK
	if raw := q.Get("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			WriteError(w, r, http.StatusBadRequest, "invalid_k", "k must be a positive integer")
			return
		}
		k = n
	}

	all, err := store.ListLawyers(r.Context(), h.DB)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, filter.Nearest(all, domain.Coordinates{Lat: lat, Lng: lng}, k))
}

func (h LawyersHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "/api/lawyers/")
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
	writeJSON(w, l)
}

type lawyerReq struct {
	Name               string              `json:"name" validate:"required,max=200"`
	Firm               string              `json:"firm" validate:"max=200"`
	Tier               string              `json:"tier"`
	PracticeArea       string              `json:"practiceArea" validate:"required"`
	Specialties        []string            `json:"specialties"`
	Location           string              `json:"location" validate:"required"`
	State              string              `json:"state" validate:"max=3"`
	ExperienceYears    int                 `json:"experienceYears" validate:"gte=0"`
	CaseCount          int                 `json:"caseCount" validate:"gte=0"`
	SuccessRate        int                 `json:"successRate" validate:"gte=0,lte=100"`
	HourlyRate         float64             `json:"hourlyRate" validate:"gte=0"`
	HourlyRateMax      float64             `json:"hourlyRateMax" validate:"gte=0"`
	Verified           bool                `json:"verified"`
	MediationCertified bool                `json:"mediationCertified"`
	ResponseGuarantee  bool                `json:"responseGuarantee"`
	Languages          []string            `json:"languages"`
	MaraNumber         string              `json:"maraNumber"`
	Bio                string              `json:"bio" validate:"max=4000"`
	AvatarColor        string              `json:"avatarColor"`
	Phone              string              `json:"phone"`
	Email              string              `json:"email" validate:"omitempty,email"`
	Website            string              `json:"website" validate:"omitempty,url"`
	Coordinates        *domain.Coordinates `json:"coordinates"`
}

func (req lawyerReq) lawyer() domain.Lawyer {
	return domain.Lawyer{
		Name:               req.Name,
		Firm:               req.Firm,
		Tier:               req.Tier,
		PracticeArea:       req.PracticeArea,
		Specialties:        req.Specialties,
		Location:           req.Location,
		State:              req.State,
		ExperienceYears:    req.ExperienceYears,
		CaseCount:          req.CaseCount,
		SuccessRate:        req.SuccessRate,
		HourlyRate:         req.HourlyRate,
		HourlyRateMax:      req.HourlyRateMax,
		Verified:           req.Verified,
		MediationCertified: req.MediationCertified,
		ResponseGuarantee:  req.ResponseGuarantee,
		Languages:          req.Languages,
		MaraNumber:         req.MaraNumber,
		Bio:                req.Bio,
		AvatarColor:        req.AvatarColor,
		Phone:              req.Phone,
		Email:              req.Email,
		Website:            req.Website,
		Coordinates:        req.Coordinates,
	}
}

func (h LawyersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req lawyerReq
	if err := decodeJSON(r, w, &req); err != nil {
		writeBadJSON(w, r, err)
		return
	}
	if verr := h.Validate.Struct(req); verr != nil {
		WriteValidation(w, r, verr)
		return
	}

	l := domain.Normalize(req.lawyer())
	if l.Name == "" || l.PracticeArea == "" || l.Location == "" {
		WriteValidation(w, r, &ValidationError{Fields: map[string]string{
			"_": "name, practiceArea and location cannot be blank",
		}})
		return
	}

	l, err := store.CreateLawyer(r.Context(), h.DB, l)
	if errors.Is(err, store.ErrExists) {
		WriteError(w, r, http.StatusConflict, "lawyer_exists", "a lawyer with this roster key already exists")
		return
	}
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	h.Hub.Emit(RequestIDFrom(r.Context()), events.TypeLawyerCreated, map[string]any{"id": l.ID})
	WriteJSON(w, http.StatusCreated, l)
}

func (h LawyersHandler) UpdateByPath(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "/api/lawyers/")
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}
	var patch store.LawyerPatch
	if err := decodeJSON(r, w, &patch); err != nil && !errors.Is(err, errEmptyBody) {
		writeBadJSON(w, r, err)
		return
	}
	if verr := h.Validate.Struct(patch); verr != nil {
		WriteValidation(w, r, verr)
		return
	}

	l, err := store.UpdateLawyer(r.Context(), h.DB, id, patch)
	switch {
	case errors.Is(err, store.ErrNoChanges):
		WriteError(w, r, http.StatusBadRequest, "no_changes", "no fields to update")
		return
	case errors.Is(err, store.ErrNotFound):
		WriteError(w, r, http.StatusNotFound, "not_found", "lawyer not found")
		return
	case err != nil:
		writeInternal(w, r, err)
		return
	}
	h.Hub.Emit(RequestIDFrom(r.Context()), events.TypeLawyerUpdated, map[string]any{"id": l.ID})
	writeJSON(w, l)
}

func (h LawyersHandler) DeleteByPath(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "/api/lawyers/")
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", err.Error())
		return
	}
	err = store.DeleteLawyer(r.Context(), h.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", "lawyer not found")
		return
	}
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	h.Hub.Emit(RequestIDFrom(r.Context()), events.TypeLawyerDeleted, map[string]any{"id": id})
	writeJSON(w, map[string]any{"ok": true, "id": id})
}
