package httpapi

import (
	"database/sql"
	"errors"
	"net/http"
	"sync/atomic"

	"legalconnect-engine/internal/auth"
	"legalconnect-engine/internal/domain"
	"legalconnect-engine/internal/metrics"
	"legalconnect-engine/internal/store"
)

type AuthHandler struct {
	DB       *sql.DB
	Tokens   *atomic.Pointer[auth.Issuer]
	Validate *Validator
}

type registerReq struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResp struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := decodeJSON(r, w, &req); err != nil {
		writeBadJSON(w, r, err)
		return
	}
	if verr := h.Validate.Struct(req); verr != nil {
		WriteValidation(w, r, verr)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	u, err := store.CreateUser(r.Context(), h.DB, domain.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	})
	if errors.Is(err, store.ErrExists) {
		WriteError(w, r, http.StatusBadRequest, "user_exists", "user already exists")
		return
	}
	if err != nil {
		writeInternal(w, r, err)
		return
	}

	tok, err := h.Tokens.Load().Issue(u)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, authResp{User: u, Token: tok})
}

func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decodeJSON(r, w, &req); err != nil {
		writeBadJSON(w, r, err)
		return
	}
	if verr := h.Validate.Struct(req); verr != nil {
		WriteValidation(w, r, verr)
		return
	}

	u, err := store.GetUserByEmail(r.Context(), h.DB, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		h.badCredentials(w, r)
		return
	}
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	if err := auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
		h.badCredentials(w, r)
		return
	}

	tok, err := h.Tokens.Load().Issue(u)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, authResp{User: u, Token: tok})
}

// Unknown email and wrong password look the same to the caller.
func (h AuthHandler) badCredentials(w http.ResponseWriter, r *http.Request) {
	metrics.RecordAuthFailure("bad_credentials")
	WriteError(w, r, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
}

func (h AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	c, _ := ClaimsFrom(r.Context())
	u, err := store.GetUserByID(r.Context(), h.DB, c.UserID)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", "user not found")
		return
	}
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, u)
}
