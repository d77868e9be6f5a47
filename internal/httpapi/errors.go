package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
)

type APIError struct {
	Error struct {
		Code      string            `json:"code"`
		Message   string            `json:"message"`
		RequestID string            `json:"request_id,omitempty"`
		Fields    map[string]string `json:"fields,omitempty"`
	} `json:"error"`
}

// WriteJSON encodes v before touching the response, so a value that cannot
// be encoded becomes a 500 instead of an empty body behind the status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("level=error msg=\"encode response\" type=%T err=%q", v, err)
		status = http.StatusInternalServerError
		b = []byte(`{"error":{"code":"internal_error","message":"response encoding failed"}}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}

// WriteValidation reports per-field problems as a 400.
func WriteValidation(w http.ResponseWriter, r *http.Request, verr *ValidationError) {
	var e APIError
	e.Error.Code = "validation_failed"
	e.Error.Message = verr.Error()
	e.Error.RequestID = RequestIDFrom(r.Context())
	e.Error.Fields = verr.Fields
	WriteJSON(w, http.StatusBadRequest, e)
}

func writeInternal(w http.ResponseWriter, r *http.Request, err error) {
	logError(r, err)
	WriteError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
}
