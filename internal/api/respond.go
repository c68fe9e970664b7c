package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"studiodesk/internal/conflict"
	"studiodesk/internal/database"
	"studiodesk/internal/repository"
	"studiodesk/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// maxJSONBody caps request bodies outside of uploads.
const maxJSONBody = 64 << 10

var errBodyTooLarge = errors.New("request body too large")

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return &service.ValidationError{Field: "body", Message: "Invalid JSON body"}
	}
	return nil
}

// respondError maps service and store errors to status codes. Unknown errors
// are logged and reported without detail.
func (s *HTTPServer) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	var cerr *conflict.Error

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": verr.Message, "field": verr.Field})
	case errors.As(err, &cerr):
		writeJSON(w, http.StatusConflict, map[string]string{"error": cerr.Error(), "reason": string(cerr.Reason)})
	case errors.Is(err, errBodyTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, database.ErrConcurrentModification):
		writeError(w, http.StatusConflict, "Record was modified concurrently, please retry")
	case errors.Is(err, repository.ErrLockTimeout):
		writeError(w, http.StatusServiceUnavailable, "Server busy, please retry")
	case errors.Is(err, service.ErrUploadsDisabled):
		writeError(w, http.StatusServiceUnavailable, "Uploads are not configured")
	default:
		s.logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
