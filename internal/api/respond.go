package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"hapipet/internal/auth"
	apperr "hapipet/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError sends domain errors with their status and hides everything else behind a 500.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var he *apperr.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			log.Error(he.Message, zap.String("path", r.URL.Path), zap.Error(he.Err))
		}
		writeJSON(w, he.Code, ErrorResponse{Error: he.Message})
		return
	}
	log.Error("request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.ErrBadRequest("Invalid request body")
	}
	return nil
}

func claimsOf(r *http.Request) *auth.Claims {
	c, _ := auth.FromContext(r.Context())
	if c == nil {
		return &auth.Claims{}
	}
	return c
}
