package httputils

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/pr-poehali-dev/moonly-messenger-2/internal/pkg/apperr"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func ResponseError(w http.ResponseWriter, errorCode int, errorMessage string) {
	ResponseJSON(w, errorCode, ErrorResponse{
		Error: errorMessage,
	})
}

// ResponseAppError maps the service error kinds onto HTTP statuses.
func ResponseAppError(w http.ResponseWriter, err error) {
	ResponseJSON(w, StatusOf(err), ErrorResponse{Error: apperr.MessageOf(err)})
}

func StatusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	case apperr.InvalidArgument:
		return http.StatusBadRequest
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func ResponseJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON response: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
