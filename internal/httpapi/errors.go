package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"rcsapi/internal/domain"
)

const (
	detailInvalidJSON = "invalid json"
	detailBadForm     = "bad form"
	detailDependency  = "dependency error"
	detailCredentials = "Could not validate credentials"
)

type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	writeJSON(w, status, errorBody{Detail: detail})
}

// writeError maps the domain error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is a dependency failure (DB down, etc).
func writeError(w http.ResponseWriter, err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		writeDetail(w, http.StatusUnauthorized, err.Error())
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		writeDetail(w, http.StatusForbidden, err.Error())
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		writeDetail(w, http.StatusNotFound, err.Error())
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		writeDetail(w, http.StatusBadRequest, err.Error())
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrMissingFields):
		writeDetail(w, http.StatusBadRequest, err.Error())
		return http.StatusBadRequest
	default:
		writeDetail(w, http.StatusBadGateway, detailDependency)
		return http.StatusBadGateway
	}
}
