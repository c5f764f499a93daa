package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/ndewijer/Investment-Ledger-Backend/internal/api/middleware"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/apperrors"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// parseJSON decodes the request body into T. Unknown fields and trailing
// data are rejected.
func parseJSON[T any](r *http.Request) (T, error) {
	var v T
	if r.Body == nil {
		return v, errors.New("request body is required")
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("failed to decode request body: %w", err)
	}
	if dec.More() {
		return v, errors.New("request body must contain a single JSON object")
	}
	return v, nil
}

// requireOwner returns the authenticated owner or writes 401.
func requireOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	ownerID, ok := middleware.OwnerFromContext(r.Context())
	if !ok {
		response.RespondError(w, http.StatusUnauthorized, "owner identity is required", "")
		return "", false
	}
	return ownerID, true
}

// statusFor maps an error category to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrInsufficientHoldings):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes err with the status of its category. Domain
// errors are reported with their own message; anything else is logged and
// reported with fallback.
func respondServiceError(w http.ResponseWriter, err error, fallback error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).Error(fallback.Error())
		response.RespondError(w, status, fallback.Error(), err.Error())
		return
	}
	response.RespondError(w, status, err.Error(), "")
}
