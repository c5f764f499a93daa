package middleware

import (
	"context"
	"net/http"

	"github.com/ndewijer/Investment-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/validation"
)

// OwnerHeader carries the identity of the caller. It is set by the
// authenticating proxy in front of the service.
const OwnerHeader = "X-Owner-ID"

type ownerKey struct{}

// WithOwner returns a copy of ctx carrying ownerID.
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey{}, ownerID)
}

// OwnerFromContext returns the owner stored by RequireOwner.
func OwnerFromContext(ctx context.Context) (string, bool) {
	ownerID, ok := ctx.Value(ownerKey{}).(string)
	return ownerID, ok && ownerID != ""
}

// RequireOwner rejects requests without a valid owner header with 401
// Unauthorized and stores the owner in the request context otherwise.
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID := r.Header.Get(OwnerHeader)

		if ownerID == "" {
			response.RespondError(w, http.StatusUnauthorized, "owner identity is required", OwnerHeader+" header is missing")
			return
		}

		if err := validation.ValidateUUID(ownerID); err != nil {
			response.RespondError(w, http.StatusUnauthorized, "invalid owner identity", err.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), ownerID)))
	})
}
