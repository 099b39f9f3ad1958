package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/openhome-school/backend/internal/apperrors"
	"github.com/openhome-school/backend/internal/models"
	"github.com/openhome-school/backend/internal/observability"
)

type contextKey struct{}

var userIDKey = contextKey{}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the user id set by Middleware, if any.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	uid, ok := ctx.Value(userIDKey).(int64)
	return uid, ok
}

// Middleware attributes requests to a user when they carry a valid bearer
// token. Requests without an Authorization header pass through anonymously;
// a header that is present but invalid is rejected with 401. With an empty
// secret the header is ignored entirely.
func Middleware(secret []byte, logger *observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if len(secret) == 0 || header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, err := bearerToken(header)
			if err == nil {
				var userID int64
				userID, err = ParseToken(secret, token)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
					return
				}
			}

			logger.Warn(r.Context(), "Rejected bearer token", map[string]interface{}{
				"path":  r.URL.Path,
				"error": err.Error(),
			})
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(models.ErrorResponse{
				Error: "Invalid or expired token",
				Code:  string(apperrors.ErrorCodeUnauthorized),
			})
		})
	}
}
