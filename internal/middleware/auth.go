package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"seriatim/internal/auth"
	"seriatim/internal/domain"
	"seriatim/internal/httputil"
	"seriatim/internal/session"
)

// AuthMiddleware verifies the bearer token, if any, and puts the user and
// session ids on the request context. Requests without a token continue
// anonymously; services decide whether that is allowed. sessions may be nil.
func AuthMiddleware(verifier auth.JWTVerifier, sessions session.Store, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := httputil.BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			userID := claims.GetUserID()

			if sessions != nil && claims.SessionID != "" {
				revoked, err := sessions.IsRevoked(r.Context(), claims.SessionID)
				if err != nil {
					logger.Error("session lookup failed", "error", err, "user_id", userID)
					httputil.RespondError(w, http.StatusServiceUnavailable, "session store unavailable")
					return
				}
				if revoked {
					httputil.RespondError(w, http.StatusUnauthorized, "session has been signed out")
					return
				}

				_, err = sessions.Record(r.Context(), userID, claims.SessionID, httputil.ClientIP(r))
				if errors.Is(err, domain.ErrForbidden) {
					httputil.RespondError(w, http.StatusUnauthorized, "session does not belong to this user")
					return
				}
				if err != nil {
					logger.Warn("failed to record session", "error", err, "user_id", userID)
				}
			}

			r = httputil.WithUserID(r, userID)
			r = httputil.WithSessionID(r, claims.SessionID)
			next.ServeHTTP(w, r)
		})
	}
}
