package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"leavetracker/internal/domain/auth"
	"leavetracker/internal/transport/http/api"
)

type ctxKey string

const ctxKeyActor ctxKey = "actor"

// SessionChecker confirms that the session behind a token was not revoked.
type SessionChecker interface {
	SessionActive(ctx context.Context, userID int64, sessionID string) (bool, error)
}

// Auth requires a valid bearer token and stores the caller as an auth.Actor.
// When sessions is nil only the token signature and expiry are checked.
func Auth(secret string, sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := GetRequestID(r.Context())
			token, ok := bearerToken(r)
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
				return
			}

			claims, err := auth.ParseToken(secret, token)
			if err != nil {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token", reqID)
				return
			}

			if sessions != nil {
				active, err := sessions.SessionActive(r.Context(), claims.UserID, claims.SessionID)
				if err != nil {
					zap.L().Error("session check failed", zap.Int64("user_id", claims.UserID), zap.Error(err))
					api.Fail(w, http.StatusInternalServerError, "session_error", "failed to verify session", reqID)
					return
				}
				if !active {
					api.Fail(w, http.StatusUnauthorized, "unauthorized", "session has ended", reqID)
					return
				}
			}

			ctx := WithActor(r.Context(), auth.Actor{
				UserID:    claims.UserID,
				Name:      claims.Name,
				Role:      claims.Role,
				SessionID: claims.SessionID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

func WithActor(ctx context.Context, actor auth.Actor) context.Context {
	return context.WithValue(ctx, ctxKeyActor, actor)
}

func GetActor(ctx context.Context) (auth.Actor, bool) {
	actor, ok := ctx.Value(ctxKeyActor).(auth.Actor)
	return actor, ok
}
