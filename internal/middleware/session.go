// Package middleware provides HTTP middlewares for sessions and logging.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/atinyakov/AuthPortal/internal/common"
	"github.com/atinyakov/AuthPortal/internal/models"
	"go.uber.org/zap"
)

type ctxKey string

const sessionKey ctxKey = "session"

// SessionCookie is the name of the cookie that carries the session token.
const SessionCookie = "sessionid"

// SessionLookup resolves a session token to a live session.
type SessionLookup interface {
	// SessionByToken returns common.ErrNotFound for unknown or expired tokens.
	SessionByToken(ctx context.Context, token string) (*models.Session, error)
}

// Sessions attaches the caller's session, if any, to the request context.
//
// It never rejects a request: anonymous visitors pass through with no
// session in context. A stale cookie is expired in the response. Lookup
// failures other than "not found" are logged and treated as anonymous.
func Sessions(lookup SessionLookup, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := lookup.SessionByToken(r.Context(), cookie.Value)
			switch {
			case err == nil:
				r = r.WithContext(WithSession(r.Context(), session))
			case errors.Is(err, common.ErrNotFound):
				ClearSessionCookie(w)
			default:
				log.Error("session lookup failed", zap.Error(err))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *models.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext extracts the session stored by Sessions.
// Returns nil for anonymous requests.
func SessionFromContext(ctx context.Context) *models.Session {
	s, _ := ctx.Value(sessionKey).(*models.Session)
	return s
}

// SetSessionCookie writes the session cookie for s.
func SetSessionCookie(w http.ResponseWriter, s *models.Session, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    s.Token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie instructs the client to drop the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
