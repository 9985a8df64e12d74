package session

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-results-go/internal/result"
)

type ctxKey struct{}

// WithLoginID returns a copy of ctx carrying the authenticated login id.
func WithLoginID(ctx context.Context, loginID int64) context.Context {
	return context.WithValue(ctx, ctxKey{}, loginID)
}

// LoginIDFromContext returns the login id stored by RequireLogin.
func LoginIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxKey{}).(int64)
	return id, ok
}

// TokenFromRequest looks for the token in the named header, then a bearer
// Authorization header, then a cookie.
func TokenFromRequest(r *http.Request, name string) string {
	if v := strings.TrimSpace(r.Header.Get(name)); v != "" {
		return v
	}
	if auth := r.Header.Get("Authorization"); len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	if c, err := r.Cookie(name); err == nil {
		return c.Value
	}
	return ""
}

// RequireLogin rejects requests without a live session and stores the login id on the request context.
func RequireLogin(issuer *Issuer, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r, issuer.TokenName())
			loginID, err := issuer.Lookup(r.Context(), token)
			if err != nil {
				if !errors.Is(err, ErrNotLoggedIn) {
					logger.Errorw("session lookup failed", "err", err)
					result.Write(w, http.StatusInternalServerError, result.Fail(http.StatusInternalServerError, "session lookup failed"))
					return
				}
				result.Write(w, http.StatusUnauthorized, result.Fail(http.StatusUnauthorized, "not logged in"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithLoginID(r.Context(), loginID)))
		})
	}
}
