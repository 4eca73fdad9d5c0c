package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/MetehanCam/real-estate-social-app/internal/domain"
	"github.com/MetehanCam/real-estate-social-app/internal/service/auth"
)

type authContextKey string

type authInfo struct {
	UserID string
	User   *domain.User
}

const contextKeyAuth authContextKey = "estate-auth-info"

type contextSetter interface {
	SetContext(context.Context)
}

// requireAuth ensures the request has a valid bearer token before invoking the handler.
func (r *Router) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctx, _, ok := r.ensureAuth(w, req)
		if !ok {
			return
		}
		if setter, ok := w.(contextSetter); ok {
			setter.SetContext(ctx)
		}
		next(w, req.WithContext(ctx))
	}
}

// ensureAuth validates the Authorization header and enriches the context.
// Every failure is answered with the same 401 body; the reason is only logged.
func (r *Router) ensureAuth(w http.ResponseWriter, req *http.Request) (context.Context, authInfo, bool) {
	user, err := r.auth.Authorize(req.Context(), bearerToken(req.Header.Get("Authorization")))
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			r.logger.Warn("authorization failed", "error", err, "path", req.URL.Path)
			writeError(w, http.StatusUnauthorized, "unauthorized")
		} else {
			r.logger.Error("authorization lookup failed", "error", err, "path", req.URL.Path)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return req.Context(), authInfo{}, false
	}
	info := authInfo{UserID: user.ID, User: user}
	ctx := context.WithValue(req.Context(), contextKeyAuth, info)
	return ctx, info, true
}

// authInfoFromContext extracts auth metadata from context.
func authInfoFromContext(ctx context.Context) (authInfo, bool) {
	value := ctx.Value(contextKeyAuth)
	if value == nil {
		return authInfo{}, false
	}
	info, ok := value.(authInfo)
	return info, ok
}

// bearerToken returns the token of a "Bearer <token>" header, matching the
// scheme case-insensitively. Anything else yields an empty string.
func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
