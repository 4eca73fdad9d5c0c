package httpx

import (
	"errors"
	"net/http"

	"github.com/MetehanCam/real-estate-social-app/internal/domain"
	"github.com/MetehanCam/real-estate-social-app/internal/repository"
	"github.com/MetehanCam/real-estate-social-app/internal/service/auth"
)

// statusFor maps service errors onto HTTP status codes and client messages.
// Unrecognised errors become a generic 500.
func statusFor(err error) (int, string) {
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Error()
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest, "invalid credentials"
	case errors.Is(err, domain.ErrDuplicateUser):
		return http.StatusBadRequest, "user already exists"
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not found"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func (r *Router) writeServiceError(w http.ResponseWriter, req *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		r.logger.Error("request failed", "error", err, "path", req.URL.Path, "method", req.Method)
	} else {
		r.logger.Debug("request rejected", "error", err, "status", status, "path", req.URL.Path)
	}
	writeError(w, status, msg)
}
