package httpx

import (
	"net/http"

	"github.com/MetehanCam/real-estate-social-app/internal/domain"
	"github.com/MetehanCam/real-estate-social-app/internal/service/auth"
)

type sessionResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"fullName"`
		Username string `json:"username"`
		Bio      string `json:"bio"`
		Location string `json:"location"`
		Avatar   string `json:"avatar"`
	}
	if err := decodeJSON(w, req, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, token, err := r.auth.Register(req.Context(), auth.RegisterInput{
		Email:    payload.Email,
		Password: payload.Password,
		FullName: payload.FullName,
		Username: payload.Username,
		Bio:      payload.Bio,
		Location: payload.Location,
		Avatar:   payload.Avatar,
	})
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, User: user})
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, req, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, token, err := r.auth.Login(req.Context(), payload.Email, payload.Password)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: user})
}

func (r *Router) handleMe(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	info, ok := authInfoFromContext(req.Context())
	if !ok {
		r.logger.Error("auth context missing", "path", req.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, info.User)
}
