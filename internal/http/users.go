package httpx

import (
	"net/http"

	"github.com/MetehanCam/real-estate-social-app/internal/domain"
)

func (r *Router) handleUsers(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	users, err := r.users.List(req.Context())
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (r *Router) handleUserSubroutes(w http.ResponseWriter, req *http.Request) {
	parts := pathSegments(req.URL.Path, "/users/")
	switch {
	case len(parts) == 1 && parts[0] == "profile":
		if req.Method != http.MethodPut {
			r.methodNotAllowed(w)
			return
		}
		r.protected(r.handleUpdateProfile)(w, req)
	case len(parts) == 1:
		if req.Method != http.MethodGet {
			r.methodNotAllowed(w)
			return
		}
		found, err := r.users.Get(req.Context(), parts[0])
		if err != nil {
			r.writeServiceError(w, req, err)
			return
		}
		writeJSON(w, http.StatusOK, found)
	case len(parts) == 2 && parts[1] == "posts":
		if req.Method != http.MethodGet {
			r.methodNotAllowed(w)
			return
		}
		posts, err := r.feed.ByAuthor(req.Context(), parts[0])
		if err != nil {
			r.writeServiceError(w, req, err)
			return
		}
		writeJSON(w, http.StatusOK, posts)
	default:
		r.notFound(w)
	}
}

func (r *Router) handleUpdateProfile(w http.ResponseWriter, req *http.Request) {
	info, _ := authInfoFromContext(req.Context())
	var payload struct {
		FullName *string `json:"fullName"`
		Bio      *string `json:"bio"`
		Location *string `json:"location"`
		Avatar   *string `json:"avatar"`
	}
	if err := decodeJSON(w, req, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := r.users.UpdateProfile(req.Context(), info.UserID, domain.ProfileUpdate{
		FullName: payload.FullName,
		Bio:      payload.Bio,
		Location: payload.Location,
		Avatar:   payload.Avatar,
	})
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
