package httpx

import (
	"net/http"

	"github.com/MetehanCam/real-estate-social-app/internal/service/post"
)

func (r *Router) handlePosts(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		posts, err := r.feed.Timeline(req.Context())
		if err != nil {
			r.writeServiceError(w, req, err)
			return
		}
		writeJSON(w, http.StatusOK, posts)
	case http.MethodPost:
		r.protected(r.handleCreatePost)(w, req)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleCreatePost(w http.ResponseWriter, req *http.Request) {
	info, _ := authInfoFromContext(req.Context())
	var payload struct {
		Content string `json:"content"`
		Image   string `json:"image"`
	}
	if err := decodeJSON(w, req, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := r.posts.Create(req.Context(), info.User, post.CreateInput{Content: payload.Content, Image: payload.Image})
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	r.recordEngagement("post")
	writeJSON(w, http.StatusCreated, created)
}

func (r *Router) handlePostSubroutes(w http.ResponseWriter, req *http.Request) {
	parts := pathSegments(req.URL.Path, "/posts/")
	switch {
	case len(parts) == 1:
		postID := parts[0]
		switch req.Method {
		case http.MethodGet:
			r.handleGetPost(w, req, postID)
		case http.MethodDelete:
			r.protected(func(w http.ResponseWriter, req *http.Request) {
				r.handleDeletePost(w, req, postID)
			})(w, req)
		default:
			r.methodNotAllowed(w)
		}
	case len(parts) == 2 && parts[1] == "like":
		if req.Method != http.MethodPost {
			r.methodNotAllowed(w)
			return
		}
		r.protected(func(w http.ResponseWriter, req *http.Request) {
			r.handleToggleLike(w, req, parts[0])
		})(w, req)
	case len(parts) == 2 && parts[1] == "comments":
		if req.Method != http.MethodPost {
			r.methodNotAllowed(w)
			return
		}
		r.protected(func(w http.ResponseWriter, req *http.Request) {
			r.handleAddComment(w, req, parts[0])
		})(w, req)
	default:
		r.notFound(w)
	}
}

func (r *Router) handleGetPost(w http.ResponseWriter, req *http.Request, postID string) {
	found, err := r.feed.Get(req.Context(), postID)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (r *Router) handleDeletePost(w http.ResponseWriter, req *http.Request, postID string) {
	info, _ := authInfoFromContext(req.Context())
	if err := r.posts.Delete(req.Context(), postID, info.User); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	r.recordEngagement("delete")
	writeJSON(w, http.StatusOK, map[string]string{"message": "post deleted"})
}

func (r *Router) handleToggleLike(w http.ResponseWriter, req *http.Request, postID string) {
	info, _ := authInfoFromContext(req.Context())
	updated, liked, err := r.engagement.ToggleLike(req.Context(), postID, info.UserID)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	if liked {
		r.recordEngagement("like")
	} else {
		r.recordEngagement("unlike")
	}
	writeJSON(w, http.StatusOK, updated)
}

func (r *Router) handleAddComment(w http.ResponseWriter, req *http.Request, postID string) {
	info, _ := authInfoFromContext(req.Context())
	var payload struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(w, req, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	comment, err := r.engagement.AddComment(req.Context(), postID, info.UserID, payload.Content)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	r.recordEngagement("comment")
	writeJSON(w, http.StatusCreated, comment)
}
