package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oggyb/glidefade/internal/db"
	"github.com/oggyb/glidefade/internal/service/video"
	"github.com/oggyb/glidefade/internal/transport/http/middleware"
)

type VideoHandler struct {
	videos *video.Service
}

func NewVideoHandler(videos *video.Service) *VideoHandler {
	return &VideoHandler{videos: videos}
}

// List handles GET /videos.
func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	videos, err := h.videos.List(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, videos)
}

// Create handles POST /videos.
func (h *VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in video.CreateInput
	if err := decode(w, r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := check(in); err != nil {
		writeServiceError(w, r, err)
		return
	}

	v, err := h.videos.Create(r.Context(), middleware.GetUserID(r.Context()), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// Get handles GET /videos/{id}.
func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.videos.Get(r.Context(), chi.URLParam(r, "id")))
}

// Like handles POST /videos/{id}/like. A second call removes the like.
func (h *VideoHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.videos.ToggleLike(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context())))
}

// Share handles POST /videos/{id}/share.
func (h *VideoHandler) Share(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.videos.Share(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context())))
}

// Comment handles POST /videos/{id}/comments.
func (h *VideoHandler) Comment(w http.ResponseWriter, r *http.Request) {
	var in video.CommentInput
	if err := decode(w, r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := check(in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.respond(w, r)(h.videos.Comment(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()), in))
}

func (h *VideoHandler) respond(w http.ResponseWriter, r *http.Request) func(*db.Video, error) {
	return func(v *db.Video, err error) {
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}
