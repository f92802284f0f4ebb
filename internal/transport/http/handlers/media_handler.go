package handlers

import (
	"errors"
	"net/http"

	svcErr "github.com/oggyb/glidefade/internal/errors"
	"github.com/oggyb/glidefade/internal/service/media"
)

// multipart framing allowance on top of the file limit
const formOverhead = 1 << 20

type MediaHandler struct {
	media    *media.Service
	maxBytes int64
}

func NewMediaHandler(media *media.Service, maxBytes int64) *MediaHandler {
	return &MediaHandler{media: media, maxBytes: maxBytes}
}

// Upload handles POST /upload (multipart: file, user_id).
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+formOverhead)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeServiceError(w, r, svcErr.InvalidArgument("invalid multipart form"))
		return
	}

	uid, err := actingAs(r, r.FormValue("user_id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeServiceError(w, r, svcErr.InvalidArgument("file is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	res, err := h.media.Upload(r.Context(), uid, header.Filename, file, header.Size, contentType)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
