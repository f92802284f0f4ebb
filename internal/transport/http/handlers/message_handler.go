package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oggyb/glidefade/internal/service/message"
	"github.com/oggyb/glidefade/internal/transport/http/middleware"
)

type MessageHandler struct {
	messages *message.Service
}

func NewMessageHandler(messages *message.Service) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// Send handles POST /messages. Bomb sends return every stored row.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var in message.SendInput
	if err := decode(w, r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := check(in); err != nil {
		writeServiceError(w, r, err)
		return
	}

	msgs, err := h.messages.Send(r.Context(), middleware.GetUserID(r.Context()), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msgs)
}

// Conversation handles GET /messages?user_id=X.
func (h *MessageHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	other := r.URL.Query().Get("user_id")
	if other == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	msgs, err := h.messages.Conversation(r.Context(), middleware.GetUserID(r.Context()), other)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// Get handles GET /messages/{id}.
func (h *MessageHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.messages.Get(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// SendDue handles POST /messages/send-due.
func (h *MessageHandler) SendDue(w http.ResponseWriter, r *http.Request) {
	n, err := h.messages.PromoteDue(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"updated": n})
}

// Delete handles DELETE /messages/{id}.
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.messages.Delete(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
