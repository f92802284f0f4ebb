package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	svcErr "github.com/oggyb/glidefade/internal/errors"
	"github.com/oggyb/glidefade/internal/service/match"
	"github.com/oggyb/glidefade/internal/service/notification"
	"github.com/oggyb/glidefade/internal/transport/http/middleware"
)

// Modes of POST /check-and-create-match-notification.
const (
	actionLike             = "like"
	actionGetNotifications = "getNotifications"
	actionMarkRead         = "markRead"
)

type notificationCommand struct {
	Action         string `json:"action"`
	UserID         string `json:"userId"`
	Limit          int    `json:"limit"`
	PageToken      string `json:"pageToken"`
	NotificationID uint64 `json:"notificationId"`
}

type NotificationHandler struct {
	notifications *notification.Service
	matches       *match.Service
}

func NewNotificationHandler(notifications *notification.Service, matches *match.Service) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, matches: matches}
}

// Command handles POST /check-and-create-match-notification, which
// multiplexes reconciliation, listing and mark-read on the action field.
func (h *NotificationHandler) Command(w http.ResponseWriter, r *http.Request) {
	var cmd notificationCommand
	if err := decode(w, r, &cmd); err != nil {
		writeServiceError(w, r, err)
		return
	}

	switch cmd.Action {
	case actionLike:
		res, err := h.matches.Reconcile(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Match check completed",
			"result":  res,
		})

	case actionGetNotifications:
		uid, err := actingAs(r, cmd.UserID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		page, err := h.notifications.List(r.Context(), uid, cmd.Limit, cmd.PageToken)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, page)

	case actionMarkRead:
		uid, err := actingAs(r, cmd.UserID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if cmd.NotificationID == 0 {
			writeError(w, http.StatusBadRequest, "notificationId is required")
			return
		}
		h.markRead(w, r, cmd.NotificationID, uid)

	default:
		writeError(w, http.StatusBadRequest, "invalid action")
	}
}

// List handles GET /notifications.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	page, err := h.notifications.List(r.Context(), middleware.GetUserID(r.Context()), limit, r.URL.Query().Get("page_token"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// UnreadCount handles GET /notifications/unread-count.
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.notifications.UnreadCount(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}

// MarkRead handles POST /notifications/{id}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		writeServiceError(w, r, svcErr.InvalidArgument("invalid notification id"))
		return
	}
	h.markRead(w, r, id, middleware.GetUserID(r.Context()))
}

func (h *NotificationHandler) markRead(w http.ResponseWriter, r *http.Request, id uint64, userID string) {
	if err := h.notifications.MarkRead(r.Context(), id, userID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
