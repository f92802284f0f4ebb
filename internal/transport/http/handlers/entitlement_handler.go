package handlers

import (
	"net/http"

	"github.com/oggyb/glidefade/internal/service/entitlement"
	"github.com/oggyb/glidefade/internal/transport/http/middleware"
)

type EntitlementHandler struct {
	entitlements *entitlement.Service
}

func NewEntitlementHandler(entitlements *entitlement.Service) *EntitlementHandler {
	return &EntitlementHandler{entitlements: entitlements}
}

// Issue handles POST /entitlements.
func (h *EntitlementHandler) Issue(w http.ResponseWriter, r *http.Request) {
	tok, err := h.entitlements.Issue(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tok)
}
