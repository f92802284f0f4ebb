package handlers

import (
	"net/http"

	"github.com/oggyb/glidefade/internal/service/entitlement"
	"github.com/oggyb/glidefade/internal/service/interaction"
	"github.com/oggyb/glidefade/internal/transport/http/middleware"
)

// EntitlementHeader carries the signed plan token issued by /entitlements.
const EntitlementHeader = "X-Entitlement"

type InteractionHandler struct {
	interactions *interaction.Service
	entitlements *entitlement.Service
}

func NewInteractionHandler(interactions *interaction.Service, entitlements *entitlement.Service) *InteractionHandler {
	return &InteractionHandler{interactions: interactions, entitlements: entitlements}
}

// Record handles POST /match-dismatch.
func (h *InteractionHandler) Record(w http.ResponseWriter, r *http.Request) {
	var in interaction.RecordInput
	if err := decode(w, r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	uid, err := actingAs(r, in.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	in.UserID = uid
	if err := check(in); err != nil {
		writeServiceError(w, r, err)
		return
	}

	ent := h.entitlements.Resolve(r.Header.Get(EntitlementHeader), middleware.GetUserID(r.Context()))
	res, err := h.interactions.Record(r.Context(), in, ent)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
