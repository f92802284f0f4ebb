package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oggyb/glidefade/internal/db"
	"github.com/oggyb/glidefade/internal/service/profile"
	"github.com/oggyb/glidefade/internal/transport/http/middleware"
)

type ProfileHandler struct {
	profiles *profile.Service
}

func NewProfileHandler(profiles *profile.Service) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Feed handles GET /profile/all?current_user_id=X plus optional
// gender, min_age, max_age, looking_for and location filters.
func (h *ProfileHandler) Feed(w http.ResponseWriter, r *http.Request) {
	uid, err := actingAs(r, r.URL.Query().Get("current_user_id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	q := r.URL.Query()
	f := profile.Filter{
		Gender:     q.Get("gender"),
		LookingFor: q.Get("looking_for"),
		Location:   q.Get("location"),
	}
	if f.MinAge, err = queryInt(r, "min_age"); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if f.MaxAge, err = queryInt(r, "max_age"); err != nil {
		writeServiceError(w, r, err)
		return
	}

	list, err := h.profiles.Feed(r.Context(), uid, f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

// Get handles GET /profile/{userId}.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.profiles.GetProfile(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Save handles POST /profile for the caller.
func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	var in profile.ProfileInput
	if err := decode(w, r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := check(in); err != nil {
		writeServiceError(w, r, err)
		return
	}

	p, err := h.profiles.SaveProfile(r.Context(), middleware.GetUserID(r.Context()), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Details handles GET /profile/details for the caller.
func (h *ProfileHandler) Details(w http.ResponseWriter, r *http.Request) {
	d, err := h.profiles.GetDetails(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// SaveDetails handles POST /profile/details for the caller.
func (h *ProfileHandler) SaveDetails(w http.ResponseWriter, r *http.Request) {
	var in profile.DetailsInput
	if err := decode(w, r, &in); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := check(in); err != nil {
		writeServiceError(w, r, err)
		return
	}

	d, err := h.profiles.SaveDetails(r.Context(), middleware.GetUserID(r.Context()), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Friends handles GET /friends.
func (h *ProfileHandler) Friends(w http.ResponseWriter, r *http.Request) {
	list, err := h.profiles.Friends(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func nonNil(list []db.Profile) []db.Profile {
	if list == nil {
		return []db.Profile{}
	}
	return list
}
