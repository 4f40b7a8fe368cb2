package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// PublicRoutes registers the public-facing profile routes. These live
// outside the versioned API mount so the redirect URLs stay stable.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Get("/p/{slug}", h.PublicProfile)
}

// PublicProfile implements GET /p/{slug}: the canonical slug serves the
// profile, a superseded slug answers with a permanent redirect to the
// canonical one, anything else is a 404.
func (h *Handler) PublicProfile(w http.ResponseWriter, r *http.Request) {
	candidate := chi.URLParam(r, "slug")

	res, err := h.svc.ResolveRedirect(r.Context(), candidate)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !res.Found {
		h.writeProblem(w, r, http.StatusNotFound, problemTypeNotFound, "Not found", "no profile exists under this slug", nil)
		return
	}
	if res.RedirectTo != "" && res.RedirectTo != candidate {
		http.Redirect(w, r, "/p/"+res.RedirectTo, http.StatusMovedPermanently)
		return
	}

	a, err := h.svc.FindOwnerBySlug(r.Context(), candidate)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toAssignmentResponse(a))
}
