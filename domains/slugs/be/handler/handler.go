package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rshetty-99/ai-marketplace-sub008/domains/slugs/be/service"
	platformlogging "github.com/rshetty-99/ai-marketplace-sub008/platform/go/logging"
	"github.com/rshetty-99/ai-marketplace-sub008/platform/go/slug"
)

const (
	problemTypeValidation = "https://ai-marketplace.dev/problems/validation-error"
	problemTypeNotFound   = "https://ai-marketplace.dev/problems/not-found"
	problemTypeConflict   = "https://ai-marketplace.dev/problems/conflict"
	problemTypeInternal   = "https://ai-marketplace.dev/problems/internal-error"
	problemTypeStoreDown  = "https://ai-marketplace.dev/problems/store-unavailable"
)

// Service is the surface the HTTP layer needs from the slug engine.
type Service interface {
	Normalize(text string, maxLen int) string
	Validate(candidate string) slug.ValidationResult
	CheckAvailability(ctx context.Context, candidate string, exclude *service.Owner) (bool, error)
	Suggest(ctx context.Context, base string, n int) ([]string, error)
	ValidateAndCheck(ctx context.Context, candidate string, exclude *service.Owner) (service.CheckResult, error)
	Reserve(ctx context.Context, owner service.Owner, candidate string) (service.Assignment, error)
	Rename(ctx context.Context, owner service.Owner, newSlug string) (service.Assignment, error)
	FindOwnerBySlug(ctx context.Context, candidate string) (service.Assignment, error)
	ResolveRedirect(ctx context.Context, candidate string) (service.Resolution, error)
	History(ctx context.Context, owner service.Owner) ([]service.Assignment, error)
}

// Handler wires the slug service to the HTTP contract.
type Handler struct {
	svc    Service
	logger *zap.Logger
}

// New constructs a Handler instance.
func New(svc Service, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("slugs service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes registers the API surface on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/slugs/normalize", h.NormalizeSlug)
	r.Post("/slugs/validate", h.ValidateSlug)
	r.Post("/slugs/check", h.CheckSlug)
	r.Get("/slugs/suggestions", h.SuggestSlugs)
	r.Post("/slugs/reservations", h.ReserveSlug)
	r.Get("/slugs/{slug}/availability", h.SlugAvailability)
	r.Get("/slugs/{slug}/owner", h.FindOwner)
	r.Get("/slugs/{slug}/resolution", h.ResolveSlug)
	r.Put("/owners/{ownerType}/{ownerId}/slug", h.RenameSlug)
	r.Get("/owners/{ownerType}/{ownerId}/history", h.SlugHistory)
}

type ownerRef struct {
	OwnerID   string `json:"ownerId"`
	OwnerType string `json:"ownerType"`
}

type assignmentResponse struct {
	Slug         string    `json:"slug"`
	OwnerID      string    `json:"ownerId"`
	OwnerType    string    `json:"ownerType"`
	IsActive     bool      `json:"isActive"`
	RedirectFrom []string  `json:"redirectFrom"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toAssignmentResponse(a service.Assignment) assignmentResponse {
	redirectFrom := a.RedirectFrom
	if redirectFrom == nil {
		redirectFrom = []string{}
	}
	return assignmentResponse{
		Slug:         a.Slug,
		OwnerID:      a.Owner.ID,
		OwnerType:    string(a.Owner.Type),
		IsActive:     a.IsActive,
		RedirectFrom: redirectFrom,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// NormalizeSlug implements POST /slugs/normalize
func (h *Handler) NormalizeSlug(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text      string `json:"text"`
		MaxLength int    `json:"maxLength"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"slug": h.svc.Normalize(req.Text, req.MaxLength),
	})
}

// ValidateSlug implements POST /slugs/validate
func (h *Handler) ValidateSlug(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slug string `json:"slug"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}

	result := h.svc.Validate(req.Slug)
	if result.Errors == nil {
		result.Errors = []slug.Violation{}
	}
	h.writeJSON(w, r, http.StatusOK, result)
}

// CheckSlug implements POST /slugs/check
func (h *Handler) CheckSlug(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slug         string    `json:"slug"`
		ExcludeOwner *ownerRef `json:"excludeOwner"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}

	var exclude *service.Owner
	if req.ExcludeOwner != nil {
		owner, ok := h.parseOwner(w, r, req.ExcludeOwner.OwnerID, req.ExcludeOwner.OwnerType)
		if !ok {
			return
		}
		exclude = &owner
	}

	result, err := h.svc.ValidateAndCheck(r.Context(), req.Slug, exclude)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := checkResponse{
		IsValid:     result.IsValid,
		IsAvailable: result.IsAvailable,
		Errors:      result.Errors,
		Suggestions: result.Suggestions,
	}
	if resp.Errors == nil {
		resp.Errors = []slug.Violation{}
	}
	if resp.Suggestions == nil {
		resp.Suggestions = []string{}
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

type checkResponse struct {
	IsValid     bool             `json:"isValid"`
	IsAvailable bool             `json:"isAvailable"`
	Errors      []slug.Violation `json:"errors"`
	Suggestions []string         `json:"suggestions"`
}

// SuggestSlugs implements GET /slugs/suggestions
func (h *Handler) SuggestSlugs(w http.ResponseWriter, r *http.Request) {
	base := r.URL.Query().Get("base")
	if base == "" {
		h.writeProblem(w, r, http.StatusBadRequest, problemTypeValidation, "Invalid request", "base query parameter is required", nil)
		return
	}

	count := 0
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.writeProblem(w, r, http.StatusBadRequest, problemTypeValidation, "Invalid request", "count must be a positive integer", nil)
			return
		}
		count = parsed
	}

	suggestions, err := h.svc.Suggest(r.Context(), base, count)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	h.writeJSON(w, r, http.StatusOK, map[string][]string{"suggestions": suggestions})
}

// ReserveSlug implements POST /slugs/reservations
func (h *Handler) ReserveSlug(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OwnerID   string `json:"ownerId"`
		OwnerType string `json:"ownerType"`
		Slug      string `json:"slug"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}

	owner, ok := h.parseOwner(w, r, req.OwnerID, req.OwnerType)
	if !ok {
		return
	}

	a, err := h.svc.Reserve(r.Context(), owner, req.Slug)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, toAssignmentResponse(a))
}

// SlugAvailability implements GET /slugs/{slug}/availability
func (h *Handler) SlugAvailability(w http.ResponseWriter, r *http.Request) {
	candidate := chi.URLParam(r, "slug")

	var exclude *service.Owner
	ownerID := r.URL.Query().Get("ownerId")
	ownerType := r.URL.Query().Get("ownerType")
	if ownerID != "" || ownerType != "" {
		owner, ok := h.parseOwner(w, r, ownerID, ownerType)
		if !ok {
			return
		}
		exclude = &owner
	}

	available, err := h.svc.CheckAvailability(r.Context(), candidate, exclude)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]bool{"available": available})
}

// FindOwner implements GET /slugs/{slug}/owner
func (h *Handler) FindOwner(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.FindOwnerBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toAssignmentResponse(a))
}

// ResolveSlug implements GET /slugs/{slug}/resolution
func (h *Handler) ResolveSlug(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ResolveRedirect(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	body := map[string]any{"found": res.Found}
	if res.RedirectTo != "" {
		body["redirectTo"] = res.RedirectTo
	}
	h.writeJSON(w, r, http.StatusOK, body)
}

// RenameSlug implements PUT /owners/{ownerType}/{ownerId}/slug
func (h *Handler) RenameSlug(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.parseOwner(w, r, chi.URLParam(r, "ownerId"), chi.URLParam(r, "ownerType"))
	if !ok {
		return
	}

	var req struct {
		Slug string `json:"slug"`
	}
	if !h.decodeBody(w, r, &req) {
		return
	}

	a, err := h.svc.Rename(r.Context(), owner, req.Slug)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toAssignmentResponse(a))
}

// SlugHistory implements GET /owners/{ownerType}/{ownerId}/history
func (h *Handler) SlugHistory(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.parseOwner(w, r, chi.URLParam(r, "ownerId"), chi.URLParam(r, "ownerType"))
	if !ok {
		return
	}

	history, err := h.svc.History(r.Context(), owner)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]assignmentResponse, 0, len(history))
	for _, a := range history {
		items = append(items, toAssignmentResponse(a))
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{"history": items})
}

func (h *Handler) parseOwner(w http.ResponseWriter, r *http.Request, id, typ string) (service.Owner, bool) {
	if id == "" {
		h.writeProblem(w, r, http.StatusBadRequest, problemTypeValidation, "Invalid request", "ownerId is required", nil)
		return service.Owner{}, false
	}
	ownerType, err := service.ParseOwnerType(typ)
	if err != nil {
		h.writeProblem(w, r, http.StatusBadRequest, problemTypeValidation, "Invalid request", err.Error(), nil)
		return service.Owner{}, false
	}
	return service.Owner{ID: id, Type: ownerType}, true
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeProblem(w, r, http.StatusBadRequest, problemTypeValidation, "Invalid request body", err.Error(), nil)
		return false
	}
	return true
}

type problem struct {
	Type   string           `json:"type"`
	Title  string           `json:"title"`
	Status int              `json:"status"`
	Detail string           `json:"detail,omitempty"`
	Errors []slug.Violation `json:"errors,omitempty"`
}

// writeError maps service outcomes to problem+json responses: validation
// failures carry every violated rule, conflicts and missing records keep
// their semantic status codes, and transient store failures surface as 503
// so callers can distinguish "fix your input" from "try again later".
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *slug.ValidationError
	switch {
	case errors.As(err, &verr):
		h.writeProblem(w, r, http.StatusUnprocessableEntity, problemTypeValidation, "Invalid slug", verr.Error(), verr.Errors)
	case errors.Is(err, service.ErrConflict):
		h.writeProblem(w, r, http.StatusConflict, problemTypeConflict, "Slug conflict", err.Error(), nil)
	case errors.Is(err, service.ErrAlreadyAssigned):
		h.writeProblem(w, r, http.StatusConflict, problemTypeConflict, "Owner already assigned", err.Error(), nil)
	case errors.Is(err, service.ErrNotFound):
		h.writeProblem(w, r, http.StatusNotFound, problemTypeNotFound, "Not found", err.Error(), nil)
	case errors.Is(err, service.ErrStoreUnavailable):
		h.writeProblem(w, r, http.StatusServiceUnavailable, problemTypeStoreDown, "Store unavailable", "the slug store is temporarily unavailable; retry with backoff", nil)
	default:
		platformlogging.FromRequest(r, h.logger).Error("unhandled slug engine error", zap.Error(err))
		h.writeProblem(w, r, http.StatusInternalServerError, problemTypeInternal, "Internal error", "", nil)
	}
}

func (h *Handler) writeProblem(w http.ResponseWriter, r *http.Request, status int, typ, title, detail string, violations []slug.Violation) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{
		Type:   typ,
		Title:  title,
		Status: status,
		Detail: detail,
		Errors: violations,
	}); err != nil {
		platformlogging.FromRequest(r, h.logger).Error("encode problem response", zap.Error(err))
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		platformlogging.FromRequest(r, h.logger).Error("encode json response", zap.Error(err))
	}
}
