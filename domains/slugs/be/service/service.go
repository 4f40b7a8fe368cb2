package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rshetty-99/ai-marketplace-sub008/platform/go/slug"
)

// Errors returned by the service layer. Conflict and validation failures are
// expected outcomes a form UI renders directly; ErrStoreUnavailable signals a
// transient persistence failure that is safe to retry with backoff.
var (
	ErrConflict         = errors.New("slug is already claimed by another owner")
	ErrNotFound         = errors.New("slug assignment not found")
	ErrAlreadyAssigned  = errors.New("owner already holds an active slug; rename instead")
	ErrStoreUnavailable = errors.New("slug store unavailable")
)

// OwnerType identifies which profile partition holds the owner's record.
type OwnerType string

const (
	OwnerFreelancer   OwnerType = "freelancer"
	OwnerVendor       OwnerType = "vendor"
	OwnerOrganization OwnerType = "organization"
)

// ParseOwnerType converts a wire value to an OwnerType.
func ParseOwnerType(s string) (OwnerType, error) {
	switch OwnerType(s) {
	case OwnerFreelancer, OwnerVendor, OwnerOrganization:
		return OwnerType(s), nil
	default:
		return "", fmt.Errorf("unknown owner type %q", s)
	}
}

// Owner identifies a profile entity eligible to hold one active slug.
type Owner struct {
	ID   string
	Type OwnerType
}

// Assignment is one entry of the append-only slug history. Exactly one
// assignment per slug value and one per owner may be active at a time;
// deactivated entries never change except is_active and updated_at.
type Assignment struct {
	Slug         string
	Owner        Owner
	IsActive     bool
	RedirectFrom []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Resolution is the outcome of a redirect lookup. RedirectTo is set only when
// the requested slug is historical and the owner still has an active slug.
type Resolution struct {
	Found      bool
	RedirectTo string
}

// CheckResult is the composite validate-plus-availability answer.
type CheckResult struct {
	IsValid     bool
	IsAvailable bool
	Errors      []slug.Violation
	Suggestions []string
}

// Repository abstracts the canonical slug index. Claim and Supersede must be
// atomic: a concurrent claim of the same slug value yields ErrConflict for
// all but one caller, never two active assignments.
type Repository interface {
	Claim(ctx context.Context, a Assignment) (Assignment, error)
	Supersede(ctx context.Context, a Assignment, oldSlug string) (Assignment, error)
	GetActiveBySlug(ctx context.Context, s string) (Assignment, error)
	GetLatestBySlug(ctx context.Context, s string) (Assignment, error)
	GetActiveByOwner(ctx context.Context, owner Owner) (Assignment, error)
	ListByOwner(ctx context.Context, owner Owner) ([]Assignment, error)
}

// Service is the slug allocation, validation, and redirect-resolution engine.
// It is stateless; all correctness under concurrency comes from the
// repository's atomic claim semantics.
type Service struct {
	repo   Repository
	policy *slug.Policy
}

// New constructs a Service with required dependencies.
func New(repo Repository, policy *slug.Policy) *Service {
	if repo == nil {
		panic("slugs repo is required")
	}
	if policy == nil {
		panic("slug policy is required")
	}
	return &Service{repo: repo, policy: policy}
}

// Normalize turns display text into a slug candidate. Pure, no I/O.
func (s *Service) Normalize(text string, maxLen int) string {
	if maxLen <= 0 || maxLen > s.policy.MaxLength {
		maxLen = s.policy.MaxLength
	}
	return slug.Normalize(text, maxLen)
}

// Validate applies the loaded policy. Pure, no I/O.
func (s *Service) Validate(candidate string) slug.ValidationResult {
	return s.policy.Validate(candidate)
}

// CheckAvailability reports whether the candidate is free to claim. exclude
// skips the owner's own active assignment so re-saving an unchanged slug
// reads as available.
func (s *Service) CheckAvailability(ctx context.Context, candidate string, exclude *Owner) (bool, error) {
	holder, err := s.repo.GetActiveBySlug(ctx, candidate)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return true, nil
		}
		return false, err
	}
	if exclude != nil && holder.Owner == *exclude {
		return true, nil
	}
	return false, nil
}

// ValidateAndCheck composes validation and availability; when the candidate
// is valid but taken it also proposes alternatives.
func (s *Service) ValidateAndCheck(ctx context.Context, candidate string, exclude *Owner) (CheckResult, error) {
	result := s.policy.Validate(candidate)
	if !result.IsValid {
		return CheckResult{IsValid: false, Errors: result.Errors}, nil
	}

	available, err := s.CheckAvailability(ctx, candidate, exclude)
	if err != nil {
		return CheckResult{}, err
	}

	out := CheckResult{IsValid: true, IsAvailable: available}
	if !available {
		suggestions, err := s.Suggest(ctx, candidate, 0)
		if err != nil {
			return CheckResult{}, err
		}
		out.Suggestions = suggestions
	}
	return out, nil
}

// Reserve atomically binds a slug to an owner that has no active assignment
// yet. Re-reserving the slug the owner already holds is a no-op success.
func (s *Service) Reserve(ctx context.Context, owner Owner, candidate string) (Assignment, error) {
	if result := s.policy.Validate(candidate); !result.IsValid {
		return Assignment{}, &slug.ValidationError{Slug: candidate, Errors: result.Errors}
	}

	current, err := s.repo.GetActiveByOwner(ctx, owner)
	switch {
	case err == nil:
		if current.Slug == candidate {
			return current, nil
		}
		return Assignment{}, ErrAlreadyAssigned
	case !errors.Is(err, ErrNotFound):
		return Assignment{}, err
	}

	now := time.Now().UTC()
	claimed, err := s.repo.Claim(ctx, Assignment{
		Slug:         candidate,
		Owner:        owner,
		IsActive:     true,
		RedirectFrom: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return Assignment{}, err
	}
	return claimed, nil
}

// Rename supersedes the owner's current slug with a new one as a single
// logical transaction: the old assignment flips inactive and remains the
// permanent witness for its own redirect_from entries; the new assignment
// redirects from the immediately preceding slug only. Renaming to the
// current slug is a no-op success.
func (s *Service) Rename(ctx context.Context, owner Owner, newSlug string) (Assignment, error) {
	if result := s.policy.Validate(newSlug); !result.IsValid {
		return Assignment{}, &slug.ValidationError{Slug: newSlug, Errors: result.Errors}
	}

	current, err := s.repo.GetActiveByOwner(ctx, owner)
	if err != nil {
		return Assignment{}, err
	}
	if current.Slug == newSlug {
		return current, nil
	}

	available, err := s.CheckAvailability(ctx, newSlug, &owner)
	if err != nil {
		return Assignment{}, err
	}
	if !available {
		return Assignment{}, ErrConflict
	}

	now := time.Now().UTC()
	next := Assignment{
		Slug:         newSlug,
		Owner:        owner,
		IsActive:     true,
		RedirectFrom: []string{current.Slug},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return s.repo.Supersede(ctx, next, current.Slug)
}

// FindOwnerBySlug returns the active assignment holding the slug; used by
// public profile routes.
func (s *Service) FindOwnerBySlug(ctx context.Context, candidate string) (Assignment, error) {
	return s.repo.GetActiveBySlug(ctx, candidate)
}

// ResolveRedirect resolves any slug, current or historical, in at most two
// lookups. Historical slugs jump straight to the owner's current active slug;
// there is never more than one indirection hop and no chain walking.
func (s *Service) ResolveRedirect(ctx context.Context, candidate string) (Resolution, error) {
	if _, err := s.repo.GetActiveBySlug(ctx, candidate); err == nil {
		return Resolution{Found: true}, nil
	} else if !errors.Is(err, ErrNotFound) {
		return Resolution{}, err
	}

	historical, err := s.repo.GetLatestBySlug(ctx, candidate)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Resolution{Found: false}, nil
		}
		return Resolution{}, err
	}

	active, err := s.repo.GetActiveByOwner(ctx, historical.Owner)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Owner unpublished; historical slug no longer resolves.
			return Resolution{Found: false}, nil
		}
		return Resolution{}, err
	}

	return Resolution{Found: true, RedirectTo: active.Slug}, nil
}

// History returns the owner's full assignment trail, oldest first.
func (s *Service) History(ctx context.Context, owner Owner) ([]Assignment, error) {
	return s.repo.ListByOwner(ctx, owner)
}
