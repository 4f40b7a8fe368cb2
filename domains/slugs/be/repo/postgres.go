package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rshetty-99/ai-marketplace-sub008/domains/slugs/be/service"
	"github.com/rshetty-99/ai-marketplace-sub008/platform/go/persistence"
)

// PostgresRepository implements the slug repository over the canonical
// assignment index in the shared persistence layer.
type PostgresRepository struct {
	store *persistence.SlugStore
}

// NewPostgresRepository constructs a repository backed by SlugStore.
func NewPostgresRepository(store *persistence.SlugStore) *PostgresRepository {
	if store == nil {
		panic("slug store is required")
	}
	return &PostgresRepository{store: store}
}

func (r *PostgresRepository) Claim(ctx context.Context, a service.Assignment) (service.Assignment, error) {
	rec, err := r.store.Claim(ctx, toRecord(a))
	if err != nil {
		return service.Assignment{}, mapStoreError(err)
	}
	return toAssignment(rec)
}

func (r *PostgresRepository) Supersede(ctx context.Context, a service.Assignment, oldSlug string) (service.Assignment, error) {
	rec, err := r.store.Supersede(ctx, toRecord(a), oldSlug)
	if err != nil {
		return service.Assignment{}, mapStoreError(err)
	}
	return toAssignment(rec)
}

func (r *PostgresRepository) GetActiveBySlug(ctx context.Context, s string) (service.Assignment, error) {
	rec, err := r.store.GetActiveBySlug(ctx, s)
	if err != nil {
		return service.Assignment{}, mapStoreError(err)
	}
	return toAssignment(rec)
}

func (r *PostgresRepository) GetLatestBySlug(ctx context.Context, s string) (service.Assignment, error) {
	rec, err := r.store.GetLatestBySlug(ctx, s)
	if err != nil {
		return service.Assignment{}, mapStoreError(err)
	}
	return toAssignment(rec)
}

func (r *PostgresRepository) GetActiveByOwner(ctx context.Context, owner service.Owner) (service.Assignment, error) {
	rec, err := r.store.GetActiveByOwner(ctx, owner.ID, string(owner.Type))
	if err != nil {
		return service.Assignment{}, mapStoreError(err)
	}
	return toAssignment(rec)
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, owner service.Owner) ([]service.Assignment, error) {
	recs, err := r.store.ListByOwner(ctx, owner.ID, string(owner.Type))
	if err != nil {
		return nil, mapStoreError(err)
	}

	assignments := make([]service.Assignment, 0, len(recs))
	for _, rec := range recs {
		a, err := toAssignment(rec)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, nil
}

func toRecord(a service.Assignment) persistence.SlugAssignmentRecord {
	return persistence.SlugAssignmentRecord{
		Slug:         a.Slug,
		OwnerID:      a.Owner.ID,
		OwnerType:    string(a.Owner.Type),
		IsActive:     a.IsActive,
		RedirectFrom: a.RedirectFrom,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func toAssignment(rec persistence.SlugAssignmentRecord) (service.Assignment, error) {
	ownerType, err := service.ParseOwnerType(rec.OwnerType)
	if err != nil {
		return service.Assignment{}, fmt.Errorf("assignment %q: %w", rec.Slug, err)
	}
	return service.Assignment{
		Slug:         rec.Slug,
		Owner:        service.Owner{ID: rec.OwnerID, Type: ownerType},
		IsActive:     rec.IsActive,
		RedirectFrom: rec.RedirectFrom,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}, nil
}

// mapStoreError translates persistence failures into service sentinels:
// unique violations on the active-slug or active-owner index become
// ErrConflict, missing rows become ErrNotFound, and connection-class
// failures become the retryable ErrStoreUnavailable.
func mapStoreError(err error) error {
	if errors.Is(err, persistence.ErrNotFound) {
		return service.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" &&
			(strings.EqualFold(pgErr.ConstraintName, persistence.ConstraintSlugActiveUnique) ||
				strings.EqualFold(pgErr.ConstraintName, persistence.ConstraintOwnerActiveUnique)) {
			return service.ErrConflict
		}
		if isTransientPgCode(pgErr.Code) {
			return fmt.Errorf("%w: %v", service.ErrStoreUnavailable, err)
		}
		return err
	}

	if pgconn.Timeout(err) {
		return fmt.Errorf("%w: %v", service.ErrStoreUnavailable, err)
	}

	return err
}

// isTransientPgCode covers connection exceptions (08), insufficient
// resources (53), and operator intervention such as shutdown (57).
func isTransientPgCode(code string) bool {
	switch {
	case strings.HasPrefix(code, "08"),
		strings.HasPrefix(code, "53"),
		strings.HasPrefix(code, "57"):
		return true
	default:
		return false
	}
}

// Ensure interface compliance.
var _ service.Repository = (*PostgresRepository)(nil)
