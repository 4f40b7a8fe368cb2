package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SlugAssignmentsTable is the canonical slug index. The slug value is the
// true primary key of the namespace; owner-partition tables are read caches.
const SlugAssignmentsTable = "slug_assignments"

// Unique-constraint names enforced by the DDL; repositories map violations of
// these onto domain conflict errors.
const (
	ConstraintSlugActiveUnique  = "slug_assignments_slug_active_unique"
	ConstraintOwnerActiveUnique = "slug_assignments_owner_active_unique"
)

// Owner-type partition tables carrying the denormalized public_slug mirror.
var partitionTables = map[string]string{
	"freelancer":   "freelancer_profiles",
	"vendor":       "vendor_profiles",
	"organization": "organization_profiles",
}

// ErrNotFound is returned when no slug assignment matches a lookup.
var ErrNotFound = errors.New("slug assignment not found")

// ErrUnknownOwnerType is returned when an owner type has no partition table.
var ErrUnknownOwnerType = errors.New("unknown owner type")

// SlugAssignmentRecord is one row of the append-only assignment log. Once a
// row is deactivated only is_active and updated_at ever change.
type SlugAssignmentRecord struct {
	Slug         string    `db:"slug"`
	OwnerID      string    `db:"owner_id"`
	OwnerType    string    `db:"owner_type"`
	IsActive     bool      `db:"is_active"`
	RedirectFrom []string  `db:"redirect_from"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// SlugStore provides access to the slug assignment index and the owner
// partition mirrors. All writes are single transactions so readers never see
// a claimed slug without its mirror, or the reverse.
type SlugStore struct {
	pool *pgxpool.Pool
}

// NewSlugStore creates a store; assumes migrations already created the tables.
func NewSlugStore(ctx context.Context, pool *pgxpool.Pool) (*SlugStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &SlugStore{pool: pool}, nil
}

const slugAssignmentColumns = `slug, owner_id, owner_type, is_active, redirect_from, created_at, updated_at`

// Claim atomically inserts the first active assignment for an owner and
// refreshes the partition mirror. The partial unique index on active slugs is
// the compare-and-swap: a concurrent claim of the same slug fails with a
// unique violation instead of producing two active rows.
func (s *SlugStore) Claim(ctx context.Context, rec SlugAssignmentRecord) (SlugAssignmentRecord, error) {
	if rec.Slug == "" {
		return SlugAssignmentRecord{}, errors.New("slug is required")
	}
	if _, ok := partitionTables[rec.OwnerType]; !ok {
		return SlugAssignmentRecord{}, fmt.Errorf("%w: %q", ErrUnknownOwnerType, rec.OwnerType)
	}
	if rec.RedirectFrom == nil {
		rec.RedirectFrom = []string{}
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return SlugAssignmentRecord{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	insert := fmt.Sprintf(`
        INSERT INTO %s (slug, owner_id, owner_type, is_active, redirect_from, created_at, updated_at)
        VALUES ($1, $2, $3, TRUE, $4, $5, $5)
        RETURNING %s
    `, SlugAssignmentsTable, slugAssignmentColumns)

	row := tx.QueryRow(ctx, insert, rec.Slug, rec.OwnerID, rec.OwnerType, rec.RedirectFrom, rec.CreatedAt)
	out, err := scanSlugAssignment(row)
	if err != nil {
		return SlugAssignmentRecord{}, err
	}

	if err = mirrorPublicSlug(ctx, tx, out.OwnerType, out.OwnerID, out.Slug, out.UpdatedAt); err != nil {
		return SlugAssignmentRecord{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return SlugAssignmentRecord{}, err
	}
	return out, nil
}

// Supersede deactivates the owner's current assignment and inserts the new
// active one in a single transaction, refreshing the partition mirror. The
// deactivated row is the permanent witness for its redirect_from entries.
// Returns ErrNotFound when oldSlug is no longer the owner's active slug.
func (s *SlugStore) Supersede(ctx context.Context, rec SlugAssignmentRecord, oldSlug string) (SlugAssignmentRecord, error) {
	if _, ok := partitionTables[rec.OwnerType]; !ok {
		return SlugAssignmentRecord{}, fmt.Errorf("%w: %q", ErrUnknownOwnerType, rec.OwnerType)
	}
	if rec.RedirectFrom == nil {
		rec.RedirectFrom = []string{}
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return SlugAssignmentRecord{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	deactivate := fmt.Sprintf(`
        UPDATE %s SET is_active = FALSE, updated_at = $1
        WHERE slug = $2 AND owner_id = $3 AND owner_type = $4 AND is_active = TRUE
    `, SlugAssignmentsTable)

	tag, err := tx.Exec(ctx, deactivate, rec.CreatedAt, oldSlug, rec.OwnerID, rec.OwnerType)
	if err != nil {
		return SlugAssignmentRecord{}, err
	}
	if tag.RowsAffected() == 0 {
		return SlugAssignmentRecord{}, ErrNotFound
	}

	insert := fmt.Sprintf(`
        INSERT INTO %s (slug, owner_id, owner_type, is_active, redirect_from, created_at, updated_at)
        VALUES ($1, $2, $3, TRUE, $4, $5, $5)
        RETURNING %s
    `, SlugAssignmentsTable, slugAssignmentColumns)

	row := tx.QueryRow(ctx, insert, rec.Slug, rec.OwnerID, rec.OwnerType, rec.RedirectFrom, rec.CreatedAt)
	out, err := scanSlugAssignment(row)
	if err != nil {
		return SlugAssignmentRecord{}, err
	}

	if err = mirrorPublicSlug(ctx, tx, out.OwnerType, out.OwnerID, out.Slug, out.UpdatedAt); err != nil {
		return SlugAssignmentRecord{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return SlugAssignmentRecord{}, err
	}
	return out, nil
}

// GetActiveBySlug returns the active assignment holding the slug.
func (s *SlugStore) GetActiveBySlug(ctx context.Context, slug string) (SlugAssignmentRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE slug = $1 AND is_active = TRUE`,
		slugAssignmentColumns, SlugAssignmentsTable)
	return scanSlugAssignment(s.pool.QueryRow(ctx, query, slug))
}

// GetLatestBySlug returns the most recent assignment for the slug in any
// state; used by redirect resolution after the active lookup misses.
func (s *SlugStore) GetLatestBySlug(ctx context.Context, slug string) (SlugAssignmentRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE slug = $1 ORDER BY created_at DESC LIMIT 1`,
		slugAssignmentColumns, SlugAssignmentsTable)
	return scanSlugAssignment(s.pool.QueryRow(ctx, query, slug))
}

// GetActiveByOwner returns the owner's currently active assignment.
func (s *SlugStore) GetActiveByOwner(ctx context.Context, ownerID, ownerType string) (SlugAssignmentRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE owner_id = $1 AND owner_type = $2 AND is_active = TRUE`,
		slugAssignmentColumns, SlugAssignmentsTable)
	return scanSlugAssignment(s.pool.QueryRow(ctx, query, ownerID, ownerType))
}

// ListByOwner returns the owner's full assignment history, oldest first.
func (s *SlugStore) ListByOwner(ctx context.Context, ownerID, ownerType string) ([]SlugAssignmentRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE owner_id = $1 AND owner_type = $2 ORDER BY created_at ASC`,
		slugAssignmentColumns, SlugAssignmentsTable)

	rows, err := s.pool.Query(ctx, query, ownerID, ownerType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []SlugAssignmentRecord
	for rows.Next() {
		rec, err := scanSlugAssignment(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// GetMirroredSlug reads the denormalized public_slug from the owner's
// partition table. The assignment index wins on any discrepancy; this exists
// for reconciliation checks and tests.
func (s *SlugStore) GetMirroredSlug(ctx context.Context, ownerID, ownerType string) (string, error) {
	table, ok := partitionTables[ownerType]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownOwnerType, ownerType)
	}

	var slug string
	query := fmt.Sprintf(`SELECT public_slug FROM %s WHERE owner_id = $1`, table)
	if err := s.pool.QueryRow(ctx, query, ownerID).Scan(&slug); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return slug, nil
}

func mirrorPublicSlug(ctx context.Context, tx pgx.Tx, ownerType, ownerID, slug string, at time.Time) error {
	table, ok := partitionTables[ownerType]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOwnerType, ownerType)
	}

	upsert := fmt.Sprintf(`
        INSERT INTO %s (owner_id, public_slug, updated_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (owner_id) DO UPDATE SET public_slug = EXCLUDED.public_slug, updated_at = EXCLUDED.updated_at
    `, table)

	if _, err := tx.Exec(ctx, upsert, ownerID, slug, at); err != nil {
		return fmt.Errorf("refresh %s mirror: %w", ownerType, err)
	}
	return nil
}

func scanSlugAssignment(row pgx.Row) (SlugAssignmentRecord, error) {
	var rec SlugAssignmentRecord
	err := row.Scan(&rec.Slug, &rec.OwnerID, &rec.OwnerType, &rec.IsActive, &rec.RedirectFrom, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SlugAssignmentRecord{}, ErrNotFound
		}
		return SlugAssignmentRecord{}, err
	}
	return rec, nil
}
