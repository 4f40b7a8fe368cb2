package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/rshetty-99/ai-marketplace-sub008/domains/slugs/be/service"
	"github.com/rshetty-99/ai-marketplace-sub008/platform/go/persistence"
)

func TestMapStoreError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  error
		expect error
	}{
		{
			name:   "not found",
			input:  persistence.ErrNotFound,
			expect: service.ErrNotFound,
		},
		{
			name: "active slug unique violation",
			input: &pgconn.PgError{
				Code:           "23505",
				ConstraintName: persistence.ConstraintSlugActiveUnique,
			},
			expect: service.ErrConflict,
		},
		{
			name: "active owner unique violation",
			input: &pgconn.PgError{
				Code:           "23505",
				ConstraintName: persistence.ConstraintOwnerActiveUnique,
			},
			expect: service.ErrConflict,
		},
		{
			name:   "connection exception is retryable",
			input:  &pgconn.PgError{Code: "08006"},
			expect: service.ErrStoreUnavailable,
		},
		{
			name:   "server shutdown is retryable",
			input:  &pgconn.PgError{Code: "57P01"},
			expect: service.ErrStoreUnavailable,
		},
		{
			name:   "too many connections is retryable",
			input:  &pgconn.PgError{Code: "53300"},
			expect: service.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.ErrorIs(t, mapStoreError(tt.input), tt.expect)
		})
	}

	t.Run("unrelated unique violation passes through", func(t *testing.T) {
		t.Parallel()
		in := &pgconn.PgError{Code: "23505", ConstraintName: "something_else"}
		out := mapStoreError(in)
		require.NotErrorIs(t, out, service.ErrConflict)
		require.ErrorAs(t, out, new(*pgconn.PgError))
	})

	t.Run("arbitrary errors pass through", func(t *testing.T) {
		t.Parallel()
		in := errors.New("boom")
		require.Equal(t, in, mapStoreError(in))
	})
}

func TestMemorySupersedeStaleOldSlug(t *testing.T) {
	t.Parallel()

	r := NewMemoryRepository()
	ctx := context.Background()
	owner := service.Owner{ID: "f-1", Type: service.OwnerFreelancer}
	now := time.Now().UTC()

	_, err := r.Claim(ctx, service.Assignment{Slug: "name-a", Owner: owner, CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	_, err = r.Supersede(ctx, service.Assignment{Slug: "name-b", Owner: owner, CreatedAt: now, UpdatedAt: now}, "name-a")
	require.NoError(t, err)

	// A racing rename that still references the superseded slug loses.
	_, err = r.Supersede(ctx, service.Assignment{Slug: "name-c", Owner: owner, CreatedAt: now, UpdatedAt: now}, "name-a")
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestMemoryHistoryImmutableFields(t *testing.T) {
	t.Parallel()

	r := NewMemoryRepository()
	ctx := context.Background()
	owner := service.Owner{ID: "v-1", Type: service.OwnerVendor}
	created := time.Now().UTC().Add(-time.Hour)

	_, err := r.Claim(ctx, service.Assignment{Slug: "name-a", Owner: owner, CreatedAt: created, UpdatedAt: created})
	require.NoError(t, err)

	later := time.Now().UTC()
	_, err = r.Supersede(ctx, service.Assignment{Slug: "name-b", Owner: owner, CreatedAt: later, UpdatedAt: later}, "name-a")
	require.NoError(t, err)

	history, err := r.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, history, 2)

	// Deactivation only flips is_active and updated_at.
	old := history[0]
	require.False(t, old.IsActive)
	require.Equal(t, "name-a", old.Slug)
	require.Equal(t, created, old.CreatedAt)
	require.Equal(t, later, old.UpdatedAt)
}
