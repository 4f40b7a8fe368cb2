package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rshetty-99/ai-marketplace-sub008/domains/slugs/be/repo"
	"github.com/rshetty-99/ai-marketplace-sub008/domains/slugs/be/service"
	"github.com/rshetty-99/ai-marketplace-sub008/platform/go/slug"
)

func newTestService() *service.Service {
	return service.New(repo.NewMemoryRepository(), slug.DefaultPolicy())
}

func TestReserveAndLookup(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()
	owner := service.Owner{ID: "f-1", Type: service.OwnerFreelancer}

	a, err := svc.Reserve(ctx, owner, "jane-doe")
	require.NoError(t, err)
	require.True(t, a.IsActive)
	require.Equal(t, owner, a.Owner)
	require.Empty(t, a.RedirectFrom)

	found, err := svc.FindOwnerBySlug(ctx, "jane-doe")
	require.NoError(t, err)
	require.Equal(t, owner, found.Owner)

	_, err = svc.FindOwnerBySlug(ctx, "nobody")
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestReserveValidationFailures(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()
	owner := service.Owner{ID: "v-1", Type: service.OwnerVendor}

	for _, tt := range []struct {
		name       string
		input      string
		expectCode string
	}{
		{name: "reserved word never succeeds", input: "admin", expectCode: slug.CodeReserved},
		{name: "too short", input: "ab", expectCode: slug.CodeTooShort},
		{name: "blocked term", input: "porn-hub", expectCode: slug.CodeBlockedTerm},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Reserve(ctx, owner, tt.input)

			var verr *slug.ValidationError
			require.ErrorAs(t, err, &verr)

			codes := make([]string, 0, len(verr.Errors))
			for _, v := range verr.Errors {
				codes = append(codes, v.Code)
			}
			require.Contains(t, codes, tt.expectCode)
		})
	}
}

func TestReserveIdempotentResave(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()
	owner := service.Owner{ID: "o-1", Type: service.OwnerOrganization}

	first, err := svc.Reserve(ctx, owner, "acme-co")
	require.NoError(t, err)

	again, err := svc.Reserve(ctx, owner, "acme-co")
	require.NoError(t, err)
	require.Equal(t, first, again)

	history, err := svc.History(ctx, owner)
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestReserveSecondSlugRejected(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()
	owner := service.Owner{ID: "f-2", Type: service.OwnerFreelancer}

	_, err := svc.Reserve(ctx, owner, "first-slug")
	require.NoError(t, err)

	_, err = svc.Reserve(ctx, owner, "second-slug")
	require.ErrorIs(t, err, service.ErrAlreadyAssigned)
}

func TestReserveConflictAcrossOwnerTypes(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Reserve(ctx, service.Owner{ID: "f-1", Type: service.OwnerFreelancer}, "taken-name")
	require.NoError(t, err)

	// Uniqueness is global, not per partition.
	_, err = svc.Reserve(ctx, service.Owner{ID: "v-1", Type: service.OwnerVendor}, "taken-name")
	require.ErrorIs(t, err, service.ErrConflict)
}

func TestConcurrentReserveSingleWinner(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()

	const contenders = 16
	results := make([]error, contenders)

	var wg sync.WaitGroup
	for i := range contenders {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			owner := service.Owner{ID: fmt.Sprintf("f-%d", i), Type: service.OwnerFreelancer}
			_, results[i] = svc.Reserve(ctx, owner, "contested-slug")
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, service.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, wins)
	require.Equal(t, contenders-1, conflicts)
}

func TestRenameAndRedirect(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()
	owner := service.Owner{ID: "v-9", Type: service.OwnerVendor}

	_, err := svc.Reserve(ctx, owner, "old-name")
	require.NoError(t, err)

	renamed, err := svc.Rename(ctx, owner, "new-name")
	require.NoError(t, err)
	require.Equal(t, []string{"old-name"}, renamed.RedirectFrom)

	res, err := svc.ResolveRedirect(ctx, "old-name")
	require.NoError(t, err)
	require.True(t, res.Found)
	require.Equal(t, "new-name", res.RedirectTo)

	res, err = svc.ResolveRedirect(ctx, "new-name")
	require.NoError(t, err)
	require.True(t, res.Found)
	require.Empty(t, res.RedirectTo)

	res, err = svc.ResolveRedirect(ctx, "never-existed")
	require.NoError(t, err)
	require.False(t, res.Found)

	// The freed slug is claimable again by someone else.
	available, err := svc.CheckAvailability(ctx, "old-name", nil)
	require.NoError(t, err)
	require.True(t, available)
}

func TestRenameTwoHopCollapse(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()
	owner := service.Owner{ID: "f-7", Type: service.OwnerFreelancer}

	_, err := svc.Reserve(ctx, owner, "name-a")
	require.NoError(t, err)
	_, err = svc.Rename(ctx, owner, "name-b")
	require.NoError(t, err)
	_, err = svc.Rename(ctx, owner, "name-c")
	require.NoError(t, err)

	// Both historical slugs jump straight to the current one.
	for _, stale := range []string{"name-a", "name-b"} {
		res, err := svc.ResolveRedirect(ctx, stale)
		require.NoError(t, err)
		require.True(t, res.Found)
		require.Equal(t, "name-c", res.RedirectTo, "stale slug %q", stale)
	}

	history, err := svc.History(ctx, owner)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.False(t, history[0].IsActive)
	require.False(t, history[1].IsActive)
	require.True(t, history[2].IsActive)
	// Each rename points redirect_from at the immediately preceding slug only.
	require.Equal(t, []string{"name-a"}, history[1].RedirectFrom)
	require.Equal(t, []string{"name-b"}, history[2].RedirectFrom)
}

func TestRenameRequiresExistingAssignment(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	_, err := svc.Rename(context.Background(), service.Owner{ID: "ghost", Type: service.OwnerVendor}, "new-name")
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestRenameIdempotentResave(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()
	owner := service.Owner{ID: "o-3", Type: service.OwnerOrganization}

	reserved, err := svc.Reserve(ctx, owner, "steady-name")
	require.NoError(t, err)

	same, err := svc.Rename(ctx, owner, "steady-name")
	require.NoError(t, err)
	require.Equal(t, reserved, same)

	history, err := svc.History(ctx, owner)
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestRenameConflict(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Reserve(ctx, service.Owner{ID: "a", Type: service.OwnerFreelancer}, "held-name")
	require.NoError(t, err)
	_, err = svc.Reserve(ctx, service.Owner{ID: "b", Type: service.OwnerFreelancer}, "other-name")
	require.NoError(t, err)

	_, err = svc.Rename(ctx, service.Owner{ID: "b", Type: service.OwnerFreelancer}, "held-name")
	require.ErrorIs(t, err, service.ErrConflict)
}

func TestCheckAvailabilityExcludeOwner(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()
	owner := service.Owner{ID: "f-5", Type: service.OwnerFreelancer}

	_, err := svc.Reserve(ctx, owner, "mine-alone")
	require.NoError(t, err)

	available, err := svc.CheckAvailability(ctx, "mine-alone", nil)
	require.NoError(t, err)
	require.False(t, available)

	available, err = svc.CheckAvailability(ctx, "mine-alone", &owner)
	require.NoError(t, err)
	require.True(t, available)

	other := service.Owner{ID: "f-6", Type: service.OwnerFreelancer}
	available, err = svc.CheckAvailability(ctx, "mine-alone", &other)
	require.NoError(t, err)
	require.False(t, available)
}

func TestSuggestOrderingAndValidity(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Reserve(ctx, service.Owner{ID: "x", Type: service.OwnerVendor}, "my-awesome-ai-co")
	require.NoError(t, err)

	suggestions, err := svc.Suggest(ctx, "my-awesome-ai-co", 0)
	require.NoError(t, err)
	require.Equal(t, []string{
		"my-awesome-ai-co-1",
		"my-awesome-ai-co-2",
		"my-awesome-ai-co-3",
		"my-awesome-ai-co-4",
		"my-awesome-ai-co-5",
	}, suggestions)

	for _, s := range suggestions {
		require.True(t, svc.Validate(s).IsValid, "suggestion %q must pass validation", s)
		available, err := svc.CheckAvailability(ctx, s, nil)
		require.NoError(t, err)
		require.True(t, available, "suggestion %q must be available", s)
	}
}

func TestSuggestSkipsTakenNumericCandidates(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Reserve(ctx, service.Owner{ID: "h-0", Type: service.OwnerFreelancer}, "studio-name")
	require.NoError(t, err)
	_, err = svc.Reserve(ctx, service.Owner{ID: "h-1", Type: service.OwnerFreelancer}, "studio-name-1")
	require.NoError(t, err)
	_, err = svc.Reserve(ctx, service.Owner{ID: "h-2", Type: service.OwnerFreelancer}, "studio-name-3")
	require.NoError(t, err)

	suggestions, err := svc.Suggest(ctx, "studio-name", 3)
	require.NoError(t, err)
	require.Equal(t, []string{"studio-name-2", "studio-name-4", "studio-name-5"}, suggestions)
}

func TestSuggestTruncatedFallbackForLongBase(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()

	// Occupy the entire numeric and suffix ranges for a long base so the
	// generator falls through to truncated-base candidates.
	base := "longbasename"
	for i := 1; i <= 99; i++ {
		owner := service.Owner{ID: fmt.Sprintf("n-%d", i), Type: service.OwnerVendor}
		_, err := svc.Reserve(ctx, owner, fmt.Sprintf("%s-%d", base, i))
		require.NoError(t, err)
	}
	for i, suffix := range []string{"pro", "expert", "official", "team", "studio", "inc", "co"} {
		owner := service.Owner{ID: fmt.Sprintf("s-%d", i), Type: service.OwnerVendor}
		_, err := svc.Reserve(ctx, owner, fmt.Sprintf("%s-%s", base, suffix))
		require.NoError(t, err)
	}

	suggestions, err := svc.Suggest(ctx, base, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"longbase1", "longbase2"}, suggestions)
}

func TestValidateAndCheck(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	ctx := context.Background()

	t.Run("invalid input reports violations without availability", func(t *testing.T) {
		out, err := svc.ValidateAndCheck(ctx, "Bad Slug!", nil)
		require.NoError(t, err)
		require.False(t, out.IsValid)
		require.NotEmpty(t, out.Errors)
		require.Empty(t, out.Suggestions)
	})

	t.Run("valid and free", func(t *testing.T) {
		out, err := svc.ValidateAndCheck(ctx, "fresh-name", nil)
		require.NoError(t, err)
		require.True(t, out.IsValid)
		require.True(t, out.IsAvailable)
		require.Empty(t, out.Suggestions)
	})

	t.Run("valid but taken proposes alternatives", func(t *testing.T) {
		_, err := svc.Reserve(ctx, service.Owner{ID: "z-1", Type: service.OwnerOrganization}, "taken-co")
		require.NoError(t, err)

		out, err := svc.ValidateAndCheck(ctx, "taken-co", nil)
		require.NoError(t, err)
		require.True(t, out.IsValid)
		require.False(t, out.IsAvailable)
		require.Equal(t, []string{"taken-co-1", "taken-co-2", "taken-co-3", "taken-co-4", "taken-co-5"}, out.Suggestions)
	})
}

func TestNormalizeScenario(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	got := svc.Normalize("My Awesome AI Co!!", 0)
	require.Equal(t, "my-awesome-ai-co", got)
	require.True(t, svc.Validate(got).IsValid)
}
