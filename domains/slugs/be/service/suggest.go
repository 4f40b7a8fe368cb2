package service

import (
	"context"
	"fmt"
)

// DefaultSuggestionCount is used when callers do not specify how many
// alternatives they want.
const DefaultSuggestionCount = 5

// suggestionSuffixes is a fixed, ordered vocabulary so suggestion output is
// deterministic and testable.
var suggestionSuffixes = []string{"pro", "expert", "official", "team", "studio", "inc", "co"}

// Suggest proposes up to n currently-available alternatives for a taken base
// slug, in a stable priority order: numeric suffixes first, then the fixed
// suffix vocabulary, then truncated-base numerics for long bases. Every
// candidate is re-validated and re-checked before being returned; exhausting
// the search space short is not an error.
func (s *Service) Suggest(ctx context.Context, base string, n int) ([]string, error) {
	if n <= 0 {
		n = DefaultSuggestionCount
	}

	suggestions := make([]string, 0, n)

	consider := func(candidate string) (bool, error) {
		if !s.policy.Validate(candidate).IsValid {
			return false, nil
		}
		available, err := s.CheckAvailability(ctx, candidate, nil)
		if err != nil {
			return false, err
		}
		if available {
			suggestions = append(suggestions, candidate)
		}
		return len(suggestions) >= n, nil
	}

	for i := 1; i <= 99; i++ {
		done, err := consider(fmt.Sprintf("%s-%d", base, i))
		if err != nil {
			return nil, err
		}
		if done {
			return suggestions, nil
		}
	}

	for _, suffix := range suggestionSuffixes {
		done, err := consider(fmt.Sprintf("%s-%s", base, suffix))
		if err != nil {
			return nil, err
		}
		if done {
			return suggestions, nil
		}
	}

	if len(base) > 10 {
		for i := 1; i <= 9; i++ {
			done, err := consider(fmt.Sprintf("%s%d", base[:8], i))
			if err != nil {
				return nil, err
			}
			if done {
				return suggestions, nil
			}
		}
	}

	return suggestions, nil
}
