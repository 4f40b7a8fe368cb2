package slug

import (
	"fmt"
	"regexp"
	"strings"
)

// Violation codes are stable machine-readable identifiers surfaced to callers
// so form UIs can map each broken rule to copy.
const (
	CodeTooShort     = "too_short"
	CodeTooLong      = "too_long"
	CodeInvalidChars = "invalid_characters"
	CodeEdgeChars    = "edge_characters"
	CodeReserved     = "reserved"
	CodeBlockedTerm  = "blocked_term"
)

var (
	allowedPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)
	digitPattern   = regexp.MustCompile(`[0-9]`)
)

// Violation describes a single broken validation rule.
type Violation struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult accumulates every broken rule; validation never
// short-circuits so callers can show all problems at once.
type ValidationResult struct {
	IsValid bool        `json:"isValid"`
	Errors  []Violation `json:"errors,omitempty"`
}

// Policy is the injectable rule set for slug validation. It is configuration,
// not code: construct via DefaultPolicy or LoadPolicy and tune without
// touching allocation logic.
type Policy struct {
	MinLength        int      `json:"minLength"`
	MaxLength        int      `json:"maxLength"`
	AllowDigits      bool     `json:"allowDigits"`
	AllowHyphens     bool     `json:"allowHyphens"`
	AllowUnderscores bool     `json:"allowUnderscores"`
	ReservedWords    []string `json:"reservedWords"`
	BlockedTerms     []string `json:"blockedTerms"`

	reserved map[string]struct{}
}

// DefaultPolicy returns the platform rule set: 3-50 chars, digits, hyphens
// and underscores allowed, the built-in reserved-word and blocked-term lists.
func DefaultPolicy() *Policy {
	p := &Policy{
		MinLength:        3,
		MaxLength:        DefaultMaxLength,
		AllowDigits:      true,
		AllowHyphens:     true,
		AllowUnderscores: true,
		ReservedWords:    defaultReservedWords,
		BlockedTerms:     defaultBlockedTerms,
	}
	p.compile()
	return p
}

// compile builds the reserved-word lookup; safe to call repeatedly.
func (p *Policy) compile() {
	p.reserved = make(map[string]struct{}, len(p.ReservedWords))
	for _, w := range p.ReservedWords {
		p.reserved[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
}

// IsReserved reports whether the value collides with a platform or system term.
func (p *Policy) IsReserved(s string) bool {
	if p.reserved == nil {
		p.compile()
	}
	_, ok := p.reserved[s]
	return ok
}

// Validate checks every rule independently and reports all violations.
// Pure, no I/O.
func (p *Policy) Validate(s string) ValidationResult {
	var errs []Violation

	if len(s) < p.MinLength {
		errs = append(errs, Violation{
			Code:    CodeTooShort,
			Message: fmt.Sprintf("must be at least %d characters", p.MinLength),
		})
	}
	if len(s) > p.MaxLength {
		errs = append(errs, Violation{
			Code:    CodeTooLong,
			Message: fmt.Sprintf("must be at most %d characters", p.MaxLength),
		})
	}

	if s != "" && !allowedPattern.MatchString(s) {
		errs = append(errs, Violation{
			Code:    CodeInvalidChars,
			Message: "may only contain lowercase letters, digits, hyphens, and underscores",
		})
	}

	if !p.AllowDigits && digitPattern.MatchString(s) {
		errs = append(errs, Violation{Code: CodeInvalidChars, Message: "digits are not allowed"})
	}
	if !p.AllowHyphens && strings.Contains(s, "-") {
		errs = append(errs, Violation{Code: CodeInvalidChars, Message: "hyphens are not allowed"})
	}
	if !p.AllowUnderscores && strings.Contains(s, "_") {
		errs = append(errs, Violation{Code: CodeInvalidChars, Message: "underscores are not allowed"})
	}

	if s != "" && (isEdgeChar(s[0]) || isEdgeChar(s[len(s)-1])) {
		errs = append(errs, Violation{
			Code:    CodeEdgeChars,
			Message: "must not start or end with a hyphen or underscore",
		})
	}

	if p.IsReserved(s) {
		errs = append(errs, Violation{
			Code:    CodeReserved,
			Message: fmt.Sprintf("%q is reserved and cannot be claimed", s),
		})
	}

	for _, term := range p.BlockedTerms {
		if term != "" && strings.Contains(s, term) {
			errs = append(errs, Violation{
				Code:    CodeBlockedTerm,
				Message: "contains a disallowed term",
			})
			break
		}
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

func isEdgeChar(c byte) bool {
	return c == '-' || c == '_'
}

// ValidationError wraps a failed ValidationResult so service callers receive
// the full violation list as a structured, expected outcome.
type ValidationError struct {
	Slug   string
	Errors []Violation
}

func (e *ValidationError) Error() string {
	codes := make([]string, 0, len(e.Errors))
	for _, v := range e.Errors {
		codes = append(codes, v.Code)
	}
	return fmt.Sprintf("invalid slug %q: %s", e.Slug, strings.Join(codes, ", "))
}
