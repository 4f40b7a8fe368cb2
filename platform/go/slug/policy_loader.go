package slug

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed policy_schema.json
var policySchemaJSON []byte

var (
	policySchemaOnce sync.Once
	policySchema     *jsonschema.Schema
	policySchemaErr  error
)

func compiledPolicySchema() (*jsonschema.Schema, error) {
	policySchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("memory://slug-policy.schema.json", bytes.NewReader(policySchemaJSON)); err != nil {
			policySchemaErr = fmt.Errorf("register policy schema: %w", err)
			return
		}
		policySchema, policySchemaErr = compiler.Compile("memory://slug-policy.schema.json")
	})
	return policySchema, policySchemaErr
}

// policyDocument mirrors the on-disk policy file; pointer fields distinguish
// "absent, keep default" from explicit overrides.
type policyDocument struct {
	MinLength        *int     `json:"minLength"`
	MaxLength        *int     `json:"maxLength"`
	AllowDigits      *bool    `json:"allowDigits"`
	AllowHyphens     *bool    `json:"allowHyphens"`
	AllowUnderscores *bool    `json:"allowUnderscores"`
	ReservedWords    []string `json:"reservedWords"`
	ExtraReserved    []string `json:"extraReservedWords"`
	BlockedTerms     []string `json:"blockedTerms"`
	ExtraBlocked     []string `json:"extraBlockedTerms"`
}

// ParsePolicy validates the document against the embedded JSON Schema and
// layers it over DefaultPolicy. Full lists replace the defaults; the
// "extra" variants append to them.
func ParsePolicy(payload []byte) (*Policy, error) {
	schema, err := compiledPolicySchema()
	if err != nil {
		return nil, err
	}

	var raw any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("decode policy document: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("policy document validation: %w", err)
	}

	var doc policyDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("decode policy document: %w", err)
	}

	p := DefaultPolicy()
	if doc.MinLength != nil {
		p.MinLength = *doc.MinLength
	}
	if doc.MaxLength != nil {
		p.MaxLength = *doc.MaxLength
	}
	if doc.AllowDigits != nil {
		p.AllowDigits = *doc.AllowDigits
	}
	if doc.AllowHyphens != nil {
		p.AllowHyphens = *doc.AllowHyphens
	}
	if doc.AllowUnderscores != nil {
		p.AllowUnderscores = *doc.AllowUnderscores
	}
	if doc.ReservedWords != nil {
		p.ReservedWords = doc.ReservedWords
	}
	p.ReservedWords = append(p.ReservedWords, doc.ExtraReserved...)
	if doc.BlockedTerms != nil {
		p.BlockedTerms = doc.BlockedTerms
	}
	p.BlockedTerms = append(p.BlockedTerms, doc.ExtraBlocked...)

	if p.MinLength < 1 || p.MaxLength < p.MinLength {
		return nil, fmt.Errorf("policy length bounds invalid: min=%d max=%d", p.MinLength, p.MaxLength)
	}

	p.compile()
	return p, nil
}

// LoadPolicy reads and parses a policy file from disk.
func LoadPolicy(path string) (*Policy, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file %s: %w", path, err)
	}
	return ParsePolicy(payload)
}
