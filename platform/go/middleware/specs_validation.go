package middleware

import (
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	oapimiddleware "github.com/oapi-codegen/nethttp-middleware"
)

// NewSpecValidator compiles an embedded OpenAPI document and returns request
// validation middleware for the router group serving that contract.
func NewSpecValidator(spec []byte) (func(http.Handler) http.Handler, error) {
	loader := openapi3.NewLoader()

	doc, err := loader.LoadFromData(spec)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}

	return oapimiddleware.OapiRequestValidator(doc), nil
}
