// Package contracts embeds the OpenAPI documents enforced at the API boundary.
package contracts

import _ "embed"

//go:embed slugs.yaml
var SlugsYAML []byte
