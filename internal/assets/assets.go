// Package assets embeds the resources shipped with the binary.
package assets

import _ "embed"

// DefaultCatalog is the built-in furniture catalog in YAML.
//
//go:embed default_catalog.yaml
var DefaultCatalog []byte
