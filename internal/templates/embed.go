package templates

import (
	"embed"
	"io/fs"
)

// bundle embeds the dataset configuration templates.
// The structure is:
//   - datasets/default.json (fallback for unknown dataset names)
//   - datasets/<dataset-name>.json (templates for known surveys)
//
//go:embed datasets
var bundle embed.FS

// BundleFS returns the embedded filesystem containing the dataset templates.
func BundleFS() fs.FS {
	return bundle
}

// NewEmbedded returns a Catalog over the compiled-in templates.
func NewEmbedded() *Catalog {
	return NewCatalog(BundleFS(), BundleDir)
}
