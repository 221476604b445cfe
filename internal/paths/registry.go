// Package paths resolves where the dataset registry lives on disk.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zjrosen/heinlein/internal/domain/dataset"
)

// AppName names the per-user configuration directory.
const AppName = "heinlein"

const (
	datasetsDirName = "datasets"
	configFileName  = "config.json"
)

// DefaultRoot returns the default registry root, <user config dir>/heinlein.
// Returns empty string if the user config directory cannot be determined.
func DefaultRoot() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, AppName)
}

// Resolver computes registry locations relative to an explicit root.
type Resolver struct {
	root string
}

// NewResolver creates a Resolver rooted at root. An empty root falls back to DefaultRoot.
func NewResolver(root string) *Resolver {
	if root == "" {
		root = DefaultRoot()
	}
	return &Resolver{root: filepath.Clean(root)}
}

// Root returns the configured root without touching the filesystem.
func (r *Resolver) Root() string {
	return r.root
}

// RegistryRoot returns the absolute registry root, creating it and its datasets
// directory if absent.
func (r *Resolver) RegistryRoot() (string, error) {
	root, err := filepath.Abs(r.root)
	if err != nil {
		return "", dataset.NewIOError("resolve registry root", r.root, err)
	}
	if err := os.MkdirAll(filepath.Join(root, datasetsDirName), 0o750); err != nil {
		return "", dataset.NewIOError("create registry root", root, err)
	}
	return root, nil
}

// DatasetsDir returns RegistryRoot()/datasets.
func (r *Resolver) DatasetsDir() (string, error) {
	root, err := r.RegistryRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, datasetsDirName), nil
}

// DatasetDir returns the directory holding the named dataset. It does not imply existence.
func (r *Resolver) DatasetDir(name string) (string, error) {
	dir, err := r.DatasetsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// DatasetConfigPath returns RegistryRoot()/datasets/<name>/config.json.
func (r *Resolver) DatasetConfigPath(name string) (string, error) {
	dir, err := r.DatasetDir(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// DatasetExists reports whether the named dataset's config file exists.
func (r *Resolver) DatasetExists(name string) bool {
	path, err := r.DatasetConfigPath(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ConfigFileName is the per-dataset config file name.
func ConfigFileName() string {
	return configFileName
}

// ValidateName checks that name can be used as a single directory component.
func ValidateName(field, name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return dataset.NewValidationError(field, "must not be empty")
	case name == "." || name == "..":
		return dataset.NewValidationError(field, fmt.Sprintf("%q is not allowed", name))
	case strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, os.PathSeparator):
		return dataset.NewValidationError(field, fmt.Sprintf("%q must not contain path separators", name))
	case strings.ContainsRune(name, 0):
		return dataset.NewValidationError(field, "must not contain NUL bytes")
	}
	return nil
}
