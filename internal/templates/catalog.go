// Package templates provides the read-only catalog of dataset configuration
// templates used to seed new datasets.
package templates

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/heinlein/internal/domain/dataset"
	"github.com/zjrosen/heinlein/internal/log"
)

const (
	// BundleDir is the directory inside the bundle holding template files.
	BundleDir = "datasets"

	// DefaultName is the template used when no template matches a dataset name.
	DefaultName = "default"

	templateExt = ".json"
)

// Catalog serves templates from a filesystem, memoizing parsed documents.
// Every lookup returns a deep copy, so callers may mutate the result.
type Catalog struct {
	fsys  fs.FS
	dir   string
	cache *gocache.Cache
}

// NewCatalog creates a Catalog reading <dir>/<name>.json files from fsys.
func NewCatalog(fsys fs.FS, dir string) *Catalog {
	return &Catalog{
		fsys:  fsys,
		dir:   dir,
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// Template returns the template named name, if one exists.
// The default template is never returned here; use Default.
func (c *Catalog) Template(name string) (dataset.Document, bool) {
	if name == DefaultName || name == "" || strings.ContainsAny(name, `/\`) {
		return nil, false
	}

	doc, err := c.load(name)
	if err != nil {
		if !isNotExist(err) {
			log.ErrorErr(log.CatTemplate, "Failed to load template", err, "name", name)
		}
		return nil, false
	}

	log.Debug(log.CatTemplate, "Using template", "name", name)
	return doc.Clone(), true
}

// Default returns the fallback template.
// It panics if the bundle has no parseable default template: that is a broken
// build, not a condition a user can correct.
func (c *Catalog) Default() dataset.Document {
	doc, err := c.load(DefaultName)
	if err != nil {
		panic(fmt.Sprintf("templates: default template unavailable: %v", err))
	}
	return doc.Clone()
}

// Names returns the names of all templates other than the default, sorted.
func (c *Catalog) Names() []string {
	entries, err := fs.ReadDir(c.fsys, c.dir)
	if err != nil {
		log.ErrorErr(log.CatTemplate, "Failed to read template directory", err, "dir", c.dir)
		return []string{}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), templateExt) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), templateExt)
		if name == DefaultName {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// MustValidate parses every template in the catalog and panics on the first
// failure. Call it at startup so a broken bundle aborts immediately.
func (c *Catalog) MustValidate() {
	_ = c.Default()
	for _, name := range c.Names() {
		if _, err := c.load(name); err != nil {
			panic(fmt.Sprintf("templates: template %q is invalid: %v", name, err))
		}
	}
}

func (c *Catalog) load(name string) (dataset.Document, error) {
	if cached, ok := c.cache.Get(name); ok {
		if doc, ok := cached.(dataset.Document); ok {
			return doc, nil
		}
	}

	data, err := fs.ReadFile(c.fsys, path.Join(c.dir, name+templateExt))
	if err != nil {
		return nil, err
	}

	var doc dataset.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("parsing template %s: not a JSON object", name)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}

	c.cache.Set(name, doc, gocache.NoExpiration)
	return doc, nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// Compile-time check that Catalog implements dataset.TemplateProvider.
var _ dataset.TemplateProvider = (*Catalog)(nil)
