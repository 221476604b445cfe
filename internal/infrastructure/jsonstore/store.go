// Package jsonstore persists dataset documents as pretty-printed config.json
// files under the registry root.
package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/renameio/v2"

	"github.com/zjrosen/heinlein/internal/domain/dataset"
	"github.com/zjrosen/heinlein/internal/log"
	"github.com/zjrosen/heinlein/internal/paths"
)

const filePerm = 0o644

// Store implements dataset.ConfigStore on the local filesystem.
type Store struct {
	paths     *paths.Resolver
	templates dataset.TemplateProvider
}

// New creates a Store rooted at resolver, seeding new datasets from templates.
func New(resolver *paths.Resolver, templates dataset.TemplateProvider) *Store {
	return &Store{
		paths:     resolver,
		templates: templates,
	}
}

// Ensure Store implements dataset.ConfigStore.
var _ dataset.ConfigStore = (*Store)(nil)

// Exists reports whether the dataset's config file is present.
func (s *Store) Exists(name string) bool {
	if paths.ValidateName("dataset name", name) != nil {
		return false
	}
	return s.paths.DatasetExists(name)
}

// Load reads the dataset's document. Absence is reported as a NotFound error so
// callers can decide whether it is fatal.
func (s *Store) Load(name string) (dataset.Document, string, error) {
	if err := paths.ValidateName("dataset name", name); err != nil {
		return nil, "", err
	}

	path, err := s.paths.DatasetConfigPath(name)
	if err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is built from a validated dataset name
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", dataset.NewDatasetNotFound(name)
		}
		log.ErrorErr(log.CatStore, "Failed to read config", err, "path", path)
		return nil, "", dataset.NewIOError("read config", path, err)
	}

	doc, err := decode(data)
	if err != nil {
		log.ErrorErr(log.CatStore, "Failed to decode config", err, "path", path)
		return nil, "", dataset.NewIOError("decode config", path, err)
	}

	log.Debug(log.CatStore, "Loaded config", "dataset", name, "path", path)
	return doc, path, nil
}

// Persist serializes doc as indented JSON and atomically replaces the file at path.
// The in-memory document is never modified.
func (s *Store) Persist(path string, doc dataset.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return dataset.NewIOError("encode config", path, err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return dataset.NewIOError("create dataset directory", filepath.Dir(path), err)
	}

	// renameio handles: temp file creation, fsync, atomic rename, cleanup on error
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(filePerm))
	if err != nil {
		log.ErrorErr(log.CatStore, "Failed to create pending config file", err, "path", path)
		return dataset.NewIOError("create pending config", path, err)
	}
	defer func() {
		// Removes the temp file if the replace below did not happen
		if err := pending.Cleanup(); err != nil {
			log.Debug(log.CatStore, "Cleanup pending config file", "path", path, "error", err.Error())
		}
	}()

	if _, err := pending.Write(data); err != nil {
		log.ErrorErr(log.CatStore, "Failed to write config", err, "path", path)
		return dataset.NewIOError("write config", path, err)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		log.ErrorErr(log.CatStore, "Failed to replace config", err, "path", path)
		return dataset.NewIOError("replace config", path, err)
	}

	log.Debug(log.CatStore, "Persisted config", "path", path, "bytes", len(data))
	return nil
}

// Create returns the existing document if the dataset exists. Otherwise it creates
// the dataset directory, seeds a document from the templates and persists it.
//
// A template named exactly like the dataset is used verbatim; any other name
// starts from the default template with its name injected.
func (s *Store) Create(name string) (dataset.Document, string, bool, error) {
	if err := paths.ValidateName("dataset name", name); err != nil {
		return nil, "", false, err
	}

	if s.paths.DatasetExists(name) {
		doc, path, err := s.Load(name)
		return doc, path, false, err
	}

	dir, err := s.paths.DatasetDir(name)
	if err != nil {
		return nil, "", false, err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatStore, "Failed to create dataset directory", err, "dir", dir)
		return nil, "", false, dataset.NewIOError("create dataset directory", dir, err)
	}

	doc := s.seed(name)
	path := filepath.Join(dir, paths.ConfigFileName())
	if err := s.Persist(path, doc); err != nil {
		return nil, "", false, err
	}

	log.Info(log.CatStore, "Created dataset", "dataset", name, "path", path)
	return doc, path, true, nil
}

func (s *Store) seed(name string) dataset.Document {
	if doc, ok := s.templates.Template(name); ok {
		return doc
	}
	doc := s.templates.Default()
	doc.SetName(name)
	return doc
}

// Datasets returns the names of every subdirectory of the datasets directory that
// holds a decodable config.json, sorted lexicographically.
func (s *Store) Datasets() ([]string, error) {
	dir, err := s.paths.DatasetsDir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, dataset.NewIOError("read datasets directory", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name(), paths.ConfigFileName())
		data, err := os.ReadFile(path) //nolint:gosec // G304: path is inside the registry root
		if err != nil {
			continue
		}
		if _, err := decode(data); err != nil {
			log.Warn(log.CatStore, "Skipping dataset with invalid config", "path", path, "error", err.Error())
			continue
		}
		names = append(names, entry.Name())
	}

	slices.Sort(names)
	return names, nil
}

func decode(data []byte) (dataset.Document, error) {
	var doc dataset.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("config is not a JSON object")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}
