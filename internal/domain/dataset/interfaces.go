package dataset

import "context"

// TemplateProvider is a read-only catalog of starting documents.
type TemplateProvider interface {
	// Template returns the template named name. ok is false when none exists,
	// which is a normal outcome routed to Default.
	Template(name string) (doc Document, ok bool)

	// Default returns the fallback template. Implementations panic if their
	// bundle has no default, which only happens in a broken build.
	Default() Document

	// Names returns the names of all templates other than the default, sorted.
	Names() []string
}

// ConfigStore loads and persists dataset documents.
type ConfigStore interface {
	// Load returns the dataset's document and config path, or a NotFound error
	// when the dataset does not exist.
	Load(name string) (Document, string, error)

	// Persist atomically replaces the file at path with doc.
	Persist(path string, doc Document) error

	// Create returns the existing document when the dataset exists; otherwise it
	// seeds one from the templates and persists it. created reports which.
	Create(name string) (doc Document, path string, created bool, err error)

	// Exists reports whether the dataset's config file is present.
	Exists(name string) bool

	// Datasets returns every dataset name with a valid config file, sorted.
	Datasets() ([]string, error)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}
