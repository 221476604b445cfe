// Package dataset implements the domain layer for the dataset registry.
//
// This package holds only pure Go code with standard library imports:
//   - Document, the key-value configuration persisted for one dataset
//   - the error vocabulary shared by every layer (NotFound, AlreadyExists, IO, ...)
//   - the collaborator interfaces the registry service is built against
//
// It has no knowledge of where documents live on disk, how templates are bundled,
// or how the user is asked for confirmation.
//
// # Document
//
// A Document is a JSON object. Two keys are reserved:
//
//	name  the dataset's canonical name, set at creation
//	data  datatype name -> absolute filesystem path
//
// Every other key is template metadata and is passed through untouched.
//
// # Errors
//
// Errors are typed values that match the package sentinels through errors.Is:
//
//	doc, _, err := store.Load("movies")
//	if dataset.IsNotFound(err) {
//	    // offer to create it
//	}
package dataset
