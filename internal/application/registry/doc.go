// Package registry implements the dataset registry operations.
//
// Service is the single entry point used by the CLI. Each operation is one
// load-mutate-persist cycle against a dataset.ConfigStore, or a read-only load;
// no state is kept between calls.
//
// # Collaborators
//
// The service depends only on interfaces from internal/domain/dataset:
//   - ConfigStore: loads, creates and persists config.json documents
//   - TemplateProvider: names the templates a new dataset may be seeded from
//   - Confirmer: asks the user before a missing dataset is created or a dataset is cleared
//
// Tests substitute a temporary registry root, an in-memory template bundle and a
// scripted confirmer.
//
// # Validation Before Persistence
//
// Every operation validates its inputs and preconditions before the first write.
// A declined confirmation or a failed check leaves the registry untouched.
//
// # Tracing
//
// Each operation runs in a span named registry.<operation> carrying the dataset
// and datatype as attributes. Without a tracer the spans are no-ops.
package registry
