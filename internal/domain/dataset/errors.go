package dataset

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below match these through errors.Is.
var (
	// ErrNotFound is returned when a dataset, its data, a datatype or a path is missing.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a datatype is registered and overwrite was not requested.
	ErrAlreadyExists = errors.New("already exists")

	// ErrIO is returned when a directory or file cannot be created, read, encoded or written.
	ErrIO = errors.New("io failure")

	// ErrInvalidInput is returned when a dataset or datatype name is unusable.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAborted is returned when the user declines a confirmation.
	ErrAborted = errors.New("aborted")
)

// NotFoundKind says which lookup failed.
type NotFoundKind string

const (
	KindDataset  NotFoundKind = "dataset"
	KindData     NotFoundKind = "data"
	KindDatatype NotFoundKind = "datatype"
	KindPath     NotFoundKind = "path"
)

// NotFoundError represents a failed lookup.
type NotFoundError struct {
	Kind    NotFoundKind
	Dataset string
	Name    string
}

func (e *NotFoundError) Error() string {
	switch e.Kind {
	case KindDataset:
		return fmt.Sprintf("dataset %q does not exist", e.Dataset)
	case KindData:
		return fmt.Sprintf("dataset %q has no data", e.Dataset)
	case KindDatatype:
		return fmt.Sprintf("dataset %q has no data of type %q", e.Dataset, e.Name)
	case KindPath:
		return fmt.Sprintf("path %q does not exist", e.Name)
	default:
		return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
	}
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError represents a datatype that is already registered.
type AlreadyExistsError struct {
	Dataset  string
	Datatype string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("datatype %q already exists in dataset %q", e.Datatype, e.Dataset)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// IOError wraps a filesystem or serialization failure.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

// ValidationError represents an unusable input value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid input: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewDatasetNotFound reports a missing dataset.
func NewDatasetNotFound(dataset string) error {
	return &NotFoundError{Kind: KindDataset, Dataset: dataset}
}

// NewNoData reports a dataset without a data section, or with an empty one.
func NewNoData(dataset string) error {
	return &NotFoundError{Kind: KindData, Dataset: dataset}
}

// NewDatatypeNotFound reports a datatype missing from a dataset.
func NewDatatypeNotFound(dataset, datatype string) error {
	return &NotFoundError{Kind: KindDatatype, Dataset: dataset, Name: datatype}
}

// NewPathNotFound reports a filesystem path that does not exist.
func NewPathNotFound(path string) error {
	return &NotFoundError{Kind: KindPath, Name: path}
}

// NewAlreadyExists reports a datatype registered without overwrite.
func NewAlreadyExists(dataset, datatype string) error {
	return &AlreadyExistsError{Dataset: dataset, Datatype: datatype}
}

// NewIOError wraps err as an IO failure of op on path.
func NewIOError(op, path string, err error) error {
	return &IOError{Op: op, Path: path, Err: err}
}

// NewValidationError reports an invalid field value.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsIO checks if an error is an IO failure.
func IsIO(err error) bool {
	return errors.Is(err, ErrIO)
}

// IsInvalidInput checks if an error is a validation error.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
