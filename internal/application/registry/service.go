package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"syscall"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/heinlein/internal/domain/dataset"
	"github.com/zjrosen/heinlein/internal/log"
	"github.com/zjrosen/heinlein/internal/paths"
	"github.com/zjrosen/heinlein/internal/tracing"
)

// DefaultTemplate names the fallback template in results.
const DefaultTemplate = "default"

// Result describes a single datatype entry touched by an operation.
type Result struct {
	Dataset  string
	Datatype string
	Path     string
	// Created is true when the operation created the dataset first.
	Created bool
}

// CreateResult describes an explicit dataset creation.
type CreateResult struct {
	Dataset    string
	ConfigPath string
	// Template is the template the dataset was seeded from; empty when it already existed.
	Template string
	Created  bool
}

// ClearResult describes a cleared dataset.
type ClearResult struct {
	Dataset string
	Removed []string
}

// DatasetSummary is one row of the registry overview.
type DatasetSummary struct {
	Name string
	Data map[string]string
}

// Datatypes returns the summary's datatype names, sorted.
func (d DatasetSummary) Datatypes() []string {
	return dataset.Document{dataset.KeyData: d.Data}.Datatypes()
}

// Service implements the registry operations.
type Service struct {
	store     dataset.ConfigStore
	templates dataset.TemplateProvider
	confirmer dataset.Confirmer
	tracer    trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithTracer sets the tracer used for operation spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// NewService creates a registry service.
func NewService(
	store dataset.ConfigStore,
	templates dataset.TemplateProvider,
	confirmer dataset.Confirmer,
	opts ...Option,
) *Service {
	s := &Service{
		store:     store,
		templates: templates,
		confirmer: confirmer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracing.Start(ctx, s.tracer, tracing.SpanPrefixRegistry+op, attrs...)
}

// Add registers path under datatype in the named dataset. When the dataset does
// not exist the confirmer is asked whether to create it; declining fails with a
// NotFound error. An existing datatype is replaced only when overwrite is set.
// The stored path is absolute with symlinks resolved.
func (s *Service) Add(ctx context.Context, name, datatype, path string, overwrite bool) (res Result, err error) {
	ctx, span := s.start(ctx, "add",
		attribute.String(tracing.AttrDataset, name),
		attribute.String(tracing.AttrDatatype, datatype),
		attribute.Bool(tracing.AttrOverwrite, overwrite),
	)
	defer func() { tracing.Finish(span, err) }()

	if err := validate(name, datatype); err != nil {
		return Result{}, err
	}

	created := false
	if !s.store.Exists(name) {
		ok, err := s.confirm(ctx, fmt.Sprintf("Dataset %q does not exist. Create it?", name))
		if err != nil {
			return Result{}, err
		}
		if !ok {
			log.Info(log.CatRegistry, "Dataset creation declined", "dataset", name)
			return Result{}, dataset.NewDatasetNotFound(name)
		}
		// Check the path now so a failed add never leaves a new dataset behind.
		if _, err := canonicalPath(path); err != nil {
			return Result{}, err
		}
		if _, _, created, err = s.store.Create(name); err != nil {
			return Result{}, fmt.Errorf("create dataset: %w", err)
		}
		span.SetAttributes(attribute.Bool(tracing.AttrCreated, created))
	}

	doc, cfgPath, err := s.store.Load(name)
	if err != nil {
		return Result{}, err
	}

	data, _ := doc.Data()
	if _, exists := data[datatype]; exists && !overwrite {
		return Result{}, dataset.NewAlreadyExists(name, datatype)
	}

	canonical, err := canonicalPath(path)
	if err != nil {
		return Result{}, err
	}

	data[datatype] = canonical
	doc.SetData(data)
	if err := s.store.Persist(cfgPath, doc); err != nil {
		return Result{}, err
	}

	span.SetAttributes(attribute.String(tracing.AttrPath, canonical))
	log.Info(log.CatRegistry, "Added datatype",
		"dataset", name, "datatype", datatype, "path", canonical, "created", created, "overwrite", overwrite)

	return Result{Dataset: name, Datatype: datatype, Path: canonical, Created: created}, nil
}

// Get returns the path stored for datatype. The path is not re-checked on disk.
func (s *Service) Get(ctx context.Context, name, datatype string) (res Result, err error) {
	_, span := s.start(ctx, "get",
		attribute.String(tracing.AttrDataset, name),
		attribute.String(tracing.AttrDatatype, datatype),
	)
	defer func() { tracing.Finish(span, err) }()

	if err := validate(name, datatype); err != nil {
		return Result{}, err
	}

	doc, _, err := s.store.Load(name)
	if err != nil {
		return Result{}, err
	}
	path, err := lookup(doc, name, datatype)
	if err != nil {
		return Result{}, err
	}

	log.Debug(log.CatRegistry, "Resolved datatype", "dataset", name, "datatype", datatype, "path", path)
	return Result{Dataset: name, Datatype: datatype, Path: path}, nil
}

// Remove deletes datatype from the dataset. Result.Path holds the removed path.
func (s *Service) Remove(ctx context.Context, name, datatype string) (res Result, err error) {
	_, span := s.start(ctx, "remove",
		attribute.String(tracing.AttrDataset, name),
		attribute.String(tracing.AttrDatatype, datatype),
	)
	defer func() { tracing.Finish(span, err) }()

	if err := validate(name, datatype); err != nil {
		return Result{}, err
	}

	doc, cfgPath, err := s.store.Load(name)
	if err != nil {
		return Result{}, err
	}
	path, err := lookup(doc, name, datatype)
	if err != nil {
		return Result{}, err
	}

	data, _ := doc.Data()
	delete(data, datatype)
	doc.SetData(data)
	if err := s.store.Persist(cfgPath, doc); err != nil {
		return Result{}, err
	}

	log.Info(log.CatRegistry, "Removed datatype", "dataset", name, "datatype", datatype)
	return Result{Dataset: name, Datatype: datatype, Path: path}, nil
}

// List returns the dataset's datatype names, sorted. A dataset without data,
// or with an empty data section, is reported as NotFound rather than an empty list.
func (s *Service) List(ctx context.Context, name string) (types []string, err error) {
	_, span := s.start(ctx, "list", attribute.String(tracing.AttrDataset, name))
	defer func() { tracing.Finish(span, err) }()

	if err := paths.ValidateName("dataset name", name); err != nil {
		return nil, err
	}

	doc, _, err := s.store.Load(name)
	if err != nil {
		return nil, err
	}
	data, ok := doc.Data()
	if !ok || len(data) == 0 {
		return nil, dataset.NewNoData(name)
	}

	types = doc.Datatypes()
	span.SetAttributes(attribute.Int(tracing.AttrCount, len(types)))
	return types, nil
}

// ListDatasets returns every registered dataset name, sorted. An empty registry
// yields an empty slice and no error.
func (s *Service) ListDatasets(ctx context.Context) (names []string, err error) {
	_, span := s.start(ctx, "list_datasets")
	defer func() { tracing.Finish(span, err) }()

	names, err = s.store.Datasets()
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	span.SetAttributes(attribute.Int(tracing.AttrCount, len(names)))
	return names, nil
}

// Create registers a dataset without adding any datatype. It is idempotent:
// an existing dataset is returned unchanged with Created false.
func (s *Service) Create(ctx context.Context, name string) (res CreateResult, err error) {
	_, span := s.start(ctx, "create", attribute.String(tracing.AttrDataset, name))
	defer func() { tracing.Finish(span, err) }()

	if err := paths.ValidateName("dataset name", name); err != nil {
		return CreateResult{}, err
	}

	_, cfgPath, created, err := s.store.Create(name)
	if err != nil {
		return CreateResult{}, fmt.Errorf("create dataset: %w", err)
	}
	span.SetAttributes(attribute.Bool(tracing.AttrCreated, created))

	if !created {
		return CreateResult{Dataset: name, ConfigPath: cfgPath}, nil
	}

	tpl := DefaultTemplate
	if _, ok := s.templates.Template(name); ok {
		tpl = name
	}
	log.Info(log.CatRegistry, "Created dataset", "dataset", name, "template", tpl, "path", cfgPath)
	return CreateResult{Dataset: name, ConfigPath: cfgPath, Template: tpl, Created: created}, nil
}

// Clear removes every datatype from the dataset after confirmation. Declining
// returns dataset.ErrAborted and writes nothing.
func (s *Service) Clear(ctx context.Context, name string) (res ClearResult, err error) {
	ctx, span := s.start(ctx, "clear", attribute.String(tracing.AttrDataset, name))
	defer func() { tracing.Finish(span, err) }()

	if err := paths.ValidateName("dataset name", name); err != nil {
		return ClearResult{}, err
	}

	doc, cfgPath, err := s.store.Load(name)
	if err != nil {
		return ClearResult{}, err
	}

	ok, err := s.confirm(ctx, fmt.Sprintf("Remove all datatypes from dataset %q?", name))
	if err != nil {
		return ClearResult{}, err
	}
	if !ok {
		log.Info(log.CatRegistry, "Clear declined", "dataset", name)
		return ClearResult{}, fmt.Errorf("clear dataset %q: %w", name, dataset.ErrAborted)
	}

	removed := doc.Datatypes()
	doc.SetData(nil)
	if err := s.store.Persist(cfgPath, doc); err != nil {
		return ClearResult{}, err
	}

	span.SetAttributes(attribute.Int(tracing.AttrCount, len(removed)))
	log.Info(log.CatRegistry, "Cleared dataset", "dataset", name, "removed", len(removed))
	return ClearResult{Dataset: name, Removed: removed}, nil
}

// Overview returns every dataset with its registered datatypes. Datasets
// without data are included with an empty map.
func (s *Service) Overview(ctx context.Context) (rows []DatasetSummary, err error) {
	ctx, span := s.start(ctx, "overview")
	defer func() { tracing.Finish(span, err) }()

	names, err := s.ListDatasets(ctx)
	if err != nil {
		return nil, err
	}

	rows = make([]DatasetSummary, 0, len(names))
	for _, name := range names {
		doc, _, err := s.store.Load(name)
		if err != nil {
			return nil, fmt.Errorf("load dataset %q: %w", name, err)
		}
		data, _ := doc.Data()
		rows = append(rows, DatasetSummary{Name: name, Data: data})
	}

	span.SetAttributes(attribute.Int(tracing.AttrCount, len(rows)))
	return rows, nil
}

// Templates returns the names of the bundled dataset templates.
func (s *Service) Templates() []string {
	return s.templates.Names()
}

func (s *Service) confirm(ctx context.Context, question string) (bool, error) {
	if s.confirmer == nil {
		return false, nil
	}
	ok, err := s.confirmer.Confirm(ctx, question)
	if err != nil {
		log.ErrorErr(log.CatRegistry, "Confirmation failed", err)
		return false, fmt.Errorf("confirm: %w", err)
	}
	return ok, nil
}

func validate(name, datatype string) error {
	if err := paths.ValidateName("dataset name", name); err != nil {
		return err
	}
	if strings.TrimSpace(datatype) == "" {
		return dataset.NewValidationError("datatype name", "must not be empty")
	}
	return nil
}

func lookup(doc dataset.Document, name, datatype string) (string, error) {
	data, ok := doc.Data()
	if !ok {
		return "", dataset.NewNoData(name)
	}
	path, ok := data[datatype]
	if !ok {
		return "", dataset.NewDatatypeNotFound(name, datatype)
	}
	return path, nil
}

// canonicalPath returns p as an absolute path with symlinks resolved, or a
// NotFound error when nothing exists at p.
func canonicalPath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", dataset.NewValidationError("path", "must not be empty")
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", dataset.NewIOError("resolve path", p, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// A file used as a directory component (ENOTDIR) also means nothing exists at p.
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return "", dataset.NewPathNotFound(p)
		}
		return "", dataset.NewIOError("resolve path", p, err)
	}
	return resolved, nil
}
