package registry

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/heinlein/internal/domain/dataset"
	"github.com/zjrosen/heinlein/internal/infrastructure/jsonstore"
	"github.com/zjrosen/heinlein/internal/paths"
	"github.com/zjrosen/heinlein/internal/templates"
	"github.com/zjrosen/heinlein/internal/tracing"
)

// scriptedConfirmer answers every question the same way and records them.
type scriptedConfirmer struct {
	answer    bool
	err       error
	questions []string
}

func (c *scriptedConfirmer) Confirm(_ context.Context, question string) (bool, error) {
	c.questions = append(c.questions, question)
	return c.answer, c.err
}

type fixture struct {
	svc     *Service
	store   *jsonstore.Store
	paths   *paths.Resolver
	confirm *scriptedConfirmer
	files   string
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	resolver := paths.NewResolver(filepath.Join(t.TempDir(), "registry"))
	catalog := templates.NewCatalog(fstest.MapFS{
		"tpl/default.json": {Data: []byte(`{"name": ""}`)},
		"tpl/des.json":     {Data: []byte(`{"name": "des", "release": "Y6"}`)},
	}, "tpl")
	store := jsonstore.New(resolver, catalog)
	confirm := &scriptedConfirmer{answer: true}
	return &fixture{
		svc:     NewService(store, catalog, confirm, opts...),
		store:   store,
		paths:   resolver,
		confirm: confirm,
		files:   t.TempDir(),
	}
}

// file creates a file under the fixture's scratch dir and returns its canonical path.
func (f *fixture) file(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(f.files, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	canonical, err := filepath.EvalSymlinks(p)
	require.NoError(t, err)
	return canonical
}

func (f *fixture) configJSON(t *testing.T, name string) map[string]any {
	t.Helper()
	p, err := f.paths.DatasetConfigPath(name)
	require.NoError(t, err)
	raw, err := os.ReadFile(p)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func requireNotFoundKind(t *testing.T, err error, kind dataset.NotFoundKind) {
	t.Helper()
	require.True(t, dataset.IsNotFound(err), "expected not found, got %v", err)
	var nf *dataset.NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, kind, nf.Kind)
}

func TestAdd_CreatesMissingDatasetWhenConfirmed(t *testing.T) {
	f := newFixture(t)
	poster := f.file(t, "p.png")

	res, err := f.svc.Add(context.Background(), "movies", "poster", poster, false)
	require.NoError(t, err)
	require.Equal(t, Result{Dataset: "movies", Datatype: "poster", Path: poster, Created: true}, res)
	require.Len(t, f.confirm.questions, 1)
	require.Contains(t, f.confirm.questions[0], `"movies"`)

	require.Equal(t, map[string]any{
		"name": "movies",
		"data": map[string]any{"poster": poster},
	}, f.configJSON(t, "movies"))
}

func TestAdd_DeclinedWritesNothing(t *testing.T) {
	f := newFixture(t)
	f.confirm.answer = false
	poster := f.file(t, "p.png")

	_, err := f.svc.Add(context.Background(), "movies", "poster", poster, false)
	requireNotFoundKind(t, err, dataset.KindDataset)

	dir, err := f.paths.DatasetDir("movies")
	require.NoError(t, err)
	require.NoDirExists(t, dir)
}

func TestAdd_ConfirmerError(t *testing.T) {
	f := newFixture(t)
	f.confirm.err = errors.New("no tty")

	_, err := f.svc.Add(context.Background(), "movies", "poster", f.file(t, "p.png"), false)
	require.ErrorContains(t, err, "no tty")
	require.False(t, f.store.Exists("movies"))
}

func TestAdd_MissingPathOnNewDatasetWritesNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Add(context.Background(), "movies", "poster", filepath.Join(f.files, "nope.png"), false)
	requireNotFoundKind(t, err, dataset.KindPath)
	require.False(t, f.store.Exists("movies"))
}

func TestAdd_MissingPathOnExistingDataset(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), "movies")
	require.NoError(t, err)

	_, err = f.svc.Add(context.Background(), "movies", "poster", filepath.Join(f.files, "nope.png"), false)
	requireNotFoundKind(t, err, dataset.KindPath)

	_, hasData := dataset.Document(f.configJSON(t, "movies")).Data()
	require.False(t, hasData, "failed add must not persist")
}

func TestAdd_PathThroughRegularFileIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	poster := f.file(t, "p.png")
	_, err := f.svc.Add(ctx, "movies", "poster", poster, false)
	require.NoError(t, err)

	_, err = f.svc.Add(ctx, "movies", "other", filepath.Join(poster, "child"), false)
	requireNotFoundKind(t, err, dataset.KindPath)
	require.False(t, dataset.IsIO(err))

	data, _ := dataset.Document(f.configJSON(t, "movies")).Data()
	require.Equal(t, []string{"poster"}, slices.Sorted(maps.Keys(data)))
}

func TestGet_NonStringDataIsIOFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.svc.Create(ctx, "movies")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(res.ConfigPath, []byte(`{"name":"movies","data":{"poster":null,"n":42}}`), 0o600))

	_, err = f.svc.Get(ctx, "movies", "poster")
	require.True(t, dataset.IsIO(err), "got %v", err)

	_, err = f.svc.Remove(ctx, "movies", "n")
	require.True(t, dataset.IsIO(err), "got %v", err)

	raw, err := os.ReadFile(res.ConfigPath)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "<nil>")
}

func TestAdd_ExistingDatasetDoesNotPrompt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Add(ctx, "movies", "poster", f.file(t, "p.png"), false)
	require.NoError(t, err)

	res, err := f.svc.Add(ctx, "movies", "trailer", f.file(t, "t.mp4"), false)
	require.NoError(t, err)
	require.False(t, res.Created)
	require.Len(t, f.confirm.questions, 1)
}

func TestAdd_ConflictAndOverwrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := f.file(t, "one.png")
	p2 := f.file(t, "two.png")

	_, err := f.svc.Add(ctx, "movies", "poster", p1, false)
	require.NoError(t, err)

	_, err = f.svc.Add(ctx, "movies", "poster", p2, false)
	require.True(t, dataset.IsAlreadyExists(err))
	require.EqualError(t, err, `datatype "poster" already exists in dataset "movies"`)

	got, err := f.svc.Get(ctx, "movies", "poster")
	require.NoError(t, err)
	require.Equal(t, p1, got.Path)

	_, err = f.svc.Add(ctx, "movies", "poster", p2, true)
	require.NoError(t, err)

	got, err = f.svc.Get(ctx, "movies", "poster")
	require.NoError(t, err)
	require.Equal(t, p2, got.Path)
}

func TestAdd_ConflictReportedBeforeMissingPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Add(ctx, "movies", "poster", f.file(t, "p.png"), false)
	require.NoError(t, err)

	_, err = f.svc.Add(ctx, "movies", "poster", filepath.Join(f.files, "missing"), false)
	require.True(t, dataset.IsAlreadyExists(err))
}

func TestAdd_ResolvesSymlinks(t *testing.T) {
	f := newFixture(t)
	target := f.file(t, "real/poster.png")
	link := filepath.Join(f.files, "link.png")
	require.NoError(t, os.Symlink(target, link))

	res, err := f.svc.Add(context.Background(), "movies", "poster", link, false)
	require.NoError(t, err)
	require.Equal(t, target, res.Path)
}

func TestAdd_RelativePathIsMadeAbsolute(t *testing.T) {
	f := newFixture(t)
	want := f.file(t, "p.png")
	t.Chdir(f.files)

	res, err := f.svc.Add(context.Background(), "movies", "poster", "p.png", false)
	require.NoError(t, err)
	require.Equal(t, want, res.Path)
	require.True(t, filepath.IsAbs(res.Path))
}

func TestAdd_PreservesTemplateMetadata(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Add(context.Background(), "des", "catalog", f.file(t, "cat.fits"), false)
	require.NoError(t, err)

	cfg := f.configJSON(t, "des")
	require.Equal(t, "des", cfg["name"])
	require.Equal(t, "Y6", cfg["release"])
	require.Contains(t, cfg["data"], "catalog")
}

func TestAdd_InvalidInput(t *testing.T) {
	f := newFixture(t)
	p := f.file(t, "p.png")

	tests := []struct {
		name     string
		dataset  string
		datatype string
		path     string
	}{
		{name: "empty dataset", dataset: "", datatype: "poster", path: p},
		{name: "dataset with separator", dataset: "a/b", datatype: "poster", path: p},
		{name: "dot dot dataset", dataset: "..", datatype: "poster", path: p},
		{name: "blank datatype", dataset: "movies", datatype: "  ", path: p},
		{name: "empty path", dataset: "movies", datatype: "poster", path: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Add(context.Background(), tt.dataset, tt.datatype, tt.path, false)
			require.True(t, dataset.IsInvalidInput(err), "got %v", err)
		})
	}
	require.False(t, f.store.Exists("movies"))
}

func TestGet_NotFoundLadder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Get(ctx, "movies", "poster")
	requireNotFoundKind(t, err, dataset.KindDataset)
	require.EqualError(t, err, `dataset "movies" does not exist`)

	_, err = f.svc.Create(ctx, "movies")
	require.NoError(t, err)
	_, err = f.svc.Get(ctx, "movies", "poster")
	requireNotFoundKind(t, err, dataset.KindData)

	_, err = f.svc.Add(ctx, "movies", "trailer", f.file(t, "t.mp4"), false)
	require.NoError(t, err)
	_, err = f.svc.Get(ctx, "movies", "poster")
	requireNotFoundKind(t, err, dataset.KindDatatype)
	require.EqualError(t, err, `dataset "movies" has no data of type "poster"`)
}

func TestGet_DoesNotRecheckPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.file(t, "p.png")
	_, err := f.svc.Add(ctx, "movies", "poster", p, false)
	require.NoError(t, err)
	require.NoError(t, os.Remove(p))

	got, err := f.svc.Get(ctx, "movies", "poster")
	require.NoError(t, err)
	require.Equal(t, p, got.Path)
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.file(t, "p.png")
	_, err := f.svc.Add(ctx, "movies", "poster", p, false)
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, "movies", "trailer", f.file(t, "t.mp4"), false)
	require.NoError(t, err)

	res, err := f.svc.Remove(ctx, "movies", "poster")
	require.NoError(t, err)
	require.Equal(t, Result{Dataset: "movies", Datatype: "poster", Path: p}, res)

	_, err = f.svc.Get(ctx, "movies", "poster")
	requireNotFoundKind(t, err, dataset.KindDatatype)

	types, err := f.svc.List(ctx, "movies")
	require.NoError(t, err)
	require.Equal(t, []string{"trailer"}, types)

	_, err = f.svc.Remove(ctx, "movies", "poster")
	requireNotFoundKind(t, err, dataset.KindDatatype)
	_, err = f.svc.Remove(ctx, "books", "poster")
	requireNotFoundKind(t, err, dataset.KindDataset)
}

func TestList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.List(ctx, "movies")
	requireNotFoundKind(t, err, dataset.KindDataset)

	_, err = f.svc.Create(ctx, "movies")
	require.NoError(t, err)
	_, err = f.svc.List(ctx, "movies")
	requireNotFoundKind(t, err, dataset.KindData)

	for _, dt := range []string{"trailer", "poster", "audio"} {
		_, err = f.svc.Add(ctx, "movies", dt, f.file(t, dt), false)
		require.NoError(t, err)
	}
	types, err := f.svc.List(ctx, "movies")
	require.NoError(t, err)
	require.Equal(t, []string{"audio", "poster", "trailer"}, types)
}

func TestList_EmptyDataIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Add(ctx, "movies", "poster", f.file(t, "p.png"), false)
	require.NoError(t, err)
	_, err = f.svc.Remove(ctx, "movies", "poster")
	require.NoError(t, err)

	types, err := f.svc.List(ctx, "movies")
	requireNotFoundKind(t, err, dataset.KindData)
	require.Nil(t, types)
}

func TestListDatasets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	names, err := f.svc.ListDatasets(ctx)
	require.NoError(t, err)
	require.NotNil(t, names)
	require.Empty(t, names)

	for _, n := range []string{"zeta", "alpha", "movies"} {
		_, err := f.svc.Create(ctx, n)
		require.NoError(t, err)
	}
	names, err = f.svc.ListDatasets(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "movies", "zeta"}, names)
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, "movies")
	require.NoError(t, err)
	require.True(t, first.Created)
	require.Equal(t, DefaultTemplate, first.Template)
	require.Equal(t, map[string]any{"name": "movies"}, f.configJSON(t, "movies"))

	second, err := f.svc.Create(ctx, "movies")
	require.NoError(t, err)
	require.False(t, second.Created)
	require.Empty(t, second.Template, "existing dataset reports no template")
	require.Equal(t, first.ConfigPath, second.ConfigPath)
	require.Empty(t, f.confirm.questions, "explicit create never prompts")
}

func TestCreate_UsesNamedTemplateVerbatim(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Create(context.Background(), "des")
	require.NoError(t, err)
	require.Equal(t, "des", res.Template)
	require.Equal(t, map[string]any{"name": "des", "release": "Y6"}, f.configJSON(t, "des"))
}

func TestCreate_IdempotentKeepsData(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.file(t, "p.png")
	_, err := f.svc.Add(ctx, "movies", "poster", p, false)
	require.NoError(t, err)

	res, err := f.svc.Create(ctx, "movies")
	require.NoError(t, err)
	require.False(t, res.Created)

	got, err := f.svc.Get(ctx, "movies", "poster")
	require.NoError(t, err)
	require.Equal(t, p, got.Path)
}

func TestClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, dt := range []string{"poster", "audio"} {
		_, err := f.svc.Add(ctx, "movies", dt, f.file(t, dt), false)
		require.NoError(t, err)
	}

	res, err := f.svc.Clear(ctx, "movies")
	require.NoError(t, err)
	require.Equal(t, []string{"audio", "poster"}, res.Removed)

	_, err = f.svc.List(ctx, "movies")
	requireNotFoundKind(t, err, dataset.KindData)
	require.Equal(t, map[string]any{"name": "movies", "data": map[string]any{}}, f.configJSON(t, "movies"))
}

func TestClear_Declined(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Add(ctx, "movies", "poster", f.file(t, "p.png"), false)
	require.NoError(t, err)
	before := f.configJSON(t, "movies")

	f.confirm.answer = false
	_, err = f.svc.Clear(ctx, "movies")
	require.ErrorIs(t, err, dataset.ErrAborted)
	require.Equal(t, before, f.configJSON(t, "movies"))
}

func TestClear_MissingDataset(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Clear(context.Background(), "movies")
	requireNotFoundKind(t, err, dataset.KindDataset)
	require.Empty(t, f.confirm.questions)
}

func TestOverview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rows, err := f.svc.Overview(ctx)
	require.NoError(t, err)
	require.Empty(t, rows)

	p := f.file(t, "p.png")
	_, err = f.svc.Add(ctx, "movies", "poster", p, false)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, "books")
	require.NoError(t, err)

	rows, err = f.svc.Overview(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "books", rows[0].Name)
	require.Empty(t, rows[0].Datatypes())
	require.Equal(t, "movies", rows[1].Name)
	require.Equal(t, []string{"poster"}, rows[1].Datatypes())
	require.Equal(t, p, rows[1].Data["poster"])
}

func TestTemplates(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, []string{"des"}, f.svc.Templates())
}

func TestService_NilConfirmerDeclines(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.store, templates.NewEmbedded(), nil)

	_, err := svc.Add(context.Background(), "movies", "poster", f.file(t, "p.png"), false)
	requireNotFoundKind(t, err, dataset.KindDataset)
}

func TestService_Spans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	f := newFixture(t, WithTracer(tp.Tracer("test")))
	ctx := context.Background()

	_, err := f.svc.Add(ctx, "movies", "poster", f.file(t, "p.png"), false)
	require.NoError(t, err)
	_, err = f.svc.Get(ctx, "movies", "missing")
	require.Error(t, err)

	ended := rec.Ended()
	require.Len(t, ended, 2)

	add := ended[0]
	require.Equal(t, "registry.add", add.Name())
	require.Equal(t, codes.Ok, add.Status().Code)
	require.Contains(t, add.Attributes(), attribute.String(tracing.AttrDataset, "movies"))
	require.Contains(t, add.Attributes(), attribute.String(tracing.AttrDatatype, "poster"))
	require.Contains(t, add.Attributes(), attribute.Bool(tracing.AttrCreated, true))

	get := ended[1]
	require.Equal(t, "registry.get", get.Name())
	require.Equal(t, codes.Error, get.Status().Code)
}
