package scxa

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	zapobserver "go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/scxa/internal/db/memory"
	"github.com/kailas-cloud/scxa/internal/db/memory/memorytest"
	dbRedis "github.com/kailas-cloud/scxa/internal/db/redis"
	cellmetadatauc "github.com/kailas-cloud/scxa/internal/usecase/cellmetadata"
	healthuc "github.com/kailas-cloud/scxa/internal/usecase/health"
)

func newMemoryClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithDataset(memorytest.Fixture())}, opts...)
	c, err := New(context.Background(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

// --- New ---

func TestNew_NoBackend(t *testing.T) {
	if _, err := New(context.Background()); err == nil {
		t.Fatal("expected error when no backend configured")
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := createStore(context.Background(), &clientConfig{driver: "unknown"})
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestNew_InvalidSolrURL(t *testing.T) {
	if _, err := New(context.Background(), WithSolr("not a url")); err == nil {
		t.Fatal("expected error for invalid solr url")
	}
}

func TestNew_InvalidDataset(t *testing.T) {
	if _, err := New(context.Background(), WithDataset([]byte("collections: ["))); err == nil {
		t.Fatal("expected error for malformed dataset")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}
	reg := prometheus.NewRegistry()
	for _, o := range []Option{
		WithSolr("http://solr:8983"),
		WithTimeout(5 * time.Second),
		WithPageSize(200),
		WithRedisCache("redis:6379", "secret", time.Minute),
		WithFieldsOfInterest(map[string][]string{"*": {"sex"}}),
		WithMetadataConcurrency(2),
		WithPrometheus(reg),
	} {
		o.apply(cfg)
	}

	if cfg.driver != driverSolr || cfg.solrURL != "http://solr:8983" {
		t.Errorf("solr = %q %q", cfg.driver, cfg.solrURL)
	}
	if cfg.timeout != 5*time.Second || cfg.pageSize != 200 {
		t.Errorf("timeout = %v, page size = %d", cfg.timeout, cfg.pageSize)
	}
	if diff := cmp.Diff([]string{"redis:6379"}, cfg.cacheAddrs); diff != "" {
		t.Errorf("cache addrs (-want +got):\n%s", diff)
	}
	if cfg.cachePassword != "secret" || cfg.cacheTTL != time.Minute {
		t.Errorf("cache = %q %v", cfg.cachePassword, cfg.cacheTTL)
	}
	if cfg.concurrency != 2 || cfg.metricsReg != reg {
		t.Error("concurrency or registerer not applied")
	}

	WithDataset([]byte("x")).apply(cfg)
	if cfg.driver != driverMemory {
		t.Errorf("expected the last backend option to win, got %q", cfg.driver)
	}
}

// --- Lookups against the in-memory dataset ---

func TestGenes(t *testing.T) {
	c := newMemoryClient(t)
	ctx := context.Background()

	ids, err := c.Genes().IDs(ctx, "INS", CategorySymbol, "Homo sapiens")
	if err != nil {
		t.Fatalf("IDs: %v", err)
	}
	if diff := cmp.Diff([]string{"ENSG00000254647"}, ids); diff != "" {
		t.Errorf("gene ids (-want +got):\n%s", diff)
	}

	species, err := c.Genes().Species(ctx, "INS", CategoryAny)
	if err != nil {
		t.Fatalf("Species: %v", err)
	}
	if diff := cmp.Diff([]string{"homo_sapiens"}, species); diff != "" {
		t.Errorf("species (-want +got):\n%s", diff)
	}
}

func TestGenes_Validation(t *testing.T) {
	c := newMemoryClient(t)

	if _, err := c.Genes().IDs(context.Background(), " ", "", ""); !errors.Is(err, ErrInvalidTerm) {
		t.Errorf("expected ErrInvalidTerm, got %v", err)
	}
	if _, err := c.Genes().Species(context.Background(), "INS", "colour"); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestGenes_PassesArguments(t *testing.T) {
	var gotTerm, gotCategory, gotSpecies string
	c := &Client{geneSvc: &mockGeneUC{
		resolveFn: func(_ context.Context, term, category, species string) ([]string, error) {
			gotTerm, gotCategory, gotSpecies = term, category, species
			return []string{"ENSG00000254647"}, nil
		},
	}}

	ids, err := c.Genes().IDs(context.Background(), "INS", CategorySymbol, "Homo sapiens")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotTerm != "INS" || gotCategory != "symbol" || gotSpecies != "Homo sapiens" {
		t.Errorf("unexpected args %q %q %q", gotTerm, gotCategory, gotSpecies)
	}
	if len(ids) != 1 {
		t.Errorf("ids = %v", ids)
	}
}

func TestCellTypes(t *testing.T) {
	c := newMemoryClient(t)
	ctx := context.Background()

	types, err := c.CellTypes().ByGeneIDs(ctx, []string{"ENSG00000254647", "ENSG00000115263"})
	if err != nil {
		t.Fatalf("ByGeneIDs: %v", err)
	}
	if diff := cmp.Diff([]string{"pancreatic A cell", "type B pancreatic cell"}, types); diff != "" {
		t.Errorf("cell types (-want +got):\n%s", diff)
	}

	parts, err := c.CellTypes().OrganismPartsByGeneIDs(ctx, []string{"ENSG00000254647"})
	if err != nil {
		t.Fatalf("OrganismPartsByGeneIDs: %v", err)
	}
	if diff := cmp.Diff([]string{"islet of Langerhans", "pancreas"}, parts); diff != "" {
		t.Errorf("organism parts (-want +got):\n%s", diff)
	}

	byPart, err := c.CellTypes().ByOrganismParts(ctx, "E-MTAB-5061", []string{"pancreas"})
	if err != nil {
		t.Fatalf("ByOrganismParts: %v", err)
	}
	want := []string{"acinar cell", "pancreatic A cell", "type B pancreatic cell"}
	if diff := cmp.Diff(want, byPart); diff != "" {
		t.Errorf("cell types by part (-want +got):\n%s", diff)
	}
}

func TestMetadata(t *testing.T) {
	c := newMemoryClient(t, WithFieldsOfInterest(map[string][]string{"*": {"organism_part", "sex"}}))

	fields, err := c.Metadata().ForCell(context.Background(), "E-MTAB-5061", "c4")
	if err != nil {
		t.Fatalf("ForCell: %v", err)
	}
	want := []MetadataField{
		{Name: "inferred_cell_type", Value: NotAvailable},
		{Name: "organism_part", Value: "pancreas"},
		{Name: "sex", Value: "male"},
	}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Errorf("fields (-want +got):\n%s", diff)
	}

	names, err := c.Metadata().FieldNames(context.Background(), "E-MTAB-5061")
	if err != nil {
		t.Fatalf("FieldNames: %v", err)
	}
	if diff := cmp.Diff([]string{"inferred_cell_type", "organism_part", "sex"}, names); diff != "" {
		t.Errorf("field names (-want +got):\n%s", diff)
	}
}

func TestMetadata_Error(t *testing.T) {
	c := &Client{metadataSvc: &mockMetadataUC{
		forCellFn: func(context.Context, string, string) ([]cellmetadatauc.Field, error) {
			return nil, ErrBackendFault
		},
	}}

	fields, err := c.Metadata().ForCell(context.Background(), "E-MTAB-5061", "c1")
	if !errors.Is(err, ErrIO) {
		t.Errorf("expected ErrIO, got %v", err)
	}
	if fields != nil {
		t.Errorf("expected no fields, got %v", fields)
	}
}

// --- Health ---

func TestHealth(t *testing.T) {
	c := newMemoryClient(t)

	got := c.Health(context.Background())
	want := HealthStatus{Status: "ok", Checks: map[string]string{"search": "ok"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("health (-want +got):\n%s", diff)
	}
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestHealth_Degraded(t *testing.T) {
	c := &Client{healthSvc: &mockHealthUC{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{"search": healthuc.CheckOK, "cache": healthuc.CheckError},
	}}}

	got := c.Health(context.Background())
	if got.Status != "degraded" || got.Checks["cache"] != "error" {
		t.Errorf("unexpected status %+v", got)
	}
}

// --- Observability ---

func TestObserver_MetricsAndLogs(t *testing.T) {
	reg := prometheus.NewRegistry()
	core, logs := zapobserver.New(zapcore.DebugLevel)
	c := newMemoryClient(t, WithPrometheus(reg), WithLogger(zap.New(core)))
	ctx := context.Background()

	if _, err := c.Genes().IDs(ctx, "INS", "", ""); err != nil {
		t.Fatalf("IDs: %v", err)
	}
	if _, err := c.Genes().IDs(ctx, "", "", ""); err == nil {
		t.Fatal("expected validation error")
	}

	ops := c.obs.metrics.operations
	if n := testutil.ToFloat64(ops.WithLabelValues("gene_ids", "ok")); n != 1 {
		t.Errorf("ok count = %v, want 1", n)
	}
	if n := testutil.ToFloat64(ops.WithLabelValues("gene_ids", "error")); n != 1 {
		t.Errorf("error count = %v, want 1", n)
	}
	if n := logs.FilterMessage("operation failed").FilterField(zap.String("op", "gene_ids")).Len(); n != 1 {
		t.Errorf("expected one failure log, got %d", n)
	}
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("first observer: %v", err)
	}
	second, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("second observer: %v", err)
	}
	if first.metrics.operations != second.metrics.operations {
		t.Error("expected the registered counter to be reused")
	}
}

func TestObserver_Nil(_ *testing.T) {
	var o *observer
	o.observe("noop", time.Now(), nil)
}

// --- Result cache ---

func TestCachedLookups(t *testing.T) {
	ctrl := gomock.NewController(t)
	rc := mock.NewClient(ctrl)

	entries := map[string]string{}
	rc.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cmd rueidis.Completed) rueidis.RedisResult {
			args := cmd.Commands()
			switch args[0] {
			case "GET":
				if v, ok := entries[args[1]]; ok {
					return mock.Result(mock.RedisString(v))
				}
				return mock.Result(mock.RedisNil())
			case "SET":
				entries[args[1]] = args[2]
				return mock.Result(mock.RedisString("OK"))
			case "PING":
				return mock.Result(mock.RedisString("PONG"))
			}
			t.Fatalf("unexpected command %v", args)
			return mock.Result(mock.RedisNil())
		}).AnyTimes()

	store := memory.New()
	if err := store.LoadFixture(bytes.NewReader(memorytest.Fixture())); err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := &clientConfig{cacheTTL: time.Minute}
	c := wireClient(store, dbRedis.NewStoreForTest(rc), cfg, nil)

	for range 2 {
		got, err := c.Genes().Species(context.Background(), "INS", "")
		if err != nil {
			t.Fatalf("Species: %v", err)
		}
		if diff := cmp.Diff([]string{"homo_sapiens"}, got); diff != "" {
			t.Errorf("species (-want +got):\n%s", diff)
		}
	}
	if n := store.Requests(); n != 1 {
		t.Errorf("expected one backend request, got %d", n)
	}
	if len(entries) != 1 {
		t.Errorf("expected one cached entry, got %d", len(entries))
	}
	if h := c.Health(context.Background()); h.Checks["cache"] != "ok" {
		t.Errorf("expected cache check, got %+v", h)
	}
}
