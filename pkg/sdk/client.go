package scxa

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/scxa/internal/db"
	"github.com/kailas-cloud/scxa/internal/db/memory"
	dbRedis "github.com/kailas-cloud/scxa/internal/db/redis"
	"github.com/kailas-cloud/scxa/internal/db/solr"
	"github.com/kailas-cloud/scxa/internal/repository/analytics"
	cellmetadatarepo "github.com/kailas-cloud/scxa/internal/repository/cellmetadata"
	celltyperepo "github.com/kailas-cloud/scxa/internal/repository/celltype"
	"github.com/kailas-cloud/scxa/internal/repository/geneid"
	"github.com/kailas-cloud/scxa/internal/repository/resultcache"
	"github.com/kailas-cloud/scxa/internal/repository/species"
	cellmetadatauc "github.com/kailas-cloud/scxa/internal/usecase/cellmetadata"
	celltypeuc "github.com/kailas-cloud/scxa/internal/usecase/celltype"
	genesearchuc "github.com/kailas-cloud/scxa/internal/usecase/genesearch"
	healthuc "github.com/kailas-cloud/scxa/internal/usecase/health"
)

const (
	driverSolr   = "solr"
	driverMemory = "memory"

	defaultReadinessTimeout = 10 * time.Second
)

// Internal interfaces for substitution in tests.
type geneUseCase interface {
	ResolveGeneIDs(ctx context.Context, term, category, species string) ([]string, error)
	SearchSpecies(ctx context.Context, term, category string) ([]string, error)
}

type cellTypeUseCase interface {
	CellTypesByGeneIDs(ctx context.Context, geneIDs []string) ([]string, error)
	OrganismPartsByGeneIDs(ctx context.Context, geneIDs []string) ([]string, error)
	CellTypesByOrganismParts(ctx context.Context, experiment string, organismParts []string) ([]string, error)
}

type metadataUseCase interface {
	MetadataForCell(ctx context.Context, experiment, cellID string) ([]cellmetadatauc.Field, error)
	FieldNames(ctx context.Context, experiment string) ([]string, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the scxa SDK entry point.
type Client struct {
	store       db.SearchStore
	cacheStore  *dbRedis.Store
	geneSvc     geneUseCase
	cellTypeSvc cellTypeUseCase
	metadataSvc metadataUseCase
	healthSvc   healthUseCase
	obs         *observer
}

// New creates a Client and connects to the search backend.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.driver == "" {
		return nil, errors.New("scxa: search backend required (use WithSolr or WithDataset)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var kv *dbRedis.Store
	if len(cfg.cacheAddrs) > 0 {
		kv, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.cacheAddrs,
			Password: cfg.cachePassword,
		})
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("scxa: create cache store: %w", err)
		}
	}

	return wireClient(store, kv, cfg, obs), nil
}

func createStore(ctx context.Context, cfg *clientConfig) (db.SearchStore, error) {
	switch cfg.driver {
	case driverSolr:
		s, err := solr.NewStore(solr.Config{
			BaseURL:  cfg.solrURL,
			Timeout:  cfg.timeout,
			PageSize: cfg.pageSize,
			Logger:   cfg.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("scxa: create solr store: %w", err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("scxa: search backend not ready: %w", err)
		}
		return s, nil
	case driverMemory:
		s := memory.New(memory.WithLogger(cfg.logger))
		if err := s.LoadFixture(bytes.NewReader(cfg.fixture)); err != nil {
			return nil, fmt.Errorf("scxa: load dataset: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("scxa: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.SearchStore, kv *dbRedis.Store, cfg *clientConfig, obs *observer) *Client {
	// Nil interfaces, not typed nil pointers, when caching is off.
	var (
		genesCache  genesearchuc.Cache
		typesCache  celltypeuc.Cache
		metaOpts    []cellmetadatauc.Option
		cachePinger healthuc.Pinger
	)
	if kv != nil {
		cache := resultcache.New(kv, cfg.cacheTTL, nil, cfg.logger)
		genesCache, typesCache, cachePinger = cache, cache, kv
		metaOpts = append(metaOpts, cellmetadatauc.WithCache(cache))
	}
	if cfg.concurrency > 0 {
		metaOpts = append(metaOpts, cellmetadatauc.WithConcurrency(cfg.concurrency))
	}

	metadataSvc := cellmetadatauc.New(cellmetadatarepo.New(store),
		cellmetadatauc.StaticFields(cfg.fieldsOfInterest), metaOpts...)

	return &Client{
		store:       store,
		cacheStore:  kv,
		geneSvc:     genesearchuc.New(geneid.New(store), species.New(store), genesCache),
		cellTypeSvc: celltypeuc.New(analytics.New(store), celltyperepo.New(store), typesCache),
		metadataSvc: metadataSvc,
		healthSvc:   healthuc.New(store, cachePinger),
		obs:         obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.cacheStore != nil {
		c.cacheStore.Close()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks search backend connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Genes returns the gene and species lookup service.
func (c *Client) Genes() *GeneService {
	return &GeneService{svc: c.geneSvc, obs: c.obs}
}

// CellTypes returns the cell type and organism part lookup service.
func (c *Client) CellTypes() *CellTypeService {
	return &CellTypeService{svc: c.cellTypeSvc, obs: c.obs}
}

// Metadata returns the cell metadata service.
func (c *Client) Metadata() *MetadataService {
	return &MetadataService{svc: c.metadataSvc, obs: c.obs}
}

