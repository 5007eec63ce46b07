// Package backend opens the configured search backend.
package backend

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/scxa/internal/config"
	"github.com/kailas-cloud/scxa/internal/db"
	"github.com/kailas-cloud/scxa/internal/db/memory"
	"github.com/kailas-cloud/scxa/internal/db/solr"
)

// Open creates the search store selected by cfg.Driver and waits until it
// answers, up to cfg.ReadinessTimeout seconds.
func Open(ctx context.Context, cfg config.SearchConfig, logger *zap.Logger) (db.SearchStore, error) {
	switch cfg.Driver {
	case config.DriverSolr:
		store, err := solr.NewStore(solr.Config{
			BaseURL:  cfg.URL,
			Timeout:  time.Duration(cfg.TimeoutSec) * time.Second,
			PageSize: cfg.PageSize,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create solr store: %w", err)
		}
		if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil

	case config.DriverMemory:
		store := memory.New(memory.WithLogger(logger))
		if err := store.LoadFixtureFile(cfg.Fixture); err != nil {
			return nil, fmt.Errorf("load fixture: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown search driver %q", cfg.Driver)
	}
}
