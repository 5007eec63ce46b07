// Package cache administers the result cache.
package cache

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/scxa/internal/domain"
)

// Invalidator drops cached results scoped to an experiment.
type Invalidator interface {
	InvalidateExperiment(ctx context.Context, accession string) (int, error)
}

// Service invalidates cached results after an experiment is reindexed.
type Service struct {
	cache Invalidator
}

// New creates a cache service. cache can be nil when caching is disabled.
func New(cache Invalidator) *Service {
	return &Service{cache: cache}
}

// InvalidateExperiment drops the cached results of experiment and returns
// how many entries were removed.
func (s *Service) InvalidateExperiment(ctx context.Context, experiment string) (int, error) {
	if err := domain.ValidateAccession(experiment); err != nil {
		return 0, err
	}
	if s.cache == nil {
		return 0, nil
	}
	n, err := s.cache.InvalidateExperiment(ctx, experiment)
	if err != nil {
		return n, fmt.Errorf("invalidate cache: %w", err)
	}
	return n, nil
}
