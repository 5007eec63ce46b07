package celltype

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/scxa/internal/domain"
	"github.com/kailas-cloud/scxa/internal/logger"
	"github.com/kailas-cloud/scxa/internal/repository/resultcache"

	"go.uber.org/zap"
)

// Service answers cell type and organism part questions for genes and
// experiments.
type Service struct {
	analytics AnalyticsRepository
	cellTypes CellTypeRepository
	cache     Cache
}

// New creates a cell type service. cache can be nil.
func New(analytics AnalyticsRepository, cellTypes CellTypeRepository, cache Cache) *Service {
	if cache == nil {
		cache = noCache{}
	}
	return &Service{analytics: analytics, cellTypes: cellTypes, cache: cache}
}

// CellTypesByGeneIDs returns the inferred cell types of the cells in which
// any of geneIDs is expressed.
func (s *Service) CellTypesByGeneIDs(ctx context.Context, geneIDs []string) ([]string, error) {
	key := resultcache.Key{Kind: "cell-types-by-genes", Set: geneIDs}
	types, err := s.cache.Strings(ctx, key, func(ctx context.Context) ([]string, error) {
		cellIDs, err := s.analytics.SearchCellIDsByGeneIDs(ctx, geneIDs)
		if err != nil {
			return nil, err
		}
		logger.FromContext(ctx).Debug("Resolved cells for genes",
			zap.Int("genes", len(geneIDs)), zap.Int("cells", len(cellIDs)))
		return s.cellTypes.SearchCellTypesByCellIDs(ctx, cellIDs)
	})
	if err != nil {
		return nil, fmt.Errorf("cell types by genes: %w", err)
	}
	return types, nil
}

// OrganismPartsByGeneIDs returns the organism parts of the cells in which
// any of geneIDs is expressed.
func (s *Service) OrganismPartsByGeneIDs(ctx context.Context, geneIDs []string) ([]string, error) {
	key := resultcache.Key{Kind: "organism-parts-by-genes", Set: geneIDs}
	parts, err := s.cache.Strings(ctx, key, func(ctx context.Context) ([]string, error) {
		cellIDs, err := s.analytics.SearchCellIDsByGeneIDs(ctx, geneIDs)
		if err != nil {
			return nil, err
		}
		return s.analytics.SearchOrganismPartsByCellIDs(ctx, cellIDs)
	})
	if err != nil {
		return nil, fmt.Errorf("organism parts by genes: %w", err)
	}
	return parts, nil
}

// CellTypesByOrganismParts returns the inferred cell types of experiment's
// cells sampled from any of organismParts or a part they contain. An empty
// experiment searches every experiment.
func (s *Service) CellTypesByOrganismParts(
	ctx context.Context, experiment string, organismParts []string,
) ([]string, error) {
	if experiment != "" {
		if err := domain.ValidateAccession(experiment); err != nil {
			return nil, err
		}
	}

	key := resultcache.Key{Kind: "cell-types-by-parts", Experiment: experiment, Set: organismParts}
	types, err := s.cache.Strings(ctx, key, func(ctx context.Context) ([]string, error) {
		return s.cellTypes.SearchCellTypesByOrganismParts(ctx, experiment, organismParts)
	})
	if err != nil {
		return nil, fmt.Errorf("cell types by organism parts: %w", err)
	}
	return types, nil
}

type noCache struct{}

func (noCache) Strings(
	ctx context.Context, _ resultcache.Key, load func(context.Context) ([]string, error),
) ([]string, error) {
	return load(ctx)
}
