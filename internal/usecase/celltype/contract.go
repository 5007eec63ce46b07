package celltype

import (
	"context"

	"github.com/kailas-cloud/scxa/internal/repository/resultcache"
)

// AnalyticsRepository resolves genes to cells and cells to organism parts.
type AnalyticsRepository interface {
	SearchCellIDsByGeneIDs(ctx context.Context, geneIDs []string) ([]string, error)
	SearchOrganismPartsByCellIDs(ctx context.Context, cellIDs []string) ([]string, error)
}

// CellTypeRepository resolves inferred cell types.
type CellTypeRepository interface {
	SearchCellTypesByCellIDs(ctx context.Context, cellIDs []string) ([]string, error)
	SearchCellTypesByOrganismParts(ctx context.Context, experiment string, organismParts []string) ([]string, error)
}

// Cache memoizes string-set results by business key.
type Cache interface {
	Strings(ctx context.Context, key resultcache.Key, load func(context.Context) ([]string, error)) ([]string, error)
}
