package genesearch

import (
	"context"

	"github.com/kailas-cloud/scxa/internal/domain/gene"
	"github.com/kailas-cloud/scxa/internal/repository/resultcache"
)

// GeneIDRepository resolves search terms to expressed gene identifiers.
type GeneIDRepository interface {
	SearchGeneIDs(ctx context.Context, term string, category gene.Category, species string) ([]string, error)
}

// SpeciesRepository resolves search terms to the species of expressed genes.
type SpeciesRepository interface {
	SearchSpecies(ctx context.Context, term string, category gene.Category) ([]string, error)
}

// Cache memoizes string-set results by business key.
type Cache interface {
	Strings(ctx context.Context, key resultcache.Key, load func(context.Context) ([]string, error)) ([]string, error)
}
