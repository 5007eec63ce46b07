package cellmetadata

import (
	"context"

	"github.com/kailas-cloud/scxa/internal/repository/resultcache"
)

// Repository reads per-cell metadata values.
type Repository interface {
	GetMetadataValueForCellID(ctx context.Context, experiment, field, cellID string) (string, error)
	SearchMetadataFieldNames(ctx context.Context, experiment string) ([]string, error)
}

// FieldsResolver returns the metadata fields of interest of an experiment.
type FieldsResolver interface {
	FieldsOfInterest(ctx context.Context, experiment string) ([]string, error)
}

// Cache memoizes results by business key.
type Cache interface {
	Strings(ctx context.Context, key resultcache.Key, load func(context.Context) ([]string, error)) ([]string, error)
	StringMap(
		ctx context.Context, key resultcache.Key, load func(context.Context) (map[string]string, error),
	) (map[string]string, error)
}
