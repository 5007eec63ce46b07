// Package cellmetadata reads per-cell metadata values from the
// scxa-analytics collection.
package cellmetadata

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/scxa/internal/db"
	"github.com/kailas-cloud/scxa/internal/domain"
	"github.com/kailas-cloud/scxa/internal/repository/analytics"
	"github.com/kailas-cloud/scxa/internal/solr/query"
	"github.com/kailas-cloud/scxa/internal/solr/schema"
	"github.com/kailas-cloud/scxa/internal/solr/stream"
)

// valueField is the common name factor and characteristic values are read under.
const valueField = "value"

// store is the consumer interface for expression execution (ISP).
type store interface {
	Open(ctx context.Context, expr stream.Expression) (db.TupleStream, error)
}

// Repo implements cell metadata lookups.
type Repo struct {
	store store
}

// New creates a cell metadata repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// GetMetadataValueForCellID returns the value of metadata field for a cell
// of experiment, or domain.NotAvailable when none is recorded.
//
// Factor values are multi-valued in the index but hold a single value by
// convention; only the first element is read.
func (r *Repo) GetMetadataValueForCellID(ctx context.Context, experiment, field, cellID string) (string, error) {
	spec := query.New[schema.Analytics]().
		Normalize(false).
		AddFilter(schema.AnalyticsExperimentAccession, experiment).
		AddFilter(schema.AnalyticsCellID, cellID).
		AddFilter(schema.AnalyticsCharacteristicName, field).
		Fields(schema.AnalyticsFactorValue, schema.AnalyticsCharacteristicValue).
		Rows(1).
		Build()
	expr := stream.Select(stream.Search(spec),
		stream.As(schema.AnalyticsFactorValue.Name(), valueField),
		stream.As(schema.AnalyticsCharacteristicValue.Name(), valueField),
	)

	value := domain.NotAvailable
	err := db.Each(ctx, r.store, expr, func(t stream.Tuple) error {
		if v := t.First(valueField); v != "" {
			value = v
		}
		return db.ErrStop
	})
	if err != nil {
		return "", fmt.Errorf("get %s of cell %s in %s: %w", field, cellID, experiment, err)
	}
	return value, nil
}

// GetMetadataValuesForCellIDs returns the value of metadata field for each
// of cellIDs. Cells without a recorded value map to domain.NotAvailable.
func (r *Repo) GetMetadataValuesForCellIDs(
	ctx context.Context, experiment, field string, cellIDs []string,
) (map[string]string, error) {
	cellIDs = analytics.NonBlank(cellIDs)
	out := make(map[string]string, len(cellIDs))
	if len(cellIDs) == 0 {
		return out, nil
	}

	values, err := analytics.MetadataValues(
		analytics.Scope{Experiment: experiment, CellIDs: cellIDs}, field, valueField,
	)
	if err != nil {
		return nil, err
	}

	cellField := schema.AnalyticsCellID.Name()
	err = db.Each(ctx, r.store, values.Expr(), func(t stream.Tuple) error {
		if v := t.First(valueField); v != "" {
			out[t.First(cellField)] = v
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get %s of %d cells in %s: %w", field, len(cellIDs), experiment, err)
	}

	for _, id := range cellIDs {
		if _, ok := out[id]; !ok {
			out[id] = domain.NotAvailable
		}
	}
	return out, nil
}

// SearchMetadataFieldNames returns the sorted metadata field names recorded
// for experiment.
func (r *Repo) SearchMetadataFieldNames(ctx context.Context, experiment string) ([]string, error) {
	spec := query.New[schema.Analytics]().
		Normalize(false).
		AddFilter(schema.AnalyticsExperimentAccession, experiment).
		Fields(schema.AnalyticsCharacteristicName).
		SortBy(schema.AnalyticsCharacteristicName, query.Asc).
		Build()
	names, err := stream.SortedSearch(stream.Search(spec).ReturnAllDocs(), schema.AnalyticsCharacteristicName.Name())
	if err != nil {
		return nil, fmt.Errorf("build field name query: %w", err)
	}

	fields, err := db.Values(ctx, r.store, stream.Unique(names).Expr(), schema.AnalyticsCharacteristicName.Name())
	if err != nil {
		return nil, fmt.Errorf("search metadata fields of %s: %w", experiment, err)
	}
	return fields, nil
}
