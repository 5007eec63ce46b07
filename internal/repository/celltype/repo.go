// Package celltype resolves inferred cell types from the scxa-analytics
// collection.
package celltype

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/scxa/internal/db"
	"github.com/kailas-cloud/scxa/internal/domain"
	"github.com/kailas-cloud/scxa/internal/repository/analytics"
	"github.com/kailas-cloud/scxa/internal/solr/stream"
)

// store is the consumer interface for expression execution (ISP).
type store interface {
	Open(ctx context.Context, expr stream.Expression) (db.TupleStream, error)
}

// Repo implements the cell type lookups of the cell type service.
type Repo struct {
	store store
}

// New creates a cell type repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SearchCellTypesByCellIDs returns the sorted, distinct inferred cell types
// of the given cells.
func (r *Repo) SearchCellTypesByCellIDs(ctx context.Context, cellIDs []string) ([]string, error) {
	cellIDs = analytics.NonBlank(cellIDs)
	if len(cellIDs) == 0 {
		return []string{}, nil
	}

	expr, err := ByCellIDsExpression(cellIDs)
	if err != nil {
		return nil, err
	}

	types, err := db.Values(ctx, r.store, expr, domain.InferredCellType)
	if err != nil {
		return nil, fmt.Errorf("search cell types by cell ids: %w", err)
	}
	return types, nil
}

// SearchCellTypesByOrganismParts returns the sorted, distinct inferred cell
// types of the cells of experiment sampled from any of organismParts or from
// a part they contain (e.g. islet of Langerhans for pancreas). An empty
// experiment searches every experiment.
func (r *Repo) SearchCellTypesByOrganismParts(
	ctx context.Context, experiment string, organismParts []string,
) ([]string, error) {
	organismParts = analytics.NonBlank(organismParts)
	if len(organismParts) == 0 {
		return []string{}, nil
	}

	expr, err := ByOrganismPartsExpression(experiment, organismParts)
	if err != nil {
		return nil, err
	}

	types, err := db.Values(ctx, r.store, expr, domain.InferredCellType)
	if err != nil {
		return nil, fmt.Errorf("search cell types by organism parts %v: %w", organismParts, err)
	}
	return types, nil
}

// ByCellIDsExpression builds the cell type lookup for cellIDs.
func ByCellIDsExpression(cellIDs []string) (stream.Expression, error) {
	values, err := analytics.MetadataValues(
		analytics.Scope{CellIDs: cellIDs}, domain.InferredCellType, domain.InferredCellType,
	)
	if err != nil {
		return nil, err
	}
	return analytics.DistinctValues(values.Expr(), domain.InferredCellType), nil
}

// ByOrganismPartsExpression builds the cell type lookup for the cells of
// experiment sampled from organismParts or a part they contain.
func ByOrganismPartsExpression(experiment string, organismParts []string) (stream.Expression, error) {
	cells, err := analytics.Cells(analytics.Scope{Experiment: experiment, AncestorLabels: organismParts})
	if err != nil {
		return nil, err
	}
	values, err := analytics.MetadataValues(
		analytics.Scope{Experiment: experiment}, domain.InferredCellType, domain.InferredCellType,
	)
	if err != nil {
		return nil, err
	}
	joined, err := stream.InnerJoin(cells, values)
	if err != nil {
		return nil, fmt.Errorf("join cell types: %w", err)
	}
	return analytics.DistinctValues(joined.Expr(), domain.InferredCellType), nil
}
