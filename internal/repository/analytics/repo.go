// Package analytics resolves cells and their metadata values from the
// scxa-analytics and scxa-gene2cell collections.
package analytics

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/scxa/internal/db"
	"github.com/kailas-cloud/scxa/internal/domain"
	"github.com/kailas-cloud/scxa/internal/solr/query"
	"github.com/kailas-cloud/scxa/internal/solr/schema"
	"github.com/kailas-cloud/scxa/internal/solr/stream"
)

// store is the consumer interface for expression execution (ISP).
type store interface {
	Open(ctx context.Context, expr stream.Expression) (db.TupleStream, error)
}

// Repo implements the cell and organism part lookups of the cell type service.
type Repo struct {
	store store
}

// New creates an analytics repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SearchCellIDsByGeneIDs returns the sorted, distinct IDs of the cells in
// which any of geneIDs is expressed.
func (r *Repo) SearchCellIDsByGeneIDs(ctx context.Context, geneIDs []string) ([]string, error) {
	geneIDs = NonBlank(geneIDs)
	if len(geneIDs) == 0 {
		return []string{}, nil
	}

	expr, err := CellIDsExpression(geneIDs)
	if err != nil {
		return nil, err
	}

	ids, err := db.Values(ctx, r.store, expr, schema.Gene2CellCellID.Name())
	if err != nil {
		return nil, fmt.Errorf("search cell ids by gene ids: %w", err)
	}
	return ids, nil
}

// CellIDsExpression builds the cell lookup for geneIDs.
func CellIDsExpression(geneIDs []string) (stream.Expression, error) {
	spec := query.New[schema.Gene2Cell]().
		Normalize(false).
		AddFilter(schema.Gene2CellGeneID, geneIDs...).
		Fields(schema.Gene2CellCellID).
		SortBy(schema.Gene2CellCellID, query.Asc).
		Build()
	cells, err := stream.SortedSearch(stream.Search(spec).ReturnAllDocs(), schema.Gene2CellCellID.Name())
	if err != nil {
		return nil, fmt.Errorf("build cell query: %w", err)
	}
	return stream.Unique(cells).Expr(), nil
}

// SearchOrganismPartsByCellIDs returns the sorted, distinct organism parts
// the given cells were sampled from.
func (r *Repo) SearchOrganismPartsByCellIDs(ctx context.Context, cellIDs []string) ([]string, error) {
	cellIDs = NonBlank(cellIDs)
	if len(cellIDs) == 0 {
		return []string{}, nil
	}

	expr, err := OrganismPartsExpression(cellIDs)
	if err != nil {
		return nil, err
	}

	parts, err := db.Values(ctx, r.store, expr, domain.OrganismPart)
	if err != nil {
		return nil, fmt.Errorf("search organism parts by cell ids: %w", err)
	}
	return parts, nil
}

// OrganismPartsExpression builds the organism part lookup for cellIDs.
func OrganismPartsExpression(cellIDs []string) (stream.Expression, error) {
	scope := Scope{CellIDs: cellIDs}
	keys, err := Cells(scope)
	if err != nil {
		return nil, err
	}
	values, err := MetadataValues(scope, domain.OrganismPart, domain.OrganismPart)
	if err != nil {
		return nil, err
	}
	joined, err := stream.InnerJoin(keys, values)
	if err != nil {
		return nil, fmt.Errorf("join organism parts: %w", err)
	}
	return DistinctValues(joined.Expr(), domain.OrganismPart), nil
}

// Scope restricts analytics documents to an experiment and/or a set of
// cells. Zero fields do not restrict.
type Scope struct {
	Experiment string
	CellIDs    []string
	// AncestorLabels keeps cells annotated with any of these ontology terms
	// or their descendants. Ancestor labels include the annotation's own.
	AncestorLabels []string
}

func (s Scope) apply(b query.Builder[schema.Analytics]) query.Builder[schema.Analytics] {
	b = b.Normalize(false)
	if s.Experiment != "" {
		b = b.AddFilter(schema.AnalyticsExperimentAccession, s.Experiment)
	}
	if len(s.CellIDs) > 0 {
		b = b.AddFilter(schema.AnalyticsCellID, s.CellIDs...)
	}
	if len(s.AncestorLabels) > 0 {
		b = b.AddFilter(schema.AnalyticsOntologyAncestorsLabels, s.AncestorLabels...)
	}
	return b
}

// Cells returns the distinct cell IDs in scope, sorted on cell_id. With
// AncestorLabels set, only organism part annotations are considered.
func Cells(scope Scope) (stream.Sorted, error) {
	b := scope.apply(query.New[schema.Analytics]())
	if len(scope.AncestorLabels) > 0 {
		b = b.AddFilter(schema.AnalyticsCharacteristicName, domain.OrganismPart)
	}
	spec := b.
		Fields(schema.AnalyticsCellID).
		SortBy(schema.AnalyticsCellID, query.Asc).
		Build()

	cells, err := stream.SortedSearch(stream.Search(spec).ReturnAllDocs(), schema.AnalyticsCellID.Name())
	if err != nil {
		return stream.Sorted{}, fmt.Errorf("build cell query: %w", err)
	}
	return stream.Unique(cells), nil
}

// MetadataValues returns one tuple per cell in scope holding the cell's
// value of metadata field under target, sorted on cell_id. The factor value
// is preferred over the characteristic value.
func MetadataValues(scope Scope, field, target string) (stream.Sorted, error) {
	spec := scope.apply(query.New[schema.Analytics]()).
		AddFilter(schema.AnalyticsCharacteristicName, field).
		Fields(schema.AnalyticsCellID, schema.AnalyticsFactorValue, schema.AnalyticsCharacteristicValue).
		SortBy(schema.AnalyticsCellID, query.Asc).
		Build()

	docs, err := stream.SortedSearch(stream.Search(spec).ReturnAllDocs(), schema.AnalyticsCellID.Name())
	if err != nil {
		return stream.Sorted{}, fmt.Errorf("build %s query: %w", field, err)
	}
	values, err := stream.SelectSorted(stream.Unique(docs),
		stream.Keep(schema.AnalyticsCellID.Name()),
		stream.As(schema.AnalyticsFactorValue.Name(), target),
		stream.As(schema.AnalyticsCharacteristicValue.Name(), target),
	)
	if err != nil {
		return stream.Sorted{}, fmt.Errorf("project %s: %w", field, err)
	}
	return values, nil
}

// DistinctValues expands the multi-valued field of e and returns its
// distinct values sorted ascending, one tuple each.
func DistinctValues(e stream.Expression, field string) stream.Expression {
	expanded := stream.CartesianProduct(e, field)
	sorted := stream.SortBy(stream.Select(expanded, stream.Keep(field)), field)
	return stream.Unique(sorted).Expr()
}

// NonBlank returns the trimmed, non-empty elements of ids.
func NonBlank(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
