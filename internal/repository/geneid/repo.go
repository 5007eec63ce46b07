// Package geneid resolves gene search terms to gene identifiers using the
// bioentities and scxa-gene2experiment collections.
package geneid

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/scxa/internal/db"
	"github.com/kailas-cloud/scxa/internal/domain/gene"
	"github.com/kailas-cloud/scxa/internal/solr/query"
	"github.com/kailas-cloud/scxa/internal/solr/schema"
	"github.com/kailas-cloud/scxa/internal/solr/stream"
)

// store is the consumer interface for expression execution (ISP).
type store interface {
	Open(ctx context.Context, expr stream.Expression) (db.TupleStream, error)
}

// Repo implements gene ID resolution.
type Repo struct {
	store store
}

// New creates a gene ID repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SearchGeneIDs returns the sorted identifiers of genes having a property
// of category matching term that are expressed in at least one experiment.
// An empty species matches every species.
func (r *Repo) SearchGeneIDs(
	ctx context.Context, term string, category gene.Category, species string,
) ([]string, error) {
	if strings.TrimSpace(term) == "" {
		return []string{}, nil
	}

	expr, err := Expression(term, category, species)
	if err != nil {
		return nil, err
	}

	ids, err := db.Values(ctx, r.store, expr, schema.BioentityIdentifier.Name())
	if err != nil {
		return nil, fmt.Errorf("search gene ids for %q: %w", term, err)
	}
	return ids, nil
}

// Expression builds the gene ID lookup for term.
func Expression(term string, category gene.Category, species string) (stream.Expression, error) {
	genes, err := ExpressedGenes(term, category, species)
	if err != nil {
		return nil, err
	}
	key := schema.BioentityIdentifier.Name()
	return stream.Select(genes.Expr(), stream.Keep(key)), nil
}

// ExpressedGenes returns the bioentities matching term whose identifier
// appears in scxa-gene2experiment, one tuple per gene with its species,
// sorted on bioentity_identifier.
func ExpressedGenes(term string, category gene.Category, species string) (stream.Sorted, error) {
	key := schema.BioentityIdentifier.Name()

	b := query.New[schema.Bioentities]().AddQuery(schema.BioentityPropertyValue, term)
	if category != gene.Any {
		b = b.AddFilter(schema.BioentityPropertyName, category.String())
	}
	if species != "" {
		b = b.AddFilter(schema.BioentitySpecies, species)
	}
	matching := b.
		Fields(schema.BioentityIdentifier, schema.BioentitySpecies).
		SortBy(schema.BioentityIdentifier, query.Asc).
		Build()
	left, err := stream.SortedSearch(stream.Search(matching).ReturnAllDocs(), key)
	if err != nil {
		return stream.Sorted{}, fmt.Errorf("build bioentity query: %w", err)
	}

	expressed := query.New[schema.Gene2Experiment]().
		Fields(schema.Gene2ExperimentGeneID).
		SortBy(schema.Gene2ExperimentGeneID, query.Asc).
		Build()
	right, err := stream.SortedSearch(stream.Search(expressed).ReturnAllDocs(), schema.Gene2ExperimentGeneID.Name())
	if err != nil {
		return stream.Sorted{}, fmt.Errorf("build expressed gene query: %w", err)
	}
	right, err = stream.SelectSorted(stream.Unique(right), stream.As(schema.Gene2ExperimentGeneID.Name(), key))
	if err != nil {
		return stream.Sorted{}, fmt.Errorf("project expressed genes: %w", err)
	}

	joined, err := stream.InnerJoin(stream.Unique(left), right)
	if err != nil {
		return stream.Sorted{}, fmt.Errorf("join expressed genes: %w", err)
	}
	return joined, nil
}
