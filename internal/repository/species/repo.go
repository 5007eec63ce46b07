// Package species resolves gene search terms to the species of the genes
// they match.
package species

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/scxa/internal/db"
	"github.com/kailas-cloud/scxa/internal/domain/gene"
	"github.com/kailas-cloud/scxa/internal/repository/geneid"
	"github.com/kailas-cloud/scxa/internal/solr/schema"
	"github.com/kailas-cloud/scxa/internal/solr/stream"
)

// store is the consumer interface for expression execution (ISP).
type store interface {
	Open(ctx context.Context, expr stream.Expression) (db.TupleStream, error)
}

// Repo implements species resolution.
type Repo struct {
	store store
}

// New creates a species repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SearchSpecies returns the sorted, distinct species of the genes matching
// term in category. Genes that are not expressed in any experiment are not
// considered, so a term known only to the bioentities collection resolves to
// nothing.
func (r *Repo) SearchSpecies(ctx context.Context, term string, category gene.Category) ([]string, error) {
	if strings.TrimSpace(term) == "" {
		return []string{}, nil
	}

	expr, err := Expression(term, category)
	if err != nil {
		return nil, err
	}

	species, err := db.Values(ctx, r.store, expr, schema.BioentitySpecies.Name())
	if err != nil {
		return nil, fmt.Errorf("search species for %q: %w", term, err)
	}
	return species, nil
}

// Expression builds the species lookup for term.
func Expression(term string, category gene.Category) (stream.Expression, error) {
	genes, err := geneid.ExpressedGenes(term, category, "")
	if err != nil {
		return nil, err
	}

	field := schema.BioentitySpecies.Name()
	bySpecies := stream.SortBy(stream.Select(genes.Expr(), stream.Keep(field)), field)
	return stream.Unique(bySpecies).Expr(), nil
}
