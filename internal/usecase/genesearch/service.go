package genesearch

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/scxa/internal/domain"
	"github.com/kailas-cloud/scxa/internal/domain/gene"
	"github.com/kailas-cloud/scxa/internal/repository/resultcache"
)

// Service resolves free-text gene queries.
type Service struct {
	genes   GeneIDRepository
	species SpeciesRepository
	cache   Cache
}

// New creates a gene search service. cache can be nil.
func New(genes GeneIDRepository, species SpeciesRepository, cache Cache) *Service {
	if cache == nil {
		cache = noCache{}
	}
	return &Service{genes: genes, species: species, cache: cache}
}

// ResolveGeneIDs returns the identifiers of expressed genes with a property
// of category matching term. species is optional and accepts either the
// index form (homo_sapiens) or the display form (Homo sapiens).
func (s *Service) ResolveGeneIDs(ctx context.Context, term, category, species string) ([]string, error) {
	term, cat, err := parseQuery(term, category)
	if err != nil {
		return nil, err
	}
	species = NormalizeSpecies(species)

	key := resultcache.Key{Kind: "gene-ids", Args: []string{term, cat.String(), species}}
	ids, err := s.cache.Strings(ctx, key, func(ctx context.Context) ([]string, error) {
		return s.genes.SearchGeneIDs(ctx, term, cat, species)
	})
	if err != nil {
		return nil, fmt.Errorf("resolve gene ids: %w", err)
	}
	return ids, nil
}

// SearchSpecies returns the species of expressed genes matching term.
func (s *Service) SearchSpecies(ctx context.Context, term, category string) ([]string, error) {
	term, cat, err := parseQuery(term, category)
	if err != nil {
		return nil, err
	}

	key := resultcache.Key{Kind: "species", Args: []string{term, cat.String()}}
	species, err := s.cache.Strings(ctx, key, func(ctx context.Context) ([]string, error) {
		return s.species.SearchSpecies(ctx, term, cat)
	})
	if err != nil {
		return nil, fmt.Errorf("search species: %w", err)
	}
	return species, nil
}

// NormalizeSpecies converts a species name to its index form:
// "Homo sapiens" becomes "homo_sapiens".
func NormalizeSpecies(species string) string {
	return strings.Join(strings.Fields(strings.ToLower(species)), "_")
}

func parseQuery(term, category string) (string, gene.Category, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", "", fmt.Errorf("%w: term is required", domain.ErrInvalidTerm)
	}
	cat, err := gene.ParseCategory(category)
	if err != nil {
		return "", "", err
	}
	return term, cat, nil
}

type noCache struct{}

func (noCache) Strings(
	ctx context.Context, _ resultcache.Key, load func(context.Context) ([]string, error),
) ([]string, error) {
	return load(ctx)
}
