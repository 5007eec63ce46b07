// Package cellmetadata reports the metadata recorded for single cells.
package cellmetadata

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/scxa/internal/domain"
	"github.com/kailas-cloud/scxa/internal/logger"
	"github.com/kailas-cloud/scxa/internal/repository/resultcache"
)

const defaultConcurrency = 4

// Field is one metadata value of a cell.
type Field struct {
	Name  string
	Value string
}

// Service resolves cell metadata.
type Service struct {
	repo        Repository
	fields      FieldsResolver
	cache       Cache
	concurrency int
}

// Option configures a Service.
type Option func(*Service)

// WithCache memoizes results. A nil cache keeps loading directly.
func WithCache(c Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithConcurrency bounds the number of field lookups run at once.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// New creates a cell metadata service.
func New(repo Repository, fields FieldsResolver, opts ...Option) *Service {
	s := &Service{repo: repo, fields: fields, cache: noCache{}, concurrency: defaultConcurrency}
	for _, o := range opts {
		o(s)
	}
	return s
}

// MetadataForCell returns the inferred cell type followed by the
// experiment's fields of interest for cellID. Fields without a value are
// reported as domain.NotAvailable.
func (s *Service) MetadataForCell(ctx context.Context, experiment, cellID string) ([]Field, error) {
	if err := domain.ValidateAccession(experiment); err != nil {
		return nil, err
	}
	cellID = strings.TrimSpace(cellID)
	if cellID == "" {
		return nil, fmt.Errorf("%w: cell id is required", domain.ErrInvalidInput)
	}

	names, err := s.fieldNames(ctx, experiment)
	if err != nil {
		return nil, err
	}

	load := func(ctx context.Context) (map[string]string, error) {
		return s.lookup(ctx, experiment, cellID, names)
	}
	key := resultcache.Key{Kind: "cell-metadata", Experiment: experiment, Args: []string{cellID}, Set: names}
	values, err := s.cache.StringMap(ctx, key, load)
	if err != nil {
		return nil, fmt.Errorf("metadata for cell %s: %w", cellID, err)
	}

	out := make([]Field, 0, len(names))
	for _, n := range names {
		v, ok := values[n]
		if !ok {
			v = domain.NotAvailable
		}
		out = append(out, Field{Name: n, Value: v})
	}
	return out, nil
}

// FieldNames returns the metadata field names recorded for experiment.
func (s *Service) FieldNames(ctx context.Context, experiment string) ([]string, error) {
	if err := domain.ValidateAccession(experiment); err != nil {
		return nil, err
	}
	load := func(ctx context.Context) ([]string, error) {
		return s.repo.SearchMetadataFieldNames(ctx, experiment)
	}

	names, err := s.cache.Strings(ctx, resultcache.Key{Kind: "metadata-fields", Experiment: experiment}, load)
	if err != nil {
		return nil, fmt.Errorf("metadata fields of %s: %w", experiment, err)
	}
	return names, nil
}

// fieldNames puts inferred_cell_type first and drops duplicates.
func (s *Service) fieldNames(ctx context.Context, experiment string) ([]string, error) {
	names := []string{domain.InferredCellType}
	if s.fields == nil {
		return names, nil
	}
	extra, err := s.fields.FieldsOfInterest(ctx, experiment)
	if err != nil {
		return nil, fmt.Errorf("fields of interest for %s: %w", experiment, err)
	}
	seen := map[string]bool{domain.InferredCellType: true}
	for _, f := range extra {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		names = append(names, f)
	}
	return names, nil
}

func (s *Service) lookup(ctx context.Context, experiment, cellID string, names []string) (map[string]string, error) {
	values := make([]string, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, name := range names {
		g.Go(func() error {
			v, err := s.repo.GetMetadataValueForCellID(gctx, experiment, name, cellID)
			if err != nil {
				return fmt.Errorf("field %s: %w", name, err)
			}
			values[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // wrapped per field above
	}

	log := logger.FromContext(ctx)
	out := make(map[string]string, len(names))
	for i, name := range names {
		if values[i] == domain.NotAvailable {
			log.Warn("Cell has no metadata value",
				zap.String("experiment", experiment),
				zap.String("cell_id", cellID),
				zap.String("field", name))
		}
		out[name] = values[i]
	}
	return out, nil
}

type noCache struct{}

func (noCache) Strings(
	ctx context.Context, _ resultcache.Key, load func(context.Context) ([]string, error),
) ([]string, error) {
	return load(ctx)
}

func (noCache) StringMap(
	ctx context.Context, _ resultcache.Key, load func(context.Context) (map[string]string, error),
) (map[string]string, error) {
	return load(ctx)
}
