package scxa

import (
	"context"

	cellmetadatauc "github.com/kailas-cloud/scxa/internal/usecase/cellmetadata"
	healthuc "github.com/kailas-cloud/scxa/internal/usecase/health"
)

// --- geneUseCase mock ---

type mockGeneUC struct {
	resolveFn func(ctx context.Context, term, category, species string) ([]string, error)
	speciesFn func(ctx context.Context, term, category string) ([]string, error)
}

func (m *mockGeneUC) ResolveGeneIDs(ctx context.Context, term, category, species string) ([]string, error) {
	return m.resolveFn(ctx, term, category, species)
}

func (m *mockGeneUC) SearchSpecies(ctx context.Context, term, category string) ([]string, error) {
	return m.speciesFn(ctx, term, category)
}

// --- metadataUseCase mock ---

type mockMetadataUC struct {
	forCellFn    func(ctx context.Context, experiment, cellID string) ([]cellmetadatauc.Field, error)
	fieldNamesFn func(ctx context.Context, experiment string) ([]string, error)
}

func (m *mockMetadataUC) MetadataForCell(
	ctx context.Context, experiment, cellID string,
) ([]cellmetadatauc.Field, error) {
	return m.forCellFn(ctx, experiment, cellID)
}

func (m *mockMetadataUC) FieldNames(ctx context.Context, experiment string) ([]string, error) {
	return m.fieldNamesFn(ctx, experiment)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }
