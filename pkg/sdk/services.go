package scxa

import (
	"context"
	"time"

	"github.com/kailas-cloud/scxa/internal/domain/gene"
)

// Gene property categories accepted by GeneService.
const (
	CategoryAny         = string(gene.Any)
	CategorySymbol      = string(gene.Symbol)
	CategorySynonym     = string(gene.Synonym)
	CategoryEnsemblGene = string(gene.EnsemblGene)
	CategoryDescription = string(gene.Description)
	CategoryGOTerm      = string(gene.GOTerm)
	CategoryInterPro    = string(gene.InterPro)
	CategoryPathway     = string(gene.Pathway)
)

// GeneService resolves gene search terms.
type GeneService struct {
	svc geneUseCase
	obs *observer
}

// IDs returns the IDs of genes matching term that have expression
// experiments. category and species may be empty.
func (s *GeneService) IDs(ctx context.Context, term, category, species string) (ids []string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("gene_ids", start, err) }()

	return s.svc.ResolveGeneIDs(ctx, term, category, species)
}

// Species returns the species of genes matching term that have expression
// experiments.
func (s *GeneService) Species(ctx context.Context, term, category string) (names []string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("species", start, err) }()

	return s.svc.SearchSpecies(ctx, term, category)
}

// CellTypeService looks up cell types and organism parts.
type CellTypeService struct {
	svc cellTypeUseCase
	obs *observer
}

// ByGeneIDs returns the inferred cell types of cells expressing any of geneIDs.
func (s *CellTypeService) ByGeneIDs(ctx context.Context, geneIDs []string) (types []string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("cell_types_by_genes", start, err) }()

	return s.svc.CellTypesByGeneIDs(ctx, geneIDs)
}

// OrganismPartsByGeneIDs returns the organism parts of cells expressing any
// of geneIDs.
func (s *CellTypeService) OrganismPartsByGeneIDs(ctx context.Context, geneIDs []string) (parts []string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("organism_parts_by_genes", start, err) }()

	return s.svc.OrganismPartsByGeneIDs(ctx, geneIDs)
}

// ByOrganismParts returns the cell types found in organismParts or their
// ontology descendants. An empty experiment searches every experiment.
func (s *CellTypeService) ByOrganismParts(
	ctx context.Context, experiment string, organismParts []string,
) (types []string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("cell_types_by_parts", start, err) }()

	return s.svc.CellTypesByOrganismParts(ctx, experiment, organismParts)
}

// MetadataField is one metadata value of a cell.
type MetadataField struct {
	Name  string
	Value string
}

// MetadataService reads cell metadata.
type MetadataService struct {
	svc metadataUseCase
	obs *observer
}

// ForCell returns the inferred cell type and the fields of interest of a
// cell. Missing values are NotAvailable.
func (s *MetadataService) ForCell(ctx context.Context, experiment, cellID string) (fields []MetadataField, err error) {
	start := time.Now()
	defer func() { s.obs.observe("cell_metadata", start, err) }()

	got, err := s.svc.MetadataForCell(ctx, experiment, cellID)
	if err != nil {
		return nil, err
	}
	fields = make([]MetadataField, len(got))
	for i, f := range got {
		fields[i] = MetadataField{Name: f.Name, Value: f.Value}
	}
	return fields, nil
}

// FieldNames returns the metadata field names recorded for an experiment.
func (s *MetadataService) FieldNames(ctx context.Context, experiment string) (names []string, err error) {
	start := time.Now()
	defer func() { s.obs.observe("metadata_fields", start, err) }()

	return s.svc.FieldNames(ctx, experiment)
}
