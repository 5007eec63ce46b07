package schema

const uniqueKey = "id"

// Analytics is the per-cell metadata collection. One document holds one
// metadata facet (characteristic and/or factor) of one cell.
type Analytics struct{}

// Name implements Collection.
func (Analytics) Name() string { return "scxa-analytics" }

// UniqueKey implements Collection.
func (Analytics) UniqueKey() string { return uniqueKey }

// Bioentities maps gene identifiers to their properties (symbols, synonyms...).
type Bioentities struct{}

// Name implements Collection.
func (Bioentities) Name() string { return "bioentities" }

// UniqueKey implements Collection.
func (Bioentities) UniqueKey() string { return uniqueKey }

// Gene2Experiment lists the experiments in which a gene is expressed.
type Gene2Experiment struct{}

// Name implements Collection.
func (Gene2Experiment) Name() string { return "scxa-gene2experiment" }

// UniqueKey implements Collection.
func (Gene2Experiment) UniqueKey() string { return uniqueKey }

// Gene2Cell lists the cells in which a gene is expressed.
type Gene2Cell struct{}

// Name implements Collection.
func (Gene2Cell) Name() string { return "scxa-gene2cell" }

// UniqueKey implements Collection.
func (Gene2Cell) UniqueKey() string { return uniqueKey }

// scxa-analytics fields.
var (
	AnalyticsID                      = NewField[Analytics](uniqueKey)
	AnalyticsExperimentAccession     = NewField[Analytics]("experiment_accession")
	AnalyticsCellID                  = NewField[Analytics]("cell_id")
	AnalyticsCharacteristicName      = NewField[Analytics]("characteristic_name")
	AnalyticsCharacteristicValue     = NewMultiField[Analytics]("characteristic_value", true)
	AnalyticsFactorName              = NewField[Analytics]("factor_name")
	AnalyticsFactorValue             = NewMultiField[Analytics]("factor_value", true)
	AnalyticsOntologyAnnotation      = NewField[Analytics]("ontology_annotation")
	AnalyticsOntologyAnnotationLabel = NewField[Analytics]("ontology_annotation_label")
	AnalyticsOntologyAncestorsLabels = NewMultiField[Analytics]("ontology_annotation_ancestors_labels", false)
	AnalyticsOntologyAncestorsURIs   = NewMultiField[Analytics]("ontology_annotation_ancestors_uris", false)
)

// bioentities fields.
var (
	BioentitiesID          = NewField[Bioentities](uniqueKey)
	BioentityIdentifier    = NewField[Bioentities]("bioentity_identifier")
	BioentityPropertyName  = NewField[Bioentities]("property_name")
	BioentityPropertyValue = NewField[Bioentities]("property_value")
	BioentitySpecies       = NewField[Bioentities]("species")
)

// scxa-gene2experiment fields.
var (
	Gene2ExperimentID                  = NewField[Gene2Experiment](uniqueKey)
	Gene2ExperimentGeneID              = NewField[Gene2Experiment]("gene_id")
	Gene2ExperimentExperimentAccession = NewField[Gene2Experiment]("experiment_accession")
)

// scxa-gene2cell fields.
var (
	Gene2CellID                  = NewField[Gene2Cell](uniqueKey)
	Gene2CellGeneID              = NewField[Gene2Cell]("gene_id")
	Gene2CellCellID              = NewField[Gene2Cell]("cell_id")
	Gene2CellExperimentAccession = NewField[Gene2Cell]("experiment_accession")
)

// FieldInfo describes one field for backends that evaluate expressions locally.
type FieldInfo struct {
	Name      string
	Multi     bool
	DocValues bool
}

// CollectionInfo describes one collection.
type CollectionInfo struct {
	Name      string
	UniqueKey string
	Fields    []FieldInfo
}

// Describe returns the description of collection C with fields.
func Describe[C Collection](fields ...Field[C]) CollectionInfo {
	var c C
	info := CollectionInfo{Name: c.Name(), UniqueKey: c.UniqueKey(), Fields: make([]FieldInfo, len(fields))}
	for i, f := range fields {
		info.Fields[i] = FieldInfo{Name: f.name, Multi: f.multi, DocValues: f.docValues}
	}
	return info
}

// Catalog describes every known collection.
func Catalog() []CollectionInfo {
	return []CollectionInfo{
		Describe(
			AnalyticsID, AnalyticsExperimentAccession, AnalyticsCellID,
			AnalyticsCharacteristicName, AnalyticsCharacteristicValue,
			AnalyticsFactorName, AnalyticsFactorValue,
			AnalyticsOntologyAnnotation, AnalyticsOntologyAnnotationLabel,
			AnalyticsOntologyAncestorsLabels, AnalyticsOntologyAncestorsURIs,
		),
		Describe(BioentitiesID, BioentityIdentifier, BioentityPropertyName, BioentityPropertyValue, BioentitySpecies),
		Describe(Gene2ExperimentID, Gene2ExperimentGeneID, Gene2ExperimentExperimentAccession),
		Describe(Gene2CellID, Gene2CellGeneID, Gene2CellCellID, Gene2CellExperimentAccession),
	}
}
