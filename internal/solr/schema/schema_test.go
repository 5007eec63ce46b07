package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestField(t *testing.T) {
	if s := AnalyticsCellID.String(); s != "scxa-analytics.cell_id" {
		t.Errorf("String() = %q", s)
	}
	if AnalyticsCellID.Multi() || !AnalyticsCellID.DocValues() {
		t.Error("cell_id should be single-valued with doc values")
	}
	if !AnalyticsOntologyAncestorsLabels.Multi() || AnalyticsOntologyAncestorsLabels.DocValues() {
		t.Error("ancestor labels should be multi-valued without doc values")
	}
	if c := Gene2CellGeneID.Collection(); c != "scxa-gene2cell" {
		t.Errorf("Collection() = %q", c)
	}
}

func TestNames(t *testing.T) {
	got := Names(BioentityIdentifier, BioentitySpecies)
	if diff := cmp.Diff([]string{"bioentity_identifier", "species"}, got); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
}

func TestCatalog(t *testing.T) {
	cat := Catalog()

	names := make([]string, len(cat))
	for i, c := range cat {
		names[i] = c.Name
		if c.UniqueKey != "id" {
			t.Errorf("%s: unique key = %q", c.Name, c.UniqueKey)
		}
	}
	want := []string{"scxa-analytics", "bioentities", "scxa-gene2experiment", "scxa-gene2cell"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("collections (-want +got):\n%s", diff)
	}

	var factor FieldInfo
	for _, f := range cat[0].Fields {
		if f.Name == "factor_value" {
			factor = f
		}
	}
	if diff := cmp.Diff(FieldInfo{Name: "factor_value", Multi: true, DocValues: true}, factor); diff != "" {
		t.Errorf("factor_value (-want +got):\n%s", diff)
	}
}
