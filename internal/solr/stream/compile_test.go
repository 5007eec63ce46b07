package stream

import (
	"testing"

	"github.com/kailas-cloud/scxa/internal/solr/query"
	"github.com/kailas-cloud/scxa/internal/solr/schema"
)

func TestCompile_Search(t *testing.T) {
	tests := []struct {
		name string
		expr Expression
		want string
	}{
		{
			name: "query and filter",
			expr: Search(query.New[schema.Bioentities]().
				AddQuery(schema.BioentityPropertyValue, "INS").
				AddFilter(schema.BioentitySpecies, "homo_sapiens").
				Fields(schema.BioentityIdentifier).
				SortBy(schema.BioentityIdentifier, query.Asc).
				Rows(10).
				Build()),
			want: `search(bioentities, q="property_value:(INS)", fq="species:(homo_sapiens)", ` +
				`fl="bioentity_identifier", sort="bioentity_identifier asc", rows=10)`,
		},
		{
			name: "match all",
			expr: Search(query.New[schema.Gene2Cell]().Build()),
			want: `search(scxa-gene2cell, q="*:*", rows=1000)`,
		},
		{
			name: "facet only",
			expr: Search(query.New[schema.Analytics]().
				Facet(schema.AnalyticsCharacteristicName, 100, 1).
				Rows(0).
				Build()),
			want: `search(scxa-analytics, q="*:*", facet="true", facet.field="characteristic_name", ` +
				`facet.limit=100, facet.mincount=1, rows=0)`,
		},
		{
			name: "literal terms",
			expr: Search(query.New[schema.Gene2Cell]().
				Normalize(false).
				AddFilter(schema.Gene2CellGeneID, "g1", "g2").
				Build()),
			want: `search(scxa-gene2cell, q="*:*", fq="gene_id:(\"g1\" OR \"g2\")", rows=1000)`,
		},
		{
			name: "all docs",
			expr: Search(query.New[schema.Gene2Cell]().
				Fields(schema.Gene2CellCellID).
				SortBy(schema.Gene2CellCellID, query.Asc).
				Build()).ReturnAllDocs(),
			want: `search(scxa-gene2cell, q="*:*", fl="cell_id", sort="cell_id asc,id asc", qt="/export")`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Compile(tc.expr); got != tc.want {
				t.Errorf("Compile()\n got: %s\nwant: %s", got, tc.want)
			}
		})
	}
}

func TestCompile_Tree(t *testing.T) {
	genes, err := SortedSearch(Search(query.New[schema.Bioentities]().
		AddQuery(schema.BioentityPropertyValue, "INS").
		Fields(schema.BioentityIdentifier).
		SortBy(schema.BioentityIdentifier, query.Asc).
		Build()), "bioentity_identifier")
	if err != nil {
		t.Fatalf("genes: %v", err)
	}
	experiments, err := SortedSearch(Search(query.New[schema.Gene2Experiment]().
		Fields(schema.Gene2ExperimentGeneID).
		SortBy(schema.Gene2ExperimentGeneID, query.Asc).
		Rows(5).
		Build()), "gene_id")
	if err != nil {
		t.Fatalf("experiments: %v", err)
	}
	renamed, err := SelectSorted(Unique(experiments), As("gene_id", "bioentity_identifier"))
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	joined, err := InnerJoin(Unique(genes), renamed)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	expr := Unique(SortBy(CartesianProduct(Select(joined.Expr(), Keep("species")), "species"), "species")).Expr()

	want := `unique(sort(cartesianProduct(select(innerJoin(` +
		`unique(search(bioentities, q="property_value:(INS)", fl="bioentity_identifier", ` +
		`sort="bioentity_identifier asc", rows=1000), over="bioentity_identifier"), ` +
		`select(unique(search(scxa-gene2experiment, q="*:*", fl="gene_id", sort="gene_id asc", rows=5), ` +
		`over="gene_id"), gene_id as bioentity_identifier), on="bioentity_identifier"), species), species), ` +
		`by="species asc"), over="species")`
	if got := Compile(expr); got != want {
		t.Errorf("Compile()\n got: %s\nwant: %s", got, want)
	}
	if expr.Collection() != "bioentities" {
		t.Errorf("collection = %q, want bioentities", expr.Collection())
	}
}

func TestTerm(t *testing.T) {
	tests := []struct {
		in        string
		normalize bool
		want      string
	}{
		{"INS", true, "INS"},
		{"precursor protein", true, `*precursor\ protein*`},
		{"GO:0005515", true, `GO\:0005515`},
		{"a+b*", true, `a\+b\*`},
		{"precursor protein", false, `"precursor protein"`},
		{`say "hi" \o/`, false, `"say \"hi\" \\o/"`},
	}
	for _, tc := range tests {
		if got := Term(tc.in, tc.normalize); got != tc.want {
			t.Errorf("Term(%q, %v) = %s, want %s", tc.in, tc.normalize, got, tc.want)
		}
	}
}

func TestQueryString(t *testing.T) {
	clauses := []query.Clause{
		{Field: "property_value", Terms: []string{"INS", "insulin precursor"}},
		{Field: "species", Terms: []string{"homo_sapiens"}},
	}
	want := `property_value:(INS OR *insulin\ precursor*) AND species:(homo_sapiens)`
	if got := QueryString(clauses, true); got != want {
		t.Errorf("QueryString() = %s, want %s", got, want)
	}
	if got := QueryString(nil, true); got != MatchAll {
		t.Errorf("QueryString(nil) = %s, want %s", got, MatchAll)
	}
}

func TestSortString(t *testing.T) {
	got := SortString([]query.SortKey{{Field: "cell_id"}, {Field: "id", Direction: query.Desc}})
	if got != "cell_id asc,id desc" {
		t.Errorf("SortString() = %s", got)
	}
}
