package geneid

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kailas-cloud/scxa/internal/db/memory/memorytest"
	"github.com/kailas-cloud/scxa/internal/domain/gene"
	"github.com/kailas-cloud/scxa/internal/solr/stream"
)

func TestSearchGeneIDs(t *testing.T) {
	repo := New(memorytest.NewStore(t))
	ctx := context.Background()

	tests := []struct {
		name     string
		term     string
		category gene.Category
		species  string
		want     []string
	}{
		{"symbol", "INS", gene.Symbol, "", []string{"ENSG00000254647"}},
		{"any category", "GCG", gene.Any, "", []string{"ENSG00000115263"}},
		{"case insensitive", "gcg", gene.Any, "", []string{"ENSG00000115263"}},
		{"multi-word substring", "precursor protein", gene.Description, "",
			[]string{"ENSG00000115263", "ENSG00000254647"}},
		{"species filter", "INS", gene.Symbol, "mus_musculus", []string{}},
		{"wrong category", "INS", gene.Synonym, "", []string{}},
		{"not expressed", "Ins2", gene.Symbol, "", []string{}},
		{"mouse expressed", "Alb", gene.Symbol, "mus_musculus", []string{"ENSMUSG00000035000"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.SearchGeneIDs(ctx, tc.term, tc.category, tc.species)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("gene ids (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSearchGeneIDs_BlankTermNoBackendCall(t *testing.T) {
	s := memorytest.NewStore(t)
	got, err := New(s).SearchGeneIDs(context.Background(), "  ", gene.Any, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 || s.Requests() != 0 {
		t.Fatalf("expected empty set without backend call, got %v after %d calls", got, s.Requests())
	}
}

func TestExpressedGenes_Expression(t *testing.T) {
	genes, err := ExpressedGenes("insulin", gene.Symbol, "homo_sapiens")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if genes.Key() != "bioentity_identifier" {
		t.Fatalf("expected key bioentity_identifier, got %s", genes.Key())
	}
	expr := stream.Compile(genes.Expr())
	for _, want := range []string{
		`innerJoin(unique(search(bioentities, q="property_value:(insulin)"`,
		`fq="property_name:(symbol) AND species:(homo_sapiens)"`,
		`select(unique(search(scxa-gene2experiment`,
		`gene_id as bioentity_identifier`,
		`on="bioentity_identifier"`,
	} {
		if !strings.Contains(expr, want) {
			t.Errorf("expression lacks %s:\n%s", want, expr)
		}
	}
}
