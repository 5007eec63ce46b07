package analytics

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kailas-cloud/scxa/internal/db"
	"github.com/kailas-cloud/scxa/internal/db/memory/memorytest"
	"github.com/kailas-cloud/scxa/internal/domain"
	"github.com/kailas-cloud/scxa/internal/solr/stream"
)

// --- SearchCellIDsByGeneIDs ---

func TestSearchCellIDsByGeneIDs(t *testing.T) {
	repo := New(memorytest.NewStore(t))

	got, err := repo.SearchCellIDsByGeneIDs(context.Background(), []string{"ENSG00000254647", "ENSG00000115263"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"c2", "c3", "c4"}, got); diff != "" {
		t.Fatalf("cell ids (-want +got):\n%s", diff)
	}
}

func TestSearchCellIDsByGeneIDs_UnknownGene(t *testing.T) {
	repo := New(memorytest.NewStore(t))

	got, err := repo.SearchCellIDsByGeneIDs(context.Background(), []string{"ENSG00000000000"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty set, got %#v", got)
	}
}

func TestSearchCellIDsByGeneIDs_EmptyNoBackendCall(t *testing.T) {
	s := memorytest.NewStore(t)
	repo := New(s)

	got, err := repo.SearchCellIDsByGeneIDs(context.Background(), []string{""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 || s.Requests() != 0 {
		t.Fatalf("expected empty set without backend call, got %v after %d calls", got, s.Requests())
	}
}

// --- SearchOrganismPartsByCellIDs ---

func TestSearchOrganismPartsByCellIDs(t *testing.T) {
	repo := New(memorytest.NewStore(t))

	got, err := repo.SearchOrganismPartsByCellIDs(context.Background(), []string{"c2", "c3", "c4", "m1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"islet of Langerhans", "liver", "pancreas"}, got); diff != "" {
		t.Fatalf("organism parts (-want +got):\n%s", diff)
	}
}

func TestSearchOrganismPartsByCellIDs_EmptyNoBackendCall(t *testing.T) {
	s := memorytest.NewStore(t)
	repo := New(s)

	got, err := repo.SearchOrganismPartsByCellIDs(context.Background(), []string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty set, got %v", got)
	}
	if s.Requests() != 0 {
		t.Fatalf("expected no backend call, got %d", s.Requests())
	}
}

// --- Building blocks ---

func TestMetadataValues_PrefersFactorValue(t *testing.T) {
	s := memorytest.NewStore(t)
	values, err := MetadataValues(Scope{Experiment: "E-MTAB-5061"}, domain.InferredCellType, "value")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := db.Collect(context.Background(), s, values.Expr())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]string{"c1": "acinar cell", "c2": "type B pancreatic cell", "c3": "pancreatic A cell"}
	if len(got) != len(want) {
		t.Fatalf("expected %d tuples, got %v", len(want), got)
	}
	for _, tup := range got {
		if v := tup.First("value"); v != want[tup.First("cell_id")] {
			t.Errorf("cell %s: got %q, want %q", tup.First("cell_id"), v, want[tup.First("cell_id")])
		}
	}
	if values.Key() != "cell_id" {
		t.Errorf("expected values sorted on cell_id, got %s", values.Key())
	}
}

func TestCells_SortedOnCellID(t *testing.T) {
	cells, err := Cells(Scope{CellIDs: []string{"c1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cells.Key() != "cell_id" {
		t.Fatalf("expected key cell_id, got %s", cells.Key())
	}
	expr := stream.Compile(cells.Expr())
	if !strings.HasPrefix(expr, "unique(search(scxa-analytics") || !strings.Contains(expr, `sort="cell_id asc,id asc"`) {
		t.Fatalf("unexpected expression: %s", expr)
	}
}

func TestNonBlank(t *testing.T) {
	got := NonBlank([]string{" c1 ", "", "  ", "c2"})
	if diff := cmp.Diff([]string{"c1", "c2"}, got); diff != "" {
		t.Fatalf("NonBlank (-want +got):\n%s", diff)
	}
}
