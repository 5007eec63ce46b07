package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/scxa/internal/db/memory/memorytest"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	require.NoError(t, os.WriteFile(path, memorytest.Fixture(), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// --- Root ---

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "scxactl", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"compile", "species", "gene-ids", "cell-types"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, "--format", "xml", "compile", "species", "INS")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestBackendFlagsExclusive(t *testing.T) {
	_, err := run(t, "--solr-url", "http://localhost:8983", "--fixture", "f.yaml", "species", "INS")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

// --- Lookups ---

func TestSpecies(t *testing.T) {
	out, err := run(t, "--fixture", writeFixture(t), "species", "INS")
	require.NoError(t, err)
	assert.Equal(t, "homo_sapiens\n", out)
}

func TestSpecies_UnknownGeneIsEmpty(t *testing.T) {
	out, err := run(t, "--fixture", writeFixture(t), "species", "Ins2", "--category", "symbol")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestGeneIDs_JSON(t *testing.T) {
	out, err := run(t, "--fixture", writeFixture(t), "--format", "json",
		"gene-ids", "GCG", "-c", "symbol", "-s", "Homo sapiens")
	require.NoError(t, err)

	var resp struct {
		Status string   `json:"status"`
		Data   []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{"ENSG00000115263"}, resp.Data)
}

func TestGeneIDs_BlankTerm(t *testing.T) {
	_, err := run(t, "--fixture", writeFixture(t), "gene-ids", " ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid search term")
}

func TestCellTypes_ByGenes(t *testing.T) {
	out, err := run(t, "--fixture", writeFixture(t), "cell-types", "--genes", "ENSG00000254647,ENSG00000115263")
	require.NoError(t, err)
	assert.Equal(t, "pancreatic A cell\ntype B pancreatic cell\n", out)
}

func TestCellTypes_ByOrganismPart(t *testing.T) {
	out, err := run(t, "--fixture", writeFixture(t), "cell-types",
		"--experiment", "E-MTAB-5061", "--organism-part", "islet of Langerhans")
	require.NoError(t, err)
	assert.Equal(t, "pancreatic A cell\ntype B pancreatic cell\n", out)
}

func TestCellTypes_FlagValidation(t *testing.T) {
	fixture := writeFixture(t)

	_, err := run(t, "--fixture", fixture, "cell-types")
	require.Error(t, err)

	_, err = run(t, "--fixture", fixture, "cell-types", "--genes", "g1", "--organism-part", "liver")
	require.Error(t, err)

	_, err = run(t, "--fixture", fixture, "cell-types", "--genes", "g1", "--experiment", "E-MTAB-5061")
	require.Error(t, err)
}

// --- Compile ---

func TestCompile_Species(t *testing.T) {
	out, err := run(t, "compile", "species", "INS", "--category", "symbol")
	require.NoError(t, err)

	expr := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(expr, "unique(sort(select(innerJoin("), expr)
	assert.Contains(t, expr, "bioentities")
	assert.Contains(t, expr, "scxa-gene2experiment")
	assert.NotContains(t, out, "\n\n")
}

func TestCompile_CellTypesByParts(t *testing.T) {
	out, err := run(t, "compile", "cell-types-by-parts", "--experiment", "E-MTAB-5061", "pancreas")
	require.NoError(t, err)

	assert.Contains(t, out, "cartesianProduct(")
	assert.Contains(t, out, "ontology_annotation_ancestors_labels")
	assert.Contains(t, out, "E-MTAB-5061")
}

func TestCompile_JSON(t *testing.T) {
	out, err := run(t, "--format", "json", "compile", "cell-ids", "ENSG00000254647")
	require.NoError(t, err)

	var resp struct {
		Data struct {
			Expressions []string `json:"expressions"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Expressions, 1)
	assert.Contains(t, resp.Data.Expressions[0], "scxa-gene2cell")
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown lookup", []string{"compile", "genes", "INS"}, "unknown lookup"},
		{"two terms", []string{"compile", "species", "INS", "GCG"}, "exactly one term"},
		{"blank values", []string{"compile", "cell-ids", " ", ""}, "non-blank"},
		{"bad category", []string{"compile", "gene-ids", "INS", "-c", "colour"}, "unknown gene category"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := run(t, tc.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLookups_Sorted(t *testing.T) {
	got := Lookups()
	assert.IsIncreasing(t, got)
	assert.Len(t, got, 6)
}
