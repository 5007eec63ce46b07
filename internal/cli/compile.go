package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/scxa/internal/domain/gene"
	"github.com/kailas-cloud/scxa/internal/repository/analytics"
	celltyperepo "github.com/kailas-cloud/scxa/internal/repository/celltype"
	"github.com/kailas-cloud/scxa/internal/repository/geneid"
	"github.com/kailas-cloud/scxa/internal/repository/species"
	"github.com/kailas-cloud/scxa/internal/solr/stream"
	genesearchuc "github.com/kailas-cloud/scxa/internal/usecase/genesearch"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Category   string
	Species    string
	Experiment string
}

// compilers build the expression of each lookup from its positional arguments.
var compilers = map[string]func(o *CompileOptions, args []string) (stream.Expression, error){
	"species": func(o *CompileOptions, args []string) (stream.Expression, error) {
		cat, err := gene.ParseCategory(o.Category)
		if err != nil {
			return nil, err
		}
		return species.Expression(args[0], cat)
	},
	"gene-ids": func(o *CompileOptions, args []string) (stream.Expression, error) {
		cat, err := gene.ParseCategory(o.Category)
		if err != nil {
			return nil, err
		}
		return geneid.Expression(args[0], cat, genesearchuc.NormalizeSpecies(o.Species))
	},
	"cell-ids": func(_ *CompileOptions, args []string) (stream.Expression, error) {
		return analytics.CellIDsExpression(args)
	},
	"organism-parts": func(_ *CompileOptions, args []string) (stream.Expression, error) {
		return analytics.OrganismPartsExpression(args)
	},
	"cell-types-by-cells": func(_ *CompileOptions, args []string) (stream.Expression, error) {
		return celltyperepo.ByCellIDsExpression(args)
	},
	"cell-types-by-parts": func(o *CompileOptions, args []string) (stream.Expression, error) {
		return celltyperepo.ByOrganismPartsExpression(o.Experiment, args)
	},
}

// Lookups lists the lookups compile understands.
func Lookups() []string {
	names := make([]string, 0, len(compilers))
	for n := range compilers {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <lookup> <value>...",
		Short: "Print the streaming expression of a lookup without running it",
		Long: fmt.Sprintf(`Compile a lookup to the streaming expression text sent to the /stream handler.

Lookups: %s.
species and gene-ids take a single search term; the others take a list of
gene IDs, cell IDs or organism parts.`, strings.Join(Lookups(), ", ")),
		Example:      `  scxactl compile cell-types-by-parts --experiment E-MTAB-5061 pancreas`,
		Args:         cobra.MinimumNArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			expr, err := compileLookup(opts, args[0], args[1:])
			if err != nil {
				return err
			}
			return formatter(cmd, rootOpts).Expressions([]string{stream.Compile(expr)})
		},
	}

	cmd.Flags().StringVarP(&opts.Category, "category", "c", "", "gene property category")
	cmd.Flags().StringVarP(&opts.Species, "species", "s", "", "species filter for gene-ids")
	cmd.Flags().StringVarP(&opts.Experiment, "experiment", "e", "", "experiment accession for cell-types-by-parts")
	return cmd
}

func compileLookup(opts *CompileOptions, lookup string, values []string) (stream.Expression, error) {
	build, ok := compilers[lookup]
	if !ok {
		return nil, fmt.Errorf("unknown lookup %q: must be one of %v", lookup, Lookups())
	}
	if (lookup == "species" || lookup == "gene-ids") && len(values) != 1 {
		return nil, fmt.Errorf("%s takes exactly one term, got %d", lookup, len(values))
	}
	values = analytics.NonBlank(values)
	if len(values) == 0 {
		return nil, fmt.Errorf("%s needs at least one non-blank value", lookup)
	}
	return build(opts, values)
}
