package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/scxa/internal/repository/analytics"
	celltyperepo "github.com/kailas-cloud/scxa/internal/repository/celltype"
	"github.com/kailas-cloud/scxa/internal/repository/geneid"
	"github.com/kailas-cloud/scxa/internal/repository/species"
	celltypeuc "github.com/kailas-cloud/scxa/internal/usecase/celltype"
	genesearchuc "github.com/kailas-cloud/scxa/internal/usecase/genesearch"
)

// NewSpeciesCommand creates the species command.
func NewSpeciesCommand(rootOpts *RootOptions) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:          "species <term>",
		Short:        "List the species of expressed genes matching a term",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer store.Close()

			svc := genesearchuc.New(geneid.New(store), species.New(store), nil)
			values, err := svc.SearchSpecies(cmd.Context(), args[0], category)
			if err != nil {
				return err
			}
			return formatter(cmd, rootOpts).Values(values)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "gene property category (symbol, ensgene, ...)")
	return cmd
}

// NewGeneIDsCommand creates the gene-ids command.
func NewGeneIDsCommand(rootOpts *RootOptions) *cobra.Command {
	var category, speciesName string

	cmd := &cobra.Command{
		Use:          "gene-ids <term>",
		Short:        "Resolve a term to the identifiers of expressed genes",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer store.Close()

			svc := genesearchuc.New(geneid.New(store), species.New(store), nil)
			values, err := svc.ResolveGeneIDs(cmd.Context(), args[0], category, speciesName)
			if err != nil {
				return err
			}
			return formatter(cmd, rootOpts).Values(values)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "gene property category (symbol, ensgene, ...)")
	cmd.Flags().StringVarP(&speciesName, "species", "s", "", "restrict to a species, e.g. \"Homo sapiens\"")
	return cmd
}

// NewCellTypesCommand creates the cell-types command.
func NewCellTypesCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		genes      []string
		parts      []string
		experiment string
	)

	cmd := &cobra.Command{
		Use:   "cell-types",
		Short: "List inferred cell types by gene or by organism part",
		Example: `  scxactl cell-types --genes ENSG00000254647,ENSG00000115263
  scxactl cell-types --experiment E-MTAB-5061 --organism-part pancreas`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if (len(genes) == 0) == (len(parts) == 0) {
				return fmt.Errorf("exactly one of --genes or --organism-part is required")
			}
			if experiment != "" && len(parts) == 0 {
				return fmt.Errorf("--experiment applies to --organism-part only")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer store.Close()

			svc := celltypeuc.New(analytics.New(store), celltyperepo.New(store), nil)
			var values []string
			if len(genes) > 0 {
				values, err = svc.CellTypesByGeneIDs(cmd.Context(), genes)
			} else {
				values, err = svc.CellTypesByOrganismParts(cmd.Context(), strings.TrimSpace(experiment), parts)
			}
			if err != nil {
				return err
			}
			return formatter(cmd, rootOpts).Values(values)
		},
	}

	cmd.Flags().StringSliceVarP(&genes, "genes", "g", nil, "gene identifiers")
	cmd.Flags().StringArrayVarP(&parts, "organism-part", "p", nil, "organism part; repeatable")
	cmd.Flags().StringVarP(&experiment, "experiment", "e", "", "experiment accession")
	return cmd
}

func formatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}
