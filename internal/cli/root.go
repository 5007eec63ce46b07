// Package cli implements scxactl, a command-line client that runs the cell
// search lookups directly against a search backend.
package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/scxa/internal/config"
	"github.com/kailas-cloud/scxa/internal/db"
	"github.com/kailas-cloud/scxa/internal/db/backend"
	"github.com/kailas-cloud/scxa/internal/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Env     string // config environment used when no backend flag is given
	SolrURL string
	Fixture string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for scxactl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "scxactl",
		Short: "Query the single-cell expression search backend",
		Long: `scxactl resolves genes, species and cell types with the same streaming
expressions the scxa API runs. Point it at Solr with --solr-url, at a YAML
fixture with --fixture, or at the backend of a config environment with --env.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.SolrURL != "" && opts.Fixture != "" {
				return fmt.Errorf("--solr-url and --fixture are mutually exclusive")
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log compiled expressions to stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Env, "env", config.GetEnv(), "config environment")
	cmd.PersistentFlags().StringVar(&opts.SolrURL, "solr-url", "", "Solr base URL, e.g. http://localhost:8983")
	cmd.PersistentFlags().StringVar(&opts.Fixture, "fixture", "", "YAML fixture for the in-memory backend")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewSpeciesCommand(opts))
	cmd.AddCommand(NewGeneIDsCommand(opts))
	cmd.AddCommand(NewCellTypesCommand(opts))

	return cmd
}

// openStore opens the backend selected by the flags, falling back to the
// config environment.
func openStore(ctx context.Context, opts *RootOptions) (db.SearchStore, error) {
	var search config.SearchConfig
	switch {
	case opts.SolrURL != "":
		search = config.SearchConfig{Driver: config.DriverSolr, URL: opts.SolrURL}
	case opts.Fixture != "":
		search = config.SearchConfig{Driver: config.DriverMemory, Fixture: opts.Fixture}
	default:
		cfg, err := config.Load(opts.Env)
		if err != nil {
			return nil, err
		}
		search = cfg.Search
	}
	// Fill timeouts and page size the way the server does.
	cfg := config.Config{Search: search}
	cfg.ApplyDefaults()

	store, err := backend.Open(ctx, cfg.Search, newLogger(opts))
	if err != nil {
		return nil, err
	}
	return store, nil
}

// newLogger logs to stderr: debug (compiled expressions) with --verbose,
// warnings otherwise.
func newLogger(opts *RootOptions) *zap.Logger {
	env, level := "test", ""
	if opts.Verbose {
		env, level = "dev", "debug"
	}
	l, err := logger.NewLogger(env, level)
	if err != nil {
		return zap.NewNop()
	}
	return l
}
