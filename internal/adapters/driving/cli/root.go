// Package cli implements the knowctl command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/praxis-labs/knowctl/internal/core/ports/driven"
	"github.com/praxis-labs/knowctl/internal/core/ports/driving"
	"github.com/praxis-labs/knowctl/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services injected by main before Execute.
var (
	ingestService driving.Ingestor
	searchService driving.Searcher
	docStore      driven.DocumentStore
	embedService  driven.EmbeddingService
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "knowctl",
	Short: "Ingest documents into a searchable knowledge base",
	Long: `knowctl splits text documents into overlapping chunks, embeds
them and stores everything in a local database for keyword and
similarity search.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose output")
}

// Services bundles everything the commands need.
type Services struct {
	Ingestor driving.Ingestor
	Searcher driving.Searcher
	Store    driven.DocumentStore
	Embedder driven.EmbeddingService
	Version  string
}

// SetServices injects the application services into the command tree.
func SetServices(s Services) {
	ingestService = s.Ingestor
	searchService = s.Searcher
	docStore = s.Store
	embedService = s.Embedder
	if s.Version != "" {
		version = s.Version
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
