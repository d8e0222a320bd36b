package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var ingestJSON bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a document into the knowledge base",
	Long: `Reads a text file, splits it into overlapping chunks, embeds each
chunk when an embedding backend is configured, and stores the result.
Re-ingesting the same path reconciles against the stored document
instead of duplicating it.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the run summary as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingestion service not configured")
	}

	result, err := ingestService.Ingest(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if ingestJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Ingested %s (document %s)\n", result.Filename, result.DocumentID)
	cmd.Printf("  chunks: %d created, %d updated, %d failed of %d\n",
		result.ChunksCreated, result.ChunksUpdated, result.ChunksFailed, result.TotalChunks)

	if result.ChunksFailed > 0 {
		cmd.Println("  some chunks failed; re-run ingest to retry them")
	}

	return nil
}
