package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show knowledge base statistics",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if docStore == nil {
		return errors.New("document store not configured")
	}

	ctx := context.Background()

	docs, err := docStore.CountDocuments(ctx)
	if err != nil {
		return fmt.Errorf("counting documents: %w", err)
	}

	chunks, err := docStore.CountChunks(ctx)
	if err != nil {
		return fmt.Errorf("counting chunks: %w", err)
	}

	cmd.Printf("Documents: %d\n", docs)
	cmd.Printf("Chunks:    %d\n", chunks)

	if embedService != nil {
		cmd.Printf("Embedding: %s (%d dimensions)\n",
			embedService.ModelName(), embedService.Dimensions())
	} else {
		cmd.Println("Embedding: disabled")
	}

	return nil
}
