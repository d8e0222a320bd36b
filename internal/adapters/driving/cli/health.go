package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check storage and embedding backend connectivity",
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	if docStore == nil {
		return errors.New("document store not configured")
	}

	ctx := context.Background()
	healthy := true

	if docStore.HealthCheck(ctx) {
		cmd.Println("storage:   ok")
	} else {
		cmd.Println("storage:   unreachable")
		healthy = false
	}

	switch {
	case embedService == nil:
		cmd.Println("embedding: disabled")
	case embedService.Ping(ctx) == nil:
		cmd.Println("embedding: ok")
	default:
		cmd.Println("embedding: unreachable")
		healthy = false
	}

	if !healthy {
		return errors.New("one or more backends are unreachable")
	}

	return nil
}
