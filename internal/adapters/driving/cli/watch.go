package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/praxis-labs/knowctl/internal/triggers/watcher"
)

var (
	watchExtensions []string
	watchDebounce   time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and ingest files as they change",
	Long: `Watches a directory and re-ingests matching files whenever they are
created or modified. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringSliceVar(&watchExtensions, "ext", []string{".txt", ".md"}, "file extensions to ingest")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "quiet period before re-ingesting a changed file")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingestion service not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := watcher.New(ingestService, watcher.Config{
		Dir:        args[0],
		Extensions: watchExtensions,
		Debounce:   watchDebounce,
	})

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}

	cmd.Printf("Watching %s (extensions: %v). Press Ctrl-C to stop.\n", args[0], watchExtensions)

	<-ctx.Done()

	if err := w.Stop(); err != nil {
		return fmt.Errorf("stopping watcher: %w", err)
	}

	cmd.Println("Stopped.")
	return nil
}
