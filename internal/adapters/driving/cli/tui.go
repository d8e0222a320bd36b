package cli

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/praxis-labs/knowctl/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive search interface",
	Long: `Launch the interactive terminal interface for searching the
knowledge base.

Controls:
  Enter - Search
  Tab   - Toggle keyword/similarity mode
  ↑/↓   - Navigate results
  Ctrl-C - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	p := tea.NewProgram(tui.New(searchService), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
