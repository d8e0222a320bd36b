// Package tui implements the interactive search interface.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/praxis-labs/knowctl/internal/core/domain"
	"github.com/praxis-labs/knowctl/internal/core/ports/driving"
)

// searchLimit caps results shown per query.
const searchLimit = 10

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	modeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	pathStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// Model is the Bubble Tea model for the search interface.
type Model struct {
	searcher driving.Searcher
	input    textinput.Model
	viewport viewport.Model
	results  []domain.SearchResult
	status   string
	cursor   int
	similar  bool
	ready    bool
}

// New creates the search model. The searcher decides whether similarity
// mode is available; when it yields no results the status line says so.
func New(searcher driving.Searcher) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type query and press Enter (Tab toggles similarity mode)"
	ti.Focus()
	ti.CharLimit = 0

	return Model{
		searcher: searcher,
		input:    ti,
		viewport: viewport.New(0, 0),
		status:   "Ready.",
	}
}

// Init starts the text input cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + qh + 1 // header line, status line, query frame, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width)
		m.viewport.Height = maxInt(3, vh-rh)
		m.viewport.SetContent(m.renderResults())
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}

		switch msg.String() {
		case "enter":
			if q := strings.TrimSpace(m.input.Value()); q != "" {
				m.runSearch(q)
				m.viewport.SetContent(m.renderResults())
				return m, nil
			}
		case "tab":
			m.similar = !m.similar
			return m, nil
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderResults())
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderResults())
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the interface.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	mode := "keyword"
	if m.similar {
		mode = "similarity"
	}

	header := headerStyle.Render("knowctl") + " " + modeStyle.Render("["+mode+"]")
	results := resultBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)

	return header + "\n" + results + "\n" + input + "\n" + status
}

func (m *Model) runSearch(query string) {
	ctx := context.Background()

	if m.similar {
		m.results = m.searcher.Similar(ctx, query, searchLimit)
	} else {
		m.results = m.searcher.Text(ctx, query, searchLimit)
	}

	m.cursor = 0
	if len(m.results) == 0 {
		m.status = fmt.Sprintf("No results for %q", query)
	} else {
		m.status = fmt.Sprintf("%d results for %q", len(m.results), query)
	}
}

func (m Model) renderResults() string {
	if len(m.results) == 0 {
		return "No results yet."
	}

	r := m.results[m.cursor]
	title := r.DocumentTitle
	if title == "" {
		title = r.Chunk.DocumentID
	}

	head := fmt.Sprintf("Result %d/%d  %s  score=%.3f", m.cursor+1, len(m.results), title, r.Score)
	path := pathStyle.Render(r.DocumentPath)

	return head + "\n" + path + "\n\n" + r.Chunk.Content
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
