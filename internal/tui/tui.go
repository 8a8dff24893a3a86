// Package tui is an interactive terminal front end for semantic search
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"newsdesk/internal/search"
	"newsdesk/internal/vectorstore"
)

// Searcher answers semantic queries
type Searcher interface {
	Search(ctx context.Context, query string, opts search.Options) ([]vectorstore.SearchResult, error)
}

// resultsMsg carries the outcome of one search back to Update.
type resultsMsg struct {
	query   string
	results []vectorstore.SearchResult
	err     error
}

// Model is the Bubble Tea model for the search UI.
type Model struct {
	ctx      context.Context
	searcher Searcher
	opts     search.Options
	timeout  time.Duration

	input    textinput.Model
	spinner  spinner.Model
	detail   viewport.Model
	results  []vectorstore.SearchResult
	cursor   int
	query    string
	status   string
	loading  bool
	width    int
	height   int
	ready    bool
	quitting bool
}

// New creates a search UI model.
func New(ctx context.Context, searcher Searcher, opts search.Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Search news and press Enter"
	ti.CharLimit = 500
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return Model{
		ctx:      ctx,
		searcher: searcher,
		opts:     opts,
		timeout:  time.Minute,
		input:    ti,
		spinner:  sp,
		detail:   viewport.New(0, 0),
		status:   "Type a query to search stored articles.",
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model accordingly.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case resultsMsg:
		m.loading = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.results = nil
		} else {
			m.results = msg.results
			m.status = fmt.Sprintf("%d results for %q", len(msg.results), msg.query)
		}
		m.cursor = 0
		m.detail.SetContent(m.renderDetail())
		m.detail.GotoTop()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.loading {
				return m, nil
			}
			m.query = q
			m.loading = true
			m.status = fmt.Sprintf("Searching for %q", q)
			return m, tea.Batch(m.spinner.Tick, m.runSearch(q))
		case "up", "ctrl+p":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.detail.SetContent(m.renderDetail())
				m.detail.GotoTop()
			}
			return m, nil
		case "down", "ctrl+n":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.detail.SetContent(m.renderDetail())
				m.detail.GotoTop()
			}
			return m, nil
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) runSearch(query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
		defer cancel()
		results, err := m.searcher.Search(ctx, query, m.opts)
		return resultsMsg{query: query, results: results, err: err}
	}
}

func (m *Model) resize() {
	paneWidth := m.width/2 - 4
	if paneWidth < 20 {
		paneWidth = 20
	}
	paneHeight := m.height - 8
	if paneHeight < 3 {
		paneHeight = 3
	}
	m.detail.Width = paneWidth
	m.detail.Height = paneHeight
	m.input.Width = m.width - 6
	m.detail.SetContent(m.renderDetail())
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	paneWidth := m.detail.Width
	list := paneStyle.Width(paneWidth).Height(m.detail.Height).Render(m.renderList())
	detail := paneStyle.Width(paneWidth).Height(m.detail.Height).Render(m.detail.View())
	main := lipgloss.JoinHorizontal(lipgloss.Top, list, detail)

	status := statusStyle.Render(m.status)
	if m.loading {
		status = m.spinner.View() + " " + status
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("newsdesk search"),
		inputStyle.Render(m.input.View()),
		main,
		status,
		helpStyle.Render("[enter] search  [↑/↓] select  [pgup/pgdn] scroll  [esc] quit"),
	)
}

func (m Model) renderList() string {
	if len(m.results) == 0 {
		return mutedStyle.Render("No results yet.")
	}
	var b strings.Builder
	for i, r := range m.results {
		line := fmt.Sprintf("%3.0f%%  %s", r.Similarity*100, r.Article.Title)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderDetail() string {
	if len(m.results) == 0 || m.cursor >= len(m.results) {
		return ""
	}
	r := m.results[m.cursor]
	a := r.Article

	var b strings.Builder
	b.WriteString(titleStyle.Render(a.Title) + "\n")
	meta := a.Source
	if a.PublishedDate != nil {
		meta += " · " + a.PublishedDate.Format("Jan 2, 2006")
	}
	b.WriteString(mutedStyle.Render(meta) + "\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("score %.3f", r.Similarity)) + "\n\n")
	if a.HasSummary() {
		b.WriteString(a.Summary + "\n\n")
	} else if a.Content != "" {
		b.WriteString(a.Content + "\n\n")
	}
	b.WriteString(linkStyle.Render(a.Link))
	return lipgloss.NewStyle().Width(m.detail.Width).Render(b.String())
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	inputStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	paneStyle     = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	linkStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Underline(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	spinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)

// Run starts the search UI and blocks until the user quits.
func Run(ctx context.Context, searcher Searcher, opts search.Options) error {
	p := tea.NewProgram(New(ctx, searcher, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run search UI: %w", err)
	}
	return nil
}
