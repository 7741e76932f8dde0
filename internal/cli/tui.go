package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/matzehuels/gremlin/pkg/errors"
	"github.com/matzehuels/gremlin/pkg/fetch"
	"github.com/matzehuels/gremlin/pkg/integrations/npms"
)

const (
	browseTitle       = "Gremlin"
	browsePlaceholder = "Search NPM packages"
	skeletonRows      = 10
	linesPerResult    = 3
)

// =============================================================================
// Messages
// =============================================================================

// debounceMsg fires once the query has been stable for the debounce window.
// Only the message carrying the latest seq triggers a search.
type debounceMsg struct {
	seq   int
	query string
}

// stateChangedMsg reports that the searcher published a new state.
type stateChangedMsg struct{}

// =============================================================================
// BrowseModel - Interactive package search
// =============================================================================

// BrowseModel is the bubbletea model for searching npm as you type.
type BrowseModel struct {
	searcher    *npms.Searcher
	ctx         context.Context
	changed     chan struct{}
	unsubscribe func()
	debounce    time.Duration
	theme       theme

	query    string
	seq      int
	state    fetch.State[npms.Suggestions]
	inputErr string

	Cursor   int
	Offset   int
	Height   int // visible results
	Width    int
	Selected *npms.PackageResult
}

// NewBrowseModel creates a browse model bound to searcher. The model
// subscribes to searcher immediately; quitting the model unsubscribes and
// stops observing in-flight searches.
func NewBrowseModel(ctx context.Context, searcher *npms.Searcher, debounce time.Duration, themeName string) BrowseModel {
	changed := make(chan struct{}, 1)
	unsubscribe := searcher.Subscribe(func(fetch.State[npms.Suggestions]) {
		select {
		case changed <- struct{}{}:
		default: // a wakeup is already pending
		}
	})
	return BrowseModel{
		searcher:    searcher,
		ctx:         ctx,
		changed:     changed,
		unsubscribe: unsubscribe,
		debounce:    debounce,
		theme:       newTheme(themeName),
		state:       searcher.State(),
		Height:      5,
	}
}

// waitForChange blocks until the searcher publishes again.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return stateChangedMsg{}
	}
}

func (m BrowseModel) Init() tea.Cmd {
	return waitForChange(m.changed)
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case debounceMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		return m.search(msg.query), nil
	case stateChangedMsg:
		m.state = m.searcher.State()
		m.clampCursor()
		return m, waitForChange(m.changed)
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = (msg.Height - 8) / linesPerResult
		if m.Height < 1 {
			m.Height = 1
		}
		m.clampCursor()
	}
	return m, nil
}

func (m BrowseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.teardown()
		return m, tea.Quit
	case "ctrl+t":
		m.theme = m.theme.toggle()
		return m, nil
	case "up":
		if m.Cursor > 0 {
			m.Cursor--
			if m.Cursor < m.Offset {
				m.Offset = m.Cursor
			}
		}
		return m, nil
	case "down":
		if m.Cursor < len(m.results())-1 {
			m.Cursor++
			if m.Cursor >= m.Offset+m.Height {
				m.Offset = m.Cursor - m.Height + 1
			}
		}
		return m, nil
	case "enter":
		results := m.results()
		if len(results) == 0 {
			return m, nil
		}
		m.Selected = &results[m.Cursor]
		m.teardown()
		return m, tea.Quit
	}

	switch msg.Type {
	case tea.KeyBackspace:
		if m.query == "" {
			return m, nil
		}
		r := []rune(m.query)
		m.query = string(r[:len(r)-1])
	case tea.KeyRunes, tea.KeySpace:
		m.query += string(msg.Runes)
		if msg.Type == tea.KeySpace && len(msg.Runes) == 0 {
			m.query += " "
		}
	default:
		return m, nil
	}
	return m, m.scheduleSearch()
}

// scheduleSearch restarts the debounce window for the current query.
func (m *BrowseModel) scheduleSearch() tea.Cmd {
	m.seq++
	seq, query := m.seq, m.query
	return tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return debounceMsg{seq: seq, query: query}
	})
}

// search triggers a request for query. Blank queries are ignored.
func (m BrowseModel) search(query string) BrowseModel {
	if strings.TrimSpace(query) == "" {
		m.inputErr = ""
		return m
	}
	if err := m.searcher.Search(m.ctx, query); err != nil {
		m.inputErr = errors.UserMessage(err)
		if !errors.Is(err, errors.ErrCodeInvalidQuery) {
			m.inputErr = "Cannot search: " + m.inputErr
		}
		return m
	}
	m.inputErr = ""
	m.Cursor, m.Offset = 0, 0
	m.state = m.searcher.State()
	return m
}

// teardown releases the subscription and suppresses pending results.
func (m BrowseModel) teardown() {
	m.searcher.Stop()
	m.unsubscribe()
}

func (m BrowseModel) results() []npms.PackageResult {
	if !m.state.Succeeded() {
		return nil
	}
	return m.state.Data
}

func (m *BrowseModel) clampCursor() {
	n := len(m.results())
	if m.Cursor >= n {
		m.Cursor = max(n-1, 0)
	}
	if m.Offset > m.Cursor {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// =============================================================================
// View
// =============================================================================

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(m.theme.title.Render(browseTitle))
	b.WriteString("\n")
	b.WriteString(m.renderInput())
	b.WriteString("\n\n")

	switch {
	case m.inputErr != "":
		b.WriteString(m.renderAlert(m.inputErr))
	case m.state.Loading():
		b.WriteString(m.renderSkeleton())
	case m.state.Failed():
		b.WriteString(m.renderAlert(m.state.Message()))
	case m.state.Succeeded():
		b.WriteString(m.renderResults())
	default:
		b.WriteString(m.theme.help.Render("  Start typing to search"))
	}

	b.WriteString("\n\n")
	b.WriteString(m.theme.help.Render("↑/↓ navigate  ⏎ open  ctrl+t theme  esc quit"))
	return b.String()
}

func (m BrowseModel) renderInput() string {
	text := m.query + "█"
	if m.query == "" {
		text = m.theme.placeholder.Render(browsePlaceholder)
	}
	width := 40
	if m.Width > 4 {
		width = m.Width - 4
	}
	return m.theme.input.Width(width).Render(text)
}

func (m BrowseModel) renderAlert(msg string) string {
	body := m.theme.alertTitle.Render("Error") + "\n" + "The following error occurred: " + msg
	return m.theme.alert.Render(body)
}

func (m BrowseModel) renderSkeleton() string {
	width := 36
	if m.Width > 8 {
		width = min(m.Width-8, 60)
	}
	rows := make([]string, skeletonRows)
	for i := range rows {
		w := width - (i%3)*width/4
		rows[i] = "  " + m.theme.skeleton.Render(strings.Repeat("░", w))
	}
	return strings.Join(rows, "\n")
}

func (m BrowseModel) renderResults() string {
	results := m.state.Data
	if len(results) == 0 {
		return m.theme.help.Render(fmt.Sprintf("  No packages found for %q", strings.TrimSpace(m.query)))
	}

	descWidth := 72
	if m.Width > 8 {
		descWidth = m.Width - 6
	}

	end := min(m.Offset+m.Height, len(results))
	blocks := make([]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		r := results[i].Package
		cursor, nameStyle := "  ", m.theme.pkgName
		if i == m.Cursor {
			cursor, nameStyle = "▸ ", m.theme.selected
		}
		lines := []string{
			cursor + nameStyle.Render(r.Name) + " " + m.theme.version.Render(r.Version),
			"    " + m.theme.desc.Render(ansi.Truncate(r.Description, descWidth, "…")),
			"    " + m.theme.link.Render(r.Links.Npm),
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}

	footer := m.theme.help.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(results)))
	return lipgloss.JoinVertical(lipgloss.Left, strings.Join(blocks, "\n"), "", footer)
}
