// Package tui implements the read-only dashboard: a kanban summary and a
// tail of the active session log, refreshed on a timer. It never mutates
// the Store — all state changes flow through the Control Tool Surface
// from inside an agent invocation.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/forgeloop/forgeloop/internal/store"
	"github.com/forgeloop/forgeloop/pkg/models"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Model is the bubbletea model backing the dashboard.
type Model struct {
	store       store.FeatureStore
	sessions    store.SessionStore
	projectDir  string
	refreshRate time.Duration

	stats   models.KanbanStats
	active  *models.Session
	table   table.Model
	logView viewport.Model
	err     error
}

// New creates a dashboard Model over store, reading session log tails
// from projectDir/.autonomous.
func New(fs store.FeatureStore, ss store.SessionStore, projectDir string, refreshRate time.Duration) Model {
	cols := []table.Column{
		{Title: "category", Width: 20},
		{Title: "pending", Width: 8},
		{Title: "in_progress", Width: 12},
		{Title: "completed", Width: 10},
		{Title: "failed", Width: 8},
	}
	t := table.New(table.WithColumns(cols), table.WithFocused(false), table.WithHeight(8))

	return Model{
		store:       fs,
		sessions:    ss,
		projectDir:  projectDir,
		refreshRate: refreshRate,
		table:       t,
		logView:     viewport.New(80, 10),
	}
}

type tickMsg time.Time

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), m.tick())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refreshRate, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type refreshedMsg struct {
	stats   models.KanbanStats
	active  *models.Session
	logTail []string
	err     error
}

func (m Model) refresh() tea.Cmd {
	return func() tea.Msg {
		stats, err := m.store.KanbanStats()
		if err != nil {
			return refreshedMsg{err: err}
		}
		active, err := m.sessions.GetActiveSession()
		if err != nil {
			return refreshedMsg{err: err}
		}
		var tail []string
		if active != nil {
			tail = tailSessionLog(m.projectDir, active.ID, 200)
		}
		return refreshedMsg{stats: stats, active: active, logTail: tail}
	}
}

func tailSessionLog(projectDir string, sessionID int64, n int) []string {
	path := filepath.Join(projectDir, ".autonomous", fmt.Sprintf("session-%03d.log", sessionID))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.logView.Width = msg.Width
		m.logView.Height = msg.Height - 16
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tickMsg:
		return m, tea.Batch(m.refresh(), m.tick())
	case refreshedMsg:
		m.stats = msg.stats
		m.active = msg.active
		m.err = msg.err
		m.table.SetRows(categoryRows(msg.stats))
		m.logView.SetContent(strings.Join(msg.logTail, "\n"))
		m.logView.GotoBottom()
	}
	m.logView, cmd = m.logView.Update(msg)
	return m, cmd
}

func categoryRows(stats models.KanbanStats) []table.Row {
	categories := make([]string, 0, len(stats.ByCategory))
	for cat := range stats.ByCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	rows := make([]table.Row, 0, len(categories))
	for _, cat := range categories {
		cs := stats.ByCategory[cat]
		rows = append(rows, table.Row{
			cat,
			fmt.Sprintf("%d", cs.Pending),
			fmt.Sprintf("%d", cs.InProgress),
			fmt.Sprintf("%d", cs.Completed),
			fmt.Sprintf("%d", cs.Failed),
		})
	}
	return rows
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("forgeloop dashboard") + "\n\n")

	if m.err != nil {
		b.WriteString(failedStyle.Render(fmt.Sprintf("error: %v", m.err)) + "\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("total: %d   %s   %s   %s   %s\n\n",
		m.stats.Total,
		pendingStyle.Render(fmt.Sprintf("pending=%d", m.stats.ByStatus[models.FeatureStatusPending])),
		activeStyle.Render(fmt.Sprintf("in_progress=%d", m.stats.ByStatus[models.FeatureStatusInProgress])),
		doneStyle.Render(fmt.Sprintf("completed=%d", m.stats.ByStatus[models.FeatureStatusCompleted])),
		failedStyle.Render(fmt.Sprintf("failed=%d", m.stats.ByStatus[models.FeatureStatusFailed])),
	))

	b.WriteString(m.table.View() + "\n\n")

	if m.active != nil {
		b.WriteString(headerStyle.Render(fmt.Sprintf("session %d running", m.active.ID)) + "\n")
		b.WriteString(m.logView.View() + "\n")
	} else {
		b.WriteString(dimStyle.Render("no session currently running") + "\n")
	}

	b.WriteString("\n" + dimStyle.Render("q to quit"))
	return b.String()
}
