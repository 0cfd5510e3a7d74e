package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/worldbuilder/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	RunView ViewState = iota
	ResultView
)

var _ list.DefaultItem = taskItem{}

// taskItem is the latest known state of one instance.
type taskItem struct {
	id     string
	name   string
	phase  tasks.Phase
	step   int
	total  int
	err    error
	marker string
}

func (i taskItem) FilterValue() string { return i.name }
func (i taskItem) Title() string       { return fmt.Sprintf("%s %s", i.marker, i.name) }
func (i taskItem) Description() string {
	switch i.phase {
	case tasks.Failed:
		return fmt.Sprintf("failed: %v", i.err)
	case tasks.Completed:
		return fmt.Sprintf("done • %d operations", i.step)
	default:
		return fmt.Sprintf("%d/%d operations • %s", i.step, i.total, shortID(i.id))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

type progressUpdateMsg tasks.ProgressUpdate

type runCompleteMsg struct {
	err error
}

// Model represents the TUI application state.
type Model struct {
	view    ViewState
	updates <-chan tasks.ProgressUpdate
	wait    func() error
	items   []taskItem
	index   map[string]int
	list    list.Model
	bar     progress.Model
	width   int
	height  int
	err     error
	help    help.Model
	keys    keyMap
}

// NewModel creates a model that renders updates until the channel closes, then reports wait's result.
func NewModel(updates <-chan tasks.ProgressUpdate, wait func() error) *Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Edits"
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	return &Model{
		view:    RunView,
		updates: updates,
		wait:    wait,
		index:   make(map[string]int),
		list:    l,
		bar:     progress.New(progress.WithDefaultGradient()),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

func (m *Model) Init() tea.Cmd {
	return m.waitForProgress()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)
		m.bar.Width = max(10, msg.Width-8)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

	case progressUpdateMsg:
		m.apply(tasks.ProgressUpdate(msg))
		return m, m.waitForProgress()

	case runCompleteMsg:
		m.err = msg.err
		m.view = ResultView
		for i := range m.items {
			if m.items[i].phase != tasks.Failed {
				m.items[i].phase = tasks.Completed
				m.items[i].marker = "✓"
			}
		}
		m.syncList()
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case RunView:
		return m.renderRun()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

// Progress returns the overall completed fraction across every known task.
func (m *Model) Progress() float64 {
	var done, total int
	for _, it := range m.items {
		if it.phase == tasks.Completed || it.phase == tasks.Failed {
			done += max(it.step, it.total)
			total += max(it.step, it.total)
			continue
		}
		done += it.step
		total += max(it.step, it.total)
	}
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total)
}

func (m *Model) apply(u tasks.ProgressUpdate) {
	i, ok := m.index[u.ID]
	if !ok {
		i = len(m.items)
		m.index[u.ID] = i
		m.items = append(m.items, taskItem{id: u.ID, name: u.Task})
	}

	it := &m.items[i]
	it.phase, it.step, it.total = u.Phase, u.Step, u.Total
	switch u.Phase {
	case tasks.Failed:
		it.err = u.Err
		it.marker = "✗"
	case tasks.Completed:
		if it.err != nil {
			it.phase = tasks.Failed
		} else {
			it.marker = "✓"
		}
	default:
		it.marker = "•"
	}
	m.syncList()
}

func (m *Model) syncList() {
	items := make([]list.Item, len(m.items))
	for i, it := range m.items {
		items[i] = it
	}
	m.list.SetItems(items)
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.updates
		if !ok {
			var err error
			if m.wait != nil {
				err = m.wait()
			}
			return runCompleteMsg{err: err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderRun() string {
	title := styles.title.Render("Running edits")
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, m.bar.ViewAs(m.Progress()), m.list.View(), m.help.View(m.keys))
}

func (m *Model) renderResult() string {
	var b strings.Builder
	if m.err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("Run failed: %v", m.err)))
	} else {
		b.WriteString(styles.ok.Render("✓ All edits finished"))
	}
	b.WriteString("\n")

	failed := 0
	for _, it := range m.items {
		if it.phase == tasks.Failed {
			failed++
		}
	}
	b.WriteString(fmt.Sprintf("\nTasks: %d  Failed: %d\n", len(m.items), failed))
	for _, it := range m.items {
		line := fmt.Sprintf("  %s - %s", it.Title(), it.Description())
		if it.phase == tasks.Failed {
			line = styles.warn.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{m.keys.quit}))
	return b.String()
}
