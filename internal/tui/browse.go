// Package tui provides the interactive record browser. It wraps a
// listquery.View in a Bubble Tea program: typing a search term, cycling a
// filter, or changing the page size re-derives the visible page through the
// same engine the non-interactive list commands use.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tallyhq/tally/internal/listquery"
)

// focusArea tracks which control owns the keyboard. Only one control is
// active at a time; Esc always returns to the table.
type focusArea int

const (
	focusTable focusArea = iota
	focusSearch
)

// KeyMap defines the browser keyboard shortcuts.
type KeyMap struct {
	NextPage     key.Binding
	PrevPage     key.Binding
	FirstPage    key.Binding
	LastPage     key.Binding
	Search       key.Binding
	CycleFilter  key.Binding
	NextFilter   key.Binding
	GrowPage     key.Binding
	ShrinkPage   key.Binding
	ClearFilters key.Binding
	Quit         key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextPage: key.NewBinding(
			key.WithKeys("l", "right", "n"),
			key.WithHelp("→/l", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("h", "left", "p"),
			key.WithHelp("←/h", "prev page"),
		),
		FirstPage: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "first page"),
		),
		LastPage: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "last page"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		CycleFilter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "cycle filter value"),
		),
		NextFilter: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next filter"),
		),
		GrowPage: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "bigger pages"),
		),
		ShrinkPage: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "smaller pages"),
		),
		ClearFilters: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear search and filters"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Filter describes one cyclable filter: its name in the listquery config and
// the values a user can step through. The All sentinel is prepended
// automatically.
type Filter struct {
	Name   string
	Values []string
}

// Options configures a browser session.
type Options[T any] struct {
	Title   string
	Columns []string
	// Row renders one record into table cells, one per column.
	Row     func(T) []string
	Filters []Filter
}

// Model is the Bubble Tea model for the record browser.
type Model[T any] struct {
	view    *listquery.View[T]
	opts    Options[T]
	keys    KeyMap
	search  textinput.Model
	focus   focusArea
	filter  int
	width   int
	styles  styles
	filters []Filter
}

type styles struct {
	title  lipgloss.Style
	header lipgloss.Style
	cell   lipgloss.Style
	active lipgloss.Style
	footer lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2E86AB")),
		header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		cell:   lipgloss.NewStyle(),
		active: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFE66D")),
		footer: lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
	}
}

// NewModel creates a browser over records with the given query config.
func NewModel[T any](records []T, cfg listquery.Config[T], opts Options[T]) Model[T] {
	search := textinput.New()
	search.Placeholder = "search"
	search.CharLimit = 128
	search.Width = 32

	filters := make([]Filter, len(opts.Filters))
	for i, f := range opts.Filters {
		values := append([]string{listquery.FilterAll}, f.Values...)
		filters[i] = Filter{Name: f.Name, Values: values}
	}

	return Model[T]{
		view:    listquery.New(records, cfg),
		opts:    opts,
		keys:    DefaultKeyMap(),
		search:  search,
		styles:  defaultStyles(),
		filters: filters,
	}
}

// Init implements tea.Model.
func (m Model[T]) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if m.focus == focusSearch {
			return m.updateSearch(msg)
		}
		return m.updateTable(msg)
	}
	return m, nil
}

func (m Model[T]) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.focus = focusTable
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	// Live search: the view re-filters on every keystroke.
	m.view.SetSearch(m.search.Value())
	return m, cmd
}

func (m Model[T]) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Search):
		m.focus = focusSearch
		m.search.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.NextPage):
		m.view.SetPage(m.view.CurrentPage() + 1)
	case key.Matches(msg, m.keys.PrevPage):
		m.view.SetPage(m.view.CurrentPage() - 1)
	case key.Matches(msg, m.keys.FirstPage):
		m.view.SetPage(1)
	case key.Matches(msg, m.keys.LastPage):
		m.view.SetPage(m.view.TotalPages())
	case key.Matches(msg, m.keys.GrowPage):
		m.stepPageSize(1)
	case key.Matches(msg, m.keys.ShrinkPage):
		m.stepPageSize(-1)
	case key.Matches(msg, m.keys.NextFilter):
		if len(m.filters) > 0 {
			m.filter = (m.filter + 1) % len(m.filters)
		}
	case key.Matches(msg, m.keys.CycleFilter):
		m.cycleFilterValue()
	case key.Matches(msg, m.keys.ClearFilters):
		m.search.SetValue("")
		m.view.SetSearch("")
		for _, f := range m.filters {
			m.view.SetFilter(f.Name, listquery.FilterAll)
		}
	}
	return m, nil
}

// stepPageSize moves one option up or down the allowed page-size list.
func (m *Model[T]) stepPageSize(direction int) {
	sizes := m.view.PageSizes()
	current := m.view.PageSize()
	for i, size := range sizes {
		if size == current {
			next := i + direction
			if next >= 0 && next < len(sizes) {
				m.view.SetPageSize(sizes[next])
			}
			return
		}
	}
}

// cycleFilterValue advances the active filter to its next value, wrapping
// back to All.
func (m *Model[T]) cycleFilterValue() {
	if len(m.filters) == 0 {
		return
	}
	f := m.filters[m.filter]
	current := m.view.FilterValue(f.Name)
	next := f.Values[0]
	for i, value := range f.Values {
		if value == current {
			next = f.Values[(i+1)%len(f.Values)]
			break
		}
	}
	m.view.SetFilter(f.Name, next)
}

// View implements tea.Model.
func (m Model[T]) View() string {
	var b strings.Builder

	b.WriteString(m.styles.title.Render(m.opts.Title))
	b.WriteString("\n\n")

	b.WriteString(m.renderQueryBar())
	b.WriteString("\n\n")

	b.WriteString(m.renderTable())
	b.WriteString("\n")

	b.WriteString(m.styles.footer.Render(fmt.Sprintf(
		"page %d/%d · %d records · page size %d",
		m.view.CurrentPage(), m.view.TotalPages(), m.view.TotalFiltered(), m.view.PageSize())))
	b.WriteString("\n")
	b.WriteString(m.styles.footer.Render(
		"/ search · tab/f filters · ←/→ pages · +/- page size · c clear · q quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model[T]) renderQueryBar() string {
	parts := make([]string, 0, len(m.filters)+1)

	searchLabel := "search: " + m.search.View()
	if m.focus == focusSearch {
		searchLabel = m.styles.active.Render("search: ") + m.search.View()
	}
	parts = append(parts, searchLabel)

	for i, f := range m.filters {
		label := fmt.Sprintf("%s: %s", f.Name, m.view.FilterValue(f.Name))
		if i == m.filter && m.focus == focusTable {
			label = m.styles.active.Render(label)
		}
		parts = append(parts, label)
	}

	return strings.Join(parts, "    ")
}

func (m Model[T]) renderTable() string {
	page := m.view.Page()

	widths := make([]int, len(m.opts.Columns))
	for i, col := range m.opts.Columns {
		widths[i] = lipgloss.Width(col)
	}
	rows := make([][]string, len(page))
	for i, record := range page {
		cells := m.opts.Row(record)
		rows[i] = cells
		for j, cell := range cells {
			if j < len(widths) && lipgloss.Width(cell) > widths[j] {
				widths[j] = lipgloss.Width(cell)
			}
		}
	}

	var b strings.Builder
	for i, col := range m.opts.Columns {
		b.WriteString(m.styles.header.Render(pad(col, widths[i])))
		b.WriteString("  ")
	}
	b.WriteString("\n")

	if len(rows) == 0 {
		b.WriteString(m.styles.footer.Render("no records match the current query"))
		b.WriteString("\n")
		return b.String()
	}

	for _, cells := range rows {
		for i, cell := range cells {
			if i >= len(widths) {
				break
			}
			b.WriteString(m.styles.cell.Render(pad(cell, widths[i])))
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}

	return b.String()
}

func pad(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// Browse runs the interactive browser until the user quits.
func Browse[T any](records []T, cfg listquery.Config[T], opts Options[T]) error {
	program := tea.NewProgram(NewModel(records, cfg, opts), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
