package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/todo/internal/model"
	"github.com/Makepad-fr/todo/internal/todo"
	"github.com/Makepad-fr/todo/internal/ui"
)

// listItem adapts model.Item to bubbles/list.Item
type listItem struct{ model.Item }

func (i listItem) Title() string       { return i.Text }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.Text }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	t := ui.Current()
	box := t.Muted.Render(t.BoxUnchecked)
	text := it.Text
	if it.Completed {
		box = t.Success.Render(t.BoxChecked)
		text = t.Done.Render(text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s", prefix, box, text)
}

var (
	addKey    = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	toggleKey = key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "toggle"))
	deleteKey = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	clearKey  = key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear done"))
	quitKey   = key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit"))
)

// tuiModel drives the interactive list. Every mutating key goes straight to
// the store, so each action is persisted as it happens.
type tuiModel struct {
	store *todo.Store
	list  list.Model

	adding bool
	input  textinput.Model

	// status is the last error or validation message, cleared on the next key.
	status string
}

func newTUIModel(st *todo.Store) tuiModel {
	l := list.New(nil, itemDelegate{}, 80, 20)
	t := ui.Current()
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.Styles.Title = t.Title
	l.Styles.HelpStyle = t.Help
	l.Styles.PaginationStyle = t.Help
	l.SetStatusBarItemName("item", "items")
	l.KeyMap.Quit.SetEnabled(false)
	extra := func() []key.Binding { return []key.Binding{addKey, toggleKey, deleteKey, clearKey, quitKey} }
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "Add a new todo..."
	in.CharLimit = 200

	m := tuiModel{store: st, list: l, input: in}
	m.refresh("")
	return m
}

// refresh reloads the list from the store's display order and keeps the
// cursor on selectID when it is still present.
func (m *tuiModel) refresh(selectID string) {
	view := m.store.DisplayOrder()
	items := make([]list.Item, 0, len(view))
	sel := -1
	for i, it := range view {
		items = append(items, listItem{it})
		if it.ID == selectID {
			sel = i
		}
	}
	m.list.SetItems(items)
	m.list.Title = header(view)
	if sel >= 0 {
		m.list.Select(sel)
	}
}

func (m tuiModel) selected() (model.Item, bool) {
	li, ok := m.list.SelectedItem().(listItem)
	return li.Item, ok
}

func (m tuiModel) hasCompleted() bool {
	for _, it := range m.store.Items() {
		if it.Completed {
			return true
		}
	}
	return false
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wm, ok := msg.(tea.WindowSizeMsg); ok {
		m.list.SetSize(wm.Width-4, wm.Height-6)
		m.input.Width = wm.Width - 10
		return m, nil
	}

	// add mode
	if m.adding {
		if km, ok := msg.(tea.KeyMsg); ok {
			switch km.String() {
			case "enter":
				it, added, err := m.store.Add(m.input.Value())
				if err != nil {
					m.status = err.Error()
					return m, nil
				}
				if !added {
					m.status = "Title cannot be empty"
					return m, nil
				}
				m.status = ""
				m.adding = false
				m.input.SetValue("")
				m.input.Blur()
				m.refresh(it.ID)
				return m, nil
			case "esc":
				m.status = ""
				m.adding = false
				m.input.SetValue("")
				m.input.Blur()
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		m.status = ""
		switch {
		case key.Matches(km, quitKey):
			return m, tea.Quit
		case key.Matches(km, addKey):
			m.adding = true
			m.input.SetValue("")
			cmd := m.input.Focus()
			return m, cmd
		case key.Matches(km, toggleKey):
			if it, ok := m.selected(); ok {
				if _, err := m.store.Toggle(it.ID); err != nil {
					m.status = err.Error()
				}
				m.refresh(it.ID)
			}
			return m, nil
		case key.Matches(km, deleteKey):
			if it, ok := m.selected(); ok {
				idx := m.list.Index()
				if _, err := m.store.Delete(it.ID); err != nil {
					m.status = err.Error()
				}
				m.refresh("")
				if n := len(m.list.Items()); idx >= n && n > 0 {
					m.list.Select(n - 1)
				}
			}
			return m, nil
		case key.Matches(km, clearKey):
			if m.hasCompleted() {
				if _, err := m.store.ClearCompleted(); err != nil {
					m.status = err.Error()
				}
				sel, _ := m.selected()
				m.refresh(sel.ID)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m tuiModel) View() string {
	t := ui.Current()
	content := m.list.View()
	if m.adding {
		title := "Add new item"
		if m.status != "" {
			title += " - " + t.Error.Render(m.status)
		}
		content += "\n" + ui.Panel([]string{title, m.input.View()})
	} else if m.status != "" {
		content += "\n" + t.Error.Render(t.SymFail+" "+m.status)
	}
	if len(m.list.Items()) == 0 {
		content += "\n" + t.Muted.Render("no items - press a to add one")
	}
	return ui.Panel(strings.Split(content, "\n"))
}

// runInteractive starts the Bubble Tea program on the app's store.
func runInteractive(a *app) error {
	st, err := a.todos()
	if err != nil {
		return err
	}
	p := tea.NewProgram(newTUIModel(st), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
