package terminal

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	selectedStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	unchangedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	changedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle      = lipgloss.NewStyle().Faint(true)
)

// --- listModel: single or multiple choice among labelled options ---

type option struct {
	label   string
	changed bool
}

type listModel struct {
	title    string
	options  []option
	multi    bool
	cursor   int
	checked  map[int]bool
	done     bool
	aborted  bool
	selected int
}

func newListModel(title string, options []option, multi, preselect bool) listModel {
	checked := make(map[int]bool, len(options))
	if multi && preselect {
		for i := range options {
			checked[i] = true
		}
	}
	return listModel{title: title, options: options, multi: multi, checked: checked, selected: -1}
}

func (m listModel) Init() tea.Cmd {
	return nil
}

func (m listModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "ctrl+c", "esc", "q":
		m.aborted = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case " ", "x":
		if m.multi {
			m.checked[m.cursor] = !m.checked[m.cursor]
		}
	case "a":
		if m.multi {
			all := len(m.chosen()) != len(m.options)
			for i := range m.options {
				m.checked[i] = all
			}
		}
	case "enter":
		if !m.multi && len(m.options) > 0 {
			m.selected = m.cursor
		}
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m listModel) View() string {
	if m.done || m.aborted {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title) + "\n")
	for i, opt := range m.options {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		box := ""
		if m.multi {
			box = "[ ] "
			if m.checked[i] {
				box = "[x] "
			}
		}
		label := unchangedStyle.Render(opt.label)
		if opt.changed {
			label = changedStyle.Render(opt.label)
		}
		if i == m.cursor {
			label = selectedStyle.Render(opt.label)
		}
		b.WriteString(cursor + box + label + "\n")
	}
	if m.multi {
		b.WriteString(hintStyle.Render("space: toggle, a: toggle all, enter: confirm, esc: abort") + "\n")
	} else {
		b.WriteString(hintStyle.Render("enter: select, esc: abort") + "\n")
	}
	return b.String()
}

// chosen returns the checked indexes in display order.
func (m listModel) chosen() []int {
	var indexes []int
	for i := range m.options {
		if m.checked[i] {
			indexes = append(indexes, i)
		}
	}
	return indexes
}

// --- inputModel: single line of free text ---

type inputModel struct {
	textInput textinput.Model
	title     string
	done      bool
	aborted   bool
}

func newInputModel(title string) inputModel {
	ti := textinput.New()
	ti.Focus()
	return inputModel{textInput: ti, title: title}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done || m.aborted {
		return ""
	}
	return titleStyle.Render(m.title) + "\n" + m.textInput.View() + "\n"
}

// --- confirmModel: yes/no question, defaults to no ---

type confirmModel struct {
	title   string
	value   bool
	done    bool
	aborted bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "ctrl+c", "esc":
		m.aborted = true
		return m, tea.Quit
	case "enter":
		m.done = true
		return m, tea.Quit
	case "y", "Y":
		m.value = true
		m.done = true
		return m, tea.Quit
	case "n", "N":
		m.value = false
		m.done = true
		return m, tea.Quit
	case "left", "right", "tab", "h", "l":
		m.value = !m.value
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done || m.aborted {
		return ""
	}
	yes := " Yes "
	no := " No "
	if m.value {
		yes = selectedStyle.Render(yes)
	} else {
		no = selectedStyle.Render(no)
	}
	return fmt.Sprintf("%s %s / %s\n", titleStyle.Render(m.title), yes, no)
}
