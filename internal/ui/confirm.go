package ui

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	buttonYes = 0
	buttonNo  = 1
)

// confirmModel is a yes/no dialog. No is selected initially so a stray Enter
// never starts an uninstall.
type confirmModel struct {
	title    string
	message  string
	selected int
	answered bool
	accepted bool
}

func newConfirmModel(title, message string) confirmModel {
	return confirmModel{title: title, message: message, selected: buttonNo}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "left", "right", "h", "l", "tab", "shift+tab":
		m.selected = 1 - m.selected
		return m, nil
	case "y", "Y":
		return m.answer(true)
	case "n", "N", "esc", "ctrl+c", "q":
		return m.answer(false)
	case "enter", " ":
		return m.answer(m.selected == buttonYes)
	}
	return m, nil
}

func (m confirmModel) answer(yes bool) (tea.Model, tea.Cmd) {
	m.answered = true
	m.accepted = yes
	return m, tea.Quit
}

func (m confirmModel) View() string {
	if m.answered {
		return ""
	}

	yes, no := buttonStyle.Render("Yes"), buttonStyle.Render("No")
	if m.selected == buttonYes {
		yes = activeButtonStyle.Render("Yes")
	} else {
		no = activeButtonStyle.Render("No")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(m.message)
	b.WriteString("\n\n")
	b.WriteString(yes + " " + no)
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("y/n, ←/→ to choose, enter to confirm"))

	return boxStyle.Render(b.String()) + "\n"
}

// runConfirm shows the dialog on out, reading keys from in.
func runConfirm(in io.Reader, out io.Writer, title, message string) (bool, error) {
	p := tea.NewProgram(newConfirmModel(title, message), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("confirm prompt: %w", err)
	}
	m, ok := final.(confirmModel)
	if !ok {
		return false, fmt.Errorf("confirm prompt: unexpected model %T", final)
	}
	return m.answered && m.accepted, nil
}
