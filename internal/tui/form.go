package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/greenfly/internal/validate"
)

func (m *Model) initForm() {
	m.rules = m.validation.Rules()
	m.formInputs = make([]textinput.Model, len(m.rules))
	for i, rule := range m.rules {
		m.formInputs[i] = newPromptInput(rule.Prompt + " : ")
	}
}

func (m *Model) startForm() tea.Cmd {
	m.screen = screenOptionsForm
	m.formError = ""
	for i, rule := range m.rules {
		if m.hasOptions {
			m.formInputs[i].SetValue(validate.FormatValue(m.options, rule.Field, rule.Kind))
		} else {
			m.formInputs[i].SetValue("")
		}
	}
	return m.setFormIndex(0)
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.formError = ""
		m.screen = screenMenu
		return m, nil
	case tea.KeyEnter:
		_, problem := validate.ParseInput(m.rules[m.formIndex], m.formInputs[m.formIndex].Value())
		if problem != "" {
			m.formError = problem
			return m, nil
		}
		m.formError = ""
		if m.formIndex == len(m.formInputs)-1 {
			return m, m.submitForm()
		}
		return m, m.setFormIndex(m.formIndex + 1)
	case tea.KeyTab, tea.KeyDown:
		return m, m.setFormIndex(m.formIndex + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.setFormIndex(m.formIndex - 1)
	}
	var cmd tea.Cmd
	m.formInputs[m.formIndex], cmd = m.formInputs[m.formIndex].Update(msg)
	return m, cmd
}

// submitForm re-checks every field so values edited after moving back are
// never applied unchecked.
func (m *Model) submitForm() tea.Cmd {
	opts := m.options
	for i, rule := range m.rules {
		value, problem := validate.ParseInput(rule, m.formInputs[i].Value())
		if problem != "" {
			m.formError = problem
			return m.setFormIndex(i)
		}
		validate.SetField(&opts, rule.Field, value)
	}
	if err := m.validation.Options(opts); err != nil {
		m.formError = err.Error()
		return nil
	}
	m.options = opts
	m.hasOptions = true
	m.engine = nil
	for i := range m.formInputs {
		m.formInputs[i].Blur()
	}
	m.screen = screenMenu
	m.setMessage("Starting options saved")
	return nil
}

func (m *Model) setFormIndex(idx int) tea.Cmd {
	count := len(m.formInputs)
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.formIndex = idx
	var cmd tea.Cmd
	for i := range m.formInputs {
		if i == m.formIndex {
			cmd = m.formInputs[i].Focus()
		} else {
			m.formInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) renderForm() string {
	lines := []string{titleStyle.Render("Set starting options"), ""}
	for i, input := range m.formInputs {
		view := input.View()
		if i != m.formIndex {
			view = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Render(view)
		}
		lines = append(lines, view)
	}
	if m.formError != "" {
		lines = append(lines, "", errorStyle.Render("ERROR: "+m.formError))
	}
	return strings.Join(lines, "\n")
}
