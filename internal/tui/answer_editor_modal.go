package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

type errMsg error

// AnswerEditorModal holds the textarea and error state for the answer editor.
type AnswerEditorModal struct {
	textarea textarea.Model
	err      error
}

// NewAnswerModal creates an AnswerEditorModal with a focused textarea holding initial.
func NewAnswerModal(initial string) AnswerEditorModal {
	ti := textarea.New()
	ti.Placeholder = "Write the answer visitors should get..."
	ti.SetWidth(72)
	ti.SetHeight(8)
	ti.CharLimit = 4000
	ti.SetValue(initial)
	ti.Focus()

	return AnswerEditorModal{textarea: ti}
}

// Init returns the initial command for the modal (textarea blink).
func (m AnswerEditorModal) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages for the modal, including key events and errors.
func (m AnswerEditorModal) Update(msg tea.Msg) (AnswerEditorModal, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		default:
			if !m.textarea.Focused() {
				cmd = m.textarea.Focus()
				cmds = append(cmds, cmd)
			}
		}
	case errMsg:
		m.err = msg
		return m, nil
	}

	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// Answer returns the current value of the textarea.
func (m AnswerEditorModal) Answer() string {
	return m.textarea.Value()
}

// View renders the modal UI.
func (m AnswerEditorModal) View(question string) string {
	view := fmt.Sprintf(
		"%s\n\n%s\n\n%s",
		editHeaderStyle.Render(question),
		m.textarea.View(),
		"(ctrl+s to save, esc to cancel)",
	)
	if m.err != nil {
		view += "\n\n" + errorMessageStyle(m.err.Error())
	}
	return view + "\n\n"
}
