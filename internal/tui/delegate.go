package tui

import (
	"github.com/brizzai/realtor-cli/internal/tui/models"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// deleteQuestionMsg asks the list page to delete a question
type deleteQuestionMsg struct {
	id    string
	title string
}

// toggleUnansweredMsg flips the "unanswered only" filter
type toggleUnansweredMsg struct{}

// newItemDelegate returns a list.DefaultDelegate with custom update and help functions.
func newItemDelegate(keys *delegateKeyMap) list.DefaultDelegate {
	d := list.NewDefaultDelegate()

	d.UpdateFunc = func(msg tea.Msg, m *list.Model) tea.Cmd {
		keyMsg, ok := msg.(tea.KeyMsg)
		if !ok {
			return nil
		}

		if key.Matches(keyMsg, keys.unanswered) {
			return func() tea.Msg { return toggleUnansweredMsg{} }
		}

		item, ok := m.SelectedItem().(models.QuestionItem)
		if !ok {
			return nil
		}
		if key.Matches(keyMsg, keys.remove) {
			return func() tea.Msg {
				return deleteQuestionMsg{id: item.Question.QuestionID, title: item.Title()}
			}
		}
		return nil
	}

	help := []key.Binding{keys.remove, keys.unanswered}

	d.ShortHelpFunc = func() []key.Binding {
		return help
	}

	d.FullHelpFunc = func() [][]key.Binding {
		return [][]key.Binding{help}
	}

	return d
}

// delegateKeyMap holds key bindings for list item actions.
type delegateKeyMap struct {
	remove     key.Binding
	unanswered key.Binding
}

// ShortHelp returns additional short help entries for the delegate.
func (d delegateKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		d.remove,
		d.unanswered,
	}
}

// FullHelp returns additional full help entries for the delegate.
func (d delegateKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{
			d.remove,
			d.unanswered,
		},
	}
}

// newDelegateKeyMap creates a new delegateKeyMap with default bindings.
func newDelegateKeyMap() *delegateKeyMap {
	return &delegateKeyMap{
		remove: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "Delete question"),
		),
		unanswered: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "Toggle unanswered only"),
		),
	}
}
