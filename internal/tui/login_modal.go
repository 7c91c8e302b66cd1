package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SignIn runs the password flow
type SignIn interface {
	SignInWithPassword(ctx context.Context, username, password string) (bool, error)
}

// loginResultMsg carries the outcome of a sign in attempt
type loginResultMsg struct {
	ok  bool
	err error
}

// LoginModal collects credentials and signs in
type LoginModal struct {
	auth       SignIn
	inputs     []textinput.Model
	focused    int
	submitting bool
	err        error
}

// NewLoginModal creates the login modal with the username field focused
func NewLoginModal(auth SignIn) LoginModal {
	username := textinput.New()
	username.Placeholder = "email"
	username.CharLimit = 256
	username.Width = 40
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 256
	password.Width = 40

	return LoginModal{auth: auth, inputs: []textinput.Model{username, password}}
}

// Init returns the cursor blink command
func (m LoginModal) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input and submission. Closing the modal is left to the parent.
func (m LoginModal) Update(msg tea.Msg) (LoginModal, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.submitting = false
		switch {
		case msg.err != nil:
			m.err = msg.err
		case !msg.ok:
			m.err = errors.New("sign in needs another step, use realtor login")
		default:
			m.err = nil
			m.inputs[1].SetValue("")
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			m.focused = (m.focused + 1) % len(m.inputs)
			return m, m.focus()
		case "enter":
			if m.submitting {
				return m, nil
			}
			if m.focused == 0 {
				m.focused = 1
				return m, m.focus()
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m LoginModal) focus() tea.Cmd {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		if i == m.focused {
			cmds[i] = m.inputs[i].Focus()
			continue
		}
		m.inputs[i].Blur()
	}
	return tea.Batch(cmds...)
}

func (m LoginModal) submit() (LoginModal, tea.Cmd) {
	username := strings.TrimSpace(m.inputs[0].Value())
	password := m.inputs[1].Value()
	if username == "" || password == "" {
		m.err = errors.New("email and password are required")
		return m, nil
	}

	m.submitting = true
	m.err = nil
	auth := m.auth
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		ok, err := auth.SignInWithPassword(ctx, username, password)
		return loginResultMsg{ok: ok, err: err}
	}
}

// View renders the modal
func (m LoginModal) View() string {
	var sb strings.Builder
	sb.WriteString(editHeaderStyle.Render("Sign in"))
	sb.WriteString("\n\n")
	for _, input := range m.inputs {
		sb.WriteString(input.View())
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	switch {
	case m.submitting:
		sb.WriteString(statusMessageStyle("Signing in..."))
	case m.err != nil:
		sb.WriteString(errorMessageStyle(m.err.Error()))
	default:
		sb.WriteString(helpStyle.Render("(enter to sign in, tab to switch, esc to close)"))
	}
	return modalStyle.Render(lipgloss.NewStyle().Width(44).Render(sb.String()))
}
