package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/brizzai/realtor-cli/internal/chat"
	"github.com/brizzai/realtor-cli/internal/state"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ChatAPI is the part of the chat client the chat page uses
type ChatAPI interface {
	SendMessage(ctx context.Context, prompt string, onChunk func(string)) (string, error)
	GetChatHistory(ctx context.Context) (*chat.ChatResponse, error)
	ClearChat(ctx context.Context) error
	GetSuggestions(ctx context.Context) ([]string, error)
	SessionID() string
}

// SessionMerger moves properties saved anonymously to the signed-in user
type SessionMerger interface {
	MergeSession(ctx context.Context, sessionID string) (int, error)
}

type chatKeyMap struct {
	send        key.Binding
	clear       key.Binding
	suggestions key.Binding
	suggestion  key.Binding
	login       key.Binding
	close       key.Binding
	quit        key.Binding
}

func newChatKeyMap() *chatKeyMap {
	return &chatKeyMap{
		send:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "Send")),
		clear:       key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "New chat")),
		suggestions: key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "Suggestions")),
		suggestion:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "Use suggestion")),
		login:       key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "Sign in")),
		close:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "Close")),
		quit:        key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "Quit")),
	}
}

type historyLoadedMsg struct {
	messages []chat.Message
	err      error
}

// chunkMsg is one piece of the assistant reply
type chunkMsg string

// streamDoneMsg ends a reply; reply holds everything received
type streamDoneMsg struct {
	reply string
	err   error
}

type chatClearedMsg struct{ err error }

type suggestionsMsg struct {
	suggestions []string
	err         error
}

type mergedMsg struct {
	count int
	err   error
}

// ChatModel is the visitor chat page
type ChatModel struct {
	api         ChatAPI
	merger      SessionMerger
	state       *state.AppState
	keys        *chatKeyMap
	viewport    viewport.Model
	input       textinput.Model
	login       LoginModal
	messages    []chat.Message
	suggestions []string
	nextSuggest int
	streaming   bool
	stream      chan tea.Msg
	cancel      context.CancelFunc
	status      string
	width       int
	height      int
}

// NewChatModel creates the chat page. merger may be nil.
func NewChatModel(api ChatAPI, auth SignIn, merger SessionMerger, appState *state.AppState) ChatModel {
	input := textinput.New()
	input.Placeholder = "Ask about a property..."
	input.CharLimit = 2000
	input.Prompt = "> "
	input.Focus()

	return ChatModel{
		api:      api,
		merger:   merger,
		state:    appState,
		keys:     newChatKeyMap(),
		viewport: viewport.New(80, 20),
		input:    input,
		login:    NewLoginModal(auth),
	}
}

// Init loads the conversation of the current session
func (m ChatModel) Init() tea.Cmd {
	api := m.api
	return tea.Batch(textinput.Blink, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		history, err := api.GetChatHistory(ctx)
		return historyLoadedMsg{messages: history.Messages(), err: err}
	})
}

// waitFor reads the next message of a reply stream
func waitFor(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (m ChatModel) send(prompt string) (ChatModel, tea.Cmd) {
	m.messages = append(m.messages,
		chat.Message{Role: chat.RoleUser, Content: prompt},
		chat.Message{Role: chat.RoleAssistant},
	)
	m.streaming = true
	m.status = ""
	m.suggestions = nil

	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan tea.Msg, 64)
	m.stream, m.cancel = ch, cancel

	api := m.api
	go func() {
		defer close(ch)
		reply, err := api.SendMessage(ctx, prompt, func(chunk string) {
			select {
			case ch <- chunkMsg(chunk):
			case <-ctx.Done():
			}
		})
		select {
		case ch <- streamDoneMsg{reply: reply, err: err}:
		case <-ctx.Done():
		}
	}()

	m.refresh()
	return m, waitFor(ch)
}

func (m ChatModel) clear() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return chatClearedMsg{err: api.ClearChat(ctx)}
	}
}

func (m ChatModel) fetchSuggestions() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		suggestions, err := api.GetSuggestions(ctx)
		return suggestionsMsg{suggestions: suggestions, err: err}
	}
}

func (m ChatModel) merge() tea.Cmd {
	if m.merger == nil {
		return nil
	}
	merger, sessionID := m.merger, m.api.SessionID()
	if sessionID == "" {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		count, err := merger.MergeSession(ctx, sessionID)
		return mergedMsg{count: count, err: err}
	}
}

func (m ChatModel) loginOpen() bool {
	return m.state != nil && m.state.Snapshot().IsLoginModalOpen
}

// Update handles messages for the chat page
func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.err != nil {
			m.status = errorMessageStyle("Failed to load the conversation: " + msg.err.Error())
		} else {
			m.messages = msg.messages
		}
		m.refresh()
		return m, nil

	case chunkMsg:
		if n := len(m.messages); n > 0 {
			m.messages[n-1].Content += string(msg)
		}
		m.refresh()
		return m, waitFor(m.stream)

	case streamDoneMsg:
		m.streaming = false
		m.cancel()
		if n := len(m.messages); n > 0 {
			m.messages[n-1].Content = msg.reply
		}
		if msg.err != nil {
			m.status = errorMessageStyle(msg.err.Error())
		}
		m.refresh()
		return m, nil

	case chatClearedMsg:
		if msg.err != nil {
			m.status = errorMessageStyle(msg.err.Error())
			return m, nil
		}
		m.messages = nil
		m.suggestions = nil
		m.status = statusMessageStyle("Started a new chat")
		m.refresh()
		return m, nil

	case suggestionsMsg:
		if msg.err != nil {
			m.status = errorMessageStyle(msg.err.Error())
			return m, nil
		}
		m.suggestions = msg.suggestions
		m.nextSuggest = 0
		m.resize()
		return m, nil

	case loginResultMsg:
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		if msg.err == nil && msg.ok {
			m.state.SetLoginModalOpen(false)
			m.status = completeMessageStyle("Signed in")
			return m, tea.Batch(cmd, m.merge())
		}
		return m, cmd

	case mergedMsg:
		switch {
		case msg.err != nil:
			m.status = errorMessageStyle("Failed to move saved properties: " + msg.err.Error())
		case msg.count > 0:
			noun := "properties"
			if msg.count == 1 {
				noun = "property"
			}
			m.status = completeMessageStyle(fmt.Sprintf("Signed in, moved %d saved %s to your account", msg.count, noun))
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = msg.Width - 6
		m.resize()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
		if m.loginOpen() {
			return m.updateLogin(msg)
		}
		return m.updateChat(msg)
	}

	var cmd tea.Cmd
	if m.loginOpen() {
		m.login, cmd = m.login.Update(msg)
		return m, cmd
	}
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ChatModel) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.close) || key.Matches(msg, m.keys.login) {
		m.state.SetLoginModalOpen(false)
		return m, nil
	}
	var cmd tea.Cmd
	m.login, cmd = m.login.Update(msg)
	return m, cmd
}

func (m ChatModel) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.login):
		if m.state == nil {
			return m, nil
		}
		m.state.ToggleLogin()
		return m, m.login.Init()
	case key.Matches(msg, m.keys.clear):
		if m.streaming {
			return m, nil
		}
		return m, m.clear()
	case key.Matches(msg, m.keys.suggestions):
		return m, m.fetchSuggestions()
	case key.Matches(msg, m.keys.suggestion):
		if len(m.suggestions) > 0 {
			m.input.SetValue(m.suggestions[m.nextSuggest%len(m.suggestions)])
			m.input.CursorEnd()
			m.nextSuggest++
		}
		return m, nil
	case key.Matches(msg, m.keys.send):
		prompt := strings.TrimSpace(m.input.Value())
		if prompt == "" || m.streaming {
			return m, nil
		}
		m.input.Reset()
		return m.send(prompt)
	case msg.Type == tea.KeyPgUp || msg.Type == tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// resize fits the viewport between the title and the input
func (m *ChatModel) resize() {
	if m.width == 0 {
		return
	}
	h, v := docStyle.GetFrameSize()
	reserved := 6
	if len(m.suggestions) > 0 {
		reserved += len(m.suggestions) + 1
	}
	m.viewport.Width = m.width - h
	m.viewport.Height = max(m.height-v-reserved, 3)
	m.refresh()
}

func (m *ChatModel) refresh() {
	m.viewport.SetContent(m.transcript())
	m.viewport.GotoBottom()
}

func (m ChatModel) transcript() string {
	if len(m.messages) == 0 {
		return helpStyle.Render("Ask anything about the listings. Press ctrl+g for ideas.")
	}
	width := max(m.viewport.Width-2, 20)
	wrap := lipgloss.NewStyle().Width(width)

	var sb strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if msg.Role == chat.RoleUser {
			sb.WriteString(userMessageStyle.Render("You"))
			sb.WriteString("\n")
			sb.WriteString(wrap.Render(msg.Content))
			continue
		}
		sb.WriteString(userMessageStyle.Render("Assistant"))
		sb.WriteString("\n")
		content := msg.Content
		if content == "" && m.streaming && i == len(m.messages)-1 {
			content = "..."
		}
		sb.WriteString(assistantMessageStyle.Width(width).Render(content))
	}
	return sb.String()
}

// Messages returns the conversation shown on the page
func (m ChatModel) Messages() []chat.Message {
	return m.messages
}

// View renders the chat page, or the login modal when it is open
func (m ChatModel) View() string {
	if m.loginOpen() {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.login.View())
	}

	var sb strings.Builder
	title := "Virtual Realtor"
	if m.state != nil {
		if snap := m.state.Snapshot(); snap.IsAuthenticated && snap.User != nil {
			title += " · " + snap.User.Username
		}
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n\n")

	if len(m.suggestions) > 0 {
		sb.WriteString(helpStyle.Render("Suggestions (tab to use):"))
		sb.WriteString("\n")
		for _, s := range m.suggestions {
			sb.WriteString(helpStyle.Render("  • " + s))
			sb.WriteString("\n")
		}
	}

	sb.WriteString(m.input.View())
	sb.WriteString("\n")
	if m.status != "" {
		sb.WriteString(m.status)
	} else {
		sb.WriteString(helpStyle.Render("enter send • ctrl+l new chat • ctrl+g suggestions • ctrl+o sign in • ctrl+c quit"))
	}
	return docStyle.Render(sb.String())
}

// RunChat runs the chat page until the user quits
func RunChat(api ChatAPI, auth SignIn, merger SessionMerger, appState *state.AppState) error {
	p := tea.NewProgram(NewChatModel(api, auth, merger, appState), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
