package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/brizzai/realtor-cli/internal/chat"
	"github.com/brizzai/realtor-cli/internal/state"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChat struct {
	chunks      []string
	streamErr   error
	prompts     []string
	cleared     int
	suggestions []string
	sessionID   string
}

func (f *fakeChat) SendMessage(_ context.Context, prompt string, onChunk func(string)) (string, error) {
	f.prompts = append(f.prompts, prompt)
	var reply string
	for _, c := range f.chunks {
		reply += c
		onChunk(c)
	}
	return reply, f.streamErr
}

func (f *fakeChat) GetChatHistory(context.Context) (*chat.ChatResponse, error) {
	return &chat.ChatResponse{History: []chat.HistoryMessage{
		{Role: chat.RoleUser, Content: []chat.ContentBlock{{Text: "Hello"}}},
		{Role: chat.RoleAssistant, Content: []chat.ContentBlock{{Text: "Hi, "}, {Text: "how can I help?"}}},
	}}, nil
}

func (f *fakeChat) ClearChat(context.Context) error {
	f.cleared++
	return nil
}

func (f *fakeChat) GetSuggestions(context.Context) ([]string, error) {
	return f.suggestions, nil
}

func (f *fakeChat) SessionID() string { return f.sessionID }

type fakeSignIn struct {
	ok  bool
	err error
}

func (f fakeSignIn) SignInWithPassword(context.Context, string, string) (bool, error) {
	return f.ok, f.err
}

type fakeMerger struct {
	sessions []string
}

func (f *fakeMerger) MergeSession(_ context.Context, sessionID string) (int, error) {
	f.sessions = append(f.sessions, sessionID)
	return 2, nil
}

func newChat(api *fakeChat, auth SignIn, merger SessionMerger) (ChatModel, *state.AppState) {
	appState := state.NewAppState()
	m := NewChatModel(api, auth, merger, appState)
	model, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return model.(ChatModel), appState
}

// drain feeds cmd results back into the model until the reply stream ends
func drain(t *testing.T, m ChatModel, cmd tea.Cmd) ChatModel {
	t.Helper()
	for i := 0; cmd != nil && i < 100; i++ {
		msg := cmd()
		if msg == nil {
			break
		}
		var model tea.Model
		model, cmd = m.Update(msg)
		m = model.(ChatModel)
		if _, done := msg.(streamDoneMsg); done {
			break
		}
	}
	return m
}

func TestChatModel_LoadsHistory(t *testing.T) {
	m, _ := newChat(&fakeChat{}, fakeSignIn{}, nil)

	model, _ := m.Update(historyLoadedMsg{messages: (&chat.ChatResponse{History: []chat.HistoryMessage{
		{Role: chat.RoleAssistant, Content: []chat.ContentBlock{{Text: "Hi, "}, {Text: "how can I help?"}}},
	}}).Messages()})
	m = model.(ChatModel)

	require.Len(t, m.Messages(), 1)
	assert.Equal(t, "Hi, how can I help?", m.Messages()[0].Content)
}

func TestChatModel_StreamsReply(t *testing.T) {
	api := &fakeChat{chunks: []string{"The house ", "has ", "three bedrooms."}}
	m, _ := newChat(api, fakeSignIn{}, nil)

	m.input.SetValue("  How many bedrooms?  ")
	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = model.(ChatModel)
	require.NotNil(t, cmd)
	assert.True(t, m.streaming)
	assert.Empty(t, m.input.Value())

	m = drain(t, m, cmd)
	assert.False(t, m.streaming)
	assert.Equal(t, []string{"How many bedrooms?"}, api.prompts)
	assert.Equal(t, []chat.Message{
		{Role: chat.RoleUser, Content: "How many bedrooms?"},
		{Role: chat.RoleAssistant, Content: "The house has three bedrooms."},
	}, m.Messages())
	assert.Empty(t, m.status)
}

func TestChatModel_StreamErrorKeepsPartialReply(t *testing.T) {
	api := &fakeChat{chunks: []string{"The house "}, streamErr: &chat.StreamError{Message: "Model overloaded"}}
	m, _ := newChat(api, fakeSignIn{}, nil)

	m.input.SetValue("Tell me more")
	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = drain(t, model.(ChatModel), cmd)

	require.Len(t, m.Messages(), 2)
	assert.Equal(t, "The house ", m.Messages()[1].Content)
	assert.Contains(t, m.status, "Model overloaded")
}

func TestChatModel_BlankPromptIgnored(t *testing.T) {
	api := &fakeChat{}
	m, _ := newChat(api, fakeSignIn{}, nil)

	m.input.SetValue("   ")
	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = model.(ChatModel)
	assert.Nil(t, cmd)
	assert.False(t, m.streaming)
	assert.Empty(t, api.prompts)
}

func TestChatModel_ClearChat(t *testing.T) {
	api := &fakeChat{}
	m, _ := newChat(api, fakeSignIn{}, nil)
	m.messages = []chat.Message{{Role: chat.RoleUser, Content: "Hello"}}

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	m = model.(ChatModel)
	require.NotNil(t, cmd)

	model, _ = m.Update(cmd())
	m = model.(ChatModel)
	assert.Equal(t, 1, api.cleared)
	assert.Empty(t, m.Messages())
}

func TestChatModel_Suggestions(t *testing.T) {
	api := &fakeChat{suggestions: []string{"Is it near a school?", "What are the HOA fees?"}}
	m, _ := newChat(api, fakeSignIn{}, nil)

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	m = model.(ChatModel)
	require.NotNil(t, cmd)
	model, _ = m.Update(cmd())
	m = model.(ChatModel)
	assert.Equal(t, api.suggestions, m.suggestions)

	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = model.(ChatModel)
	assert.Equal(t, "Is it near a school?", m.input.Value())

	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = model.(ChatModel)
	assert.Equal(t, "What are the HOA fees?", m.input.Value())
}

func TestChatModel_LoginModal(t *testing.T) {
	merger := &fakeMerger{}
	m, appState := newChat(&fakeChat{sessionID: "anon-1"}, fakeSignIn{ok: true}, merger)

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	m = model.(ChatModel)
	assert.True(t, appState.Snapshot().IsLoginModalOpen)

	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = model.(ChatModel)
	assert.False(t, appState.Snapshot().IsLoginModalOpen)

	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	m = model.(ChatModel)
	m.login.inputs[0].SetValue("jane@example.com")
	m.login.inputs[1].SetValue("secret")
	m.login.focused = 1

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = model.(ChatModel)
	require.NotNil(t, cmd)
	assert.True(t, m.login.submitting)

	model, cmd = m.Update(cmd())
	m = model.(ChatModel)
	assert.False(t, appState.Snapshot().IsLoginModalOpen)
	require.NotNil(t, cmd)

	// the merge command may come alone or inside a batch
	msgs := []tea.Msg{cmd()}
	if batch, ok := msgs[0].(tea.BatchMsg); ok {
		msgs = nil
		for _, c := range batch {
			if c != nil {
				msgs = append(msgs, c())
			}
		}
	}
	var merged bool
	for _, msg := range msgs {
		if msg, ok := msg.(mergedMsg); ok {
			merged = true
			model, _ = m.Update(msg)
			m = model.(ChatModel)
		}
	}
	assert.True(t, merged)
	assert.Equal(t, []string{"anon-1"}, merger.sessions)
	assert.Contains(t, m.status, "moved 2 saved properties")
}

func TestLoginModal_Errors(t *testing.T) {
	m := NewLoginModal(fakeSignIn{err: errors.New("Incorrect username or password.")})

	m.focused = 1
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.EqualError(t, m.err, "email and password are required")

	m.inputs[0].SetValue("jane@example.com")
	m.inputs[1].SetValue("wrong")
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	m, _ = m.Update(cmd())
	assert.False(t, m.submitting)
	assert.EqualError(t, m.err, "Incorrect username or password.")
	assert.Equal(t, "wrong", m.inputs[1].Value(), "password is kept after a failure")
}
