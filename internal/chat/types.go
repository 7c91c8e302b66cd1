package chat

import "strings"

// Roles of a chat message
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one flattened turn of the conversation
type Message struct {
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// ContentBlock is one text part of a stored message
type ContentBlock struct {
	Text string `json:"text"`
}

// HistoryMessage is a stored message as the backend returns it
type HistoryMessage struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// ChatResponse is the conversation of the current session
type ChatResponse struct {
	History []HistoryMessage `json:"messages"`
}

// Messages flattens the history into role and text pairs
func (r *ChatResponse) Messages() []Message {
	if r == nil {
		return nil
	}
	out := make([]Message, 0, len(r.History))
	for _, m := range r.History {
		var sb strings.Builder
		for _, block := range m.Content {
			sb.WriteString(block.Text)
		}
		out = append(out, Message{Role: m.Role, Content: sb.String()})
	}
	return out
}

type sendMessageRequest struct {
	Prompt string `json:"prompt"`
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}
