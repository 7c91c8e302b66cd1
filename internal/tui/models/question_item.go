package models

import (
	"strings"

	"github.com/brizzai/realtor-cli/internal/admin"
	"github.com/charmbracelet/lipgloss"
)

var unansweredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))

// QuestionItem wraps a Question for display in the list
// Implements list.Item
type QuestionItem struct {
	Question admin.Question
}

func (i QuestionItem) Title() string {
	return i.Question.Question
}

func (i QuestionItem) Description() string {
	if !i.Question.Answered() {
		return unansweredStyle.Render("[Unanswered]")
	}
	answer := strings.ReplaceAll(*i.Question.Answer, "\n", " ")
	if !i.Question.Processed {
		return "[Pending sync] " + answer
	}
	return answer
}

// Answer returns the current answer, empty when unanswered
func (i QuestionItem) Answer() string {
	if i.Question.Answer == nil {
		return ""
	}
	return *i.Question.Answer
}

func (i QuestionItem) FilterValue() string {
	return i.Question.Question + " " + i.Answer()
}
