package models

import (
	"testing"

	"github.com/brizzai/realtor-cli/internal/admin"
	"github.com/stretchr/testify/assert"
)

func TestQuestionItem(t *testing.T) {
	answer := "Yes,\nthree bedrooms."
	tests := []struct {
		name        string
		question    admin.Question
		wantDesc    string
		wantFilter  string
		wantContain string
	}{
		{
			name:       "answered and synced",
			question:   admin.Question{Question: "How many bedrooms?", Answer: &answer, Processed: true},
			wantDesc:   "Yes, three bedrooms.",
			wantFilter: "How many bedrooms? Yes,\nthree bedrooms.",
		},
		{
			name:       "answered, not synced",
			question:   admin.Question{Question: "How many bedrooms?", Answer: &answer},
			wantDesc:   "[Pending sync] Yes, three bedrooms.",
			wantFilter: "How many bedrooms? Yes,\nthree bedrooms.",
		},
		{
			name:        "unanswered",
			question:    admin.Question{Question: "Is there a pool?"},
			wantContain: "[Unanswered]",
			wantFilter:  "Is there a pool? ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := QuestionItem{Question: tt.question}
			assert.Equal(t, tt.question.Question, item.Title())
			if tt.wantContain != "" {
				assert.Contains(t, item.Description(), tt.wantContain)
			} else {
				assert.Equal(t, tt.wantDesc, item.Description())
			}
			assert.Equal(t, tt.wantFilter, item.FilterValue())
		})
	}
}
