package tui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/brizzai/realtor-cli/internal/admin"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func strPtr(s string) *string { return &s }

// readYamlFile reads and parses a YAML file, failing the test if any errors occur
func readYamlFile(t *testing.T, filePath string) map[string]interface{} {
	t.Helper()
	yamlData, err := os.ReadFile(filePath)
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, yaml.Unmarshal(yamlData, &result))
	delete(result, "exported_at")
	return result
}

func TestExportQuestionsToYamlFile(t *testing.T) {
	testCases := []struct {
		name      string
		questions []admin.Question
		expected  map[string]interface{}
	}{
		{
			name:      "Empty question list",
			questions: []admin.Question{},
			expected: map[string]interface{}{
				"total":      0,
				"unanswered": 0,
				"questions":  []interface{}{},
			},
		},
		{
			name: "Answered and unanswered questions",
			questions: []admin.Question{
				{QuestionID: "q1", Question: "Is there a garage?", Answer: strPtr("Yes, two cars."), Processed: true},
				{QuestionID: "q2", Question: "Is there a pool?"},
				{QuestionID: "q3", Question: "HOA fees?", Answer: strPtr("")},
			},
			expected: map[string]interface{}{
				"total":      3,
				"unanswered": 2,
				"questions": []interface{}{
					map[string]interface{}{"id": "q1", "question": "Is there a garage?", "answer": "Yes, two cars.", "processed": true},
					map[string]interface{}{"id": "q2", "question": "Is there a pool?", "processed": false},
					map[string]interface{}{"id": "q3", "question": "HOA fees?", "processed": false},
				},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			filename := filepath.Join(t.TempDir(), "questions.yaml")

			err := ExportQuestionsToYamlFile(tc.questions, filename)
			require.NoError(t, err)

			diff := cmp.Diff(tc.expected, readYamlFile(t, filename), cmpopts.EquateEmpty())
			assert.True(t, diff == "", diff)
		})
	}
}

func TestExportView_Enter(t *testing.T) {
	dir := t.TempDir()
	view := NewExportView([]admin.Question{{QuestionID: "q1", Question: "Is there a pool?"}})

	model, _ := view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	view = model.(ExportView)
	assert.Equal(t, "Please enter a filename", view.exportStatus)
	assert.False(t, view.Success)

	view.textInput.SetValue(filepath.Join(dir, "bank"))
	model, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	view = model.(ExportView)
	require.NoError(t, view.err)
	assert.True(t, view.Success)
	assert.NotNil(t, cmd)
	assert.FileExists(t, filepath.Join(dir, "bank.yaml"))
}

func TestExportView_EscGoesBack(t *testing.T) {
	view := NewExportView(nil)
	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, BackToListMsg{}, cmd())
}

func TestPluralize(t *testing.T) {
	assert.Equal(t, "1 question", pluralize(1, "question"))
	assert.Equal(t, "0 questions", pluralize(0, "question"))
	assert.Equal(t, "3 questions", pluralize(3, "question"))
}
