package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/brizzai/realtor-cli/internal/admin"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ExportView handles prompting for a filename and exporting the question bank
type ExportView struct {
	questions    []admin.Question
	textInput    textinput.Model
	err          error
	width        int
	height       int
	exportStatus string
	Success      bool
}

// NewExportView creates a new export view
func NewExportView(questions []admin.Question) ExportView {
	ti := textinput.New()
	ti.Placeholder = "questions.yaml"
	ti.Focus()
	ti.Width = 40

	return ExportView{
		questions: questions,
		textInput: ti,
	}
}

// Init initializes the export view
func (m ExportView) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the export view
func (m ExportView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			return m, func() tea.Msg { return BackToListMsg{} }
		case "enter":
			if m.textInput.Value() == "" {
				m.exportStatus = "Please enter a filename"
				return m, nil
			}

			filename := m.textInput.Value()
			if !strings.HasSuffix(filename, ".yaml") && !strings.HasSuffix(filename, ".yml") {
				filename += ".yaml"
			}

			if err := ExportQuestionsToYamlFile(m.questions, filename); err != nil {
				m.err = err
				m.exportStatus = fmt.Sprintf("Error exporting: %v", err)
				return m, nil
			}

			m.Success = true
			m.exportStatus = completeMessageStyle(fmt.Sprintf("Exported %s to %s", pluralize(len(m.questions), "question"), filename))
			return m, tea.Tick(time.Second, func(time.Time) tea.Msg {
				return BackToListMsg{}
			})
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// View renders the export view
func (m ExportView) View() string {
	var sb strings.Builder

	// Calculate vertical centering
	verticalPadding := (m.height - 6) / 2
	for i := 0; i < verticalPadding; i++ {
		sb.WriteString("\n")
	}

	sb.WriteString(centerText(titleStyle.Render("Export question bank"), m.width))
	sb.WriteString("\n\n")

	sb.WriteString(centerText("Enter filename to export questions:", m.width))
	sb.WriteString("\n")

	sb.WriteString(centerText(m.textInput.View(), m.width))
	sb.WriteString("\n\n")

	if m.exportStatus != "" {
		sb.WriteString(centerText(m.exportStatus, m.width))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(centerText("(esc) Back to questions | (enter) Export", m.width))

	return sb.String()
}

// BackToListMsg signals to go back to the question list
type BackToListMsg struct{}

// ExportQuestionsToYamlFile writes the question bank to filename
func ExportQuestionsToYamlFile(questions []admin.Question, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := admin.ExportQuestions(f, questions); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Helper function to center text horizontally
func centerText(text string, width int) string {
	if width <= len(text) {
		return text
	}

	padding := (width - len(text)) / 2
	return strings.Repeat(" ", padding) + text
}

// pluralize returns count followed by the noun, pluralized when needed
func pluralize(count int, singular string) string {
	if count == 1 {
		return "1 " + singular
	}
	return fmt.Sprintf("%d %ss", count, singular)
}
