package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MainPageKeyMap holds key bindings for the main page actions
type MainPageKeyMap struct {
	open key.Binding
	quit key.Binding
}

func newMainPageKeyMap() *MainPageKeyMap {
	return &MainPageKeyMap{
		open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Open questions"),
		),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("ctrl+c/q", "Quit"),
		),
	}
}

// MainPageModel represents the landing page of the admin console
type MainPageModel struct {
	keys     *MainPageKeyMap
	width    int
	height   int
	username string
}

// OpenListMsg is sent when the user opens the question list
type OpenListMsg struct{}

// NewMainPageModel creates a new main page model
func NewMainPageModel(username string) MainPageModel {
	return MainPageModel{
		keys:     newMainPageKeyMap(),
		username: username,
	}
}

// Init initializes the model
func (m MainPageModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the main page
func (m MainPageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.open):
			return m, func() tea.Msg { return OpenListMsg{} }
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// View renders the main page
func (m MainPageModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render("Virtual Realtor Admin")

	center := lipgloss.NewStyle().
		Padding(1, 0).
		Width(m.width - 4).
		Align(lipgloss.Center)

	signedIn := "Signed in"
	if m.username != "" {
		signedIn = "Signed in as " + m.username
	}
	description := center.Render(
		signedIn + "\n\n" +
			"Answer the questions visitors asked the assistant, then sync\n" +
			"the knowledge base so the assistant learns the new answers.",
	)

	instruction := center.
		Foreground(lipgloss.Color("#4fb3bf")).
		Render("Press ENTER to open the questions")

	help := helpStyle.
		Width(m.width - 4).
		Align(lipgloss.Center).
		Render("Press q or Ctrl+C to quit")

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		title,
		"",
		description,
		"",
		instruction,
		"",
		help,
	)

	return docStyle.Render(content)
}
