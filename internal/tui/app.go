package tui

import (
	"github.com/brizzai/realtor-cli/internal/admin"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

type page int

const (
	pageMain page = iota
	pageList
	pageExport
)

// AppModel is the admin console model that manages page switching
type AppModel struct {
	mainPage   MainPageModel
	listView   QuestionListModel
	exportView ExportView
	page       page
	width      int
	height     int
	exported   bool
}

// NewAppModel creates the admin console for the signed-in user
func NewAppModel(api admin.API, username string) AppModel {
	return AppModel{
		mainPage: NewMainPageModel(username),
		listView: NewQuestionListModel(api),
		page:     pageMain,
	}
}

// Init initializes the AppModel
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.mainPage.Init(),
		m.listView.Init(),
	)
}

// Update handles app-level messages and delegates to the appropriate page model
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case OpenListMsg:
		m.page = pageList
		return m, nil

	case ExportMsg:
		m.page = pageExport
		m.exportView = NewExportView(msg.Questions)
		// the export view only learns its size from the last window event
		tempModel, _ := m.exportView.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		m.exportView = tempModel.(ExportView)
		return m, m.exportView.Init()

	case BackToListMsg:
		m.exported = m.exported || m.exportView.Success
		m.page = pageList
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "esc" && m.page == pageList && !m.listView.editing &&
			m.listView.list.FilterState() == list.Unfiltered {
			m.page = pageMain
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

		var cmd tea.Cmd
		var tempModel tea.Model

		tempModel, cmd = m.mainPage.Update(msg)
		m.mainPage = tempModel.(MainPageModel)
		cmds = append(cmds, cmd)

		tempModel, cmd = m.listView.Update(msg)
		m.listView = tempModel.(QuestionListModel)
		cmds = append(cmds, cmd)

		return m, tea.Batch(cmds...)
	}

	// result messages of API calls go to the list whatever page is shown
	switch msg.(type) {
	case questionsLoadedMsg, questionAnsweredMsg, questionDeletedMsg, syncedMsg:
		tempModel, cmd := m.listView.Update(msg)
		m.listView = tempModel.(QuestionListModel)
		return m, cmd
	}

	var cmd tea.Cmd
	var tempModel tea.Model
	switch m.page {
	case pageMain:
		tempModel, cmd = m.mainPage.Update(msg)
		m.mainPage = tempModel.(MainPageModel)
	case pageList:
		tempModel, cmd = m.listView.Update(msg)
		m.listView = tempModel.(QuestionListModel)
	case pageExport:
		tempModel, cmd = m.exportView.Update(msg)
		m.exportView = tempModel.(ExportView)
	}
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the active page
func (m AppModel) View() string {
	switch m.page {
	case pageMain:
		return m.mainPage.View()
	case pageExport:
		return m.exportView.View()
	default:
		return m.listView.View()
	}
}

// Questions returns the questions currently loaded in the list
func (m AppModel) Questions() []admin.Question {
	return m.listView.Questions()
}

// Exported reports whether the question bank was exported during the session
func (m AppModel) Exported() bool {
	return m.exported || m.exportView.Success
}

// RunAdmin runs the admin console until the user quits
func RunAdmin(api admin.API, username string) (AppModel, error) {
	p := tea.NewProgram(NewAppModel(api, username), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return AppModel{}, err
	}
	return final.(AppModel), nil
}
