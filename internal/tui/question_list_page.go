package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/brizzai/realtor-cli/internal/admin"
	"github.com/brizzai/realtor-cli/internal/tui/models"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// requestTimeout bounds every API call made from the TUI
const requestTimeout = 30 * time.Second

// listKeyMap holds key bindings for the list actions.
type listKeyMap struct {
	answer  key.Binding
	save    key.Binding
	cancel  key.Binding
	sync    key.Binding
	refresh key.Binding
	export  key.Binding
	quit    key.Binding
}

// newListKeyMap creates a new listKeyMap with default bindings.
func newListKeyMap() *listKeyMap {
	return &listKeyMap{
		answer: key.NewBinding(
			key.WithKeys("a", "enter"),
			key.WithHelp("a", "Answer"),
		),
		save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "Save"),
		),
		cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),
		sync: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Sync knowledge base"),
		),
		refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh"),
		),
		export: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Export"),
		),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "Quit"),
		),
	}
}

// ExportMsg opens the export view with the loaded questions
type ExportMsg struct {
	Questions []admin.Question
}

type questionsLoadedMsg struct {
	questions []admin.Question
	err       error
}

type questionAnsweredMsg struct {
	question *admin.Question
	err      error
}

type questionDeletedMsg struct {
	id    string
	title string
	err   error
}

type syncedMsg struct {
	resp *admin.SyncResponse
	err  error
}

// QuestionListModel lists the questions and drives the admin actions
type QuestionListModel struct {
	api            admin.API
	list           list.Model
	keys           *listKeyMap
	unansweredOnly bool
	questions      []admin.Question
	editing        bool
	editID         string
	editQuestion   string
	editModal      AnswerEditorModal
}

// NewQuestionListModel creates the question list page
func NewQuestionListModel(api admin.API) QuestionListModel {
	listKeys := newListKeyMap()
	delegate := newItemDelegate(newDelegateKeyMap())

	l := list.New(nil, delegate, 0, 0)
	l.Title = titleStyle.Render("Knowledge base questions")
	l.SetShowFilter(true)
	l.SetStatusBarItemName("question", "questions")
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{
			listKeys.answer,
			listKeys.sync,
			listKeys.refresh,
			listKeys.export,
			listKeys.quit,
		}
	}

	return QuestionListModel{api: api, list: l, keys: listKeys}
}

// Init loads the questions
func (m QuestionListModel) Init() tea.Cmd {
	return m.load()
}

func (m QuestionListModel) load() tea.Cmd {
	api, unanswered := m.api, m.unansweredOnly
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		questions, err := api.ListQuestions(ctx, unanswered)
		return questionsLoadedMsg{questions: questions, err: err}
	}
}

func (m QuestionListModel) saveAnswer(id, answer string) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		q, err := api.AnswerQuestion(ctx, id, answer)
		return questionAnsweredMsg{question: q, err: err}
	}
}

func (m QuestionListModel) remove(id, title string) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return questionDeletedMsg{id: id, title: title, err: api.DeleteQuestion(ctx, id)}
	}
}

func (m QuestionListModel) sync() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		resp, err := api.SyncKnowledgeBase(ctx)
		return syncedMsg{resp: resp, err: err}
	}
}

// Update handles messages for the list and modal, including editing logic.
func (m QuestionListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case questionsLoadedMsg:
		if msg.err != nil {
			return m, m.list.NewStatusMessage(errorMessageStyle("Failed to load questions: " + msg.err.Error()))
		}
		m.setQuestions(msg.questions)
		return m, nil

	case questionAnsweredMsg:
		if msg.err != nil {
			m.editModal.err = msg.err
			return m, nil
		}
		m.editing = false
		m.replace(*msg.question)
		return m, m.list.NewStatusMessage(statusMessageStyle("Answered " + msg.question.Question))

	case questionDeletedMsg:
		if msg.err != nil {
			return m, m.list.NewStatusMessage(errorMessageStyle("Failed to delete: " + msg.err.Error()))
		}
		m.drop(msg.id)
		return m, m.list.NewStatusMessage(statusMessageStyle("Deleted " + msg.title))

	case syncedMsg:
		if msg.err != nil {
			return m, m.list.NewStatusMessage(errorMessageStyle("Sync failed: " + msg.err.Error()))
		}
		return m, tea.Batch(
			m.list.NewStatusMessage(statusMessageStyle(syncStatus(msg.resp))),
			m.load(),
		)

	case deleteQuestionMsg:
		return m, m.remove(msg.id, msg.title)

	case toggleUnansweredMsg:
		m.unansweredOnly = !m.unansweredOnly
		return m, m.load()
	}

	if m.editing {
		return m.handleEditModeUpdate(msg)
	}
	return m.handleListModeUpdate(msg)
}

// handleEditModeUpdate handles messages when in edit mode
func (m QuestionListModel) handleEditModeUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.save):
			answer := m.editModal.Answer()
			if answer == "" {
				m.editModal.err = fmt.Errorf("answer must not be empty")
				return m, nil
			}
			return m, m.saveAnswer(m.editID, answer)
		case key.Matches(msg, m.keys.cancel):
			m.editing = false
			return m, nil
		}

	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
	}
	var cmd tea.Cmd
	m.editModal, cmd = m.editModal.Update(msg)
	return m, cmd
}

// handleListModeUpdate handles messages when in list mode
func (m QuestionListModel) handleListModeUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.answer):
			item, ok := m.list.SelectedItem().(models.QuestionItem)
			if !ok {
				return m, nil
			}
			m.editing = true
			m.editID = item.Question.QuestionID
			m.editQuestion = item.Title()
			m.editModal = NewAnswerModal(item.Answer())
			return m, m.editModal.Init()
		case key.Matches(msg, m.keys.sync):
			return m, tea.Batch(m.list.NewStatusMessage(statusMessageStyle("Syncing knowledge base...")), m.sync())
		case key.Matches(msg, m.keys.refresh):
			return m, m.load()
		case key.Matches(msg, m.keys.export):
			questions := m.Questions()
			return m, func() tea.Msg { return ExportMsg{Questions: questions} }
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders either the list or the modal
func (m QuestionListModel) View() string {
	if m.editing {
		return docStyle.Render(m.editModal.View(m.editQuestion))
	}
	return docStyle.Render(m.list.View())
}

func (m *QuestionListModel) setQuestions(questions []admin.Question) {
	m.questions = questions
	items := make([]list.Item, len(questions))
	for i, q := range questions {
		items[i] = models.QuestionItem{Question: q}
	}
	m.list.SetItems(items)
	if m.unansweredOnly {
		m.list.Title = titleStyle.Render("Unanswered questions")
	} else {
		m.list.Title = titleStyle.Render("Knowledge base questions")
	}
}

func (m *QuestionListModel) replace(q admin.Question) {
	questions := make([]admin.Question, 0, len(m.questions))
	for _, existing := range m.questions {
		if existing.QuestionID != q.QuestionID {
			questions = append(questions, existing)
			continue
		}
		if m.unansweredOnly && q.Answered() {
			continue
		}
		questions = append(questions, q)
	}
	m.setQuestions(questions)
}

func (m *QuestionListModel) drop(id string) {
	questions := make([]admin.Question, 0, len(m.questions))
	for _, q := range m.questions {
		if q.QuestionID != id {
			questions = append(questions, q)
		}
	}
	m.setQuestions(questions)
}

// Questions returns the loaded questions
func (m QuestionListModel) Questions() []admin.Question {
	return m.questions
}

func syncStatus(resp *admin.SyncResponse) string {
	if resp == nil {
		return "Sync requested"
	}
	if resp.IngestionJob != nil {
		return fmt.Sprintf("Sync %s (job %s)", resp.Status, resp.IngestionJob.IngestionJobID)
	}
	return "Sync " + resp.Status
}
