// Package tui is the terminal client for the task tracker.
//
// It follows the bubbletea model: App holds every piece of screen state,
// Update reacts to key presses and API results, View renders the current
// screen. API calls run as tea.Cmds and come back as messages.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mahora/task-tracker/internal/client"
	"github.com/mahora/task-tracker/internal/constants"
	"github.com/mahora/task-tracker/internal/dto"
)

// TaskAPI is the subset of the HTTP client the TUI needs.
type TaskAPI interface {
	Login(ctx context.Context, email, password string) (*dto.LoginResponse, error)
	ListTasks(ctx context.Context) ([]dto.TaskDTO, error)
	CreateTask(ctx context.Context, req dto.TaskRequest) (*dto.MessageResponse, error)
	UpdateTask(ctx context.Context, id uint64, req dto.TaskRequest) (*dto.MessageResponse, error)
	DeleteTask(ctx context.Context, id uint64) (*dto.MessageResponse, error)
}

var _ TaskAPI = (*client.Client)(nil)

type appState int

const (
	stateLogin         appState = iota // Email and password prompt
	stateTasks                          // Task table
	stateForm                           // Add or edit panel
	stateConfirmDelete                  // Delete confirmation
)

// Form field order.
const (
	fieldName = iota
	fieldDescription
	fieldStartDate
	fieldEndDate
	fieldAssignee
	fieldCreator
	fieldCount
)

var formLabels = [fieldCount]string{
	"Name",
	"Description",
	"Start date",
	"End date",
	"Assignee",
	"Creator",
}

const requestTimeout = 15 * time.Second

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7BC47F"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).MarginTop(1)
	labelStyle  = lipgloss.NewStyle().Width(14).Foreground(lipgloss.Color("#AAAAAA"))
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

type loginResultMsg struct {
	resp *dto.LoginResponse
	err  error
}

type tasksLoadedMsg struct {
	tasks []dto.TaskDTO
	err   error
}

type mutationDoneMsg struct {
	resp *dto.MessageResponse
	err  error
}

// App is the root bubbletea model.
type App struct {
	api   TaskAPI
	state appState

	loginInputs []textinput.Model
	loginFocus  int

	user  *dto.UserDTO
	tasks []dto.TaskDTO
	table table.Model

	formInputs []textinput.Model
	formFocus  int
	editingID  *uint64 // nil while adding

	deleteTarget *dto.TaskDTO

	statusMsg string
	err       error
	busy      bool
	width     int
}

// NewApp creates the TUI on top of api.
func NewApp(api TaskAPI) *App {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = constants.MaxEmailLength
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = constants.MaxCredentialLength

	columns := []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Name", Width: 22},
		{Title: "Description", Width: 28},
		{Title: "Start", Width: 10},
		{Title: "End", Width: 10},
		{Title: "Assignee", Width: 14},
		{Title: "Creator", Width: 14},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#5B8DEF"))
	t.SetStyles(styles)

	return &App{
		api:         api,
		state:       stateLogin,
		loginInputs: []textinput.Model{email, password},
		table:       t,
		formInputs:  newFormInputs(),
	}
}

func newFormInputs() []textinput.Model {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		in := textinput.New()
		in.Placeholder = strings.ToLower(formLabels[i])
		inputs[i] = in
	}
	inputs[fieldName].CharLimit = constants.MaxNameLength
	inputs[fieldStartDate].CharLimit = constants.MaxDateLength
	inputs[fieldEndDate].CharLimit = constants.MaxDateLength
	inputs[fieldAssignee].CharLimit = constants.MaxNameLength
	inputs[fieldCreator].CharLimit = constants.MaxNameLength
	inputs[fieldStartDate].Placeholder = "YYYY-MM-DD"
	inputs[fieldEndDate].Placeholder = "YYYY-MM-DD"
	inputs[fieldAssignee].Placeholder = "user name"
	inputs[fieldCreator].Placeholder = "user name"
	return inputs
}

// Init starts the cursor blinking on the login form.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles one message.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		if h := msg.Height - 10; h > 3 {
			a.table.SetHeight(h)
		}
		return a, nil

	case loginResultMsg:
		return a.handleLoginResult(msg)

	case tasksLoadedMsg:
		a.busy = false
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.setTasks(msg.tasks)
		return a, nil

	case mutationDoneMsg:
		return a.handleMutationDone(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.state {
		case stateLogin:
			return a.updateLogin(msg)
		case stateTasks:
			return a.updateTasks(msg)
		case stateForm:
			return a.updateForm(msg)
		case stateConfirmDelete:
			return a.updateConfirmDelete(msg)
		}
	}
	return a, nil
}

func (a *App) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		return a, a.focusLogin((a.loginFocus + 1) % len(a.loginInputs))
	case "shift+tab", "up":
		return a, a.focusLogin((a.loginFocus + len(a.loginInputs) - 1) % len(a.loginInputs))
	case "enter":
		if a.loginFocus < len(a.loginInputs)-1 {
			return a, a.focusLogin(a.loginFocus + 1)
		}
		return a, a.submitLogin()
	case "esc":
		return a, tea.Quit
	}

	var cmd tea.Cmd
	a.loginInputs[a.loginFocus], cmd = a.loginInputs[a.loginFocus].Update(msg)
	return a, cmd
}

func (a *App) focusLogin(i int) tea.Cmd {
	a.loginInputs[a.loginFocus].Blur()
	a.loginFocus = i
	return a.loginInputs[i].Focus()
}

func (a *App) submitLogin() tea.Cmd {
	email := strings.TrimSpace(a.loginInputs[0].Value())
	password := a.loginInputs[1].Value()
	if email == "" || password == "" {
		a.err = errors.New("enter your email and password")
		return nil
	}
	if a.busy {
		return nil
	}
	a.busy = true
	a.err = nil
	a.statusMsg = "Signing in..."

	api := a.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		resp, err := api.Login(ctx, email, password)
		return loginResultMsg{resp: resp, err: err}
	}
}

func (a *App) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	a.busy = false
	a.statusMsg = ""
	if msg.err != nil {
		a.err = msg.err
		return a, nil
	}
	if !msg.resp.Success {
		a.err = errors.New(msg.resp.Message)
		return a, nil
	}

	a.user = msg.resp.User
	a.err = nil
	a.statusMsg = msg.resp.Message
	a.loginInputs[1].SetValue("")
	a.state = stateTasks
	return a, a.loadTasks()
}

func (a *App) loadTasks() tea.Cmd {
	a.busy = true
	api := a.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		tasks, err := api.ListTasks(ctx)
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

func (a *App) setTasks(tasks []dto.TaskDTO) {
	a.tasks = tasks
	rows := make([]table.Row, len(tasks))
	for i, t := range tasks {
		rows[i] = table.Row{
			strconv.FormatUint(t.ID, 10),
			t.Name,
			orDash(t.Description),
			formatDate(t.StartDate),
			formatDate(t.EndDate),
			orDash(t.Assignee),
			orDash(t.Creator),
		}
	}
	a.table.SetRows(rows)
	if c := a.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		a.table.SetCursor(len(rows) - 1)
	}
}

func (a *App) selectedTask() *dto.TaskDTO {
	i := a.table.Cursor()
	if i < 0 || i >= len(a.tasks) {
		return nil
	}
	return &a.tasks[i]
}

func (a *App) updateTasks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "r":
		a.err = nil
		a.statusMsg = ""
		return a, a.loadTasks()
	case "a":
		return a, a.openForm(nil)
	case "e", "enter":
		task := a.selectedTask()
		if task == nil {
			return a, nil
		}
		return a, a.openForm(task)
	case "d":
		task := a.selectedTask()
		if task == nil {
			return a, nil
		}
		a.deleteTarget = task
		a.state = stateConfirmDelete
		return a, nil
	case "l":
		return a, a.logout()
	}

	var cmd tea.Cmd
	a.table, cmd = a.table.Update(msg)
	return a, cmd
}

func (a *App) logout() tea.Cmd {
	a.user = nil
	a.tasks = nil
	a.table.SetRows(nil)
	a.err = nil
	a.statusMsg = "Signed out"
	a.state = stateLogin
	return a.focusLogin(0)
}

// openForm shows the add panel, or the edit panel prefilled from task.
func (a *App) openForm(task *dto.TaskDTO) tea.Cmd {
	a.formInputs = newFormInputs()
	a.editingID = nil
	a.err = nil
	a.statusMsg = ""
	if task != nil {
		id := task.ID
		a.editingID = &id
		a.formInputs[fieldName].SetValue(task.Name)
		a.formInputs[fieldDescription].SetValue(deref(task.Description))
		a.formInputs[fieldStartDate].SetValue(deref(task.StartDate))
		a.formInputs[fieldEndDate].SetValue(deref(task.EndDate))
		a.formInputs[fieldAssignee].SetValue(deref(task.Assignee))
		a.formInputs[fieldCreator].SetValue(deref(task.Creator))
	}
	a.state = stateForm
	a.formFocus = fieldName
	return a.formInputs[fieldName].Focus()
}

func (a *App) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.state = stateTasks
		a.err = nil
		return a, nil
	case "tab", "down":
		return a, a.focusForm((a.formFocus + 1) % fieldCount)
	case "shift+tab", "up":
		return a, a.focusForm((a.formFocus + fieldCount - 1) % fieldCount)
	case "enter":
		if a.formFocus < fieldCount-1 {
			return a, a.focusForm(a.formFocus + 1)
		}
		return a, a.submitForm()
	case "ctrl+s":
		return a, a.submitForm()
	}

	var cmd tea.Cmd
	a.formInputs[a.formFocus], cmd = a.formInputs[a.formFocus].Update(msg)
	return a, cmd
}

func (a *App) focusForm(i int) tea.Cmd {
	a.formInputs[a.formFocus].Blur()
	a.formFocus = i
	return a.formInputs[i].Focus()
}

func (a *App) formRequest() dto.TaskRequest {
	return dto.TaskRequest{
		Name:         a.formInputs[fieldName].Value(),
		Description:  optional(a.formInputs[fieldDescription].Value()),
		StartDate:    optional(a.formInputs[fieldStartDate].Value()),
		EndDate:      optional(a.formInputs[fieldEndDate].Value()),
		AssigneeName: optional(a.formInputs[fieldAssignee].Value()),
		CreatorName:  optional(a.formInputs[fieldCreator].Value()),
	}
}

func (a *App) submitForm() tea.Cmd {
	req := a.formRequest()
	if strings.TrimSpace(req.Name) == "" {
		a.err = errors.New("name is required")
		return nil
	}
	if a.busy {
		return nil
	}
	a.busy = true
	a.err = nil

	api := a.api
	editingID := a.editingID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		var (
			resp *dto.MessageResponse
			err  error
		)
		if editingID == nil {
			resp, err = api.CreateTask(ctx, req)
		} else {
			resp, err = api.UpdateTask(ctx, *editingID, req)
		}
		return mutationDoneMsg{resp: resp, err: err}
	}
}

func (a *App) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if a.deleteTarget == nil || a.busy {
			return a, nil
		}
		a.busy = true
		api := a.api
		id := a.deleteTarget.ID
		return a, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			resp, err := api.DeleteTask(ctx, id)
			return mutationDoneMsg{resp: resp, err: err}
		}
	case "n", "N", "esc":
		a.deleteTarget = nil
		a.state = stateTasks
	}
	return a, nil
}

// handleMutationDone shows the server message and reloads the table. A
// failed form submit keeps the panel open so the input is not lost.
func (a *App) handleMutationDone(msg mutationDoneMsg) (tea.Model, tea.Cmd) {
	a.busy = false
	if msg.err != nil {
		a.err = msg.err
		if a.state == stateConfirmDelete {
			a.deleteTarget = nil
			a.state = stateTasks
		}
		return a, nil
	}

	a.err = nil
	a.statusMsg = msg.resp.Message
	if msg.resp.Matched != nil && !*msg.resp.Matched {
		a.statusMsg += " (no task with that ID)"
	}
	a.deleteTarget = nil
	a.editingID = nil
	a.state = stateTasks
	return a, a.loadTasks()
}

// View renders the current screen.
func (a *App) View() string {
	var body string
	switch a.state {
	case stateLogin:
		body = a.viewLogin()
	case stateTasks:
		body = a.viewTasks()
	case stateForm:
		body = a.viewForm()
	case stateConfirmDelete:
		body = a.viewConfirmDelete()
	}

	sections := []string{titleStyle.Render("Task Tracker"), body}
	if a.err != nil {
		sections = append(sections, errorStyle.Render(a.errorText()))
	} else if a.statusMsg != "" {
		sections = append(sections, statusStyle.Render(a.statusMsg))
	}
	return strings.Join(sections, "\n") + "\n"
}

func (a *App) errorText() string {
	var apiErr *client.APIError
	if errors.As(a.err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return a.err.Error()
}

func (a *App) viewLogin() string {
	lines := []string{
		labelStyle.Render("Email") + a.loginInputs[0].View(),
		labelStyle.Render("Password") + a.loginInputs[1].View(),
	}
	form := boxStyle.Render(strings.Join(lines, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left,
		form,
		hintStyle.Render("Tab → next field    Enter → sign in    Esc → quit"),
	)
}

func (a *App) viewTasks() string {
	header := "Tasks"
	if a.user != nil {
		header = fmt.Sprintf("Tasks · signed in as %s", a.user.Name)
	}
	content := a.table.View()
	if len(a.tasks) == 0 {
		content = "No tasks yet."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		boxStyle.Render(content),
		hintStyle.Render("a add    e edit    d delete    r refresh    l logout    q quit"),
	)
}

func (a *App) viewForm() string {
	title := "New task"
	if a.editingID != nil {
		title = fmt.Sprintf("Edit task #%d", *a.editingID)
	}
	lines := make([]string, 0, fieldCount+1)
	lines = append(lines, titleStyle.Render(title))
	for i, in := range a.formInputs {
		lines = append(lines, labelStyle.Render(formLabels[i])+in.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		boxStyle.Render(strings.Join(lines, "\n")),
		hintStyle.Render("Tab → next field    Ctrl+S → save    Esc → cancel"),
	)
}

func (a *App) viewConfirmDelete() string {
	name := ""
	if a.deleteTarget != nil {
		name = a.deleteTarget.Name
	}
	return boxStyle.Render(fmt.Sprintf("Delete %q? (y/n)", name))
}

// optional maps an empty field to null and passes anything else unchanged.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// formatDate renders a stored date as DD/MM/YYYY, or the raw text when it
// does not parse.
func formatDate(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	if t, ok := parseDate(*s); ok {
		return t.Format("02/01/2006")
	}
	return *s
}
