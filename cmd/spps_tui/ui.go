package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/feelsunbreeze/spps_tui/internal/api"
	"github.com/feelsunbreeze/spps_tui/internal/models"
	"github.com/feelsunbreeze/spps_tui/internal/session"
)

const (
	WHITE       = lipgloss.Color("#FFFFFF")
	BLUE        = lipgloss.Color("#0043a8")
	GREY        = lipgloss.Color("#626262")
	LAVENDER    = lipgloss.Color("#B8B8FF")
	GREEN       = lipgloss.Color("#50FA7B")
	LIGHT_GREEN = lipgloss.Color("#B9FBC0")
	PINK        = lipgloss.Color("#FFD1DC")
	RED         = lipgloss.Color("#FF5555")
	YELLOW      = lipgloss.Color("#F1FA8C")
	LIGHT_BLUE  = lipgloss.Color("#8BE9FD")
	TURQUOISE   = lipgloss.Color("#98F5E1")
	SILVER      = lipgloss.Color("#A9B2D8")
)

type ViewType int

const (
	LoadingView ViewType = iota
	LoginView
	ResultView
	DashboardView
	StudentsView
	FactorsView
	UploadView
	PredictionsView
)

// screens lists the gated views in navigation order.
var screens = []struct {
	view  ViewType
	key   string
	title string
}{
	{DashboardView, "1", "Dashboard"},
	{StudentsView, "2", "Students"},
	{FactorsView, "3", "Factors"},
	{UploadView, "4", "Upload"},
	{PredictionsView, "5", "Predictions"},
}

type SessionResolvedMsg struct {
	LoggedIn bool
}

type LoginResultMsg struct {
	Code session.ErrorCode
	Text string
}

type LoggedOutMsg struct{}

// screenMsg is a backend result addressed to the screen instance that
// issued it.
type screenMsg interface {
	screenSeq() int
	failure() error
}

type LoadingState struct {
	Reason     string
	HelpText   string
	BottomText string
}

type model struct {
	svc *services

	width        int
	height       int
	currentView  ViewType
	loadingState LoadingState
	spinner      spinner.Model

	// seq identifies the active screen instance. Results carrying another
	// value belong to a screen the user has left.
	seq int

	login       loginForm
	loginResult *LoginResultMsg

	dashboard   dashboardScreen
	students    studentsScreen
	factors     factorsScreen
	upload      uploadScreen
	predictions predictionsScreen
}

func NewModel(svc *services) model {
	s := spinner.New()
	s.Style = lipgloss.NewStyle().Foreground(BLUE)
	s.Spinner = spinner.Points

	return model{
		svc:         svc,
		currentView: LoadingView,
		spinner:     s,
		login:       newLoginForm(),
		loadingState: LoadingState{
			Reason:     "🔐 Checking your session, please wait",
			HelpText:   "Asking the SPPS backend who you are",
			BottomText: "• Q: Cancel and quit",
		},
	}
}

func (m model) Init() tea.Cmd {
	guard := m.svc.guard
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			return SessionResolvedMsg{LoggedIn: guard.Resolve(context.Background())}
		},
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if sm, ok := msg.(screenMsg); ok {
		if errors.Is(sm.failure(), api.ErrUnauthorized) {
			if m.currentView == LoginView || m.currentView == ResultView {
				return m, nil
			}
			m.logger().Info("Session expired, returning to login")
			m.forceLogin()
			return m, m.login.focus()
		}
		if sm.screenSeq() != m.seq {
			m.logger().Debug("Dropping stale response", zap.String("msg", fmt.Sprintf("%T", msg)))
			return m, nil
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case SessionResolvedMsg:
		if msg.LoggedIn {
			return m.enterScreen(DashboardView)
		}
		m.currentView = LoginView
		return m, m.login.focus()

	case LoginResultMsg:
		m.loginResult = &msg
		if msg.Code == session.ErrNone {
			m.login = newLoginForm()
			return m.enterScreen(DashboardView)
		}
		m.currentView = ResultView

	case LoggedOutMsg:
		m.forceLogin()
		return m, m.login.focus()

	case dashboardLoadedMsg:
		m.dashboard.loaded(msg)
	case studentsLoadedMsg:
		m.students.loaded(msg)
	case studentSavedMsg:
		return m.studentSaved(msg)
	case studentGPAMsg:
		m.students.gpaLoaded(msg)
	case factorsLoadedMsg:
		m.factors.loaded(msg)
	case factorsSavedMsg:
		return m.factorsSaved(msg)
	case uploadFinishedMsg:
		m.upload.finished(msg)
	case predictionsLoadedMsg:
		m.predictions.loaded(msg)
	case predictionGeneratedMsg:
		return m.predictionGenerated(msg)
	case reportLoadedMsg:
		m.predictions.reportLoaded(msg)

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

func (m model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.currentView {
	case LoginView:
		return m.handleLoginKeys(msg)
	case LoadingView:
		return m.handleLoadingKeys(msg)
	case ResultView:
		return m.handleResultKeys(msg)
	case DashboardView:
		return m.handleDashboardKeys(msg)
	case StudentsView:
		return m.handleStudentsKeys(msg)
	case FactorsView:
		return m.handleFactorsKeys(msg)
	case UploadView:
		return m.handleUploadKeys(msg)
	case PredictionsView:
		return m.handlePredictionsKeys(msg)
	default:
		return m, nil
	}
}

func (m model) handleLoadingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

// handleNavKeys handles the keys shared by every gated screen. The second
// return value is false when the key was not a navigation key.
func (m model) handleNavKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	key := msg.String()
	switch key {
	case "q":
		return m, tea.Quit, true
	case "l":
		m.seq++
		m.setLoadingState("👋 Signing out, please wait", "Ending your session with the SPPS backend", "• Q: Quit")
		m.currentView = LoadingView
		guard := m.svc.guard
		return m, tea.Batch(
			m.spinner.Tick,
			func() tea.Msg {
				guard.Logout(context.Background())
				return LoggedOutMsg{}
			},
		), true
	}

	for _, s := range screens {
		if key == s.key {
			next, cmd := m.enterScreen(s.view)
			return next, cmd, true
		}
	}
	return m, nil, false
}

// enterScreen mounts a fresh instance of a gated screen. Nothing carries
// over from a previous visit; every entry re-fetches.
func (m model) enterScreen(view ViewType) (model, tea.Cmd) {
	m.seq++
	m.currentView = view

	var load tea.Cmd
	switch view {
	case DashboardView:
		m.dashboard, load = newDashboardScreen(m.svc, m.seq)
	case StudentsView:
		m.students, load = newStudentsScreen(m.svc, m.seq)
	case FactorsView:
		m.factors, load = newFactorsScreen(m.svc, m.seq)
	case UploadView:
		m.upload, load = newUploadScreen(m.svc, m.seq)
	case PredictionsView:
		m.predictions, load = newPredictionsScreen(m.svc, m.seq)
	}
	return m, tea.Batch(m.spinner.Tick, load)
}

// forceLogin discards every screen and shows the login form. Used for
// 401 responses and after logout.
func (m *model) forceLogin() {
	m.seq++
	m.currentView = LoginView
	m.loginResult = nil
	m.login = newLoginForm()
	m.dashboard = dashboardScreen{}
	m.students = studentsScreen{}
	m.factors = factorsScreen{}
	m.upload = uploadScreen{}
	m.predictions = predictionsScreen{}
}

func (m *model) setLoadingState(reason, helpText, bottomText string) {
	m.loadingState = LoadingState{
		Reason:     reason,
		HelpText:   helpText,
		BottomText: bottomText,
	}
}

func (m model) logger() *zap.Logger {
	if m.svc == nil || m.svc.logger == nil {
		return zap.NewNop()
	}
	return m.svc.logger
}

func (m model) View() string {
	switch m.currentView {
	case LoginView:
		return m.renderLogin()
	case LoadingView:
		return m.renderLoading()
	case ResultView:
		return m.renderResult()
	case DashboardView:
		return m.renderDashboard()
	case StudentsView:
		return m.renderStudents()
	case FactorsView:
		return m.renderFactors()
	case UploadView:
		return m.renderUpload()
	case PredictionsView:
		return m.renderPredictions()
	default:
		return "Unknown view"
	}
}

func (m model) renderLoading() string {
	reasonStyle := lipgloss.NewStyle().
		Foreground(WHITE).
		Bold(true).
		MarginBottom(1)

	helpStyle := lipgloss.NewStyle().
		Foreground(GREY).
		MarginTop(1)

	content := lipgloss.JoinVertical(lipgloss.Center,
		reasonStyle.Render(m.loadingState.Reason),
		m.spinner.View(),
		helpStyle.Render(m.loadingState.HelpText),
		helpStyle.Render(m.loadingState.BottomText),
	)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

// renderPage frames a gated screen with the user header, the navigation
// bar and the help line.
func (m model) renderPage(body, help string) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(LIGHT_BLUE)
	turquoiseStyle := lipgloss.NewStyle().Foreground(TURQUOISE).Bold(true)
	lavenderStyle := lipgloss.NewStyle().Foreground(LAVENDER).Bold(true)

	header := headerStyle.Render("Student Performance Prediction System")
	if user, ok := m.svc.currentUser(); ok {
		header = fmt.Sprintf("%s | %s, %s | %s",
			headerStyle.Render("SPPS"),
			headerStyle.Render("Welcome"),
			turquoiseStyle.Render(user.DisplayName()),
			lavenderStyle.Render(user.Role),
		)
	}

	selectedStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(WHITE).
		Background(BLUE).
		Padding(0, 1)

	normalStyle := lipgloss.NewStyle().
		Foreground(SILVER).
		Padding(0, 1)

	var tabs []string
	for _, s := range screens {
		label := fmt.Sprintf("%s %s", s.key, s.title)
		if s.view == m.currentView {
			tabs = append(tabs, selectedStyle.Render(label))
		} else {
			tabs = append(tabs, normalStyle.Render(label))
		}
	}
	nav := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	helpStyle := lipgloss.NewStyle().
		Foreground(GREY).
		MarginTop(1)

	content := lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().MarginBottom(1).Render(header),
		nav,
		"",
		body,
		helpStyle.Render(help+" • L: Logout • Q: Quit"),
	)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (s *services) currentUser() (models.User, bool) {
	if s == nil || s.guard == nil {
		return models.User{}, false
	}
	return s.guard.CurrentUser()
}

// renderAlert draws the blocking message box used for backend failures.
func renderAlert(text string) string {
	if text == "" {
		return ""
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(RED).
		Foreground(RED).
		Padding(0, 1).
		Render("❌ " + text)
}

func renderNotice(text string) string {
	if text == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(GREEN).Render("✅ " + text)
}

func renderLoadingLine(sp spinner.Model, what string) string {
	return lipgloss.NewStyle().Foreground(WHITE).Render(fmt.Sprintf("%s Loading %s...", sp.View(), what))
}

func newTable(columns []table.Column, rows []table.Row, height int) table.Model {
	tbl := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(min(max(len(rows)+1, 5), height)),
		table.WithFocused(true),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(BLUE).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(WHITE).
		Background(BLUE).
		Bold(true)
	tbl.SetStyles(s)
	return tbl
}

// riskStyle colours a risk badge by its presentation class.
func riskStyle(level models.RiskLevel) lipgloss.Style {
	switch models.BadgeClass(level) {
	case models.BadgeClass(models.RiskAtRisk):
		return lipgloss.NewStyle().Foreground(RED).Bold(true)
	case models.BadgeClass(models.RiskHighAchiever):
		return lipgloss.NewStyle().Foreground(GREEN).Bold(true)
	case models.BadgeClass(models.RiskAverage):
		return lipgloss.NewStyle().Foreground(YELLOW).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(SILVER)
	}
}

func riskText(level models.RiskLevel, display string) string {
	if strings.TrimSpace(display) == "" {
		return level.Label()
	}
	return display
}
