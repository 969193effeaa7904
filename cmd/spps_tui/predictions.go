package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/feelsunbreeze/spps_tui/internal/api"
	"github.com/feelsunbreeze/spps_tui/internal/models"
	"github.com/feelsunbreeze/spps_tui/internal/predictions"
)

type predictionsLoadedMsg struct {
	seq    int
	result predictions.ListResult
	err    error
}

func (m predictionsLoadedMsg) screenSeq() int { return m.seq }
func (m predictionsLoadedMsg) failure() error { return m.err }

type predictionGeneratedMsg struct {
	seq int
	err error
}

func (m predictionGeneratedMsg) screenSeq() int { return m.seq }
func (m predictionGeneratedMsg) failure() error { return m.err }

type reportLoadedMsg struct {
	seq    int
	id     int64
	report models.PredictionReport
	err    error
}

func (m reportLoadedMsg) screenSeq() int { return m.seq }
func (m reportLoadedMsg) failure() error { return m.err }

type predictionsScreen struct {
	view   *predictions.View
	table  table.Model
	report *reportLoadedMsg
	alert  string
}

func newPredictionsScreen(svc *services, seq int) (predictionsScreen, tea.Cmd) {
	view := predictions.NewView()
	return predictionsScreen{view: view}, loadPredictions(svc, seq, view.Enter())
}

func loadPredictions(svc *services, seq int, q predictions.ListQuery) tea.Cmd {
	return func() tea.Msg {
		res, err := svc.predictions.List(context.Background(), q)
		return predictionsLoadedMsg{seq: seq, result: res, err: err}
	}
}

func (s *predictionsScreen) loaded(msg predictionsLoadedMsg) {
	if s.view == nil {
		return
	}
	s.view.ListLoaded(msg.result, msg.err)
	if msg.err != nil {
		return
	}

	columns := []table.Column{
		{Title: "Student ID", Width: 12},
		{Title: "Student Name", Width: 24},
		{Title: "CGPA", Width: 6},
		{Title: "Risk Level", Width: 14},
		{Title: "Confidence", Width: 10},
		{Title: "Semester", Width: 10},
		{Title: "Date", Width: 12},
	}
	var rows []table.Row
	for _, p := range s.view.Predictions() {
		d := p.StudentDetails
		rows = append(rows, table.Row{
			d.StudentID,
			d.FirstName + " " + d.LastName,
			models.FormatCGPA(p.PredictedCGPA),
			riskText(p.RiskLevel, p.RiskLevelDisplay),
			models.FormatConfidence(p.ConfidenceScore),
			p.Semester,
			models.FormatDate(p.PredictedAt),
		})
	}
	s.table = newTable(columns, rows, 15)
}

func (s *predictionsScreen) reportLoaded(msg reportLoadedMsg) {
	if msg.err != nil {
		s.alert = api.Message(msg.err, "Failed to build report")
		return
	}
	s.report = &msg
}

func (s predictionsScreen) selected() (models.Prediction, bool) {
	if s.view.LoadError() != "" {
		return models.Prediction{}, false
	}
	all := s.view.Predictions()
	cursor := s.table.Cursor()
	if cursor < 0 || cursor >= len(all) {
		return models.Prediction{}, false
	}
	return all[cursor], true
}

// predictionGenerated applies a generation outcome and, on success, reads
// the list back from the backend.
func (m model) predictionGenerated(msg predictionGeneratedMsg) (tea.Model, tea.Cmd) {
	if m.predictions.view == nil {
		return m, nil
	}
	if m.predictions.view.GenerateFinished(msg.err) {
		return m, tea.Batch(m.spinner.Tick, loadPredictions(m.svc, m.seq, m.predictions.view.Query()))
	}
	return m, nil
}

func (m model) handlePredictionsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &m.predictions
	if s.view == nil {
		return m, nil
	}
	if s.view.FormOpen() {
		return m.handleGenerateFormKeys(msg)
	}
	if s.report != nil {
		switch msg.String() {
		case "esc", "enter", "x":
			s.report = nil
		}
		return m, nil
	}
	if next, cmd, ok := m.handleNavKeys(msg); ok {
		return next, cmd
	}

	svc, seq := m.svc, m.seq
	switch msg.String() {
	case "g":
		s.view.DismissNotice()
		s.view.OpenForm()
		return m, nil
	case "f":
		s.view.DismissNotice()
		return m, tea.Batch(m.spinner.Tick, loadPredictions(svc, seq, s.view.CycleFilter()))
	case "a":
		s.view.DismissNotice()
		return m, tea.Batch(m.spinner.Tick, loadPredictions(svc, seq, s.view.ShowAtRiskOnly()))
	case "r":
		return m, tea.Batch(m.spinner.Tick, loadPredictions(svc, seq, s.view.Enter()))
	case "p":
		if p, ok := s.selected(); ok {
			return m, func() tea.Msg {
				report, err := svc.predictions.Report(context.Background(), p.ID)
				return reportLoadedMsg{seq: seq, id: p.ID, report: report, err: err}
			}
		}
	case "x":
		s.alert = ""
		s.view.DismissNotice()
		return m, nil
	}

	var cmd tea.Cmd
	s.table, cmd = s.table.Update(msg)
	return m, cmd
}

func (m model) handleGenerateFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := m.predictions.view
	switch msg.String() {
	case "esc", "g":
		if !v.Generating() {
			v.CloseForm()
		}
	case "up", "k":
		v.CycleStudent(-1)
	case "down", "j":
		v.CycleStudent(1)
	case "left", "right", "tab", "s":
		v.CycleSemester()
	case "f":
		return m, tea.Batch(m.spinner.Tick, loadPredictions(m.svc, m.seq, v.CycleFilter()))
	case "enter":
		req, err := v.Submit()
		if err != nil {
			// The view keeps the message for the form.
			return m, nil
		}
		svc, seq := m.svc, m.seq
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			return predictionGeneratedMsg{seq: seq, err: svc.predictions.Generate(context.Background(), req)}
		})
	}
	return m, nil
}

func (m model) renderPredictions() string {
	s := m.predictions
	if s.view == nil {
		return m.renderPage("", "")
	}
	v := s.view
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(LIGHT_BLUE).MarginBottom(1)
	filterStyle := lipgloss.NewStyle().Foreground(LAVENDER)

	if s.report != nil {
		return m.renderPage(renderReport(*s.report), "• Esc/Enter: Close report")
	}

	count := len(v.Predictions())
	if v.LoadError() != "" {
		count = 0
	}
	sections := []string{
		titleStyle.Render(fmt.Sprintf("🔮 Performance Predictions (%d)", count)),
		filterStyle.Render("Filter by risk: " + v.FilterLabel()),
	}

	if v.FormOpen() {
		sections = append(sections, "", m.renderGenerateForm())
	}
	if s.alert != "" {
		sections = append(sections, renderAlert(s.alert))
	}
	if v.Notice() != "" {
		sections = append(sections, renderNotice(v.Notice()))
	}

	switch {
	case v.Phase() == predictions.PhaseLoading:
		sections = append(sections, renderLoadingLine(m.spinner, "predictions"))
	case v.LoadError() != "":
		sections = append(sections, renderAlert(v.LoadError()))
	case v.Empty():
		sections = append(sections, lipgloss.NewStyle().Foreground(SILVER).Padding(1, 0).Render(v.EmptyMessage()))
	default:
		sections = append(sections, s.table.View())
	}

	help := "• G: Generate • F: Filter • A: At-risk list • P: Report • R: Refresh • 1-5: Switch screen"
	if v.FormOpen() {
		help = "• ↑/↓: Student • ←/→: Semester • F: Filter • Enter: Generate • Esc: Cancel"
	}
	return m.renderPage(lipgloss.JoinVertical(lipgloss.Center, sections...), help)
}

func (m model) renderGenerateForm() string {
	v := m.predictions.view
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(WHITE)
	labelStyle := lipgloss.NewStyle().Bold(true).Foreground(WHITE).Width(10)
	valueStyle := lipgloss.NewStyle().Foreground(WHITE).Background(BLUE).Padding(0, 1)
	placeholderStyle := lipgloss.NewStyle().Foreground(GREY).Padding(0, 1)

	student := placeholderStyle.Render("-- Select Student --")
	if code := v.Selected(); code != "" {
		if st, ok := v.Students().ByCode(code); ok {
			student = valueStyle.Render(st.Label())
		} else {
			student = valueStyle.Render(code + " - " + v.StudentName(code))
		}
	}

	button := "Generate Prediction"
	if v.Generating() {
		button = m.spinner.View() + " Generating..."
	}

	rows := []string{
		titleStyle.Render("Generate New Prediction"),
		lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render("Student:"), student),
		lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render("Semester:"), valueStyle.Render(v.Semester()+" Semester")),
		lipgloss.NewStyle().Foreground(LIGHT_BLUE).MarginTop(1).Render(button),
	}
	if v.FormError() != "" {
		rows = append(rows, renderAlert(v.FormError()))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BLUE).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func renderReport(r reportLoadedMsg) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(LIGHT_BLUE).MarginBottom(1)
	keyStyle := lipgloss.NewStyle().Bold(true).Foreground(LAVENDER)
	valueStyle := lipgloss.NewStyle().Foreground(WHITE)

	keys := make([]string, 0, len(r.report))
	for k := range r.report {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := []string{titleStyle.Render(fmt.Sprintf("📄 Report for prediction #%d", r.id))}
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s %s", keyStyle.Render(k+":"), valueStyle.Render(fmt.Sprint(r.report[k]))))
	}
	if len(keys) == 0 {
		lines = append(lines, valueStyle.Render("The backend returned an empty report."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
