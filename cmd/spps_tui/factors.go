package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/feelsunbreeze/spps_tui/internal/api"
	"github.com/feelsunbreeze/spps_tui/internal/factors"
	"github.com/feelsunbreeze/spps_tui/internal/models"
	"github.com/feelsunbreeze/spps_tui/internal/students"
)

type factorsLoadedMsg struct {
	seq     int
	index   students.Index
	records int
	err     error
}

func (m factorsLoadedMsg) screenSeq() int { return m.seq }
func (m factorsLoadedMsg) failure() error { return m.err }

type factorsSavedMsg struct {
	seq     int
	student models.Student
	index   students.Index
	err     error
}

func (m factorsSavedMsg) screenSeq() int { return m.seq }
func (m factorsSavedMsg) failure() error { return m.err }

const (
	factorAttendance = iota
	factorAssignment
	factorStudyHours
	factorStatus
	factorExtracurricular
	factorFieldCount
)

type factorForm struct {
	student         models.Student
	inputs          []textinput.Model
	status          int
	extracurricular bool
	focus           int
	saving          bool
	err             string
}

func newFactorForm(st models.Student) *factorForm {
	form := factors.FormFor(st)
	f := &factorForm{student: st, extracurricular: form.ExtracurricularParticipation}

	for _, v := range []float64{form.AttendancePercentage, form.AssignmentAverage, form.StudyHoursPerWeek} {
		ti := textinput.New()
		ti.Width = 10
		ti.SetValue(strconv.FormatFloat(v, 'f', -1, 64))
		f.inputs = append(f.inputs, ti)
	}
	for i, s := range models.SocioeconomicStatuses {
		if s == form.SocioeconomicStatus {
			f.status = i
		}
	}
	return f
}

func (f *factorForm) focusCurrent() tea.Cmd {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	if f.focus < len(f.inputs) {
		return f.inputs[f.focus].Focus()
	}
	return nil
}

func (f *factorForm) form() (factors.Form, error) {
	return factors.ParseForm(
		f.inputs[factorAttendance].Value(),
		f.inputs[factorAssignment].Value(),
		f.inputs[factorStudyHours].Value(),
		models.SocioeconomicStatuses[f.status],
		f.extracurricular,
	)
}

type factorsScreen struct {
	loading bool
	failed  bool
	index   students.Index
	records int
	table   table.Model
	form    *factorForm
	notice  string
	alert   string
}

func newFactorsScreen(svc *services, seq int) (factorsScreen, tea.Cmd) {
	return factorsScreen{loading: true}, loadFactors(svc, seq)
}

func loadFactors(svc *services, seq int) tea.Cmd {
	return func() tea.Msg {
		var msg factorsLoadedMsg
		msg.seq = seq

		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			index, err := svc.directory.List(ctx)
			msg.index = index
			return err
		})
		g.Go(func() error {
			records, err := svc.factors.List(ctx)
			msg.records = len(records)
			return err
		})
		msg.err = g.Wait()
		return msg
	}
}

func (s *factorsScreen) loaded(msg factorsLoadedMsg) {
	s.loading = false
	if msg.err != nil {
		// A stale index must not pick create or update for the next save.
		s.failed = true
		s.records = 0
		s.setIndex(students.Index{})
		s.alert = api.Message(msg.err, "Failed to load student factors")
		return
	}
	s.failed = false
	s.alert = ""
	s.records = msg.records
	s.setIndex(msg.index)
}

func (s *factorsScreen) setIndex(index students.Index) {
	s.index = index
	columns := []table.Column{
		{Title: "Student ID", Width: 12},
		{Title: "Name", Width: 26},
		{Title: "Attendance", Width: 10},
		{Title: "Assignment", Width: 10},
		{Title: "Study Hrs", Width: 9},
		{Title: "Socioeconomic", Width: 13},
		{Title: "Extracurricular", Width: 15},
	}
	var rows []table.Row
	for _, st := range index.All() {
		row := table.Row{st.StudentID, st.FullName(), "-", "-", "-", "-", "-"}
		if f := st.Factors; f != nil {
			extra := "No"
			if f.ExtracurricularParticipation {
				extra = "Yes"
			}
			row = table.Row{
				st.StudentID,
				st.FullName(),
				fmt.Sprintf("%g%%", f.AttendancePercentage),
				fmt.Sprintf("%g", f.AssignmentAverage),
				fmt.Sprintf("%g", f.StudyHoursPerWeek),
				string(f.SocioeconomicStatus),
				extra,
			}
		}
		rows = append(rows, row)
	}
	s.table = newTable(columns, rows, 15)
}

// factorsSaved applies a save outcome. When the write went through but the
// listing could not be read back the form closes and the screen reloads.
func (m model) factorsSaved(msg factorsSavedMsg) (tea.Model, tea.Cmd) {
	s := &m.factors
	if s.form == nil {
		return m, nil
	}
	s.form.saving = false
	notice := fmt.Sprintf("Factors saved for %s", msg.student.Label())

	switch {
	case errors.Is(msg.err, students.ErrRefreshFailed):
		s.form = nil
		s.notice = notice
		s.loading = true
		return m, tea.Batch(m.spinner.Tick, loadFactors(m.svc, m.seq))
	case msg.err != nil:
		s.form.err = api.Message(msg.err, "Failed to save factors")
		return m, nil
	}

	s.form = nil
	s.setIndex(msg.index)
	s.notice = notice
	return m, nil
}

func (s factorsScreen) selected() (models.Student, bool) {
	all := s.index.All()
	cursor := s.table.Cursor()
	if cursor < 0 || cursor >= len(all) {
		return models.Student{}, false
	}
	return all[cursor], true
}

func (m model) handleFactorsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.factors.form != nil {
		return m.handleFactorFormKeys(msg)
	}
	if next, cmd, ok := m.handleNavKeys(msg); ok {
		return next, cmd
	}

	switch msg.String() {
	case "r":
		m.factors.loading = true
		m.factors.notice = ""
		return m, tea.Batch(m.spinner.Tick, loadFactors(m.svc, m.seq))
	case "enter", "e":
		if m.factors.loading {
			return m, nil
		}
		if st, ok := m.factors.selected(); ok {
			m.factors.notice = ""
			m.factors.form = newFactorForm(st)
			return m, m.factors.form.focusCurrent()
		}
	case "x":
		m.factors.alert = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.factors.table, cmd = m.factors.table.Update(msg)
	return m, cmd
}

func (m model) handleFactorFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.factors.form
	switch msg.String() {
	case "esc":
		if !f.saving {
			m.factors.form = nil
		}
		return m, nil
	case "tab", "down":
		f.focus = (f.focus + 1) % factorFieldCount
		return m, f.focusCurrent()
	case "shift+tab", "up":
		f.focus = (f.focus - 1 + factorFieldCount) % factorFieldCount
		return m, f.focusCurrent()
	case "left", "right", " ":
		switch f.focus {
		case factorStatus:
			n := len(models.SocioeconomicStatuses)
			if msg.String() == "left" {
				f.status = (f.status - 1 + n) % n
			} else {
				f.status = (f.status + 1) % n
			}
			return m, nil
		case factorExtracurricular:
			f.extracurricular = !f.extracurricular
			return m, nil
		}
	case "enter", "ctrl+s":
		if f.saving {
			return m, nil
		}
		form, err := f.form()
		if err != nil {
			f.err = err.Error()
			return m, nil
		}

		f.saving = true
		f.err = ""
		svc, seq, index, st := m.svc, m.seq, m.factors.index, f.student
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			refreshed, err := svc.factors.Save(context.Background(), index, st.ID, form)
			return factorsSavedMsg{seq: seq, student: st, index: refreshed, err: err}
		})
	}

	if f.focus < len(f.inputs) {
		var cmd tea.Cmd
		f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) renderFactors() string {
	s := m.factors
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(LIGHT_BLUE).MarginBottom(1)

	if s.form != nil {
		return m.renderPage(m.renderFactorForm(), "• Tab/↑/↓: Move • ←/→/Space: Change choice • Enter: Save • Esc: Cancel")
	}

	help := "• Enter/E: Edit factors • R: Refresh • 1-5: Switch screen"
	if s.loading {
		return m.renderPage(renderLoadingLine(m.spinner, "student factors"), help)
	}

	sections := []string{titleStyle.Render(fmt.Sprintf("🧩 Student Factors (%d records)", s.records))}
	if s.alert != "" {
		sections = append(sections, renderAlert(s.alert), lipgloss.NewStyle().Foreground(GREY).Render("X: Dismiss"))
	}
	if s.notice != "" {
		sections = append(sections, renderNotice(s.notice))
	}
	switch {
	case s.failed:
	case s.index.Len() == 0:
		sections = append(sections, lipgloss.NewStyle().Foreground(SILVER).Padding(1, 0).Render(students.EmptyMessage))
	default:
		sections = append(sections, s.table.View())
	}

	return m.renderPage(lipgloss.JoinVertical(lipgloss.Center, sections...), help+" • ↑/↓: Select")
}

func (m model) renderFactorForm() string {
	f := m.factors.form
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(LIGHT_BLUE).MarginBottom(1)
	labelStyle := lipgloss.NewStyle().Bold(true).Foreground(WHITE).Width(30)
	choiceStyle := lipgloss.NewStyle().Foreground(SILVER)
	focusedChoiceStyle := lipgloss.NewStyle().Foreground(WHITE).Background(BLUE).Padding(0, 1)

	choice := func(field int, text string) string {
		if f.focus == field {
			return focusedChoiceStyle.Render(text)
		}
		return choiceStyle.Render(text)
	}

	status := string(models.SocioeconomicStatuses[f.status])
	checkbox := "○ No"
	if f.extracurricular {
		checkbox = "● Yes"
	}

	mode := "create"
	if students.RefOf(f.student).Present() {
		mode = "update"
	}

	rows := []string{
		titleStyle.Render(fmt.Sprintf("🧩 Factors for %s (%s)", f.student.Label(), mode)),
		lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render("Attendance Percentage (0-100):"), f.inputs[factorAttendance].View()),
		lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render("Assignment Average (0-100):"), f.inputs[factorAssignment].View()),
		lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render("Study Hours per Week (0-40):"), f.inputs[factorStudyHours].View()),
		lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render("Socioeconomic Status:"), choice(factorStatus, "◀ "+status+" ▶")),
		lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render("Extracurricular:"), choice(factorExtracurricular, checkbox)),
	}

	if f.saving {
		rows = append(rows, "", renderLoadingLine(m.spinner, "save"))
	}
	if f.err != "" {
		rows = append(rows, "", renderAlert(f.err))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
