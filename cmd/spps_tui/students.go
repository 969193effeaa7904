package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/feelsunbreeze/spps_tui/internal/api"
	"github.com/feelsunbreeze/spps_tui/internal/models"
	"github.com/feelsunbreeze/spps_tui/internal/students"
)

type studentsLoadedMsg struct {
	seq   int
	index students.Index
	err   error
}

func (m studentsLoadedMsg) screenSeq() int { return m.seq }
func (m studentsLoadedMsg) failure() error { return m.err }

// studentSavedMsg carries the listing re-read after a create or update.
type studentSavedMsg struct {
	seq     int
	created bool
	student models.Student
	index   students.Index
	err     error
}

func (m studentSavedMsg) screenSeq() int { return m.seq }
func (m studentSavedMsg) failure() error { return m.err }

type studentGPAMsg struct {
	seq     int
	student models.Student
	gpa     models.GPA
	err     error
}

func (m studentGPAMsg) screenSeq() int { return m.seq }
func (m studentGPAMsg) failure() error { return m.err }

var studentFieldLabels = []string{
	"Student ID", "First Name", "Last Name", "Email", "Department", "Admission Year", "Admission Score",
}

type studentForm struct {
	inputs  []textinput.Model
	focus   int
	editing *models.Student
	saving  bool
	err     string
}

func newStudentForm(editing *models.Student) *studentForm {
	f := &studentForm{editing: editing}
	in := students.NewStudentInput(time.Now())
	values := []string{"", "", "", "", "", strconv.Itoa(in.AdmissionYear), ""}
	if editing != nil {
		values = []string{
			editing.StudentID,
			editing.FirstName,
			editing.LastName,
			editing.Email,
			editing.Department,
			strconv.Itoa(editing.AdmissionYear),
			strconv.FormatFloat(editing.AdmissionScore, 'f', -1, 64),
		}
	}

	for i, label := range studentFieldLabels {
		ti := textinput.New()
		ti.Placeholder = label
		ti.Width = 30
		ti.SetValue(values[i])
		f.inputs = append(f.inputs, ti)
	}
	if editing != nil {
		f.focus = 1
	}
	return f
}

func (f *studentForm) focusCurrent() tea.Cmd {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	return f.inputs[f.focus].Focus()
}

func (f *studentForm) move(step int) tea.Cmd {
	first := 0
	if f.editing != nil {
		first = 1
	}
	n := len(f.inputs) - first
	f.focus = first + ((f.focus-first+step)%n+n)%n
	return f.focusCurrent()
}

func (f *studentForm) input() (models.StudentInput, error) {
	v := func(i int) string { return f.inputs[i].Value() }
	return students.InputFromFields(v(0), v(1), v(2), v(3), v(4), v(5), v(6))
}

type studentsScreen struct {
	loading bool
	failed  bool
	index   students.Index
	table   table.Model
	form    *studentForm
	gpa     string
	notice  string
	alert   string
}

func newStudentsScreen(svc *services, seq int) (studentsScreen, tea.Cmd) {
	return studentsScreen{loading: true}, loadStudents(svc, seq)
}

func loadStudents(svc *services, seq int) tea.Cmd {
	return func() tea.Msg {
		index, err := svc.directory.List(context.Background())
		return studentsLoadedMsg{seq: seq, index: index, err: err}
	}
}

func (s *studentsScreen) loaded(msg studentsLoadedMsg) {
	s.loading = false
	if msg.err != nil {
		s.failed = true
		s.setIndex(students.Index{})
		s.alert = api.Message(msg.err, "Failed to load students")
		return
	}
	s.failed = false
	s.alert = ""
	s.setIndex(msg.index)
}

func (s *studentsScreen) setIndex(index students.Index) {
	s.index = index
	columns := []table.Column{
		{Title: "Student ID", Width: 12},
		{Title: "Name", Width: 26},
		{Title: "Email", Width: 28},
		{Title: "Department", Width: 20},
		{Title: "Year", Width: 6},
		{Title: "GPA", Width: 6},
	}
	var rows []table.Row
	for _, st := range index.All() {
		rows = append(rows, table.Row{
			st.StudentID,
			st.FullName(),
			st.Email,
			st.Department,
			strconv.Itoa(st.AdmissionYear),
			models.FormatGPA(st.CurrentGPA),
		})
	}
	s.table = newTable(columns, rows, 15)
}

// studentSaved applies a save outcome. When the write went through but the
// listing could not be read back the form closes and the screen reloads.
func (m model) studentSaved(msg studentSavedMsg) (tea.Model, tea.Cmd) {
	s := &m.students
	if s.form == nil {
		return m, nil
	}
	s.form.saving = false
	notice := fmt.Sprintf("Student %s updated", msg.student.StudentID)
	if msg.created {
		notice = fmt.Sprintf("Student %s added", msg.student.StudentID)
	}

	switch {
	case errors.Is(msg.err, students.ErrRefreshFailed):
		s.form = nil
		s.notice = notice
		s.loading = true
		return m, tea.Batch(m.spinner.Tick, loadStudents(m.svc, m.seq))
	case msg.err != nil:
		s.form.err = api.Message(msg.err, "Failed to save student")
		return m, nil
	}

	s.form = nil
	s.setIndex(msg.index)
	s.notice = notice
	return m, nil
}

func (s *studentsScreen) gpaLoaded(msg studentGPAMsg) {
	if msg.err != nil {
		s.alert = api.Message(msg.err, "Failed to load GPA")
		return
	}
	s.gpa = fmt.Sprintf("%s (%s): GPA %s", msg.student.FullName(), msg.student.StudentID, models.FormatGPA(msg.gpa.GPA))
}

func (s studentsScreen) selected() (models.Student, bool) {
	all := s.index.All()
	cursor := s.table.Cursor()
	if cursor < 0 || cursor >= len(all) {
		return models.Student{}, false
	}
	return all[cursor], true
}

func (m model) handleStudentsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.students.form != nil {
		return m.handleStudentFormKeys(msg)
	}
	if next, cmd, ok := m.handleNavKeys(msg); ok {
		return next, cmd
	}

	svc, seq := m.svc, m.seq
	switch msg.String() {
	case "r":
		m.students.loading = true
		m.students.notice = ""
		return m, tea.Batch(m.spinner.Tick, loadStudents(svc, seq))
	case "n":
		m.students.notice = ""
		m.students.form = newStudentForm(nil)
		return m, m.students.form.focusCurrent()
	case "e":
		if st, ok := m.students.selected(); ok {
			m.students.notice = ""
			m.students.form = newStudentForm(&st)
			return m, m.students.form.focusCurrent()
		}
	case "g":
		if st, ok := m.students.selected(); ok {
			m.students.gpa = ""
			return m, func() tea.Msg {
				gpa, err := svc.directory.GPA(context.Background(), st.ID)
				return studentGPAMsg{seq: seq, student: st, gpa: gpa, err: err}
			}
		}
	case "x":
		m.students.alert = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.students.table, cmd = m.students.table.Update(msg)
	return m, cmd
}

func (m model) handleStudentFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.students.form
	switch msg.String() {
	case "esc":
		if !f.saving {
			m.students.form = nil
		}
		return m, nil
	case "tab", "down":
		return m, f.move(1)
	case "shift+tab", "up":
		return m, f.move(-1)
	case "enter", "ctrl+s":
		if msg.String() == "enter" && f.focus < len(f.inputs)-1 {
			return m, f.move(1)
		}
		if f.saving {
			return m, nil
		}
		in, err := f.input()
		if err != nil {
			f.err = err.Error()
			return m, nil
		}

		f.saving = true
		f.err = ""
		svc, seq, editing := m.svc, m.seq, f.editing
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			ctx := context.Background()
			var (
				st  models.Student
				err error
			)
			if editing == nil {
				st, err = svc.directory.Create(ctx, in)
			} else {
				st, err = svc.directory.Update(ctx, *editing, in)
			}
			if err != nil {
				return studentSavedMsg{seq: seq, created: editing == nil, err: err}
			}
			index, err := svc.directory.Relist(ctx)
			return studentSavedMsg{seq: seq, created: editing == nil, student: st, index: index, err: err}
		})
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return m, cmd
}

func (m model) renderStudents() string {
	s := m.students
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(LIGHT_BLUE).MarginBottom(1)

	if s.form != nil {
		return m.renderPage(m.renderStudentForm(), "• Tab/↑/↓: Move • Enter: Next/Save • Ctrl+S: Save • Esc: Cancel")
	}

	help := "• N: New • E: Edit • G: GPA • R: Refresh • 1-5: Switch screen"
	if s.loading {
		return m.renderPage(renderLoadingLine(m.spinner, "students"), help)
	}

	sections := []string{titleStyle.Render(fmt.Sprintf("🎓 Students (%d)", s.index.Len()))}
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
	if s.gpa != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(LIGHT_GREEN).MarginTop(1).Render(s.gpa))
	}

	return m.renderPage(lipgloss.JoinVertical(lipgloss.Center, sections...), help+" • ↑/↓: Select")
}

func (m model) renderStudentForm() string {
	f := m.students.form
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(LIGHT_BLUE).MarginBottom(1)
	labelStyle := lipgloss.NewStyle().Bold(true).Foreground(WHITE).Width(18)
	lockedStyle := lipgloss.NewStyle().Foreground(GREY)

	title := "➕ Add New Student"
	if f.editing != nil {
		title = "✏️  Edit Student " + f.editing.StudentID
	}

	rows := []string{titleStyle.Render(title)}
	for i, label := range studentFieldLabels {
		value := f.inputs[i].View()
		if i == 0 && f.editing != nil {
			value = lockedStyle.Render(f.editing.StudentID + " (locked)")
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label+":"), value))
	}

	if f.saving {
		rows = append(rows, "", renderLoadingLine(m.spinner, "save"))
	}
	if f.err != "" {
		rows = append(rows, "", renderAlert(f.err))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
