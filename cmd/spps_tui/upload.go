package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/feelsunbreeze/spps_tui/internal/models"
	"github.com/feelsunbreeze/spps_tui/internal/results"
	"github.com/feelsunbreeze/spps_tui/internal/validation"
)

type uploadFinishedMsg struct {
	seq    int
	result models.UploadResult
	err    error
}

func (m uploadFinishedMsg) screenSeq() int { return m.seq }
func (m uploadFinishedMsg) failure() error { return m.err }

type uploadScreen struct {
	path      textinput.Model
	editing   bool
	semester  int
	uploading bool
	report    *models.UploadResult
	notice    string
	alert     string
}

func newUploadScreen(svc *services, seq int) (uploadScreen, tea.Cmd) {
	path := textinput.New()
	path.Placeholder = "path/to/results.csv"
	path.Width = 48
	return uploadScreen{path: path}, nil
}

func (s *uploadScreen) finished(msg uploadFinishedMsg) {
	s.uploading = false
	var verr *validation.Error
	if errors.As(msg.err, &verr) {
		s.alert = verr.Error()
		return
	}
	s.report = &msg.result
	if msg.err == nil {
		s.path.SetValue("")
	}
}

func (m model) handleUploadKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := &m.upload
	if s.editing {
		switch msg.String() {
		case "enter", "esc":
			s.editing = false
			s.path.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		s.path, cmd = s.path.Update(msg)
		return m, cmd
	}

	if next, cmd, ok := m.handleNavKeys(msg); ok {
		return next, cmd
	}

	switch msg.String() {
	case "f", "i":
		s.editing = true
		s.report = nil
		s.alert = ""
		return m, s.path.Focus()

	case "s", "tab":
		s.semester = (s.semester + 1) % len(results.Semesters)

	case "t":
		path, err := results.WriteTemplate(m.svc.cfg.DownloadDir)
		if err != nil {
			m.logger().Error("Failed to write template", zap.Error(err))
			s.alert = err.Error()
			return m, nil
		}
		s.alert = ""
		s.notice = "Template written to " + path

	case "u", "enter":
		if s.uploading {
			return m, nil
		}
		s.uploading = true
		s.report = nil
		s.alert = ""
		s.notice = ""
		svc, seq := m.svc, m.seq
		path, semester := s.path.Value(), results.Semesters[s.semester]
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			result, err := svc.uploader.Upload(context.Background(), path, semester)
			return uploadFinishedMsg{seq: seq, result: result, err: err}
		})

	case "x":
		s.alert = ""
	}
	return m, nil
}

func (m model) renderUpload() string {
	s := m.upload
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(LIGHT_BLUE).MarginBottom(1)
	labelStyle := lipgloss.NewStyle().Bold(true).Foreground(WHITE).Width(12)
	infoStyle := lipgloss.NewStyle().Foreground(SILVER)
	monoStyle := lipgloss.NewStyle().Foreground(TURQUOISE)

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(WHITE).
		Padding(0, 1)
	if s.editing {
		inputStyle = inputStyle.BorderForeground(BLUE)
	}

	columns := []string{
		monoStyle.Render("student_id") + infoStyle.Render(" - Student identification number"),
		monoStyle.Render("course_code") + infoStyle.Render(" - Course code (e.g., CSC101)"),
		monoStyle.Render("course_title") + infoStyle.Render(" - Course name (optional)"),
		monoStyle.Render("score") + infoStyle.Render(" - Student's score (0-100)"),
		monoStyle.Render("credit_units") + infoStyle.Render(" - Course credit units"),
	}

	var semesters []string
	for i, sem := range results.Semesters {
		style := lipgloss.NewStyle().Foreground(SILVER).Padding(0, 1)
		if i == s.semester {
			style = style.Foreground(WHITE).Background(BLUE).Bold(true)
		}
		semesters = append(semesters, style.Render(sem.Label()))
	}

	sections := []string{
		titleStyle.Render("📤 Upload Student Results"),
		infoStyle.Render("Your CSV file must contain the following columns:"),
		lipgloss.JoinVertical(lipgloss.Left, columns...),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center, labelStyle.Render("Semester:"), lipgloss.JoinHorizontal(lipgloss.Top, semesters...)),
		lipgloss.JoinHorizontal(lipgloss.Center, labelStyle.Render("CSV File:"), inputStyle.Render(s.path.View())),
	}

	if s.uploading {
		sections = append(sections, renderLoadingLine(m.spinner, "upload"))
	}
	if s.notice != "" {
		sections = append(sections, renderNotice(s.notice))
	}
	if s.alert != "" {
		sections = append(sections, renderAlert(s.alert))
	}
	if s.report != nil {
		sections = append(sections, renderUploadReport(*s.report))
	}

	help := "• F: Choose file • S: Semester • U: Upload • T: Download template • 1-5: Switch screen"
	if s.editing {
		help = "• Type the file path • Enter/Esc: Done"
	}
	return m.renderPage(lipgloss.JoinVertical(lipgloss.Left, sections...), help)
}

func renderUploadReport(r models.UploadResult) string {
	if !r.Success {
		msg := r.Error
		if msg == "" {
			msg = "Upload failed"
		}
		return renderAlert(msg)
	}

	warnStyle := lipgloss.NewStyle().Foreground(YELLOW)
	lines := []string{
		renderNotice("Upload Successful!"),
		fmt.Sprintf("Results Created: %d", r.ResultsCreated),
		fmt.Sprintf("Total Processed: %d", r.TotalProcessed),
	}
	if len(r.Errors) > 0 {
		lines = append(lines, warnStyle.Render(fmt.Sprintf("Warnings (%d):", len(r.Errors))))
		for _, e := range r.Errors {
			lines = append(lines, warnStyle.Render("  • "+strings.TrimSpace(e)))
		}
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(GREEN).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
