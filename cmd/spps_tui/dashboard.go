package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/feelsunbreeze/spps_tui/internal/api"
	"github.com/feelsunbreeze/spps_tui/internal/dashboard"
	"github.com/feelsunbreeze/spps_tui/internal/models"
)

type dashboardLoadedMsg struct {
	seq     int
	summary dashboard.Summary
	err     error
}

func (m dashboardLoadedMsg) screenSeq() int { return m.seq }
func (m dashboardLoadedMsg) failure() error { return m.err }

type dashboardScreen struct {
	loading bool
	summary dashboard.Summary
	recent  table.Model
	alert   string
}

func newDashboardScreen(svc *services, seq int) (dashboardScreen, tea.Cmd) {
	return dashboardScreen{loading: true}, loadDashboard(svc, seq)
}

func loadDashboard(svc *services, seq int) tea.Cmd {
	return func() tea.Msg {
		summary, err := svc.dashboard.Load(context.Background())
		return dashboardLoadedMsg{seq: seq, summary: summary, err: err}
	}
}

func (s *dashboardScreen) loaded(msg dashboardLoadedMsg) {
	s.loading = false
	if msg.err != nil {
		s.alert = api.Message(msg.err, "Failed to load dashboard data")
		return
	}
	s.alert = ""
	s.summary = msg.summary

	columns := []table.Column{
		{Title: "Student ID", Width: 12},
		{Title: "Student Name", Width: 28},
		{Title: "Predicted CGPA", Width: 14},
		{Title: "Risk Level", Width: 14},
		{Title: "Date", Width: 12},
	}
	var rows []table.Row
	for _, p := range msg.summary.Stats.RecentPredictions {
		rows = append(rows, table.Row{
			p.StudentID,
			p.StudentName,
			models.FormatCGPA(p.PredictedCGPA),
			p.RiskLevel.Label(),
			models.FormatDate(p.PredictedAt),
		})
	}
	s.recent = newTable(columns, rows, 10)
}

func (m model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if next, cmd, ok := m.handleNavKeys(msg); ok {
		return next, cmd
	}

	switch msg.String() {
	case "r":
		m.dashboard.loading = true
		return m, tea.Batch(m.spinner.Tick, loadDashboard(m.svc, m.seq))
	}

	var cmd tea.Cmd
	m.dashboard.recent, cmd = m.dashboard.recent.Update(msg)
	return m, cmd
}

func (m model) renderDashboard() string {
	s := m.dashboard
	help := "• R: Refresh • 1-5: Switch screen"

	if s.loading {
		return m.renderPage(renderLoadingLine(m.spinner, "dashboard"), help)
	}
	if s.alert != "" {
		return m.renderPage(renderAlert(s.alert), help)
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(LIGHT_BLUE).MarginBottom(1)
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BLUE).
		Padding(0, 2).
		Margin(0, 1).
		Align(lipgloss.Center)
	labelStyle := lipgloss.NewStyle().Foreground(SILVER)
	valueStyle := lipgloss.NewStyle().Bold(true).Foreground(WHITE)

	var cards []string
	for i, c := range s.summary.Cards() {
		vs := valueStyle
		switch i {
		case 2:
			vs = vs.Foreground(RED)
		case 3:
			vs = vs.Foreground(GREEN)
		}
		cards = append(cards, cardStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
			labelStyle.Render(c.Label),
			vs.Render(strconv.Itoa(c.Value)),
		)))
	}

	var shares []string
	for _, sh := range s.summary.Shares() {
		shares = append(shares, fmt.Sprintf("%s %s",
			labelStyle.Render(sh.Label+":"),
			riskStyle(sh.Level).Render(fmt.Sprintf("%g%%", sh.Percent)),
		))
	}

	sections := []string{
		titleStyle.Render("📊 Dashboard Overview"),
		lipgloss.JoinHorizontal(lipgloss.Top, cards...),
		"",
		titleStyle.Render("Risk Distribution"),
		lipgloss.JoinHorizontal(lipgloss.Top, joinWith(shares, "  |  ")...),
	}
	if len(s.summary.Stats.RecentPredictions) > 0 {
		sections = append(sections, "", titleStyle.Render("Recent Predictions"), s.recent.View())
	}

	return m.renderPage(lipgloss.JoinVertical(lipgloss.Center, sections...), help+" • ↑/↓: Scroll")
}

func joinWith(parts []string, sep string) []string {
	var out []string
	for i, p := range parts {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, p)
	}
	return out
}
