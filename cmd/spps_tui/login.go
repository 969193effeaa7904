package main

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/feelsunbreeze/spps_tui/internal/session"
)

const (
	fieldUsername = iota
	fieldPassword
	fieldLoginButton
	loginFieldCount
)

type loginForm struct {
	username     textinput.Model
	password     textinput.Model
	focusedField int
	showPassword bool
}

func newLoginForm() loginForm {
	username := textinput.New()
	username.Placeholder = "Enter your username"
	username.CharLimit = 150
	username.Width = 28

	password := textinput.New()
	password.Placeholder = "Enter your password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'
	password.Width = 28

	return loginForm{username: username, password: password}
}

// focus moves the cursor to the focused field and returns its blink command.
func (f *loginForm) focus() tea.Cmd {
	f.username.Blur()
	f.password.Blur()
	switch f.focusedField {
	case fieldUsername:
		return f.username.Focus()
	case fieldPassword:
		return f.password.Focus()
	}
	return nil
}

func (f loginForm) credentials() session.Credentials {
	return session.Credentials{
		Username: strings.TrimSpace(f.username.Value()),
		Password: f.password.Value(),
	}
}

func (m model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.login.showPassword = !m.login.showPassword
		if m.login.showPassword {
			m.login.password.EchoMode = textinput.EchoNormal
		} else {
			m.login.password.EchoMode = textinput.EchoPassword
		}
		return m, nil

	case "tab", "down":
		m.login.focusedField = (m.login.focusedField + 1) % loginFieldCount
		return m, m.login.focus()

	case "shift+tab", "up":
		m.login.focusedField = (m.login.focusedField - 1 + loginFieldCount) % loginFieldCount
		return m, m.login.focus()

	case "enter":
		if m.login.focusedField != fieldLoginButton {
			m.login.focusedField++
			return m, m.login.focus()
		}
		creds := m.login.credentials()
		if creds.Username == "" || creds.Password == "" {
			return m, nil
		}

		m.setLoadingState("🔐 Logging in, please wait", "Authenticating your credentials with the SPPS backend", "• Q: Cancel and quit")
		m.currentView = LoadingView
		guard := m.svc.guard
		return m, tea.Batch(
			m.spinner.Tick,
			func() tea.Msg {
				code, text := guard.Login(context.Background(), creds)
				return LoginResultMsg{Code: code, Text: text}
			},
		)
	}

	var cmd tea.Cmd
	switch m.login.focusedField {
	case fieldUsername:
		m.login.username, cmd = m.login.username.Update(msg)
	case fieldPassword:
		m.login.password, cmd = m.login.password.Update(msg)
	case fieldLoginButton:
		if msg.String() == "q" {
			return m, tea.Quit
		}
	}
	return m, cmd
}

func (m model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "r", "enter":
		m.loginResult = nil
		m.currentView = LoginView
		m.login.focusedField = fieldPassword
		m.login.password.SetValue("")
		return m, m.login.focus()
	}
	return m, nil
}

func (m model) renderLogin() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(LIGHT_BLUE).
		MarginBottom(2)

	labelStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(WHITE)

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(WHITE).
		Padding(0, 1).
		Width(32).
		MarginBottom(1)

	focusedInputStyle := inputStyle.
		BorderForeground(BLUE)

	buttonStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(WHITE).
		Padding(0, 2).
		Margin(1, 0).
		Border(lipgloss.RoundedBorder())

	focusedButtonStyle := buttonStyle.
		Background(BLUE)

	helpStyle := lipgloss.NewStyle().
		Foreground(GREY)

	field := func(label string, input textinput.Model, focused bool) string {
		style := inputStyle
		if focused {
			style = focusedInputStyle
		}
		return lipgloss.JoinVertical(lipgloss.Left, labelStyle.Render(label), style.Render(input.View()))
	}

	title := titleStyle.Render("Student Performance Prediction System")
	usernameField := field("Username:", m.login.username, m.login.focusedField == fieldUsername)
	passwordField := field("Password:", m.login.password, m.login.focusedField == fieldPassword)

	loginButton := buttonStyle.Render("Login")
	if m.login.focusedField == fieldLoginButton {
		loginButton = focusedButtonStyle.Render("Login")
	}

	helpText := helpStyle.Render("• ↑/↓: Navigate • Esc: Show password • Enter: Select • Ctrl+C: Quit")

	content := lipgloss.JoinVertical(lipgloss.Center, title, usernameField, passwordField, loginButton, "", helpText)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m model) renderResult() string {
	var statusText string
	color := RED

	if m.loginResult != nil {
		switch m.loginResult.Code {
		case session.ErrNone:
			color = GREEN
			statusText = "✅ You have successfully logged in!"
		case session.ErrNetworkIssue:
			statusText = "🌐 Could not reach the SPPS backend! Please check that it is running."
		case session.ErrInvalidCredentials:
			statusText = "❌ Invalid credentials! Please check your username and password."
		case session.ErrParsingError:
			statusText = "❓ Error reading your profile! Please try again later."
		default:
			statusText = "❓ An unknown error occurred! Please try again later."
		}
	}

	responseStyle := lipgloss.NewStyle().
		Foreground(color)

	detailStyle := lipgloss.NewStyle().
		Foreground(SILVER).
		MarginTop(1)

	helpStyle := lipgloss.NewStyle().
		Foreground(GREY).
		MarginTop(1)

	var detail string
	if m.loginResult != nil && m.loginResult.Text != "" {
		detail = detailStyle.Render(m.loginResult.Text)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		responseStyle.Render(statusText),
		detail,
		helpStyle.Render("• R: Retry • Q: Quit"),
	)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
