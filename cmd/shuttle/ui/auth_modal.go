package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"point2point/internal/api"
	"point2point/internal/forms"
)

// authMode selects which form the modal shows.
type authMode int

const (
	authModeLogin authMode = iota
	authModeSignup
)

// Modal rows: email and password are shared; the name fields only focus
// in signup mode.
const (
	authEmail = iota
	authPassword
	authFirstName
	authLastName
	authSubmit
	authFieldCount
)

// AuthModalModel is the login/signup overlay. Pages open it instead of
// calling the network when an action needs a signed-in user.
type AuthModalModel struct {
	deps   Deps
	styles Styles

	mode    authMode
	focus   int
	working bool

	email     textinput.Model
	password  textinput.Model
	firstName textinput.Model
	lastName  textinput.Model

	errs forms.Errors
}

// NewAuthModalModel creates the modal in the given mode.
func NewAuthModalModel(deps Deps, mode authMode) AuthModalModel {
	m := AuthModalModel{deps: deps, styles: DefaultStyles(), mode: mode}
	m.email = newInput("you@columbia.edu", 80)
	m.password = newInput("password", 80)
	m.password.EchoMode = textinput.EchoPassword
	m.firstName = newInput("First name", 40)
	m.lastName = newInput("Last name", 40)
	m.setFocus(authEmail)
	return m
}

func (m *AuthModalModel) inputFor(field int) *textinput.Model {
	switch field {
	case authEmail:
		return &m.email
	case authPassword:
		return &m.password
	case authFirstName:
		return &m.firstName
	case authLastName:
		return &m.lastName
	}
	return nil
}

func (m *AuthModalModel) setFocus(field int) {
	m.focus = field
	for f := authEmail; f < authSubmit; f++ {
		m.inputFor(f).Blur()
	}
	if in := m.inputFor(field); in != nil {
		in.Focus()
	}
}

// nextField skips the name rows while in login mode.
func (m *AuthModalModel) nextField(delta int) {
	f := m.focus
	for {
		f = (f + delta + authFieldCount) % authFieldCount
		if m.mode == authModeLogin && (f == authFirstName || f == authLastName) {
			continue
		}
		break
	}
	m.setFocus(f)
}

// Update handles messages. The second return reports whether the modal
// should close.
func (m AuthModalModel) Update(msg tea.Msg) (AuthModalModel, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case authResultMsg:
		m.working = false
		if !msg.result.Success {
			m.errs = forms.Errors{"general": msg.result.Error}
			return m, nil, false
		}
		verb := "Signed in"
		if msg.signup {
			verb = "Account created. Signed in"
		}
		return m, showBanner(fmt.Sprintf("%s as %s.", verb, msg.result.User.FullName())), true

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil, false
}

func (m AuthModalModel) handleKey(msg tea.KeyMsg) (AuthModalModel, tea.Cmd, bool) {
	switch msg.String() {
	case "esc":
		return m, nil, true
	case "ctrl+s":
		if m.mode == authModeLogin {
			m.mode = authModeSignup
		} else {
			m.mode = authModeLogin
		}
		m.errs = nil
		m.setFocus(authEmail)
		return m, nil, false
	case "ctrl+g":
		// A terminal cannot follow the redirect itself; surface the
		// provider URL and let the user finish in a browser. esc
		// dismisses the banner.
		return m, showBanner("Continue with Google in your browser: " + m.oauthURL()), true
	case "tab", "down":
		m.nextField(1)
		return m, nil, false
	case "shift+tab", "up":
		m.nextField(-1)
		return m, nil, false
	case "enter":
		if m.focus == authSubmit {
			model, cmd := m.submit()
			return model, cmd, false
		}
		m.nextField(1)
		return m, nil, false
	}

	if in := m.inputFor(m.focus); in != nil {
		var cmd tea.Cmd
		*in, cmd = in.Update(msg)
		return m, cmd, false
	}
	return m, nil, false
}

// oauthURL is the identity provider's sign-in endpoint on the auth
// service.
func (m AuthModalModel) oauthURL() string {
	return strings.TrimRight(m.deps.Services.Auth, "/") + "/auth/google"
}

func (m AuthModalModel) submit() (AuthModalModel, tea.Cmd) {
	if m.working {
		return m, nil
	}

	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()
	first := strings.TrimSpace(m.firstName.Value())
	last := strings.TrimSpace(m.lastName.Value())

	if m.mode == authModeSignup {
		m.errs = forms.ValidateSignup(email, password, first, last)
	} else {
		m.errs = forms.ValidateLogin(email, password)
	}
	if !m.errs.Valid() {
		return m, nil
	}

	m.working = true
	deps := m.deps
	signup := m.mode == authModeSignup
	return m, func() tea.Msg {
		if signup {
			result := deps.Session.Signup(context.Background(), api.NewUser{
				Email:     email,
				FirstName: first,
				LastName:  last,
			}, password)
			return authResultMsg{result: result, signup: true}
		}
		result := deps.Session.Login(context.Background(), email, password)
		return authResultMsg{result: result}
	}
}

// View renders the modal box.
func (m AuthModalModel) View() string {
	var sb strings.Builder

	title := "Sign In"
	hint := "ctrl+s to sign up instead"
	if m.mode == authModeSignup {
		title = "Create Account"
		hint = "ctrl+s to sign in instead"
	}
	sb.WriteString(m.styles.Header.Render(title) + "\n")

	sb.WriteString(m.renderRow(authEmail, "Email", m.email.View()))
	sb.WriteString(m.renderRow(authPassword, "Password", m.password.View()))
	if m.mode == authModeSignup {
		sb.WriteString(m.renderRow(authFirstName, "First name", m.firstName.View()))
		sb.WriteString(m.renderRow(authLastName, "Last name", m.lastName.View()))
	}

	if msg := m.errs.First(); msg != "" {
		sb.WriteString(m.styles.Error.Render(msg) + "\n")
	}

	submit := "[ " + title + " ]"
	if m.working {
		submit = "[ Working... ]"
	}
	if m.focus == authSubmit {
		submit = m.styles.Selected.Render(submit)
	}
	sb.WriteString("\n" + submit + "\n")
	sb.WriteString(m.styles.Help.Render("enter submit · ctrl+g Google · esc close · " + hint))

	return m.styles.Banner.Render(sb.String())
}

func (m AuthModalModel) renderRow(field int, label, value string) string {
	style := m.styles.Muted
	if m.focus == field {
		style = m.styles.ActiveTab
	}
	return fmt.Sprintf("%s %s\n", style.Render(fmt.Sprintf("%-12s", label)), value)
}
