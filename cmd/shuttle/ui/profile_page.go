package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"point2point/internal/forms"
	"point2point/internal/types"
)

// Editable profile rows, top to bottom.
const (
	profileFirstName = iota
	profileLastName
	profileHomeArea
	profileDeparture
	profileSave
	profileFieldCount
)

// ProfilePageModel shows the signed-in user's profile and an inline edit
// form. The displayed profile is fetched fresh from the service, falling
// back to the sample profile when the fetch fails; email and id are
// read-only, and saving goes through the session store so the persisted
// record stays current.
type ProfilePageModel struct {
	deps   Deps
	styles Styles

	editing bool
	saving  bool
	focus   int

	remote       types.User
	haveRemote   bool
	fromFallback bool
	gen          int

	firstName textinput.Model
	lastName  textinput.Model
	homeArea  textinput.Model
	departure textinput.Model

	errs forms.Errors
}

// reloadProfileMsg triggers a fresh profile fetch.
type reloadProfileMsg struct{}

// profileLoadedMsg delivers the fetched (or sample) profile.
type profileLoadedMsg struct {
	gen          int
	user         types.User
	fromFallback bool
	err          error
}

// NewProfilePageModel creates the profile page.
func NewProfilePageModel(deps Deps) ProfilePageModel {
	m := ProfilePageModel{deps: deps, styles: DefaultStyles()}
	m.firstName = newInput("First name", 40)
	m.lastName = newInput("Last name", 40)
	m.homeArea = newInput("Home area", 60)
	m.departure = newInput("08:00", 5)
	return m
}

// Init starts the first profile fetch.
func (m ProfilePageModel) Init() tea.Cmd {
	return func() tea.Msg { return reloadProfileMsg{} }
}

// beginLoad fetches the profile from the service, degrading to the
// sample profile when the fetch fails.
func (m *ProfilePageModel) beginLoad() tea.Cmd {
	m.gen++
	gen := m.gen
	deps := m.deps
	return func() tea.Msg {
		user, err := deps.Gateway.GetProfile(context.Background())
		if err == nil {
			return profileLoadedMsg{gen: gen, user: user}
		}
		sample, ferr := deps.Fallback.Profile(context.Background())
		if ferr != nil {
			return profileLoadedMsg{gen: gen, err: err}
		}
		return profileLoadedMsg{gen: gen, user: sample, fromFallback: true}
	}
}

// displayUser is the profile shown and edited: the fetched record when
// one arrived, otherwise the session snapshot.
func (m ProfilePageModel) displayUser() (types.User, bool) {
	if m.haveRemote {
		return m.remote, true
	}
	return m.deps.Session.CurrentUser()
}

func (m *ProfilePageModel) inputFor(field int) *textinput.Model {
	switch field {
	case profileFirstName:
		return &m.firstName
	case profileLastName:
		return &m.lastName
	case profileHomeArea:
		return &m.homeArea
	case profileDeparture:
		return &m.departure
	}
	return nil
}

func (m *ProfilePageModel) setFocus(field int) {
	m.focus = field
	for f := profileFirstName; f < profileSave; f++ {
		m.inputFor(f).Blur()
	}
	if in := m.inputFor(field); in != nil {
		in.Focus()
	}
}

// startEditing seeds the form from the current user.
func (m *ProfilePageModel) startEditing(user types.User) {
	m.editing = true
	m.errs = nil
	m.firstName.SetValue(user.FirstName)
	m.lastName.SetValue(user.LastName)
	m.homeArea.SetValue(user.HomeArea)
	m.departure.SetValue(user.PreferredDepartureTime)
	m.setFocus(profileFirstName)
}

// Update handles messages.
func (m ProfilePageModel) Update(msg tea.Msg) (ProfilePageModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reloadProfileMsg:
		if !m.deps.Session.IsAuthenticated() {
			m.haveRemote = false
			m.fromFallback = false
			return m, nil
		}
		return m, m.beginLoad()

	case profileLoadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.err != nil {
			// Keep showing the session snapshot.
			return m, nil
		}
		m.remote = msg.user
		m.haveRemote = true
		m.fromFallback = msg.fromFallback
		return m, nil

	case profileSavedMsg:
		m.saving = false
		if !msg.result.Success {
			return m, showError(msg.result.Error)
		}
		m.editing = false
		m.remote = msg.result.User
		m.haveRemote = true
		m.fromFallback = false
		return m, showBanner("Profile updated.")

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m ProfilePageModel) handleKey(msg tea.KeyMsg) (ProfilePageModel, tea.Cmd) {
	user, signedIn := m.displayUser()
	if !signedIn {
		return m, nil
	}

	if !m.editing {
		switch msg.String() {
		case "e":
			if m.fromFallback {
				return m, showError("Offline sample data is read-only.")
			}
			m.startEditing(user)
		case "r":
			return m, func() tea.Msg { return reloadProfileMsg{} }
		}
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.editing = false
		m.errs = nil
		return m, nil
	case "tab", "down":
		m.setFocus((m.focus + 1) % profileFieldCount)
		return m, nil
	case "shift+tab", "up":
		m.setFocus((m.focus + profileFieldCount - 1) % profileFieldCount)
		return m, nil
	case "enter":
		if m.focus == profileSave {
			return m.save(user)
		}
		m.setFocus((m.focus + 1) % profileFieldCount)
		return m, nil
	}

	if in := m.inputFor(m.focus); in != nil {
		var cmd tea.Cmd
		*in, cmd = in.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m ProfilePageModel) save(user types.User) (ProfilePageModel, tea.Cmd) {
	if m.saving {
		return m, nil
	}

	updated := user
	updated.FirstName = strings.TrimSpace(m.firstName.Value())
	updated.LastName = strings.TrimSpace(m.lastName.Value())
	updated.HomeArea = strings.TrimSpace(m.homeArea.Value())
	updated.PreferredDepartureTime = strings.TrimSpace(m.departure.Value())

	m.errs = forms.ValidateProfile(updated)
	if !m.errs.Valid() {
		return m, showError(m.errs.First())
	}

	m.saving = true
	deps := m.deps
	return m, func() tea.Msg {
		result := deps.Session.UpdateProfile(context.Background(), updated)
		return profileSavedMsg{result: result}
	}
}

// View renders the page.
func (m ProfilePageModel) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Header.Render("Profile"))
	sb.WriteString("\n")

	user, signedIn := m.displayUser()
	if !signedIn {
		sb.WriteString(m.styles.Muted.Render("Sign in to see your profile."))
		return sb.String()
	}

	if m.editing {
		return sb.String() + m.renderForm()
	}

	if m.fromFallback {
		sb.WriteString(m.styles.Warning.Render("Offline: showing sample profile."))
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("%s\n", user.FullName()))
	sb.WriteString(m.styles.Muted.Render(user.Email) + "\n\n")
	sb.WriteString(fmt.Sprintf("Home area      %s\n", user.HomeArea))
	sb.WriteString(fmt.Sprintf("Departs at     %s\n", user.PreferredDepartureTime))
	sb.WriteString(fmt.Sprintf("Routes joined  %d\n", len(user.JoinedRoutes)))
	sb.WriteString(fmt.Sprintf("Subscriptions  %d\n", len(user.ActiveSubscriptions)))
	if user.MemberSince != "" {
		sb.WriteString(fmt.Sprintf("Member since   %s\n", user.MemberSince))
	}

	sb.WriteString("\n" + m.styles.Help.Render("e edit · r refresh"))
	return sb.String()
}

func (m ProfilePageModel) renderForm() string {
	var sb strings.Builder
	sb.WriteString(m.renderRow(profileFirstName, "First name", m.firstName.View()))
	sb.WriteString(m.renderRow(profileLastName, "Last name", m.lastName.View()))
	sb.WriteString(m.renderRow(profileHomeArea, "Home area", m.homeArea.View()))
	sb.WriteString(m.renderRow(profileDeparture, "Departs at", m.departure.View()))

	save := "[ Save ]"
	if m.saving {
		save = "[ Saving... ]"
	}
	if m.focus == profileSave {
		save = m.styles.Selected.Render(save)
	}
	sb.WriteString("\n" + save + "\n")
	sb.WriteString(m.styles.Help.Render("tab next field · enter save · esc cancel"))
	return sb.String()
}

func (m ProfilePageModel) renderRow(field int, label, value string) string {
	style := m.styles.Muted
	if m.focus == field {
		style = m.styles.ActiveTab
	}
	return fmt.Sprintf("%s %s\n", style.Render(fmt.Sprintf("%-12s", label)), value)
}
