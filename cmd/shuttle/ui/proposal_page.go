package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"point2point/internal/forms"
	"point2point/internal/normalize"
	"point2point/internal/types"
)

// Focusable rows of the proposal form, top to bottom.
const (
	fieldRouteType = iota
	fieldLocation
	fieldDays
	fieldMorning
	fieldEvening
	fieldCost
	fieldDescription
	fieldContact
	fieldSubmit
	fieldCount
)

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// ProposalPageModel is the route proposal form. Validation runs locally;
// only a valid form reaches the network.
type ProposalPageModel struct {
	deps   Deps
	styles Styles

	routeType string
	location  textinput.Model
	days      map[string]bool
	morning   textinput.Model
	evening   textinput.Model
	cost      textinput.Model
	desc      textinput.Model
	contact   textinput.Model

	focus      int
	errs       forms.Errors
	submitting bool
}

// NewProposalPageModel creates the proposal form with defaults.
func NewProposalPageModel(deps Deps) ProposalPageModel {
	m := ProposalPageModel{
		deps:      deps,
		styles:    DefaultStyles(),
		routeType: forms.RouteTypeToColumbia,
		days:      map[string]bool{},
	}
	m.location = newInput("Destination neighborhood", 48)
	m.morning = newInput(normalize.DefaultMorningTime, 5)
	m.evening = newInput(normalize.DefaultEveningTime, 5)
	m.cost = newInput("150", 8)
	m.desc = newInput("Optional description", 80)
	m.contact = newInput("email or phone", 48)
	m.morning.SetValue(normalize.DefaultMorningTime)
	m.evening.SetValue(normalize.DefaultEveningTime)
	m.setFocus(fieldRouteType)
	return m
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	return in
}

// Init implements tea.Model.
func (m ProposalPageModel) Init() tea.Cmd { return nil }

// Reset clears the form back to its defaults after a successful submit.
func (m *ProposalPageModel) Reset() {
	*m = NewProposalPageModel(m.deps)
}

func (m *ProposalPageModel) inputs() []*textinput.Model {
	return []*textinput.Model{&m.location, &m.morning, &m.evening, &m.cost, &m.desc, &m.contact}
}

func (m *ProposalPageModel) inputFor(field int) *textinput.Model {
	switch field {
	case fieldLocation:
		return &m.location
	case fieldMorning:
		return &m.morning
	case fieldEvening:
		return &m.evening
	case fieldCost:
		return &m.cost
	case fieldDescription:
		return &m.desc
	case fieldContact:
		return &m.contact
	}
	return nil
}

func (m *ProposalPageModel) setFocus(field int) {
	m.focus = field
	for _, in := range m.inputs() {
		in.Blur()
	}
	if in := m.inputFor(field); in != nil {
		in.Focus()
	}
}

// Update handles messages.
func (m ProposalPageModel) Update(msg tea.Msg) (ProposalPageModel, tea.Cmd) {
	switch msg := msg.(type) {
	case proposalSubmittedMsg:
		m.submitting = false
		if msg.err != nil {
			return m, showError("Failed to submit proposal: " + msg.err.Error())
		}
		m.Reset()
		return m, tea.Batch(
			showBanner(fmt.Sprintf("Route %s → %s proposed.", msg.route.From, msg.route.To)),
			switchPage(PageRoutes),
		)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m ProposalPageModel) handleKey(msg tea.KeyMsg) (ProposalPageModel, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		m.setFocus((m.focus + 1) % fieldCount)
		return m, nil
	case "shift+tab", "up":
		m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return m, nil
	case "enter":
		if m.focus == fieldSubmit {
			return m.submit()
		}
		m.setFocus((m.focus + 1) % fieldCount)
		return m, nil
	}

	switch m.focus {
	case fieldRouteType:
		if s := msg.String(); s == " " || s == "left" || s == "right" || s == "t" {
			if m.routeType == forms.RouteTypeToColumbia {
				m.routeType = forms.RouteTypeFromHome
				m.location.Placeholder = "Origin neighborhood"
			} else {
				m.routeType = forms.RouteTypeToColumbia
				m.location.Placeholder = "Destination neighborhood"
			}
		}
		return m, nil

	case fieldDays:
		if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= len(weekdays) {
			day := weekdays[n-1]
			m.days[day] = !m.days[day]
		}
		return m, nil
	}

	if in := m.inputFor(m.focus); in != nil {
		var cmd tea.Cmd
		*in, cmd = in.Update(msg)
		return m, cmd
	}
	return m, nil
}

// proposal builds the form values into a typed proposal. The campus end
// of the route is pinned by the route type.
func (m ProposalPageModel) proposal() types.RouteProposal {
	cost, _ := strconv.ParseFloat(strings.TrimSpace(m.cost.Value()), 64)

	p := types.RouteProposal{
		RouteType:     m.routeType,
		Schedule:      types.Schedule{MorningTime: m.morning.Value(), EveningTime: m.evening.Value()},
		Semester:      m.deps.Semester,
		EstimatedCost: cost,
		Description:   strings.TrimSpace(m.desc.Value()),
		ContactInfo:   strings.TrimSpace(m.contact.Value()),
	}
	for _, day := range weekdays {
		if m.days[day] {
			p.Schedule.Days = append(p.Schedule.Days, day)
		}
	}

	location := strings.TrimSpace(m.location.Value())
	if m.routeType == forms.RouteTypeFromHome {
		p.From = location
		p.To = forms.Campus
	} else {
		p.From = forms.Campus
		p.To = location
	}
	return p
}

func (m ProposalPageModel) submit() (ProposalPageModel, tea.Cmd) {
	if !m.deps.Session.IsAuthenticated() {
		return m, openAuthModal()
	}
	if m.submitting {
		return m, nil
	}

	p := m.proposal()
	m.errs = forms.ValidateProposal(p)
	if !m.errs.Valid() {
		return m, showError(m.errs.First())
	}

	m.submitting = true
	deps := m.deps
	userID := m.deps.currentUserID()
	return m, func() tea.Msg {
		route, err := deps.Gateway.CreateRoute(context.Background(), p, userID)
		return proposalSubmittedMsg{route: route, err: err}
	}
}

// View renders the form.
func (m ProposalPageModel) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Header.Render("Propose a Route"))
	sb.WriteString("\n")

	direction := "Home → " + forms.Campus
	locationLabel := "To"
	if m.routeType == forms.RouteTypeToColumbia {
		direction = forms.Campus + " → Home"
	} else {
		locationLabel = "From"
	}
	sb.WriteString(m.renderRow(fieldRouteType, "Direction", direction+"  (space to switch)"))
	sb.WriteString(m.renderRow(fieldLocation, locationLabel, m.location.View()))
	sb.WriteString(m.renderRow(fieldDays, "Days", m.renderDays()))
	sb.WriteString(m.renderRow(fieldMorning, "Morning", m.morning.View()))
	sb.WriteString(m.renderRow(fieldEvening, "Evening", m.evening.View()))
	sb.WriteString(m.renderRow(fieldCost, "Cost $/mo", m.cost.View()))
	sb.WriteString(m.renderRow(fieldDescription, "Description", m.desc.View()))
	sb.WriteString(m.renderRow(fieldContact, "Contact", m.contact.View()))

	submit := "[ Submit proposal ]"
	if m.submitting {
		submit = "[ Submitting... ]"
	}
	if m.focus == fieldSubmit {
		submit = m.styles.Selected.Render(submit)
	}
	sb.WriteString("\n" + submit + "\n")
	sb.WriteString(m.styles.Help.Render("tab next field · enter submit"))
	return sb.String()
}

func (m ProposalPageModel) renderRow(field int, label, value string) string {
	style := m.styles.Muted
	if m.focus == field {
		style = m.styles.ActiveTab
	}
	return fmt.Sprintf("%s %s\n", style.Render(fmt.Sprintf("%-12s", label)), value)
}

func (m ProposalPageModel) renderDays() string {
	parts := make([]string, len(weekdays))
	for i, day := range weekdays {
		mark := " "
		if m.days[day] {
			mark = "x"
		}
		parts[i] = fmt.Sprintf("[%s] %d %s", mark, i+1, day[:3])
	}
	return strings.Join(parts, "  ")
}
