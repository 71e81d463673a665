package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"point2point/internal/api"
	"point2point/internal/types"
)

// MyRoutesPageModel shows the signed-in user's routes in two sections:
// active routes they ride (via a subscription) and proposals they
// created. Leaving a ridden route cancels the matching subscription.
type MyRoutesPageModel struct {
	deps   Deps
	styles Styles

	loading bool
	loadErr error

	joined     []types.Route
	proposed   []types.Route
	subByRoute map[int64]int64

	// cursor walks joined first, then proposed.
	cursor int

	gen    int
	ctx    context.Context
	cancel context.CancelFunc
}

// NewMyRoutesPageModel creates the my-routes page.
func NewMyRoutesPageModel(deps Deps) MyRoutesPageModel {
	return MyRoutesPageModel{deps: deps, styles: DefaultStyles()}
}

// Init starts the first load.
func (m MyRoutesPageModel) Init() tea.Cmd {
	return func() tea.Msg { return reloadMyRoutesMsg{} }
}

type reloadMyRoutesMsg struct{}

// Teardown cancels any in-flight load.
func (m *MyRoutesPageModel) Teardown() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *MyRoutesPageModel) beginLoad() tea.Cmd {
	m.Teardown()
	ctx, cancel := context.WithCancel(context.Background())
	m.ctx = ctx
	m.cancel = cancel
	m.gen++
	m.loading = true
	m.loadErr = nil

	gen := m.gen
	deps := m.deps
	userID := m.deps.currentUserID()
	return func() tea.Msg {
		routes, err := deps.Gateway.ListRoutes(ctx, api.RouteFilter{})
		if err != nil {
			return myRoutesLoadedMsg{gen: gen, err: err}
		}
		subs, err := deps.Gateway.ListSubscriptions(ctx, userID)
		if err != nil {
			return myRoutesLoadedMsg{gen: gen, err: err}
		}

		ridden := map[int64]bool{}
		for _, sub := range subs.Subscriptions {
			if sub.Status == types.SubscriptionActive {
				ridden[sub.RouteID] = true
			}
		}

		msg := myRoutesLoadedMsg{gen: gen, subs: subs.Subscriptions}
		for _, route := range routes.Routes {
			switch {
			case ridden[route.ID]:
				msg.joined = append(msg.joined, route)
			case route.CreatedBy == userID && userID != 0:
				msg.proposed = append(msg.proposed, route)
			}
		}
		return msg
	}
}

// Update handles messages.
func (m MyRoutesPageModel) Update(msg tea.Msg) (MyRoutesPageModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reloadMyRoutesMsg:
		if !m.deps.Session.IsAuthenticated() {
			return m, nil
		}
		return m, m.beginLoad()

	case myRoutesLoadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.loadErr = msg.err
			return m, nil
		}
		m.joined = msg.joined
		m.proposed = msg.proposed
		m.subByRoute = map[int64]int64{}
		for _, sub := range msg.subs {
			if sub.Status == types.SubscriptionActive {
				m.subByRoute[sub.RouteID] = sub.ID
			}
		}
		if m.cursor >= m.itemCount() {
			m.cursor = 0
		}
		return m, nil

	case routeLeftMsg:
		if msg.err != nil {
			return m, tea.Batch(showError("Failed to leave route: "+msg.err.Error()), m.beginLoad())
		}
		return m, tea.Batch(showBanner("Left the route."), m.beginLoad())

	case tea.KeyMsg:
		switch msg.String() {
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "j", "down":
			if m.cursor < m.itemCount()-1 {
				m.cursor++
			}
		case "r":
			return m, m.beginLoad()
		case "x", "delete":
			return m.leaveSelected()
		}
	}
	return m, nil
}

func (m MyRoutesPageModel) itemCount() int {
	return len(m.joined) + len(m.proposed)
}

// selected returns the route under the cursor and whether it is in the
// joined section.
func (m MyRoutesPageModel) selected() (types.Route, bool, bool) {
	if m.cursor < len(m.joined) {
		return m.joined[m.cursor], true, true
	}
	idx := m.cursor - len(m.joined)
	if idx < len(m.proposed) {
		return m.proposed[idx], false, true
	}
	return types.Route{}, false, false
}

// leaveSelected cancels the subscription backing the selected joined
// route, removing it locally before the refresh confirms.
func (m MyRoutesPageModel) leaveSelected() (MyRoutesPageModel, tea.Cmd) {
	route, joined, ok := m.selected()
	if !ok || !joined {
		return m, nil
	}
	subID, ok := m.subByRoute[route.ID]
	if !ok {
		return m, nil
	}

	kept := make([]types.Route, 0, len(m.joined))
	for _, r := range m.joined {
		if r.ID != route.ID {
			kept = append(kept, r)
		}
	}
	m.joined = kept
	if m.cursor >= m.itemCount() && m.cursor > 0 {
		m.cursor--
	}

	deps := m.deps
	routeID := route.ID
	return m, func() tea.Msg {
		err := deps.Gateway.CancelSubscription(context.Background(), subID)
		return routeLeftMsg{routeID: routeID, err: err}
	}
}

// View renders the page.
func (m MyRoutesPageModel) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Header.Render("My Routes"))
	sb.WriteString("\n")

	if !m.deps.Session.IsAuthenticated() {
		sb.WriteString(m.styles.Muted.Render("Sign in to see your routes."))
		return sb.String()
	}
	if m.loading {
		sb.WriteString(m.styles.Content.Render("Loading your routes..."))
		return sb.String()
	}
	if m.loadErr != nil {
		sb.WriteString(m.styles.Error.Render("Could not load your routes: " + m.loadErr.Error()))
		sb.WriteString("\n" + m.styles.Help.Render("r to retry"))
		return sb.String()
	}

	sb.WriteString(m.styles.Tab.Render("Riding"))
	sb.WriteString("\n")
	if len(m.joined) == 0 {
		sb.WriteString(m.styles.Muted.Render("No active routes yet.") + "\n")
	}
	for i, route := range m.joined {
		sb.WriteString(m.renderRoute(route, i == m.cursor))
	}

	sb.WriteString("\n" + m.styles.Tab.Render("Proposed by me") + "\n")
	if len(m.proposed) == 0 {
		sb.WriteString(m.styles.Muted.Render("No proposals yet.") + "\n")
	}
	for i, route := range m.proposed {
		sb.WriteString(m.renderRoute(route, len(m.joined)+i == m.cursor))
	}

	sb.WriteString(m.styles.Help.Render("x leave route · r refresh"))
	return sb.String()
}

func (m MyRoutesPageModel) renderRoute(route types.Route, selected bool) string {
	badge := m.styles.statusStyle(route.Status).Render(strings.ToUpper(route.Status))
	line := fmt.Sprintf("%s → %s  %s  %s · %d/%d members",
		route.From, route.To, badge, route.Schedule, route.CurrentMembers, route.RequiredMembers)
	if selected {
		return m.styles.Selected.Render(line) + "\n"
	}
	return m.styles.Card.Render(line) + "\n"
}
