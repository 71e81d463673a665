package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"point2point/internal/api"
	"point2point/internal/types"
)

// statusFilters is the cycle order for the route status filter.
var statusFilters = []string{"all", "proposed", "active"}

// activationPollInterval paces activation task polling.
const activationPollInterval = 2 * time.Second

// RoutesPageModel is the route listing page: fetch on entry, client-side
// status filtering, join/subscribe with optimistic updates, and fallback
// to sample data when the composite service is unreachable.
type RoutesPageModel struct {
	deps   Deps
	styles Styles

	spinner spinner.Model
	width   int
	height  int

	loading        bool
	fallbackActive bool
	loadErr        error
	filter         int
	routes         []types.Route
	cursor         int

	// gen identifies the latest load; responses for older generations
	// are dropped so an out-of-order completion cannot clobber newer
	// state.
	gen    int
	ctx    context.Context
	cancel context.CancelFunc

	pendingActivation *types.ActivationTask
}

// NewRoutesPageModel creates the routes page.
func NewRoutesPageModel(deps Deps) RoutesPageModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return RoutesPageModel{
		deps:    deps,
		styles:  DefaultStyles(),
		spinner: sp,
	}
}

// Init starts the first load.
func (m RoutesPageModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, func() tea.Msg { return reloadRoutesMsg{} })
}

// reloadRoutesMsg triggers a fresh fetch internally.
type reloadRoutesMsg struct{}

// Teardown cancels any in-flight load. The App calls it on page switch.
func (m *RoutesPageModel) Teardown() {
	if m.cancel != nil {
		m.cancel()
	}
}

// SetSize updates the layout bounds.
func (m *RoutesPageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// beginLoad supersedes any in-flight fetch and returns its command.
func (m *RoutesPageModel) beginLoad() tea.Cmd {
	m.Teardown()
	ctx, cancel := context.WithCancel(context.Background())
	m.ctx = ctx
	m.cancel = cancel
	m.gen++
	m.loading = true
	m.loadErr = nil

	gen := m.gen
	deps := m.deps
	return func() tea.Msg {
		list, err := deps.Gateway.ListRoutes(ctx, api.RouteFilter{})
		if err == nil {
			return routesLoadedMsg{gen: gen, list: list}
		}
		// Degraded mode: keep the view populated with sample data.
		sample, ferr := deps.Fallback.Routes(ctx)
		if ferr != nil {
			return routesLoadFailedMsg{gen: gen, err: err}
		}
		return routesLoadedMsg{gen: gen, list: sample, fromFallback: true}
	}
}

// Update handles messages.
func (m RoutesPageModel) Update(msg tea.Msg) (RoutesPageModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reloadRoutesMsg:
		return m, m.beginLoad()

	case routesLoadedMsg:
		if msg.gen != m.gen {
			return m, nil // stale response for a superseded load
		}
		m.loading = false
		m.routes = msg.list.Routes
		m.fallbackActive = msg.fromFallback
		if m.cursor >= len(m.visible()) {
			m.cursor = 0
		}
		return m, nil

	case routesLoadFailedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		m.loadErr = msg.err
		return m, nil

	case routeJoinedMsg:
		if msg.err != nil {
			return m, tea.Batch(showError("Failed to join route: "+msg.err.Error()), m.beginLoad())
		}
		return m, tea.Batch(showBanner("Joined the route."), m.beginLoad())

	case routeSubscribedMsg:
		if msg.err != nil {
			return m, tea.Batch(showError("Failed to subscribe: "+msg.err.Error()), m.beginLoad())
		}
		return m, tea.Batch(showBanner("Subscribed for the semester."), m.beginLoad())

	case activationMsg:
		return m.handleActivation(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m RoutesPageModel) handleKey(msg tea.KeyMsg) (RoutesPageModel, tea.Cmd) {
	switch msg.String() {
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "j", "down":
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
	case "f":
		m.filter = (m.filter + 1) % len(statusFilters)
		m.cursor = 0
	case "r":
		return m, m.beginLoad()
	case "enter":
		return m.joinSelected()
	case "s":
		return m.subscribeSelected()
	case "a":
		return m.activateSelected()
	case "p":
		return m, switchPage(PagePropose)
	}
	return m, nil
}

// joinSelected joins the selected proposed route. The membership count is
// incremented optimistically before the authoritative refresh lands.
// Anonymous users get the login modal instead of a network call.
func (m RoutesPageModel) joinSelected() (RoutesPageModel, tea.Cmd) {
	route, ok := m.selected()
	if !ok {
		return m, nil
	}
	if m.fallbackActive {
		return m, showError("Offline sample data is read-only.")
	}
	if !m.deps.Session.IsAuthenticated() {
		return m, openAuthModal()
	}
	if route.Status != types.RouteProposed {
		return m, showError("Only proposed routes can be joined.")
	}

	m.applyOptimisticJoin(route.ID)

	userID := m.deps.currentUserID()
	deps := m.deps
	routeID := route.ID
	return m, func() tea.Msg {
		err := deps.Gateway.JoinRoute(context.Background(), routeID, userID)
		return routeJoinedMsg{routeID: routeID, err: err}
	}
}

// applyOptimisticJoin bumps the local membership count and recomputes the
// derived seat count for the given route.
func (m *RoutesPageModel) applyOptimisticJoin(routeID int64) {
	for i := range m.routes {
		if m.routes[i].ID != routeID {
			continue
		}
		m.routes[i].CurrentMembers++
		if seats := m.routes[i].RequiredMembers - m.routes[i].CurrentMembers; seats > 0 {
			m.routes[i].AvailableSeats = seats
		} else {
			m.routes[i].AvailableSeats = 0
		}
		return
	}
}

// subscribeSelected subscribes to the selected active route.
func (m RoutesPageModel) subscribeSelected() (RoutesPageModel, tea.Cmd) {
	route, ok := m.selected()
	if !ok {
		return m, nil
	}
	if m.fallbackActive {
		return m, showError("Offline sample data is read-only.")
	}
	if !m.deps.Session.IsAuthenticated() {
		return m, openAuthModal()
	}
	if route.Status != types.RouteActive {
		return m, showError("Only active routes can be subscribed to.")
	}

	userID := m.deps.currentUserID()
	deps := m.deps
	routeID := route.ID
	semester := m.deps.Semester
	return m, func() tea.Msg {
		_, err := deps.Gateway.CreateSubscription(context.Background(), userID, routeID, semester)
		return routeSubscribedMsg{routeID: routeID, err: err}
	}
}

// activateSelected requests server-side activation of the selected route
// and begins polling the returned task.
func (m RoutesPageModel) activateSelected() (RoutesPageModel, tea.Cmd) {
	route, ok := m.selected()
	if !ok {
		return m, nil
	}
	if m.fallbackActive {
		return m, showError("Offline sample data is read-only.")
	}
	if !m.deps.Session.IsAuthenticated() {
		return m, openAuthModal()
	}
	if route.Status != types.RouteProposed {
		return m, showError("Route is not awaiting activation.")
	}

	deps := m.deps
	routeID := route.ID
	return m, func() tea.Msg {
		task, err := deps.Gateway.ActivateRoute(context.Background(), routeID)
		return activationMsg{task: task, err: err}
	}
}

func (m RoutesPageModel) handleActivation(msg activationMsg) (RoutesPageModel, tea.Cmd) {
	if msg.err != nil {
		m.pendingActivation = nil
		return m, showError("Activation failed: " + msg.err.Error())
	}

	switch strings.ToLower(msg.task.Status) {
	case "completed", "succeeded", "active":
		m.pendingActivation = nil
		return m, tea.Batch(showBanner("Route activated."), m.beginLoad())
	case "failed":
		m.pendingActivation = nil
		return m, showError("Activation failed on the server.")
	}

	// Still pending: poll again after a short delay.
	task := msg.task
	m.pendingActivation = &task
	deps := m.deps
	return m, tea.Tick(activationPollInterval, func(time.Time) tea.Msg {
		next, err := deps.Gateway.GetActivationStatus(context.Background(), task.TaskID)
		return activationMsg{task: next, err: err}
	})
}

// visible returns the routes matching the current status filter.
func (m RoutesPageModel) visible() []types.Route {
	status := statusFilters[m.filter]
	if status == "all" {
		return m.routes
	}
	out := make([]types.Route, 0, len(m.routes))
	for _, r := range m.routes {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

func (m RoutesPageModel) selected() (types.Route, bool) {
	visible := m.visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return types.Route{}, false
	}
	return visible[m.cursor], true
}

// View renders the page.
func (m RoutesPageModel) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Header.Render("Shuttle Routes"))
	sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("  filter: %s (f to cycle)", statusFilters[m.filter])))
	sb.WriteString("\n")

	if m.loading {
		sb.WriteString(m.styles.Content.Render(m.spinner.View() + " Loading routes..."))
		return sb.String()
	}
	if m.loadErr != nil {
		sb.WriteString(m.styles.Error.Render("Could not load routes: " + m.loadErr.Error()))
		sb.WriteString("\n" + m.styles.Help.Render("r to retry"))
		return sb.String()
	}
	if m.fallbackActive {
		sb.WriteString(m.styles.Warning.Render("Offline: showing sample routes."))
		sb.WriteString("\n")
	}

	visible := m.visible()
	if len(visible) == 0 {
		sb.WriteString(m.styles.Muted.Render("No routes match this filter. Press p to propose one."))
		return sb.String()
	}

	for i, route := range visible {
		sb.WriteString(m.renderRoute(route, i == m.cursor))
		sb.WriteString("\n")
	}

	sb.WriteString(m.styles.Help.Render("enter join · s subscribe · a activate · p propose · f filter · r refresh"))
	return sb.String()
}

func (m RoutesPageModel) renderRoute(route types.Route, selected bool) string {
	badge := m.styles.statusStyle(route.Status).Render(strings.ToUpper(route.Status))
	title := fmt.Sprintf("%s → %s  %s", route.From, route.To, badge)

	detail := fmt.Sprintf("%s · %s · %d/%d members",
		route.Schedule, route.Semester, route.CurrentMembers, route.RequiredMembers)
	if route.Status == types.RouteActive {
		detail += fmt.Sprintf(" · %d seats left", route.AvailableSeats)
	} else if route.DaysLeft > 0 {
		detail += fmt.Sprintf(" · %d days left", route.DaysLeft)
	}
	if route.EstimatedCost > 0 {
		detail += fmt.Sprintf(" · $%.0f/mo", route.EstimatedCost)
	}

	body := title + "\n" + m.styles.Muted.Render(detail)
	if selected {
		return m.styles.Selected.Render(body)
	}
	return m.styles.Card.Render(body)
}
