package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"point2point/internal/types"
)

// SubscriptionsPageModel shows the current semester: subscriptions and
// upcoming trips. The primary source is the per-resource endpoints with
// subscription enrichment; when those fail it tries the aggregated
// overview endpoint, and when that also fails it shows sample data.
type SubscriptionsPageModel struct {
	deps   Deps
	styles Styles

	loading        bool
	loadErr        error
	fallbackActive bool

	subs  []types.Subscription
	trips []types.Trip

	// cursor walks subscriptions first, then trips.
	cursor int

	gen    int
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSubscriptionsPageModel creates the subscriptions page.
func NewSubscriptionsPageModel(deps Deps) SubscriptionsPageModel {
	return SubscriptionsPageModel{deps: deps, styles: DefaultStyles()}
}

// Init starts the first load.
func (m SubscriptionsPageModel) Init() tea.Cmd {
	return func() tea.Msg { return reloadOverviewMsg{} }
}

type reloadOverviewMsg struct{}

// Teardown cancels any in-flight load.
func (m *SubscriptionsPageModel) Teardown() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *SubscriptionsPageModel) beginLoad() tea.Cmd {
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
		subs, trips, err := loadOverview(ctx, deps, userID)
		if err == nil {
			return overviewLoadedMsg{gen: gen, subs: subs, trips: trips}
		}
		sample, ferr := deps.Fallback.SemesterOverview(ctx)
		if ferr != nil {
			return overviewLoadFailedMsg{gen: gen, err: err}
		}
		return overviewLoadedMsg{
			gen:          gen,
			subs:         sample.Subscriptions,
			trips:        sample.UpcomingTrips,
			fromFallback: true,
		}
	}
}

// loadOverview fetches subscriptions and trips, enriching subscriptions
// with route details. If either per-resource call fails it falls back to
// the aggregated overview endpoint before giving up.
func loadOverview(ctx context.Context, deps Deps, userID int64) ([]types.Subscription, []types.Trip, error) {
	subs, subErr := deps.Gateway.ListSubscriptions(ctx, userID)
	trips, tripErr := deps.Gateway.ListTrips(ctx, userID)
	if subErr == nil && tripErr == nil {
		if err := deps.Gateway.EnrichSubscriptions(ctx, subs.Subscriptions); err != nil {
			return nil, nil, err
		}
		return subs.Subscriptions, trips, nil
	}

	overview, err := deps.Gateway.SemesterOverview(ctx)
	if err != nil {
		if subErr != nil {
			return nil, nil, subErr
		}
		return nil, nil, tripErr
	}
	return overview.Subscriptions, overview.UpcomingTrips, nil
}

// Update handles messages.
func (m SubscriptionsPageModel) Update(msg tea.Msg) (SubscriptionsPageModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reloadOverviewMsg:
		if !m.deps.Session.IsAuthenticated() {
			return m, nil
		}
		return m, m.beginLoad()

	case overviewLoadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		m.subs = msg.subs
		m.trips = msg.trips
		m.fallbackActive = msg.fromFallback
		if m.cursor >= m.itemCount() {
			m.cursor = 0
		}
		return m, nil

	case overviewLoadFailedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		m.loadErr = msg.err
		return m, nil

	case subscriptionCancelledMsg:
		if msg.err != nil {
			return m, tea.Batch(showError("Failed to cancel subscription: "+msg.err.Error()), m.beginLoad())
		}
		return m, tea.Batch(showBanner("Subscription cancelled."), m.beginLoad())

	case tripCancelledMsg:
		if msg.err != nil {
			return m, tea.Batch(showError("Failed to cancel trip: "+msg.err.Error()), m.beginLoad())
		}
		return m, tea.Batch(showBanner("Trip cancelled."), m.beginLoad())

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
			return m.cancelSelected()
		}
	}
	return m, nil
}

func (m SubscriptionsPageModel) itemCount() int {
	return len(m.subs) + len(m.trips)
}

// cancelSelected cancels the subscription or trip under the cursor,
// dropping it locally before the refresh confirms.
func (m SubscriptionsPageModel) cancelSelected() (SubscriptionsPageModel, tea.Cmd) {
	if m.fallbackActive {
		return m, showError("Offline sample data is read-only.")
	}
	deps := m.deps

	if m.cursor < len(m.subs) {
		sub := m.subs[m.cursor]
		if sub.Status != types.SubscriptionActive {
			return m, nil
		}
		m.subs = append(m.subs[:m.cursor], m.subs[m.cursor+1:]...)
		if m.cursor >= m.itemCount() && m.cursor > 0 {
			m.cursor--
		}
		return m, func() tea.Msg {
			err := deps.Gateway.CancelSubscription(context.Background(), sub.ID)
			return subscriptionCancelledMsg{subscriptionID: sub.ID, err: err}
		}
	}

	idx := m.cursor - len(m.subs)
	if idx >= len(m.trips) {
		return m, nil
	}
	trip := m.trips[idx]
	m.trips = append(m.trips[:idx], m.trips[idx+1:]...)
	if m.cursor >= m.itemCount() && m.cursor > 0 {
		m.cursor--
	}
	return m, func() tea.Msg {
		err := deps.Gateway.CancelTrip(context.Background(), trip.BookingID)
		return tripCancelledMsg{bookingID: trip.BookingID, err: err}
	}
}

// View renders the page.
func (m SubscriptionsPageModel) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Header.Render("Semester Overview"))
	sb.WriteString("\n")

	if !m.deps.Session.IsAuthenticated() {
		sb.WriteString(m.styles.Muted.Render("Sign in to see your subscriptions."))
		return sb.String()
	}
	if m.loading {
		sb.WriteString(m.styles.Content.Render("Loading your semester..."))
		return sb.String()
	}
	if m.loadErr != nil {
		sb.WriteString(m.styles.Error.Render("Could not load subscriptions: " + m.loadErr.Error()))
		sb.WriteString("\n" + m.styles.Help.Render("r to retry"))
		return sb.String()
	}
	if m.fallbackActive {
		sb.WriteString(m.styles.Warning.Render("Offline: showing sample data."))
		sb.WriteString("\n")
	}

	sb.WriteString(m.styles.Tab.Render("Subscriptions") + "\n")
	if len(m.subs) == 0 {
		sb.WriteString(m.styles.Muted.Render("No subscriptions this semester.") + "\n")
	}
	for i, sub := range m.subs {
		sb.WriteString(m.renderSubscription(sub, i == m.cursor))
	}

	sb.WriteString("\n" + m.styles.Tab.Render("Upcoming trips") + "\n")
	if len(m.trips) == 0 {
		sb.WriteString(m.styles.Muted.Render("No upcoming trips.") + "\n")
	}
	for i, trip := range m.trips {
		sb.WriteString(m.renderTrip(trip, len(m.subs)+i == m.cursor))
	}

	sb.WriteString(m.styles.Help.Render("x cancel · r refresh"))
	return sb.String()
}

func (m SubscriptionsPageModel) renderSubscription(sub types.Subscription, selected bool) string {
	badge := m.styles.statusStyle(sub.Status).Render(strings.ToUpper(sub.Status))
	line := fmt.Sprintf("%s → %s  %s  %s", sub.Route.From, sub.Route.To, badge, sub.Semester)
	if selected {
		return m.styles.Selected.Render(line) + "\n"
	}
	return m.styles.Card.Render(line) + "\n"
}

func (m SubscriptionsPageModel) renderTrip(trip types.Trip, selected bool) string {
	label := "morning"
	if trip.Type == types.TripEvening {
		label = "evening"
	}
	line := fmt.Sprintf("%s  %s  %s → %s", trip.Date, label, trip.Route.From, trip.Route.To)
	if selected {
		return m.styles.Selected.Render(line) + "\n"
	}
	return m.styles.Card.Render(line) + "\n"
}
