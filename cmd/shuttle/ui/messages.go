package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"point2point/internal/session"
	"point2point/internal/types"
)

// bannerDuration is how long a banner stays visible before auto-clearing.
const bannerDuration = 4 * time.Second

// Page identifies a tab in the App model.
type Page int

const (
	PageRoutes Page = iota
	PagePropose
	PageMyRoutes
	PageSubscriptions
	PageProfile
)

// routesLoadedMsg delivers a route list. gen guards against stale
// responses: out-of-order completions for superseded loads are dropped.
type routesLoadedMsg struct {
	gen          int
	list         types.RouteList
	fromFallback bool
}

// routesLoadFailedMsg reports a load that failed even after fallback.
type routesLoadFailedMsg struct {
	gen int
	err error
}

// routeJoinedMsg reports the outcome of a join call.
type routeJoinedMsg struct {
	routeID int64
	err     error
}

// routeSubscribedMsg reports the outcome of a subscribe call.
type routeSubscribedMsg struct {
	routeID int64
	err     error
}

// activationMsg delivers activation task progress.
type activationMsg struct {
	task types.ActivationTask
	err  error
}

// proposalSubmittedMsg reports the outcome of a route proposal.
type proposalSubmittedMsg struct {
	route types.Route
	err   error
}

// myRoutesLoadedMsg delivers the joined/proposed split for my-routes.
// subs carries the user's subscriptions so joined routes can be mapped
// back to a cancellable subscription.
type myRoutesLoadedMsg struct {
	gen      int
	joined   []types.Route
	proposed []types.Route
	subs     []types.Subscription
	err      error
}

// routeLeftMsg reports the outcome of leaving a route.
type routeLeftMsg struct {
	routeID int64
	err     error
}

// overviewLoadedMsg delivers subscriptions and upcoming trips.
type overviewLoadedMsg struct {
	gen          int
	subs         []types.Subscription
	trips        []types.Trip
	fromFallback bool
}

// overviewLoadFailedMsg reports a subscriptions load failure.
type overviewLoadFailedMsg struct {
	gen int
	err error
}

// subscriptionCancelledMsg reports a cancel-subscription outcome.
type subscriptionCancelledMsg struct {
	subscriptionID int64
	err            error
}

// tripCancelledMsg reports a cancel-trip outcome.
type tripCancelledMsg struct {
	bookingID int64
	err       error
}

// authResultMsg delivers a login/signup outcome to the modal.
type authResultMsg struct {
	result session.AuthResult
	signup bool
}

// profileSavedMsg delivers a profile update outcome.
type profileSavedMsg struct {
	result session.AuthResult
}

// openAuthModalMsg asks the App to show the login modal. Pages emit it
// instead of calling the network when a mutating action requires auth.
type openAuthModalMsg struct {
	mode authMode
}

// switchPageMsg asks the App to change tabs.
type switchPageMsg struct {
	page Page
}

// bannerMsg shows a transient status banner.
type bannerMsg struct {
	text    string
	isError bool
}

// bannerClearMsg hides the banner after its timer fires. seq matches the
// banner it was scheduled for so a newer banner is not cleared early.
type bannerClearMsg struct {
	seq int
}

func showBanner(text string) tea.Cmd {
	return func() tea.Msg { return bannerMsg{text: text} }
}

func showError(text string) tea.Cmd {
	return func() tea.Msg { return bannerMsg{text: text, isError: true} }
}

func openAuthModal() tea.Cmd {
	return func() tea.Msg { return openAuthModalMsg{mode: authModeLogin} }
}

func switchPage(p Page) tea.Cmd {
	return func() tea.Msg { return switchPageMsg{page: p} }
}
