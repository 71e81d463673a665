package ui

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var pageTitles = map[Page]string{
	PageRoutes:        "Routes",
	PagePropose:       "Propose",
	PageMyRoutes:      "My Routes",
	PageSubscriptions: "Semester",
	PageProfile:       "Profile",
}

var pageOrder = []Page{PageRoutes, PagePropose, PageMyRoutes, PageSubscriptions, PageProfile}

// App is the top-level model: tab bar, active page, auth modal overlay,
// and a transient status banner.
type App struct {
	deps   Deps
	styles Styles

	active  Page
	routes  RoutesPageModel
	propose ProposalPageModel
	mine    MyRoutesPageModel
	subs    SubscriptionsPageModel
	profile ProfilePageModel

	modal *AuthModalModel

	banner      string
	bannerError bool
	bannerSeq   int

	width  int
	height int
}

// NewApp wires the pages to their dependencies.
func NewApp(deps Deps) App {
	return App{
		deps:    deps,
		styles:  DefaultStyles(),
		routes:  NewRoutesPageModel(deps),
		propose: NewProposalPageModel(deps),
		mine:    NewMyRoutesPageModel(deps),
		subs:    NewSubscriptionsPageModel(deps),
		profile: NewProfilePageModel(deps),
	}
}

// Init starts the initial page loads.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.routes.Init(), a.mine.Init(), a.subs.Init(), a.profile.Init())
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.routes.SetSize(msg.Width, msg.Height)
		return a, nil

	case openAuthModalMsg:
		modal := NewAuthModalModel(a.deps, msg.mode)
		a.modal = &modal
		return a, nil

	case switchPageMsg:
		return a.switchTo(msg.page), nil

	case bannerMsg:
		a.banner = msg.text
		a.bannerError = msg.isError
		a.bannerSeq++
		seq := a.bannerSeq
		return a, tea.Tick(bannerDuration, func(time.Time) tea.Msg {
			return bannerClearMsg{seq: seq}
		})

	case bannerClearMsg:
		// A newer banner owns the display; leave it up.
		if msg.seq == a.bannerSeq {
			a.banner = ""
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	// Everything else (load results, auth results, ticks) fans out so
	// gen guards and per-page state stay correct regardless of which
	// page is visible.
	return a.broadcast(msg)
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.modal != nil {
		modal, cmd, done := a.modal.Update(msg)
		a.modal = &modal
		if done {
			a.modal = nil
			// Page content depends on who is signed in.
			return a, tea.Batch(cmd, a.reloadAll())
		}
		return a, cmd
	}

	if msg.String() == "ctrl+c" {
		a.teardownAll()
		return a, tea.Quit
	}

	// Banners dismiss manually with esc, ahead of the auto-clear timer.
	if msg.String() == "esc" && a.banner != "" {
		a.banner = ""
		return a, nil
	}

	// Form pages own every printable key; global shortcuts only apply
	// on browsing pages.
	if !a.textEntryActive() {
		switch msg.String() {
		case "q":
			a.teardownAll()
			return a, tea.Quit
		case "1", "2", "3", "4", "5":
			idx := int(msg.String()[0] - '1')
			return a.switchTo(pageOrder[idx]), nil
		case "L":
			if a.deps.Session.IsAuthenticated() {
				return a, a.logout()
			}
			return a, openAuthModal()
		}
	}

	return a.updateActive(msg)
}

// textEntryActive reports whether the visible page is collecting text,
// in which case keystrokes must reach its inputs untouched.
func (a App) textEntryActive() bool {
	return a.active == PagePropose || (a.active == PageProfile && a.profile.editing)
}

func (a App) logout() tea.Cmd {
	deps := a.deps
	return func() tea.Msg {
		deps.Session.Logout(context.Background())
		return bannerMsg{text: "Signed out."}
	}
}

// switchTo tears down the outgoing page's in-flight work and starts the
// incoming page.
func (a App) switchTo(page Page) App {
	if page == a.active {
		return a
	}
	switch a.active {
	case PageRoutes:
		a.routes.Teardown()
	case PageMyRoutes:
		a.mine.Teardown()
	case PageSubscriptions:
		a.subs.Teardown()
	}
	a.active = page
	return a
}

func (a *App) teardownAll() {
	a.routes.Teardown()
	a.mine.Teardown()
	a.subs.Teardown()
}

func (a App) reloadAll() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return reloadRoutesMsg{} },
		func() tea.Msg { return reloadMyRoutesMsg{} },
		func() tea.Msg { return reloadOverviewMsg{} },
		func() tea.Msg { return reloadProfileMsg{} },
	)
}

// updateActive routes a key to the visible page only.
func (a App) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.active {
	case PageRoutes:
		a.routes, cmd = a.routes.Update(msg)
	case PagePropose:
		a.propose, cmd = a.propose.Update(msg)
	case PageMyRoutes:
		a.mine, cmd = a.mine.Update(msg)
	case PageSubscriptions:
		a.subs, cmd = a.subs.Update(msg)
	case PageProfile:
		a.profile, cmd = a.profile.Update(msg)
	}
	return a, cmd
}

// broadcast fans a non-key message out to every page and the modal.
func (a App) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 6)
	var cmd tea.Cmd

	if a.modal != nil {
		modal, cmd, done := a.modal.Update(msg)
		a.modal = &modal
		if done {
			a.modal = nil
			cmds = append(cmds, a.reloadAll())
		}
		cmds = append(cmds, cmd)
	}

	a.routes, cmd = a.routes.Update(msg)
	cmds = append(cmds, cmd)
	a.propose, cmd = a.propose.Update(msg)
	cmds = append(cmds, cmd)
	a.mine, cmd = a.mine.Update(msg)
	cmds = append(cmds, cmd)
	a.subs, cmd = a.subs.Update(msg)
	cmds = append(cmds, cmd)
	a.profile, cmd = a.profile.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

// View renders tab bar, active page (or modal), banner, and footer.
func (a App) View() string {
	var sb strings.Builder

	tabs := make([]string, 0, len(pageOrder))
	for i, page := range pageOrder {
		label := fmt.Sprintf("%d %s", i+1, pageTitles[page])
		if page == a.active {
			tabs = append(tabs, a.styles.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, a.styles.Tab.Render(label))
		}
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	sb.WriteString("\n\n")

	if a.banner != "" {
		style := a.styles.Success
		if a.bannerError {
			style = a.styles.Error
		}
		sb.WriteString(style.Render(a.banner) + "\n\n")
	}

	if a.modal != nil {
		sb.WriteString(a.modal.View())
	} else {
		switch a.active {
		case PageRoutes:
			sb.WriteString(a.routes.View())
		case PagePropose:
			sb.WriteString(a.propose.View())
		case PageMyRoutes:
			sb.WriteString(a.mine.View())
		case PageSubscriptions:
			sb.WriteString(a.subs.View())
		case PageProfile:
			sb.WriteString(a.profile.View())
		}
	}

	sb.WriteString("\n" + a.footer())
	return sb.String()
}

// footer shows the backing service and who is signed in.
func (a App) footer() string {
	host := a.deps.Services.Composite
	if u, err := url.Parse(host); err == nil && u.Host != "" {
		host = u.Host
	}

	who := "anonymous · L to sign in"
	if user, ok := a.deps.Session.CurrentUser(); ok {
		who = user.FullName() + " · L to sign out"
	}
	return a.styles.Help.Render(fmt.Sprintf("%s · %s", host, who))
}
