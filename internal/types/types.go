// Package types defines the canonical client-side model for the Point2Point
// shuttle service. Raw composite-service payloads are converted into these
// shapes by internal/normalize; everything above the gateway client works
// exclusively with this package.
package types

// Route status values as reported by the route service.
const (
	RouteProposed  = "proposed"
	RouteActive    = "active"
	RouteCancelled = "cancelled"
)

// Subscription status values.
const (
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
)

// Trip booking types.
const (
	TripMorning = "morning"
	TripEvening = "evening"
)

// Route is a proposed or active shuttle line between campus and a
// residential area. Schedule is always a display string; structured
// schedules are flattened during normalization.
type Route struct {
	ID              int64             `json:"id"`
	From            string            `json:"from"`
	To              string            `json:"to"`
	Status          string            `json:"status"`
	Schedule        string            `json:"schedule"`
	Semester        string            `json:"semester"`
	CurrentMembers  int               `json:"currentMembers"`
	RequiredMembers int               `json:"requiredMembers"`
	AvailableSeats  int               `json:"availableSeats"`
	DaysLeft        int               `json:"daysLeft"`
	EstimatedCost   float64           `json:"estimatedCost"`
	Description     string            `json:"description"`
	CreatedBy       int64             `json:"createdBy"`
	CreatedAt       string            `json:"createdAt"`
	Links           map[string]string `json:"links"`
}

// Schedule is the structured form accepted by route creation.
type Schedule struct {
	Days        []string `json:"days"`
	MorningTime string   `json:"morningTime"`
	EveningTime string   `json:"eveningTime"`
}

// Pagination is the envelope metadata attached to list responses.
type Pagination struct {
	TotalCount int `json:"total_count"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// RouteSummary is the denormalized route fragment attached to
// subscriptions and trips for display.
type RouteSummary struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Schedule string `json:"schedule,omitempty"`
	Semester string `json:"semester,omitempty"`
}

// Subscription is a semester-long commitment to an active route.
// Subscriptions are never deleted, only status-transitioned.
type Subscription struct {
	ID       int64        `json:"id"`
	UserID   int64        `json:"userId"`
	RouteID  int64        `json:"routeId"`
	Status   string       `json:"status"`
	Semester string       `json:"semester"`
	Route    RouteSummary `json:"route"`
}

// Trip is a single morning or evening shuttle booking belonging to a
// subscription.
type Trip struct {
	BookingID int64        `json:"bookingId"`
	Type      string       `json:"type"`
	Date      string       `json:"date"`
	Route     RouteSummary `json:"route"`
}

// User is the profile record owned by the session store.
type User struct {
	ID                     int64   `json:"id"`
	Email                  string  `json:"email"`
	FirstName              string  `json:"firstName"`
	LastName               string  `json:"lastName"`
	HomeArea               string  `json:"homeArea"`
	PreferredDepartureTime string  `json:"preferredDepartureTime"`
	JoinedRoutes           []int64 `json:"joinedRoutes,omitempty"`
	ActiveSubscriptions    []int64 `json:"activeSubscriptions,omitempty"`
	MemberSince            string  `json:"memberSince,omitempty"`
}

// FullName joins first and last name for display.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// RouteList pairs normalized routes with their pagination envelope.
type RouteList struct {
	Routes     []Route    `json:"routes"`
	Pagination Pagination `json:"pagination"`
}

// SubscriptionList pairs normalized subscriptions with pagination.
type SubscriptionList struct {
	Subscriptions []Subscription `json:"subscriptions"`
	Pagination    Pagination     `json:"pagination"`
}

// SemesterOverview aggregates a user's subscriptions and upcoming trips
// for the current semester.
type SemesterOverview struct {
	Subscriptions []Subscription `json:"subscriptions"`
	UpcomingTrips []Trip         `json:"upcomingTrips"`
}

// RouteProposal is the client-side form payload for a new route.
type RouteProposal struct {
	RouteType     string   `json:"routeType"` // "to-columbia" or "from-home"
	From          string   `json:"from"`
	To            string   `json:"to"`
	Schedule      Schedule `json:"schedule"`
	Semester      string   `json:"semester"`
	EstimatedCost float64  `json:"estimatedCost"`
	Description   string   `json:"description"`
	ContactInfo   string   `json:"contactInfo"`
}

// ActivationTask is the async task handle returned when a route
// activation is requested. The composite service answers 202 and the
// client polls the task until it settles.
type ActivationTask struct {
	TaskID  string `json:"taskId"`
	RouteID int64  `json:"routeId"`
	Status  string `json:"status"`
}
