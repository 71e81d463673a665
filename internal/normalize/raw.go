package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexInt64 decodes either a JSON number or a numeric string. The user
// and route services disagree on how they serialize ids.
type FlexInt64 int64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt64) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("numeric string expected: %w", err)
		}
		*f = FlexInt64(n)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexInt64(n)
	return nil
}

// RawRoute is a route record as the composite service actually sends it:
// camelCase or snake_case field names, schedule as either a display string
// or a structured object, and most fields optional.
type RawRoute struct {
	ID           FlexInt64 `json:"id"`
	From         string    `json:"from"`
	FromLocation string    `json:"from_location"`
	To           string    `json:"to"`
	ToLocation   string    `json:"to_location"`
	Status       string    `json:"status"`

	// Schedule is decoded lazily: string, object, or absent.
	Schedule json.RawMessage `json:"schedule"`

	// Top-level time fields used when no schedule value is present.
	MorningTime string `json:"morningTime"`
	EveningTime string `json:"eveningTime"`

	Semester string `json:"semester"`

	CurrentMembers       *int `json:"currentMembers"`
	CurrentMembersSnake  *int `json:"current_members"`
	RequiredMembers      *int `json:"requiredMembers"`
	RequiredMembersSnake *int `json:"required_members"`
	AvailableSeats       *int `json:"availableSeats"`
	DaysLeft             *int `json:"daysLeft"`

	EstimatedCost      *float64 `json:"estimatedCost"`
	EstimatedCostSnake *float64 `json:"estimated_cost"`

	Description string `json:"description"`

	CreatedBy      FlexInt64 `json:"createdBy"`
	CreatedBySnake FlexInt64 `json:"created_by"`
	CreatedAt      string    `json:"createdAt"`
	CreatedAtSnake string    `json:"created_at"`

	Links map[string]string `json:"links"`
}

// RawSchedule is the structured schedule variant.
type RawSchedule struct {
	Days             []string `json:"days"`
	MorningTime      string   `json:"morningTime"`
	MorningTimeSnake string   `json:"morning_time"`
	EveningTime      string   `json:"eveningTime"`
	EveningTimeSnake string   `json:"evening_time"`
}

// RawRouteSummary is the denormalized route fragment on subscriptions and
// trips.
type RawRouteSummary struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Schedule string `json:"schedule"`
	Semester string `json:"semester"`
}

// RawSubscription is a subscription record as sent by the backend.
type RawSubscription struct {
	ID           FlexInt64        `json:"id"`
	UserID       FlexInt64        `json:"userId"`
	UserIDSnake  FlexInt64        `json:"user_id"`
	RouteID      FlexInt64        `json:"routeId"`
	RouteIDSnake FlexInt64        `json:"route_id"`
	Status       string           `json:"status"`
	Semester     string           `json:"semester"`
	Route        *RawRouteSummary `json:"route"`
}

// RawTrip is a trip booking as sent by the backend. bookingId and id are
// interchangeable.
type RawTrip struct {
	BookingID FlexInt64        `json:"bookingId"`
	ID        FlexInt64        `json:"id"`
	Type      string           `json:"type"`
	Date      string           `json:"date"`
	Route     *RawRouteSummary `json:"route"`
}

// RawUser is a user record as sent by the backend.
type RawUser struct {
	ID          FlexInt64 `json:"id"`
	UserID      FlexInt64 `json:"userId"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName"`
	FirstSnake  string    `json:"first_name"`
	LastName    string    `json:"lastName"`
	LastSnake   string    `json:"last_name"`
	HomeArea    string    `json:"homeArea"`
	HomeSnake   string    `json:"home_area"`
	Departure   string    `json:"preferredDepartureTime"`
	DepartSnake string    `json:"preferred_departure_time"`

	JoinedRoutes        []int64 `json:"joinedRoutes"`
	ActiveSubscriptions []int64 `json:"activeSubscriptions"`
	MemberSince         string  `json:"memberSince"`
	MemberSinceSnake    string  `json:"member_since"`
}
