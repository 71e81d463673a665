// Package normalize converts raw composite-service payloads into the
// canonical model in internal/types. The functions are pure: no network
// access, no mutation of their input, deterministic output. Normalizing an
// already-canonical record is a no-op.
//
// Rules, per entity field:
//   - prefer the camelCase key, fall back to the snake_case equivalent,
//     fall back to a hardcoded default
//   - schedule display strings pass through; structured schedules and bare
//     top-level times are rendered to a single display string
//   - availableSeats, when absent, derives as max(0, required - current)
package normalize

import (
	"encoding/json"
	"strings"

	"point2point/internal/types"
)

// Defaults applied when the backend omits a field.
const (
	DefaultRequiredMembers = 15
	DefaultDaysLeft        = 30
	DefaultMorningTime     = "08:00"
	DefaultEveningTime     = "18:00"
	defaultSemester        = "Fall 2025"
	defaultLocation        = "Unknown"
)

// Placeholder summary attached to subscriptions that arrive without a
// denormalized route, pending enrichment.
const (
	PlaceholderFrom = "Columbia University"
	PlaceholderTo   = "Loading..."
)

// Options carries environment-derived defaults into normalization.
type Options struct {
	// Semester is the current-semester label. Empty falls back to the
	// built-in default.
	Semester string
}

func (o Options) semester() string {
	if o.Semester == "" {
		return defaultSemester
	}
	return o.Semester
}

// Route canonicalizes a raw route record.
func Route(r RawRoute, opts Options) types.Route {
	current := intOr(first(r.CurrentMembers, r.CurrentMembersSnake), 0)
	required := intOr(first(r.RequiredMembers, r.RequiredMembersSnake), DefaultRequiredMembers)

	var seats int
	if r.AvailableSeats != nil {
		seats = *r.AvailableSeats
	} else if seats = required - current; seats < 0 {
		seats = 0
	}

	links := r.Links
	if links == nil {
		links = map[string]string{}
	}

	return types.Route{
		ID:              int64(r.ID),
		From:            stringOr(r.From, r.FromLocation, defaultLocation),
		To:              stringOr(r.To, r.ToLocation, defaultLocation),
		Status:          strings.ToLower(stringOr(r.Status, "", types.RouteProposed)),
		Schedule:        ScheduleDisplay(r.Schedule, r.MorningTime, r.EveningTime),
		Semester:        stringOr(r.Semester, "", opts.semester()),
		CurrentMembers:  current,
		RequiredMembers: required,
		AvailableSeats:  seats,
		DaysLeft:        intOr(r.DaysLeft, DefaultDaysLeft),
		EstimatedCost:   floatOr(first(r.EstimatedCost, r.EstimatedCostSnake), 0),
		Description:     r.Description,
		CreatedBy:       int64(firstID(r.CreatedBy, r.CreatedBySnake)),
		CreatedAt:       stringOr(r.CreatedAt, r.CreatedAtSnake, ""),
		Links:           links,
	}
}

// ScheduleDisplay renders whatever schedule representation arrived into a
// single display string:
//   - a display string passes through untouched
//   - {days, morningTime, eveningTime} renders as
//     "<comma-joined days> <morning> / <evening>"
//   - otherwise the top-level time fields compose "<morning> / <evening>"
func ScheduleDisplay(raw json.RawMessage, morningTop, eveningTop string) string {
	if len(raw) > 0 {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		var obj RawSchedule
		if err := json.Unmarshal(raw, &obj); err == nil {
			morning := stringOr(obj.MorningTime, obj.MorningTimeSnake, DefaultMorningTime)
			evening := stringOr(obj.EveningTime, obj.EveningTimeSnake, DefaultEveningTime)
			times := morning + " / " + evening
			if len(obj.Days) > 0 {
				return strings.Join(obj.Days, ", ") + " " + times
			}
			return times
		}
	}
	return stringOr(morningTop, "", DefaultMorningTime) + " / " + stringOr(eveningTop, "", DefaultEveningTime)
}

// Subscription canonicalizes a raw subscription record. Records without a
// denormalized route summary get the placeholder summary, which marks them
// for enrichment.
func Subscription(s RawSubscription, opts Options) types.Subscription {
	semester := stringOr(s.Semester, "", opts.semester())

	var summary types.RouteSummary
	if s.Route != nil {
		summary = types.RouteSummary{
			From:     s.Route.From,
			To:       s.Route.To,
			Schedule: s.Route.Schedule,
			Semester: s.Route.Semester,
		}
	} else {
		summary = types.RouteSummary{
			From:     PlaceholderFrom,
			To:       PlaceholderTo,
			Schedule: PlaceholderTo,
			Semester: semester,
		}
	}

	return types.Subscription{
		ID:       int64(s.ID),
		UserID:   int64(firstID(s.UserID, s.UserIDSnake)),
		RouteID:  int64(firstID(s.RouteID, s.RouteIDSnake)),
		Status:   strings.ToLower(s.Status),
		Semester: semester,
		Route:    summary,
	}
}

// Trip canonicalizes a raw trip booking.
func Trip(t RawTrip) types.Trip {
	summary := types.RouteSummary{From: PlaceholderFrom, To: PlaceholderTo}
	if t.Route != nil {
		summary = types.RouteSummary{
			From:     t.Route.From,
			To:       t.Route.To,
			Schedule: t.Route.Schedule,
			Semester: t.Route.Semester,
		}
	}
	return types.Trip{
		BookingID: int64(firstID(t.BookingID, t.ID)),
		Type:      strings.ToLower(t.Type),
		Date:      t.Date,
		Route:     summary,
	}
}

// User canonicalizes a raw user record.
func User(u RawUser) types.User {
	return types.User{
		ID:                     int64(firstID(u.ID, u.UserID)),
		Email:                  u.Email,
		FirstName:              stringOr(u.FirstName, u.FirstSnake, ""),
		LastName:               stringOr(u.LastName, u.LastSnake, ""),
		HomeArea:               stringOr(u.HomeArea, u.HomeSnake, ""),
		PreferredDepartureTime: stringOr(u.Departure, u.DepartSnake, DefaultMorningTime),
		JoinedRoutes:           u.JoinedRoutes,
		ActiveSubscriptions:    u.ActiveSubscriptions,
		MemberSince:            stringOr(u.MemberSince, u.MemberSinceSnake, ""),
	}
}

func stringOr(camel, snake, fallback string) string {
	if camel != "" {
		return camel
	}
	if snake != "" {
		return snake
	}
	return fallback
}

func first[T any](camel, snake *T) *T {
	if camel != nil {
		return camel
	}
	return snake
}

func firstID(camel, snake FlexInt64) FlexInt64 {
	if camel != 0 {
		return camel
	}
	return snake
}

func intOr(v *int, fallback int) int {
	if v != nil {
		return *v
	}
	return fallback
}

func floatOr(v *float64, fallback float64) float64 {
	if v != nil {
		return *v
	}
	return fallback
}
