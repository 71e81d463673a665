package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"point2point/internal/api"
	"point2point/internal/logging"
	"point2point/internal/types"
)

var semesterCmd = &cobra.Command{
	Use:   "semester",
	Short: "Show this semester's subscriptions and upcoming trips",
	Long: `Shows the signed-in user's semester at a glance: active
subscriptions with their routes, and upcoming shuttle trips. Falls back
to the aggregated overview endpoint, then to sample data, when the
per-resource endpoints are unavailable.`,
	RunE: showSemester,
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's shuttle trips",
	RunE:  showTodayTrips,
}

var (
	bookRouteID int64
	bookDate    string
	bookType    string
)

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Book a one-off trip on an active route",
	Long: `Books a single morning or evening trip outside the regular
subscription schedule.

Example:
  shuttle semester book --route 12 --date 2025-09-03 --type morning`,
	RunE: bookTrip,
}

var cancelSubCmd = &cobra.Command{
	Use:   "cancel-subscription [subscription-id]",
	Short: "Cancel a subscription",
	Args:  cobra.ExactArgs(1),
	RunE:  cancelSubscription,
}

var cancelTripCmd = &cobra.Command{
	Use:   "cancel-trip [booking-id]",
	Short: "Cancel a single trip",
	Args:  cobra.ExactArgs(1),
	RunE:  cancelTrip,
}

func init() {
	bookCmd.Flags().Int64Var(&bookRouteID, "route", 0, "Route id (required)")
	bookCmd.Flags().StringVar(&bookDate, "date", "", "Trip date, YYYY-MM-DD (required)")
	bookCmd.Flags().StringVar(&bookType, "type", types.TripMorning, "Trip type (morning or evening)")

	semesterCmd.AddCommand(todayCmd)
	semesterCmd.AddCommand(bookCmd)
	semesterCmd.AddCommand(cancelSubCmd)
	semesterCmd.AddCommand(cancelTripCmd)
}

func showSemester(cmd *cobra.Command, args []string) error {
	e, user, err := requireUser()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	log := logging.Named("cli")

	var subs []types.Subscription
	var trips []types.Trip

	subList, subErr := e.client.ListSubscriptions(ctx, user.ID)
	tripList, tripErr := e.client.ListTrips(ctx, user.ID)
	switch {
	case subErr == nil && tripErr == nil:
		if err := e.client.EnrichSubscriptions(ctx, subList.Subscriptions); err != nil {
			return err
		}
		subs, trips = subList.Subscriptions, tripList
	default:
		log.Warn("per-resource overview failed, trying aggregate endpoint")
		overview, err := e.client.SemesterOverview(ctx)
		if err != nil {
			overview, err = e.fallback.SemesterOverview(ctx)
			if err != nil {
				return err
			}
			fmt.Println("Service unreachable; showing sample data.")
		}
		subs, trips = overview.Subscriptions, overview.UpcomingTrips
	}

	fmt.Println("Subscriptions:")
	if len(subs) == 0 {
		fmt.Println("  (none)")
	}
	for _, sub := range subs {
		fmt.Printf("  #%d  %s → %s  [%s]  %s\n",
			sub.ID, sub.Route.From, sub.Route.To, sub.Status, sub.Semester)
	}

	fmt.Println("Upcoming trips:")
	if len(trips) == 0 {
		fmt.Println("  (none)")
	}
	for _, trip := range trips {
		fmt.Printf("  #%d  %s %s  %s → %s\n",
			trip.BookingID, trip.Date, trip.Type, trip.Route.From, trip.Route.To)
	}
	return nil
}

func showTodayTrips(cmd *cobra.Command, args []string) error {
	e, _, err := requireUser()
	if err != nil {
		return err
	}

	trips, err := e.client.TodayTrips(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetch today's trips: %w", err)
	}
	if len(trips) == 0 {
		fmt.Println("No trips today.")
		return nil
	}
	for _, trip := range trips {
		fmt.Printf("#%d  %s  %s → %s\n",
			trip.BookingID, trip.Type, trip.Route.From, trip.Route.To)
	}
	return nil
}

func bookTrip(cmd *cobra.Command, args []string) error {
	if bookRouteID <= 0 {
		return fmt.Errorf("--route is required")
	}
	if bookDate == "" {
		return fmt.Errorf("--date is required")
	}
	if bookType != types.TripMorning && bookType != types.TripEvening {
		return fmt.Errorf("--type must be morning or evening")
	}
	e, user, err := requireUser()
	if err != nil {
		return err
	}

	trip, err := e.client.CreateTrip(cmd.Context(), api.NewTrip{
		UserID:  user.ID,
		RouteID: bookRouteID,
		Date:    bookDate,
		Type:    bookType,
	})
	if err != nil {
		return fmt.Errorf("book trip: %w", err)
	}
	fmt.Printf("Booked %s trip %d on route %d for %s.\n", trip.Type, trip.BookingID, bookRouteID, trip.Date)
	return nil
}

func cancelSubscription(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid subscription id %q", args[0])
	}
	e, _, err := requireUser()
	if err != nil {
		return err
	}
	if err := e.client.CancelSubscription(cmd.Context(), id); err != nil {
		return fmt.Errorf("cancel subscription %d: %w", id, err)
	}
	fmt.Printf("Subscription %d cancelled.\n", id)
	return nil
}

func cancelTrip(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid booking id %q", args[0])
	}
	e, _, err := requireUser()
	if err != nil {
		return err
	}
	if err := e.client.CancelTrip(cmd.Context(), id); err != nil {
		return fmt.Errorf("cancel trip %d: %w", id, err)
	}
	fmt.Printf("Trip %d cancelled.\n", id)
	return nil
}
