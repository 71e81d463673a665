package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"point2point/internal/api"
	"point2point/internal/logging"
	"point2point/internal/types"
)

var routesStatus string

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List shuttle routes",
	Long: `Lists routes, optionally filtered by status (proposed, active,
cancelled). When the service is unreachable the built-in sample routes
are shown instead.`,
	RunE: listRoutes,
}

var joinCmd = &cobra.Command{
	Use:   "join [route-id]",
	Short: "Join a proposed route",
	Args:  cobra.ExactArgs(1),
	RunE:  joinRoute,
}

var activateCmd = &cobra.Command{
	Use:   "activate [route-id]",
	Short: "Request activation of a proposed route",
	Long: `Asks the service to activate a route that reached its member
threshold. Activation runs asynchronously; the command polls the task
until it settles.`,
	Args: cobra.ExactArgs(1),
	RunE: activateRoute,
}

var subscribeCmd = &cobra.Command{
	Use:   "subscribe [route-id]",
	Short: "Subscribe to an active route for the semester",
	Args:  cobra.ExactArgs(1),
	RunE:  subscribeRoute,
}

func init() {
	routesCmd.Flags().StringVar(&routesStatus, "status", "all", "Filter by status (all, proposed, active, cancelled)")
	routesCmd.AddCommand(joinCmd)
	routesCmd.AddCommand(activateCmd)
	routesCmd.AddCommand(subscribeCmd)
}

func listRoutes(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	list, err := e.client.ListRoutes(cmd.Context(), api.RouteFilter{Status: routesStatus})
	if err != nil {
		logging.Named("cli").Warn("route listing failed, using sample data")
		list, err = e.fallback.Routes(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println("Service unreachable; showing sample routes.")
	}

	for _, route := range list.Routes {
		if routesStatus != "all" && routesStatus != "" && route.Status != routesStatus {
			continue
		}
		printRoute(route)
	}
	return nil
}

func printRoute(route types.Route) {
	fmt.Printf("#%d  %s → %s  [%s]\n", route.ID, route.From, route.To, route.Status)
	fmt.Printf("    %s · %s · %d/%d members",
		route.Schedule, route.Semester, route.CurrentMembers, route.RequiredMembers)
	if route.Status == types.RouteActive {
		fmt.Printf(" · %d seats left", route.AvailableSeats)
	} else if route.DaysLeft > 0 {
		fmt.Printf(" · %d days left", route.DaysLeft)
	}
	if route.EstimatedCost > 0 {
		fmt.Printf(" · $%.0f/mo", route.EstimatedCost)
	}
	fmt.Println()
}

// parseRouteID parses the positional route id argument.
func parseRouteID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid route id %q", arg)
	}
	return id, nil
}

// requireUser returns the wired env and the signed-in user, failing with
// a sign-in hint when the session is anonymous.
func requireUser() (*env, types.User, error) {
	e, err := newEnv()
	if err != nil {
		return nil, types.User{}, err
	}
	user, ok := e.store.CurrentUser()
	if !ok {
		return nil, types.User{}, fmt.Errorf("not signed in; run 'shuttle login' first")
	}
	return e, user, nil
}

func joinRoute(cmd *cobra.Command, args []string) error {
	id, err := parseRouteID(args[0])
	if err != nil {
		return err
	}
	e, user, err := requireUser()
	if err != nil {
		return err
	}

	if err := e.client.JoinRoute(cmd.Context(), id, user.ID); err != nil {
		return fmt.Errorf("join route %d: %w", id, err)
	}
	fmt.Printf("Joined route %d.\n", id)
	return nil
}

func subscribeRoute(cmd *cobra.Command, args []string) error {
	id, err := parseRouteID(args[0])
	if err != nil {
		return err
	}
	e, user, err := requireUser()
	if err != nil {
		return err
	}

	sub, err := e.client.CreateSubscription(cmd.Context(), user.ID, id, e.cfg.Semester)
	if err != nil {
		return fmt.Errorf("subscribe to route %d: %w", id, err)
	}
	fmt.Printf("Subscribed to route %d for %s (subscription %d).\n", id, sub.Semester, sub.ID)
	return nil
}

func activateRoute(cmd *cobra.Command, args []string) error {
	id, err := parseRouteID(args[0])
	if err != nil {
		return err
	}
	e, _, err := requireUser()
	if err != nil {
		return err
	}

	task, err := e.client.ActivateRoute(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("activate route %d: %w", id, err)
	}

	for {
		switch strings.ToLower(task.Status) {
		case "completed", "succeeded", "active":
			fmt.Printf("Route %d activated.\n", id)
			return nil
		case "failed":
			return fmt.Errorf("activation of route %d failed", id)
		}

		select {
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		case <-time.After(2 * time.Second):
		}
		taskID := task.TaskID
		task, err = e.client.GetActivationStatus(cmd.Context(), taskID)
		if err != nil {
			return fmt.Errorf("poll activation task %s: %w", taskID, err)
		}
	}
}
