package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"point2point/internal/forms"
	"point2point/internal/normalize"
	"point2point/internal/types"
)

var (
	proposeFromHome bool
	proposeLocation string
	proposeDays     []string
	proposeMorning  string
	proposeEvening  string
	proposeCost     float64
	proposeDesc     string
	proposeContact  string
)

var proposeCmd = &cobra.Command{
	Use:   "propose",
	Short: "Propose a new shuttle route",
	Long: `Proposes a new route anchored at campus. By default the route
runs campus → location; pass --from-home for location → campus.

Example:
  shuttle propose --location "Astoria" --days monday,wednesday,friday \
    --cost 150 --contact you@columbia.edu`,
	RunE: runPropose,
}

func init() {
	proposeCmd.Flags().BoolVar(&proposeFromHome, "from-home", false, "Route runs home → campus")
	proposeCmd.Flags().StringVar(&proposeLocation, "location", "", "The non-campus end of the route (required)")
	proposeCmd.Flags().StringSliceVar(&proposeDays, "days", nil, "Operating days, e.g. monday,wednesday (required)")
	proposeCmd.Flags().StringVar(&proposeMorning, "morning", normalize.DefaultMorningTime, "Morning departure time")
	proposeCmd.Flags().StringVar(&proposeEvening, "evening", normalize.DefaultEveningTime, "Evening departure time")
	proposeCmd.Flags().Float64Var(&proposeCost, "cost", 0, "Estimated monthly cost (required)")
	proposeCmd.Flags().StringVar(&proposeDesc, "description", "", "Route description")
	proposeCmd.Flags().StringVar(&proposeContact, "contact", "", "Contact info (required)")
}

func runPropose(cmd *cobra.Command, args []string) error {
	e, user, err := requireUser()
	if err != nil {
		return err
	}

	proposal := types.RouteProposal{
		RouteType: forms.RouteTypeToColumbia,
		From:      forms.Campus,
		To:        proposeLocation,
		Schedule: types.Schedule{
			Days:        proposeDays,
			MorningTime: proposeMorning,
			EveningTime: proposeEvening,
		},
		Semester:      e.cfg.Semester,
		EstimatedCost: proposeCost,
		Description:   proposeDesc,
		ContactInfo:   proposeContact,
	}
	if proposeFromHome {
		proposal.RouteType = forms.RouteTypeFromHome
		proposal.From = proposeLocation
		proposal.To = forms.Campus
	}

	if errs := forms.ValidateProposal(proposal); !errs.Valid() {
		return fmt.Errorf("%s", errs.First())
	}

	route, err := e.client.CreateRoute(cmd.Context(), proposal, user.ID)
	if err != nil {
		return fmt.Errorf("create route: %w", err)
	}
	fmt.Printf("Proposed route %d: %s → %s (%s).\n", route.ID, route.From, route.To, route.Schedule)
	return nil
}
