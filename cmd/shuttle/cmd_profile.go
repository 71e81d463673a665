package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"point2point/internal/forms"
)

var (
	profileFirstNameFlag string
	profileLastNameFlag  string
	profileHomeAreaFlag  string
	profileDepartureFlag string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the signed-in user's profile",
	RunE:  showProfile,
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields",
	RunE:  updateProfile,
}

func init() {
	profileUpdateCmd.Flags().StringVar(&profileFirstNameFlag, "first-name", "", "First name")
	profileUpdateCmd.Flags().StringVar(&profileLastNameFlag, "last-name", "", "Last name")
	profileUpdateCmd.Flags().StringVar(&profileHomeAreaFlag, "home-area", "", "Home neighborhood")
	profileUpdateCmd.Flags().StringVar(&profileDepartureFlag, "departure", "", "Preferred departure time, e.g. 08:00")
	profileCmd.AddCommand(profileUpdateCmd)
}

func showProfile(cmd *cobra.Command, args []string) error {
	_, user, err := requireUser()
	if err != nil {
		return err
	}

	fmt.Printf("%s <%s>\n", user.FullName(), user.Email)
	fmt.Printf("Home area:      %s\n", user.HomeArea)
	fmt.Printf("Departs at:     %s\n", user.PreferredDepartureTime)
	fmt.Printf("Routes joined:  %d\n", len(user.JoinedRoutes))
	fmt.Printf("Subscriptions:  %d\n", len(user.ActiveSubscriptions))
	if user.MemberSince != "" {
		fmt.Printf("Member since:   %s\n", user.MemberSince)
	}
	return nil
}

// updateProfile applies only the flags that were set, leaving the rest
// of the profile untouched.
func updateProfile(cmd *cobra.Command, args []string) error {
	e, user, err := requireUser()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("first-name") {
		user.FirstName = profileFirstNameFlag
	}
	if cmd.Flags().Changed("last-name") {
		user.LastName = profileLastNameFlag
	}
	if cmd.Flags().Changed("home-area") {
		user.HomeArea = profileHomeAreaFlag
	}
	if cmd.Flags().Changed("departure") {
		user.PreferredDepartureTime = profileDepartureFlag
	}

	if errs := forms.ValidateProfile(user); !errs.Valid() {
		return fmt.Errorf("%s", errs.First())
	}

	result := e.store.UpdateProfile(cmd.Context(), user)
	if !result.Success {
		return fmt.Errorf("%s", result.Error)
	}
	fmt.Println("Profile updated.")
	return nil
}
