package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"point2point/internal/api"
	"point2point/internal/forms"
)

var (
	authEmail    string
	authPassword string

	signupFirstName string
	signupLastName  string
	signupHomeArea  string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and persist the session",
	RunE:  runLogin,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	RunE:  runSignup,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the persisted session",
	RunE:  runLogout,
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "Account email (required)")
		c.Flags().StringVar(&authPassword, "password", "", "Account password (required)")
	}
	signupCmd.Flags().StringVar(&signupFirstName, "first-name", "", "First name (required)")
	signupCmd.Flags().StringVar(&signupLastName, "last-name", "", "Last name (required)")
	signupCmd.Flags().StringVar(&signupHomeArea, "home-area", "", "Home neighborhood")
}

func runLogin(cmd *cobra.Command, args []string) error {
	if errs := forms.ValidateLogin(authEmail, authPassword); !errs.Valid() {
		return fmt.Errorf("%s", errs.First())
	}
	e, err := newEnv()
	if err != nil {
		return err
	}

	result := e.store.Login(cmd.Context(), authEmail, authPassword)
	if !result.Success {
		return fmt.Errorf("%s", result.Error)
	}
	fmt.Printf("Signed in as %s.\n", result.User.FullName())
	return nil
}

func runSignup(cmd *cobra.Command, args []string) error {
	if errs := forms.ValidateSignup(authEmail, authPassword, signupFirstName, signupLastName); !errs.Valid() {
		return fmt.Errorf("%s", errs.First())
	}
	e, err := newEnv()
	if err != nil {
		return err
	}

	result := e.store.Signup(cmd.Context(), api.NewUser{
		Email:     authEmail,
		FirstName: signupFirstName,
		LastName:  signupLastName,
		HomeArea:  signupHomeArea,
	}, authPassword)
	if !result.Success {
		return fmt.Errorf("%s", result.Error)
	}
	fmt.Printf("Account created. Signed in as %s.\n", result.User.FullName())
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}
	e.store.Logout(cmd.Context())
	fmt.Println("Signed out.")
	return nil
}
