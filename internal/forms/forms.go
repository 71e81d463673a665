// Package forms holds the client-side validation shared by the TUI pages
// and the CLI subcommands. Validation failures never reach the network;
// they are reported per field so forms can highlight the offending input.
package forms

import (
	"strings"

	"point2point/internal/types"
)

// RouteTypeToColumbia pins the origin to campus; RouteTypeFromHome pins
// the destination.
const (
	RouteTypeToColumbia = "to-columbia"
	RouteTypeFromHome   = "from-home"
)

// Campus is the fixed endpoint every route shares.
const Campus = "Columbia University"

// Errors is a per-field validation result. A nil or empty map means the
// form is valid.
type Errors map[string]string

// Valid reports whether no field failed.
func (e Errors) Valid() bool { return len(e) == 0 }

// First returns an arbitrary-but-stable first error for single-line
// display.
func (e Errors) First() string {
	for _, field := range []string{"from", "to", "estimatedCost", "days", "contactInfo", "email", "password", "firstName", "lastName", "homeArea", "general"} {
		if msg, ok := e[field]; ok {
			return msg
		}
	}
	for _, msg := range e {
		return msg
	}
	return ""
}

// ValidateProposal checks a route proposal form.
func ValidateProposal(p types.RouteProposal) Errors {
	errs := Errors{}

	if p.RouteType == RouteTypeFromHome {
		if strings.TrimSpace(p.From) == "" {
			errs["from"] = "Origin location is required"
		}
	} else {
		if strings.TrimSpace(p.To) == "" {
			errs["to"] = "Destination is required"
		}
	}

	if p.EstimatedCost <= 0 {
		errs["estimatedCost"] = "Please enter a valid cost amount"
	}
	if strings.TrimSpace(p.ContactInfo) == "" {
		errs["contactInfo"] = "Contact information is required"
	}
	if len(p.Schedule.Days) == 0 {
		errs["days"] = "Please select at least one day"
	}

	return errs
}

// ValidateProfile checks the editable profile fields.
func ValidateProfile(u types.User) Errors {
	errs := Errors{}
	if strings.TrimSpace(u.FirstName) == "" {
		errs["firstName"] = "First name is required"
	}
	if strings.TrimSpace(u.LastName) == "" {
		errs["lastName"] = "Last name is required"
	}
	if strings.TrimSpace(u.HomeArea) == "" {
		errs["homeArea"] = "Home area is required"
	}
	return errs
}

// ValidateLogin checks the login form.
func ValidateLogin(email, password string) Errors {
	errs := Errors{}
	if !looksLikeEmail(email) {
		errs["email"] = "A valid email is required"
	}
	if password == "" {
		errs["password"] = "Password is required"
	}
	return errs
}

// ValidateSignup checks the signup form.
func ValidateSignup(email, password, firstName, lastName string) Errors {
	errs := ValidateLogin(email, password)
	if strings.TrimSpace(firstName) == "" {
		errs["firstName"] = "First name is required"
	}
	if strings.TrimSpace(lastName) == "" {
		errs["lastName"] = "Last name is required"
	}
	return errs
}

func looksLikeEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && strings.Contains(s[at+1:], ".")
}
