package forms

import (
	"testing"

	"point2point/internal/types"
)

func validProposal() types.RouteProposal {
	return types.RouteProposal{
		RouteType: RouteTypeToColumbia,
		From:      Campus,
		To:        "Flushing, Queens",
		Schedule: types.Schedule{
			Days:        []string{"monday", "friday"},
			MorningTime: "08:00",
			EveningTime: "18:30",
		},
		EstimatedCost: 150,
		ContactInfo:   "ada@columbia.edu",
	}
}

func TestValidateProposalAccepts(t *testing.T) {
	if errs := ValidateProposal(validProposal()); !errs.Valid() {
		t.Fatalf("valid proposal rejected: %v", errs)
	}
}

func TestValidateProposalToColumbiaRequiresDestination(t *testing.T) {
	p := validProposal()
	p.To = "  "
	errs := ValidateProposal(p)
	if errs.Valid() || errs["to"] == "" {
		t.Fatalf("missing destination not flagged: %v", errs)
	}
}

func TestValidateProposalFromHomeRequiresOrigin(t *testing.T) {
	p := validProposal()
	p.RouteType = RouteTypeFromHome
	p.From = ""
	p.To = Campus
	errs := ValidateProposal(p)
	if errs["from"] == "" {
		t.Fatalf("missing origin not flagged: %v", errs)
	}
}

func TestValidateProposalCostAndDays(t *testing.T) {
	p := validProposal()
	p.EstimatedCost = 0
	p.Schedule.Days = nil
	errs := ValidateProposal(p)
	if errs["estimatedCost"] == "" {
		t.Fatalf("zero cost not flagged: %v", errs)
	}
	if errs["days"] == "" {
		t.Fatalf("empty days not flagged: %v", errs)
	}
}

func TestValidateProfile(t *testing.T) {
	errs := ValidateProfile(types.User{FirstName: "Ada"})
	if errs["lastName"] == "" || errs["homeArea"] == "" {
		t.Fatalf("missing profile fields not flagged: %v", errs)
	}
	if errs["firstName"] != "" {
		t.Fatalf("present field flagged: %v", errs)
	}
}

func TestValidateLogin(t *testing.T) {
	if errs := ValidateLogin("ada@columbia.edu", "pw"); !errs.Valid() {
		t.Fatalf("valid login rejected: %v", errs)
	}
	if errs := ValidateLogin("not-an-email", "pw"); errs["email"] == "" {
		t.Fatalf("bad email not flagged: %v", errs)
	}
	if errs := ValidateLogin("ada@columbia.edu", ""); errs["password"] == "" {
		t.Fatalf("empty password not flagged: %v", errs)
	}
}

func TestErrorsFirstStable(t *testing.T) {
	errs := Errors{"days": "Please select at least one day", "to": "Destination is required"}
	if got := errs.First(); got != "Destination is required" {
		t.Fatalf("unexpected first error: %q", got)
	}
}
