package review

import (
	"context"
	"strings"
	"testing"

	"github.com/zen-systems/gradeflow/pkg/oracle"
	"github.com/zen-systems/gradeflow/pkg/rubric"
)

func TestNewPersonaUnknownID(t *testing.T) {
	if _, err := NewPersona("visionary", oracle.NewMockOracle(), "mock-1"); err == nil {
		t.Fatal("expected error for unknown persona id")
	}
}

func TestPersonaIDs(t *testing.T) {
	ids := PersonaIDs()
	want := []string{"business_strategist", "detail_checker", "storyteller", "tech_lead"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v", ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestPersonaReviewExtractsScoreAndItems(t *testing.T) {
	response := `The architecture is credible but the schedule is optimistic.

Overall I rate this 3.5/4.

Action items:
- Add integration milestones to the schedule
- Name the hardware vendor dependencies`

	mock := oracle.NewMockOracleWithResponses(map[string]string{
		"Technical Lead": response,
	}, "")
	persona, err := NewPersona("tech_lead", mock, "mock-1")
	if err != nil {
		t.Fatal(err)
	}

	state := NewReviewState("proposal text", nil, nil, nil, "solicitation context")
	output, err := persona.Review(context.Background(), state)
	if err != nil {
		t.Fatalf("Review failed: %v", err)
	}

	if output.AgentID != "tech_lead" {
		t.Errorf("agent id = %q", output.AgentID)
	}
	if output.Scores["tech_lead_score"] != 3.5 {
		t.Errorf("scores = %v", output.Scores)
	}
	if len(output.ActionItems) != 2 {
		t.Errorf("action items = %v", output.ActionItems)
	}
	if output.Confidence != 0.8 {
		t.Errorf("confidence = %v", output.Confidence)
	}
}

func TestPersonaPromptCarriesContext(t *testing.T) {
	persona, err := NewPersona("business_strategist", oracle.NewMockOracle(), "mock-1")
	if err != nil {
		t.Fatal(err)
	}

	units := []rubric.ScoringUnit{{
		Type: "Commercial", Category: "Market", SubCategory: "Opportunity",
		Weight: 0.2, Description: "Size and reachability of the market.",
	}}
	state := NewReviewState("the proposal body", nil, nil, units, "solicitation topic text")

	prompt := persona.buildPrompt(state)
	for _, want := range []string{
		"Business Strategist",
		"solicitation topic text",
		"the proposal body",
		"Commercial / Market / Opportunity",
		"20.0%",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
