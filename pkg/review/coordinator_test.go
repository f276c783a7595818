package review

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/zen-systems/gradeflow/pkg/scoring"
)

// stubAgent is a canned-output reviewer for coordinator tests.
type stubAgent struct {
	id     string
	output AgentOutput
	err    error
}

func (a *stubAgent) ID() string { return a.id }

func (a *stubAgent) Review(ctx context.Context, state *ReviewState) (AgentOutput, error) {
	if a.err != nil {
		return AgentOutput{}, a.err
	}
	return a.output, nil
}

func stub(id string, scores map[string]float64, items ...string) *stubAgent {
	return &stubAgent{id: id, output: AgentOutput{
		AgentID:     id,
		Feedback:    "feedback from " + id,
		Scores:      scores,
		ActionItems: items,
		Confidence:  0.8,
	}}
}

func TestCoordinatorRequiresAgents(t *testing.T) {
	if _, err := NewCoordinator(nil); err == nil {
		t.Fatal("expected error for empty agent list")
	}
}

func TestCoordinatorRejectsDuplicateIDs(t *testing.T) {
	_, err := NewCoordinator([]Agent{stub("a", nil), stub("a", nil)})
	if err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestCoordinatorRequiresProposalText(t *testing.T) {
	c, err := NewCoordinator([]Agent{stub("a", nil)})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Run(context.Background(), &ReviewState{}); err == nil {
		t.Fatal("expected error for empty proposal text")
	}
}

func TestCoordinatorMergesOutputs(t *testing.T) {
	agents := []Agent{
		stub("tech_lead", map[string]float64{"tech_lead_score": 3.0}, "add milestones"),
		stub("storyteller", map[string]float64{"storyteller_score": 3.5}, "clarify the summary", "add milestones"),
	}
	c, err := NewCoordinator(agents, WithCoordinatorLogger(func(string, ...any) {}))
	if err != nil {
		t.Fatal(err)
	}

	state := NewReviewState("proposal text", nil, nil, nil, "")
	if err := c.Run(context.Background(), state); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !state.Complete(c.AgentIDs()) {
		t.Error("state is not complete after the run")
	}
	if state.ConsolidatedScores["tech_lead_score"] != 3.0 ||
		state.ConsolidatedScores["storyteller_score"] != 3.5 {
		t.Errorf("consolidated scores = %v", state.ConsolidatedScores)
	}
	wantItems := []string{"add milestones", "clarify the summary"}
	if len(state.ActionItems) != 2 || state.ActionItems[0] != wantItems[0] || state.ActionItems[1] != wantItems[1] {
		t.Errorf("action items = %v, want %v", state.ActionItems, wantItems)
	}
	if !strings.Contains(state.Summary, "Tech Lead") {
		t.Errorf("summary missing agent section:\n%s", state.Summary)
	}
}

func TestCoordinatorIsolatesAgentFailures(t *testing.T) {
	agents := []Agent{
		stub("tech_lead", map[string]float64{"tech_lead_score": 3.0}),
		&stubAgent{id: "detail_checker", err: fmt.Errorf("model unavailable")},
	}
	c, err := NewCoordinator(agents, WithCoordinatorLogger(func(string, ...any) {}))
	if err != nil {
		t.Fatal(err)
	}

	state := NewReviewState("proposal text", nil, nil, nil, "")
	if err := c.Run(context.Background(), state); err != nil {
		t.Fatalf("Run must not propagate agent errors: %v", err)
	}

	failed := state.Outputs["detail_checker"]
	if !strings.HasPrefix(failed.Feedback, "Error:") {
		t.Errorf("failed agent feedback = %q", failed.Feedback)
	}
	if failed.Confidence != 0.0 {
		t.Errorf("failed agent confidence = %v, want 0.0", failed.Confidence)
	}
	if len(failed.Scores) != 0 || len(failed.ActionItems) != 0 {
		t.Errorf("failed agent output carries data: %+v", failed)
	}

	// The healthy agent's contribution still aggregates.
	if state.ConsolidatedScores["tech_lead_score"] != 3.0 {
		t.Errorf("consolidated scores = %v", state.ConsolidatedScores)
	}
}

func TestCoordinatorScoreUnionLastWriterWins(t *testing.T) {
	agents := []Agent{
		stub("first", map[string]float64{"overall": 2.0}),
		stub("second", map[string]float64{"overall": 3.5}),
	}
	c, err := NewCoordinator(agents, WithCoordinatorLogger(func(string, ...any) {}))
	if err != nil {
		t.Fatal(err)
	}

	state := NewReviewState("proposal text", nil, nil, nil, "")
	if err := c.Run(context.Background(), state); err != nil {
		t.Fatal(err)
	}

	if state.ConsolidatedScores["overall"] != 3.5 {
		t.Errorf("overall = %v, want last writer 3.5", state.ConsolidatedScores["overall"])
	}
	// Both originals survive in the per-agent outputs.
	if state.Outputs["first"].Scores["overall"] != 2.0 {
		t.Errorf("first agent's score lost: %v", state.Outputs["first"].Scores)
	}
}

func TestCoordinatorLiftsPanelSummary(t *testing.T) {
	summary := scoring.Summary{Overall: 3.2, Label: "satisfactory"}
	scorer := &stubAgent{id: "panel_scorer", output: AgentOutput{
		AgentID:      "panel_scorer",
		Feedback:     "scorecard",
		Scores:       map[string]float64{"overall": 3.2},
		Confidence:   0.8,
		PanelSummary: &summary,
	}}
	agents := []Agent{stub("tech_lead", map[string]float64{"tech_lead_score": 3.0}), scorer}
	c, err := NewCoordinator(agents, WithCoordinatorLogger(func(string, ...any) {}))
	if err != nil {
		t.Fatal(err)
	}

	state := NewReviewState("proposal text", nil, nil, nil, "")
	if err := c.Run(context.Background(), state); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if state.PanelSummary == nil {
		t.Fatal("reducer did not lift the panel summary onto the state")
	}
	if state.PanelSummary.Label != "satisfactory" || state.PanelSummary.Overall != 3.2 {
		t.Errorf("lifted summary = %+v", state.PanelSummary)
	}
}

func TestCoordinatorCapsActionItems(t *testing.T) {
	var items []string
	for i := 0; i < 20; i++ {
		items = append(items, fmt.Sprintf("action item number %d", i))
	}
	agents := []Agent{stub("tech_lead", nil, items...)}
	c, err := NewCoordinator(agents,
		WithTopActionItems(5),
		WithCoordinatorLogger(func(string, ...any) {}))
	if err != nil {
		t.Fatal(err)
	}

	state := NewReviewState("proposal text", nil, nil, nil, "")
	if err := c.Run(context.Background(), state); err != nil {
		t.Fatal(err)
	}
	if len(state.ActionItems) != 5 {
		t.Errorf("got %d action items, want 5", len(state.ActionItems))
	}
	if state.ActionItems[0] != "action item number 0" {
		t.Errorf("cap did not keep first-seen order: %v", state.ActionItems)
	}
}

func TestCoordinatorCancelledContext(t *testing.T) {
	c, err := NewCoordinator([]Agent{stub("tech_lead", nil)},
		WithCoordinatorLogger(func(string, ...any) {}))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state := NewReviewState("proposal text", nil, nil, nil, "")
	if err := c.Run(ctx, state); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	// An aborted run leaves the state untouched: no partial merges.
	if state.Outputs != nil || state.PanelSummary != nil {
		t.Errorf("aborted run mutated state: %+v", state)
	}
}
