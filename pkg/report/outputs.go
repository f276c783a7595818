package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/zen-systems/gradeflow/pkg/review"
)

// Scorecard is the machine-readable result of a review run.
type Scorecard struct {
	ProposalName string                        `json:"proposal_name"`
	GeneratedAt  time.Time                     `json:"generated_at"`
	Overall      *float64                      `json:"overall,omitempty"`
	OverallLabel string                        `json:"overall_label,omitempty"`
	Scores       map[string]float64            `json:"scores"`
	Agents       map[string]review.AgentOutput `json:"agents"`
	ActionItems  []string                      `json:"action_items"`
}

// BuildScorecard assembles the scorecard from a completed review state.
func BuildScorecard(proposalName string, state *review.ReviewState) Scorecard {
	card := Scorecard{
		ProposalName: proposalName,
		GeneratedAt:  time.Now().UTC(),
		Scores:       state.ConsolidatedScores,
		Agents:       state.Outputs,
		ActionItems:  state.ActionItems,
	}
	if state.PanelSummary != nil {
		overall := state.PanelSummary.Overall
		card.Overall = &overall
		card.OverallLabel = state.PanelSummary.Label
	}
	return card
}

// SaveReviewOutputs writes every artifact of a review run into dir:
// scorecard.json, review_summary.md, action_items.md and one feedback file
// per agent.
func SaveReviewOutputs(dir, proposalName string, state *review.ReviewState) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	card := BuildScorecard(proposalName, state)
	data, err := json.MarshalIndent(card, "", "  ")
	if err != nil {
		return fmt.Errorf("encode scorecard: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "scorecard.json"), data, 0o644); err != nil {
		return fmt.Errorf("write scorecard: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "review_summary.md"), []byte(state.Summary), 0o644); err != nil {
		return fmt.Errorf("write review summary: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "action_items.md"), []byte(renderActionItems(state.ActionItems)), 0o644); err != nil {
		return fmt.Errorf("write action items: %w", err)
	}

	ids := make([]string, 0, len(state.Outputs))
	for id := range state.Outputs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		name := fmt.Sprintf("feedback_%s.md", id)
		if err := os.WriteFile(filepath.Join(dir, name), []byte(renderFeedback(state.Outputs[id])), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

func renderActionItems(items []string) string {
	var b strings.Builder
	b.WriteString("# Action Items\n\n")
	if len(items) == 0 {
		b.WriteString("None.\n")
		return b.String()
	}
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}
	return b.String()
}

func renderFeedback(output review.AgentOutput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", output.AgentID)
	fmt.Fprintf(&b, "Confidence: %.1f\n\n", output.Confidence)
	b.WriteString(output.Feedback)
	b.WriteString("\n")

	if len(output.Scores) > 0 {
		b.WriteString("\n## Scores\n\n")
		keys := make([]string, 0, len(output.Scores))
		for key := range output.Scores {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(&b, "- %s: %g\n", key, output.Scores[key])
		}
	}
	return b.String()
}
