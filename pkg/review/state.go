package review

import (
	"github.com/zen-systems/gradeflow/pkg/document"
	"github.com/zen-systems/gradeflow/pkg/rubric"
	"github.com/zen-systems/gradeflow/pkg/scoring"
)

// AgentOutput is one reviewer's complete contribution to a run. An agent
// whose task failed still produces an output: an error payload with zero
// confidence, so aggregation of the remaining agents is never blocked.
// PanelSummary is set only by structured scoring agents; the reducer lifts
// it onto the run state after the join barrier.
type AgentOutput struct {
	AgentID      string             `json:"agent_id"`
	Feedback     string             `json:"feedback"`
	Scores       map[string]float64 `json:"scores"`
	ActionItems  []string           `json:"action_items"`
	Confidence   float64            `json:"confidence"`
	PanelSummary *scoring.Summary   `json:"-"`
}

// ReviewState is the run-scoped aggregate for one multi-agent review. The
// document and rubric fields are read-only once the run starts; the output
// fields are written only by the single-threaded reducer after the join
// barrier, never by the agent tasks themselves.
type ReviewState struct {
	ProposalText     string
	SupportingDocs   []*document.Document
	Rubric           *rubric.Rubric
	Units            []rubric.ScoringUnit
	SolicitationText string

	// Filled by the coordinator's reducer.
	Outputs            map[string]AgentOutput
	ConsolidatedScores map[string]float64
	ActionItems        []string
	PanelSummary       *scoring.Summary
	Summary            string
}

// NewReviewState builds the read-only input state for a review run.
func NewReviewState(proposalText string, supporting []*document.Document, r *rubric.Rubric, units []rubric.ScoringUnit, solicitation string) *ReviewState {
	return &ReviewState{
		ProposalText:     proposalText,
		SupportingDocs:   supporting,
		Rubric:           r,
		Units:            units,
		SolicitationText: solicitation,
	}
}

// Complete reports whether every listed agent has an output slot populated.
func (s *ReviewState) Complete(agentIDs []string) bool {
	for _, id := range agentIDs {
		if _, ok := s.Outputs[id]; !ok {
			return false
		}
	}
	return true
}
