package review

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/zen-systems/gradeflow/pkg/oracle"
)

// Agent is one reviewer persona. Review operates on read-only state and
// returns its output; it never mutates shared state, so the coordinator can
// run agents concurrently without locks.
type Agent interface {
	ID() string
	Review(ctx context.Context, state *ReviewState) (AgentOutput, error)
}

// personaSpec configures a free-text critique agent.
type personaSpec struct {
	name      string
	focus     string
	hates     string
	expertise string
	style     string
}

var personas = map[string]personaSpec{
	"tech_lead": {
		name:      "Technical Lead",
		focus:     "technical feasibility, architecture and execution risk",
		hates:     "hand-waving over hard engineering problems",
		expertise: "systems engineering, prototyping, technology readiness levels, schedule risk",
		style:     "direct and specific; every concern tied to a line of the proposal",
	},
	"business_strategist": {
		name:      "Business Strategist",
		focus:     "market opportunity, commercialization path and financial viability",
		hates:     "total-addressable-market arithmetic with no customer evidence",
		expertise: "go-to-market strategy, competitive analysis, pricing, partnership structures",
		style:     "skeptical investor; asks where the first paying customer comes from",
	},
	"detail_checker": {
		name:      "Detail Checker",
		focus:     "internal consistency, completeness and compliance with the solicitation",
		hates:     "numbers that disagree between the narrative and the budget",
		expertise: "cross-referencing documents, budget arithmetic, requirement traceability",
		style:     "methodical; lists every discrepancy found, however small",
	},
	"storyteller": {
		name:      "Storyteller",
		focus:     "clarity, narrative arc and persuasiveness of the proposal",
		hates:     "jargon walls that hide the actual idea",
		expertise: "technical writing, reviewer psychology, executive summaries",
		style:     "constructive editor; suggests concrete rewrites",
	},
}

// PersonaIDs returns the built-in free-text persona ids, sorted.
func PersonaIDs() []string {
	ids := make([]string, 0, len(personas))
	for id := range personas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Persona is a free-text critique agent: one oracle call per review, prose
// feedback, scores extracted by pattern matching.
type Persona struct {
	id     string
	spec   personaSpec
	oracle oracle.Oracle
	model  string
}

// NewPersona creates a built-in persona agent by id.
func NewPersona(id string, o oracle.Oracle, model string) (*Persona, error) {
	spec, ok := personas[id]
	if !ok {
		return nil, fmt.Errorf("unknown agent %q", id)
	}
	return &Persona{id: id, spec: spec, oracle: o, model: model}, nil
}

// ID returns the persona's agent id.
func (p *Persona) ID() string {
	return p.id
}

// Review sends the persona prompt to the oracle and extracts scores and
// action items from the prose response.
func (p *Persona) Review(ctx context.Context, state *ReviewState) (AgentOutput, error) {
	prompt := p.buildPrompt(state)

	feedback, err := p.oracle.Complete(ctx, p.model, prompt)
	if err != nil {
		return AgentOutput{}, fmt.Errorf("%s review: %w", p.id, err)
	}

	return AgentOutput{
		AgentID:     p.id,
		Feedback:    feedback,
		Scores:      ExtractScores(p.id, feedback),
		ActionItems: ExtractActionItems(feedback),
		Confidence:  0.8,
	}, nil
}

func (p *Persona) buildPrompt(state *ReviewState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s Review\n\n", p.spec.name)
	b.WriteString("## Your Role\n")
	fmt.Fprintf(&b, "**Focus**: %s\n", p.spec.focus)
	fmt.Fprintf(&b, "**What you hate**: %s\n\n", p.spec.hates)
	fmt.Fprintf(&b, "## Your Expertise\n%s\n\n", p.spec.expertise)

	if state.SolicitationText != "" {
		fmt.Fprintf(&b, "## Solicitation Context\n%s\n\n", state.SolicitationText)
	}

	if summary := criteriaSummary(state); summary != "" {
		b.WriteString(summary)
	}

	fmt.Fprintf(&b, "## Main Proposal\n%s\n\n", state.ProposalText)

	if len(state.SupportingDocs) > 0 {
		b.WriteString("## Supporting Documents\n")
		for _, doc := range state.SupportingDocs {
			fmt.Fprintf(&b, "\n--- %s ---\n%s\n", doc.FileName, doc.FullText)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Your Review\n")
	fmt.Fprintf(&b, "Review style: %s.\n\n", p.spec.style)
	b.WriteString("Provide a comprehensive review based on your role focus. ")
	b.WriteString("Be specific, actionable, and cite evidence from the documents. ")
	b.WriteString("Include an overall score from 1 to 4 (e.g. \"3.5/4\") and a bulleted list of action items.\n")
	return b.String()
}

// criteriaSummary renders the flattened rubric for the persona prompt.
func criteriaSummary(state *ReviewState) string {
	if len(state.Units) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("## Evaluation Criteria\n\n")
	for _, unit := range state.Units {
		fmt.Fprintf(&b, "**%s / %s / %s** (Weight: %.1f%%)\n", unit.Type, unit.Category, unit.SubCategory, unit.Weight*100)
		if unit.Description != "" {
			fmt.Fprintf(&b, "%s\n", unit.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}
