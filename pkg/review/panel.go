package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/zen-systems/gradeflow/pkg/oracle"
	"github.com/zen-systems/gradeflow/pkg/rubric"
	"github.com/zen-systems/gradeflow/pkg/scoring"
)

// PanelScorerID is the structured-scoring agent's id.
const PanelScorerID = "panel_scorer"

// PanelScorer is the structured reviewer: it runs every rubric unit through
// the concurrent scheduler and aggregates the results, instead of producing
// free-text critique.
type PanelScorer struct {
	oracle       oracle.Oracle
	model        string
	cfg          scoring.Config
	tokenBudget  int
	templates    rubric.Templates
	sectionTexts map[string]string
	logger       func(format string, args ...any)
	onResult     func(scoring.UnitResult)
}

// PanelOption configures a PanelScorer.
type PanelOption func(*PanelScorer)

// WithPanelTemplates supplies prompt templates loaded from disk; units with
// no template get one synthesized from the rubric.
func WithPanelTemplates(templates rubric.Templates) PanelOption {
	return func(p *PanelScorer) {
		p.templates = templates
	}
}

// WithSectionTexts supplies per-evaluation-type document text for the
// scoring prompts. Without it the panel scores against the main proposal
// text alone.
func WithSectionTexts(sections map[string]string) PanelOption {
	return func(p *PanelScorer) {
		p.sectionTexts = sections
	}
}

// WithPanelLogger sets a custom logger.
func WithPanelLogger(logger func(format string, args ...any)) PanelOption {
	return func(p *PanelScorer) {
		p.logger = logger
	}
}

// WithPanelResultHook forwards each unit's terminal result as it completes.
func WithPanelResultHook(hook func(scoring.UnitResult)) PanelOption {
	return func(p *PanelScorer) {
		p.onResult = hook
	}
}

// WithPanelTokenBudget caps per-prompt section text at n tokens.
func WithPanelTokenBudget(n int) PanelOption {
	return func(p *PanelScorer) {
		p.tokenBudget = n
	}
}

// NewPanelScorer creates the panel scorer agent.
func NewPanelScorer(o oracle.Oracle, model string, cfg scoring.Config, opts ...PanelOption) *PanelScorer {
	p := &PanelScorer{
		oracle: o,
		model:  model,
		cfg:    cfg,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ID returns the panel scorer's agent id.
func (p *PanelScorer) ID() string {
	return PanelScorerID
}

// Review scores every rubric unit and returns the aggregated scorecard as
// this agent's output. Scores are keyed by criterion code, with the section
// and overall scores alongside.
func (p *PanelScorer) Review(ctx context.Context, state *ReviewState) (AgentOutput, error) {
	if len(state.Units) == 0 {
		return AgentOutput{}, fmt.Errorf("panel scorer: no scoring units")
	}

	sections := p.sectionTexts
	if sections == nil {
		sections = map[string]string{}
	}

	var promptOpts []scoring.PromptOption
	if p.tokenBudget > 0 {
		promptOpts = append(promptOpts, scoring.WithTokenBudget(p.tokenBudget))
	}
	prompts := scoring.NewPromptBuilder(p.templates, sections, state.ProposalText, promptOpts...)

	var schedOpts []scoring.SchedulerOption
	if p.logger != nil {
		schedOpts = append(schedOpts, scoring.WithLogger(p.logger))
	}
	if p.onResult != nil {
		schedOpts = append(schedOpts, scoring.WithResultHook(p.onResult))
	}
	scheduler := scoring.NewScheduler(p.oracle, p.model, prompts, p.cfg, schedOpts...)

	results := scheduler.Run(ctx, state.Units)
	summary := scoring.Aggregate(results, rubric.TypeWeights(state.Rubric))

	scores := make(map[string]float64, len(results)+len(summary.Sections)+1)
	for _, result := range results {
		if result.Scored() {
			scores[result.Unit.Code()] = *result.Score
		}
	}
	for _, name := range summary.SectionNames() {
		scores[name+"_section"] = summary.Sections[name].Score
	}
	scores["overall"] = summary.Overall

	return AgentOutput{
		AgentID:      PanelScorerID,
		Feedback:     panelFeedback(summary, results),
		Scores:       scores,
		ActionItems:  panelActionItems(results),
		Confidence:   0.8,
		PanelSummary: &summary,
	}, nil
}

func panelFeedback(summary scoring.Summary, results []scoring.UnitResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Overall score: %.2f/4 (%s)\n\n", summary.Overall, summary.Label)
	for _, name := range summary.SectionNames() {
		section := summary.Sections[name]
		fmt.Fprintf(&b, "%s: %.2f/4 (%s)\n", name, section.Score, scoring.Label(section.Score))
	}
	b.WriteString("\n")
	for _, result := range results {
		if result.Scored() {
			fmt.Fprintf(&b, "- %s / %s: %.1f — %s\n", result.Unit.Category, result.Unit.SubCategory, *result.Score, result.Reasoning)
		} else {
			fmt.Fprintf(&b, "- %s / %s: could not score (%s)\n", result.Unit.Category, result.Unit.SubCategory, result.Reasoning)
		}
	}
	return b.String()
}

// panelActionItems surfaces the improvement suggestions the oracle attached
// to individual criteria.
func panelActionItems(results []scoring.UnitResult) []string {
	var items []string
	for _, result := range results {
		improvement := strings.TrimSpace(result.Improvements)
		if improvement == "" {
			continue
		}
		items = append(items, fmt.Sprintf("%s / %s: %s", result.Unit.Category, result.Unit.SubCategory, improvement))
	}
	return items
}
