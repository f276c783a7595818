package scoring

import (
	"strings"
	"testing"

	"github.com/zen-systems/gradeflow/pkg/rubric"
)

func TestPromptBuilderRoutesSectionByType(t *testing.T) {
	templates := rubric.Templates{"RISK_SCHEDULE": "Criterion prompt.\n{section_text}"}
	sections := map[string]string{
		"Technical":  "the technical narrative",
		"Commercial": "the commercial narrative",
	}
	p := NewPromptBuilder(templates, sections, "fallback text")

	prompt := p.Build(rubric.ScoringUnit{Type: "Technical", Category: "Risk", SubCategory: "Schedule"})
	if !strings.Contains(prompt, "the technical narrative") {
		t.Errorf("prompt does not carry the technical section: %q", prompt)
	}
	if strings.Contains(prompt, "{section_text}") {
		t.Error("section slot not substituted")
	}
}

func TestPromptBuilderFallsBackWhenTypeUnmapped(t *testing.T) {
	templates := rubric.Templates{"RISK_SCHEDULE": "{section_text}"}
	p := NewPromptBuilder(templates, map[string]string{"commercial": "c"}, "main proposal text")

	prompt := p.Build(rubric.ScoringUnit{Type: "Team", Category: "Risk", SubCategory: "Schedule"})
	if !strings.Contains(prompt, "main proposal text") {
		t.Errorf("prompt does not fall back to the proposal text: %q", prompt)
	}
}

func TestPromptBuilderSynthesizesMissingTemplate(t *testing.T) {
	p := NewPromptBuilder(nil, nil, "proposal body")

	unit := rubric.ScoringUnit{
		Type:        "Technical",
		Category:    "Risk",
		SubCategory: "Schedule",
		Weight:      0.5,
		Scoring:     rubric.ScoringLevels{Superior: "detailed plan"},
	}
	prompt := p.Build(unit)
	if !strings.Contains(prompt, "proposal body") {
		t.Error("synthesized prompt lacks the section text")
	}
	if !strings.Contains(prompt, "detailed plan") {
		t.Error("synthesized prompt lacks the scoring levels")
	}
	if !strings.Contains(prompt, "50.00%") {
		t.Error("synthesized prompt lacks the criterion weight")
	}
}

func TestPromptBuilderTruncatesToBudget(t *testing.T) {
	long := strings.Repeat("schedule risk narrative ", 5000)
	p := NewPromptBuilder(rubric.Templates{"RISK_SCHEDULE": "{section_text}"},
		map[string]string{"technical": long}, "", WithTokenBudget(10))

	prompt := p.Build(rubric.ScoringUnit{Type: "Technical", Category: "Risk", SubCategory: "Schedule"})
	if len(prompt) >= len(long) {
		t.Errorf("prompt not truncated: %d bytes", len(prompt))
	}
}

func TestPromptBuilderZeroBudgetDisablesTruncation(t *testing.T) {
	long := strings.Repeat("x", 100000)
	p := NewPromptBuilder(rubric.Templates{"RISK_SCHEDULE": "{section_text}"},
		map[string]string{"technical": long}, "", WithTokenBudget(0))

	prompt := p.Build(rubric.ScoringUnit{Type: "Technical", Category: "Risk", SubCategory: "Schedule"})
	if len(prompt) < len(long) {
		t.Errorf("prompt truncated with budget disabled: %d bytes", len(prompt))
	}
}
