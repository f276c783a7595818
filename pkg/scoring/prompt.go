package scoring

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/zen-systems/gradeflow/pkg/rubric"
)

const defaultTokenBudget = 3000

// PromptBuilder renders the scoring prompt for one unit: the criterion's
// template plus the proposal text relevant to its evaluation type, truncated
// to a token budget so the full bundle never blows the model's context.
type PromptBuilder struct {
	templates   rubric.Templates
	sections    map[string]string // lower-cased type name -> document text
	fallback    string            // used when a type has no matching document
	tokenBudget int
	encoder     *tiktoken.Tiktoken
}

// PromptOption configures a PromptBuilder.
type PromptOption func(*PromptBuilder)

// WithTokenBudget caps the section text at n tokens.
func WithTokenBudget(n int) PromptOption {
	return func(p *PromptBuilder) {
		p.tokenBudget = n
	}
}

// NewPromptBuilder creates a prompt builder over the given templates and
// per-type document sections. The fallback text is used for evaluation
// types with no matching document, mirroring how technical text backs any
// unmapped section.
func NewPromptBuilder(templates rubric.Templates, sections map[string]string, fallback string, opts ...PromptOption) *PromptBuilder {
	p := &PromptBuilder{
		templates:   templates,
		sections:    make(map[string]string, len(sections)),
		fallback:    fallback,
		tokenBudget: defaultTokenBudget,
	}
	for name, text := range sections {
		p.sections[strings.ToLower(name)] = text
	}
	for _, opt := range opts {
		opt(p)
	}

	// Encoder load needs the BPE tables; fall back to rune truncation
	// when they are unavailable (offline runs).
	if enc, err := tiktoken.GetEncoding("cl100k_base"); err == nil {
		p.encoder = enc
	}
	return p
}

// Build renders the scoring prompt for a unit. Units without a template on
// disk get one synthesized from the rubric leaf itself.
func (p *PromptBuilder) Build(unit rubric.ScoringUnit) string {
	template, ok := p.templates[unit.Code()]
	if !ok {
		template = rubric.TemplateForUnit(unit)
	}

	sectionText, ok := p.sections[strings.ToLower(unit.Type)]
	if !ok || sectionText == "" {
		sectionText = p.fallback
	}

	return rubric.Render(template, map[string]string{
		"section_text": p.truncate(sectionText),
		"weight":       fmt.Sprintf("%.2f", unit.Weight*100),
	})
}

func (p *PromptBuilder) truncate(text string) string {
	if p.tokenBudget <= 0 {
		return text
	}
	if p.encoder != nil {
		tokens := p.encoder.Encode(text, nil, nil)
		if len(tokens) <= p.tokenBudget {
			return text
		}
		return p.encoder.Decode(tokens[:p.tokenBudget])
	}
	runes := []rune(text)
	if len(runes) <= p.tokenBudget*4 {
		return text
	}
	return string(runes[:p.tokenBudget*4])
}
