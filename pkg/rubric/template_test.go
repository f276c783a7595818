package rubric

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	out := Render("score {section_text} at {weight}%", map[string]string{
		"section_text": "the proposal",
		"weight":       "50.00",
	})
	if out != "score the proposal at 50.00%" {
		t.Errorf("Render = %q", out)
	}
}

func TestRenderLeavesUnknownSlots(t *testing.T) {
	out := Render("text {missing} here", map[string]string{"other": "x"})
	if out != "text {missing} here" {
		t.Errorf("Render = %q, unknown slot must survive", out)
	}
}

func TestGenerateTemplates(t *testing.T) {
	r := Build(testRows(), nil)
	templates := GenerateTemplates(r)

	if len(templates) != 5 {
		t.Fatalf("got %d templates, want 5", len(templates))
	}
	tmpl, ok := templates["RISK_SCHEDULE"]
	if !ok {
		t.Fatalf("no RISK_SCHEDULE template; have %v", keysOf(templates))
	}
	if !strings.Contains(tmpl, "{section_text}") {
		t.Error("template lacks the {section_text} slot")
	}
	if !strings.Contains(tmpl, "50.00%") {
		t.Error("template does not show the split weight")
	}
	if !strings.Contains(tmpl, "detailed plan") {
		t.Error("template does not carry the scoring levels")
	}
}

func TestTemplateForUnit(t *testing.T) {
	unit := ScoringUnit{
		Type:        "Technical",
		Category:    "Risk",
		SubCategory: "Schedule",
		Weight:      0.5,
		Scoring:     ScoringLevels{Superior: "detailed plan"},
	}
	tmpl := TemplateForUnit(unit)
	if !strings.Contains(tmpl, "50.00%") {
		t.Error("synthesized template does not restate weight as a percentage")
	}
	if !strings.Contains(tmpl, "{section_text}") {
		t.Error("synthesized template lacks the {section_text} slot")
	}
}

func TestSaveAndLoadTemplates(t *testing.T) {
	dir := t.TempDir()
	in := Templates{
		"RISK_SCHEDULE":      "schedule template",
		"MARKET_COMPETITION": "competition template",
	}

	if err := SaveTemplates(in, dir); err != nil {
		t.Fatalf("SaveTemplates failed: %v", err)
	}
	out, err := LoadTemplates(dir)
	if err != nil {
		t.Fatalf("LoadTemplates failed: %v", err)
	}

	if len(out) != len(in) {
		t.Fatalf("got %d templates, want %d", len(out), len(in))
	}
	for code, want := range in {
		if out[code] != want {
			t.Errorf("template %s = %q, want %q", code, out[code], want)
		}
	}
}

func keysOf(templates Templates) []string {
	keys := make([]string, 0, len(templates))
	for k := range templates {
		keys = append(keys, k)
	}
	return keys
}
