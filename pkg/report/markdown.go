package report

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/zen-systems/gradeflow/pkg/scoring"
)

// Evaluation is everything the markdown report needs about one grading run.
type Evaluation struct {
	ProposalName string
	OracleName   string
	Model        string
	Results      []scoring.UnitResult
	Summary      scoring.Summary
	Started      time.Time
	Finished     time.Time
}

// RenderMarkdown renders the full evaluation report.
func RenderMarkdown(eval Evaluation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Evaluation Report: %s\n\n", eval.ProposalName)
	fmt.Fprintf(&b, "Graded %s with %s/%s", eval.Finished.Format("2006-01-02 15:04"), eval.OracleName, eval.Model)
	if !eval.Started.IsZero() {
		fmt.Fprintf(&b, " in %s", eval.Finished.Sub(eval.Started).Round(time.Second))
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "## Overall: %.2f/4 (%s)\n\n", eval.Summary.Overall, eval.Summary.Label)

	b.WriteString("| Section | Score | Weight | Rating |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, name := range eval.Summary.SectionNames() {
		section := eval.Summary.Sections[name]
		fmt.Fprintf(&b, "| %s | %.2f | %.0f%% | %s |\n",
			name, section.Score, section.WeightSum*100, scoring.Label(section.Score))
	}
	b.WriteString("\n")

	for _, name := range eval.Summary.SectionNames() {
		fmt.Fprintf(&b, "## %s\n\n", name)
		for _, result := range eval.Results {
			if result.Unit.Type != name {
				continue
			}
			writeUnit(&b, result)
		}
	}

	if unscored := countUnscored(eval.Results); unscored > 0 {
		fmt.Fprintf(&b, "## Caveats\n\n%d of %d criteria could not be scored and are excluded from the averages above.\n",
			unscored, len(eval.Results))
	}

	return b.String()
}

// SaveMarkdown writes the rendered report to path.
func SaveMarkdown(path string, eval Evaluation) error {
	if err := os.WriteFile(path, []byte(RenderMarkdown(eval)), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func writeUnit(b *strings.Builder, result scoring.UnitResult) {
	fmt.Fprintf(b, "### %s / %s", result.Unit.Category, result.Unit.SubCategory)
	if result.Scored() {
		fmt.Fprintf(b, " — %.1f/4\n\n", *result.Score)
	} else {
		b.WriteString(" — not scored\n\n")
	}
	if result.Evidence != "" {
		fmt.Fprintf(b, "**Evidence**: %s\n\n", result.Evidence)
	}
	if result.Reasoning != "" {
		fmt.Fprintf(b, "**Reasoning**: %s\n\n", result.Reasoning)
	}
	if result.Improvements != "" {
		fmt.Fprintf(b, "**Improvements**: %s\n\n", result.Improvements)
	}
}

func countUnscored(results []scoring.UnitResult) int {
	n := 0
	for _, result := range results {
		if !result.Scored() {
			n++
		}
	}
	return n
}
