package review

import (
	"fmt"
	"sort"
	"strings"
)

// buildSummary renders the consolidated markdown summary of a review run.
// Agents appear in fan-out order; consolidated scores are sorted by key so
// the summary is reproducible from the same outputs.
func buildSummary(agentIDs []string, state *ReviewState) string {
	var b strings.Builder
	b.WriteString("# Multi-Agent Review Summary\n\n")

	for _, id := range agentIDs {
		output, ok := state.Outputs[id]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", titleCase(id))
		b.WriteString(output.Feedback)
		b.WriteString("\n\n")

		if len(output.Scores) > 0 {
			b.WriteString("**Scores:**\n")
			for _, criterion := range sortedScoreKeys(output.Scores) {
				fmt.Fprintf(&b, "- %s: %g\n", criterion, output.Scores[criterion])
			}
			b.WriteString("\n")
		}
	}

	if len(state.ConsolidatedScores) > 0 {
		b.WriteString("## Consolidated Scores\n\n")
		for _, criterion := range sortedScoreKeys(state.ConsolidatedScores) {
			fmt.Fprintf(&b, "- **%s**: %g\n", criterion, state.ConsolidatedScores[criterion])
		}
		b.WriteString("\n")
	}

	if len(state.ActionItems) > 0 {
		b.WriteString("## Action Items\n\n")
		for i, item := range state.ActionItems {
			fmt.Fprintf(&b, "%d. %s\n", i+1, item)
		}
	}

	return b.String()
}

func sortedScoreKeys(scores map[string]float64) []string {
	keys := make([]string, 0, len(scores))
	for key := range scores {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func titleCase(id string) string {
	words := strings.Split(strings.ReplaceAll(id, "_", " "), " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
