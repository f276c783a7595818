package review

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/zen-systems/gradeflow/pkg/scoring"
)

// Free-text agents return prose; scores are pulled out with lightweight
// pattern matching rather than structured decoding. Patterns are tried in
// order of preference.
var scorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+(?:\.\d+)?)\s*/\s*4`),
	regexp.MustCompile(`(?i)score\D{0,20}?(\d+(?:\.\d+)?)`),
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s+out\s+of\s+4`),
}

// ExtractScores pulls criterion scores from agent feedback. A structured
// JSON object embedded in the feedback wins when present; otherwise the
// first regex match yields a single score keyed by the agent's id. Values
// are rounded to the nearest 0.5 and discarded outside [1.0, 4.0].
func ExtractScores(agentID, feedback string) map[string]float64 {
	scores := make(map[string]float64)

	if obj, err := scoring.ExtractJSON(feedback); err == nil {
		if fromJSON := scoresFromJSON(obj); len(fromJSON) > 0 {
			return fromJSON
		}
	}

	for _, pattern := range scorePatterns {
		match := pattern.FindStringSubmatch(feedback)
		if match == nil {
			continue
		}
		value, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}
		value = RoundHalf(value)
		if value < 1.0 || value > 4.0 {
			continue
		}
		scores[agentID+"_score"] = value
		break
	}

	return scores
}

// scoresFromJSON reads a {criterion: {score: n, ...}} object, keeping only
// in-range numeric scores.
func scoresFromJSON(obj string) map[string]float64 {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(scoring.RepairEscapes(obj)), &payload); err != nil {
		return nil
	}

	scores := make(map[string]float64)
	for criterion, raw := range payload {
		var entry struct {
			Score *float64 `json:"score"`
		}
		if err := json.Unmarshal(raw, &entry); err != nil || entry.Score == nil {
			continue
		}
		if *entry.Score < 1.0 || *entry.Score > 4.0 {
			continue
		}
		scores[criterion] = *entry.Score
	}
	return scores
}

// RoundHalf rounds to the nearest 0.5 increment.
func RoundHalf(v float64) float64 {
	return math.Round(v*2) / 2
}

var bulletPrefixes = []string{"•", "-", "*", "1.", "2.", "3.", "4.", "5.", "6.", "7.", "8.", "9."}

// ExtractActionItems collects bulleted or numbered lines from feedback.
// Very short fragments are noise, not action items.
func ExtractActionItems(feedback string) []string {
	var items []string
	for _, line := range strings.Split(feedback, "\n") {
		line = strings.TrimSpace(line)
		if !hasBulletPrefix(line) {
			continue
		}
		cleaned := strings.TrimLeft(line, "•-*0123456789. ")
		if len(cleaned) > 10 {
			items = append(items, cleaned)
		}
	}
	return items
}

func hasBulletPrefix(line string) bool {
	for _, prefix := range bulletPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// DedupeActionItems removes exact-text repeats while preserving first-seen
// order, capped at top n (n <= 0 means no cap).
func DedupeActionItems(items []string, n int) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, item := range items {
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
		if n > 0 && len(out) == n {
			break
		}
	}
	return out
}
