package scoring

import "sort"

// SectionScore is the derived weighted score for one evaluation type.
type SectionScore struct {
	Section       string  `json:"section"`
	Score         float64 `json:"score"`          // weighted mean on the 1-4 scale
	WeightedScore float64 `json:"weighted_score"` // numerator: sum of score*weight over scored units
	WeightSum     float64 `json:"weight_sum"`     // denominator: sum of weights over scored units
}

// Summary is the final aggregation output: per-section scores, the overall
// weighted score, and its label.
type Summary struct {
	Sections map[string]SectionScore `json:"sections"`
	Overall  float64                 `json:"overall"`
	Label    string                  `json:"label"`
}

// Aggregate reduces unit results into section scores and an overall score.
// It is a pure function of its inputs: re-running it over persisted results
// reproduces the summary byte for byte.
//
// Units with a nil score are excluded from both numerator and denominator.
// Exclusion keeps partial results statistically meaningful; zeroing would
// penalize a whole section for one oracle outage. A section whose every unit
// failed degrades to 0.0. The overall score weights each section by its
// type weight, counting only sections that scored at least one unit.
func Aggregate(results []UnitResult, typeWeights map[string]float64) Summary {
	sections := make(map[string]SectionScore)

	for _, result := range results {
		section := sections[result.Unit.Type]
		section.Section = result.Unit.Type
		if result.Scored() {
			section.WeightedScore += *result.Score * result.Unit.Weight
			section.WeightSum += result.Unit.Weight
		}
		sections[result.Unit.Type] = section
	}

	for name, section := range sections {
		if section.WeightSum > 0 {
			section.Score = section.WeightedScore / section.WeightSum
		}
		sections[name] = section
	}

	var overallSum, overallWeight float64
	for name, section := range sections {
		if section.WeightSum <= 0 {
			continue
		}
		w := typeWeights[name]
		overallSum += section.Score * w
		overallWeight += w
	}

	overall := 0.0
	if overallWeight > 0 {
		overall = overallSum / overallWeight
	}

	return Summary{
		Sections: sections,
		Overall:  overall,
		Label:    Label(overall),
	}
}

// Label maps a 1-4 score onto its rubric level. Bounds are
// lower-inclusive and the ranges cover the whole scale.
func Label(score float64) string {
	switch {
	case score < 2.0:
		return "unsatisfactory"
	case score < 3.0:
		return "marginal"
	case score < 3.5:
		return "satisfactory"
	default:
		return "superior"
	}
}

// SectionNames returns the summary's section names in sorted order, for
// deterministic report output.
func (s Summary) SectionNames() []string {
	names := make([]string, 0, len(s.Sections))
	for name := range s.Sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
