package rubric

import "fmt"

// ScoringUnit is one flattened rubric leaf, ready for dispatch to the
// scoring oracle. Weight is a 0-1 fraction of the parent category's weight;
// downstream arithmetic never sees percentages.
type ScoringUnit struct {
	Type        string        `json:"type"`
	Category    string        `json:"category"`
	SubCategory string        `json:"sub_category"`
	Description string        `json:"description"`
	Scoring     ScoringLevels `json:"scoring"`
	Weight      float64       `json:"weight"`
}

// Key returns the unit's identity key (type|category|sub-category).
func (u ScoringUnit) Key() string {
	return UnitKey(u.Type, u.Category, u.SubCategory)
}

// Code returns the unit's prompt-template lookup code.
func (u ScoringUnit) Code() string {
	return Code(u.Category, u.SubCategory)
}

// ValidationError reports a rubric that cannot be flattened.
type ValidationError struct {
	Key string
	Err error
}

func (e *ValidationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("rubric validation: %v (unit %s)", e.Err, e.Key)
	}
	return fmt.Sprintf("rubric validation: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Flatten walks the rubric tree into the ordered list of scoring units,
// converting percentage weights to fractions. The reserved "metadata"
// pseudo-type is skipped. Duplicate unit identities fail validation: the
// scheduler keys results by identity and a collision would silently drop
// one criterion's score.
func Flatten(r *Rubric) ([]ScoringUnit, error) {
	if r == nil {
		return nil, &ValidationError{Err: fmt.Errorf("rubric is nil")}
	}

	seen := make(map[string]struct{})
	var units []ScoringUnit

	for _, typeName := range r.TypeNames() {
		if typeName == MetadataKey {
			continue
		}
		typeNode := r.Types[typeName]
		if typeNode == nil {
			continue
		}
		for _, categoryName := range typeNode.CategoryNames() {
			category := typeNode.Categories[categoryName]
			if category == nil {
				continue
			}
			for _, subName := range category.SubCategoryNames() {
				sub := category.SubCategories[subName]
				if sub == nil {
					continue
				}
				unit := ScoringUnit{
					Type:        typeName,
					Category:    categoryName,
					SubCategory: subName,
					Description: sub.Description,
					Scoring:     sub.Scoring,
					Weight:      sub.Weight / 100.0,
				}
				if _, dup := seen[unit.Key()]; dup {
					return nil, &ValidationError{
						Key: unit.Key(),
						Err: fmt.Errorf("duplicate scoring unit identity"),
					}
				}
				seen[unit.Key()] = struct{}{}
				units = append(units, unit)
			}
		}
	}

	return units, nil
}

// TypeWeights returns the percentage weight of each evaluation type,
// excluding the reserved metadata key. The aggregator uses these to weight
// section scores into the overall score.
func TypeWeights(r *Rubric) map[string]float64 {
	weights := make(map[string]float64, len(r.Types))
	for name, typeNode := range r.Types {
		if name == MetadataKey || typeNode == nil {
			continue
		}
		weights[name] = typeNode.Weight
	}
	return weights
}
