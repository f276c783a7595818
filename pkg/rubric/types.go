package rubric

import (
	"sort"
	"strings"
)

// MetadataKey is the reserved pseudo-type key some snapshot producers place
// alongside real evaluation types. Flattening skips it.
const MetadataKey = "metadata"

// ScoringLevels holds the four 1-4 scale level definitions for one criterion.
type ScoringLevels struct {
	Unsatisfactory string `json:"unsatisfactory" yaml:"unsatisfactory"`
	Marginal       string `json:"marginal" yaml:"marginal"`
	Satisfactory   string `json:"satisfactory" yaml:"satisfactory"`
	Superior       string `json:"superior" yaml:"superior"`
}

// Metadata describes a rubric snapshot.
type Metadata struct {
	Version     string  `json:"version"`
	Description string  `json:"description"`
	TotalWeight float64 `json:"total_weight"`
}

// SubCategory is a rubric leaf: one scorable criterion.
type SubCategory struct {
	Description string        `json:"description"`
	Scoring     ScoringLevels `json:"scoring"`
	Weight      float64       `json:"weight"` // percentage of parent, 0-100
}

// Category groups sub-categories under one evaluation type.
type Category struct {
	Weight        float64                 `json:"weight"` // percentage, 0-100
	SubCategories map[string]*SubCategory `json:"sub_categories"`

	order []string
}

// TypeNode is a top-level evaluation section (e.g. Technical, Commercial).
type TypeNode struct {
	Weight     float64              `json:"weight"` // percentage, 0-100
	Categories map[string]*Category `json:"categories"`

	order []string
}

// Rubric is the weighted three-level evaluation tree. It is built once per
// solicitation and read-only afterwards.
type Rubric struct {
	Metadata Metadata             `json:"metadata"`
	Types    map[string]*TypeNode `json:"types"`

	order []string
}

// TypeNames returns type names in source insertion order when the rubric was
// built in-process, or sorted order for snapshots loaded from disk (insertion
// order is not recoverable from JSON).
func (r *Rubric) TypeNames() []string {
	if len(r.order) == len(r.Types) {
		return r.order
	}
	return sortedKeys(r.Types)
}

// CategoryNames returns category names in stable order.
func (t *TypeNode) CategoryNames() []string {
	if len(t.order) == len(t.Categories) {
		return t.order
	}
	return sortedKeys(t.Categories)
}

// SubCategoryNames returns sub-category names in stable order.
func (c *Category) SubCategoryNames() []string {
	if len(c.order) == len(c.SubCategories) {
		return c.order
	}
	return sortedKeys(c.SubCategories)
}

// UnitKey builds the identity key for one criterion. It must be unique
// within a rubric snapshot.
func UnitKey(typeName, category, subCategory string) string {
	return typeName + "|" + category + "|" + subCategory
}

// Code derives the prompt-template lookup code for a criterion:
// CATEGORY_SUBCATEGORY, upper-cased, spaces and slashes as underscores.
func Code(category, subCategory string) string {
	return codePart(category) + "_" + codePart(subCategory)
}

func codePart(s string) string {
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
