package rubric

// Build turns flat rubric rows plus the criteria description table into the
// weighted three-level tree. Descriptions are keyed by UnitKey; a criterion
// without a description gets an empty string.
//
// Category weight is split equally across that category's distinct
// sub-categories. Rows disagreeing on a category weight let the last-seen
// value win, matching the source tables where the weight is repeated per row.
func Build(rows []Row, descriptions map[string]string) *Rubric {
	// First pass: count distinct sub-categories per (type, category).
	subcats := make(map[string]map[string]struct{})
	for _, row := range rows {
		key := row.Type + "|" + row.Category
		if subcats[key] == nil {
			subcats[key] = make(map[string]struct{})
		}
		subcats[key][row.SubCategory] = struct{}{}
	}

	r := &Rubric{
		Metadata: Metadata{
			Version:     "1.0",
			Description: "Proposal evaluation rubric",
			TotalWeight: 100,
		},
		Types: make(map[string]*TypeNode),
	}

	for _, row := range rows {
		typeNode, ok := r.Types[row.Type]
		if !ok {
			typeNode = &TypeNode{
				Weight:     row.TypeWeight,
				Categories: make(map[string]*Category),
			}
			r.Types[row.Type] = typeNode
			r.order = append(r.order, row.Type)
		}

		category, ok := typeNode.Categories[row.Category]
		if !ok {
			category = &Category{
				Weight:        row.CategoryWeight,
				SubCategories: make(map[string]*SubCategory),
			}
			typeNode.Categories[row.Category] = category
			typeNode.order = append(typeNode.order, row.Category)
		} else {
			category.Weight = row.CategoryWeight
		}

		n := len(subcats[row.Type+"|"+row.Category])
		subcatWeight := row.CategoryWeight
		if n > 0 {
			subcatWeight = row.CategoryWeight / float64(n)
		}

		if _, ok := category.SubCategories[row.SubCategory]; !ok {
			category.order = append(category.order, row.SubCategory)
		}
		category.SubCategories[row.SubCategory] = &SubCategory{
			Description: descriptions[UnitKey(row.Type, row.Category, row.SubCategory)],
			Scoring:     row.Scoring,
			Weight:      subcatWeight,
		}
	}

	return r
}
