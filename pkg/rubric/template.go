package rubric

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Templates maps a criterion code (CATEGORY_SUBCATEGORY) to its scoring
// prompt template. Templates contain {section_text}-style substitution slots.
type Templates map[string]string

// Render substitutes {name} slots in a template. Unknown slots are left
// intact so a missing variable is visible in the rendered prompt rather
// than silently blank.
func Render(template string, vars map[string]string) string {
	out := template
	for name, value := range vars {
		out = strings.ReplaceAll(out, "{"+name+"}", value)
	}
	return out
}

// GenerateTemplates builds one scoring prompt template per rubric leaf,
// keyed by criterion code. The template asks for a JSON response with
// score, evidence and reasoning on the 1-4 scale.
func GenerateTemplates(r *Rubric) Templates {
	templates := make(Templates)
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
				code := Code(categoryName, subName)
				templates[code] = leafTemplate(categoryName, subName, sub)
			}
		}
	}
	return templates
}

// TemplateForUnit synthesizes the scoring template for one flattened unit.
// The scheduler uses it when the template directory has no file for the
// unit's code, so every criterion stays scoreable.
func TemplateForUnit(u ScoringUnit) string {
	sub := &SubCategory{
		Description: u.Description,
		Scoring:     u.Scoring,
		Weight:      u.Weight * 100,
	}
	return leafTemplate(u.Category, u.SubCategory, sub)
}

func leafTemplate(category, subCategory string, sub *SubCategory) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s - %s Evaluation\n\n", category, subCategory)
	fmt.Fprintf(&b, "**Weight**: %.2f%%\n\n", sub.Weight)
	fmt.Fprintf(&b, "**Description**: %s\n\n", sub.Description)
	b.WriteString("**Scoring Criteria (1-4 scale):**\n\n")
	fmt.Fprintf(&b, "**1 (Unsatisfactory)**: %s\n\n", sub.Scoring.Unsatisfactory)
	fmt.Fprintf(&b, "**2 (Marginal)**: %s\n\n", sub.Scoring.Marginal)
	fmt.Fprintf(&b, "**3 (Satisfactory)**: %s\n\n", sub.Scoring.Satisfactory)
	fmt.Fprintf(&b, "**4 (Superior)**: %s\n\n", sub.Scoring.Superior)
	fmt.Fprintf(&b, "**Instructions**: Evaluate the proposal's %s based on the above criteria.\n\n", strings.ToLower(subCategory))
	b.WriteString("**Proposal Text**:\n{section_text}\n\n")
	b.WriteString("**Evaluation**:\nPlease provide a JSON response with:\n")
	b.WriteString("- \"score\": score from 1 to 4, in 0.5 increments only\n")
	b.WriteString("- \"evidence\": specific evidence from the proposal text\n")
	b.WriteString("- \"reasoning\": brief explanation of the score based on the scoring criteria\n")
	b.WriteString("- \"improvements\": suggested improvements, if any\n\n")
	b.WriteString("**Response**:")
	return b.String()
}

// SaveTemplates writes each template to dir as a lower-cased <code>.md file.
func SaveTemplates(templates Templates, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for code, template := range templates {
		path := filepath.Join(dir, strings.ToLower(code)+".md")
		if err := os.WriteFile(path, []byte(template), 0644); err != nil {
			return fmt.Errorf("write template %s: %w", code, err)
		}
	}
	return nil
}

// LoadTemplates reads all *.md files in dir, keyed by upper-cased file stem.
func LoadTemplates(dir string) (Templates, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read templates dir: %w", err)
	}

	templates := make(Templates)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", entry.Name(), err)
		}
		code := strings.ToUpper(strings.TrimSuffix(entry.Name(), ".md"))
		templates[code] = string(data)
	}
	return templates, nil
}
