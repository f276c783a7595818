package document

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultRequiredFiles lists the document stems a complete proposal bundle
// must carry. Any supported extension satisfies a stem.
var DefaultRequiredFiles = []string{
	"tech_proposal",
	"budget",
	"commercial_proposal",
	"team_bios",
	"past_performance",
}

// sectionStems maps evaluation-type section names to the bundle document
// stem whose text backs that section's scoring prompts.
var sectionStems = map[string]string{
	"technical":        "tech_proposal",
	"commercial":       "commercial_proposal",
	"team":             "team_bios",
	"past_performance": "past_performance",
}

// Bundle is one proposal's document directory.
type Bundle struct {
	Dir      string
	Required []string
}

// NewBundle creates a bundle over dir. With no required stems given, the
// defaults apply.
func NewBundle(dir string, required []string) Bundle {
	if len(required) == 0 {
		required = DefaultRequiredFiles
	}
	return Bundle{Dir: dir, Required: required}
}

// Missing returns the required stems with no file present, in input order.
func (b Bundle) Missing() []string {
	var missing []string
	for _, stem := range b.Required {
		if b.find(stem) == "" {
			missing = append(missing, stem)
		}
	}
	return missing
}

// Verify fails when required documents are absent. This runs before any
// oracle call: a bundle that cannot be scored must not spend oracle budget.
func (b Bundle) Verify() error {
	if missing := b.Missing(); len(missing) > 0 {
		return fmt.Errorf("missing required documents: %s", strings.Join(missing, ", "))
	}
	return nil
}

// MainProposal extracts the technical proposal document.
func (b Bundle) MainProposal() (*Document, error) {
	path := b.find("tech_proposal")
	if path == "" {
		return nil, fmt.Errorf("main proposal not found in %s", b.Dir)
	}
	return Extract(path)
}

// SectionTexts extracts the text backing each evaluation-type section.
// Sections whose document is absent are simply omitted; the prompt builder
// falls back to the technical text for unmapped types.
func (b Bundle) SectionTexts() (map[string]string, error) {
	texts := make(map[string]string)
	for section, stem := range sectionStems {
		path := b.find(stem)
		if path == "" {
			continue
		}
		doc, err := Extract(path)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", stem, err)
		}
		texts[section] = doc.FullText
	}
	return texts, nil
}

// SupportingDocs extracts every readable document in the bundle except the
// main proposal, sorted by file name.
func (b Bundle) SupportingDocs() ([]*Document, error) {
	entries, err := os.ReadDir(b.Dir)
	if err != nil {
		return nil, fmt.Errorf("read bundle dir: %w", err)
	}

	mainPath := b.find("tech_proposal")
	var docs []*Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(b.Dir, entry.Name())
		if path == mainPath {
			continue
		}
		doc, err := Extract(path)
		if err != nil {
			// Unsupported or empty files are skipped, not fatal:
			// supporting material is best-effort context.
			continue
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].FileName < docs[j].FileName })
	return docs, nil
}

// BudgetFile returns the path of the bundle's budget document, or empty.
func (b Bundle) BudgetFile() string {
	return b.find("budget")
}

var supportedExts = []string{".txt", ".text", ".md", ".markdown", ".csv"}

// find locates a required stem with any supported extension, or an exact
// file name match when the stem already carries an extension.
func (b Bundle) find(stem string) string {
	if filepath.Ext(stem) != "" {
		path := filepath.Join(b.Dir, stem)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		return ""
	}
	for _, ext := range supportedExts {
		path := filepath.Join(b.Dir, stem+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
