package document

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Section is one titled slice of an extracted document.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Level   int    `json:"level"`
}

// Document is the normalized output of text extraction. PageCount is zero
// when the source format does not carry page boundaries.
type Document struct {
	FullText  string    `json:"full_text"`
	Sections  []Section `json:"sections"`
	Format    string    `json:"format"`
	FileName  string    `json:"file_name"`
	PageCount int       `json:"page_count,omitempty"`
}

// Extract reads a document from disk and returns its text. Extraction that
// yields no text is an error, never an empty document: the scoring pipeline
// treats empty proposal text as fatal, and silently scoring an empty string
// would grade the absence of a proposal.
//
// Plain text, markdown and CSV are handled here. Binary formats (PDF, DOCX,
// XLSX) belong to external extraction collaborators that produce the same
// Document shape.
func Extract(path string) (*Document, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var doc *Document
	var err error
	switch ext {
	case ".txt", ".text":
		doc, err = extractPlain(path, "text")
	case ".md", ".markdown":
		doc, err = extractMarkdown(path)
	case ".csv":
		doc, err = extractCSV(path)
	default:
		return nil, fmt.Errorf("unsupported document format %q (%s): extraction collaborator required", ext, filepath.Base(path))
	}
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(doc.FullText) == "" {
		return nil, fmt.Errorf("document %s extracted no text", filepath.Base(path))
	}
	return doc, nil
}

func extractPlain(path, format string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	text := string(data)
	return &Document{
		FullText:  text,
		Sections:  []Section{{Content: text}},
		Format:    format,
		FileName:  filepath.Base(path),
		PageCount: strings.Count(text, "\f") + boolToInt(len(text) > 0),
	}, nil
}

func extractMarkdown(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	text := string(data)

	var sections []Section
	current := Section{}
	flush := func() {
		if current.Title != "" || strings.TrimSpace(current.Content) != "" {
			current.Content = strings.TrimSpace(current.Content)
			sections = append(sections, current)
		}
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "#") {
			flush()
			level := 0
			for level < len(line) && line[level] == '#' {
				level++
			}
			current = Section{
				Title: strings.TrimSpace(line[level:]),
				Level: level,
			}
			continue
		}
		current.Content += line + "\n"
	}
	flush()

	return &Document{
		FullText: text,
		Sections: sections,
		Format:   "markdown",
		FileName: filepath.Base(path),
	}, nil
}

func extractCSV(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", filepath.Base(path), err)
	}

	var b strings.Builder
	for _, record := range records {
		b.WriteString(strings.Join(record, ", "))
		b.WriteString("\n")
	}
	text := b.String()

	return &Document{
		FullText: text,
		Sections: []Section{{Content: text}},
		Format:   "csv",
		FileName: filepath.Base(path),
	}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
