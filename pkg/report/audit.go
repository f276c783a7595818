// Package report persists run outputs: the incremental CSV audit trail,
// the markdown evaluation report, and the per-agent review files.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/zen-systems/gradeflow/pkg/scoring"
)

var auditHeader = []string{
	"section", "category", "sub_category", "score", "weight",
	"weighted_score", "evidence", "reasoning", "improvements",
}

// AuditWriter writes one CSV row per unit as its terminal result arrives,
// flushing after every row. A crashed run leaves a partial but still valid
// audit trail instead of nothing.
type AuditWriter struct {
	file   *os.File
	writer *csv.Writer
}

// NewAuditWriter creates the audit CSV at path and writes the header.
func NewAuditWriter(path string) (*AuditWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create audit file: %w", err)
	}

	w := &AuditWriter{file: file, writer: csv.NewWriter(file)}
	if err := w.writer.Write(auditHeader); err != nil {
		file.Close()
		return nil, fmt.Errorf("write audit header: %w", err)
	}
	w.writer.Flush()
	return w, w.writer.Error()
}

// WriteResult appends one unit's terminal result and flushes. Unscored
// units record an empty score and weighted score.
func (w *AuditWriter) WriteResult(result scoring.UnitResult) error {
	score := ""
	weighted := ""
	if result.Scored() {
		score = formatFloat(*result.Score)
		weighted = formatFloat(*result.Score * result.Unit.Weight)
	}
	row := []string{
		result.Unit.Type,
		result.Unit.Category,
		result.Unit.SubCategory,
		score,
		formatFloat(result.Unit.Weight),
		weighted,
		result.Evidence,
		result.Reasoning,
		result.Improvements,
	}
	if err := w.writer.Write(row); err != nil {
		return fmt.Errorf("write audit row: %w", err)
	}
	w.writer.Flush()
	return w.writer.Error()
}

// WriteSummary appends the per-section and overall score block after the
// unit rows.
func (w *AuditWriter) WriteSummary(summary scoring.Summary) error {
	rows := [][]string{
		{},
		{"summary", "", "", "", "", "", "", "", ""},
	}
	for _, name := range summary.SectionNames() {
		section := summary.Sections[name]
		rows = append(rows, []string{
			name, "", "",
			formatFloat(section.Score),
			formatFloat(section.WeightSum),
			formatFloat(section.WeightedScore),
			"", scoring.Label(section.Score), "",
		})
	}
	rows = append(rows, []string{
		"overall", "", "",
		formatFloat(summary.Overall),
		"", "", "", summary.Label, "",
	})

	for _, row := range rows {
		if err := w.writer.Write(row); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}
	w.writer.Flush()
	return w.writer.Error()
}

// Close flushes and closes the underlying file.
func (w *AuditWriter) Close() error {
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
