package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/zen-systems/gradeflow/pkg/rubric"
	"github.com/zen-systems/gradeflow/pkg/scoring"
)

func ptr(v float64) *float64 { return &v }

func sampleResults() []scoring.UnitResult {
	return []scoring.UnitResult{
		{
			Unit: rubric.ScoringUnit{
				Type: "Technical", Category: "Risk", SubCategory: "Schedule", Weight: 0.5,
			},
			Score:        ptr(4.0),
			Evidence:     "names dates",
			Reasoning:    "credible plan",
			Improvements: "add a buffer",
			Attempts:     1,
		},
		{
			Unit: rubric.ScoringUnit{
				Type: "Technical", Category: "Risk", SubCategory: "Technical", Weight: 0.5,
			},
			Score:     nil,
			Reasoning: "Could not parse response",
			Attempts:  3,
		},
	}
}

func TestAuditWriterWritesRowsIncrementally(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	w, err := NewAuditWriter(path)
	if err != nil {
		t.Fatalf("NewAuditWriter failed: %v", err)
	}

	results := sampleResults()
	if err := w.WriteResult(results[0]); err != nil {
		t.Fatalf("WriteResult failed: %v", err)
	}

	// Rows are flushed before Close: a crashed run keeps its partial trail.
	partial := readCSV(t, path)
	if len(partial) != 2 {
		t.Fatalf("got %d rows before close, want header + 1", len(partial))
	}

	if err := w.WriteResult(results[1]); err != nil {
		t.Fatal(err)
	}
	summary := scoring.Aggregate(results, map[string]float64{"Technical": 70})
	if err := w.WriteSummary(summary); err != nil {
		t.Fatalf("WriteSummary failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	rows := readCSV(t, path)
	if rows[0][0] != "section" || rows[0][3] != "score" {
		t.Errorf("header = %v", rows[0])
	}

	scored := rows[1]
	if scored[0] != "Technical" || scored[2] != "Schedule" {
		t.Errorf("scored row identity = %v", scored)
	}
	if scored[3] != "4" || scored[5] != "2" {
		t.Errorf("scored row values = score %q weighted %q", scored[3], scored[5])
	}

	unscored := rows[2]
	if unscored[3] != "" || unscored[5] != "" {
		t.Errorf("unscored row must leave score cells empty: %v", unscored)
	}
	if unscored[7] != "Could not parse response" {
		t.Errorf("unscored reasoning = %q", unscored[7])
	}

	last := rows[len(rows)-1]
	if last[0] != "overall" || last[3] != "4" {
		t.Errorf("overall row = %v", last)
	}
	if last[7] != "superior" {
		t.Errorf("overall label = %q", last[7])
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}
