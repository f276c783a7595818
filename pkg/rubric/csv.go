package rubric

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Row is one flat rubric table entry: a single criterion with its ancestry
// weights and the four scoring level definitions.
type Row struct {
	Type           string
	TypeWeight     float64
	Category       string
	CategoryWeight float64
	SubCategory    string
	Scoring        ScoringLevels
}

// ParseError identifies the rubric table row that could not be parsed.
type ParseError struct {
	Row    int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("rubric row %d, column %q: %v", e.Row, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var rubricColumns = []string{
	"Type", "Type Weight", "Category", "Category Weight", "Sub-Category",
	"Unsatisfactory", "Marginal", "Satisfactory", "Superior",
}

var criteriaColumns = []string{"Type", "Category", "Sub-Category", "Weight", "Definition"}

// ReadRubricCSV parses the evaluation rubric table. Missing required columns
// fail before any row is produced; a non-numeric weight fails with a
// ParseError naming the offending row.
func ReadRubricCSV(r io.Reader) ([]Row, error) {
	records, header, err := readTable(r, rubricColumns)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(records))
	for i, record := range records {
		rowNum := i + 2 // 1-based, after the header line
		typeWeight, err := parseWeight(record[header["Type Weight"]])
		if err != nil {
			return nil, &ParseError{Row: rowNum, Column: "Type Weight", Err: err}
		}
		categoryWeight, err := parseWeight(record[header["Category Weight"]])
		if err != nil {
			return nil, &ParseError{Row: rowNum, Column: "Category Weight", Err: err}
		}
		rows = append(rows, Row{
			Type:           strings.TrimSpace(record[header["Type"]]),
			TypeWeight:     typeWeight,
			Category:       strings.TrimSpace(record[header["Category"]]),
			CategoryWeight: categoryWeight,
			SubCategory:    strings.TrimSpace(record[header["Sub-Category"]]),
			Scoring: ScoringLevels{
				Unsatisfactory: strings.TrimSpace(record[header["Unsatisfactory"]]),
				Marginal:       strings.TrimSpace(record[header["Marginal"]]),
				Satisfactory:   strings.TrimSpace(record[header["Satisfactory"]]),
				Superior:       strings.TrimSpace(record[header["Superior"]]),
			},
		})
	}
	return rows, nil
}

// ReadCriteriaCSV parses the criteria description table into a mapping from
// criterion identity key to its freeform definition text.
func ReadCriteriaCSV(r io.Reader) (map[string]string, error) {
	records, header, err := readTable(r, criteriaColumns)
	if err != nil {
		return nil, err
	}

	descriptions := make(map[string]string, len(records))
	for i, record := range records {
		rowNum := i + 2
		if _, err := parseWeight(record[header["Weight"]]); err != nil {
			return nil, &ParseError{Row: rowNum, Column: "Weight", Err: err}
		}
		key := UnitKey(
			strings.TrimSpace(record[header["Type"]]),
			strings.TrimSpace(record[header["Category"]]),
			strings.TrimSpace(record[header["Sub-Category"]]),
		)
		descriptions[key] = strings.TrimSpace(record[header["Definition"]])
	}
	return descriptions, nil
}

// ReadRubricFile reads the rubric table from a CSV file on disk.
func ReadRubricFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rubric table: %w", err)
	}
	defer f.Close()
	return ReadRubricCSV(f)
}

// ReadCriteriaFile reads the criteria description table from a CSV file.
func ReadCriteriaFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open criteria table: %w", err)
	}
	defer f.Close()
	return ReadCriteriaCSV(f)
}

func readTable(r io.Reader, required []string) ([][]string, map[string]int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("csv is empty")
	}

	header := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		header[strings.TrimSpace(name)] = i
	}
	for _, col := range required {
		if _, ok := header[col]; !ok {
			return nil, nil, fmt.Errorf("missing required column %q", col)
		}
	}

	var rows [][]string
	for _, record := range records[1:] {
		if len(record) < len(records[0]) {
			padded := make([]string, len(records[0]))
			copy(padded, record)
			record = padded
		}
		if isBlank(record) {
			continue
		}
		rows = append(rows, record)
	}
	return rows, header, nil
}

func parseWeight(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	w, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric weight %q", s)
	}
	return w, nil
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
