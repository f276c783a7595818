// Package compliance runs the pre-scoring administrative checks: page
// limits, budget ceilings and subcontract ratios. A compliance failure is
// an input error surfaced before any oracle call.
package compliance

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/zen-systems/gradeflow/pkg/document"
)

// Limits holds the solicitation's administrative constraints. Zero values
// disable the corresponding check.
type Limits struct {
	ProposalPageLimit   int     `yaml:"proposal_page_limit"`
	MaxBudget           float64 `yaml:"max_budget"`
	MaxSubcontractRatio float64 `yaml:"max_subcontract_ratio"`
}

// DefaultLimits returns the standard Phase I constraints.
func DefaultLimits() Limits {
	return Limits{
		ProposalPageLimit:   15,
		MaxBudget:           150000,
		MaxSubcontractRatio: 1.0 / 3.0,
	}
}

// Budget is the normalized budget summary extracted from the bundle's
// budget document.
type Budget struct {
	Total            float64 `json:"total"`
	TABA             float64 `json:"taba"`
	SubcontractTotal float64 `json:"subcontract_total"`
}

// Error is a failed compliance check.
type Error struct {
	Rule    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("compliance: %s", e.Message)
}

// Check validates the proposal and budget against the limits.
func Check(proposal *document.Document, budget Budget, limits Limits) error {
	if limits.ProposalPageLimit > 0 && proposal != nil && proposal.PageCount > limits.ProposalPageLimit {
		return &Error{
			Rule:    "page_limit",
			Message: fmt.Sprintf("proposal has %d pages, limit is %d", proposal.PageCount, limits.ProposalPageLimit),
		}
	}

	if limits.MaxBudget > 0 && budget.Total > limits.MaxBudget {
		return &Error{
			Rule:    "max_budget",
			Message: fmt.Sprintf("budget %.2f exceeds limit %.2f", budget.Total, limits.MaxBudget),
		}
	}

	if limits.MaxSubcontractRatio > 0 && budget.SubcontractTotal > 0 && budget.Total > 0 {
		ratio := budget.SubcontractTotal / budget.Total
		if ratio > limits.MaxSubcontractRatio {
			return &Error{
				Rule:    "subcontract_ratio",
				Message: fmt.Sprintf("subcontract ratio %.2f exceeds limit %.2f", ratio, limits.MaxSubcontractRatio),
			}
		}
	}

	return nil
}

// ReadBudgetCSV reads a two-column (item, amount) budget table, matching the
// summary rows by label. Spreadsheet formats go through an external
// extraction collaborator that produces the same table.
func ReadBudgetCSV(path string) (Budget, error) {
	f, err := os.Open(path)
	if err != nil {
		return Budget{}, fmt.Errorf("open budget: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return Budget{}, fmt.Errorf("parse budget csv: %w", err)
	}

	var budget Budget
	for _, record := range records {
		if len(record) < 2 {
			continue
		}
		label := strings.ToLower(strings.TrimSpace(record[0]))
		amount, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(record[len(record)-1], "$")), 64)
		if err != nil {
			continue
		}
		switch {
		case label == "total" || label == "total budget":
			budget.Total = amount
		case label == "taba":
			budget.TABA = amount
		case strings.HasPrefix(label, "subcontract"):
			budget.SubcontractTotal = amount
		}
	}
	return budget, nil
}
