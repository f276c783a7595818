package rubric

import (
	"errors"
	"strings"
	"testing"
)

const rubricCSV = `Type,Type Weight,Category,Category Weight,Sub-Category,Unsatisfactory,Marginal,Satisfactory,Superior
Technical,70%,Risk,100,Schedule,no plan,partial plan,credible plan,detailed plan
Technical,70%,Risk,100,Technical,unmitigated,acknowledged,mitigated,fully mitigated
,,,,,,,,
Commercial,30,Market,100,Opportunity,none,vague,plausible,validated
`

func TestReadRubricCSV(t *testing.T) {
	rows, err := ReadRubricCSV(strings.NewReader(rubricCSV))
	if err != nil {
		t.Fatalf("ReadRubricCSV failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3 (blank row skipped)", len(rows))
	}

	first := rows[0]
	if first.Type != "Technical" || first.TypeWeight != 70 {
		t.Errorf("row 0 type = %q/%v", first.Type, first.TypeWeight)
	}
	if first.CategoryWeight != 100 || first.SubCategory != "Schedule" {
		t.Errorf("row 0 category = %v/%q", first.CategoryWeight, first.SubCategory)
	}
	if first.Scoring.Superior != "detailed plan" {
		t.Errorf("row 0 superior = %q", first.Scoring.Superior)
	}
}

func TestReadRubricCSVMissingColumn(t *testing.T) {
	csv := "Type,Category,Sub-Category\nTechnical,Risk,Schedule\n"
	_, err := ReadRubricCSV(strings.NewReader(csv))
	if err == nil {
		t.Fatal("expected missing column error")
	}
	if !strings.Contains(err.Error(), "Type Weight") {
		t.Errorf("error does not name the missing column: %v", err)
	}
}

func TestReadRubricCSVNonNumericWeight(t *testing.T) {
	csv := `Type,Type Weight,Category,Category Weight,Sub-Category,Unsatisfactory,Marginal,Satisfactory,Superior
Technical,seventy,Risk,100,Schedule,a,b,c,d
`
	_, err := ReadRubricCSV(strings.NewReader(csv))
	if err == nil {
		t.Fatal("expected parse error")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error type = %T, want *ParseError", err)
	}
	if perr.Row != 2 || perr.Column != "Type Weight" {
		t.Errorf("error location = row %d column %q", perr.Row, perr.Column)
	}
}

func TestReadCriteriaCSV(t *testing.T) {
	csv := `Type,Category,Sub-Category,Weight,Definition
Technical,Risk,Schedule,50%,Assesses the schedule risk plan.
`
	descriptions, err := ReadCriteriaCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCriteriaCSV failed: %v", err)
	}
	key := UnitKey("Technical", "Risk", "Schedule")
	if descriptions[key] != "Assesses the schedule risk plan." {
		t.Errorf("description = %q", descriptions[key])
	}
}

func TestReadCriteriaCSVBadWeight(t *testing.T) {
	csv := `Type,Category,Sub-Category,Weight,Definition
Technical,Risk,Schedule,half,text
`
	if _, err := ReadCriteriaCSV(strings.NewReader(csv)); err == nil {
		t.Fatal("expected parse error for non-numeric weight")
	}
}
