package analyze

import (
	"testing"

	"github.com/hyperjump/bunrui/internal/models"
)

func wbWithCells(cells map[string]*models.Cell) *models.Workbook {
	return &models.Workbook{
		Worksheets: map[string]*models.Worksheet{
			"Sheet1": {Cells: cells},
		},
	}
}

func TestAnalyze_dataPatterns(t *testing.T) {
	wb := wbWithCells(map[string]*models.Cell{
		"A1": {Value: "Name"},
		"B1": {Value: "Score"},
		"A2": {Value: "alice"},
		"B2": {Value: 91.5},
		"A3": {Value: "2024-01-15"},
		"B3": {Value: true},
		"A4": {Value: "#REF!"},
		"B4": {Value: nil, Formula: "=B2*2"},
	})

	report := NewAnalyzer(0).Analyze(wb)
	p := report.DataPatterns["Sheet1"]
	if p == nil {
		t.Fatal("no patterns for Sheet1")
	}
	if p.TextCells != 3 {
		t.Errorf("TextCells = %d, want 3", p.TextCells)
	}
	if p.NumericCells != 1 {
		t.Errorf("NumericCells = %d, want 1", p.NumericCells)
	}
	if p.DateCells != 1 {
		t.Errorf("DateCells = %d, want 1", p.DateCells)
	}
	if p.BooleanCells != 1 {
		t.Errorf("BooleanCells = %d, want 1", p.BooleanCells)
	}
	if p.ErrorCells != 1 {
		t.Errorf("ErrorCells = %d, want 1", p.ErrorCells)
	}
	if p.FormulaCells != 1 {
		t.Errorf("FormulaCells = %d, want 1", p.FormulaCells)
	}
	if p.TotalCells != 8 {
		t.Errorf("TotalCells = %d, want 8", p.TotalCells)
	}
	if p.EmptyCells != 0 {
		t.Errorf("EmptyCells = %d, want 0", p.EmptyCells)
	}
	if p.DataDensity != 1.0 {
		t.Errorf("DataDensity = %v, want 1.0", p.DataDensity)
	}
}

func TestAnalyze_sparseSheet(t *testing.T) {
	wb := wbWithCells(map[string]*models.Cell{
		"C3": {Value: 1.0},
	})
	p := NewAnalyzer(0).Analyze(wb).DataPatterns["Sheet1"]
	if p.TotalCells != 9 {
		t.Errorf("TotalCells = %d, want 9", p.TotalCells)
	}
	if p.EmptyCells != 8 {
		t.Errorf("EmptyCells = %d, want 8", p.EmptyCells)
	}
	if p.NumericCells != 1 {
		t.Errorf("NumericCells = %d, want 1", p.NumericCells)
	}
	want := 1.0 / 9.0
	if p.DataDensity != want {
		t.Errorf("DataDensity = %v, want %v", p.DataDensity, want)
	}
}

func TestAnalyze_emptySheet(t *testing.T) {
	wb := wbWithCells(map[string]*models.Cell{})
	p := NewAnalyzer(0).Analyze(wb).DataPatterns["Sheet1"]
	if p.TotalCells != 0 {
		t.Errorf("TotalCells = %d, want 0", p.TotalCells)
	}
	if p.DataDensity != 0 {
		t.Errorf("DataDensity = %v, want 0", p.DataDensity)
	}
}

func TestAnalyze_numericStrings(t *testing.T) {
	// Legacy-format extractions render numbers as strings.
	wb := wbWithCells(map[string]*models.Cell{
		"A1": {Value: "42"},
		"A2": {Value: "3.14"},
		"A3": {Value: "TRUE"},
	})
	p := NewAnalyzer(0).Analyze(wb).DataPatterns["Sheet1"]
	if p.NumericCells != 2 {
		t.Errorf("NumericCells = %d, want 2", p.NumericCells)
	}
	if p.BooleanCells != 1 {
		t.Errorf("BooleanCells = %d, want 1", p.BooleanCells)
	}
}

func TestComplexityScore(t *testing.T) {
	tests := []struct {
		formula string
		want    int
	}{
		// 1 paren + "=" + A1,A3 + SUM(
		{"=SUM(A1:A3)", 5},
		// "=" and "+" + A1,B2
		{"=A1+B2", 4},
		// 2 parens + "=",">" + A1,B1,B9 + IF(,SUM(
		{"=IF(A1>5,SUM(B1:B9),0)", 9},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			if got := complexityScore(tt.formula); got != tt.want {
				t.Errorf("complexityScore(%q) = %d, want %d", tt.formula, got, tt.want)
			}
		})
	}
}

func TestAnalyzeFormula(t *testing.T) {
	d := analyzeFormula("=SUM('Data Sheet'!A1:A5)+MAX(B2:B4)-SUM(C1:C2)")
	wantRefs := []string{"A1", "A5", "B2", "B4", "C1", "C2"}
	if len(d.CellReferences) != len(wantRefs) {
		t.Fatalf("CellReferences = %v, want %v", d.CellReferences, wantRefs)
	}
	for i, ref := range wantRefs {
		if d.CellReferences[i] != ref {
			t.Errorf("CellReferences[%d] = %q, want %q", i, d.CellReferences[i], ref)
		}
	}
	if len(d.SheetReferences) != 1 || d.SheetReferences[0] != "Data Sheet" {
		t.Errorf("SheetReferences = %v, want [Data Sheet]", d.SheetReferences)
	}
	// Unique, first-use order.
	if len(d.FunctionsUsed) != 2 || d.FunctionsUsed[0] != "SUM" || d.FunctionsUsed[1] != "MAX" {
		t.Errorf("FunctionsUsed = %v, want [SUM MAX]", d.FunctionsUsed)
	}
}

func TestAnalyze_complexAndExternal(t *testing.T) {
	wb := wbWithCells(map[string]*models.Cell{
		"C1": {Formula: "=IF(A1>5,SUM(B1:B9),0)"},
		"C2": {Formula: "=[Budget.xlsx]Sheet1!A1"},
		"C3": {Formula: "=A1+B2"},
	})

	deps := NewAnalyzer(0).Analyze(wb).FormulaDependencies
	if len(deps.Formulas) != 3 {
		t.Fatalf("Formulas = %d entries, want 3", len(deps.Formulas))
	}
	if len(deps.ComplexFormulas) != 1 || deps.ComplexFormulas[0] != "Sheet1!C1" {
		t.Errorf("ComplexFormulas = %v, want [Sheet1!C1]", deps.ComplexFormulas)
	}
	if len(deps.ExternalReferences) != 1 || deps.ExternalReferences[0] != "Sheet1!C2" {
		t.Errorf("ExternalReferences = %v, want [Sheet1!C2]", deps.ExternalReferences)
	}
}

func TestAnalyze_thresholdRaised(t *testing.T) {
	wb := wbWithCells(map[string]*models.Cell{
		"C1": {Formula: "=IF(A1>5,SUM(B1:B9),0)"},
	})
	deps := NewAnalyzer(100).Analyze(wb).FormulaDependencies
	if len(deps.ComplexFormulas) != 0 {
		t.Errorf("ComplexFormulas = %v, want none at threshold 100", deps.ComplexFormulas)
	}
}

func TestAnalyze_rangeSummaries(t *testing.T) {
	wb := &models.Workbook{
		Worksheets: map[string]*models.Worksheet{
			"Data": {
				Cells:       map[string]*models.Cell{"A1": {Value: "x"}},
				NamedItems:  []models.NamedItem{{Name: "Region", RefersTo: "Data!$A$1", Scope: "Data"}},
				MergedCells: []string{"A1:B2"},
				DataValidation: &models.ValidationInfo{
					SheetName:   "Data",
					Validations: []map[string]string{{"type": "list"}},
				},
			},
		},
	}
	report := NewAnalyzer(0).Analyze(wb)
	if len(report.NamedRanges) != 1 || report.NamedRanges[0].Name != "Region" {
		t.Errorf("NamedRanges = %v", report.NamedRanges)
	}
	if len(report.DataValidation) != 1 || report.DataValidation[0].SheetName != "Data" {
		t.Errorf("DataValidation = %v", report.DataValidation)
	}
	if got := report.MergedRanges["Data"]; len(got) != 1 || got[0] != "A1:B2" {
		t.Errorf("MergedRanges = %v", report.MergedRanges)
	}
}

func TestSheetRefs_quoted(t *testing.T) {
	refs := sheetRefs("=SUM('Survey Results'!A1:A9)")
	if len(refs) != 1 || refs[0] != "Survey Results" {
		t.Errorf("sheetRefs = %v, want [Survey Results]", refs)
	}
	if sheetRefs("=A1+B2") != nil {
		t.Errorf("sheetRefs without sheet = %v, want nil", sheetRefs("=A1+B2"))
	}
}

func TestIsDateString(t *testing.T) {
	for _, s := range []string{"2024-01-15", "2024-01-15 10:30:00", "09:15:00"} {
		if !isDateString(s) {
			t.Errorf("isDateString(%q) = false", s)
		}
	}
	for _, s := range []string{"alice", "42", "2024", "15/01/2024x"} {
		if isDateString(s) {
			t.Errorf("isDateString(%q) = true", s)
		}
	}
}

func TestComplexityScore_compoundOperators(t *testing.T) {
	// "<=" counts itself plus its "<" and "=" characters.
	base := complexityScore("A1<B2")
	comp := complexityScore("A1<=B2")
	if comp != base+2 {
		t.Errorf("compound operator: got %d, want %d", comp, base+2)
	}
}
