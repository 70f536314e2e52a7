package models

// AnalysisReport is the comprehensive_analysis.json document.
type AnalysisReport struct {
	DataPatterns        map[string]*SheetPatterns `json:"data_patterns"`
	FormulaDependencies *FormulaDependencies      `json:"formula_dependencies"`
	NamedRanges         []NamedItem               `json:"named_ranges,omitempty"`
	DataValidation      []*ValidationInfo         `json:"data_validation,omitempty"`
	MergedRanges        map[string][]string       `json:"merged_ranges,omitempty"`
}

// SheetPatterns tallies cell kinds for one sheet.
type SheetPatterns struct {
	EmptyCells   int     `json:"empty_cells"`
	FormulaCells int     `json:"formula_cells"`
	NumericCells int     `json:"numeric_cells"`
	TextCells    int     `json:"text_cells"`
	DateCells    int     `json:"date_cells"`
	BooleanCells int     `json:"boolean_cells"`
	ErrorCells   int     `json:"error_cells"`
	TotalCells   int     `json:"total_cells"`
	DataDensity  float64 `json:"data_density"`
}

// FormulaDependencies maps every formula cell to its analysis.
type FormulaDependencies struct {
	Formulas           map[string]*FormulaDetail `json:"formulas"`
	ComplexFormulas    []string                  `json:"complex_formulas"`
	ExternalReferences []string                  `json:"external_references"`
}

// FormulaDetail is the scored breakdown of one formula.
type FormulaDetail struct {
	Formula         string   `json:"formula"`
	ComplexityScore int      `json:"complexity_score"`
	CellReferences  []string `json:"cell_references"`
	SheetReferences []string `json:"sheet_references"`
	FunctionsUsed   []string `json:"functions_used"`
}
