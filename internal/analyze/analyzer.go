// Package analyze builds structural reports over extracted workbooks:
// cell-type patterns, formula dependencies and range summaries.
package analyze

import (
	"sort"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/bunrui/internal/models"
	"github.com/hyperjump/bunrui/pkg/utils"
)

// DefaultComplexityThreshold flags formulas scoring above it as
// complex.
const DefaultComplexityThreshold = 5

// Analyzer computes analysis reports from in-memory extractions.
type Analyzer struct {
	threshold int
}

// NewAnalyzer creates an analyzer. A non-positive threshold selects
// the default.
func NewAnalyzer(threshold int) *Analyzer {
	if threshold <= 0 {
		threshold = DefaultComplexityThreshold
	}
	return &Analyzer{threshold: threshold}
}

// Analyze builds the full report for one workbook.
func (a *Analyzer) Analyze(wb *models.Workbook) *models.AnalysisReport {
	report := &models.AnalysisReport{
		DataPatterns:        make(map[string]*models.SheetPatterns, len(wb.Worksheets)),
		FormulaDependencies: a.formulaDependencies(wb),
	}
	for name, ws := range wb.Worksheets {
		report.DataPatterns[name] = sheetPatterns(ws)
		report.NamedRanges = append(report.NamedRanges, ws.NamedItems...)
		if ws.DataValidation != nil {
			report.DataValidation = append(report.DataValidation, ws.DataValidation)
		}
		if len(ws.MergedCells) > 0 {
			if report.MergedRanges == nil {
				report.MergedRanges = make(map[string][]string)
			}
			report.MergedRanges[name] = ws.MergedCells
		}
	}
	sort.Slice(report.NamedRanges, func(i, j int) bool {
		return report.NamedRanges[i].Name < report.NamedRanges[j].Name
	})
	sort.Slice(report.DataValidation, func(i, j int) bool {
		return report.DataValidation[i].SheetName < report.DataValidation[j].SheetName
	})
	return report
}

// sheetPatterns tallies cell kinds over the sheet's used range. Empty
// cells are the range positions with no entry in the cell map.
func sheetPatterns(ws *models.Worksheet) *models.SheetPatterns {
	p := &models.SheetPatterns{}
	maxRow, maxCol := 0, 0
	for ref, cell := range ws.Cells {
		if col, row, err := excelize.CellNameToCoordinates(ref); err == nil {
			if row > maxRow {
				maxRow = row
			}
			if col > maxCol {
				maxCol = col
			}
		}
		classify(p, cell)
	}
	p.TotalCells = maxRow * maxCol
	if p.TotalCells > 0 {
		p.EmptyCells += p.TotalCells - len(ws.Cells)
	}
	p.DataDensity = utils.Ratio(len(ws.Cells), p.TotalCells)
	return p
}

var errorTexts = map[string]bool{
	"#NULL!": true, "#DIV/0!": true, "#VALUE!": true, "#REF!": true,
	"#NAME?": true, "#NUM!": true, "#N/A": true,
}

var dateLayouts = []string{
	"2006-01-02", "2006-01-02 15:04:05", "15:04:05", time.RFC3339,
}

func classify(p *models.SheetPatterns, cell *models.Cell) {
	if cell.Formula != "" {
		p.FormulaCells++
		return
	}
	switch v := cell.Value.(type) {
	case nil:
		p.EmptyCells++
	case float64, int, int64:
		p.NumericCells++
	case bool:
		p.BooleanCells++
	case string:
		switch {
		case errorTexts[v]:
			p.ErrorCells++
		case v == "TRUE" || v == "FALSE":
			p.BooleanCells++
		case isDateString(v):
			p.DateCells++
		case isNumericString(v):
			p.NumericCells++
		default:
			p.TextCells++
		}
	default:
		p.TextCells++
	}
}

func isDateString(s string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func isNumericString(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
