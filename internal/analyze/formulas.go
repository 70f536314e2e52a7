package analyze

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hyperjump/bunrui/internal/models"
)

var (
	cellRefRe  = regexp.MustCompile(`[A-Z]{1,3}[0-9]+`)
	scoreRefRe = regexp.MustCompile(`[A-Z]+[0-9]+`)
	sheetRefRe = regexp.MustCompile(`'?([^'!]+)'?!`)
	funcRe     = regexp.MustCompile(`([A-Z]+)\(`)
)

// scoreOperators are counted as written, so a "<=" also counts its
// "<" and "=" characters.
var scoreOperators = []string{
	"+", "-", "*", "/", "^", "&", "=", "<", ">", "<=", ">=", "<>",
}

// formulaDependencies maps every formula cell to its scored breakdown
// and collects the complex and externally-referencing ones.
func (a *Analyzer) formulaDependencies(wb *models.Workbook) *models.FormulaDependencies {
	deps := &models.FormulaDependencies{Formulas: make(map[string]*models.FormulaDetail)}
	for sheetName, ws := range wb.Worksheets {
		for ref, cell := range ws.Cells {
			if cell.Formula == "" {
				continue
			}
			key := sheetName + "!" + ref
			detail := analyzeFormula(cell.Formula)
			deps.Formulas[key] = detail
			if detail.ComplexityScore > a.threshold {
				deps.ComplexFormulas = append(deps.ComplexFormulas, key)
			}
			if strings.Contains(cell.Formula, "[") && strings.Contains(cell.Formula, "]") {
				deps.ExternalReferences = append(deps.ExternalReferences, key)
			}
		}
	}
	sort.Strings(deps.ComplexFormulas)
	sort.Strings(deps.ExternalReferences)
	return deps
}

func analyzeFormula(formula string) *models.FormulaDetail {
	return &models.FormulaDetail{
		Formula:         formula,
		ComplexityScore: complexityScore(formula),
		CellReferences:  cellRefRe.FindAllString(formula, -1),
		SheetReferences: sheetRefs(formula),
		FunctionsUsed:   functionsUsed(formula),
	}
}

// complexityScore sums parentheses, operators, cell references and
// function calls.
func complexityScore(formula string) int {
	score := strings.Count(formula, "(")
	for _, op := range scoreOperators {
		score += strings.Count(formula, op)
	}
	score += len(scoreRefRe.FindAllString(formula, -1))
	score += len(funcRe.FindAllString(formula, -1))
	return score
}

func sheetRefs(formula string) []string {
	var out []string
	for _, m := range sheetRefRe.FindAllStringSubmatch(formula, -1) {
		out = append(out, m[1])
	}
	return out
}

// functionsUsed returns unique function names in first-use order.
func functionsUsed(formula string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range funcRe.FindAllStringSubmatch(formula, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}
