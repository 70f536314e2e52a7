// Package e2e provides end-to-end tests; this file renders corpus
// workbooks to real .xlsx files.
package e2e

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// WriteWorkbook writes one corpus workbook as an .xlsx file: a header
// row, one row per response with a score column, and a total row whose
// formula carries a cached result the way files saved by Excel do.
func WriteWorkbook(path string, wb E2EWorkbook) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetCellValue("Sheet1", "A1", "response")
	f.SetCellValue("Sheet1", "B1", "score")

	total := 0
	for i, response := range wb.Responses {
		row := i + 2
		score := i%5 + 1
		total += score
		f.SetCellValue("Sheet1", fmt.Sprintf("A%d", row), response)
		f.SetCellValue("Sheet1", fmt.Sprintf("B%d", row), score)
	}

	totalRow := len(wb.Responses) + 2
	f.SetCellValue("Sheet1", fmt.Sprintf("A%d", totalRow), "total")
	f.SetCellValue("Sheet1", fmt.Sprintf("B%d", totalRow), total)
	f.SetCellFormula("Sheet1", fmt.Sprintf("B%d", totalRow), fmt.Sprintf("SUM(B2:B%d)", totalRow-1))

	if wb.Title != "" {
		f.SetDocProps(&excelize.DocProperties{Title: wb.Title})
	}
	return f.SaveAs(path)
}
