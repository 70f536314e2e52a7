package extract

import (
	"fmt"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"
	"github.com/yamitzky/xlrd-go/xlrd"

	"github.com/hyperjump/bunrui/internal/models"
)

// dateFormatKeys are the builtin BIFF format keys that render as dates
// or times.
var dateFormatKeys = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true,
	20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true,
	33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true,
	56: true, 57: true, 58: true,
}

// readXLS reads a legacy .xls workbook. The format predates the OOXML
// parts, so extraction covers cells, merges and number formats only;
// every value is rendered to a string.
func readXLS(path string, includeStyles bool) (*workbookParts, error) {
	opts := &xlrd.OpenWorkbookOptions{FormattingInfo: true}
	book, err := xlrd.OpenWorkbook(path, opts)
	if err != nil {
		opts.IgnoreWorkbookCorruption = true
		if book, err = xlrd.OpenWorkbook(path, opts); err != nil {
			return nil, fmt.Errorf("failed to open workbook: %w", err)
		}
	}

	names := book.SheetNames()
	parts := newWorkbookParts()
	parts.metadata.SheetNames = names
	parts.metadata.SheetCount = len(names)

	for i, name := range names {
		sheet, err := book.SheetByIndex(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		parts.workbook.Worksheets[name] = readXLSSheet(book, sheet, includeStyles, parts)
	}
	return parts, nil
}

func readXLSSheet(book *xlrd.Book, sheet *xlrd.Sheet, includeStyles bool, parts *workbookParts) *models.Worksheet {
	ws := &models.Worksheet{Cells: make(map[string]*models.Cell)}
	info := &models.SheetInfo{
		Rows:       sheet.NRows,
		Columns:    sheet.NCols,
		DataTypes:  make(map[string]string),
		NullCounts: make(map[string]int),
	}

	header := make([]string, sheet.NCols)
	colKinds := make([]map[string]int, sheet.NCols)
	colEmpty := make([]int, sheet.NCols)

	for r := 0; r < sheet.NRows; r++ {
		for c := 0; c < sheet.NCols; c++ {
			cell := sheet.Cell(r, c)
			if cell == nil || cell.CType == xlrd.XL_CELL_EMPTY || cell.CType == xlrd.XL_CELL_BLANK {
				if r > 0 && c < len(colEmpty) {
					colEmpty[c]++
				}
				continue
			}
			value, kind, numFmt := convertXLSCell(book, cell)
			ref, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				continue
			}
			mc := &models.Cell{Value: value}
			if includeStyles && numFmt != "" {
				mc.Style = &models.Style{NumberFormat: numFmt}
				parts.styles[sheet.Name+"!"+ref] = mc.Style
			}
			ws.Cells[ref] = mc

			if r == 0 {
				if c < len(header) {
					header[c] = value
				}
			} else if c < len(colKinds) {
				if colKinds[c] == nil {
					colKinds[c] = make(map[string]int)
				}
				colKinds[c][kind]++
			}
		}
	}

	for _, m := range sheet.MergedCells {
		rlo, rhi, clo, chi := m[0], m[1], m[2], m[3]
		if rhi <= rlo || chi <= clo {
			continue
		}
		// The hi bounds are exclusive.
		start, err1 := excelize.CoordinatesToCellName(clo+1, rlo+1)
		end, err2 := excelize.CoordinatesToCellName(chi, rhi)
		if err1 == nil && err2 == nil {
			ws.MergedCells = append(ws.MergedCells, start+":"+end)
		}
	}

	for c := 0; c < sheet.NCols; c++ {
		name := header[c]
		if name == "" {
			name, _ = excelize.ColumnNumberToName(c + 1)
		}
		info.ColumnNames = append(info.ColumnNames, name)
		info.NullCounts[name] = colEmpty[c]
		info.DataTypes[name] = predominantKind(colKinds[c])
	}
	parts.sheetInfo[sheet.Name] = info
	return ws
}

// convertXLSCell renders one cell to its string value plus the column
// kind it tallies as and the number format string, when any.
func convertXLSCell(book *xlrd.Book, cell *xlrd.Cell) (string, string, string) {
	switch cell.CType {
	case xlrd.XL_CELL_TEXT:
		if s, ok := cell.Value.(string); ok {
			return s, "text", ""
		}
	case xlrd.XL_CELL_NUMBER, xlrd.XL_CELL_DATE:
		v, ok := cell.Value.(float64)
		if !ok {
			break
		}
		formatStr := cellFormatString(book, cell)
		if cell.CType == xlrd.XL_CELL_DATE || isXLSDateFormat(book, cell, formatStr) {
			if s, err := renderXLSDate(v, book.Datemode); err == nil {
				return s, "date", formatStr
			}
		}
		return renderXLSNumber(v), "number", formatStr
	case xlrd.XL_CELL_BOOLEAN:
		return xlsBool(cell.Value), "bool", ""
	case xlrd.XL_CELL_ERROR:
		return xlsErrorText(cell.Value), "text", ""
	}
	return fmt.Sprint(cell.Value), "text", ""
}

func isXLSDateFormat(book *xlrd.Book, cell *xlrd.Cell, formatStr string) bool {
	if dateFormatKeys[cellFormatKey(book, cell)] {
		return true
	}
	return formatStr != "" && xlrd.IsDateFormatString(book, formatStr)
}

func cellFormatKey(book *xlrd.Book, cell *xlrd.Cell) int {
	if cell.XFIndex < 0 || cell.XFIndex >= len(book.XFList) {
		return -1
	}
	xf := book.XFList[cell.XFIndex]
	if xf == nil {
		return -1
	}
	return xf.FormatKey
}

func cellFormatString(book *xlrd.Book, cell *xlrd.Cell) string {
	key := cellFormatKey(book, cell)
	if key < 0 {
		return ""
	}
	if f := book.FormatMap[key]; f != nil {
		return f.FormatString
	}
	return ""
}

// renderXLSDate formats an Excel date serial: time of day for
// sub-day serials, date plus time when the serial has a fraction,
// bare date otherwise.
func renderXLSDate(v float64, datemode int) (string, error) {
	t, err := xlrd.XldateAsDatetime(v, datemode)
	if err != nil {
		return "", err
	}
	switch {
	case v < 1:
		return t.Format("15:04:05"), nil
	case v != math.Trunc(v):
		return t.Format("2006-01-02 15:04:05"), nil
	}
	return t.Format("2006-01-02"), nil
}

func renderXLSNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func xlsBool(v interface{}) string {
	switch b := v.(type) {
	case bool:
		if b {
			return "TRUE"
		}
	case float64:
		if b != 0 {
			return "TRUE"
		}
	case int:
		if b != 0 {
			return "TRUE"
		}
	}
	return "FALSE"
}

func xlsErrorText(v interface{}) string {
	switch e := v.(type) {
	case byte:
		if s, ok := xlrd.ErrorTextFromCode[e]; ok {
			return s
		}
	case int:
		if s, ok := xlrd.ErrorTextFromCode[byte(e)]; ok {
			return s
		}
	case float64:
		if s, ok := xlrd.ErrorTextFromCode[byte(int(e))]; ok {
			return s
		}
	case string:
		return e
	}
	return "#ERR"
}
