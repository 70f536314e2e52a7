package extract

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/bunrui/internal/models"
)

// workbookParts is everything one reader pass produces: the full
// serialized workbook plus the component documents written alongside
// it.
type workbookParts struct {
	workbook  *models.Workbook
	metadata  *models.WorkbookMetadata
	formulas  map[string]map[string]*models.FormulaInfo
	styles    map[string]*models.Style
	sheetInfo map[string]*models.SheetInfo
	images    []sheetImage
}

func newWorkbookParts() *workbookParts {
	return &workbookParts{
		workbook:  &models.Workbook{Worksheets: make(map[string]*models.Worksheet)},
		metadata:  &models.WorkbookMetadata{DefinedNames: make(map[string]models.DefinedName)},
		formulas:  make(map[string]map[string]*models.FormulaInfo),
		styles:    make(map[string]*models.Style),
		sheetInfo: make(map[string]*models.SheetInfo),
	}
}

func (p *workbookParts) formulaCount() int {
	n := 0
	for _, sheet := range p.formulas {
		n += len(sheet)
	}
	return n
}

// numFmtCodes maps builtin OOXML numFmtId values to their format
// codes.
var numFmtCodes = map[int]string{
	1: "0", 2: "0.00", 3: "#,##0", 4: "#,##0.00",
	9: "0%", 10: "0.00%", 11: "0.00E+00", 12: "# ?/?", 13: "# ??/??",
	14: "m/d/yy", 15: "d-mmm-yy", 16: "d-mmm", 17: "mmm-yy",
	18: "h:mm AM/PM", 19: "h:mm:ss AM/PM", 20: "h:mm", 21: "h:mm:ss",
	22: "m/d/yy h:mm", 37: "#,##0;(#,##0)", 38: "#,##0;[Red](#,##0)",
	39: "#,##0.00;(#,##0.00)", 40: "#,##0.00;[Red](#,##0.00)",
	45: "mm:ss", 46: "[h]:mm:ss", 47: "mm:ss.0", 48: "##0.0E+0", 49: "@",
}

// borderStyleNames maps excelize border style indices to OOXML style
// names.
var borderStyleNames = map[int]string{
	1: "thin", 2: "medium", 3: "dashed", 4: "dotted", 5: "thick",
	6: "double", 7: "hair", 8: "mediumDashed", 9: "dashDot",
	10: "mediumDashDot", 11: "dashDotDot", 12: "mediumDashDotDot",
	13: "slantDashDot",
}

// patternFillNames maps excelize fill pattern indices to OOXML
// pattern names.
var patternFillNames = map[int]string{
	1: "solid", 2: "mediumGray", 3: "darkGray", 4: "lightGray",
	5: "darkHorizontal", 6: "darkVertical", 7: "darkDown", 8: "darkUp",
	9: "darkGrid", 10: "darkTrellis", 11: "lightHorizontal",
	12: "lightVertical", 13: "lightDown", 14: "lightUp", 15: "lightGrid",
	16: "lightTrellis", 17: "gray125", 18: "gray0625",
}

// readXLSX reads an .xlsx workbook into its serialized parts.
func readXLSX(path string, includeStyles, includeImages bool) (*workbookParts, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	parts := newWorkbookParts()
	parts.workbook.Meta = readDocMeta(f, sheets, parts.metadata)

	styleCache := make(map[int]*models.Style)
	for _, sheet := range sheets {
		ws, err := readSheet(f, sheet, includeStyles, styleCache, parts)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		parts.workbook.Worksheets[sheet] = ws
	}

	if includeImages {
		parts.images = readImages(f, sheets)
	}
	return parts, nil
}

// readDocMeta fills the workbook metadata and returns the meta map for
// the serialized workbook. All values are strings.
func readDocMeta(f *excelize.File, sheets []string, md *models.WorkbookMetadata) map[string]string {
	md.SheetNames = sheets
	md.SheetCount = len(sheets)
	if idx := f.GetActiveSheetIndex(); idx >= 0 {
		md.ActiveSheet = f.GetSheetName(idx)
	}

	meta := make(map[string]string)
	if props, err := f.GetDocProps(); err == nil && props != nil {
		md.Properties = models.DocProperties{
			Title:          props.Title,
			Subject:        props.Subject,
			Creator:        props.Creator,
			Keywords:       props.Keywords,
			Description:    props.Description,
			LastModifiedBy: props.LastModifiedBy,
			Created:        props.Created,
			Modified:       props.Modified,
			Category:       props.Category,
			ContentStatus:  props.ContentStatus,
			Version:        props.Version,
			Revision:       props.Revision,
		}
		for k, v := range map[string]string{
			"title": props.Title, "subject": props.Subject,
			"creator": props.Creator, "keywords": props.Keywords,
			"description": props.Description, "lastModifiedBy": props.LastModifiedBy,
			"created": props.Created, "modified": props.Modified,
			"category": props.Category, "contentStatus": props.ContentStatus,
			"version": props.Version, "revision": props.Revision,
		} {
			if v != "" {
				meta[k] = v
			}
		}
	}
	for _, dn := range f.GetDefinedName() {
		md.DefinedNames[dn.Name] = models.DefinedName{RefersTo: dn.RefersTo, Scope: dn.Scope}
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

func readSheet(f *excelize.File, sheet string, includeStyles bool, styleCache map[int]*models.Style, parts *workbookParts) (*models.Worksheet, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	ws := &models.Worksheet{Cells: make(map[string]*models.Cell)}
	var hyperlinkCells []string

	for r, row := range rows {
		for c, display := range row {
			ref, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				continue
			}
			formula, _ := f.GetCellFormula(sheet, ref)
			if display == "" && formula == "" {
				continue
			}

			cell := &models.Cell{Value: typedValue(f, sheet, ref, display)}
			if formula != "" {
				cell.Formula = "=" + formula
				if parts.formulas[sheet] == nil {
					parts.formulas[sheet] = make(map[string]*models.FormulaInfo)
				}
				parts.formulas[sheet][ref] = &models.FormulaInfo{
					Formula:         cell.Formula,
					CalculatedValue: cell.Value,
					DataType:        dataTypeCode(f, sheet, ref),
				}
			}
			if ok, target, _ := f.GetCellHyperLink(sheet, ref); ok && target != "" {
				cell.Hyperlink = &models.Hyperlink{Target: target}
				hyperlinkCells = append(hyperlinkCells, ref)
			}
			if includeStyles {
				if st := cellStyle(f, sheet, ref, styleCache); st != nil {
					cell.Style = st
					parts.styles[sheet+"!"+ref] = st
				}
			}
			ws.Cells[ref] = cell
		}
	}

	readSheetExtras(f, sheet, ws, hyperlinkCells)
	parts.sheetInfo[sheet] = sheetInfoFromRows(f, sheet, rows)
	return ws, nil
}

// readSheetExtras adds merged ranges, the hyperlink summary, data
// validations and sheet-scoped defined names.
func readSheetExtras(f *excelize.File, sheet string, ws *models.Worksheet, hyperlinkCells []string) {
	if merged, err := f.GetMergeCells(sheet); err == nil {
		for _, m := range merged {
			ws.MergedCells = append(ws.MergedCells, m.GetStartAxis()+":"+m.GetEndAxis())
		}
	}
	if len(hyperlinkCells) > 0 {
		sort.Strings(hyperlinkCells)
		ws.HyperlinksSummary = &models.HyperlinkSummary{Count: len(hyperlinkCells), Cells: hyperlinkCells}
	}
	if dvs, err := f.GetDataValidations(sheet); err == nil && len(dvs) > 0 {
		vi := &models.ValidationInfo{SheetName: sheet}
		for _, dv := range dvs {
			if dv == nil {
				continue
			}
			if fields := validationFields(dv); len(fields) > 0 {
				vi.Validations = append(vi.Validations, fields)
			}
		}
		if len(vi.Validations) > 0 {
			ws.DataValidation = vi
		}
	}
	for _, dn := range f.GetDefinedName() {
		if dn.Scope == sheet {
			ws.NamedItems = append(ws.NamedItems, models.NamedItem{
				Name:     dn.Name,
				RefersTo: dn.RefersTo,
				Scope:    dn.Scope,
				Comment:  dn.Comment,
			})
		}
	}
}

// typedValue converts the display string to a typed value: numbers
// become float64, booleans become bool, everything else (dates
// included) keeps the formatted string.
func typedValue(f *excelize.File, sheet, ref, display string) interface{} {
	t, err := f.GetCellType(sheet, ref)
	if err != nil {
		return display
	}
	switch t {
	case excelize.CellTypeNumber, excelize.CellTypeFormula, excelize.CellTypeUnset:
		raw, err := f.GetCellValue(sheet, ref, excelize.Options{RawCellValue: true})
		if err != nil {
			return display
		}
		if raw != display {
			// A differing raw value means a number format is applied;
			// keep the formatted string for dates, the number otherwise.
			if isDateFormatted(f, sheet, ref) {
				return display
			}
		}
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n
		}
	case excelize.CellTypeBool:
		return display == "TRUE"
	}
	return display
}

// isDateFormatted reports whether the cell's number format is one of
// the builtin date/time formats or a custom format with date tokens.
func isDateFormatted(f *excelize.File, sheet, ref string) bool {
	idx, err := f.GetCellStyle(sheet, ref)
	if err != nil || idx == 0 {
		return false
	}
	st, err := f.GetStyle(idx)
	if err != nil || st == nil {
		return false
	}
	if st.NumFmt >= 14 && st.NumFmt <= 22 || st.NumFmt >= 45 && st.NumFmt <= 47 {
		return true
	}
	if st.CustomNumFmt != nil {
		return strings.ContainsAny(*st.CustomNumFmt, "ymdhs")
	}
	return false
}

func dataTypeCode(f *excelize.File, sheet, ref string) string {
	t, err := f.GetCellType(sheet, ref)
	if err != nil {
		return "n"
	}
	switch t {
	case excelize.CellTypeBool:
		return "b"
	case excelize.CellTypeDate:
		return "d"
	case excelize.CellTypeError:
		return "e"
	case excelize.CellTypeFormula:
		return "f"
	case excelize.CellTypeInlineString, excelize.CellTypeSharedString:
		return "s"
	}
	return "n"
}

func cellStyle(f *excelize.File, sheet, ref string, cache map[int]*models.Style) *models.Style {
	idx, err := f.GetCellStyle(sheet, ref)
	if err != nil || idx == 0 {
		return nil
	}
	if st, ok := cache[idx]; ok {
		return st
	}
	st := convertStyle(f, idx)
	cache[idx] = st
	return st
}

// convertStyle resolves a style index into the serialized style.
// Returns nil when every section is empty, so default-styled cells
// carry no style block.
func convertStyle(f *excelize.File, idx int) *models.Style {
	raw, err := f.GetStyle(idx)
	if err != nil || raw == nil {
		return nil
	}
	out := &models.Style{}
	if fnt := raw.Font; fnt != nil {
		font := &models.Font{
			Name:      fnt.Family,
			Size:      fnt.Size,
			Bold:      fnt.Bold,
			Italic:    fnt.Italic,
			Underline: fnt.Underline,
			Color:     fnt.Color,
		}
		if *font != (models.Font{}) {
			out.Font = font
		}
	}
	if raw.Fill.Type == "gradient" {
		fill := &models.Fill{FillType: "gradient"}
		if len(raw.Fill.Color) > 0 {
			fill.StartColor = raw.Fill.Color[0]
		}
		if len(raw.Fill.Color) > 1 {
			fill.EndColor = raw.Fill.Color[1]
		}
		out.Fill = fill
	} else if raw.Fill.Pattern > 0 {
		fill := &models.Fill{FillType: patternFillNames[raw.Fill.Pattern]}
		if len(raw.Fill.Color) > 0 {
			fill.StartColor = raw.Fill.Color[0]
		}
		out.Fill = fill
	}
	if len(raw.Border) > 0 {
		b := &models.Border{}
		for _, edge := range raw.Border {
			name := borderStyleNames[edge.Style]
			switch edge.Type {
			case "top":
				b.Top = name
			case "right":
				b.Right = name
			case "bottom":
				b.Bottom = name
			case "left":
				b.Left = name
			}
		}
		if *b != (models.Border{}) {
			out.Border = b
		}
	}
	if al := raw.Alignment; al != nil {
		a := &models.Alignment{Horizontal: al.Horizontal, Vertical: al.Vertical, WrapText: al.WrapText}
		if a.Horizontal != "" || a.Vertical != "" || a.WrapText {
			out.Alignment = a
		}
	}
	if raw.CustomNumFmt != nil {
		out.NumberFormat = *raw.CustomNumFmt
	} else if raw.NumFmt > 0 {
		out.NumberFormat = numFmtCodes[raw.NumFmt]
	}
	if out.Font == nil && out.Fill == nil && out.Border == nil && out.Alignment == nil && out.NumberFormat == "" {
		return nil
	}
	return out
}

// validationFields flattens a data validation to string values,
// dropping empty fields.
func validationFields(dv *excelize.DataValidation) map[string]string {
	m := make(map[string]string)
	set := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	set("type", dv.Type)
	set("operator", dv.Operator)
	set("sqref", dv.Sqref)
	set("formula1", stripFormulaTag(dv.Formula1, "formula1"))
	set("formula2", stripFormulaTag(dv.Formula2, "formula2"))
	if dv.AllowBlank {
		m["allow_blank"] = "true"
	}
	if dv.Prompt != nil {
		set("prompt", *dv.Prompt)
	}
	if dv.PromptTitle != nil {
		set("prompt_title", *dv.PromptTitle)
	}
	if dv.Error != nil {
		set("error", *dv.Error)
	}
	if dv.ErrorTitle != nil {
		set("error_title", *dv.ErrorTitle)
	}
	return m
}

// Formula1/Formula2 carry their XML element wrapper on read.
func stripFormulaTag(s, tag string) string {
	s = strings.TrimPrefix(s, "<"+tag+">")
	return strings.TrimSuffix(s, "</"+tag+">")
}

// sheetInfoFromRows summarizes the tabular shape of a sheet: the first
// row is treated as the header, the rest as data.
func sheetInfoFromRows(f *excelize.File, sheet string, rows [][]string) *models.SheetInfo {
	info := &models.SheetInfo{
		Rows:       len(rows),
		DataTypes:  make(map[string]string),
		NullCounts: make(map[string]int),
	}
	for _, row := range rows {
		if len(row) > info.Columns {
			info.Columns = len(row)
		}
	}
	if len(rows) == 0 {
		return info
	}

	header := rows[0]
	for c := 0; c < info.Columns; c++ {
		name := ""
		if c < len(header) {
			name = header[c]
		}
		if name == "" {
			name, _ = excelize.ColumnNumberToName(c + 1)
		}
		info.ColumnNames = append(info.ColumnNames, name)

		tally := make(map[string]int)
		empty := 0
		for r := 1; r < len(rows); r++ {
			v := ""
			if c < len(rows[r]) {
				v = rows[r][c]
			}
			if v == "" {
				empty++
				continue
			}
			ref, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				continue
			}
			tally[columnKind(f, sheet, ref)]++
		}
		info.NullCounts[name] = empty
		info.DataTypes[name] = predominantKind(tally)
	}
	return info
}

func columnKind(f *excelize.File, sheet, ref string) string {
	t, err := f.GetCellType(sheet, ref)
	if err != nil {
		return "text"
	}
	switch t {
	case excelize.CellTypeBool:
		return "bool"
	case excelize.CellTypeDate:
		return "date"
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if isDateFormatted(f, sheet, ref) {
			return "date"
		}
		return "number"
	}
	return "text"
}

func predominantKind(tally map[string]int) string {
	kind, best := "empty", 0
	keys := make([]string, 0, len(tally))
	for k := range tally {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if tally[k] > best {
			kind, best = k, tally[k]
		}
	}
	return kind
}
