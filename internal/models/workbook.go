// Package models defines core data structures for workbook extraction,
// analysis reports, and pipeline runs.
package models

// Workbook is the full serialized form of one workbook file.
type Workbook struct {
	Meta       map[string]string     `json:"meta,omitempty"`
	Worksheets map[string]*Worksheet `json:"worksheets"`
}

// Worksheet holds everything extracted from a single sheet.
type Worksheet struct {
	Cells             map[string]*Cell  `json:"cells"`
	Charts            []*Chart          `json:"charts,omitempty"`
	NamedItems        []NamedItem       `json:"namedItems,omitempty"`
	HyperlinksSummary *HyperlinkSummary `json:"hyperlinks_summary,omitempty"`
	DataValidation    *ValidationInfo   `json:"data_validation,omitempty"`
	MergedCells       []string          `json:"merged_cells,omitempty"`
}

// Cell is one populated cell. Value is always emitted (null for
// formula-only cells); Style only when style extraction is on and the
// cell's style is non-default.
type Cell struct {
	Value     interface{} `json:"value"`
	Formula   string      `json:"formula,omitempty"`
	Style     *Style      `json:"style,omitempty"`
	Hyperlink *Hyperlink  `json:"hyperlink,omitempty"`
}

// Hyperlink is a cell's link target.
type Hyperlink struct {
	Target string `json:"target"`
}

// HyperlinkSummary aggregates a sheet's hyperlinks.
type HyperlinkSummary struct {
	Count int      `json:"count"`
	Cells []string `json:"cells_with_hyperlinks"`
}

// ValidationInfo lists a sheet's data-validation rules, string-valued.
type ValidationInfo struct {
	SheetName   string              `json:"sheet_name"`
	Validations []map[string]string `json:"validations"`
}

// Style is the non-default formatting of a cell. Only populated
// sections are emitted.
type Style struct {
	Font         *Font      `json:"font,omitempty"`
	Fill         *Fill      `json:"fill,omitempty"`
	Border       *Border    `json:"border,omitempty"`
	Alignment    *Alignment `json:"alignment,omitempty"`
	NumberFormat string     `json:"number_format,omitempty"`
}

// Font holds font attributes of a styled cell.
type Font struct {
	Name      string  `json:"name,omitempty"`
	Size      float64 `json:"size,omitempty"`
	Bold      bool    `json:"bold,omitempty"`
	Italic    bool    `json:"italic,omitempty"`
	Underline string  `json:"underline,omitempty"`
	Color     string  `json:"color,omitempty"`
}

// Fill holds pattern-fill attributes of a styled cell.
type Fill struct {
	FillType   string `json:"fill_type,omitempty"`
	StartColor string `json:"start_color,omitempty"`
	EndColor   string `json:"end_color,omitempty"`
}

// Border names the border styles per edge.
type Border struct {
	Top    string `json:"top,omitempty"`
	Right  string `json:"right,omitempty"`
	Bottom string `json:"bottom,omitempty"`
	Left   string `json:"left,omitempty"`
}

// Alignment holds cell alignment attributes.
type Alignment struct {
	Horizontal string `json:"horizontal,omitempty"`
	Vertical   string `json:"vertical,omitempty"`
	WrapText   bool   `json:"wrap_text,omitempty"`
}

// Chart is the data-bearing description of a chart: series ranges,
// titles, axes. No styling is carried.
type Chart struct {
	Name   string        `json:"name,omitempty"`
	Type   string        `json:"type"`
	Anchor string        `json:"anchor,omitempty"`
	Title  *ChartTitle   `json:"title,omitempty"`
	Legend *ChartLegend  `json:"legend,omitempty"`
	Axes   []ChartAxis   `json:"axes,omitempty"`
	Series []ChartSeries `json:"series,omitempty"`
}

// ChartTitle is a chart or axis title, either literal text or a cell
// reference formula.
type ChartTitle struct {
	Text    string `json:"text,omitempty"`
	Formula string `json:"formula,omitempty"`
}

// ChartLegend keeps only the legend's position and visibility.
type ChartLegend struct {
	Position string `json:"position,omitempty"`
	Visible  bool   `json:"visible"`
}

// ChartAxis keeps the functional axis properties.
type ChartAxis struct {
	Position     string   `json:"position,omitempty"`
	Visible      bool     `json:"visible"`
	NumberFormat string   `json:"numberFormat,omitempty"`
	Minimum      *float64 `json:"minimum,omitempty"`
	Maximum      *float64 `json:"maximum,omitempty"`
	MajorUnit    *float64 `json:"majorUnit,omitempty"`
	MinorUnit    *float64 `json:"minorUnit,omitempty"`
	ScaleType    string   `json:"scaleType,omitempty"`
}

// ChartSeries is one series' data ranges.
type ChartSeries struct {
	Idx        int    `json:"idx"`
	Order      int    `json:"order"`
	Title      string `json:"title,omitempty"`
	Categories string `json:"categories,omitempty"`
	Values     string `json:"values,omitempty"`
	XValues    string `json:"xValues,omitempty"`
	YValues    string `json:"yValues,omitempty"`
	BubbleSize string `json:"bubbleSize,omitempty"`
}

// NamedItem is a defined name visible from a sheet or the workbook.
type NamedItem struct {
	Name     string `json:"name"`
	RefersTo string `json:"refersTo,omitempty"`
	Scope    string `json:"scope,omitempty"`
	Comment  string `json:"comment,omitempty"`
}

// ImageInfo locates one extracted embedded image.
type ImageInfo struct {
	Sheet    string `json:"sheet"`
	Filename string `json:"filename"`
	Filepath string `json:"filepath"`
	Anchor   string `json:"anchor,omitempty"`
}

// WorkbookMetadata is the metadata.json document.
type WorkbookMetadata struct {
	SheetNames   []string               `json:"sheet_names"`
	SheetCount   int                    `json:"sheet_count"`
	ActiveSheet  string                 `json:"active_sheet"`
	Properties   DocProperties          `json:"properties"`
	DefinedNames map[string]DefinedName `json:"defined_names"`
	Security     SecurityInfo           `json:"security"`
}

// DocProperties are the workbook's document properties, string-valued.
type DocProperties struct {
	Title          string `json:"title,omitempty"`
	Subject        string `json:"subject,omitempty"`
	Creator        string `json:"creator,omitempty"`
	Keywords       string `json:"keywords,omitempty"`
	Description    string `json:"description,omitempty"`
	LastModifiedBy string `json:"last_modified_by,omitempty"`
	Created        string `json:"created,omitempty"`
	Modified       string `json:"modified,omitempty"`
	Category       string `json:"category,omitempty"`
	ContentStatus  string `json:"content_status,omitempty"`
	Version        string `json:"version,omitempty"`
	Revision       string `json:"revision,omitempty"`
}

// DefinedName is one workbook- or sheet-scoped defined name.
type DefinedName struct {
	RefersTo string `json:"refers_to"`
	Scope    string `json:"scope"`
}

// SecurityInfo flags workbook security features.
type SecurityInfo struct {
	HasVBA          bool     `json:"has_vba"`
	ProtectedSheets []string `json:"protected_sheets,omitempty"`
}

// FormulaInfo is one formula cell in formulas.json.
type FormulaInfo struct {
	Formula         string      `json:"formula"`
	CalculatedValue interface{} `json:"calculated_value"`
	DataType        string      `json:"data_type"`
}

// SheetInfo summarizes a sheet's tabular shape for sheet_info.json.
type SheetInfo struct {
	Rows        int               `json:"rows"`
	Columns     int               `json:"columns"`
	ColumnNames []string          `json:"column_names"`
	DataTypes   map[string]string `json:"data_types"`
	NullCounts  map[string]int    `json:"null_counts"`
}

// ExtractionSummary is the extraction_summary.json document.
type ExtractionSummary struct {
	ExtractionTimestamp string              `json:"extraction_timestamp"`
	WorkbookInfo        WorkbookInfo        `json:"workbook_info"`
	ExtractedComponents ExtractedComponents `json:"extracted_components"`
	FilesCreated        []string            `json:"files_created"`
}

// WorkbookInfo is the workbook-level block of the extraction summary.
type WorkbookInfo struct {
	SheetCount int      `json:"sheet_count"`
	SheetNames []string `json:"sheet_names"`
	HasVBA     bool     `json:"has_vba"`
}

// ExtractedComponents counts what the extraction produced.
type ExtractedComponents struct {
	DataSheets int `json:"data_sheets"`
	Formulas   int `json:"formulas"`
	Images     int `json:"images"`
	Charts     int `json:"charts"`
	Styles     int `json:"styles"`
}

// Trim returns a copy of the workbook reduced to data-bearing content:
// document metadata and per-cell styles are dropped, and cells with no
// value are removed. This is the form fed to the analysis pipeline.
func (w *Workbook) Trim() *Workbook {
	out := &Workbook{Worksheets: make(map[string]*Worksheet, len(w.Worksheets))}
	for name, ws := range w.Worksheets {
		tws := &Worksheet{
			Cells:             make(map[string]*Cell),
			Charts:            ws.Charts,
			NamedItems:        ws.NamedItems,
			HyperlinksSummary: ws.HyperlinksSummary,
			DataValidation:    ws.DataValidation,
			MergedCells:       ws.MergedCells,
		}
		for ref, c := range ws.Cells {
			if c.Value == nil {
				continue
			}
			tws.Cells[ref] = &Cell{
				Value:     c.Value,
				Formula:   c.Formula,
				Hyperlink: c.Hyperlink,
			}
		}
		out.Worksheets[name] = tws
	}
	return out
}

// CellCount returns the number of populated cells across all sheets.
func (w *Workbook) CellCount() int {
	n := 0
	for _, ws := range w.Worksheets {
		n += len(ws.Cells)
	}
	return n
}

// ChartCount returns the number of charts across all sheets.
func (w *Workbook) ChartCount() int {
	n := 0
	for _, ws := range w.Worksheets {
		n += len(ws.Charts)
	}
	return n
}
