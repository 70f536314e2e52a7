package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/bunrui/internal/models"
)

// zipFacts is what the raw package scan recovers beyond the cell API:
// chart definitions per sheet, VBA presence and protected sheets.
type zipFacts struct {
	charts    map[string][]*models.Chart
	hasVBA    bool
	protected []string
}

type sheetRef struct {
	name string
	rid  string
}

type rel struct {
	id     string
	typ    string
	target string
}

// readZipFacts walks the OOXML package: workbook.xml names the sheets,
// the relationship parts chain each sheet to its drawing and each
// drawing to its chart parts. Parts that fail to decode are skipped.
func readZipFacts(filePath string) (*zipFacts, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook archive: %w", err)
	}
	defer zr.Close()

	parts := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		parts[f.Name] = f
	}

	facts := &zipFacts{charts: make(map[string][]*models.Chart)}
	if _, ok := parts["xl/vbaProject.bin"]; ok {
		facts.hasVBA = true
	}

	wbRels := decodeRels(parts, "xl/_rels/workbook.xml.rels")
	chartNum := 0
	for _, sh := range decodeSheetRefs(parts) {
		target := relTarget(wbRels, sh.rid)
		if target == "" {
			continue
		}
		sheetPart := resolveTarget("xl", target)
		data, err := readPart(parts, sheetPart)
		if err != nil {
			continue
		}
		if bytes.Contains(data, []byte("<sheetProtection")) {
			facts.protected = append(facts.protected, sh.name)
		}

		sheetRels := decodeRels(parts, relsPathFor(sheetPart))
		drawingTarget := relByTypeSuffix(sheetRels, "/drawing")
		if drawingTarget == "" {
			continue
		}
		drawingPart := resolveTarget(path.Dir(sheetPart), drawingTarget)
		drawingData, err := readPart(parts, drawingPart)
		if err != nil {
			continue
		}
		var drawing xmlDrawing
		if err := xml.Unmarshal(drawingData, &drawing); err != nil {
			continue
		}

		drawingRels := decodeRels(parts, relsPathFor(drawingPart))
		for _, a := range drawing.anchors() {
			frame := a.Frame
			if frame == nil || frame.Graphic.Data.Chart.RID == "" {
				continue
			}
			chartTarget := relTarget(drawingRels, frame.Graphic.Data.Chart.RID)
			if chartTarget == "" {
				continue
			}
			chartData, err := readPart(parts, resolveTarget(path.Dir(drawingPart), chartTarget))
			if err != nil {
				continue
			}
			chart, err := buildChart(chartData)
			if err != nil {
				continue
			}
			chartNum++
			chart.Name = frame.NvPr.CNvPr.Name
			if chart.Name == "" {
				chart.Name = fmt.Sprintf("Chart %d", chartNum)
			}
			if a.From != nil {
				if ref, err := excelize.CoordinatesToCellName(a.From.Col+1, a.From.Row+1); err == nil {
					chart.Anchor = ref
				}
			}
			facts.charts[sh.name] = append(facts.charts[sh.name], chart)
		}
	}
	return facts, nil
}

func readPart(parts map[string]*zip.File, name string) ([]byte, error) {
	f, ok := parts[name]
	if !ok {
		return nil, fmt.Errorf("missing part %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open part %s: %w", name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// resolveTarget resolves a relationship target against the directory
// of the part that declared it. Targets starting with "/" are
// package-absolute.
func resolveTarget(baseDir, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(baseDir, target)
}

func relsPathFor(part string) string {
	return path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
}

func decodeSheetRefs(parts map[string]*zip.File) []sheetRef {
	data, err := readPart(parts, "xl/workbook.xml")
	if err != nil {
		return nil
	}
	var doc xmlWorkbook
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil
	}
	refs := make([]sheetRef, 0, len(doc.Sheets.Sheet))
	for _, s := range doc.Sheets.Sheet {
		refs = append(refs, sheetRef{name: s.Name, rid: s.RID})
	}
	return refs
}

func decodeRels(parts map[string]*zip.File, name string) []rel {
	data, err := readPart(parts, name)
	if err != nil {
		return nil
	}
	var doc xmlRelationships
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil
	}
	rels := make([]rel, 0, len(doc.Relationship))
	for _, r := range doc.Relationship {
		rels = append(rels, rel{id: r.ID, typ: r.Type, target: r.Target})
	}
	return rels
}

func relTarget(rels []rel, id string) string {
	for _, r := range rels {
		if r.id == id {
			return r.target
		}
	}
	return ""
}

func relByTypeSuffix(rels []rel, suffix string) string {
	for _, r := range rels {
		if strings.HasSuffix(r.typ, suffix) {
			return r.target
		}
	}
	return ""
}

// buildChart decodes one chart part into its data-bearing form: type,
// title, legend, axes and series ranges. Styling is not carried.
func buildChart(data []byte) (*models.Chart, error) {
	var cs xmlChartSpace
	if err := xml.Unmarshal(data, &cs); err != nil {
		return nil, fmt.Errorf("failed to decode chart part: %w", err)
	}

	chart := &models.Chart{Title: titleFromXML(cs.Chart.Title)}
	if lg := cs.Chart.Legend; lg != nil {
		chart.Legend = &models.ChartLegend{Position: legendPosNames[lg.Pos.Val], Visible: true}
	}

	pa := cs.Chart.PlotArea
	groups := []struct {
		kind string
		list []xmlChartGroup
	}{
		{"bar", pa.Bar}, {"bar3D", pa.Bar3D},
		{"line", pa.Line}, {"line3D", pa.Line3D},
		{"pie", pa.Pie}, {"pie3D", pa.Pie3D}, {"ofPie", pa.OfPie},
		{"doughnut", pa.Doughnut},
		{"area", pa.Area}, {"area3D", pa.Area3D},
		{"scatter", pa.Scatter}, {"bubble", pa.Bubble},
		{"radar", pa.Radar}, {"stock", pa.Stock},
		{"surface", pa.Surface}, {"surface3D", pa.Surface3D},
	}
	for _, g := range groups {
		if len(g.list) == 0 {
			continue
		}
		if chart.Type == "" {
			chart.Type = g.kind
		}
		for _, cg := range g.list {
			for _, s := range cg.Series {
				chart.Series = append(chart.Series, seriesFromXML(s))
			}
		}
	}

	for _, ax := range pa.CatAx {
		chart.Axes = append(chart.Axes, axisFromXML(ax))
	}
	for _, ax := range pa.ValAx {
		chart.Axes = append(chart.Axes, axisFromXML(ax))
	}
	for _, ax := range pa.DateAx {
		chart.Axes = append(chart.Axes, axisFromXML(ax))
	}
	for _, ax := range pa.SerAx {
		chart.Axes = append(chart.Axes, axisFromXML(ax))
	}
	return chart, nil
}

var legendPosNames = map[string]string{
	"b": "bottom", "l": "left", "r": "right", "t": "top", "tr": "topRight",
}

var axPosNames = map[string]string{
	"b": "bottom", "l": "left", "r": "right", "t": "top",
}

func titleFromXML(t *xmlTitle) *models.ChartTitle {
	if t == nil || t.Tx == nil {
		return nil
	}
	out := &models.ChartTitle{}
	if rich := t.Tx.Rich; rich != nil {
		var b strings.Builder
		for _, p := range rich.Paragraphs {
			for _, r := range p.Runs {
				b.WriteString(r.Text)
			}
		}
		out.Text = b.String()
	}
	if sr := t.Tx.StrRef; sr != nil {
		out.Formula = sr.F
		if out.Text == "" && len(sr.Cache) > 0 {
			out.Text = strings.Join(sr.Cache, " ")
		}
	}
	if out.Text == "" && out.Formula == "" {
		return nil
	}
	return out
}

func seriesFromXML(s xmlSeries) models.ChartSeries {
	out := models.ChartSeries{Idx: s.Idx.Val, Order: s.Order.Val}
	if s.Tx != nil {
		switch {
		case s.Tx.StrRef != nil && len(s.Tx.StrRef.Cache) > 0:
			out.Title = strings.Join(s.Tx.StrRef.Cache, " ")
		case s.Tx.StrRef != nil:
			out.Title = s.Tx.StrRef.F
		default:
			out.Title = s.Tx.V
		}
	}
	out.Categories = s.Cat.ref()
	out.Values = s.Val.ref()
	out.XValues = s.XVal.ref()
	out.YValues = s.YVal.ref()
	out.BubbleSize = s.BubbleSize.ref()
	return out
}

func axisFromXML(ax xmlAxis) models.ChartAxis {
	out := models.ChartAxis{Position: axPosNames[ax.AxPos.Val], Visible: true}
	if ax.Delete != nil && (ax.Delete.Val == "1" || ax.Delete.Val == "true") {
		out.Visible = false
	}
	if ax.NumFmt != nil {
		out.NumberFormat = ax.NumFmt.FormatCode
	}
	out.Minimum = floatVal(ax.Scaling.Min)
	out.Maximum = floatVal(ax.Scaling.Max)
	out.MajorUnit = floatVal(ax.MajorUnit)
	out.MinorUnit = floatVal(ax.MinorUnit)
	if ax.Scaling.LogBase != nil {
		out.ScaleType = "log"
	}
	return out
}

func floatVal(v *xmlFloatVal) *float64 {
	if v == nil {
		return nil
	}
	f := v.Val
	return &f
}

// XML shapes for the parts this scan decodes. encoding/xml matches
// elements and attributes by local name, so the r: and c: prefixes in
// the documents need no namespace handling here.

type xmlWorkbook struct {
	Sheets struct {
		Sheet []struct {
			Name string `xml:"name,attr"`
			RID  string `xml:"id,attr"`
		} `xml:"sheet"`
	} `xml:"sheets"`
}

type xmlRelationships struct {
	Relationship []struct {
		ID     string `xml:"Id,attr"`
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

type xmlDrawing struct {
	TwoCell  []xmlAnchor `xml:"twoCellAnchor"`
	OneCell  []xmlAnchor `xml:"oneCellAnchor"`
	Absolute []xmlAnchor `xml:"absoluteAnchor"`
}

func (d xmlDrawing) anchors() []xmlAnchor {
	out := make([]xmlAnchor, 0, len(d.TwoCell)+len(d.OneCell)+len(d.Absolute))
	out = append(out, d.TwoCell...)
	out = append(out, d.OneCell...)
	out = append(out, d.Absolute...)
	return out
}

type xmlAnchor struct {
	From  *xmlMarker       `xml:"from"`
	Frame *xmlGraphicFrame `xml:"graphicFrame"`
}

type xmlMarker struct {
	Col int `xml:"col"`
	Row int `xml:"row"`
}

type xmlGraphicFrame struct {
	NvPr struct {
		CNvPr struct {
			Name string `xml:"name,attr"`
		} `xml:"cNvPr"`
	} `xml:"nvGraphicFramePr"`
	Graphic struct {
		Data struct {
			Chart struct {
				RID string `xml:"id,attr"`
			} `xml:"chart"`
		} `xml:"graphicData"`
	} `xml:"graphic"`
}

type xmlChartSpace struct {
	Chart struct {
		Title    *xmlTitle   `xml:"title"`
		PlotArea xmlPlotArea `xml:"plotArea"`
		Legend   *xmlLegend  `xml:"legend"`
	} `xml:"chart"`
}

type xmlTitle struct {
	Tx *struct {
		Rich *struct {
			Paragraphs []struct {
				Runs []struct {
					Text string `xml:"t"`
				} `xml:"r"`
			} `xml:"p"`
		} `xml:"rich"`
		StrRef *xmlStrRef `xml:"strRef"`
	} `xml:"tx"`
}

type xmlStrRef struct {
	F     string   `xml:"f"`
	Cache []string `xml:"strCache>pt>v"`
}

type xmlLegend struct {
	Pos struct {
		Val string `xml:"val,attr"`
	} `xml:"legendPos"`
}

type xmlPlotArea struct {
	Bar       []xmlChartGroup `xml:"barChart"`
	Bar3D     []xmlChartGroup `xml:"bar3DChart"`
	Line      []xmlChartGroup `xml:"lineChart"`
	Line3D    []xmlChartGroup `xml:"line3DChart"`
	Pie       []xmlChartGroup `xml:"pieChart"`
	Pie3D     []xmlChartGroup `xml:"pie3DChart"`
	OfPie     []xmlChartGroup `xml:"ofPieChart"`
	Doughnut  []xmlChartGroup `xml:"doughnutChart"`
	Area      []xmlChartGroup `xml:"areaChart"`
	Area3D    []xmlChartGroup `xml:"area3DChart"`
	Scatter   []xmlChartGroup `xml:"scatterChart"`
	Bubble    []xmlChartGroup `xml:"bubbleChart"`
	Radar     []xmlChartGroup `xml:"radarChart"`
	Stock     []xmlChartGroup `xml:"stockChart"`
	Surface   []xmlChartGroup `xml:"surfaceChart"`
	Surface3D []xmlChartGroup `xml:"surface3DChart"`
	CatAx     []xmlAxis       `xml:"catAx"`
	ValAx     []xmlAxis       `xml:"valAx"`
	DateAx    []xmlAxis       `xml:"dateAx"`
	SerAx     []xmlAxis       `xml:"serAx"`
}

type xmlChartGroup struct {
	Series []xmlSeries `xml:"ser"`
}

type xmlSeries struct {
	Idx   xmlIntVal `xml:"idx"`
	Order xmlIntVal `xml:"order"`
	Tx    *struct {
		StrRef *xmlStrRef `xml:"strRef"`
		V      string     `xml:"v"`
	} `xml:"tx"`
	Cat        *xmlDataRef `xml:"cat"`
	Val        *xmlDataRef `xml:"val"`
	XVal       *xmlDataRef `xml:"xVal"`
	YVal       *xmlDataRef `xml:"yVal"`
	BubbleSize *xmlDataRef `xml:"bubbleSize"`
}

type xmlIntVal struct {
	Val int `xml:"val,attr"`
}

type xmlDataRef struct {
	NumRef         *xmlFRef `xml:"numRef"`
	StrRef         *xmlFRef `xml:"strRef"`
	MultiLvlStrRef *xmlFRef `xml:"multiLvlStrRef"`
}

// ref returns the range formula behind whichever reference kind the
// element carries.
func (d *xmlDataRef) ref() string {
	if d == nil {
		return ""
	}
	switch {
	case d.NumRef != nil:
		return d.NumRef.F
	case d.StrRef != nil:
		return d.StrRef.F
	case d.MultiLvlStrRef != nil:
		return d.MultiLvlStrRef.F
	}
	return ""
}

type xmlFRef struct {
	F string `xml:"f"`
}

type xmlAxis struct {
	AxPos struct {
		Val string `xml:"val,attr"`
	} `xml:"axPos"`
	Delete *struct {
		Val string `xml:"val,attr"`
	} `xml:"delete"`
	NumFmt *struct {
		FormatCode string `xml:"formatCode,attr"`
	} `xml:"numFmt"`
	Scaling struct {
		LogBase *xmlFloatVal `xml:"logBase"`
		Max     *xmlFloatVal `xml:"max"`
		Min     *xmlFloatVal `xml:"min"`
	} `xml:"scaling"`
	MajorUnit *xmlFloatVal `xml:"majorUnit"`
	MinorUnit *xmlFloatVal `xml:"minorUnit"`
}

type xmlFloatVal struct {
	Val float64 `xml:"val,attr"`
}
