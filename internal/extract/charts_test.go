package extract

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

const lineChartXML = `<?xml version="1.0" encoding="UTF-8"?>
<chartSpace>
  <chart>
    <title>
      <tx><rich><p><r><t>Quarterly </t></r><r><t>Scores</t></r></p></rich></tx>
    </title>
    <plotArea>
      <lineChart>
        <ser>
          <idx val="0"/>
          <order val="0"/>
          <tx><strRef><f>Sheet1!$B$1</f><strCache><pt idx="0"><v>Score</v></pt></strCache></strRef></tx>
          <cat><strRef><f>Sheet1!$A$2:$A$4</f></strRef></cat>
          <val><numRef><f>Sheet1!$B$2:$B$4</f></numRef></val>
        </ser>
      </lineChart>
      <catAx><axPos val="b"/></catAx>
      <valAx>
        <axPos val="l"/>
        <scaling><logBase val="10"/><max val="100"/></scaling>
        <numFmt formatCode="0.00" sourceLinked="0"/>
      </valAx>
    </plotArea>
    <legend><legendPos val="b"/></legend>
  </chart>
</chartSpace>`

func TestBuildChart(t *testing.T) {
	chart, err := buildChart([]byte(lineChartXML))
	if err != nil {
		t.Fatalf("buildChart failed: %v", err)
	}
	if chart.Type != "line" {
		t.Errorf("Type = %q, want line", chart.Type)
	}
	if chart.Title == nil || chart.Title.Text != "Quarterly Scores" {
		t.Errorf("Title = %+v, want joined rich text", chart.Title)
	}
	if chart.Legend == nil || chart.Legend.Position != "bottom" {
		t.Errorf("Legend = %+v, want bottom", chart.Legend)
	}
	if len(chart.Series) != 1 {
		t.Fatalf("Series = %d, want 1", len(chart.Series))
	}
	s := chart.Series[0]
	if s.Title != "Score" {
		t.Errorf("series title = %q, want cached Score", s.Title)
	}
	if s.Categories != "Sheet1!$A$2:$A$4" || s.Values != "Sheet1!$B$2:$B$4" {
		t.Errorf("series ranges = %q / %q, want sheet refs", s.Categories, s.Values)
	}
	if len(chart.Axes) != 2 {
		t.Fatalf("Axes = %d, want 2", len(chart.Axes))
	}
	if chart.Axes[0].Position != "bottom" || !chart.Axes[0].Visible {
		t.Errorf("cat axis = %+v, want visible bottom", chart.Axes[0])
	}
	val := chart.Axes[1]
	if val.Position != "left" || val.ScaleType != "log" || val.NumberFormat != "0.00" {
		t.Errorf("val axis = %+v, want left log 0.00", val)
	}
	if val.Maximum == nil || *val.Maximum != 100 {
		t.Errorf("val axis max = %v, want 100", val.Maximum)
	}
}

func TestBuildChart_titleFromCellRef(t *testing.T) {
	data := []byte(`<chartSpace><chart>
		<title><tx><strRef><f>Sheet1!$A$1</f><strCache><pt><v>From Cell</v></pt></strCache></strRef></tx></title>
		<plotArea><pieChart><ser><idx val="0"/><order val="0"/></ser></pieChart></plotArea>
	</chart></chartSpace>`)
	chart, err := buildChart(data)
	if err != nil {
		t.Fatalf("buildChart failed: %v", err)
	}
	if chart.Type != "pie" {
		t.Errorf("Type = %q, want pie", chart.Type)
	}
	if chart.Title == nil || chart.Title.Text != "From Cell" || chart.Title.Formula != "Sheet1!$A$1" {
		t.Errorf("Title = %+v, want cached text and formula", chart.Title)
	}
}

func TestBuildChart_invalidXML(t *testing.T) {
	if _, err := buildChart([]byte("<chartSpace><chart>")); err == nil {
		t.Error("expected a decode error")
	}
}

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		baseDir string
		target  string
		want    string
	}{
		{"xl", "worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"xl/worksheets", "../drawings/drawing1.xml", "xl/drawings/drawing1.xml"},
		{"xl/drawings", "../charts/chart1.xml", "xl/charts/chart1.xml"},
		{"xl", "/xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
	}
	for _, tt := range tests {
		if got := resolveTarget(tt.baseDir, tt.target); got != tt.want {
			t.Errorf("resolveTarget(%q, %q) = %q, want %q", tt.baseDir, tt.target, got, tt.want)
		}
	}
}

func TestRelsPathFor(t *testing.T) {
	tests := []struct {
		part string
		want string
	}{
		{"xl/worksheets/sheet1.xml", "xl/worksheets/_rels/sheet1.xml.rels"},
		{"xl/drawings/drawing1.xml", "xl/drawings/_rels/drawing1.xml.rels"},
	}
	for _, tt := range tests {
		if got := relsPathFor(tt.part); got != tt.want {
			t.Errorf("relsPathFor(%q) = %q, want %q", tt.part, got, tt.want)
		}
	}
}

// TestReadZipFacts drives the package scan against a workbook written
// by excelize: a column chart anchored at D4 plus sheet protection.
func TestReadZipFacts(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "charted.xlsx")

	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "wave")
	f.SetCellValue("Sheet1", "B1", "score")
	f.SetCellValue("Sheet1", "A2", "w1")
	f.SetCellValue("Sheet1", "B2", 4)
	f.SetCellValue("Sheet1", "A3", "w2")
	f.SetCellValue("Sheet1", "B3", 5)
	if err := f.AddChart("Sheet1", "D4", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       "Sheet1!$B$1",
			Categories: "Sheet1!$A$2:$A$3",
			Values:     "Sheet1!$B$2:$B$3",
		}},
		Title:  []excelize.RichTextRun{{Text: "Scores by wave"}},
		Legend: excelize.ChartLegend{Position: "right"},
	}); err != nil {
		t.Fatalf("failed to add chart: %v", err)
	}
	if err := f.ProtectSheet("Sheet1", &excelize.SheetProtectionOptions{
		Password:          "pw",
		SelectLockedCells: true,
	}); err != nil {
		t.Fatalf("failed to protect sheet: %v", err)
	}
	if err := f.SaveAs(src); err != nil {
		t.Fatalf("failed to save fixture: %v", err)
	}

	facts, err := readZipFacts(src)
	if err != nil {
		t.Fatalf("readZipFacts failed: %v", err)
	}
	if facts.hasVBA {
		t.Error("hasVBA = true, want false")
	}
	if len(facts.protected) != 1 || facts.protected[0] != "Sheet1" {
		t.Errorf("protected = %v, want [Sheet1]", facts.protected)
	}

	charts := facts.charts["Sheet1"]
	if len(charts) != 1 {
		t.Fatalf("charts on Sheet1 = %d, want 1", len(charts))
	}
	chart := charts[0]
	if chart.Type != "bar" {
		t.Errorf("Type = %q, want bar", chart.Type)
	}
	if chart.Title == nil || chart.Title.Text != "Scores by wave" {
		t.Errorf("Title = %+v, want Scores by wave", chart.Title)
	}
	if chart.Anchor != "D4" {
		t.Errorf("Anchor = %q, want D4", chart.Anchor)
	}
	if len(chart.Series) != 1 || chart.Series[0].Values != "Sheet1!$B$2:$B$3" {
		t.Errorf("Series = %+v, want the value range", chart.Series)
	}
	if chart.Legend == nil || chart.Legend.Position != "right" {
		t.Errorf("Legend = %+v, want right", chart.Legend)
	}
	if len(chart.Axes) != 2 {
		t.Errorf("Axes = %d, want cat and val", len(chart.Axes))
	}

	// The same facts must land on the serialized worksheet.
	e := NewExtractor(Options{DataDir: filepath.Join(dir, "data"), IncludeCharts: true}, nil, nil, nil)
	res, err := e.ExtractFile(context.Background(), src)
	if err != nil {
		t.Fatalf("ExtractFile failed: %v", err)
	}
	if res.ChartCount != 1 {
		t.Errorf("ChartCount = %d, want 1", res.ChartCount)
	}
	if res.Metadata == nil || len(res.Metadata.Security.ProtectedSheets) != 1 {
		t.Errorf("Metadata.Security = %+v, want one protected sheet", res.Metadata)
	}
	ws := res.Workbook.Worksheets["Sheet1"]
	if len(ws.Charts) != 1 || ws.Charts[0].Name == "" {
		t.Errorf("worksheet charts = %+v, want one named chart", ws.Charts)
	}
}

func TestReadZipFacts_chartsExcluded(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "charted.xlsx")

	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "wave")
	f.SetCellValue("Sheet1", "B1", 4)
	if err := f.AddChart("Sheet1", "D4", &excelize.Chart{
		Type:   excelize.Col,
		Series: []excelize.ChartSeries{{Values: "Sheet1!$B$1:$B$1"}},
	}); err != nil {
		t.Fatalf("failed to add chart: %v", err)
	}
	if err := f.SaveAs(src); err != nil {
		t.Fatalf("failed to save fixture: %v", err)
	}

	e := NewExtractor(Options{DataDir: filepath.Join(dir, "data")}, nil, nil, nil)
	res, err := e.ExtractFile(context.Background(), src)
	if err != nil {
		t.Fatalf("ExtractFile failed: %v", err)
	}
	if res.ChartCount != 0 {
		t.Errorf("ChartCount = %d, want 0 with charts excluded", res.ChartCount)
	}
}
