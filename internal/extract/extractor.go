// Package extract reads Excel workbooks and serializes their cells,
// formulas, styles, images, charts and metadata to JSON trees on disk.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/bunrui/internal/analyze"
	"github.com/hyperjump/bunrui/internal/catalog"
	"github.com/hyperjump/bunrui/internal/fileid"
	"github.com/hyperjump/bunrui/internal/models"
)

// Options configures what the extractor reads and where it writes.
type Options struct {
	DataDir       string
	Formats       []string
	IncludeStyles bool
	IncludeImages bool
	IncludeCharts bool
	Force         bool
}

// Extractor reads workbook files and writes their serialized parts
// under the data directory, one subdirectory per workbook stem.
type Extractor struct {
	opts     Options
	catalog  catalog.Catalog
	analyzer *analyze.Analyzer
	logger   *zap.Logger
}

// Result is one workbook's extraction outcome.
type Result struct {
	WorkbookID   string
	Stem         string
	OutputDir    string
	Skipped      bool
	SheetCount   int
	CellCount    int
	FormulaCount int
	ImageCount   int
	ChartCount   int
	StyleCount   int
	Files        []string
	Summary      *models.ExtractionSummary
	Analysis     *models.AnalysisReport
	Workbook     *models.Workbook
	Metadata     *models.WorkbookMetadata
}

// DirResult aggregates a directory extraction.
type DirResult struct {
	Processed int
	Failed    int
	Skipped   int
	Results   []*Result
}

// NewExtractor creates an extractor. The catalog and analyzer may be
// nil; without a catalog every workbook is re-extracted, without an
// analyzer no analysis report is written.
func NewExtractor(opts Options, cat catalog.Catalog, analyzer *analyze.Analyzer, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(opts.Formats) == 0 {
		opts.Formats = []string{".xlsx", ".xls"}
	}
	return &Extractor{opts: opts, catalog: cat, analyzer: analyzer, logger: logger}
}

// ExtractFile extracts one workbook. Unchanged workbooks are skipped
// unless Force is set.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (*Result, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat workbook: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(abs))
	if !e.extensionAllowed(ext) {
		return nil, fmt.Errorf("unsupported workbook format %q", ext)
	}

	id := fileid.WorkbookID(abs)
	if e.catalog != nil && !e.opts.Force {
		unchanged, err := e.catalog.IsUnchanged(ctx, id, fi.ModTime().UnixNano(), fi.Size())
		if err == nil && unchanged {
			e.logger.Debug("workbook unchanged, skipping", zap.String("path", abs))
			st := stem(abs)
			return &Result{
				WorkbookID: id,
				Stem:       st,
				OutputDir:  filepath.Join(e.opts.DataDir, st),
				Skipped:    true,
			}, nil
		}
	}

	start := time.Now()
	var parts *workbookParts
	switch ext {
	case ".xls":
		parts, err = readXLS(abs, e.opts.IncludeStyles)
	default:
		parts, err = readXLSX(abs, e.opts.IncludeStyles, e.opts.IncludeImages)
	}
	if err != nil {
		return nil, err
	}

	if ext != ".xls" {
		// The cell API cannot see charts, VBA blobs or sheet
		// protection; those come from the raw package parts.
		if facts, err := readZipFacts(abs); err == nil {
			attachZipFacts(parts, facts, e.opts.IncludeCharts)
		} else {
			e.logger.Warn("package scan failed", zap.String("path", abs), zap.Error(err))
		}
	}

	result, err := e.writeOutputs(abs, id, parts)
	if err != nil {
		return nil, err
	}

	if e.catalog != nil {
		rec := &models.WorkbookRecord{
			ID:          id,
			Path:        abs,
			Stem:        result.Stem,
			SourceMtime: fi.ModTime().UnixNano(),
			SourceSize:  fi.Size(),
			ExtractedAt: time.Now(),
			SheetCount:  result.SheetCount,
		}
		if err := e.catalog.RecordWorkbook(ctx, rec); err != nil {
			e.logger.Warn("failed to record workbook", zap.String("id", id), zap.Error(err))
		}
	}

	e.logger.Info("extracted workbook",
		zap.String("path", abs),
		zap.Int("sheets", result.SheetCount),
		zap.Int("cells", result.CellCount),
		zap.Duration("took", time.Since(start)))
	return result, nil
}

// ExtractDirectory extracts every matching workbook directly in dir.
// Temp files are ignored and per-file failures do not abort the run.
func (e *Extractor) ExtractDirectory(ctx context.Context, dir string) (*DirResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	out := &DirResult{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "~$") {
			continue
		}
		if !e.extensionAllowed(strings.ToLower(filepath.Ext(name))) {
			continue
		}
		res, err := e.ExtractFile(ctx, filepath.Join(dir, name))
		if err != nil {
			out.Failed++
			e.logger.Warn("extraction failed", zap.String("file", name), zap.Error(err))
			continue
		}
		if res.Skipped {
			out.Skipped++
		} else {
			out.Processed++
		}
		out.Results = append(out.Results, res)
	}
	return out, nil
}

// Handles reports whether the extractor is configured for the file's
// extension.
func (e *Extractor) Handles(name string) bool {
	return e.extensionAllowed(strings.ToLower(filepath.Ext(name)))
}

func (e *Extractor) extensionAllowed(ext string) bool {
	for _, f := range e.opts.Formats {
		allowed := strings.ToLower(f)
		if !strings.HasPrefix(allowed, ".") {
			allowed = "." + allowed
		}
		if ext == allowed {
			return true
		}
	}
	return false
}

func attachZipFacts(parts *workbookParts, facts *zipFacts, includeCharts bool) {
	parts.metadata.Security.HasVBA = facts.hasVBA
	parts.metadata.Security.ProtectedSheets = facts.protected
	if !includeCharts {
		return
	}
	for sheet, charts := range facts.charts {
		if ws := parts.workbook.Worksheets[sheet]; ws != nil {
			ws.Charts = charts
		}
	}
}

// writeOutputs writes the serialized parts under <data_dir>/<stem>/ and
// assembles the extraction summary.
func (e *Extractor) writeOutputs(srcPath, id string, parts *workbookParts) (*Result, error) {
	st := stem(srcPath)
	outDir := filepath.Join(e.opts.DataDir, st)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	res := &Result{
		WorkbookID:   id,
		Stem:         st,
		OutputDir:    outDir,
		SheetCount:   len(parts.workbook.Worksheets),
		CellCount:    parts.workbook.CellCount(),
		FormulaCount: parts.formulaCount(),
		ImageCount:   len(parts.images),
		ChartCount:   parts.workbook.ChartCount(),
		StyleCount:   len(parts.styles),
		Workbook:     parts.workbook,
		Metadata:     parts.metadata,
	}

	var files []string
	write := func(name string, v interface{}) error {
		if err := writeJSON(filepath.Join(outDir, name), v); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		files = append(files, name)
		return nil
	}

	if err := write("sheetjson.json", parts.workbook); err != nil {
		return nil, err
	}
	if err := write("metadata.json", parts.metadata); err != nil {
		return nil, err
	}
	if err := write("formulas.json", parts.formulas); err != nil {
		return nil, err
	}
	if e.opts.IncludeStyles {
		if err := write("styles.json", parts.styles); err != nil {
			return nil, err
		}
	}
	if err := write("sheet_info.json", parts.sheetInfo); err != nil {
		return nil, err
	}

	if len(parts.images) > 0 {
		imgDir := filepath.Join(outDir, "images")
		if err := os.MkdirAll(imgDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create images dir: %w", err)
		}
		infos := make([]models.ImageInfo, 0, len(parts.images))
		for i, img := range parts.images {
			name := fmt.Sprintf("image%d%s", i+1, img.ext)
			if err := os.WriteFile(filepath.Join(imgDir, name), img.data, 0o644); err != nil {
				return nil, fmt.Errorf("failed to write image %s: %w", name, err)
			}
			infos = append(infos, models.ImageInfo{
				Sheet:    img.sheet,
				Filename: name,
				Filepath: "images/" + name,
				Anchor:   img.anchor,
			})
			files = append(files, "images/"+name)
		}
		if err := write("images.json", infos); err != nil {
			return nil, err
		}
	}

	if e.analyzer != nil {
		res.Analysis = e.analyzer.Analyze(parts.workbook)
		if err := write("comprehensive_analysis.json", res.Analysis); err != nil {
			return nil, err
		}
	}

	files = append(files, "extraction_summary.json")
	summary := &models.ExtractionSummary{
		ExtractionTimestamp: time.Now().Format(time.RFC3339),
		WorkbookInfo: models.WorkbookInfo{
			SheetCount: len(parts.metadata.SheetNames),
			SheetNames: parts.metadata.SheetNames,
			HasVBA:     parts.metadata.Security.HasVBA,
		},
		ExtractedComponents: models.ExtractedComponents{
			DataSheets: res.SheetCount,
			Formulas:   res.FormulaCount,
			Images:     res.ImageCount,
			Charts:     res.ChartCount,
			Styles:     res.StyleCount,
		},
		FilesCreated: files,
	}
	if err := writeJSON(filepath.Join(outDir, "extraction_summary.json"), summary); err != nil {
		return nil, fmt.Errorf("failed to write extraction_summary.json: %w", err)
	}

	res.Files = files
	res.Summary = summary
	return res, nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// stem returns the file name up to the first dot.
func stem(p string) string {
	base := filepath.Base(p)
	if i := strings.Index(base, "."); i >= 0 {
		return base[:i]
	}
	return base
}
