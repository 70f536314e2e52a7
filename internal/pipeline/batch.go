package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/bunrui/internal/extract"
	"github.com/hyperjump/bunrui/internal/models"
	"github.com/hyperjump/bunrui/pkg/utils"
)

// BatchProcessor runs extraction, analysis and the prompt pipeline over
// every workbook in a directory and writes per-file and batch-level
// summaries plus a timestamped processing log.
type BatchProcessor struct {
	extractor *extract.Extractor
	runner    *Runner
	dataDir   string
	logger    *zap.Logger
}

// NewBatchProcessor creates a batch processor. The runner may be nil to
// run extraction and analysis only.
func NewBatchProcessor(extractor *extract.Extractor, runner *Runner, dataDir string, logger *zap.Logger) *BatchProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchProcessor{
		extractor: extractor,
		runner:    runner,
		dataDir:   dataDir,
		logger:    logger,
	}
}

// Batch processes every workbook in inputDir. A workbook failure is
// logged and counted, never aborts the batch.
func (p *BatchProcessor) Batch(ctx context.Context, inputDir string) (*models.BatchSummary, error) {
	in, err := filepath.Abs(inputDir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}
	if err := os.MkdirAll(p.dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	start := time.Now()
	logPath := filepath.Join(p.dataDir, "processing_log_"+start.Format("20060102_150405")+".txt")
	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create processing log: %w", err)
	}
	defer logFile.Close()
	logf := func(format string, args ...interface{}) {
		fmt.Fprintf(logFile, "[%s] %s\n",
			time.Now().Format("2006-01-02 15:04:05"), fmt.Sprintf(format, args...))
	}

	logf("Starting batch processing of %s", in)

	summary := &models.BatchSummary{
		ProcessingTimestamp: start.Format(time.RFC3339),
		ProcessedFiles:      []string{},
		FailedFiles:         []string{},
		OutputFolder:        p.dataDir,
		LogFile:             logPath,
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			logf("Aborted: %v", err)
			return summary, err
		}
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "~$") || !p.extractor.Handles(name) {
			continue
		}

		summary.TotalFiles++
		logf("Processing %s", name)
		res, err := p.processOne(ctx, filepath.Join(in, name))
		if err != nil {
			summary.FailedProcessing++
			summary.FailedFiles = append(summary.FailedFiles, name)
			logf("FAILED %s: %v", name, err)
			p.logger.Warn("workbook processing failed",
				zap.String("file", name), zap.Error(err))
			continue
		}
		summary.ProcessedSuccessfully++
		summary.ProcessedFiles = append(summary.ProcessedFiles, name)
		logf("Completed %s -> %s", name, res.OutputDir)
	}

	summary.SuccessRate = utils.Ratio(summary.ProcessedSuccessfully, summary.TotalFiles)
	if err := writeJSON(filepath.Join(p.dataDir, "batch_processing_summary.json"), summary); err != nil {
		return summary, err
	}
	logf("Batch complete: %d/%d processed", summary.ProcessedSuccessfully, summary.TotalFiles)
	p.logger.Info("batch finished",
		zap.Int("total", summary.TotalFiles),
		zap.Int("processed", summary.ProcessedSuccessfully),
		zap.Int("failed", summary.FailedProcessing),
		zap.Duration("took", time.Since(start)))
	return summary, nil
}

// processOne extracts a workbook, runs the pipeline over its output dir
// and writes the per-file summary.
func (p *BatchProcessor) processOne(ctx context.Context, path string) (*extract.Result, error) {
	res, err := p.extractor.ExtractFile(ctx, path)
	if err != nil {
		return nil, err
	}
	if p.runner != nil {
		if _, err := p.runner.Run(ctx, res.OutputDir); err != nil {
			return nil, err
		}
	}
	if err := p.writeFileSummary(path, res); err != nil {
		return nil, err
	}
	return res, nil
}

// writeFileSummary writes file_summary.json into the workbook's output
// dir: source file info, the extraction and analysis summaries, and a
// stat of every output file.
func (p *BatchProcessor) writeFileSummary(srcPath string, res *extract.Result) error {
	fi, err := os.Stat(srcPath)
	if err != nil {
		return fmt.Errorf("failed to stat workbook: %w", err)
	}

	doc := &models.FileSummary{
		FileInfo: models.FileInfo{
			Filename:            filepath.Base(srcPath),
			FileSize:            fi.Size(),
			FilePath:            srcPath,
			ProcessingTimestamp: time.Now().Format(time.RFC3339),
		},
		ExtractionSummary: res.Summary,
		AnalysisSummary:   analysisSummary(res),
		OutputStructure:   make(map[string]models.FileStat),
	}

	err = filepath.WalkDir(res.OutputDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return walkErr
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(res.OutputDir, path)
		if err != nil {
			return err
		}
		doc.OutputStructure[rel] = models.FileStat{
			Size:     info.Size(),
			Modified: info.ModTime().Format(time.RFC3339),
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk output dir: %w", err)
	}

	return writeJSON(filepath.Join(res.OutputDir, "file_summary.json"), doc)
}

// analysisSummary condenses an extraction's analysis report; nil when
// analysis did not run.
func analysisSummary(res *extract.Result) *models.AnalysisSummary {
	if res.Analysis == nil {
		return nil
	}
	s := &models.AnalysisSummary{
		SheetsAnalyzed: len(res.Analysis.DataPatterns),
		NamedRanges:    len(res.Analysis.NamedRanges),
	}
	if deps := res.Analysis.FormulaDependencies; deps != nil {
		s.TotalFormulas = len(deps.Formulas)
		s.ComplexFormulas = len(deps.ComplexFormulas)
	}
	if res.Metadata != nil {
		s.ProtectionEnabled = len(res.Metadata.Security.ProtectedSheets) > 0
	}
	return s
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
