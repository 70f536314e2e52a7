// Package pipeline drives the staged analysis of an extracted workbook:
// keywords, codes, themes, concepts and the conceptual model, each stage
// prompting the LLM with the outputs of the stages before it.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/bunrui/internal/catalog"
	"github.com/hyperjump/bunrui/internal/config"
	"github.com/hyperjump/bunrui/internal/fileid"
	"github.com/hyperjump/bunrui/internal/llm"
	"github.com/hyperjump/bunrui/internal/models"
	"github.com/hyperjump/bunrui/internal/prompt"
)

// dataFile is the extracted cell data every pipeline reads.
const dataFile = "sheetjson.json"

// Options configures a Runner.
type Options struct {
	Model               string
	ScenarioGUID        string
	KeywordScenarioGUID string
	Steps               config.StepToggles
	DataSampleBytes     int
}

// Runner executes pipeline stages over an extracted workbook directory.
type Runner struct {
	opts    Options
	store   *prompt.Store
	client  llm.Client
	catalog catalog.Catalog
	logger  *zap.Logger
}

// NewRunner creates a pipeline runner. The catalog may be nil, in which
// case runs are not recorded.
func NewRunner(opts Options, store *prompt.Store, client llm.Client, cat catalog.Catalog, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DataSampleBytes <= 0 {
		opts.DataSampleBytes = 4096
	}
	return &Runner{
		opts:    opts,
		store:   store,
		client:  client,
		catalog: cat,
		logger:  logger,
	}
}

// StageOutcome reports one executed stage.
type StageOutcome struct {
	Stage         string
	OutputPath    string
	PromptBytes   int
	ResponseBytes int
	Duration      time.Duration
}

// RunResult reports a full pipeline run.
type RunResult struct {
	RunID       string
	WorkbookDir string
	Stages      []StageOutcome
	Skipped     []string
}

// Run executes all enabled stages over workbookDir in order. Disabled
// stages are skipped; their existing output files still feed later
// stages. The first stage error aborts the run.
func (r *Runner) Run(ctx context.Context, workbookDir string) (*RunResult, error) {
	dir, err := filepath.Abs(workbookDir)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(dir, dataFile)); err != nil {
		return nil, fmt.Errorf("not an extracted workbook dir (missing %s): %w", dataFile, err)
	}

	result := &RunResult{WorkbookDir: dir}
	result.RunID = r.createRun(ctx, dir)

	for _, stage := range Stages {
		if !r.opts.Steps.Enabled(stage.Name) {
			r.logger.Info("Stage disabled, skipping",
				zap.String("stage", stage.Name))
			result.Skipped = append(result.Skipped, stage.Name)
			continue
		}
		outcome, err := r.runStage(ctx, stage, dir)
		if err != nil {
			r.finishRun(ctx, result.RunID, models.RunStatusFailed, err.Error())
			return result, err
		}
		result.Stages = append(result.Stages, *outcome)
		r.recordStage(ctx, result.RunID, outcome)
	}

	r.finishRun(ctx, result.RunID, models.RunStatusCompleted, "")
	return result, nil
}

// RunStage executes a single stage by name. Inputs the stage needs must
// already exist in workbookDir.
func (r *Runner) RunStage(ctx context.Context, stageName, workbookDir string) (*StageOutcome, error) {
	stage, ok := StageByName(stageName)
	if !ok {
		return nil, fmt.Errorf("unknown stage %q", stageName)
	}
	dir, err := filepath.Abs(workbookDir)
	if err != nil {
		return nil, err
	}
	return r.runStage(ctx, stage, dir)
}

func (r *Runner) runStage(ctx context.Context, stage Stage, dir string) (*StageOutcome, error) {
	start := time.Now()

	values := make(map[string]string, len(stage.Placeholders))
	for name, source := range stage.Placeholders {
		content, err := r.placeholderValue(stage.Name, source, dir)
		if err != nil {
			return nil, err
		}
		values[name] = content
	}

	tpl := r.store.Get(stage.TemplateKey)
	if tpl == prompt.NotFound {
		return nil, fmt.Errorf("stage %s: template %s not found", stage.Name, stage.TemplateKey)
	}
	filled := prompt.Fill(tpl, values)

	system := r.store.Get(prompt.KeySystem)
	if system == prompt.NotFound {
		system = ""
	}

	scenario := r.opts.ScenarioGUID
	if stage.UsesKeywordGUID && r.opts.KeywordScenarioGUID != "" {
		scenario = r.opts.KeywordScenarioGUID
	}

	resp, err := r.client.Complete(ctx, &llm.Request{
		Stage:        stage.Name,
		System:       system,
		Prompt:       filled,
		Model:        r.opts.Model,
		ScenarioGUID: scenario,
		MaxTokens:    prompt.MaxTokens(stage.TemplateKey),
	})
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", stage.Name, err)
	}

	outPath := filepath.Join(dir, stage.OutputFile)
	if err := appendOutput(outPath, resp.Content); err != nil {
		return nil, fmt.Errorf("stage %s: %w", stage.Name, err)
	}

	outcome := &StageOutcome{
		Stage:         stage.Name,
		OutputPath:    outPath,
		PromptBytes:   len(filled),
		ResponseBytes: len(resp.Content),
		Duration:      time.Since(start),
	}
	r.logger.Info("Stage completed",
		zap.String("stage", stage.Name),
		zap.Int("prompt_bytes", outcome.PromptBytes),
		zap.Int("response_bytes", outcome.ResponseBytes),
		zap.Duration("took", outcome.Duration))
	return outcome, nil
}

// placeholderValue resolves one placeholder source: the full cell data,
// a sample of it, or a prior stage's output file.
func (r *Runner) placeholderValue(stageName, source, dir string) (string, error) {
	switch source {
	case srcData:
		return r.dataContent(stageName, dir)
	case srcDataSample:
		content, err := r.dataContent(stageName, dir)
		if err != nil {
			return "", err
		}
		return sampleHead(content, r.opts.DataSampleBytes), nil
	default:
		return readLines(stageName, filepath.Join(dir, source), source)
	}
}

// dataContent loads sheetjson.json and re-serializes it in trimmed form,
// dropping style and hyperlink noise the prompts do not need.
func (r *Runner) dataContent(stageName, dir string) (string, error) {
	raw, err := os.ReadFile(filepath.Join(dir, dataFile))
	if err != nil {
		return "", fmt.Errorf("stage %s: missing input %s: %w", stageName, dataFile, err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return "", fmt.Errorf("stage %s: input %s is empty", stageName, dataFile)
	}

	var wb models.Workbook
	if err := json.Unmarshal(raw, &wb); err != nil {
		return "", fmt.Errorf("stage %s: failed to parse %s: %w", stageName, dataFile, err)
	}
	trimmed, err := json.MarshalIndent(wb.Trim(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("stage %s: failed to serialize %s: %w", stageName, dataFile, err)
	}
	return string(trimmed), nil
}

// sampleHead returns the first n bytes of s cut back to the last full
// line, so the sample never ends mid-record.
func sampleHead(s string, n int) string {
	if len(s) <= n {
		if strings.HasSuffix(s, "\n") {
			return s
		}
		return s + "\n"
	}
	head := s[:n]
	if i := strings.LastIndexByte(head, '\n'); i > 0 {
		head = head[:i]
	}
	return head + "\n"
}

// readLines loads a prior stage's output file as cleaned lines joined
// with newlines. Blank lines are dropped.
func readLines(stageName, path, name string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("stage %s: missing input %s: %w", stageName, name, err)
	}
	var lines []string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("stage %s: input %s is empty", stageName, name)
	}
	return strings.Join(lines, "\n") + "\n", nil
}

// appendOutput appends content plus a trailing newline to path.
// Appending is the contract: repeated runs accumulate.
func appendOutput(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteString(content + "\n"); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// createRun opens a catalog run for the workbook, resolving the
// workbook by its output dir name. Catalog failures only log.
func (r *Runner) createRun(ctx context.Context, dir string) string {
	if r.catalog == nil {
		return ""
	}
	run := &models.Run{WorkbookID: r.workbookID(ctx, dir)}
	if err := r.catalog.CreateRun(ctx, run); err != nil {
		r.logger.Warn("Failed to record run", zap.Error(err))
		return ""
	}
	return run.ID
}

func (r *Runner) finishRun(ctx context.Context, runID, status, errMsg string) {
	if r.catalog == nil || runID == "" {
		return
	}
	if err := r.catalog.FinishRun(ctx, runID, status, errMsg); err != nil {
		r.logger.Warn("Failed to finish run", zap.Error(err))
	}
}

func (r *Runner) recordStage(ctx context.Context, runID string, outcome *StageOutcome) {
	if r.catalog == nil || runID == "" {
		return
	}
	err := r.catalog.RecordStage(ctx, &models.StageResult{
		RunID:         runID,
		Stage:         outcome.Stage,
		PromptBytes:   outcome.PromptBytes,
		ResponseBytes: outcome.ResponseBytes,
		DurationMS:    outcome.Duration.Milliseconds(),
		OutputPath:    outcome.OutputPath,
	})
	if err != nil {
		r.logger.Warn("Failed to record stage",
			zap.String("stage", outcome.Stage), zap.Error(err))
	}
}

// workbookID resolves the catalog workbook for an output dir. The dir
// name is the extraction stem; if no record matches, fall back to an
// ID derived from the dir path so the run is still attributable.
func (r *Runner) workbookID(ctx context.Context, dir string) string {
	if rec, err := r.catalog.FindWorkbookByStem(ctx, filepath.Base(dir)); err == nil {
		return rec.ID
	}
	return fileid.WorkbookID(dir)
}
