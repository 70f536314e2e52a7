// Package main is the bunrui CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/bunrui/internal/analyze"
	"github.com/hyperjump/bunrui/internal/catalog"
	"github.com/hyperjump/bunrui/internal/config"
	"github.com/hyperjump/bunrui/internal/extract"
	"github.com/hyperjump/bunrui/internal/llm"
	"github.com/hyperjump/bunrui/internal/models"
	"github.com/hyperjump/bunrui/internal/pipeline"
	"github.com/hyperjump/bunrui/internal/prompt"
	"github.com/hyperjump/bunrui/internal/watcher"
	"github.com/hyperjump/bunrui/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/bunrui/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists it
// is used, so that "bunrui batch" from the project dir uses the project's
// config (including debug). Returns the config and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "extract":
		runExtract()
	case "run":
		runRun()
	case "batch":
		runBatch()
	case "watch":
		runWatch()
	case "status":
		runStatus()
	case "prompts":
		runPrompts()
	case "query":
		runQuery()
	case "version", "--version", "-v":
		fmt.Printf("bunrui version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()
	return ctx, cancel
}

func runExtract() {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	input := fs.String("input", "", "workbook directory (default: paths.input_dir from config)")
	file := fs.String("file", "", "extract a single workbook file")
	force := fs.Bool("force", false, "re-extract workbooks the catalog reports unchanged")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode))

	components, err := initializeComponents(cfg, logger, debugMode, *force)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx, cancel := signalContext()
	defer cancel()

	if *file != "" {
		res, err := components.Extractor.ExtractFile(ctx, *file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Extraction failed: %v\n", err)
			os.Exit(1)
		}
		if res.Skipped {
			fmt.Printf("Unchanged, skipped: %s\n", *file)
			return
		}
		fmt.Printf("Extracted %s -> %s (%d sheets, %d cells, %d formulas)\n",
			*file, res.OutputDir, res.SheetCount, res.CellCount, res.FormulaCount)
		return
	}

	dir := *input
	if dir == "" {
		dir = cfg.Paths.InputDir
	}
	out, err := components.Extractor.ExtractDirectory(ctx, dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Extraction failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Extracted %d workbook(s) from %s (%d skipped, %d failed)\n",
		out.Processed, dir, out.Skipped, out.Failed)
	if out.Failed > 0 {
		os.Exit(1)
	}
}

func runRun() {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	dir := fs.String("dir", "", "extracted workbook directory")
	stage := fs.String("stage", "", "run a single stage: keywords, codes, themes, concepts, model")
	dryRun := fs.Bool("dry-run", false, "use the mock LLM backend instead of the configured one")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	if *dir == "" {
		fmt.Println("Usage: bunrui run -dir <extracted-dir> [-stage <stage>]")
		os.Exit(1)
	}

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *dryRun {
		cfg.LLM.Provider = "mock"
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode))

	components, err := initializeComponents(cfg, logger, debugMode, false)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()
	if components.Runner == nil {
		fmt.Fprintln(os.Stderr, "LLM backend not configured: set llm.base_url, or llm.provider to genai or mock")
		os.Exit(1)
	}

	ctx, cancel := signalContext()
	defer cancel()

	if *stage != "" {
		outcome, err := components.Runner.RunStage(ctx, *stage, *dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Stage failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Stage %s completed: %d bytes appended to %s\n",
			outcome.Stage, outcome.ResponseBytes, outcome.OutputPath)
		return
	}

	res, err := components.Runner.Run(ctx, *dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Pipeline failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Pipeline completed over %s\n", res.WorkbookDir)
	for _, st := range res.Stages {
		fmt.Printf("  %-9s %7d bytes -> %s\n", st.Stage, st.ResponseBytes, filepath.Base(st.OutputPath))
	}
	if len(res.Skipped) > 0 {
		fmt.Printf("  skipped: %s\n", strings.Join(res.Skipped, ", "))
	}
}

func runBatch() {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	input := fs.String("input", "", "workbook directory (default: paths.input_dir from config)")
	dryRun := fs.Bool("dry-run", false, "use the mock LLM backend instead of the configured one")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *dryRun {
		cfg.LLM.Provider = "mock"
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode))

	components, err := initializeComponents(cfg, logger, debugMode, false)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()
	if components.Runner == nil {
		logger.Warn("LLM backend not configured; batch runs extraction and analysis only")
	}

	ctx, cancel := signalContext()
	defer cancel()

	dir := *input
	if dir == "" {
		dir = cfg.Paths.InputDir
	}
	summary, err := components.Batch.Batch(ctx, dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Batch failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Processed %d/%d workbook(s); log: %s\n",
		summary.ProcessedSuccessfully, summary.TotalFiles, summary.LogFile)
	if summary.FailedProcessing > 0 {
		fmt.Printf("Failed: %s\n", strings.Join(summary.FailedFiles, ", "))
		os.Exit(1)
	}
}

func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	var extraDirs dirList
	fs.Var(&extraDirs, "dir", "additional directory to watch (repeatable)")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode))

	components, err := initializeComponents(cfg, logger, debugMode, false)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	runPipeline := cfg.Watch.RunPipeline
	if runPipeline && components.Runner == nil {
		logger.Warn("LLM backend not configured; watch runs extraction only")
		runPipeline = false
	}

	dirs := append([]string{}, cfg.Watch.Directories...)
	dirs = append(dirs, extraDirs...)
	if len(dirs) == 0 {
		dirs = []string{cfg.Paths.InputDir}
	}

	watchOpts := []watcher.Option{}
	if debugMode {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	if cfg.Watch.DebounceMS > 0 {
		watchOpts = append(watchOpts, watcher.WithDebounce(time.Duration(cfg.Watch.DebounceMS)*time.Millisecond))
	}

	watchSvc := watcher.NewWatcher(dirs, cfg.Extract.Formats, true, func(path string) {
		ctx := context.Background()
		res, err := components.Extractor.ExtractFile(ctx, path)
		if err != nil {
			logger.Warn("watch extract failed", zap.String("path", path), zap.Error(err))
			return
		}
		if res.Skipped {
			logger.Info("workbook unchanged", zap.String("path", path))
			return
		}
		if runPipeline {
			if _, err := components.Runner.Run(ctx, res.OutputDir); err != nil {
				logger.Warn("watch pipeline failed", zap.String("dir", res.OutputDir), zap.Error(err))
			}
		}
	}, watchOpts...)

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watchSvc.Start(watchCtx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	watchSvc.SyncExisting()
	logger.Info("watching for workbooks",
		zap.Strings("dirs", watchSvc.Directories()),
		zap.Bool("run_pipeline", runPipeline))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	watchSvc.Stop()
}

// dirList collects repeated -dir flags.
type dirList []string

func (d *dirList) String() string { return strings.Join(*d, ",") }

func (d *dirList) Set(v string) error {
	*d = append(*d, v)
	return nil
}

// statusResponse is the shape of status -output json.
type statusResponse struct {
	Workbooks  int64         `json:"workbooks"`
	Runs       int64         `json:"runs"`
	RecentRuns []*models.Run `json:"recent_runs,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	limit := fs.Int("limit", 10, "number of recent runs to show")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cat, err := catalog.NewSQLiteCatalog(cfg.Catalog.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open catalog: %v\n", err)
		os.Exit(1)
	}
	defer cat.Close()

	ctx := context.Background()
	workbooks, err := cat.CountWorkbooks(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Count workbooks failed: %v\n", err)
		os.Exit(1)
	}
	runs, err := cat.CountRuns(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Count runs failed: %v\n", err)
		os.Exit(1)
	}
	recent, err := cat.ListRuns(ctx, "", *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "List runs failed: %v\n", err)
		os.Exit(1)
	}
	status := statusResponse{Workbooks: workbooks, Runs: runs, RecentRuns: recent}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("workbooks:  %d   # extracted workbooks in the catalog\n", status.Workbooks)
		fmt.Printf("runs:       %d   # pipeline runs recorded\n", status.Runs)
		if len(status.RecentRuns) > 0 {
			fmt.Println()
			fmt.Println("# recent runs")
			for _, r := range status.RecentRuns {
				line := fmt.Sprintf("%s  %-9s  %s", r.StartedAt.Format("2006-01-02 15:04:05"), r.Status, r.WorkbookID)
				if r.Error != "" {
					line += "  " + utils.Truncate(r.Error, 60)
				}
				fmt.Println(line)
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func runPrompts() {
	fs := flag.NewFlagSet("prompts", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	write := fs.Bool("write", false, "write the default template files and exit")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *write {
		if err := prompt.WriteDefaults(cfg.Prompts.PromptsPath, cfg.Prompts.DetailsPath); err != nil {
			fmt.Fprintf(os.Stderr, "Write failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote default templates to %s and %s\n", cfg.Prompts.PromptsPath, cfg.Prompts.DetailsPath)
		return
	}

	store, err := prompt.Load(cfg.Prompts.PromptsPath, cfg.Prompts.DetailsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load prompts: %v\n", err)
		os.Exit(1)
	}
	for _, key := range store.Keys() {
		fmt.Printf("## %s (max %d tokens)\n%s\n\n", key, prompt.MaxTokens(key), store.Get(key))
	}
}

// buildQueryText joins all positional args with spaces so multi-word
// queries work the same with or without shell quoting.
func buildQueryText(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// queryArgsReorder moves any flags (and their values) that appear after
// the query text to the front of the slice so that flag.Parse() sees
// them. Go's flag package stops at the first non-flag argument.
func queryArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runQuery() {
	queryArgs := queryArgsReorder(os.Args[2:])
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(queryArgs)

	q := buildQueryText(fs.Args())
	if q == "" {
		fmt.Println("Usage: bunrui query [flags] <text>")
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	client, err := newLLMClient(cfg, logger, debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "LLM backend not configured: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()
	gw, ok := client.(*llm.GatewayClient)
	if !ok {
		fmt.Fprintln(os.Stderr, "query needs the gateway provider (completions mode)")
		os.Exit(1)
	}

	ctx, cancel := signalContext()
	defer cancel()
	text, err := gw.Query(ctx, q)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(text)
}

// Components holds initialized services.
type Components struct {
	Catalog   catalog.Catalog
	Store     *prompt.Store
	Client    llm.Client
	Extractor *extract.Extractor
	Runner    *pipeline.Runner
	Batch     *pipeline.BatchProcessor
}

func (c *Components) Close() {
	if c.Client != nil {
		_ = c.Client.Close()
	}
	if c.Catalog != nil {
		_ = c.Catalog.Close()
	}
}

// newLLMClient builds the configured LLM backend. Gateway needs
// llm.base_url; genai needs the API key env var.
func newLLMClient(cfg *config.Config, logger *zap.Logger, debug bool) (llm.Client, error) {
	switch cfg.LLM.Provider {
	case "mock":
		return llm.NewMockClient(), nil
	case "genai":
		key := os.Getenv(cfg.LLM.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("environment variable %s is not set", cfg.LLM.APIKeyEnv)
		}
		client, err := llm.NewGenAIClient(key, cfg.LLM.Model)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "gateway":
		if cfg.LLM.BaseURL == "" {
			return nil, fmt.Errorf("llm.base_url is not set")
		}
		opts := []llm.GatewayOption{}
		if debug {
			opts = append(opts, llm.WithLogger(logger))
		}
		client, err := llm.NewGatewayClient(llm.GatewayConfig{
			BaseURL:     cfg.LLM.BaseURL,
			APIKey:      os.Getenv(cfg.LLM.APIKeyEnv),
			Model:       cfg.LLM.Model,
			ModelPrefix: cfg.LLM.ModelPrefix,
			Timeout:     time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
			MaxRetries:  cfg.LLM.MaxRetries,
		}, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

// initializeComponents wires the catalog, prompt store, LLM backend,
// extractor and pipeline. A missing LLM backend disables the pipeline
// (Runner is nil) but leaves extraction and the catalog working.
func initializeComponents(cfg *config.Config, logger *zap.Logger, debug, force bool) (*Components, error) {
	if err := cfg.LLM.Validate(); err != nil {
		return nil, err
	}

	cat, err := catalog.NewSQLiteCatalog(cfg.Catalog.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize catalog: %w", err)
	}

	store, err := prompt.Load(cfg.Prompts.PromptsPath, cfg.Prompts.DetailsPath)
	if err != nil {
		_ = cat.Close()
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}

	var analyzer *analyze.Analyzer
	if cfg.Analyze.AnalysisEnabled() {
		analyzer = analyze.NewAnalyzer(cfg.Analyze.ComplexityThreshold)
	}

	extractor := extract.NewExtractor(extract.Options{
		DataDir:       cfg.Paths.DataDir,
		Formats:       cfg.Extract.Formats,
		IncludeStyles: cfg.Extract.StylesEnabled(),
		IncludeImages: cfg.Extract.ImagesEnabled(),
		IncludeCharts: cfg.Extract.ChartsEnabled(),
		Force:         force,
	}, cat, analyzer, logger)

	client, llmErr := newLLMClient(cfg, logger, debug)
	if llmErr != nil && logger != nil {
		logger.Info("LLM backend unavailable", zap.Error(llmErr))
	}

	var runner *pipeline.Runner
	if client != nil {
		runner = pipeline.NewRunner(pipeline.Options{
			Model:               cfg.LLM.Model,
			ScenarioGUID:        cfg.LLM.ScenarioGUID,
			KeywordScenarioGUID: cfg.LLM.KeywordScenarioGUID,
			Steps:               cfg.Pipeline.Steps,
			DataSampleBytes:     cfg.Pipeline.DataSampleBytes,
		}, store, client, cat, logger)
	}

	return &Components{
		Catalog:   cat,
		Store:     store,
		Client:    client,
		Extractor: extractor,
		Runner:    runner,
		Batch:     pipeline.NewBatchProcessor(extractor, runner, cfg.Paths.DataDir, logger),
	}, nil
}

func printUsage() {
	fmt.Println(`bunrui - workbook extraction and staged LLM analysis

Usage:
  bunrui extract [flags]          Extract workbooks to JSON trees
  bunrui run [flags]              Run pipeline stages over an extracted workbook
  bunrui batch [flags]            Extract + analyze + pipeline over a directory
  bunrui watch [flags]            Watch intake directories until interrupted
  bunrui status [flags]           Show catalog counts and recent runs
  bunrui prompts [flags]          Show resolved prompt templates
  bunrui query [flags] <text>     Send an ad-hoc completions query to the gateway
  bunrui version                  Show version
  bunrui help                     Show this help

Extract Flags:
  --config string    Config file path (default: /usr/local/etc/bunrui/config.yaml)
  --input string     Workbook directory (default: paths.input_dir from config)
  --file string      Extract a single workbook file
  --force            Re-extract workbooks the catalog reports unchanged
  --debug            Enable debug logging

Run Flags:
  --config string    Config file path
  --dir string       Extracted workbook directory (required)
  --stage string     Run a single stage: keywords, codes, themes, concepts, model
  --dry-run          Use the mock LLM backend instead of the configured one
  --debug            Enable debug logging

Batch Flags:
  --config string    Config file path
  --input string     Workbook directory (default: paths.input_dir from config)
  --dry-run          Use the mock LLM backend instead of the configured one
  --debug            Enable debug logging

Watch Flags:
  --config string    Config file path
  --dir value        Additional directory to watch (repeatable)
  --debug            Enable debug logging

Status Flags:
  --config string    Config file path
  --output string    Output format: text or json (default: text)
  --limit int        Number of recent runs to show (default: 10)

Prompts Flags:
  --config string    Config file path
  --write            Write the default template files and exit

Examples:
  bunrui extract --input ./workbooks
  bunrui extract --file survey.xlsx --force
  bunrui run --dir ./data/survey
  bunrui run --dir ./data/survey --stage keywords
  bunrui batch
  bunrui watch --dir ./dropbox
  bunrui status --output json
  bunrui prompts --write
  bunrui query "Summarize the coding scheme in two sentences"`)
}
