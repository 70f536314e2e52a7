package models

import "time"

// Run statuses recorded in the catalog.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// WorkbookRecord is a catalog row for an extracted workbook.
type WorkbookRecord struct {
	ID          string                 `json:"id" db:"id"`
	Path        string                 `json:"path" db:"path"`
	Stem        string                 `json:"stem" db:"stem"`
	SourceMtime int64                  `json:"source_mtime" db:"source_mtime"`
	SourceSize  int64                  `json:"source_size" db:"source_size"`
	ExtractedAt time.Time              `json:"extracted_at" db:"extracted_at"`
	SheetCount  int                    `json:"sheet_count" db:"sheet_count"`
	Metadata    map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
}

// Run is a catalog row for one pipeline run over a workbook.
type Run struct {
	ID         string                 `json:"id" db:"id"`
	WorkbookID string                 `json:"workbook_id" db:"workbook_id"`
	StartedAt  time.Time              `json:"started_at" db:"started_at"`
	FinishedAt time.Time              `json:"finished_at,omitempty" db:"finished_at"`
	Status     string                 `json:"status" db:"status"`
	Error      string                 `json:"error,omitempty" db:"error"`
	Metadata   map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
}

// StageResult is a catalog row for one stage of a run.
type StageResult struct {
	RunID         string `json:"run_id" db:"run_id"`
	Stage         string `json:"stage" db:"stage"`
	PromptBytes   int    `json:"prompt_bytes" db:"prompt_bytes"`
	ResponseBytes int    `json:"response_bytes" db:"response_bytes"`
	DurationMS    int64  `json:"duration_ms" db:"duration_ms"`
	OutputPath    string `json:"output_path" db:"output_path"`
}

// FileSummary is the per-workbook file_summary.json document written
// by batch processing.
type FileSummary struct {
	FileInfo          FileInfo            `json:"file_info"`
	ExtractionSummary *ExtractionSummary  `json:"extraction_summary,omitempty"`
	AnalysisSummary   *AnalysisSummary    `json:"analysis_summary,omitempty"`
	OutputStructure   map[string]FileStat `json:"output_structure"`
}

// FileInfo identifies the source workbook of a file summary.
type FileInfo struct {
	Filename            string `json:"filename"`
	FileSize            int64  `json:"file_size"`
	FilePath            string `json:"file_path"`
	ProcessingTimestamp string `json:"processing_timestamp"`
}

// FileStat is the size and mtime of one output file, keyed by its
// path relative to the workbook's output dir.
type FileStat struct {
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
}

// AnalysisSummary condenses the analysis report for file_summary.json.
type AnalysisSummary struct {
	SheetsAnalyzed    int  `json:"sheets_analyzed"`
	TotalFormulas     int  `json:"total_formulas"`
	ComplexFormulas   int  `json:"complex_formulas"`
	NamedRanges       int  `json:"named_ranges"`
	ProtectionEnabled bool `json:"protection_enabled"`
}

// BatchSummary is the batch_processing_summary.json document.
type BatchSummary struct {
	ProcessingTimestamp   string   `json:"processing_timestamp"`
	TotalFiles            int      `json:"total_files"`
	ProcessedSuccessfully int      `json:"processed_successfully"`
	FailedProcessing      int      `json:"failed_processing"`
	SuccessRate           float64  `json:"success_rate"`
	ProcessedFiles        []string `json:"processed_files"`
	FailedFiles           []string `json:"failed_files"`
	OutputFolder          string   `json:"output_folder"`
	LogFile               string   `json:"log_file"`
}
