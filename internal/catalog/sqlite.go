package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/bunrui/internal/models"
)

// SQLiteCatalog implements Catalog using SQLite.
type SQLiteCatalog struct {
	db *sql.DB
}

// NewSQLiteCatalog opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if they do
// not exist.
func NewSQLiteCatalog(dbPath string) (*SQLiteCatalog, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteCatalog{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS workbooks (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		stem TEXT NOT NULL,
		source_mtime INTEGER NOT NULL,
		source_size INTEGER NOT NULL,
		extracted_at TIMESTAMP,
		sheet_count INTEGER DEFAULT 0,
		metadata TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_workbooks_path ON workbooks(path);

	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		workbook_id TEXT NOT NULL,
		started_at TIMESTAMP,
		finished_at TIMESTAMP,
		status TEXT NOT NULL,
		error TEXT,
		metadata TEXT,
		FOREIGN KEY (workbook_id) REFERENCES workbooks(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_runs_workbook_id ON runs(workbook_id);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

	CREATE TABLE IF NOT EXISTS stage_results (
		run_id TEXT NOT NULL,
		stage TEXT NOT NULL,
		prompt_bytes INTEGER DEFAULT 0,
		response_bytes INTEGER DEFAULT 0,
		duration_ms INTEGER DEFAULT 0,
		output_path TEXT,
		PRIMARY KEY (run_id, stage),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);
	`
	_, err := db.Exec(schema)
	return err
}

// RecordWorkbook inserts or replaces a workbook record.
func (c *SQLiteCatalog) RecordWorkbook(ctx context.Context, rec *models.WorkbookRecord) error {
	metadataJSON, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if rec.ExtractedAt.IsZero() {
		rec.ExtractedAt = time.Now()
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT INTO workbooks (id, path, stem, source_mtime, source_size, extracted_at, sheet_count, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   path = excluded.path,
		   stem = excluded.stem,
		   source_mtime = excluded.source_mtime,
		   source_size = excluded.source_size,
		   extracted_at = excluded.extracted_at,
		   sheet_count = excluded.sheet_count,
		   metadata = excluded.metadata`,
		rec.ID, rec.Path, rec.Stem, rec.SourceMtime, rec.SourceSize, rec.ExtractedAt, rec.SheetCount, string(metadataJSON),
	)
	return err
}

// GetWorkbook returns a workbook record by ID.
func (c *SQLiteCatalog) GetWorkbook(ctx context.Context, id string) (*models.WorkbookRecord, error) {
	var rec models.WorkbookRecord
	var metadataJSON string

	err := c.db.QueryRowContext(ctx,
		`SELECT id, path, stem, source_mtime, source_size, extracted_at, sheet_count, metadata
		 FROM workbooks WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.Path, &rec.Stem, &rec.SourceMtime, &rec.SourceSize, &rec.ExtractedAt, &rec.SheetCount, &metadataJSON)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("workbook not found: %s", id)
	}
	if err != nil {
		return nil, err
	}

	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &rec.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &rec, nil
}

// FindWorkbookByStem returns the most recently extracted workbook with the
// given output stem.
func (c *SQLiteCatalog) FindWorkbookByStem(ctx context.Context, stem string) (*models.WorkbookRecord, error) {
	var rec models.WorkbookRecord
	var metadataJSON string

	err := c.db.QueryRowContext(ctx,
		`SELECT id, path, stem, source_mtime, source_size, extracted_at, sheet_count, metadata
		 FROM workbooks WHERE stem = ? ORDER BY extracted_at DESC LIMIT 1`, stem,
	).Scan(&rec.ID, &rec.Path, &rec.Stem, &rec.SourceMtime, &rec.SourceSize, &rec.ExtractedAt, &rec.SheetCount, &metadataJSON)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("workbook not found: %s", stem)
	}
	if err != nil {
		return nil, err
	}

	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &rec.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &rec, nil
}

// IsUnchanged reports whether the recorded source mtime and size match
// the given values. Unknown workbooks report false.
func (c *SQLiteCatalog) IsUnchanged(ctx context.Context, id string, sourceMtime, sourceSize int64) (bool, error) {
	var mtime, size int64
	err := c.db.QueryRowContext(ctx,
		`SELECT source_mtime, source_size FROM workbooks WHERE id = ?`, id,
	).Scan(&mtime, &size)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return mtime == sourceMtime && size == sourceSize, nil
}

// CreateRun inserts a run. A missing ID gets a fresh UUID, a missing
// status starts as running.
func (c *SQLiteCatalog) CreateRun(ctx context.Context, run *models.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.Status == "" {
		run.Status = models.RunStatusRunning
	}
	metadataJSON, err := json.Marshal(run.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT INTO runs (id, workbook_id, started_at, finished_at, status, error, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.WorkbookID, run.StartedAt, run.FinishedAt, run.Status, run.Error, string(metadataJSON),
	)
	return err
}

// FinishRun marks a run finished with the given status and error text.
func (c *SQLiteCatalog) FinishRun(ctx context.Context, runID, status, errMsg string) error {
	result, err := c.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, error = ? WHERE id = ?`,
		time.Now(), status, errMsg, runID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}

// RecordStage inserts or replaces one stage result of a run.
func (c *SQLiteCatalog) RecordStage(ctx context.Context, result *models.StageResult) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO stage_results (run_id, stage, prompt_bytes, response_bytes, duration_ms, output_path)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		result.RunID, result.Stage, result.PromptBytes, result.ResponseBytes, result.DurationMS, result.OutputPath,
	)
	return err
}

// ListRuns returns runs newest first. An empty workbookID lists runs
// for all workbooks.
func (c *SQLiteCatalog) ListRuns(ctx context.Context, workbookID string, limit int) ([]*models.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, workbook_id, started_at, finished_at, status, error, metadata
	 FROM runs ORDER BY started_at DESC LIMIT ?`
	args := []interface{}{limit}
	if workbookID != "" {
		query = `SELECT id, workbook_id, started_at, finished_at, status, error, metadata
		 FROM runs WHERE workbook_id = ? ORDER BY started_at DESC LIMIT ?`
		args = []interface{}{workbookID, limit}
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		var run models.Run
		var metadataJSON string
		if err := rows.Scan(&run.ID, &run.WorkbookID, &run.StartedAt, &run.FinishedAt, &run.Status, &run.Error, &metadataJSON); err != nil {
			return nil, err
		}
		if metadataJSON != "" {
			_ = json.Unmarshal([]byte(metadataJSON), &run.Metadata)
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// StagesForRun returns a run's stage results in execution order.
func (c *SQLiteCatalog) StagesForRun(ctx context.Context, runID string) ([]*models.StageResult, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT run_id, stage, prompt_bytes, response_bytes, duration_ms, output_path
		 FROM stage_results WHERE run_id = ? ORDER BY rowid`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*models.StageResult
	for rows.Next() {
		var sr models.StageResult
		if err := rows.Scan(&sr.RunID, &sr.Stage, &sr.PromptBytes, &sr.ResponseBytes, &sr.DurationMS, &sr.OutputPath); err != nil {
			return nil, err
		}
		results = append(results, &sr)
	}
	return results, rows.Err()
}

// CountWorkbooks returns the total number of recorded workbooks.
func (c *SQLiteCatalog) CountWorkbooks(ctx context.Context) (int64, error) {
	var count int64
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workbooks`).Scan(&count)
	return count, err
}

// CountRuns returns the total number of recorded runs.
func (c *SQLiteCatalog) CountRuns(ctx context.Context) (int64, error) {
	var count int64
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}
