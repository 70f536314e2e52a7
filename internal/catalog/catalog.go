// Package catalog defines the persistence interface for workbook
// extractions and pipeline runs.
package catalog

import (
	"context"

	"github.com/hyperjump/bunrui/internal/models"
)

// Catalog defines workbook and run persistence operations.
type Catalog interface {
	// Workbook operations
	RecordWorkbook(ctx context.Context, rec *models.WorkbookRecord) error
	GetWorkbook(ctx context.Context, id string) (*models.WorkbookRecord, error)
	// FindWorkbookByStem returns the most recently extracted workbook
	// with the given output stem.
	FindWorkbookByStem(ctx context.Context, stem string) (*models.WorkbookRecord, error)
	// IsUnchanged reports whether the recorded source mtime and size
	// match. Unknown workbooks are changed by definition.
	IsUnchanged(ctx context.Context, id string, sourceMtime, sourceSize int64) (bool, error)

	// Run operations
	CreateRun(ctx context.Context, run *models.Run) error
	FinishRun(ctx context.Context, runID, status, errMsg string) error
	RecordStage(ctx context.Context, result *models.StageResult) error
	// ListRuns returns runs newest first; an empty workbookID lists
	// runs for all workbooks.
	ListRuns(ctx context.Context, workbookID string, limit int) ([]*models.Run, error)
	StagesForRun(ctx context.Context, runID string) ([]*models.StageResult, error)

	// Stats
	CountWorkbooks(ctx context.Context) (int64, error)
	CountRuns(ctx context.Context) (int64, error)

	Close() error
}
