// Package core implements the import pipeline: streaming CSV decode,
// per-row normalization and validation, duplicate handling, and batched
// upserts into the nutrition store.
package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/recipedb/nutriload/internal/schema"
)

// DBTX is the subset of pgx operations the store needs. Both *pgxpool.Pool
// and pgx.Tx satisfy it, so store queries run identically inside and
// outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Record is one fully normalized product row, ready to load. Absent values
// carry Valid=false and load as NULL.
type Record struct {
	Code            string
	ProductName     pgtype.Text
	GenericName     pgtype.Text
	Brands          pgtype.Text
	Categories      pgtype.Text
	ServingQuantity pgtype.Numeric
	ServingUnit     pgtype.Text
	Allergens       []schema.Allergen
	FoodGroup       schema.FoodGroup
	NutriscoreGrade pgtype.Text

	// Nutrients holds the numeric columns keyed by source column name
	// (dashes, as in the header). Absent columns are simply missing.
	Nutrients map[string]pgtype.Numeric
}

// RejectReason classifies why a row was rejected.
type RejectReason string

const (
	RejectMissingCode         RejectReason = "missing_code"
	RejectInvalidNumericField RejectReason = "invalid_numeric_field"
	RejectMalformedRow        RejectReason = "malformed_row"
)

// Rejection describes one rejected row. Field is set when a specific
// column caused the rejection.
type Rejection struct {
	Line   int          `json:"line"`
	Code   string       `json:"code,omitempty"`
	Reason RejectReason `json:"reason"`
	Field  string       `json:"field,omitempty"`
}

// Action is the dedup verdict for a row's code.
type Action int

const (
	// ActionInsert means the code is new to both this file and the store.
	ActionInsert Action = iota
	// ActionUpdate means the code existed in the store before this run.
	ActionUpdate
	// ActionSkip means the code already appeared earlier in this file.
	ActionSkip
)

func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "insert"
	case ActionUpdate:
		return "update"
	case ActionSkip:
		return "skip"
	}
	return "unknown"
}

// BatchItem pairs a record with its dedup verdict so the loader can
// attribute insert/update counts without re-checking the store.
type BatchItem struct {
	Record Record
	Action Action
}

// BatchResult reports what one committed batch did.
type BatchResult struct {
	Inserted int
	Updated  int
}

// Stats are the exact run counters. RowsAccepted counts rows that passed
// validation, including those later skipped as in-file duplicates, so
// RowsInserted+RowsUpdated tracks RowsAccepted-RowsDuplicate minus rows
// lost to failed batches.
type Stats struct {
	RowsRead         int `json:"rows_read"`
	RowsAccepted     int `json:"rows_accepted"`
	RowsRejected     int `json:"rows_rejected"`
	RowsDuplicate    int `json:"rows_duplicate"`
	RowsInserted     int `json:"rows_inserted"`
	RowsUpdated      int `json:"rows_updated"`
	BatchesCommitted int `json:"batches_committed"`
	BatchesFailed    int `json:"batches_failed"`
}

// Progress is a point-in-time view of a running import. Percent is based
// on source file bytes and is 0 when the size is unknown.
type Progress struct {
	RowsRead   int     `json:"rows_read"`
	BytesRead  int64   `json:"bytes_read"`
	BytesTotal int64   `json:"bytes_total"`
	Percent    float64 `json:"percent"`
}

// Report is the final outcome of one import run.
type Report struct {
	RunID            string        `json:"run_id"`
	File             string        `json:"file"`
	FileSizeBytes    int64         `json:"file_size_bytes"`
	StartedAt        time.Time     `json:"started_at"`
	Duration         time.Duration `json:"duration"`
	Interrupted      bool          `json:"interrupted,omitempty"`
	Stats            Stats         `json:"stats"`
	RejectionSamples []Rejection   `json:"rejection_samples,omitempty"`
}

// RunSummary is one row of run history as listed by the status API.
type RunSummary struct {
	ID           string    `json:"id"`
	File         string    `json:"file"`
	StartedAt    time.Time `json:"started_at"`
	DurationMS   int64     `json:"duration_ms"`
	Status       string    `json:"status"`
	RowsRead     int       `json:"rows_read"`
	RowsInserted int       `json:"rows_inserted"`
	RowsUpdated  int       `json:"rows_updated"`
	RowsRejected int       `json:"rows_rejected"`
}

// Store is the destination the importer loads into.
type Store interface {
	// ExistingCodes returns every product code already present, read once
	// at run start to seed duplicate detection.
	ExistingCodes(ctx context.Context) (map[string]struct{}, error)

	// LoadBatch upserts the items in a single transaction. On error the
	// whole batch is rolled back and nothing from it is visible.
	LoadBatch(ctx context.Context, items []BatchItem) (BatchResult, error)
}

// RunRecorder persists run history. Recording is best-effort; a failure
// never fails the run itself.
type RunRecorder interface {
	RecordRun(ctx context.Context, rep *Report) error
}
