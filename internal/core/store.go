package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/recipedb/nutriload/internal/schema"
)

const (
	nutritionTable = "nutritional_info"
	runsTable      = "import_runs"
)

// PgStore loads records into Postgres. It implements Store and
// RunRecorder. Plain queries go through the DBTX so they can be pointed
// at a transaction in tests; batch loads always open their own.
type PgStore struct {
	pool      *pgxpool.Pool
	db        DBTX
	upsertSQL string
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{
		pool:      pool,
		db:        pool,
		upsertSQL: buildUpsertSQL(),
	}
}

// buildUpsertSQL renders the single-row upsert once at startup. Conflicts
// on code replace every carried column and refresh updated_at, so
// re-importing the same file converges instead of duplicating.
func buildUpsertSQL() string {
	cols := schema.TargetColumns()

	placeholders := make([]string, len(cols))
	assignments := make([]string, 0, len(cols))
	for i, col := range cols {
		ph := fmt.Sprintf("$%d", i+1)
		switch col {
		case "serving_measurement":
			ph += "::measurement_enum"
		case "allergens":
			ph += "::allergen_enum[]"
		case "food_groups":
			ph += "::food_group_enum"
		}
		placeholders[i] = ph
		if col != "code" {
			assignments = append(assignments, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
	}
	assignments = append(assignments, "updated_at = now()")

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (code) DO UPDATE SET %s",
		nutritionTable,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(assignments, ", "),
	)
}

// upsertArgs renders a record into the positional argument list matching
// buildUpsertSQL's column order.
func upsertArgs(rec Record) []any {
	args := make([]any, 0, len(schema.TargetColumns()))
	args = append(args,
		rec.Code,
		rec.ProductName,
		rec.GenericName,
		rec.Brands,
		rec.Categories,
		rec.ServingQuantity,
		rec.ServingUnit,
		allergenStrings(rec.Allergens),
		string(rec.FoodGroup),
		rec.NutriscoreGrade,
	)
	for _, col := range schema.NutrientColumns {
		args = append(args, rec.Nutrients[col])
	}
	return args
}

func allergenStrings(allergens []schema.Allergen) any {
	if len(allergens) == 0 {
		return nil
	}
	out := make([]string, len(allergens))
	for i, a := range allergens {
		out[i] = string(a)
	}
	return out
}

// ExistingCodes scans every stored product code so the importer can tell
// updates from inserts without a round trip per row.
func (s *PgStore) ExistingCodes(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.Query(ctx, "SELECT code FROM "+nutritionTable)
	if err != nil {
		return nil, fmt.Errorf("scan existing codes: %w", err)
	}
	defer rows.Close()

	codes := make(map[string]struct{}, 4096)
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan existing codes: %w", err)
		}
		codes[code] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan existing codes: %w", err)
	}
	return codes, nil
}

// LoadBatch upserts all items inside one transaction using a pipelined
// batch. Any failure rolls the whole batch back.
func (s *PgStore) LoadBatch(ctx context.Context, items []BatchItem) (BatchResult, error) {
	if len(items) == 0 {
		return BatchResult{}, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return BatchResult{}, fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(s.upsertSQL, upsertArgs(item.Record)...)
	}

	br := tx.SendBatch(ctx, batch)
	for i := range items {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return BatchResult{}, fmt.Errorf("upsert code %s: %w", items[i].Record.Code, err)
		}
	}
	if err := br.Close(); err != nil {
		return BatchResult{}, fmt.Errorf("close batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return BatchResult{}, fmt.Errorf("commit batch: %w", err)
	}

	var res BatchResult
	for _, item := range items {
		switch item.Action {
		case ActionInsert:
			res.Inserted++
		case ActionUpdate:
			res.Updated++
		}
	}
	return res, nil
}

// RecordRun writes one row of run history.
func (s *PgStore) RecordRun(ctx context.Context, rep *Report) error {
	id, err := uuid.Parse(rep.RunID)
	if err != nil {
		id = uuid.New()
	}
	status := "completed"
	if rep.Interrupted {
		status = "interrupted"
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO `+runsTable+` (
			id, file_name, file_size_bytes, started_at, duration_ms, status,
			rows_read, rows_accepted, rows_rejected, rows_duplicate,
			rows_inserted, rows_updated, batches_committed, batches_failed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		id, rep.File, rep.FileSizeBytes, rep.StartedAt, rep.Duration.Milliseconds(), status,
		rep.Stats.RowsRead, rep.Stats.RowsAccepted, rep.Stats.RowsRejected, rep.Stats.RowsDuplicate,
		rep.Stats.RowsInserted, rep.Stats.RowsUpdated, rep.Stats.BatchesCommitted, rep.Stats.BatchesFailed,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", rep.RunID, err)
	}
	return nil
}

// RecentRuns returns up to limit past runs, newest first.
func (s *PgStore) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(ctx, `
		SELECT id::text, file_name, started_at, duration_ms, status,
			rows_read, rows_inserted, rows_updated, rows_rejected
		FROM `+runsTable+`
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.File, &r.StartedAt, &r.DurationMS, &r.Status,
			&r.RowsRead, &r.RowsInserted, &r.RowsUpdated, &r.RowsRejected); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
