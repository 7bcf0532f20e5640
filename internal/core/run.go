package core

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultBatchSize is how many rows load per transaction.
	DefaultBatchSize = 1000
	// DefaultSampleLimit caps how many rejections the report carries.
	DefaultSampleLimit = 100

	// progressLogEvery is the batch cadence for progress log lines.
	progressLogEvery = 50
)

// ErrAborted wraps every failure that stops a run before rows are
// processed: unreadable source, unreachable store, unrecognizable header.
var ErrAborted = errors.New("import aborted")

// Options tune one importer.
type Options struct {
	BatchSize   int
	SampleLimit int
	Verbose     bool
	// OnProgress, when set, is called after every flushed batch.
	OnProgress func(Progress)
	// History, when set, receives the final report.
	History RunRecorder
}

// Importer drives a whole run: read, normalize, validate, dedup, load.
type Importer struct {
	store Store
	opts  Options
	log   *slog.Logger
}

func NewImporter(store Store, opts Options) *Importer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.SampleLimit <= 0 {
		opts.SampleLimit = DefaultSampleLimit
	}
	return &Importer{
		store: store,
		opts:  opts,
		log:   slog.Default(),
	}
}

// Run imports the file at path. A non-nil error means the run aborted
// before or during setup and nothing useful happened; row and batch
// trouble is absorbed into the report instead. Cancelling ctx stops the
// run between batches; batches already committed stay committed.
func (imp *Importer) Run(ctx context.Context, path string) (*Report, error) {
	start := time.Now()

	src, err := OpenSource(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAborted, err)
	}
	defer src.Close()

	existing, err := imp.store.ExistingCodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: destination store unreachable: %w", ErrAborted, err)
	}
	dedup := NewDeduplicator(existing)

	buffered := bufio.NewReaderSize(src, 64*1024)
	reader := csv.NewReader(buffered)
	reader.Comma = sniffDelimiter(buffered)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %w", ErrAborted, err)
	}
	idx := MakeHeaderIndex(header)
	if !HeaderRecognized(idx) {
		return nil, fmt.Errorf("%w: unrecognized header schema in %s", ErrAborted, path)
	}

	rep := &Report{
		RunID:         uuid.New().String(),
		File:          path,
		FileSizeBytes: src.Size,
		StartedAt:     start,
	}
	imp.log.Info("import started",
		"run_id", rep.RunID,
		"file", path,
		"size_bytes", src.Size,
		"batch_size", imp.opts.BatchSize,
		"existing_codes", len(existing),
	)

	batch := make([]BatchItem, 0, imp.opts.BatchSize)
	line := 1
	for {
		if ctx.Err() != nil {
			rep.Interrupted = true
			imp.log.Warn("import interrupted", "run_id", rep.RunID, "rows_read", rep.Stats.RowsRead)
			break
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			rep.Stats.RowsRead++
			imp.reject(rep, Rejection{Line: line, Reason: RejectMalformedRow})
			continue
		}
		if isEmptyRow(row) {
			continue
		}
		rep.Stats.RowsRead++

		rec, rej := BuildRecord(row, idx, line)
		if rej != nil {
			imp.reject(rep, *rej)
			continue
		}
		rep.Stats.RowsAccepted++

		action := dedup.Check(rec.Code)
		if action == ActionSkip {
			rep.Stats.RowsDuplicate++
			if imp.opts.Verbose {
				imp.log.Debug("duplicate code skipped", "line", line, "code", rec.Code)
			}
			continue
		}
		batch = append(batch, BatchItem{Record: rec, Action: action})

		if len(batch) >= imp.opts.BatchSize {
			imp.flush(ctx, rep, batch)
			batch = batch[:0]
			imp.progress(rep, src)
		}
	}

	if !rep.Interrupted && len(batch) > 0 {
		imp.flush(ctx, rep, batch)
	}
	imp.progress(rep, src)

	rep.Duration = time.Since(start)
	imp.log.Info("import finished",
		"run_id", rep.RunID,
		"duration", rep.Duration.Round(time.Millisecond),
		"rows_read", rep.Stats.RowsRead,
		"rows_inserted", rep.Stats.RowsInserted,
		"rows_updated", rep.Stats.RowsUpdated,
		"rows_rejected", rep.Stats.RowsRejected,
		"rows_duplicate", rep.Stats.RowsDuplicate,
		"batches_failed", rep.Stats.BatchesFailed,
	)

	if imp.opts.History != nil {
		// History survives cancellation so interrupted runs still show up.
		if err := imp.opts.History.RecordRun(context.WithoutCancel(ctx), rep); err != nil {
			imp.log.Warn("run history not recorded", "run_id", rep.RunID, "error", err)
		}
	}
	return rep, nil
}

// flush loads one batch. A failed batch is counted and logged; the run
// carries on with the next one.
func (imp *Importer) flush(ctx context.Context, rep *Report, batch []BatchItem) {
	res, err := imp.store.LoadBatch(ctx, batch)
	if err != nil {
		rep.Stats.BatchesFailed++
		imp.log.Error("batch rolled back",
			"run_id", rep.RunID,
			"rows", len(batch),
			"first_code", batch[0].Record.Code,
			"last_code", batch[len(batch)-1].Record.Code,
			"error", err,
		)
		return
	}
	rep.Stats.BatchesCommitted++
	rep.Stats.RowsInserted += res.Inserted
	rep.Stats.RowsUpdated += res.Updated
	if rep.Stats.BatchesCommitted%progressLogEvery == 0 {
		imp.log.Info("import progress",
			"run_id", rep.RunID,
			"rows_read", rep.Stats.RowsRead,
			"rows_inserted", rep.Stats.RowsInserted,
			"rows_updated", rep.Stats.RowsUpdated,
			"batches_committed", rep.Stats.BatchesCommitted,
		)
	}
}

func (imp *Importer) reject(rep *Report, rej Rejection) {
	rep.Stats.RowsRejected++
	if len(rep.RejectionSamples) < imp.opts.SampleLimit {
		rep.RejectionSamples = append(rep.RejectionSamples, rej)
	}
	if imp.opts.Verbose {
		imp.log.Debug("row rejected",
			"line", rej.Line, "code", rej.Code, "reason", rej.Reason, "field", rej.Field)
	}
}

func (imp *Importer) progress(rep *Report, src *Source) {
	if imp.opts.OnProgress == nil {
		return
	}
	imp.opts.OnProgress(Progress{
		RowsRead:   rep.Stats.RowsRead,
		BytesRead:  src.BytesRead(),
		BytesTotal: src.Size,
		Percent:    src.Percent(),
	})
}

// sniffDelimiter inspects the first line of the stream without consuming
// it. OpenFoodFacts full exports are tab separated; smaller extracts tend
// to be plain CSV.
func sniffDelimiter(r *bufio.Reader) rune {
	peek, _ := r.Peek(64 * 1024)
	if i := strings.IndexByte(string(peek), '\n'); i >= 0 {
		peek = peek[:i]
	}
	tabs := strings.Count(string(peek), "\t")
	commas := strings.Count(string(peek), ",")
	if tabs > commas {
		return '\t'
	}
	return ','
}
