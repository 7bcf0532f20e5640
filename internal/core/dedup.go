package core

// Deduplicator decides per code whether a row inserts, updates, or is
// skipped. Codes already in the store before the run update (last row in
// the file wins via the upsert); codes first seen earlier in the same
// file are skipped, so within one file the first occurrence wins.
type Deduplicator struct {
	existing map[string]struct{}
	seen     map[string]struct{}
}

// NewDeduplicator seeds duplicate detection with the codes present in the
// store at run start.
func NewDeduplicator(existing map[string]struct{}) *Deduplicator {
	if existing == nil {
		existing = make(map[string]struct{})
	}
	return &Deduplicator{
		existing: existing,
		seen:     make(map[string]struct{}, 1024),
	}
}

// Check returns the verdict for code and marks it seen.
func (d *Deduplicator) Check(code string) Action {
	if _, dup := d.seen[code]; dup {
		return ActionSkip
	}
	d.seen[code] = struct{}{}
	if _, ok := d.existing[code]; ok {
		return ActionUpdate
	}
	return ActionInsert
}

// Seen reports how many distinct codes this run has processed.
func (d *Deduplicator) Seen() int { return len(d.seen) }
