package core

import "testing"

func TestDeduplicator(t *testing.T) {
	existing := map[string]struct{}{"already-stored": {}}
	d := NewDeduplicator(existing)

	if got := d.Check("fresh"); got != ActionInsert {
		t.Errorf("Check(fresh) = %v, want insert", got)
	}
	if got := d.Check("already-stored"); got != ActionUpdate {
		t.Errorf("Check(already-stored) = %v, want update", got)
	}

	// Second sighting within the run skips, regardless of origin.
	if got := d.Check("fresh"); got != ActionSkip {
		t.Errorf("Check(fresh) again = %v, want skip", got)
	}
	if got := d.Check("already-stored"); got != ActionSkip {
		t.Errorf("Check(already-stored) again = %v, want skip", got)
	}

	if got := d.Seen(); got != 2 {
		t.Errorf("Seen() = %d, want 2", got)
	}
}

func TestDeduplicator_NilExisting(t *testing.T) {
	d := NewDeduplicator(nil)
	if got := d.Check("any"); got != ActionInsert {
		t.Errorf("Check(any) = %v, want insert", got)
	}
}
