package core

import (
	"fmt"
	"strings"
	"time"
)

// Summary renders the report for terminal output.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Import %s\n", r.RunID)
	fmt.Fprintf(&b, "  file:              %s (%s)\n", r.File, formatBytes(r.FileSizeBytes))
	fmt.Fprintf(&b, "  duration:          %s\n", r.Duration.Round(time.Millisecond))
	if r.Interrupted {
		b.WriteString("  status:            interrupted\n")
	}
	fmt.Fprintf(&b, "  rows read:         %d\n", r.Stats.RowsRead)
	fmt.Fprintf(&b, "  rows accepted:     %d\n", r.Stats.RowsAccepted)
	fmt.Fprintf(&b, "  rows rejected:     %d\n", r.Stats.RowsRejected)
	fmt.Fprintf(&b, "  in-file duplicates:%d\n", r.Stats.RowsDuplicate)
	fmt.Fprintf(&b, "  inserted:          %d\n", r.Stats.RowsInserted)
	fmt.Fprintf(&b, "  updated:           %d\n", r.Stats.RowsUpdated)
	fmt.Fprintf(&b, "  batches committed: %d\n", r.Stats.BatchesCommitted)
	if r.Stats.BatchesFailed > 0 {
		fmt.Fprintf(&b, "  batches failed:    %d\n", r.Stats.BatchesFailed)
	}
	if len(r.RejectionSamples) > 0 {
		fmt.Fprintf(&b, "  rejection samples (%d shown):\n", len(r.RejectionSamples))
		for _, rej := range r.RejectionSamples {
			if rej.Field != "" {
				fmt.Fprintf(&b, "    line %d code %q: %s (%s)\n", rej.Line, rej.Code, rej.Reason, rej.Field)
			} else {
				fmt.Fprintf(&b, "    line %d: %s\n", rej.Line, rej.Reason)
			}
		}
	}
	return b.String()
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
