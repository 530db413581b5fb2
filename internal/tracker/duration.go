package tracker

import (
	"fmt"
	"time"
)

// Elapsed returns the wall time between start and end as zero-padded
// "HH:MM:SS". Hours do not wrap at 24. An end before start is treated as a
// zero duration. Callers refreshing a running total must always pass the
// original session start, never a checkpoint, or repeated calls would
// undercount elapsed time.
func Elapsed(start, end time.Time) string {
	d := end.Sub(start)
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
