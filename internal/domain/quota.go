package domain

import (
	"fmt"
	"math"
)

// quotaCap bounds a single day's refresh volume regardless of archive size.
const quotaCap = 9999

// DailyQuota returns how many entities of one type may be refreshed today:
// min(9999, ceil(active / intervalDays * 1.2)). The 20% headroom lets a
// backlog drain faster than it grows.
func DailyQuota(active int, intervalDays int) int {
	if active <= 0 || intervalDays <= 0 {
		return 0
	}
	quota := int(math.Ceil(float64(active) / float64(intervalDays) * 1.2))
	if quota > quotaCap {
		return quotaCap
	}
	return quota
}

// DurationString renders a duration in seconds as "H:MM:SS" or "M:SS".
// Returns "NA" for zero or negative input, the sentinel for an unparsable
// upstream duration.
func DurationString(seconds int) string {
	if seconds <= 0 {
		return "NA"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
