package common

import (
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatAmount rounds to a whole number and adds thousand separators
func FormatAmount(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}

// FromUnix converts API unix seconds to a time
func FromUnix(seconds float64) time.Time {
	sec, frac := math.Modf(seconds)
	return time.Unix(int64(sec), int64(frac*1e9))
}

// FormatRelativeTime phrases t relative to now, e.g. "3 minutes ago"
func FormatRelativeTime(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}
