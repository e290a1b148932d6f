package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Timeframes understood by FormatTime.
const (
	Year    = "year"
	Quarter = "quarter"
	Month   = "month"
	Week    = "week"
	Day     = "day"
	Hour    = "hour"
	Minute  = "minute"
	Second  = "second"
)

// IsDateUnit reports whether tf truncates to a date granularity.
func IsDateUnit(tf string) bool {
	switch tf {
	case Year, Quarter, Month, Week, Day:
		return true
	}
	return false
}

// IsTimestampUnit reports whether tf is any known granularity.
func IsTimestampUnit(tf string) bool {
	switch tf {
	case Hour, Minute, Second:
		return true
	}
	return IsDateUnit(tf)
}

// FormatTime renders t in UTC truncated to timeframe, in the notation used by
// Malloy time literals without the leading '@'.
func FormatTime(t time.Time, isDate bool, timeframe string) string {
	t = t.UTC()
	date := t.Format("2006-01-02")
	switch timeframe {
	case Second:
		return t.Format("2006-01-02 15:04:05")
	case Minute:
		return t.Format("2006-01-02 15:04")
	case Hour:
		return t.Format("2006-01-02 15")
	case Day:
		return date
	case Week:
		return date + "-WK"
	case Month:
		return t.Format("2006-01")
	case Quarter:
		return fmt.Sprintf("%04d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
	case Year:
		return strconv.Itoa(t.Year())
	}
	if isDate {
		return date
	}
	return t.Format("2006-01-02 15:04:05")
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02 15",
	"2006-01-02",
	"2006-01",
	"2006",
}

// ParseTime parses the ISO-like date and timestamp text found in results and
// literals. Values without a zone are taken as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time value %q", s)
}
