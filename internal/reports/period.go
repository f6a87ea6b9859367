package reports

import (
	"fmt"
	"strings"
	"time"
)

// Day returns the canonical representation of a calendar day: midnight UTC.
// All engine date math goes through this so that two postings on the same
// calendar day always partition identically regardless of wall-clock time.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// normalizeDay truncates a timestamp to its calendar day.
func normalizeDay(t time.Time) time.Time {
	return Day(t.Year(), t.Month(), t.Day())
}

// DateRange is an inclusive span of calendar days. A zero Start means
// "all history up to End"; the open start is how pre-range history
// (retained earnings, beginning cash) is queried.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range from two calendar days.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: normalizeDay(start), End: normalizeDay(end)}
}

// AllBefore returns the open-ended range of all history strictly before day.
func AllBefore(day time.Time) DateRange {
	return DateRange{End: normalizeDay(day).AddDate(0, 0, -1)}
}

// Contains reports whether the range includes the given day.
func (r DateRange) Contains(t time.Time) bool {
	d := normalizeDay(t)
	if !r.Start.IsZero() && d.Before(r.Start) {
		return false
	}
	return !d.After(r.End)
}

// Inverted reports whether Start is after End. An inverted range is a valid
// no-data state: it contains nothing and partitions to zero periods.
func (r DateRange) Inverted() bool {
	return !r.Start.IsZero() && r.Start.After(r.End)
}

// Granularity selects how a reporting range is bucketed into columns.
type Granularity string

const (
	GranularityMonth   Granularity = "month"
	GranularityQuarter Granularity = "quarter"
	GranularityTotal   Granularity = "total"
)

// ParseGranularity parses a user-supplied granularity string.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(s) {
	case "month", "monthly":
		return GranularityMonth, nil
	case "quarter", "quarterly":
		return GranularityQuarter, nil
	case "total":
		return GranularityTotal, nil
	default:
		return "", fmt.Errorf("reports: unknown granularity %q", s)
	}
}

// Period is one column of a report. Start/End are the filtering boundaries,
// clamped to the requested range; Label names the full calendar bucket the
// period belongs to ("Jan 2024", "2024-Q1") even when the boundaries are
// clamped.
type Period struct {
	Start time.Time
	End   time.Time
	Label string
}

// Range returns the period's filtering boundaries as a DateRange.
func (p Period) Range() DateRange {
	return DateRange{Start: p.Start, End: p.End}
}

// Partition splits a range into ordered, non-overlapping, gap-free periods
// at the requested granularity. An inverted range yields no periods. The
// range must have a concrete Start; statement builders resolve an open
// start against the ledger (boundRange) before partitioning.
func Partition(r DateRange, g Granularity) []Period {
	if r.Inverted() || r.End.IsZero() {
		return nil
	}

	switch g {
	case GranularityQuarter:
		return partitionBy(r, 3, quarterStart, quarterLabel)
	case GranularityTotal:
		return []Period{{Start: r.Start, End: r.End, Label: "Total"}}
	default:
		return partitionBy(r, 1, monthStart, monthLabel)
	}
}

// partitionBy walks calendar buckets of stepMonths from the bucket containing
// r.Start to the bucket containing r.End, clamping the first and last period
// boundaries to the range for filtering.
func partitionBy(r DateRange, stepMonths int, bucketStart func(time.Time) time.Time, label func(time.Time) string) []Period {
	var periods []Period
	for cur := bucketStart(r.Start); !cur.After(r.End); cur = cur.AddDate(0, stepMonths, 0) {
		start := cur
		if start.Before(r.Start) {
			start = r.Start
		}
		end := cur.AddDate(0, stepMonths, -1)
		if end.After(r.End) {
			end = r.End
		}
		periods = append(periods, Period{Start: start, End: end, Label: label(cur)})
	}
	return periods
}

func monthStart(t time.Time) time.Time {
	return Day(t.Year(), t.Month(), 1)
}

func monthLabel(t time.Time) string {
	return t.Format("Jan 2006")
}

func quarterStart(t time.Time) time.Time {
	m := time.Month((int(t.Month())-1)/3*3 + 1)
	return Day(t.Year(), m, 1)
}

// quarterLabel formats like "2024-Q1"; quarters are 1-indexed from January.
func quarterLabel(t time.Time) string {
	return fmt.Sprintf("%d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
}
