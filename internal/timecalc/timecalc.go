package timecalc

import (
	"fmt"
	"math"
	"time"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/model"
)

// DateLayout is the layout accepted for date flags and query parameters.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// DefaultRange returns the 30 days ending today.
func DefaultRange(now time.Time) model.DateRange {
	return model.DateRange{
		Start: StartOfDay(now.AddDate(0, 0, -29)),
		End:   EndOfDay(now),
	}
}

// ParseRange builds the inclusive range from optional YYYY-MM-DD bounds in
// loc. A missing from defaults to 29 days before to; a missing to defaults to
// today.
func ParseRange(from, to string, loc *time.Location, now time.Time) (model.DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	r := DefaultRange(now)
	if to != "" {
		end, err := ParseDate(to, loc)
		if err != nil {
			return model.DateRange{}, err
		}
		r.End = EndOfDay(end)
		r.Start = StartOfDay(end.AddDate(0, 0, -29))
	}
	if from != "" {
		start, err := ParseDate(from, loc)
		if err != nil {
			return model.DateRange{}, err
		}
		r.Start = start
	}
	if r.End.Before(r.Start) {
		return model.DateRange{}, fmt.Errorf("invalid range: %s is after %s",
			r.Start.Format(DateLayout), r.End.Format(DateLayout))
	}
	return r, nil
}

// FormatHours formats a fractional hour count like "1h 30m", "45m" or "3d 4h".
func FormatHours(hours float64) string {
	minutes := int64(math.Round(hours * 60))
	d := minutes / (24 * 60)
	h := (minutes % (24 * 60)) / 60
	m := minutes % 60
	if d > 0 {
		return fmt.Sprintf("%dd %dh", d, h)
	}
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// HoursBetween returns the signed number of hours from a to b.
func HoursBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours()
}

// DaysBetween returns the number of whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(StartOfDay(b).Sub(StartOfDay(a)).Hours() / 24))
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of the same day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// StartOfWeek returns 00:00:00 of the Sunday on or before t.
func StartOfWeek(t time.Time) time.Time {
	// Go's weekday: Sunday=0, Monday=1, …, Saturday=6
	return StartOfDay(t.AddDate(0, 0, -int(t.Weekday())))
}

// StartOfMonth returns 00:00:00 of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// ChooseGranularity picks the trend bucket size for a range: up to 14 days
// is daily, up to 90 days weekly, anything longer monthly.
func ChooseGranularity(r model.DateRange) model.Granularity {
	days := DaysBetween(r.Start, r.End)
	switch {
	case days <= 14:
		return model.Daily
	case days <= 90:
		return model.Weekly
	default:
		return model.Monthly
	}
}

// VelocityWindow is the rolling-average window, in periods, for g.
func VelocityWindow(g model.Granularity) int {
	switch g {
	case model.Weekly:
		return 4
	case model.Monthly:
		return 3
	default:
		return 7
	}
}

// PeriodStart returns the bucket key containing t.
func PeriodStart(t time.Time, g model.Granularity) time.Time {
	switch g {
	case model.Weekly:
		return StartOfWeek(t)
	case model.Monthly:
		return StartOfMonth(t)
	default:
		return StartOfDay(t)
	}
}

// NextPeriod returns the bucket key following p.
func NextPeriod(p time.Time, g model.Granularity) time.Time {
	switch g {
	case model.Weekly:
		return p.AddDate(0, 0, 7)
	case model.Monthly:
		return p.AddDate(0, 1, 0)
	default:
		return p.AddDate(0, 0, 1)
	}
}

// Periods lists every bucket key between start and end, each exactly once.
func Periods(r model.DateRange, g model.Granularity) []time.Time {
	if r.End.Before(r.Start) {
		return nil
	}
	var out []time.Time
	for p := PeriodStart(r.Start, g); !p.After(r.End); p = NextPeriod(p, g) {
		out = append(out, p)
	}
	return out
}

// PeriodLabel renders a bucket key for display.
func PeriodLabel(p time.Time, g model.Granularity) string {
	switch g {
	case model.Weekly:
		return "Week of " + p.Format("Jan 2")
	case model.Monthly:
		return p.Format("Jan 2006")
	default:
		return p.Format("Jan 2")
	}
}
