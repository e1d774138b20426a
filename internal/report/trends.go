package report

import (
	"time"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/model"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/timecalc"
)

// Trends builds created/completed/overdue time series over the filter range.
// Every period in range is present in each series, zero or not.
func Trends(cards []model.Card, filters model.ReportFilters, now time.Time) model.TrendsReport {
	r := filters.DateRange
	g := timecalc.ChooseGranularity(r)
	periods := timecalc.Periods(r, g)
	loc := r.Start.Location()

	index := make(map[time.Time]int, len(periods))
	for i, p := range periods {
		index[p] = i
	}
	slot := func(t time.Time) (int, bool) {
		i, ok := index[timecalc.PeriodStart(t.In(loc), g)]
		return i, ok
	}

	created := make([]int, len(periods))
	completed := make([]int, len(periods))
	overdue := make([]int, len(periods))
	for _, c := range cards {
		if i, ok := slot(c.CreatedAt); ok {
			created[i]++
		}
		if c.Done() {
			if i, ok := slot(c.UpdatedAt); ok {
				completed[i]++
			}
			continue
		}
		if c.Overdue(now) {
			if i, ok := slot(*c.DueDate); ok {
				overdue[i]++
			}
		}
	}

	velocity := rollingMean(completed, timecalc.VelocityWindow(g))

	rep := model.TrendsReport{
		DateRange:         r,
		Granularity:       g,
		CreatedOverTime:   series(periods, g, created),
		CompletedOverTime: series(periods, g, completed),
		OverdueOverTime:   series(periods, g, overdue),
		Velocity:          make([]model.TrendDataPoint, len(periods)),
	}
	var velocitySum float64
	for i, p := range periods {
		rep.Velocity[i] = model.TrendDataPoint{Date: p, Label: timecalc.PeriodLabel(p, g), Value: velocity[i]}
		velocitySum += velocity[i]
		rep.Summary.TotalCreated += created[i]
		rep.Summary.TotalCompleted += completed[i]
		rep.Summary.TotalOverdue += overdue[i]
	}
	if len(periods) > 0 {
		rep.Summary.AvgVelocity = round1(velocitySum / float64(len(periods)))
	}
	return rep
}

func series(periods []time.Time, g model.Granularity, values []int) []model.TrendDataPoint {
	out := make([]model.TrendDataPoint, len(periods))
	for i, p := range periods {
		out[i] = model.TrendDataPoint{Date: p, Label: timecalc.PeriodLabel(p, g), Value: float64(values[i])}
	}
	return out
}

// rollingMean averages the trailing window ending at each index. The window
// grows from one element at the start and never looks ahead.
func rollingMean(values []int, window int) []float64 {
	out := make([]float64, len(values))
	sum := 0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		n := window
		if i+1 < window {
			n = i + 1
		}
		out[i] = round1(float64(sum) / float64(n))
	}
	return out
}
