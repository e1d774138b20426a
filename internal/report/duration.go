package report

import (
	"math"
	"sort"
	"time"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/model"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/timecalc"
)

type hourRange struct {
	label string
	min   float64
	max   float64 // +Inf for the open-ended bin
}

// durationRanges are contiguous half-open [min, max) bins in hours.
var durationRanges = []hourRange{
	{"< 1 hour", 0, 1},
	{"1-4 hours", 1, 4},
	{"4-8 hours", 4, 8},
	{"8-24 hours", 8, 24},
	{"1-3 days", 24, 72},
	{"3-7 days", 72, 168},
	{"1-2 weeks", 168, 336},
	{"> 2 weeks", 336, math.Inf(1)},
}

type dayRange struct {
	label string
	max   int // inclusive upper bound in days; 0 means unbounded
}

var overdueRanges = []dayRange{
	{"1-3 days", 3},
	{"4-7 days", 7},
	{"1-2 weeks", 14},
	{"> 2 weeks", 0},
}

// durationBucketIndex returns the bin a completion time of hours falls in.
func durationBucketIndex(hours float64) int {
	if hours < 0 {
		hours = 0
	}
	for i, r := range durationRanges {
		if hours >= r.min && hours < r.max {
			return i
		}
	}
	return len(durationRanges) - 1
}

// daysOverdue counts started days past due, so anything overdue is at least 1.
func daysOverdue(due, now time.Time) int {
	d := int(math.Ceil(timecalc.HoursBetween(due, now) / 24))
	if d < 1 {
		d = 1
	}
	return d
}

func overdueBucketIndex(days int) int {
	for i, r := range overdueRanges {
		if r.max == 0 || days <= r.max {
			return i
		}
	}
	return len(overdueRanges) - 1
}

// Duration buckets completion times of done cards and analyses cards that
// are still open past their due date.
func Duration(cards []model.Card, filters model.ReportFilters, now time.Time) model.TaskDurationReport {
	counts := make([]int, len(durationRanges))
	var hours []float64
	var total float64

	overdueCounts := make([]int, len(overdueRanges))
	members := newUserIndex()
	perMember := map[string]int{}
	overdueTotal := 0

	for _, c := range cards {
		if c.Done() {
			h := math.Max(0, timecalc.HoursBetween(c.CreatedAt, c.UpdatedAt))
			counts[durationBucketIndex(h)]++
			hours = append(hours, h)
			total += h
			continue
		}
		if !c.Overdue(now) {
			continue
		}
		overdueTotal++
		overdueCounts[overdueBucketIndex(daysOverdue(*c.DueDate, now))]++
		assignees := c.Assignees()
		for i := range assignees {
			members.add(&assignees[i])
			perMember[assignees[i].ID]++
		}
	}

	n := len(hours)
	buckets := make([]model.DurationBucket, len(durationRanges))
	for i, r := range durationRanges {
		b := model.DurationBucket{
			Label:      r.label,
			MinHours:   r.min,
			Count:      counts[i],
			Percentage: percent(counts[i], n),
		}
		if !math.IsInf(r.max, 1) {
			upper := r.max
			b.MaxHours = &upper
		}
		buckets[i] = b
	}

	rep := model.TaskDurationReport{
		DateRange:      filters.DateRange,
		TotalCompleted: n,
		Buckets:        buckets,
	}
	if n > 0 {
		avg := round1(total / float64(n))
		sort.Float64s(hours)
		median := round1(hours[n/2])
		rep.AverageHours = &avg
		rep.MedianHours = &median
	}

	byDays := make([]model.OverdueBucket, len(overdueRanges))
	for i, r := range overdueRanges {
		byDays[i] = model.OverdueBucket{Label: r.label, Count: overdueCounts[i]}
	}
	byMember := make([]model.MemberCount, 0, len(members.order))
	for _, id := range members.order {
		byMember = append(byMember, model.MemberCount{User: members.refs[id], Count: perMember[id]})
	}
	sort.SliceStable(byMember, func(i, j int) bool {
		return byMember[i].Count > byMember[j].Count
	})
	rep.Overdue = model.OverdueAnalysis{
		Total:    overdueTotal,
		ByDays:   byDays,
		ByMember: topN(byMember, overdueMemberLimit),
	}
	return rep
}
