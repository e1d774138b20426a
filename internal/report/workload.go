package report

import (
	"math"
	"sort"
	"time"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/model"
)

// Workload measures how open cards are spread across users.
//
// Scores are normalised against the most loaded user, so the busiest user
// scores 100 unless nobody has open cards.
func Workload(cards []model.Card, filters model.ReportFilters, now time.Time) model.WorkloadReport {
	users := newUserIndex()
	acc := map[string]*model.UserWorkloadStats{}
	get := func(ref *model.UserRef) *model.UserWorkloadStats {
		if ref == nil || ref.ID == "" {
			return nil
		}
		if users.add(ref) {
			acc[ref.ID] = &model.UserWorkloadStats{User: *ref}
		}
		return acc[ref.ID]
	}

	for _, c := range cards {
		overdue := c.Overdue(now)
		assignees := c.Assignees()
		for i := range assignees {
			s := get(&assignees[i])
			if s == nil {
				continue
			}
			if c.Done() {
				s.CompletedCards++
			} else {
				s.OpenCards++
			}
			if overdue {
				s.OverdueCards++
			}
			if c.Rejected {
				s.RejectedCards++
			}
		}
		if s := get(c.Author); s != nil {
			s.CardsCreatedThisPeriod++
		}
	}

	out := make([]model.UserWorkloadStats, 0, len(users.order))
	maxOpen := 0
	totalOpen := 0
	for _, id := range users.order {
		s := *acc[id]
		if s.OpenCards > maxOpen {
			maxOpen = s.OpenCards
		}
		totalOpen += s.OpenCards
		out = append(out, s)
	}
	denom := math.Max(1, float64(maxOpen))
	for i := range out {
		out[i].WorkloadScore = int(math.Round(float64(out[i].OpenCards) / denom * 100))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OpenCards > out[j].OpenCards
	})

	summary := model.WorkloadSummary{
		TotalUsers:     len(out),
		TotalOpenCards: totalOpen,
		BalanceIndex:   balanceIndex(out),
	}
	if len(out) > 0 {
		summary.AverageOpenCards = round1(float64(totalOpen) / float64(len(out)))
	}

	return model.WorkloadReport{
		DateRange:      filters.DateRange,
		Users:          out,
		MostOverloaded: topN(out, overloadedLimit),
		LeastLoaded:    leastLoaded(out),
		Summary:        summary,
	}
}

// leastLoaded takes the tail of the busiest-first ordering and flips it so
// the least loaded user comes first.
func leastLoaded(sorted []model.UserWorkloadStats) []model.UserWorkloadStats {
	start := len(sorted) - leastLoadedLimit
	if start < 0 {
		start = 0
	}
	tail := sorted[start:]
	out := make([]model.UserWorkloadStats, len(tail))
	for i := range tail {
		out[i] = tail[len(tail)-1-i]
	}
	return out
}

// balanceIndex maps the coefficient of variation of open cards onto 0-100,
// where 100 is a perfectly even spread.
func balanceIndex(users []model.UserWorkloadStats) int {
	if len(users) == 0 {
		return 100
	}
	var sum float64
	for _, u := range users {
		sum += float64(u.OpenCards)
	}
	mean := sum / float64(len(users))
	if mean == 0 {
		return 100
	}
	var sq float64
	for _, u := range users {
		d := float64(u.OpenCards) - mean
		sq += d * d
	}
	stddev := math.Sqrt(sq / float64(len(users)))
	idx := int(math.Round(100 - (stddev/mean)*50))
	if idx < 0 {
		return 0
	}
	return idx
}
