package report

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/model"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/timecalc"
)

type perfAccumulator struct {
	stats      model.UserPerformanceStats
	totalHours float64
}

// Performance computes per-user delivery statistics over cards.
//
// A card is credited as created to its author and as assigned to each of its
// members. Completed counts assigned cards that are completed or archived;
// a completion is on time when the card was last updated at or before its
// due date. Approvals and rejections go to the acting user.
func Performance(cards []model.Card, filters model.ReportFilters, now time.Time) model.PerformanceReport {
	users := newUserIndex()
	acc := map[string]*perfAccumulator{}
	get := func(ref *model.UserRef) *perfAccumulator {
		if ref == nil || ref.ID == "" {
			return nil
		}
		if users.add(ref) {
			acc[ref.ID] = &perfAccumulator{stats: model.UserPerformanceStats{User: *ref}}
		}
		return acc[ref.ID]
	}

	summary := model.PerformanceSummary{}
	for _, c := range cards {
		summary.TotalCardsCreated++
		if c.Done() {
			summary.TotalCardsCompleted++
		}
		overdue := c.Overdue(now)
		if overdue {
			summary.TotalOverdue++
		}

		if a := get(c.Author); a != nil {
			a.stats.CardsCreated++
		}
		assignees := c.Assignees()
		for i := range assignees {
			a := get(&assignees[i])
			if a == nil {
				continue
			}
			a.stats.CardsAssigned++
			if overdue {
				a.stats.OverdueCards++
			}
			if !c.Done() {
				continue
			}
			a.stats.CardsCompleted++
			a.totalHours += math.Max(0, timecalc.HoursBetween(c.CreatedAt, c.UpdatedAt))
			if c.DueDate != nil {
				if c.UpdatedAt.After(*c.DueDate) {
					a.stats.CompletedLate++
				} else {
					a.stats.CompletedOnTime++
				}
			}
		}
		if c.Approved {
			if a := get(c.ApprovedBy); a != nil {
				a.stats.Approvals++
			}
		}
		if c.Rejected {
			if a := get(c.RejectedBy); a != nil {
				a.stats.Rejections++
			}
		}
	}

	out := make([]model.UserPerformanceStats, 0, len(users.order))
	rateSum, rated := 0, 0
	for _, id := range users.order {
		a := acc[id]
		s := a.stats
		s.CompletionRate = percent(s.CardsCompleted, s.CardsAssigned)
		if s.CardsCompleted > 0 {
			avg := int(math.Round(a.totalHours / float64(s.CardsCompleted)))
			s.AvgCompletionTimeHours = &avg
		}
		if s.CardsAssigned > 0 {
			rateSum += s.CompletionRate
			rated++
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].User.Name) < strings.ToLower(out[j].User.Name)
	})

	summary.TotalUsers = len(out)
	if rated > 0 {
		summary.AverageCompletionRate = int(math.Round(float64(rateSum) / float64(rated)))
	}

	return model.PerformanceReport{
		DateRange:      filters.DateRange,
		Users:          out,
		TopPerformers:  topPerformers(out),
		NeedsAttention: needsAttention(out),
		Summary:        summary,
	}
}

func topPerformers(users []model.UserPerformanceStats) []model.UserPerformanceStats {
	var ranked []model.UserPerformanceStats
	for _, u := range users {
		if u.CardsAssigned >= minAssignedForRanking {
			ranked = append(ranked, u)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CompletionRate > ranked[j].CompletionRate
	})
	return topN(ranked, topPerformersLimit)
}

func needsAttention(users []model.UserPerformanceStats) []model.UserPerformanceStats {
	var flagged []model.UserPerformanceStats
	for _, u := range users {
		lowRate := u.CardsAssigned >= minAssignedForRanking && u.CompletionRate < attentionRateThreshold
		if u.OverdueCards > 0 || lowRate {
			flagged = append(flagged, u)
		}
	}
	sort.SliceStable(flagged, func(i, j int) bool {
		return flagged[i].OverdueCards > flagged[j].OverdueCards
	})
	return topN(flagged, needsAttentionLimit)
}
