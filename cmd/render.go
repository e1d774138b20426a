package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/model"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/report"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/timecalc"
)

const rule = "--------------------------------"

// render writes rep in the given format: md (default), csv or json.
func render(w io.Writer, format string, rep any) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "csv":
		return renderCSV(w, rep)
	case "md", "":
		return renderMarkdown(w, rep)
	default:
		return fmt.Errorf("unknown format %q (want md, csv or json)", format)
	}
}

func rangeLabel(r model.DateRange) string {
	return r.Start.Format(timecalc.DateLayout) + " – " + r.End.Format(timecalc.DateLayout)
}

func optHours(h *int) string {
	if h == nil {
		return "–"
	}
	return timecalc.FormatHours(float64(*h))
}

func optFloat(h *float64) string {
	if h == nil {
		return "–"
	}
	return timecalc.FormatHours(*h)
}

func names[T any](items []T, label func(T) string) string {
	if len(items) == 0 {
		return "none"
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = label(it)
	}
	return strings.Join(parts, ", ")
}

func renderMarkdown(w io.Writer, rep any) error {
	switch r := rep.(type) {
	case model.PerformanceReport:
		fmt.Fprintf(w, "## Performance %s\n\n", rangeLabel(r.DateRange))
		fmt.Fprintln(w, "| User | Created | Assigned | Completed | Rate | On time | Late | Overdue | Approved | Rejected | Avg time |")
		fmt.Fprintln(w, "|---|---:|---:|---:|---:|---:|---:|---:|---:|---:|---:|")
		for _, u := range r.Users {
			fmt.Fprintf(w, "| %s | %d | %d | %d | %d%% | %d | %d | %d | %d | %d | %s |\n",
				u.User.Name, u.CardsCreated, u.CardsAssigned, u.CardsCompleted, u.CompletionRate,
				u.CompletedOnTime, u.CompletedLate, u.OverdueCards, u.Approvals, u.Rejections,
				optHours(u.AvgCompletionTimeHours))
		}
		fmt.Fprintf(w, "\nTop performers: %s\n", names(r.TopPerformers, func(u model.UserPerformanceStats) string {
			return fmt.Sprintf("%s (%d%%)", u.User.Name, u.CompletionRate)
		}))
		fmt.Fprintf(w, "Needs attention: %s\n", names(r.NeedsAttention, func(u model.UserPerformanceStats) string {
			return fmt.Sprintf("%s (%d overdue, %d%%)", u.User.Name, u.OverdueCards, u.CompletionRate)
		}))
		s := r.Summary
		fmt.Fprintf(w, "%s\n%d users, %d created, %d completed, %d overdue, %d%% average completion\n",
			rule, s.TotalUsers, s.TotalCardsCreated, s.TotalCardsCompleted, s.TotalOverdue, s.AverageCompletionRate)

	case model.TaskDurationReport:
		fmt.Fprintf(w, "## Task duration %s\n\n", rangeLabel(r.DateRange))
		fmt.Fprintf(w, "Completed: %d   Average: %s   Median: %s\n\n", r.TotalCompleted, optFloat(r.AverageHours), optFloat(r.MedianHours))
		fmt.Fprintln(w, "| Duration | Cards | Share |")
		fmt.Fprintln(w, "|---|---:|---:|")
		for _, b := range r.Buckets {
			fmt.Fprintf(w, "| %s | %d | %d%% |\n", b.Label, b.Count, b.Percentage)
		}
		fmt.Fprintf(w, "\nOverdue: %d\n", r.Overdue.Total)
		for _, b := range r.Overdue.ByDays {
			fmt.Fprintf(w, "  %-12s%d\n", b.Label, b.Count)
		}
		fmt.Fprintf(w, "By member: %s\n", names(r.Overdue.ByMember, func(m model.MemberCount) string {
			return fmt.Sprintf("%s (%d)", m.User.Name, m.Count)
		}))

	case model.WorkloadReport:
		fmt.Fprintf(w, "## Workload %s\n\n", rangeLabel(r.DateRange))
		fmt.Fprintln(w, "| User | Open | Completed | Overdue | Rejected | Created | Score |")
		fmt.Fprintln(w, "|---|---:|---:|---:|---:|---:|---:|")
		for _, u := range r.Users {
			fmt.Fprintf(w, "| %s | %d | %d | %d | %d | %d | %d |\n", u.User.Name, u.OpenCards,
				u.CompletedCards, u.OverdueCards, u.RejectedCards, u.CardsCreatedThisPeriod, u.WorkloadScore)
		}
		load := func(u model.UserWorkloadStats) string { return fmt.Sprintf("%s (%d open)", u.User.Name, u.OpenCards) }
		fmt.Fprintf(w, "\nMost overloaded: %s\n", names(r.MostOverloaded, load))
		fmt.Fprintf(w, "Least loaded: %s\n", names(r.LeastLoaded, load))
		s := r.Summary
		fmt.Fprintf(w, "%s\n%d users, %d open cards, %.1f average, balance index %d\n",
			rule, s.TotalUsers, s.TotalOpenCards, s.AverageOpenCards, s.BalanceIndex)

	case model.TrendsReport:
		fmt.Fprintf(w, "## Trends %s (%s)\n\n", rangeLabel(r.DateRange), r.Granularity)
		fmt.Fprintln(w, "| Period | Created | Completed | Overdue | Velocity |")
		fmt.Fprintln(w, "|---|---:|---:|---:|---:|")
		for i, p := range r.CreatedOverTime {
			fmt.Fprintf(w, "| %s | %.0f | %.0f | %.0f | %.1f |\n", p.Label, p.Value,
				r.CompletedOverTime[i].Value, r.OverdueOverTime[i].Value, r.Velocity[i].Value)
		}
		s := r.Summary
		fmt.Fprintf(w, "%s\n%d created, %d completed, %d overdue, %.1f average velocity\n",
			rule, s.TotalCreated, s.TotalCompleted, s.TotalOverdue, s.AvgVelocity)

	case model.ActivityReport:
		fmt.Fprintf(w, "## Activity %s\n\n", rangeLabel(r.DateRange))
		fmt.Fprintf(w, "Total: %d\n\n", r.TotalActivities)
		fmt.Fprintln(w, "| Type | Count |")
		fmt.Fprintln(w, "|---|---:|")
		for _, t := range r.ByType {
			fmt.Fprintf(w, "| %s | %d |\n", t.Label, t.Count)
		}
		fmt.Fprintf(w, "\nMost active users: %s\n", names(r.ByUser, func(m model.MemberCount) string {
			return fmt.Sprintf("%s (%d)", m.User.Name, m.Count)
		}))
		fmt.Fprintf(w, "Most active cards: %s\n", names(r.MostActiveCards, func(c model.CardActivity) string {
			return fmt.Sprintf("%s (%d)", c.Title, c.Count)
		}))
		if len(r.Recent) > 0 {
			fmt.Fprintln(w, "\nRecent:")
			for _, a := range r.Recent {
				who := "someone"
				if a.Author != nil {
					who = a.Author.Name
				}
				line := fmt.Sprintf("  %s  %-24s%s", a.CreatedAt.Format("2006-01-02 15:04"), report.ActivityLabel(a.Type), who)
				if vc, ok := a.Change(); ok {
					line += fmt.Sprintf("  %s -> %s", changeValue(vc.Old), changeValue(vc.New))
				}
				fmt.Fprintln(w, line)
			}
		}

	default:
		return fmt.Errorf("cannot render %T", rep)
	}
	return nil
}

func renderCSV(w io.Writer, rep any) error {
	switch r := rep.(type) {
	case model.PerformanceReport:
		fmt.Fprintln(w, "user_id,user,cards_created,cards_assigned,cards_completed,completion_rate,completed_on_time,completed_late,overdue_cards,approvals,rejections,avg_completion_time_hours")
		for _, u := range r.Users {
			avg := ""
			if u.AvgCompletionTimeHours != nil {
				avg = fmt.Sprint(*u.AvgCompletionTimeHours)
			}
			fmt.Fprintf(w, "%s,%s,%d,%d,%d,%d,%d,%d,%d,%d,%d,%s\n", csvEscape(u.User.ID), csvEscape(u.User.Name),
				u.CardsCreated, u.CardsAssigned, u.CardsCompleted, u.CompletionRate, u.CompletedOnTime,
				u.CompletedLate, u.OverdueCards, u.Approvals, u.Rejections, avg)
		}
	case model.TaskDurationReport:
		fmt.Fprintln(w, "bucket,min_hours,max_hours,count,percentage")
		for _, b := range r.Buckets {
			upper := ""
			if b.MaxHours != nil {
				upper = fmt.Sprint(*b.MaxHours)
			}
			fmt.Fprintf(w, "%s,%g,%s,%d,%d\n", csvEscape(b.Label), b.MinHours, upper, b.Count, b.Percentage)
		}
		csvSection(w, "overdue_by_days")
		fmt.Fprintln(w, "bucket,count")
		for _, b := range r.Overdue.ByDays {
			fmt.Fprintf(w, "%s,%d\n", csvEscape(b.Label), b.Count)
		}
		csvSection(w, "overdue_by_member")
		writeMemberCounts(w, r.Overdue.ByMember)
	case model.WorkloadReport:
		fmt.Fprintln(w, "user_id,user,open_cards,completed_cards,overdue_cards,rejected_cards,cards_created,workload_score")
		for _, u := range r.Users {
			fmt.Fprintf(w, "%s,%s,%d,%d,%d,%d,%d,%d\n", csvEscape(u.User.ID), csvEscape(u.User.Name), u.OpenCards,
				u.CompletedCards, u.OverdueCards, u.RejectedCards, u.CardsCreatedThisPeriod, u.WorkloadScore)
		}
	case model.TrendsReport:
		fmt.Fprintln(w, "period,label,created,completed,overdue,velocity")
		for i, p := range r.CreatedOverTime {
			fmt.Fprintf(w, "%s,%s,%.0f,%.0f,%.0f,%.1f\n", p.Date.Format(timecalc.DateLayout), csvEscape(p.Label), p.Value,
				r.CompletedOverTime[i].Value, r.OverdueOverTime[i].Value, r.Velocity[i].Value)
		}
	case model.ActivityReport:
		fmt.Fprintln(w, "type,label,count")
		for _, t := range r.ByType {
			fmt.Fprintf(w, "%s,%s,%d\n", csvEscape(string(t.Type)), csvEscape(t.Label), t.Count)
		}
		csvSection(w, "by_user")
		writeMemberCounts(w, r.ByUser)
		csvSection(w, "most_active_cards")
		fmt.Fprintln(w, "card_id,title,count")
		for _, c := range r.MostActiveCards {
			fmt.Fprintf(w, "%s,%s,%d\n", csvEscape(c.CardID), csvEscape(c.Title), c.Count)
		}
		csvSection(w, "recent")
		fmt.Fprintln(w, "created_at,type,author_id,author,card_id,old_value,new_value,description")
		for _, a := range r.Recent {
			var authorID, author, oldValue, newValue string
			if a.Author != nil {
				authorID, author = a.Author.ID, a.Author.Name
			}
			if vc, ok := a.Change(); ok {
				oldValue, newValue = deref(vc.Old), deref(vc.New)
			}
			fmt.Fprintf(w, "%s,%s,%s,%s,%s,%s,%s,%s\n", a.CreatedAt.Format(time.RFC3339), csvEscape(string(a.Type)),
				csvEscape(authorID), csvEscape(author), csvEscape(a.CardID), csvEscape(oldValue), csvEscape(newValue),
				csvEscape(a.Description))
		}
	default:
		return fmt.Errorf("cannot render %T", rep)
	}
	return nil
}

// csvSection starts a further table in a multi-table CSV document.
func csvSection(w io.Writer, name string) {
	fmt.Fprintf(w, "\n# %s\n", name)
}

func writeMemberCounts(w io.Writer, counts []model.MemberCount) {
	fmt.Fprintln(w, "user_id,user,count")
	for _, m := range counts {
		fmt.Fprintf(w, "%s,%s,%d\n", csvEscape(m.User.ID), csvEscape(m.User.Name), m.Count)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// changeValue quotes one side of an activity diff.
func changeValue(s *string) string {
	if s == nil || *s == "" {
		return "(none)"
	}
	return strconv.Quote(*s)
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
