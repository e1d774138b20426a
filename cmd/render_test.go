package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/model"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/report"
)

var testFilters = model.ReportFilters{
	WorkspaceID: "ws1",
	DateRange: model.DateRange{
		Start: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC),
	},
}

func TestRenderEveryKind(t *testing.T) {
	for _, kind := range model.Kinds {
		rep, err := report.Empty(kind, testFilters)
		if err != nil {
			t.Fatalf("Empty(%s): %v", kind, err)
		}
		for _, format := range []string{"md", "csv", "json"} {
			var buf bytes.Buffer
			if err := render(&buf, format, rep); err != nil {
				t.Errorf("render(%s, %s): %v", kind, format, err)
				continue
			}
			if buf.Len() == 0 {
				t.Errorf("render(%s, %s) wrote nothing", kind, format)
			}
		}
	}
}

func TestRenderPerformance(t *testing.T) {
	avg := 30
	rep := model.PerformanceReport{
		DateRange: testFilters.DateRange,
		Users: []model.UserPerformanceStats{{
			User:                   model.UserRef{ID: "u1", Name: "Doe, Jane"},
			CardsAssigned:          4,
			CardsCompleted:         3,
			CompletionRate:         75,
			AvgCompletionTimeHours: &avg,
		}},
	}

	var md bytes.Buffer
	if err := render(&md, "md", rep); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"## Performance 2026-02-01", "| Doe, Jane | 0 | 4 | 3 | 75% |", "1d 6h", "Needs attention: none"} {
		if !strings.Contains(md.String(), want) {
			t.Errorf("markdown missing %q:\n%s", want, md.String())
		}
	}

	var csv bytes.Buffer
	if err := render(&csv, "csv", rep); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(csv.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv lines = %d, want 2", len(lines))
	}
	if want := `u1,"Doe, Jane",0,4,3,75,0,0,0,0,0,30`; lines[1] != want {
		t.Errorf("csv row = %q, want %q", lines[1], want)
	}

	var js bytes.Buffer
	if err := render(&js, "json", rep); err != nil {
		t.Fatal(err)
	}
	var back model.PerformanceReport
	if err := json.Unmarshal(js.Bytes(), &back); err != nil {
		t.Fatalf("json output does not decode: %v", err)
	}
	if back.Users[0].CompletionRate != 75 {
		t.Errorf("decoded rate = %d", back.Users[0].CompletionRate)
	}
}

func TestRenderDurationCSVSections(t *testing.T) {
	rep := model.TaskDurationReport{
		DateRange: testFilters.DateRange,
		Buckets:   []model.DurationBucket{{Label: "< 1 day", MinHours: 0, Count: 2, Percentage: 100}},
		Overdue: model.OverdueAnalysis{
			Total:    3,
			ByDays:   []model.OverdueBucket{{Label: "1-3 days", Count: 2}, {Label: "> 30 days", Count: 1}},
			ByMember: []model.MemberCount{{User: model.UserRef{ID: "u1", Name: "Doe, Jane"}, Count: 3}},
		},
	}
	var buf bytes.Buffer
	if err := render(&buf, "csv", rep); err != nil {
		t.Fatal(err)
	}
	want := "bucket,min_hours,max_hours,count,percentage\n" +
		"< 1 day,0,,2,100\n" +
		"\n# overdue_by_days\n" +
		"bucket,count\n" +
		"1-3 days,2\n" +
		"> 30 days,1\n" +
		"\n# overdue_by_member\n" +
		"user_id,user,count\n" +
		"u1,\"Doe, Jane\",3\n"
	if buf.String() != want {
		t.Errorf("csv =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestRenderActivitySections(t *testing.T) {
	at := time.Date(2026, 2, 3, 9, 30, 0, 0, time.UTC)
	rep := model.ActivityReport{
		DateRange:       testFilters.DateRange,
		TotalActivities: 2,
		ByType:          []model.TypeCount{{Type: model.ActivityCardMoved, Label: "Card moved", Count: 2}},
		ByUser:          []model.MemberCount{{User: model.UserRef{ID: "u1", Name: "Ann"}, Count: 2}},
		MostActiveCards: []model.CardActivity{{CardID: "c1", Title: "Fix login", Count: 2}},
		Recent: []model.Activity{
			{
				Type:        model.ActivityCardMoved,
				Author:      &model.UserRef{ID: "u1", Name: "Ann"},
				CardID:      "c1",
				Description: "moved card",
				Data:        json.RawMessage(`{"old_value":"To Do","new_value":"Done"}`),
				CreatedAt:   at,
			},
			{Type: model.ActivityCardMoved, CardID: "c1", Description: "no payload", CreatedAt: at},
		},
	}

	var csv bytes.Buffer
	if err := render(&csv, "csv", rep); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"\n# by_user\nuser_id,user,count\nu1,Ann,2\n",
		"\n# most_active_cards\ncard_id,title,count\nc1,Fix login,2\n",
		"\n# recent\ncreated_at,type,author_id,author,card_id,old_value,new_value,description\n",
		"2026-02-03T09:30:00Z,card_moved,u1,Ann,c1,To Do,Done,moved card\n",
		"2026-02-03T09:30:00Z,card_moved,,,c1,,,no payload\n",
	} {
		if !strings.Contains(csv.String(), want) {
			t.Errorf("csv missing %q:\n%s", want, csv.String())
		}
	}

	var md bytes.Buffer
	if err := render(&md, "md", rep); err != nil {
		t.Fatal(err)
	}
	if want := `Ann  "To Do" -> "Done"`; !strings.Contains(md.String(), want) {
		t.Errorf("markdown missing %q:\n%s", want, md.String())
	}
	if strings.Count(md.String(), "->") != 1 {
		t.Errorf("only the entry with a payload should show a change:\n%s", md.String())
	}
}

func TestRenderErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := render(&buf, "xml", model.WorkloadReport{}); err == nil {
		t.Error("unknown format accepted")
	}
	if err := render(&buf, "md", 42); err == nil {
		t.Error("unknown report type accepted")
	}
}

func TestReportKinds(t *testing.T) {
	tests := []struct {
		arg     string
		want    int
		wantErr bool
	}{
		{"all", len(model.Kinds), false},
		{"ALL", len(model.Kinds), false},
		{"workload", 1, false},
		{" Trends ", 1, false},
		{"burndown", 0, true},
	}
	for _, tt := range tests {
		got, err := reportKinds(tt.arg)
		if (err != nil) != tt.wantErr {
			t.Errorf("reportKinds(%q) err = %v", tt.arg, err)
			continue
		}
		if len(got) != tt.want {
			t.Errorf("reportKinds(%q) = %v, want %d kinds", tt.arg, got, tt.want)
		}
	}
}

func TestFilterFlagsBuild(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	f := filterFlags{boards: "b1, b2,", members: "u1", from: "2026-03-01"}
	got, err := f.build("default-ws", time.UTC, now)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got.WorkspaceID != "default-ws" {
		t.Errorf("workspace = %q, want default-ws", got.WorkspaceID)
	}
	if len(got.BoardIDs) != 2 || got.BoardIDs[1] != "b2" {
		t.Errorf("boards = %v", got.BoardIDs)
	}
	if !got.DateRange.Start.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", got.DateRange.Start)
	}

	f = filterFlags{workspace: "ws2", from: "2026-03-09", to: "2026-03-01"}
	if _, err := f.build("default-ws", time.UTC, now); err == nil {
		t.Error("inverted range accepted")
	}
}
