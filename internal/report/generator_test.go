package report_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/fetch"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/model"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/report"
)

type stubSource struct {
	cards      []model.Card
	activities []model.Activity
	err        error
	calls      int
}

func (s *stubSource) Cards(context.Context, model.ReportFilters) ([]model.Card, error) {
	s.calls++
	return s.cards, s.err
}

func (s *stubSource) Activities(context.Context, model.ReportFilters) ([]model.Activity, error) {
	s.calls++
	return s.activities, s.err
}

func newGenerator(src report.Source) *report.Generator {
	return report.NewGenerator(src, func() time.Time { return now }, log.New(io.Discard))
}

func TestGenerateWithoutWorkspace(t *testing.T) {
	src := &stubSource{}
	g := newGenerator(src)
	for _, kind := range model.Kinds {
		rep, err := g.Generate(context.Background(), kind, model.ReportFilters{})
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if rep == nil {
			t.Fatalf("%s: nil report", kind)
		}
	}
	if src.calls != 0 {
		t.Errorf("source called %d times", src.calls)
	}
}

func TestGenerateNoWorkspaceFromSource(t *testing.T) {
	g := newGenerator(&stubSource{err: fetch.ErrNoWorkspace})
	rep, err := g.Generate(context.Background(), model.KindWorkload, model.ReportFilters{WorkspaceID: "ws"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if w, ok := rep.(model.WorkloadReport); !ok || len(w.Users) != 0 {
		t.Errorf("rep = %#v, want empty WorkloadReport", rep)
	}
}

func TestGeneratePropagatesLoadFailure(t *testing.T) {
	failure := errors.Join(fetch.ErrLoadFailed, errors.New("timeout"))
	g := newGenerator(&stubSource{err: failure})
	for _, kind := range []model.Kind{model.KindPerformance, model.KindActivity} {
		rep, err := g.Generate(context.Background(), kind, model.ReportFilters{WorkspaceID: "ws"})
		if !errors.Is(err, fetch.ErrLoadFailed) {
			t.Errorf("%s: err = %v, want ErrLoadFailed", kind, err)
		}
		if rep != nil {
			t.Errorf("%s: partial report returned", kind)
		}
	}
}

func TestGenerateDispatchesByKind(t *testing.T) {
	created := now.Add(-48 * time.Hour)
	src := &stubSource{
		cards: []model.Card{makeCard("c1", "a", []string{"a"}, created, 24, true)},
		activities: []model.Activity{
			{ID: "x", Type: model.ActivityCardCreated, CardID: "c1", CreatedAt: created},
		},
	}
	g := newGenerator(src)
	filters := filtersFor(now.AddDate(0, 0, -7), now)

	tests := []struct {
		kind  model.Kind
		check func(any) bool
	}{
		{model.KindPerformance, func(r any) bool { p, ok := r.(model.PerformanceReport); return ok && p.Summary.TotalCardsCompleted == 1 }},
		{model.KindDuration, func(r any) bool { d, ok := r.(model.TaskDurationReport); return ok && d.TotalCompleted == 1 }},
		{model.KindWorkload, func(r any) bool { w, ok := r.(model.WorkloadReport); return ok && w.Summary.TotalUsers == 1 }},
		{model.KindTrends, func(r any) bool { tr, ok := r.(model.TrendsReport); return ok && tr.Granularity == model.Daily }},
		{model.KindActivity, func(r any) bool { a, ok := r.(model.ActivityReport); return ok && a.TotalActivities == 1 }},
	}
	for _, tt := range tests {
		rep, err := g.Generate(context.Background(), tt.kind, filters)
		if err != nil {
			t.Fatalf("%s: %v", tt.kind, err)
		}
		if !tt.check(rep) {
			t.Errorf("%s: unexpected report %#v", tt.kind, rep)
		}
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	filters := model.ReportFilters{WorkspaceID: "ws"}
	for _, kind := range model.Kinds {
		rep, err := report.Empty(kind, filters)
		if err != nil {
			t.Fatalf("Empty(%s): %v", kind, err)
		}
		raw, err := json.Marshal(rep)
		if err != nil {
			t.Fatal(err)
		}
		got, err := report.Decode(kind, raw)
		if err != nil {
			t.Fatalf("Decode(%s): %v", kind, err)
		}
		if fmt.Sprintf("%T", got) != fmt.Sprintf("%T", rep) {
			t.Errorf("Decode(%s) type = %T, want %T", kind, got, rep)
		}
	}
	if _, err := report.Decode("bogus", []byte(`{}`)); err == nil {
		t.Error("Decode(bogus) succeeded")
	}
}
