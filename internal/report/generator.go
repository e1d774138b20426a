package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/fetch"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/model"
)

// Source supplies the records a report is computed from. *fetch.Fetcher
// is the production implementation.
type Source interface {
	Cards(ctx context.Context, filters model.ReportFilters) ([]model.Card, error)
	Activities(ctx context.Context, filters model.ReportFilters) ([]model.Activity, error)
}

// Generator fetches records and runs the requested pass.
type Generator struct {
	source Source
	now    func() time.Time
	logger *log.Logger
}

// NewGenerator returns a Generator reading from source. now defaults to
// time.Now and logger to the default charm logger.
func NewGenerator(source Source, now func() time.Time, logger *log.Logger) *Generator {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{source: source, now: now, logger: logger}
}

// Generate builds the report of the given kind. Filters without a workspace
// produce an empty report without touching the source. Fetch failures are
// returned as is; no partial report is built.
func (g *Generator) Generate(ctx context.Context, kind model.Kind, filters model.ReportFilters) (any, error) {
	if !filters.HasWorkspace() {
		g.logger.Debug("no workspace selected, returning empty report", "kind", kind)
		return Empty(kind, filters)
	}

	start := time.Now()
	var (
		rep any
		n   int
	)
	switch kind {
	case model.KindActivity:
		activities, err := g.source.Activities(ctx, filters)
		if errors.Is(err, fetch.ErrNoWorkspace) {
			return Empty(kind, filters)
		}
		if err != nil {
			g.logger.Error("activity fetch failed", "workspace", filters.WorkspaceID, "err", err)
			return nil, err
		}
		n = len(activities)
		rep = Activity(activities, filters)
	case model.KindPerformance, model.KindDuration, model.KindWorkload, model.KindTrends:
		cards, err := g.source.Cards(ctx, filters)
		if errors.Is(err, fetch.ErrNoWorkspace) {
			return Empty(kind, filters)
		}
		if err != nil {
			g.logger.Error("card fetch failed", "workspace", filters.WorkspaceID, "kind", kind, "err", err)
			return nil, err
		}
		n = len(cards)
		rep, err = FromCards(kind, cards, filters, g.now())
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown report kind %q", kind)
	}

	g.logger.Info("report generated", "kind", kind, "workspace", filters.WorkspaceID,
		"records", n, "elapsed", time.Since(start).Round(time.Millisecond))
	return rep, nil
}

// FromCards runs one of the card-based passes.
func FromCards(kind model.Kind, cards []model.Card, filters model.ReportFilters, now time.Time) (any, error) {
	switch kind {
	case model.KindPerformance:
		return Performance(cards, filters, now), nil
	case model.KindDuration:
		return Duration(cards, filters, now), nil
	case model.KindWorkload:
		return Workload(cards, filters, now), nil
	case model.KindTrends:
		return Trends(cards, filters, now), nil
	default:
		return nil, fmt.Errorf("report kind %q is not computed from cards", kind)
	}
}

// Empty returns the well-formed zero report of the given kind.
func Empty(kind model.Kind, filters model.ReportFilters) (any, error) {
	if kind == model.KindActivity {
		return Activity(nil, filters), nil
	}
	return FromCards(kind, nil, filters, time.Time{})
}

// Pointer returns a pointer to the zero report of kind, for decoding into.
func Pointer(kind model.Kind) any {
	switch kind {
	case model.KindPerformance:
		return &model.PerformanceReport{}
	case model.KindDuration:
		return &model.TaskDurationReport{}
	case model.KindWorkload:
		return &model.WorkloadReport{}
	case model.KindTrends:
		return &model.TrendsReport{}
	default:
		return &model.ActivityReport{}
	}
}

// Decode parses an archived report of the given kind. The result has the
// same dynamic type Generate returns.
func Decode(kind model.Kind, raw []byte) (any, error) {
	if _, ok := model.ParseKind(string(kind)); !ok {
		return nil, fmt.Errorf("unknown report kind %q", kind)
	}
	dest := Pointer(kind)
	if err := json.Unmarshal(raw, dest); err != nil {
		return nil, fmt.Errorf("decoding %s report: %w", kind, err)
	}
	switch r := dest.(type) {
	case *model.PerformanceReport:
		return *r, nil
	case *model.TaskDurationReport:
		return *r, nil
	case *model.WorkloadReport:
		return *r, nil
	case *model.TrendsReport:
		return *r, nil
	default:
		return *dest.(*model.ActivityReport), nil
	}
}
