// Package fetch resolves report filters into the cards or activities a
// report is computed from.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/model"
)

var (
	// ErrNoWorkspace is returned when the filters name no workspace. Callers
	// treat it as "nothing to fetch".
	ErrNoWorkspace = errors.New("no workspace selected")
	// ErrLoadFailed wraps any failure while resolving records.
	ErrLoadFailed = errors.New("failed to load report")
)

const (
	defaultChunkSize   = 50
	defaultConcurrency = 4
)

// Source is the backend the fetcher reads from.
type Source interface {
	Boards(ctx context.Context, workspaceID string, boardIDs []string) ([]model.Board, error)
	Lists(ctx context.Context, boardIDs []string) ([]model.List, error)
	Cards(ctx context.Context, listIDs []string, r model.DateRange, includeArchived bool) ([]model.Card, error)
	Activities(ctx context.Context, boardIDs []string, r model.DateRange) ([]model.Activity, error)
}

// Options tunes how card requests are split and parallelised.
type Options struct {
	ChunkSize   int
	Concurrency int
}

// Fetcher resolves workspace → boards → lists → cards.
type Fetcher struct {
	source Source
	opts   Options
	logger *log.Logger
}

// New returns a Fetcher. Zero options take defaults; a nil logger uses the
// default charm logger.
func New(source Source, opts Options, logger *log.Logger) *Fetcher {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Fetcher{source: source, opts: opts, logger: logger}
}

func loadFailed(stage string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrLoadFailed, stage, err)
}

func (f *Fetcher) boardIDs(ctx context.Context, filters model.ReportFilters) ([]string, error) {
	boards, err := f.source.Boards(ctx, filters.WorkspaceID, filters.BoardIDs)
	if err != nil {
		return nil, loadFailed("boards", err)
	}
	ids := make([]string, 0, len(boards))
	for _, b := range boards {
		ids = append(ids, b.ID)
	}
	return ids, nil
}

// Cards returns the cards matching filters in list order. Any failure
// aborts the whole resolution; no partial result is returned.
func (f *Fetcher) Cards(ctx context.Context, filters model.ReportFilters) ([]model.Card, error) {
	if !filters.HasWorkspace() {
		return nil, ErrNoWorkspace
	}
	start := time.Now()

	boardIDs, err := f.boardIDs(ctx, filters)
	if err != nil {
		return nil, err
	}
	if len(boardIDs) == 0 {
		return []model.Card{}, nil
	}

	lists, err := f.source.Lists(ctx, boardIDs)
	if err != nil {
		return nil, loadFailed("lists", err)
	}
	listIDs := make([]string, 0, len(lists))
	for _, l := range lists {
		listIDs = append(listIDs, l.ID)
	}

	chunks := model.ChunkIDs(listIDs, f.opts.ChunkSize)
	results := make([][]model.Card, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Concurrency)
	for i, ids := range chunks {
		g.Go(func() error {
			cards, err := f.source.Cards(gctx, ids, filters.DateRange, filters.IncludeArchived)
			if err != nil {
				return err
			}
			results[i] = cards
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, loadFailed("cards", err)
	}

	cards := []model.Card{}
	for _, part := range results {
		for _, c := range part {
			if keepCard(c, filters.MemberIDs) {
				cards = append(cards, c)
			}
		}
	}

	f.logger.Debug("cards resolved", "workspace", filters.WorkspaceID, "boards", len(boardIDs),
		"lists", len(listIDs), "cards", len(cards), "elapsed", time.Since(start).Round(time.Millisecond))
	return cards, nil
}

// Activities returns the activities on the selected boards, newest first.
func (f *Fetcher) Activities(ctx context.Context, filters model.ReportFilters) ([]model.Activity, error) {
	if !filters.HasWorkspace() {
		return nil, ErrNoWorkspace
	}

	boardIDs, err := f.boardIDs(ctx, filters)
	if err != nil {
		return nil, err
	}
	if len(boardIDs) == 0 {
		return []model.Activity{}, nil
	}

	all, err := f.source.Activities(ctx, boardIDs, filters.DateRange)
	if err != nil {
		return nil, loadFailed("activities", err)
	}
	members := memberSet(filters.MemberIDs)
	activities := []model.Activity{}
	for _, a := range all {
		if members == nil || (a.Author != nil && members[a.Author.ID]) {
			activities = append(activities, a)
		}
	}
	f.logger.Debug("activities resolved", "workspace", filters.WorkspaceID, "activities", len(activities))
	return activities, nil
}

func memberSet(ids []string) map[string]bool {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// keepCard reports whether any assignee or the author is in memberIDs. An
// empty memberIDs keeps everything.
func keepCard(c model.Card, memberIDs []string) bool {
	if len(memberIDs) == 0 {
		return true
	}
	for _, id := range memberIDs {
		if c.AuthorID() == id || c.HasMember(id) {
			return true
		}
	}
	return false
}
