// Package boxtasks reads boards, lists, cards and activities from the
// BoxTasks JSON:API backend.
package boxtasks

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/jsonapi"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/model"
)

// ChunkSize is the maximum number of ids sent in one IN filter.
const ChunkSize = 50

const (
	boardPath    = "jsonapi/node/board"
	listPath     = "jsonapi/node/board_list"
	cardPath     = "jsonapi/node/card"
	activityPath = "jsonapi/node/activity"
)

// Store reads backend resources through a JSON:API client.
type Store struct {
	client *jsonapi.Client
}

// NewStore returns a Store using client.
func NewStore(client *jsonapi.Client) *Store {
	return &Store{client: client}
}

// Boards returns the boards of a workspace, restricted to boardIDs when
// given. Archived boards are kept; cards are filtered separately.
func (s *Store) Boards(ctx context.Context, workspaceID string, boardIDs []string) ([]model.Board, error) {
	var boards []model.Board
	collect := func(q *jsonapi.Query) error {
		data, _, err := s.client.Collect(ctx, boardPath, q.Filter("field_board_workspace.id", workspaceID).Sort("title"))
		if err != nil {
			return fmt.Errorf("fetching boards: %w", err)
		}
		for _, r := range data {
			boards = append(boards, MapBoard(r))
		}
		return nil
	}

	if len(boardIDs) == 0 {
		if err := collect(jsonapi.NewQuery()); err != nil {
			return nil, err
		}
		return boards, nil
	}
	for _, ids := range model.ChunkIDs(boardIDs, ChunkSize) {
		if err := collect(jsonapi.NewQuery().FilterIn("id", ids)); err != nil {
			return nil, err
		}
	}
	return boards, nil
}

// Lists returns the lists of the given boards.
func (s *Store) Lists(ctx context.Context, boardIDs []string) ([]model.List, error) {
	var lists []model.List
	for _, ids := range model.ChunkIDs(boardIDs, ChunkSize) {
		q := jsonapi.NewQuery().FilterIn("field_list_board.id", ids).Sort("field_list_position")
		data, _, err := s.client.Collect(ctx, listPath, q)
		if err != nil {
			return nil, fmt.Errorf("fetching lists: %w", err)
		}
		for _, r := range data {
			lists = append(lists, MapList(r))
		}
	}
	return lists, nil
}

func rangeBounds(r model.DateRange) (string, string) {
	var from, to string
	if !r.Start.IsZero() {
		from = r.Start.UTC().Format(time.RFC3339)
	}
	if !r.End.IsZero() {
		to = r.End.UTC().Format(time.RFC3339)
	}
	return from, to
}

// Cards returns the cards on the given lists created inside r. Archived
// cards are skipped unless includeArchived is set. All ids go into one
// request, so callers pass at most ChunkSize of them.
func (s *Store) Cards(ctx context.Context, listIDs []string, r model.DateRange, includeArchived bool) ([]model.Card, error) {
	if len(listIDs) == 0 {
		return nil, nil
	}
	from, to := rangeBounds(r)
	q := jsonapi.NewQuery().
		FilterIn("field_card_list.id", listIDs).
		FilterRange("created", from, to).
		Include("uid", "field_card_members", "field_card_approved_by", "field_card_rejected_by").
		Sort("created")
	if !includeArchived {
		q.Filter("field_card_archived", "0")
	}
	data, included, err := s.client.Collect(ctx, cardPath, q)
	if err != nil {
		return nil, fmt.Errorf("fetching cards: %w", err)
	}
	users := jsonapi.NewIndex(included)
	cards := make([]model.Card, 0, len(data))
	for _, res := range data {
		c, err := MapCard(res, users)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// Activities returns the activities on the given boards created inside r,
// newest first.
func (s *Store) Activities(ctx context.Context, boardIDs []string, r model.DateRange) ([]model.Activity, error) {
	from, to := rangeBounds(r)
	var activities []model.Activity
	for _, ids := range model.ChunkIDs(boardIDs, ChunkSize) {
		q := jsonapi.NewQuery().
			FilterIn("field_activity_board.id", ids).
			FilterRange("created", from, to).
			Include("uid").
			Sort("-created")
		data, included, err := s.client.Collect(ctx, activityPath, q)
		if err != nil {
			return nil, fmt.Errorf("fetching activities: %w", err)
		}
		users := jsonapi.NewIndex(included)
		for _, res := range data {
			a, err := MapActivity(res, users)
			if err != nil {
				return nil, err
			}
			activities = append(activities, a)
		}
	}
	// Chunks are each sorted; merge them back into one descending feed.
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].CreatedAt.After(activities[j].CreatedAt)
	})
	return activities, nil
}
