package boxtasks_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/boxtasks"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/jsonapi"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/model"
)

func TestStoreResolvesHierarchy(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/jsonapi/node/board", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("filter[c1][condition][value]"); got != "ws1" {
			t.Errorf("workspace filter = %q", got)
		}
		fmt.Fprint(w, `{"data":[{"type":"node--board","id":"b1","attributes":{"title":"Main"},
			"relationships":{"field_board_workspace":{"data":{"type":"node--workspace","id":"ws1"}}}}]}`)
	})
	mux.HandleFunc("/jsonapi/node/board_list", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"type":"node--board_list","id":"l1","attributes":{"title":"Todo"},
			"relationships":{"field_list_board":{"data":{"type":"node--board","id":"b1"}}}}]}`)
	})
	mux.HandleFunc("/jsonapi/node/card", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("filter[c2][condition][path]") != "created" || q.Get("filter[c2][condition][value]") != "2026-02-01T00:00:00Z" {
			t.Errorf("expected created range filter, got %v", q)
		}
		if q.Get("filter[c4][condition][path]") != "field_card_archived" {
			t.Errorf("expected archived filter, got %v", q)
		}
		fmt.Fprint(w, `{"data":[{"type":"node--card","id":"c1",
			"attributes":{"title":"One","created":"2026-02-01T00:00:00Z","changed":"2026-02-02T00:00:00Z"},
			"relationships":{"uid":{"data":{"type":"user--user","id":"u1"}},
				"field_card_list":{"data":{"type":"node--board_list","id":"l1"}}}}],
			"included":[{"type":"user--user","id":"u1","attributes":{"display_name":"Ann"}}]}`)
	})
	mux.HandleFunc("/jsonapi/node/activity", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sort") != "-created" {
			t.Errorf("sort = %q", r.URL.Query().Get("sort"))
		}
		fmt.Fprint(w, `{"data":[
			{"type":"node--activity","id":"a2","attributes":{"field_activity_type":"card_moved","created":"2026-02-03T00:00:00Z"}},
			{"type":"node--activity","id":"a1","attributes":{"field_activity_type":"card_created","created":"2026-02-01T00:00:00Z"}}]}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	store := boxtasks.NewStore(jsonapi.New(srv.URL, srv.Client()))

	boards, err := store.Boards(ctx, "ws1", nil)
	if err != nil || len(boards) != 1 || boards[0].WorkspaceID != "ws1" {
		t.Fatalf("Boards = %v, %v", boards, err)
	}
	lists, err := store.Lists(ctx, []string{"b1"})
	if err != nil || len(lists) != 1 || lists[0].BoardID != "b1" {
		t.Fatalf("Lists = %v, %v", lists, err)
	}
	feb := model.DateRange{
		Start: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC),
	}
	cards, err := store.Cards(ctx, []string{"l1"}, feb, false)
	if err != nil || len(cards) != 1 {
		t.Fatalf("Cards = %v, %v", cards, err)
	}
	if cards[0].Author == nil || cards[0].Author.Name != "Ann" {
		t.Errorf("Author = %v", cards[0].Author)
	}
	activities, err := store.Activities(ctx, []string{"b1"}, model.DateRange{})
	if err != nil || len(activities) != 2 || activities[0].ID != "a2" {
		t.Fatalf("Activities = %v, %v", activities, err)
	}
}

func TestStoreSkipsEmptyIDSets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL)
	}))
	defer srv.Close()

	store := boxtasks.NewStore(jsonapi.New(srv.URL, srv.Client()))
	lists, err := store.Lists(context.Background(), nil)
	if err != nil || lists != nil {
		t.Errorf("Lists(nil) = %v, %v", lists, err)
	}
	cards, err := store.Cards(context.Background(), nil, model.DateRange{}, true)
	if err != nil || cards != nil {
		t.Errorf("Cards(nil) = %v, %v", cards, err)
	}
}

func TestStoreChunksOnlyBoardIDs(t *testing.T) {
	var listCalls, cardCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/jsonapi/node/board_list", func(w http.ResponseWriter, r *http.Request) {
		listCalls.Add(1)
		fmt.Fprint(w, `{"data":[]}`)
	})
	mux.HandleFunc("/jsonapi/node/card", func(w http.ResponseWriter, r *http.Request) {
		cardCalls.Add(1)
		fmt.Fprint(w, `{"data":[]}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ids := make([]string, boxtasks.ChunkSize+10)
	for i := range ids {
		ids[i] = fmt.Sprintf("id%d", i)
	}
	ctx := context.Background()
	store := boxtasks.NewStore(jsonapi.New(srv.URL, srv.Client()))
	if _, err := store.Lists(ctx, ids); err != nil {
		t.Fatal(err)
	}
	if got := listCalls.Load(); got != 2 {
		t.Errorf("Lists made %d requests, want 2", got)
	}
	// The fetcher splits list ids; the store sends what it is given.
	if _, err := store.Cards(ctx, ids, model.DateRange{}, true); err != nil {
		t.Fatal(err)
	}
	if got := cardCalls.Load(); got != 1 {
		t.Errorf("Cards made %d requests, want 1", got)
	}
}
