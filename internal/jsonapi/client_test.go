package jsonapi_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/jsonapi"
)

func TestCollectFollowsNextLinks(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/vnd.api+json" {
			t.Errorf("Accept = %q", got)
		}
		w.Header().Set("Content-Type", "application/vnd.api+json")
		switch r.URL.Query().Get("page[offset]") {
		case "":
			if r.URL.Query().Get("page[limit]") != "50" {
				t.Errorf("page[limit] = %q, want 50", r.URL.Query().Get("page[limit]"))
			}
			fmt.Fprintf(w, `{
				"data":[{"type":"node--card","id":"c1","attributes":{"title":"One"}}],
				"included":[{"type":"user--user","id":"u1","attributes":{"display_name":"Ann"}}],
				"links":{"next":{"href":"%s/jsonapi/node/card?page[offset]=50"}}}`, srv.URL)
		case "50":
			fmt.Fprint(w, `{"data":[{"type":"node--card","id":"c2","attributes":{"title":"Two"}}],"links":{}}`)
		default:
			t.Errorf("unexpected offset %q", r.URL.Query().Get("page[offset]"))
		}
	}))
	defer srv.Close()

	c := jsonapi.New(srv.URL, srv.Client())
	data, included, err := c.Collect(context.Background(), "/jsonapi/node/card", nil)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(data) != 2 || data[0].ID != "c1" || data[1].ID != "c2" {
		t.Errorf("data = %+v, want c1,c2", data)
	}
	if len(included) != 1 || included[0].String("display_name") != "Ann" {
		t.Errorf("included = %+v", included)
	}
}

func TestCollectAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"title":"Forbidden"}]}`, http.StatusForbidden)
	}))
	defer srv.Close()

	_, _, err := jsonapi.New(srv.URL, srv.Client()).Collect(context.Background(), "jsonapi/node/board", nil)
	var apiErr *jsonapi.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusForbidden {
		t.Errorf("Status = %d, want 403", apiErr.Status)
	}
}

func TestCollectDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":`)
	}))
	defer srv.Close()

	_, _, err := jsonapi.New(srv.URL, srv.Client()).Collect(context.Background(), "jsonapi/node/board", nil)
	if err == nil {
		t.Fatal("expected decode error")
	}
	var apiErr *jsonapi.APIError
	if errors.As(err, &apiErr) {
		t.Errorf("decode failure reported as APIError: %v", err)
	}
}

func TestAuthenticatedClientSendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		fmt.Fprint(w, `{"data":[]}`)
	}))
	defer srv.Close()

	ts, err := jsonapi.TokenSource(context.Background(), jsonapi.Credentials{Token: "secret"})
	if err != nil {
		t.Fatalf("TokenSource: %v", err)
	}
	c := jsonapi.NewAuthenticated(context.Background(), srv.URL, ts)
	if _, _, err := c.Collect(context.Background(), "jsonapi/user/user", nil); err != nil {
		t.Fatalf("Collect: %v", err)
	}
}

func TestTokenSourceClientCredentialsPersists(t *testing.T) {
	calls := 0
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"issued","token_type":"Bearer","expires_in":3600}`)
	}))
	defer tokenSrv.Close()

	path := filepath.Join(t.TempDir(), "auth", "token.json")
	creds := jsonapi.Credentials{
		ClientID:     "id",
		ClientSecret: "shh",
		TokenURL:     tokenSrv.URL,
		TokenFile:    path,
	}
	ts, err := jsonapi.TokenSource(context.Background(), creds)
	if err != nil {
		t.Fatalf("TokenSource: %v", err)
	}
	tok, err := ts.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok.AccessToken != "issued" {
		t.Errorf("AccessToken = %q", tok.AccessToken)
	}

	saved, err := jsonapi.LoadToken(path)
	if err != nil || saved == nil || saved.AccessToken != "issued" {
		t.Fatalf("LoadToken = %+v, %v", saved, err)
	}

	// A second source reuses the saved token without calling the endpoint.
	ts2, err := jsonapi.TokenSource(context.Background(), creds)
	if err != nil {
		t.Fatalf("TokenSource: %v", err)
	}
	if _, err := ts2.Token(); err != nil {
		t.Fatalf("Token: %v", err)
	}
	if calls != 1 {
		t.Errorf("token endpoint calls = %d, want 1", calls)
	}
}

func TestTokenSourceWithoutCredentials(t *testing.T) {
	_, err := jsonapi.TokenSource(context.Background(), jsonapi.Credentials{})
	if !errors.Is(err, jsonapi.ErrNoCredentials) {
		t.Errorf("err = %v, want ErrNoCredentials", err)
	}
}

func TestLoadTokenMissing(t *testing.T) {
	tok, err := jsonapi.LoadToken(filepath.Join(t.TempDir(), "none.json"))
	if tok != nil || err != nil {
		t.Errorf("LoadToken = %v, %v; want nil, nil", tok, err)
	}
}

func TestSaveTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	exp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := jsonapi.SaveToken(path, &oauth2.Token{AccessToken: "a", Expiry: exp}); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	got, err := jsonapi.LoadToken(path)
	if err != nil {
		t.Fatalf("LoadToken: %v", err)
	}
	if got.AccessToken != "a" || !got.Expiry.Equal(exp) {
		t.Errorf("got %+v", got)
	}
}
