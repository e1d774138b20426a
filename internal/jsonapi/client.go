// Package jsonapi is a small client for JSON:API collection endpoints.
package jsonapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

const mediaType = "application/vnd.api+json"

// maxPages guards against a server that keeps returning a next link.
const maxPages = 10000

// APIError is returned for any non-200 response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("api error %d: %s", e.Status, body)
}

// Client is a JSON:API client bound to a base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client using httpClient, or http.DefaultClient when nil.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// NewAuthenticated returns a client whose requests carry tokens from ts.
func NewAuthenticated(ctx context.Context, baseURL string, ts oauth2.TokenSource) *Client {
	return New(baseURL, oauth2.NewClient(ctx, ts))
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Collect fetches every page of the collection at path and returns the
// primary resources in server order together with all included resources.
func (c *Client) Collect(ctx context.Context, path string, q *Query) ([]Resource, []Resource, error) {
	if q == nil {
		q = NewQuery()
	}
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if enc := q.Encode(); enc != "" {
		endpoint += "?" + enc
	}

	var data, included []Resource
	for pages := 0; endpoint != ""; pages++ {
		if pages >= maxPages {
			return nil, nil, fmt.Errorf("collecting %s: more than %d pages", path, maxPages)
		}
		doc, err := c.get(ctx, endpoint)
		if err != nil {
			return nil, nil, err
		}
		data = append(data, doc.Data...)
		included = append(included, doc.Included...)
		endpoint = doc.NextHref()
	}
	return data, included, nil
}

func (c *Client) get(ctx context.Context, endpoint string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", mediaType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decoding api response: %w", err)
	}
	return &doc, nil
}
