package jsonapi

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultPageLimit is the page size requested when none is set.
const DefaultPageLimit = 50

// Query builds the query string of a collection request using Drupal's
// JSON:API filter syntax.
type Query struct {
	values url.Values
	groups int
}

// NewQuery returns a query with the default page limit.
func NewQuery() *Query {
	q := &Query{values: url.Values{}}
	return q.PageLimit(DefaultPageLimit)
}

// Filter adds an equality condition on path.
func (q *Query) Filter(path, value string) *Query {
	return q.condition(path, "=", value)
}

// FilterIn adds an IN condition on path. An empty values list matches
// nothing on the server, so callers should skip the request instead.
func (q *Query) FilterIn(path string, values []string) *Query {
	key := q.nextKey()
	q.values.Set(key+"[condition][path]", path)
	q.values.Set(key+"[condition][operator]", "IN")
	for _, v := range values {
		q.values.Add(key+"[condition][value][]", v)
	}
	return q
}

// FilterRange bounds path to [from, to]. Empty bounds are skipped.
func (q *Query) FilterRange(path, from, to string) *Query {
	if from != "" {
		q.condition(path, ">=", from)
	}
	if to != "" {
		q.condition(path, "<=", to)
	}
	return q
}

// Include asks the server to side-load related resources.
func (q *Query) Include(paths ...string) *Query {
	if len(paths) == 0 {
		return q
	}
	existing := q.values.Get("include")
	all := strings.Join(paths, ",")
	if existing != "" {
		all = existing + "," + all
	}
	q.values.Set("include", all)
	return q
}

// Sort sets the sort field; a leading "-" sorts descending.
func (q *Query) Sort(field string) *Query {
	q.values.Set("sort", field)
	return q
}

// PageLimit sets the page size.
func (q *Query) PageLimit(n int) *Query {
	if n <= 0 {
		n = DefaultPageLimit
	}
	q.values.Set("page[limit]", strconv.Itoa(n))
	return q
}

// Encode returns the encoded query string.
func (q *Query) Encode() string {
	return q.values.Encode()
}

func (q *Query) condition(path, op, value string) *Query {
	key := q.nextKey()
	q.values.Set(key+"[condition][path]", path)
	q.values.Set(key+"[condition][operator]", op)
	q.values.Set(key+"[condition][value]", value)
	return q
}

func (q *Query) nextKey() string {
	q.groups++
	return "filter[c" + strconv.Itoa(q.groups) + "]"
}
