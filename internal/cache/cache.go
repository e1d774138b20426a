// Package cache stores generated reports in redis using the cache-aside
// pattern.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/model"
)

// DefaultPrefix namespaces every key written by the cache.
const DefaultPrefix = "boxreport:"

// Cache provides report caching over redis.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	stats  Stats
}

// Stats tracks cache statistics.
type Stats struct {
	Hits    atomic.Uint64
	Misses  atomic.Uint64
	Sets    atomic.Uint64
	Deletes atomic.Uint64
	Errors  atomic.Uint64
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	Sets      uint64  `json:"sets"`
	Deletes   uint64  `json:"deletes"`
	Errors    uint64  `json:"errors"`
	HitRate   float64 `json:"hit_rate"`
	TotalGets uint64  `json:"total_gets"`
}

// New returns a cache using client. An empty prefix uses DefaultPrefix.
func New(client *redis.Client, prefix string, ttl time.Duration) *Cache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Cache{client: client, prefix: prefix, ttl: ttl}
}

// Dial connects to the redis server at addr and verifies it answers.
func Dial(ctx context.Context, addr string, ttl time.Duration) (*Cache, error) {
	c := Open(addr, ttl)
	if err := c.Ping(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Open returns a cache for the redis server at addr without contacting it.
func Open(addr string, ttl time.Duration) *Cache {
	return New(redis.NewClient(&redis.Options{Addr: addr}), DefaultPrefix, ttl)
}

// Key derives the cache key of a report request. Board and member id order
// does not matter. The workspace id is kept readable so a workspace can be
// invalidated by pattern.
func Key(kind model.Kind, filters model.ReportFilters) string {
	boards := slices.Clone(filters.BoardIDs)
	slices.Sort(boards)
	members := slices.Clone(filters.MemberIDs)
	slices.Sort(members)

	d := xxhash.New()
	for _, ids := range [][]string{boards, members} {
		for _, id := range ids {
			_, _ = d.WriteString(id)
			_, _ = d.Write([]byte{0})
		}
		_, _ = d.Write([]byte{1})
	}
	_, _ = d.WriteString(filters.DateRange.Start.UTC().Format(time.RFC3339Nano))
	_, _ = d.WriteString(filters.DateRange.End.UTC().Format(time.RFC3339Nano))
	_, _ = d.WriteString(strconv.FormatBool(filters.IncludeArchived))

	return fmt.Sprintf("%s:%s:%016x", kind, filters.WorkspaceID, d.Sum64())
}

// Get decodes the cached value for key into dest. It reports false on a
// miss.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.stats.Misses.Add(1)
			return false, nil
		}
		c.stats.Errors.Add(1)
		return false, fmt.Errorf("cache get error: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.stats.Errors.Add(1)
		return false, fmt.Errorf("cache unmarshal error: %w", err)
	}
	c.stats.Hits.Add(1)
	return true, nil
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		c.stats.Errors.Add(1)
		return fmt.Errorf("cache marshal error: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		c.stats.Errors.Add(1)
		return fmt.Errorf("cache set error: %w", err)
	}
	c.stats.Sets.Add(1)
	return nil
}

// InvalidateWorkspace drops every cached report of a workspace. The id is
// matched literally; other workspaces are never touched.
func (c *Cache) InvalidateWorkspace(ctx context.Context, workspaceID string) (int, error) {
	deleted := 0
	for _, kind := range model.Kinds {
		n, err := c.deleteMatching(ctx, workspacePattern(c.prefix, kind, workspaceID))
		deleted += n
		if err != nil {
			c.stats.Deletes.Add(uint64(deleted))
			return deleted, err
		}
	}
	c.stats.Deletes.Add(uint64(deleted))
	return deleted, nil
}

func (c *Cache) deleteMatching(ctx context.Context, pattern string) (int, error) {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			c.stats.Errors.Add(1)
			return deleted, fmt.Errorf("cache scan error: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.stats.Errors.Add(1)
				return deleted, fmt.Errorf("cache delete error: %w", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

// workspacePattern matches the keys Key builds for kind and workspaceID:
// the id escaped for redis glob matching, followed by the 16 hex digit hash.
func workspacePattern(prefix string, kind model.Kind, workspaceID string) string {
	return globEscape(prefix) + globEscape(string(kind)) + ":" + globEscape(workspaceID) + ":" + strings.Repeat("?", 16)
}

func globEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '^', '-', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Stats returns the current statistics.
func (c *Cache) Stats() StatsSnapshot {
	hits := c.stats.Hits.Load()
	misses := c.stats.Misses.Load()
	total := hits + misses

	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	return StatsSnapshot{
		Hits:      hits,
		Misses:    misses,
		Sets:      c.stats.Sets.Load(),
		Deletes:   c.stats.Deletes.Load(),
		Errors:    c.stats.Errors.Load(),
		HitRate:   hitRate,
		TotalGets: total,
	}
}

// Ping checks the redis connection.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connecting to redis at %s: %w", c.client.Options().Addr, err)
	}
	return nil
}

// Close closes the redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}
