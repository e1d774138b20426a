// Package httpapi serves reports over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/cache"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/model"
)

// Generator builds reports.
type Generator interface {
	Generate(ctx context.Context, kind model.Kind, filters model.ReportFilters) (any, error)
}

// ReportCache is the optional cache-aside store in front of the generator.
type ReportCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	InvalidateWorkspace(ctx context.Context, workspaceID string) (int, error)
	Stats() cache.StatsSnapshot
}

var _ ReportCache = (*cache.Cache)(nil)

// API holds the dependencies of the HTTP handlers.
type API struct {
	Reports  Generator
	Cache    ReportCache // nil disables caching
	Logger   *log.Logger
	Location *time.Location
	Now      func() time.Time
	Timeout  time.Duration
}

func (a *API) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// Router returns the HTTP handler.
func (a *API) Router() http.Handler {
	if a.Logger == nil {
		a.Logger = log.Default()
	}
	if a.Location == nil {
		a.Location = time.Local
	}
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(timeout))
	r.Use(a.loggingMiddleware)

	r.Get("/health", a.handleHealth)

	r.Route("/api/v1/reports", func(r chi.Router) {
		r.Get("/", a.handleListKinds)
		r.Get("/{kind}", a.handleReport)
	})
	r.Route("/api/v1/cache", func(r chi.Router) {
		r.Get("/stats", a.handleCacheStats)
		r.Delete("/{workspace}", a.handleInvalidate)
	})
	return r
}
