package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/cache"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/fetch"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/model"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/report"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/timecalc"
)

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"cache":  a.Cache != nil,
		"time":   a.now().UTC(),
	})
}

func (a *API) handleListKinds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"kinds": model.Kinds})
}

// parseFilters reads report filters from the query string.
func (a *API) parseFilters(r *http.Request) (model.ReportFilters, error) {
	q := r.URL.Query()
	dr, err := timecalc.ParseRange(q.Get("from"), q.Get("to"), a.Location, a.now())
	if err != nil {
		return model.ReportFilters{}, err
	}
	filters := model.ReportFilters{
		WorkspaceID: q.Get("workspace"),
		BoardIDs:    model.SplitIDs(q.Get("boards")),
		MemberIDs:   model.SplitIDs(q.Get("members")),
		DateRange:   dr,
	}
	if v := q.Get("include_archived"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return model.ReportFilters{}, errors.New("include_archived must be a boolean")
		}
		filters.IncludeArchived = b
	}
	return filters, nil
}

func (a *API) handleReport(w http.ResponseWriter, r *http.Request) {
	kind, ok := model.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_report", "unknown report kind "+strconv.Quote(chi.URLParam(r, "kind")))
		return
	}
	filters, err := a.parseFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_filters", err.Error())
		return
	}

	ctx := r.Context()
	cacheable := a.Cache != nil && filters.HasWorkspace()
	key := cache.Key(kind, filters)
	if cacheable {
		dest := report.Pointer(kind)
		hit, err := a.Cache.Get(ctx, key, dest)
		if err != nil {
			a.Logger.Warn("cache read failed", "key", key, "err", err)
		}
		if hit {
			w.Header().Set("X-Cache", "HIT")
			writeJSON(w, http.StatusOK, dest)
			return
		}
	}

	rep, err := a.Reports.Generate(ctx, kind, filters)
	if err != nil {
		a.Logger.Error("report failed", "kind", kind, "workspace", filters.WorkspaceID, "err", err)
		if errors.Is(err, fetch.ErrLoadFailed) {
			writeError(w, http.StatusBadGateway, "load_failed", fetch.ErrLoadFailed.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	if cacheable {
		if err := a.Cache.Set(ctx, key, rep); err != nil {
			a.Logger.Warn("cache write failed", "key", key, "err", err)
		}
		w.Header().Set("X-Cache", "MISS")
	}
	writeJSON(w, http.StatusOK, rep)
}

func (a *API) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if a.Cache == nil {
		writeError(w, http.StatusServiceUnavailable, "cache_disabled", "report cache is not configured")
		return
	}
	writeJSON(w, http.StatusOK, a.Cache.Stats())
}

func (a *API) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	if a.Cache == nil {
		writeError(w, http.StatusServiceUnavailable, "cache_disabled", "report cache is not configured")
		return
	}
	ws := chi.URLParam(r, "workspace")
	n, err := a.Cache.InvalidateWorkspace(r.Context(), ws)
	if err != nil {
		a.Logger.Error("cache invalidation failed", "workspace", ws, "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	a.Logger.Info("cache invalidated", "workspace", ws, "keys", n)
	writeJSON(w, http.StatusOK, map[string]any{"workspace": ws, "deleted": n})
}
