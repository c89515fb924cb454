// Package handler exposes the search engine over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/searcher/executor"
	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/logger"
)

type Searcher interface {
	Search(ctx context.Context, query string) (*executor.SearchResult, error)
}

type Handler struct {
	searcher     Searcher
	cache        *cache.QueryCache
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

// New builds the handler. queryCache may be nil.
func New(s Searcher, queryCache *cache.QueryCache, defaultLimit, maxResults int) *Handler {
	return &Handler{
		searcher:     s,
		cache:        queryCache,
		defaultLimit: defaultLimit,
		maxResults:   maxResults,
		logger:       slog.Default().With("component", "search-handler"),
	}
}

// Routes registers the handler's endpoints on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

// Search answers GET /api/v1/search?q=...&limit=n with the top results. TotalHits
// counts every matching document before the limit is applied.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "query parameter 'q' is required"))
		return
	}

	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "limit must be a positive integer, got %q", limitStr))
			return
		}
		limit = parsed
	}
	if h.maxResults > 0 && limit > h.maxResults {
		limit = h.maxResults
	}

	var (
		result   *executor.SearchResult
		cacheHit bool
		err      error
	)
	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, query, func() (*executor.SearchResult, error) {
			return h.searcher.Search(ctx, query)
		})
	} else {
		result, err = h.searcher.Search(ctx, query)
	}
	if err != nil {
		log.Error("search failed", "query", query, "error", err)
		h.writeError(w, err)
		return
	}

	page := *result
	page.Query = query
	if len(page.Results) > limit {
		page.Results = page.Results[:limit]
	}

	log.Info("search completed",
		"query", query,
		"total_hits", page.TotalHits,
		"returned", len(page.Results),
		"cache_hit", cacheHit,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, &page)
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, apperrors.New(apperrors.ErrInternal, http.StatusServiceUnavailable, "caching is disabled"))
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	h.writeJSON(w, apperrors.HTTPStatusCode(err), map[string]string{"error": err.Error()})
}
