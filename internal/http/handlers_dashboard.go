package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mitcash/internal/report"
	"mitcash/internal/search"
	"mitcash/internal/services"
)

const summaryCachePrefix = "summary:"

// handleSummary returns the month dashboard for a period.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	p, err := parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year or month")
		return
	}

	key := summaryCachePrefix + p.String()
	if summary, found := s.summaryCache.Get(key); found {
		slog.DebugContext(r.Context(), "Summary cache hit", "period", p.String())
		writeJSON(w, http.StatusOK, summary)
		return
	}

	summary, err := s.dashboard.SummarizePeriod(r.Context(), p)
	if err != nil {
		slog.ErrorContext(r.Context(), "Summarize period failed", "period", p.String(), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}

	// Partial summaries are served but never cached, so a recovered store
	// is visible on the next request.
	if !summary.Partial {
		s.summaryCache.Set(key, summary)
	}
	writeJSON(w, http.StatusOK, summary)
}

type annualResponse struct {
	services.AnnualOverview
	IncomeTrend  report.Trend `json:"income_trend"`
	ExpenseTrend report.Trend `json:"expense_trend"`
}

// handleAnnual returns the year's monthly series, projection, and trend
// deltas referenced at the last elapsed month.
func (s *Server) handleAnnual(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year := now.Year()
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = y
	}

	monthsElapsed := 12
	if year == now.Year() {
		monthsElapsed = int(now.Month())
	}
	if v := strings.TrimSpace(r.URL.Query().Get("months_elapsed")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			writeError(w, http.StatusBadRequest, "invalid months_elapsed")
			return
		}
		monthsElapsed = m
	}

	overview, err := s.dashboard.AnnualReport(r.Context(), year, monthsElapsed)
	if err != nil {
		slog.ErrorContext(r.Context(), "Annual report failed", "year", year, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build annual report")
		return
	}

	refMonth := monthsElapsed - 1
	writeJSON(w, http.StatusOK, annualResponse{
		AnnualOverview: overview,
		IncomeTrend:    report.TrendDelta(overview.Series.Income, refMonth),
		ExpenseTrend:   report.TrendDelta(overview.Series.Expenses, refMonth),
	})
}

type searchResponse struct {
	Status  string         `json:"status"`
	Query   string         `json:"query"`
	Results []search.Match `json:"results"`
}

// handleSearch runs the multi-field search over the full transaction set.
// A too-short query is a distinct outcome, not an empty result.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	all := s.dashboard.FetchEverything(r.Context())
	matches, err := search.Search(query, all)
	if err != nil {
		if errors.Is(err, search.ErrQueryTooShort) {
			writeJSON(w, http.StatusOK, searchResponse{Status: "too_short", Query: query})
			return
		}
		slog.ErrorContext(r.Context(), "Search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	if matches == nil {
		matches = []search.Match{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Status: "ok", Query: query, Results: matches})
}

// handlePropagate copies the previous period's recurring transactions into
// the requested period.
func (s *Server) handlePropagate(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKindPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown transaction kind")
		return
	}

	p, err := parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year or month")
		return
	}

	result, err := s.propagator.Propagate(r.Context(), kind, p)
	if err != nil {
		slog.ErrorContext(r.Context(), "Propagation failed", "kind", kind, "target", p.String(), "error", err)
		writeError(w, http.StatusBadGateway, "propagation failed")
		return
	}

	if result.Created > 0 {
		s.summaryCache.PurgePrefix(summaryCachePrefix)
	}
	writeJSON(w, http.StatusOK, result)
}
