package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jpariona/cartera/internal/interfaces"
	"github.com/jpariona/cartera/internal/services/performance"
	"github.com/jpariona/cartera/internal/storage"
)

// --- Performance handlers ---

// periodQuery reads the optional period parameter, defaulting to monthly.
func periodQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = performance.PeriodMonth
	}
	if !performance.ValidPeriod(period) {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid period %q; must be month or year", period))
		return "", false
	}
	return period, true
}

// handlePerformanceMonthly handles GET /api/performance/monthly.
func (s *Server) handlePerformanceMonthly(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	opts, ok := s.reportOptions(w, r)
	if !ok {
		return
	}
	reports, err := s.app.PerformanceService.Monthly(r.Context(), opts)
	if err != nil {
		s.writePerformanceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, reports)
}

// handlePerformanceAnnual handles GET /api/performance/annual.
func (s *Server) handlePerformanceAnnual(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	opts, ok := s.reportOptions(w, r)
	if !ok {
		return
	}
	reports, err := s.app.PerformanceService.Annual(r.Context(), opts)
	if err != nil {
		s.writePerformanceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, reports)
}

// handlePerformanceTicker handles GET /api/performance/tickers/{symbol}.
func (s *Server) handlePerformanceTicker(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	symbol := strings.TrimPrefix(r.URL.Path, "/api/performance/tickers/")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}
	period, ok := periodQuery(w, r)
	if !ok {
		return
	}
	opts, ok := s.reportOptions(w, r)
	if !ok {
		return
	}
	reports, err := s.app.PerformanceService.Ticker(r.Context(), strings.ToUpper(symbol), period, opts)
	if err != nil {
		s.writePerformanceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, reports)
}

// handlePerformanceGroups handles GET /api/performance/groups?by=platform|type|exchange.
func (s *Server) handlePerformanceGroups(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	by := r.URL.Query().Get("by")
	switch by {
	case interfaces.GroupByPlatform, interfaces.GroupByType, interfaces.GroupByExchange:
	default:
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid group key %q; must be platform, type, or exchange", by))
		return
	}
	period, ok := periodQuery(w, r)
	if !ok {
		return
	}
	opts, ok := s.reportOptions(w, r)
	if !ok {
		return
	}
	groups, err := s.app.PerformanceService.Groups(r.Context(), by, period, opts)
	if err != nil {
		s.writePerformanceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, groups)
}

// handlePerformanceBenchmark handles GET /api/performance/benchmark?series=sp500|spbvl.
func (s *Server) handlePerformanceBenchmark(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	series := r.URL.Query().Get("series")
	if series == "" {
		WriteError(w, http.StatusBadRequest, "series is required")
		return
	}
	period, ok := periodQuery(w, r)
	if !ok {
		return
	}
	opts, ok := s.reportOptions(w, r)
	if !ok {
		return
	}
	periods, err := s.app.PerformanceService.Benchmark(r.Context(), series, period, opts)
	if err != nil {
		s.writePerformanceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, periods)
}

// handlePerformanceChart handles GET /api/performance/chart. Returns a PNG.
func (s *Server) handlePerformanceChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	opts, ok := s.reportOptions(w, r)
	if !ok {
		return
	}
	png, err := s.app.PerformanceService.Chart(r.Context(), opts)
	if err != nil {
		s.writePerformanceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// writePerformanceError distinguishes bad report parameters (unknown symbol,
// invalid series, too little data) from storage failures.
func (s *Server) writePerformanceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "not found")
		return
	}
	s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Performance report failed")
	WriteError(w, http.StatusBadRequest, err.Error())
}
