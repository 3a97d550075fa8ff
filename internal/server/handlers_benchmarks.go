package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jpariona/cartera/internal/models"
)

// --- Benchmark handlers ---

// handleBenchmarkSeries handles GET /api/benchmarks/{series}.
func (s *Server) handleBenchmarkSeries(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	series := strings.TrimPrefix(r.URL.Path, "/api/benchmarks/")
	if !models.ValidBenchmarkSeries(series) {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("unknown benchmark series %q; must be sp500 or spbvl", series))
		return
	}
	from, to, ok := dateRangeQuery(w, r)
	if !ok {
		return
	}
	levels, err := s.app.Storage.Benchmarks().List(r.Context(), series, from, to)
	if err != nil {
		s.writeStorageError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, levels)
}

// handleBenchmarkRefresh handles POST /api/benchmarks/refresh.
func (s *Server) handleBenchmarkRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Series string `json:"series"`
		From   string `json:"from"`
		To     string `json:"to"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if !models.ValidBenchmarkSeries(req.Series) {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("unknown benchmark series %q; must be sp500 or spbvl", req.Series))
		return
	}
	from, err := parseDate(req.From)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid 'from' date; expected YYYY-MM-DD")
		return
	}
	to, err := parseDate(req.To)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid 'to' date; expected YYYY-MM-DD")
		return
	}
	count, err := s.app.MarketDataService.RefreshBenchmark(r.Context(), req.Series, from, to)
	if err != nil {
		s.logger.Error().Err(err).Str("series", req.Series).Msg("Benchmark refresh failed")
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("benchmark refresh failed: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"rows": count})
}
