package server

import (
	"net/http"
	"strings"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)

	// Tickers
	mux.HandleFunc("/api/tickers/", s.routeTickers)
	mux.HandleFunc("/api/tickers", s.handleTickersRoot)

	// Transactions
	mux.HandleFunc("/api/transactions/", s.routeTransactions)
	mux.HandleFunc("/api/transactions", s.handleTransactionsRoot)

	// Dividends
	mux.HandleFunc("/api/dividends/", s.routeDividends)
	mux.HandleFunc("/api/dividends", s.handleDividendsRoot)

	// Reference entities
	mux.HandleFunc("/api/exchanges/", s.routeExchanges)
	mux.HandleFunc("/api/exchanges", s.handleExchangesRoot)
	mux.HandleFunc("/api/platforms/", s.routePlatforms)
	mux.HandleFunc("/api/platforms", s.handlePlatformsRoot)
	mux.HandleFunc("/api/types/", s.routeTypes)
	mux.HandleFunc("/api/types", s.handleTypesRoot)

	// Prices & FX
	mux.HandleFunc("/api/prices/refresh/log", s.handleRefreshLog)
	mux.HandleFunc("/api/prices/refresh/", s.handleRefreshTicker)
	mux.HandleFunc("/api/prices/refresh", s.handleRefreshAll)
	mux.HandleFunc("/api/prices/", s.routePrices)
	mux.HandleFunc("/api/fx/refresh", s.handleFXRefresh)
	mux.HandleFunc("/api/fx", s.handleFX)

	// Benchmarks
	mux.HandleFunc("/api/benchmarks/refresh", s.handleBenchmarkRefresh)
	mux.HandleFunc("/api/benchmarks/", s.handleBenchmarkSeries)

	// Performance
	mux.HandleFunc("/api/performance/monthly", s.handlePerformanceMonthly)
	mux.HandleFunc("/api/performance/annual", s.handlePerformanceAnnual)
	mux.HandleFunc("/api/performance/tickers/", s.handlePerformanceTicker)
	mux.HandleFunc("/api/performance/groups", s.handlePerformanceGroups)
	mux.HandleFunc("/api/performance/benchmark", s.handlePerformanceBenchmark)
	mux.HandleFunc("/api/performance/chart", s.handlePerformanceChart)
}

// routeTickers dispatches /api/tickers/{id} to the appropriate handler.
func (s *Server) routeTickers(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/tickers/")
	if rest == "" {
		s.handleTickersRoot(w, r)
		return
	}
	s.handleTickerByID(w, r, rest)
}

func (s *Server) routeTransactions(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	if rest == "" {
		s.handleTransactionsRoot(w, r)
		return
	}
	s.handleTransactionByID(w, r, rest)
}

func (s *Server) routeDividends(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/dividends/")
	if rest == "" {
		s.handleDividendsRoot(w, r)
		return
	}
	s.handleDividendByID(w, r, rest)
}

func (s *Server) routeExchanges(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/exchanges/")
	if rest == "" {
		s.handleExchangesRoot(w, r)
		return
	}
	s.handleExchangeByID(w, r, rest)
}

func (s *Server) routePlatforms(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/platforms/")
	if rest == "" {
		s.handlePlatformsRoot(w, r)
		return
	}
	s.handlePlatformByID(w, r, rest)
}

func (s *Server) routeTypes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/types/")
	if rest == "" {
		s.handleTypesRoot(w, r)
		return
	}
	s.handleTypeByID(w, r, rest)
}

// routePrices dispatches /api/prices/{symbol} to GET (list) or PUT (manual entry).
func (s *Server) routePrices(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimPrefix(r.URL.Path, "/api/prices/")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}
	s.handlePricesBySymbol(w, r, symbol)
}
