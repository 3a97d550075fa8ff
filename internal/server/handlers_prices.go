package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jpariona/cartera/internal/models"
)

// --- Price, FX, and refresh handlers ---

// manualSource marks prices and rates entered by hand, so a later provider
// refresh can be told apart from user corrections.
const manualSource = "manual"

// handlePricesBySymbol handles GET (list) and PUT (manual entry) on
// /api/prices/{symbol}.
func (s *Server) handlePricesBySymbol(w http.ResponseWriter, r *http.Request, symbol string) {
	ctx := r.Context()
	ticker, err := s.app.Storage.Tickers().GetBySymbol(ctx, strings.ToUpper(symbol))
	if err != nil {
		s.writeStorageError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		// ?at=DATE answers a single mark-to-market lookup: the price on
		// that date, or the most recent earlier one.
		if raw := r.URL.Query().Get("at"); raw != "" {
			at, err := parseDate(raw)
			if err != nil {
				WriteError(w, http.StatusBadRequest, "invalid 'at' date; expected YYYY-MM-DD")
				return
			}
			price, err := s.app.Storage.Prices().GetAsOf(ctx, ticker.ID, at)
			if err != nil {
				s.writeStorageError(w, r, err)
				return
			}
			if price == nil {
				WriteError(w, http.StatusNotFound, fmt.Sprintf("no price for %s at or before %s", ticker.Symbol, raw))
				return
			}
			WriteJSON(w, http.StatusOK, price)
			return
		}
		from, to, ok := dateRangeQuery(w, r)
		if !ok {
			return
		}
		prices, err := s.app.Storage.Prices().List(ctx, ticker.ID, from, to)
		if err != nil {
			s.writeStorageError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, prices)

	case http.MethodPut:
		var req struct {
			Date  string  `json:"date"`
			Price float64 `json:"price"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		date, err := parseDate(req.Date)
		if err != nil || date.IsZero() {
			WriteError(w, http.StatusBadRequest, "invalid date; expected YYYY-MM-DD")
			return
		}
		if req.Price <= 0 {
			WriteError(w, http.StatusBadRequest, "price must be positive")
			return
		}
		price := &models.HistoricalPrice{
			TickerID: ticker.ID,
			Date:     date,
			Price:    req.Price,
			Source:   manualSource,
		}
		if err := s.app.Storage.Prices().Upsert(ctx, price); err != nil {
			s.writeStorageError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, price)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut)
	}
}

// handleRefreshAll handles POST /api/prices/refresh.
func (s *Server) handleRefreshAll(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	entries, err := s.app.MarketDataService.RefreshAll(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Bulk price refresh failed")
		WriteError(w, http.StatusInternalServerError, "refresh failed")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"refreshed": len(entries),
		"entries":   entries,
	})
}

// handleRefreshTicker handles POST /api/prices/refresh/{symbol}.
func (s *Server) handleRefreshTicker(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	symbol := strings.TrimPrefix(r.URL.Path, "/api/prices/refresh/")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}
	entry, err := s.app.MarketDataService.RefreshTicker(r.Context(), strings.ToUpper(symbol))
	if err != nil {
		s.writeStorageError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, entry)
}

// handleRefreshLog handles GET /api/prices/refresh/log.
func (s *Server) handleRefreshLog(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			WriteError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	entries, err := s.app.Storage.RefreshLog().List(r.Context(), limit)
	if err != nil {
		s.writeStorageError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, entries)
}

// handleFX handles GET (list) and PUT (manual entry) on /api/fx.
func (s *Server) handleFX(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if raw := r.URL.Query().Get("at"); raw != "" {
			at, err := parseDate(raw)
			if err != nil {
				WriteError(w, http.StatusBadRequest, "invalid 'at' date; expected YYYY-MM-DD")
				return
			}
			rate, err := s.app.Storage.FX().GetAsOf(r.Context(), at)
			if err != nil {
				s.writeStorageError(w, r, err)
				return
			}
			if rate == nil {
				WriteError(w, http.StatusNotFound, fmt.Sprintf("no fx rate at or before %s", raw))
				return
			}
			WriteJSON(w, http.StatusOK, rate)
			return
		}
		from, to, ok := dateRangeQuery(w, r)
		if !ok {
			return
		}
		rates, err := s.app.Storage.FX().List(r.Context(), from, to)
		if err != nil {
			s.writeStorageError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, rates)

	case http.MethodPut:
		var req struct {
			Date   string  `json:"date"`
			USDPEN float64 `json:"usd_pen"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		date, err := parseDate(req.Date)
		if err != nil || date.IsZero() {
			WriteError(w, http.StatusBadRequest, "invalid date; expected YYYY-MM-DD")
			return
		}
		if req.USDPEN <= 0 {
			WriteError(w, http.StatusBadRequest, "usd_pen must be positive")
			return
		}
		rate := &models.FXRate{Date: date, USDPEN: req.USDPEN, Source: manualSource}
		if err := s.app.Storage.FX().Upsert(r.Context(), rate); err != nil {
			s.writeStorageError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, rate)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut)
	}
}

// handleFXRefresh handles POST /api/fx/refresh. The window defaults to the
// last 30 days when the body is empty.
func (s *Server) handleFXRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	from, to, ok := refreshWindowBody(w, r)
	if !ok {
		return
	}
	count, err := s.app.MarketDataService.RefreshFX(r.Context(), from, to)
	if err != nil {
		s.logger.Error().Err(err).Msg("FX refresh failed")
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("fx refresh failed: %v", err))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"rows": count})
}

// refreshWindowBody decodes an optional {"from": ..., "to": ...} body.
// A missing body yields zero times, letting the service apply its defaults.
func refreshWindowBody(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	if r.ContentLength == 0 {
		return time.Time{}, time.Time{}, true
	}
	var req struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if !DecodeJSON(w, r, &req) {
		return time.Time{}, time.Time{}, false
	}
	from, err := parseDate(req.From)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid 'from' date; expected YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	to, err := parseDate(req.To)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid 'to' date; expected YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
