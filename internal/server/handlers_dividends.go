package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/jpariona/cartera/internal/models"
)

// --- Dividend handlers ---

type dividendRequest struct {
	TickerID int64   `json:"ticker_id"`
	Date     string  `json:"date"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Market   string  `json:"market"`
}

func (req *dividendRequest) toModel() (*models.Dividend, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q; expected YYYY-MM-DD", req.Date)
	}
	d := &models.Dividend{
		TickerID: req.TickerID,
		Date:     date,
		Amount:   req.Amount,
		Currency: req.Currency,
		Market:   req.Market,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// handleDividendsRoot handles GET (list) and POST (create) on /api/dividends.
func (s *Server) handleDividendsRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		from, to, ok := dateRangeQuery(w, r)
		if !ok {
			return
		}
		var (
			dividends []models.Dividend
			err       error
		)
		if raw := r.URL.Query().Get("ticker_id"); raw != "" {
			tickerID, parseErr := strconv.ParseInt(raw, 10, 64)
			if parseErr != nil {
				WriteError(w, http.StatusBadRequest, "invalid ticker_id")
				return
			}
			dividends, err = s.app.Storage.Dividends().ListByTicker(r.Context(), tickerID, from, to)
		} else {
			dividends, err = s.app.Storage.Dividends().List(r.Context(), from, to)
		}
		if err != nil {
			s.writeStorageError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, dividends)

	case http.MethodPost:
		var req dividendRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		dividend, err := req.toModel()
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.app.Storage.Dividends().Create(r.Context(), dividend); err != nil {
			s.writeStorageError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusCreated, dividend)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleDividendByID handles GET/PUT/DELETE on /api/dividends/{id}.
func (s *Server) handleDividendByID(w http.ResponseWriter, r *http.Request, rawID string) {
	id, ok := parseID(rawID)
	if !ok {
		WriteError(w, http.StatusBadRequest, "invalid dividend id")
		return
	}
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		dividend, err := s.app.Storage.Dividends().Get(ctx, id)
		if err != nil {
			s.writeStorageError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, dividend)

	case http.MethodPut:
		if _, err := s.app.Storage.Dividends().Get(ctx, id); err != nil {
			s.writeStorageError(w, r, err)
			return
		}
		var req dividendRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		dividend, err := req.toModel()
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		dividend.ID = id
		if err := s.app.Storage.Dividends().Update(ctx, dividend); err != nil {
			s.writeStorageError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, dividend)

	case http.MethodDelete:
		if err := s.app.Storage.Dividends().Delete(ctx, id); err != nil {
			s.writeStorageError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}
