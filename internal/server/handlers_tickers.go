package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jpariona/cartera/internal/models"
)

// --- Ticker handlers ---

type tickerRequest struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	TypeID   int64  `json:"type_id"`
	Exchange string `json:"exchange"`
	Country  string `json:"country"`
	Sector   string `json:"sector"`
	Active   *bool  `json:"active"`
}

func (req *tickerRequest) validate() string {
	if strings.TrimSpace(req.Symbol) == "" {
		return "symbol is required"
	}
	if strings.TrimSpace(req.Name) == "" {
		return "name is required"
	}
	if !models.ValidCurrency(req.Currency) {
		return fmt.Sprintf("invalid currency %q; must be USD or PEN", req.Currency)
	}
	return ""
}

// handleTickersRoot handles GET (list) and POST (create) on /api/tickers.
func (s *Server) handleTickersRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		activeOnly := r.URL.Query().Get("active") == "true"
		tickers, err := s.app.Storage.Tickers().List(r.Context(), activeOnly)
		if err != nil {
			s.writeStorageError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, tickers)

	case http.MethodPost:
		var req tickerRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		if msg := req.validate(); msg != "" {
			WriteError(w, http.StatusBadRequest, msg)
			return
		}
		ticker := &models.Ticker{
			Symbol:   strings.ToUpper(strings.TrimSpace(req.Symbol)),
			Name:     strings.TrimSpace(req.Name),
			Currency: req.Currency,
			TypeID:   req.TypeID,
			Exchange: req.Exchange,
			Country:  req.Country,
			Sector:   req.Sector,
			Active:   true,
		}
		if err := s.app.Storage.Tickers().Create(r.Context(), ticker); err != nil {
			s.writeStorageError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusCreated, ticker)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleTickerByID handles GET/PUT/DELETE on /api/tickers/{id}.
func (s *Server) handleTickerByID(w http.ResponseWriter, r *http.Request, rawID string) {
	id, ok := parseID(rawID)
	if !ok {
		WriteError(w, http.StatusBadRequest, "invalid ticker id")
		return
	}
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		ticker, err := s.app.Storage.Tickers().Get(ctx, id)
		if err != nil {
			s.writeStorageError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, ticker)

	case http.MethodPut:
		ticker, err := s.app.Storage.Tickers().Get(ctx, id)
		if err != nil {
			s.writeStorageError(w, r, err)
			return
		}
		var req tickerRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		if msg := req.validate(); msg != "" {
			WriteError(w, http.StatusBadRequest, msg)
			return
		}
		ticker.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
		ticker.Name = strings.TrimSpace(req.Name)
		ticker.Currency = req.Currency
		ticker.TypeID = req.TypeID
		ticker.Exchange = req.Exchange
		ticker.Country = req.Country
		ticker.Sector = req.Sector
		if req.Active != nil {
			ticker.Active = *req.Active
		}
		if err := s.app.Storage.Tickers().Update(ctx, ticker); err != nil {
			s.writeStorageError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, ticker)

	case http.MethodDelete:
		// Referenced tickers cannot be hard-deleted; deactivate instead.
		if r.URL.Query().Get("deactivate") == "true" {
			if err := s.app.Storage.Tickers().Deactivate(ctx, id); err != nil {
				s.writeStorageError(w, r, err)
				return
			}
			WriteJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
			return
		}
		if err := s.app.Storage.Tickers().Delete(ctx, id); err != nil {
			s.writeStorageError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}
