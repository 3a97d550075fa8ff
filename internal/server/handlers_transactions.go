package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/jpariona/cartera/internal/models"
)

// --- Transaction handlers ---

// positionEpsilon absorbs float accumulation noise when checking that a
// divestment does not sell more units than are held.
const positionEpsilon = 1e-9

type transactionRequest struct {
	TickerID      int64   `json:"ticker_id"`
	Date          string  `json:"date"`
	Amount        float64 `json:"amount"`
	Quantity      float64 `json:"quantity"`
	PlatformID    int64   `json:"platform_id"`
	ExchangeID    int64   `json:"exchange_id"`
	Operation     string  `json:"operation"`
	CapitalOrigin string  `json:"capital_origin"`
}

func (req *transactionRequest) toModel() (*models.InvestmentEvent, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q; expected YYYY-MM-DD", req.Date)
	}
	e := &models.InvestmentEvent{
		TickerID:      req.TickerID,
		Date:          date,
		Amount:        req.Amount,
		Quantity:      req.Quantity,
		PlatformID:    req.PlatformID,
		ExchangeID:    req.ExchangeID,
		Operation:     models.OperationType(req.Operation),
		CapitalOrigin: models.CapitalOrigin(req.CapitalOrigin),
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// checkPosition rejects divestments that would push the ticker's net
// position negative as of the event date. excludeID skips the event being
// updated so its old quantity does not count against itself.
func (s *Server) checkPosition(w http.ResponseWriter, r *http.Request, e *models.InvestmentEvent, excludeID int64) bool {
	if e.Operation != models.OpDivestment {
		return true
	}
	held, err := s.app.Storage.Events().NetPositionAsOf(r.Context(), e.TickerID, e.Date, excludeID)
	if err != nil {
		s.writeStorageError(w, r, err)
		return false
	}
	if held+e.Quantity < -positionEpsilon {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf(
			"divestment of %.4f units exceeds the %.4f held on %s",
			-e.Quantity, held, e.Date.Format(dateLayout)))
		return false
	}
	return true
}

// handleTransactionsRoot handles GET (list) and POST (create) on /api/transactions.
func (s *Server) handleTransactionsRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		from, to, ok := dateRangeQuery(w, r)
		if !ok {
			return
		}
		var (
			events []models.InvestmentEvent
			err    error
		)
		if raw := r.URL.Query().Get("ticker_id"); raw != "" {
			tickerID, parseErr := strconv.ParseInt(raw, 10, 64)
			if parseErr != nil {
				WriteError(w, http.StatusBadRequest, "invalid ticker_id")
				return
			}
			events, err = s.app.Storage.Events().ListByTicker(r.Context(), tickerID, from, to)
		} else {
			events, err = s.app.Storage.Events().List(r.Context(), from, to)
		}
		if err != nil {
			s.writeStorageError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, events)

	case http.MethodPost:
		var req transactionRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		event, err := req.toModel()
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		if !s.checkPosition(w, r, event, 0) {
			return
		}
		if err := s.app.Storage.Events().Create(r.Context(), event); err != nil {
			s.writeStorageError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusCreated, event)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleTransactionByID handles GET/PUT/DELETE on /api/transactions/{id}.
func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request, rawID string) {
	id, ok := parseID(rawID)
	if !ok {
		WriteError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		event, err := s.app.Storage.Events().Get(ctx, id)
		if err != nil {
			s.writeStorageError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, event)

	case http.MethodPut:
		existing, err := s.app.Storage.Events().Get(ctx, id)
		if err != nil {
			s.writeStorageError(w, r, err)
			return
		}
		var req transactionRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		event, err := req.toModel()
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		event.ID = existing.ID
		event.CreatedAt = existing.CreatedAt
		if !s.checkPosition(w, r, event, event.ID) {
			return
		}
		if err := s.app.Storage.Events().Update(ctx, event); err != nil {
			s.writeStorageError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, event)

	case http.MethodDelete:
		if err := s.app.Storage.Events().Delete(ctx, id); err != nil {
			s.writeStorageError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}
