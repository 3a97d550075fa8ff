package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/jpariona/cartera/internal/interfaces"
	"github.com/jpariona/cartera/internal/models"
	"github.com/jpariona/cartera/internal/storage"
)

const dateLayout = "2006-01-02"

// parseID parses a numeric path segment.
func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseDate parses a YYYY-MM-DD string. Empty input returns a zero time
// without error so optional parameters fall through to defaults.
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, raw)
}

// dateRangeQuery reads optional from/to query parameters. Writes a 400 and
// returns false on malformed dates.
func dateRangeQuery(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	from, err := parseDate(r.URL.Query().Get("from"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid 'from' date; expected YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	to, err := parseDate(r.URL.Query().Get("to"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid 'to' date; expected YYYY-MM-DD")
		return time.Time{}, time.Time{}, false
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		WriteError(w, http.StatusBadRequest, "'to' must not be before 'from'")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// reportOptions builds performance report options from query parameters,
// defaulting the currency to the configured reporting currency.
func (s *Server) reportOptions(w http.ResponseWriter, r *http.Request) (interfaces.ReportOptions, bool) {
	from, to, ok := dateRangeQuery(w, r)
	if !ok {
		return interfaces.ReportOptions{}, false
	}
	currency := r.URL.Query().Get("currency")
	if currency == "" {
		currency = s.app.Config.ReportingCurrency
	}
	if !models.ValidCurrency(currency) {
		WriteError(w, http.StatusBadRequest, "invalid currency; must be USD or PEN")
		return interfaces.ReportOptions{}, false
	}
	return interfaces.ReportOptions{Currency: currency, From: from, To: to}, true
}

// writeStorageError maps storage sentinel errors to HTTP statuses.
func (s *Server) writeStorageError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not found")
	case errors.Is(err, storage.ErrConflict):
		WriteError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Storage operation failed")
		WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
