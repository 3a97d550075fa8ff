package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jpariona/cartera/internal/models"
)

type eventStore struct {
	db *sqlx.DB
}

type eventRow struct {
	ID            int64   `db:"id"`
	TickerID      int64   `db:"ticker_id"`
	Date          string  `db:"date"`
	Amount        float64 `db:"amount"`
	Quantity      float64 `db:"quantity"`
	PlatformID    int64   `db:"platform_id"`
	ExchangeID    int64   `db:"exchange_id"`
	Operation     string  `db:"operation"`
	CapitalOrigin string  `db:"capital_origin"`
	CreatedAt     string  `db:"created_at"`
	UpdatedAt     string  `db:"updated_at"`
}

func (r eventRow) toModel() models.InvestmentEvent {
	return models.InvestmentEvent{
		ID:            r.ID,
		TickerID:      r.TickerID,
		Date:          parseDate(r.Date),
		Amount:        r.Amount,
		Quantity:      r.Quantity,
		PlatformID:    r.PlatformID,
		ExchangeID:    r.ExchangeID,
		Operation:     models.OperationType(r.Operation),
		CapitalOrigin: models.CapitalOrigin(r.CapitalOrigin),
		CreatedAt:     parseTime(r.CreatedAt),
		UpdatedAt:     parseTime(r.UpdatedAt),
	}
}

func (es *eventStore) Create(ctx context.Context, e *models.InvestmentEvent) error {
	now := time.Now()
	res, err := es.db.ExecContext(ctx, `
		INSERT INTO investment_events (ticker_id, date, amount, quantity, platform_id, exchange_id, operation, capital_origin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.TickerID, fmtDate(e.Date), e.Amount, e.Quantity, e.PlatformID, e.ExchangeID,
		string(e.Operation), string(e.CapitalOrigin), fmtTime(now), fmtTime(now))
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	e.ID, _ = res.LastInsertId()
	e.CreatedAt = now
	e.UpdatedAt = now
	return nil
}

func (es *eventStore) Get(ctx context.Context, id int64) (*models.InvestmentEvent, error) {
	var row eventRow
	err := es.db.GetContext(ctx, &row, `SELECT * FROM investment_events WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event %d: %w", id, err)
	}
	m := row.toModel()
	return &m, nil
}

func (es *eventStore) Update(ctx context.Context, e *models.InvestmentEvent) error {
	now := time.Now()
	res, err := es.db.ExecContext(ctx, `
		UPDATE investment_events
		SET ticker_id = ?, date = ?, amount = ?, quantity = ?, platform_id = ?, exchange_id = ?, operation = ?, capital_origin = ?, updated_at = ?
		WHERE id = ?`,
		e.TickerID, fmtDate(e.Date), e.Amount, e.Quantity, e.PlatformID, e.ExchangeID,
		string(e.Operation), string(e.CapitalOrigin), fmtTime(now), e.ID)
	if err != nil {
		return fmt.Errorf("failed to update event %d: %w", e.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	e.UpdatedAt = now
	return nil
}

func (es *eventStore) Delete(ctx context.Context, id int64) error {
	res, err := es.db.ExecContext(ctx, `DELETE FROM investment_events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (es *eventStore) ListByTicker(ctx context.Context, tickerID int64, from, to time.Time) ([]models.InvestmentEvent, error) {
	query := `SELECT * FROM investment_events WHERE ticker_id = ?`
	args := []interface{}{tickerID}
	query, args = appendDateRange(query, args, from, to)
	query += ` ORDER BY date, id`

	var rows []eventRow
	if err := es.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list events for ticker %d: %w", tickerID, err)
	}
	return eventRowsToModels(rows), nil
}

func (es *eventStore) List(ctx context.Context, from, to time.Time) ([]models.InvestmentEvent, error) {
	query := `SELECT * FROM investment_events WHERE 1=1`
	args := []interface{}{}
	query, args = appendDateRange(query, args, from, to)
	query += ` ORDER BY date, id`

	var rows []eventRow
	if err := es.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return eventRowsToModels(rows), nil
}

// NetPositionAsOf sums signed quantities up to and including date. The
// divestment-entry check runs against this figure before any write.
func (es *eventStore) NetPositionAsOf(ctx context.Context, tickerID int64, date time.Time, excludeID int64) (float64, error) {
	var qty sql.NullFloat64
	err := es.db.GetContext(ctx, &qty, `
		SELECT SUM(quantity) FROM investment_events
		WHERE ticker_id = ? AND date <= ? AND id != ?`,
		tickerID, fmtDate(date), excludeID)
	if err != nil {
		return 0, fmt.Errorf("failed to compute net position: %w", err)
	}
	return qty.Float64, nil
}

func appendDateRange(query string, args []interface{}, from, to time.Time) (string, []interface{}) {
	if !from.IsZero() {
		query += ` AND date >= ?`
		args = append(args, fmtDate(from))
	}
	if !to.IsZero() {
		query += ` AND date <= ?`
		args = append(args, fmtDate(to))
	}
	return query, args
}

func eventRowsToModels(rows []eventRow) []models.InvestmentEvent {
	out := make([]models.InvestmentEvent, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out
}
