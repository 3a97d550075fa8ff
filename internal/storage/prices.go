package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jpariona/cartera/internal/models"
)

type priceStore struct {
	db *sqlx.DB
}

type priceRow struct {
	TickerID  int64   `db:"ticker_id"`
	Date      string  `db:"date"`
	Price     float64 `db:"price"`
	Source    string  `db:"source"`
	UpdatedAt string  `db:"updated_at"`
}

func (r priceRow) toModel() models.HistoricalPrice {
	return models.HistoricalPrice{
		TickerID:  r.TickerID,
		Date:      parseDate(r.Date),
		Price:     r.Price,
		Source:    r.Source,
		UpdatedAt: parseTime(r.UpdatedAt),
	}
}

// Upsert writes one price row, overwriting any existing row for the same
// (ticker, date).
func (ps *priceStore) Upsert(ctx context.Context, p *models.HistoricalPrice) error {
	if p.Price <= 0 {
		return fmt.Errorf("price must be positive")
	}
	_, err := ps.db.ExecContext(ctx, `
		INSERT INTO historical_prices (ticker_id, date, price, source, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (ticker_id, date) DO UPDATE SET
			price = excluded.price, source = excluded.source, updated_at = excluded.updated_at`,
		p.TickerID, fmtDate(p.Date), p.Price, p.Source, fmtTime(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to upsert price: %w", err)
	}
	return nil
}

func (ps *priceStore) UpsertBatch(ctx context.Context, prices []models.HistoricalPrice) (int, error) {
	if len(prices) == 0 {
		return 0, nil
	}

	tx, err := ps.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO historical_prices (ticker_id, date, price, source, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (ticker_id, date) DO UPDATE SET
			price = excluded.price, source = excluded.source, updated_at = excluded.updated_at`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := fmtTime(time.Now())
	count := 0
	for _, p := range prices {
		if p.Price <= 0 {
			continue
		}
		if _, err := stmt.ExecContext(ctx, p.TickerID, fmtDate(p.Date), p.Price, p.Source, now); err != nil {
			return count, fmt.Errorf("failed to upsert price for %s: %w", fmtDate(p.Date), err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return count, fmt.Errorf("failed to commit price batch: %w", err)
	}
	return count, nil
}

func (ps *priceStore) List(ctx context.Context, tickerID int64, from, to time.Time) ([]models.HistoricalPrice, error) {
	query := `SELECT * FROM historical_prices WHERE ticker_id = ?`
	args := []interface{}{tickerID}
	query, args = appendDateRange(query, args, from, to)
	query += ` ORDER BY date`

	var rows []priceRow
	if err := ps.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list prices for ticker %d: %w", tickerID, err)
	}

	out := make([]models.HistoricalPrice, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// GetAsOf returns the price on date or the most recent earlier one; nil
// (without error) when no price exists at or before date.
func (ps *priceStore) GetAsOf(ctx context.Context, tickerID int64, date time.Time) (*models.HistoricalPrice, error) {
	var row priceRow
	err := ps.db.GetContext(ctx, &row, `
		SELECT * FROM historical_prices
		WHERE ticker_id = ? AND date <= ?
		ORDER BY date DESC LIMIT 1`,
		tickerID, fmtDate(date))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get price as of %s: %w", fmtDate(date), err)
	}
	m := row.toModel()
	return &m, nil
}

func (ps *priceStore) LatestDate(ctx context.Context, tickerID int64) (time.Time, error) {
	var d sql.NullString
	err := ps.db.GetContext(ctx, &d,
		`SELECT MAX(date) FROM historical_prices WHERE ticker_id = ?`, tickerID)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get latest price date: %w", err)
	}
	if !d.Valid {
		return time.Time{}, nil
	}
	return parseDate(d.String), nil
}
