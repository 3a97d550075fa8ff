package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jpariona/cartera/internal/models"
)

type dividendStore struct {
	db *sqlx.DB
}

type dividendRow struct {
	ID       int64   `db:"id"`
	TickerID int64   `db:"ticker_id"`
	Date     string  `db:"date"`
	Amount   float64 `db:"amount"`
	Currency string  `db:"currency"`
	Market   string  `db:"market"`
}

func (r dividendRow) toModel() models.Dividend {
	return models.Dividend{
		ID:       r.ID,
		TickerID: r.TickerID,
		Date:     parseDate(r.Date),
		Amount:   r.Amount,
		Currency: r.Currency,
		Market:   r.Market,
	}
}

func (ds *dividendStore) Create(ctx context.Context, d *models.Dividend) error {
	res, err := ds.db.ExecContext(ctx, `
		INSERT INTO dividends (ticker_id, date, amount, currency, market)
		VALUES (?, ?, ?, ?, ?)`,
		d.TickerID, fmtDate(d.Date), d.Amount, d.Currency, d.Market)
	if err != nil {
		return fmt.Errorf("failed to create dividend: %w", err)
	}
	d.ID, _ = res.LastInsertId()
	return nil
}

func (ds *dividendStore) Get(ctx context.Context, id int64) (*models.Dividend, error) {
	var row dividendRow
	err := ds.db.GetContext(ctx, &row, `SELECT * FROM dividends WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dividend %d: %w", id, err)
	}
	m := row.toModel()
	return &m, nil
}

func (ds *dividendStore) Update(ctx context.Context, d *models.Dividend) error {
	res, err := ds.db.ExecContext(ctx, `
		UPDATE dividends SET ticker_id = ?, date = ?, amount = ?, currency = ?, market = ?
		WHERE id = ?`,
		d.TickerID, fmtDate(d.Date), d.Amount, d.Currency, d.Market, d.ID)
	if err != nil {
		return fmt.Errorf("failed to update dividend %d: %w", d.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (ds *dividendStore) Delete(ctx context.Context, id int64) error {
	res, err := ds.db.ExecContext(ctx, `DELETE FROM dividends WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dividend %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (ds *dividendStore) ListByTicker(ctx context.Context, tickerID int64, from, to time.Time) ([]models.Dividend, error) {
	query := `SELECT * FROM dividends WHERE ticker_id = ?`
	args := []interface{}{tickerID}
	query, args = appendDateRange(query, args, from, to)
	query += ` ORDER BY date, id`

	var rows []dividendRow
	if err := ds.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list dividends for ticker %d: %w", tickerID, err)
	}
	return dividendRowsToModels(rows), nil
}

func (ds *dividendStore) List(ctx context.Context, from, to time.Time) ([]models.Dividend, error) {
	query := `SELECT * FROM dividends WHERE 1=1`
	args := []interface{}{}
	query, args = appendDateRange(query, args, from, to)
	query += ` ORDER BY date, id`

	var rows []dividendRow
	if err := ds.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list dividends: %w", err)
	}
	return dividendRowsToModels(rows), nil
}

func dividendRowsToModels(rows []dividendRow) []models.Dividend {
	out := make([]models.Dividend, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out
}
