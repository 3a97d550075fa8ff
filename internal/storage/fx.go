package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jpariona/cartera/internal/models"
)

type fxStore struct {
	db *sqlx.DB
}

type fxRow struct {
	Date   string  `db:"date"`
	USDPEN float64 `db:"usd_pen"`
	Source string  `db:"source"`
}

func (r fxRow) toModel() models.FXRate {
	return models.FXRate{Date: parseDate(r.Date), USDPEN: r.USDPEN, Source: r.Source}
}

func (fs *fxStore) Upsert(ctx context.Context, rate *models.FXRate) error {
	if rate.USDPEN <= 0 {
		return fmt.Errorf("usd_pen rate must be positive")
	}
	_, err := fs.db.ExecContext(ctx, `
		INSERT INTO fx_rates (date, usd_pen, source) VALUES (?, ?, ?)
		ON CONFLICT (date) DO UPDATE SET usd_pen = excluded.usd_pen, source = excluded.source`,
		fmtDate(rate.Date), rate.USDPEN, rate.Source)
	if err != nil {
		return fmt.Errorf("failed to upsert fx rate: %w", err)
	}
	return nil
}

func (fs *fxStore) UpsertBatch(ctx context.Context, rates []models.FXRate) (int, error) {
	if len(rates) == 0 {
		return 0, nil
	}

	tx, err := fs.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fx_rates (date, usd_pen, source) VALUES (?, ?, ?)
		ON CONFLICT (date) DO UPDATE SET usd_pen = excluded.usd_pen, source = excluded.source`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare fx upsert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for _, r := range rates {
		if r.USDPEN <= 0 {
			continue
		}
		if _, err := stmt.ExecContext(ctx, fmtDate(r.Date), r.USDPEN, r.Source); err != nil {
			return count, fmt.Errorf("failed to upsert fx rate for %s: %w", fmtDate(r.Date), err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return count, fmt.Errorf("failed to commit fx batch: %w", err)
	}
	return count, nil
}

func (fs *fxStore) List(ctx context.Context, from, to time.Time) ([]models.FXRate, error) {
	query := `SELECT * FROM fx_rates WHERE 1=1`
	args := []interface{}{}
	query, args = appendDateRange(query, args, from, to)
	query += ` ORDER BY date`

	var rows []fxRow
	if err := fs.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list fx rates: %w", err)
	}

	out := make([]models.FXRate, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// GetAsOf returns the rate whose date is closest at or before date; nil
// (without error) when none exists. Later inserts for newer dates never
// change the result for a fixed date.
func (fs *fxStore) GetAsOf(ctx context.Context, date time.Time) (*models.FXRate, error) {
	var row fxRow
	err := fs.db.GetContext(ctx, &row, `
		SELECT * FROM fx_rates WHERE date <= ? ORDER BY date DESC LIMIT 1`,
		fmtDate(date))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fx rate as of %s: %w", fmtDate(date), err)
	}
	m := row.toModel()
	return &m, nil
}
