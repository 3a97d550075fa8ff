package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jpariona/cartera/internal/models"
)

type benchmarkStore struct {
	db *sqlx.DB
}

func (bs *benchmarkStore) UpsertBatch(ctx context.Context, series string, points []models.PricePoint) (int, error) {
	if !models.ValidBenchmarkSeries(series) {
		return 0, fmt.Errorf("unknown benchmark series %q", series)
	}
	if len(points) == 0 {
		return 0, nil
	}

	tx, err := bs.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO benchmark_prices (series, date, value)
		VALUES (?, ?, ?)
		ON CONFLICT (series, date) DO UPDATE SET value = excluded.value`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for _, p := range points {
		if p.Price <= 0 {
			continue
		}
		if _, err := stmt.ExecContext(ctx, series, fmtDate(p.Date), p.Price); err != nil {
			return 0, fmt.Errorf("failed to upsert %s at %s: %w", series, fmtDate(p.Date), err)
		}
		count++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return count, nil
}

func (bs *benchmarkStore) List(ctx context.Context, series string, from, to time.Time) ([]models.BenchmarkPrice, error) {
	query := `SELECT * FROM benchmark_prices WHERE series = ?`
	args := []any{series}
	query, args = appendDateRange(query, args, from, to)
	query += ` ORDER BY date`

	var rows []benchmarkRow
	if err := bs.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list benchmark prices: %w", err)
	}

	out := make([]models.BenchmarkPrice, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

type benchmarkRow struct {
	Series string  `db:"series"`
	Date   string  `db:"date"`
	Value  float64 `db:"value"`
}

func (r benchmarkRow) toModel() models.BenchmarkPrice {
	return models.BenchmarkPrice{Series: r.Series, Date: parseDate(r.Date), Value: r.Value}
}
