package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jpariona/cartera/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned on uniqueness violations and deletes of
// still-referenced records.
var ErrConflict = errors.New("conflict")

type tickerStore struct {
	db *sqlx.DB
}

type tickerRow struct {
	ID        int64  `db:"id"`
	Symbol    string `db:"symbol"`
	Name      string `db:"name"`
	Currency  string `db:"currency"`
	TypeID    int64  `db:"type_id"`
	Exchange  string `db:"exchange"`
	Country   string `db:"country"`
	Sector    string `db:"sector"`
	Active    bool   `db:"active"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

func (r tickerRow) toModel() models.Ticker {
	return models.Ticker{
		ID:        r.ID,
		Symbol:    r.Symbol,
		Name:      r.Name,
		Currency:  r.Currency,
		TypeID:    r.TypeID,
		Exchange:  r.Exchange,
		Country:   r.Country,
		Sector:    r.Sector,
		Active:    r.Active,
		CreatedAt: parseTime(r.CreatedAt),
		UpdatedAt: parseTime(r.UpdatedAt),
	}
}

func (ts *tickerStore) Create(ctx context.Context, t *models.Ticker) error {
	t.Symbol = strings.ToUpper(strings.TrimSpace(t.Symbol))
	if t.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if !models.ValidCurrency(t.Currency) {
		return fmt.Errorf("invalid currency %q", t.Currency)
	}

	now := time.Now()
	res, err := ts.db.ExecContext(ctx, `
		INSERT INTO tickers (symbol, name, currency, type_id, exchange, country, sector, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		t.Symbol, t.Name, t.Currency, t.TypeID, t.Exchange, t.Country, t.Sector, fmtTime(now), fmtTime(now))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ticker symbol %q already exists", ErrConflict, t.Symbol)
		}
		return fmt.Errorf("failed to create ticker: %w", err)
	}

	t.ID, _ = res.LastInsertId()
	t.Active = true
	t.CreatedAt = now
	t.UpdatedAt = now
	return nil
}

func (ts *tickerStore) Get(ctx context.Context, id int64) (*models.Ticker, error) {
	var row tickerRow
	err := ts.db.GetContext(ctx, &row, `SELECT * FROM tickers WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticker %d: %w", id, err)
	}
	m := row.toModel()
	return &m, nil
}

func (ts *tickerStore) GetBySymbol(ctx context.Context, symbol string) (*models.Ticker, error) {
	var row tickerRow
	err := ts.db.GetContext(ctx, &row,
		`SELECT * FROM tickers WHERE symbol = ? AND active = 1`,
		strings.ToUpper(strings.TrimSpace(symbol)))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticker %q: %w", symbol, err)
	}
	m := row.toModel()
	return &m, nil
}

func (ts *tickerStore) List(ctx context.Context, activeOnly bool) ([]models.Ticker, error) {
	query := `SELECT * FROM tickers ORDER BY symbol`
	if activeOnly {
		query = `SELECT * FROM tickers WHERE active = 1 ORDER BY symbol`
	}

	var rows []tickerRow
	if err := ts.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list tickers: %w", err)
	}

	out := make([]models.Ticker, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

func (ts *tickerStore) Update(ctx context.Context, t *models.Ticker) error {
	t.Symbol = strings.ToUpper(strings.TrimSpace(t.Symbol))
	if !models.ValidCurrency(t.Currency) {
		return fmt.Errorf("invalid currency %q", t.Currency)
	}

	now := time.Now()
	res, err := ts.db.ExecContext(ctx, `
		UPDATE tickers
		SET symbol = ?, name = ?, currency = ?, type_id = ?, exchange = ?, country = ?, sector = ?, active = ?, updated_at = ?
		WHERE id = ?`,
		t.Symbol, t.Name, t.Currency, t.TypeID, t.Exchange, t.Country, t.Sector, t.Active, fmtTime(now), t.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ticker symbol %q already exists", ErrConflict, t.Symbol)
		}
		return fmt.Errorf("failed to update ticker %d: %w", t.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	t.UpdatedAt = now
	return nil
}

func (ts *tickerStore) Deactivate(ctx context.Context, id int64) error {
	res, err := ts.db.ExecContext(ctx,
		`UPDATE tickers SET active = 0, updated_at = ? WHERE id = ?`, fmtTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate ticker %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a ticker only when nothing references it; referenced tickers
// must be deactivated instead.
func (ts *tickerStore) Delete(ctx context.Context, id int64) error {
	var refs int
	err := ts.db.GetContext(ctx, &refs, `
		SELECT (SELECT COUNT(*) FROM investment_events WHERE ticker_id = ?)
		     + (SELECT COUNT(*) FROM dividends WHERE ticker_id = ?)`, id, id)
	if err != nil {
		return fmt.Errorf("failed to count ticker references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: ticker %d is referenced by %d records; deactivate it instead", ErrConflict, id, refs)
	}

	if _, err := ts.db.ExecContext(ctx, `DELETE FROM historical_prices WHERE ticker_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete ticker prices: %w", err)
	}
	res, err := ts.db.ExecContext(ctx, `DELETE FROM tickers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ticker %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation detects SQLite unique-constraint errors without
// depending on driver-specific error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
