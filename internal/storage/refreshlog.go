package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jpariona/cartera/internal/models"
)

type refreshLogStore struct {
	db *sqlx.DB
}

func (ls *refreshLogStore) Append(ctx context.Context, entry *models.RefreshEntry) error {
	attempts, err := json.Marshal(entry.Attempts)
	if err != nil {
		return fmt.Errorf("failed to encode attempts: %w", err)
	}

	res, err := ls.db.ExecContext(ctx, `
		INSERT INTO refresh_log (ticker_id, symbol, started_at, outcome, attempts)
		VALUES (?, ?, ?, ?, ?)`,
		entry.TickerID, entry.Symbol, fmtTime(entry.StartedAt), entry.Outcome, string(attempts))
	if err != nil {
		return fmt.Errorf("failed to append refresh entry: %w", err)
	}
	entry.ID, _ = res.LastInsertId()
	return nil
}

func (ls *refreshLogStore) List(ctx context.Context, limit int) ([]models.RefreshEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []refreshRow
	err := ls.db.SelectContext(ctx, &rows, `
		SELECT * FROM refresh_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list refresh log: %w", err)
	}

	out := make([]models.RefreshEntry, 0, len(rows))
	for _, r := range rows {
		m, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

type refreshRow struct {
	ID        int64  `db:"id"`
	TickerID  int64  `db:"ticker_id"`
	Symbol    string `db:"symbol"`
	StartedAt string `db:"started_at"`
	Outcome   string `db:"outcome"`
	Attempts  string `db:"attempts"`
}

func (r refreshRow) toModel() (models.RefreshEntry, error) {
	var attempts []models.ProviderAttempt
	if r.Attempts != "" {
		if err := json.Unmarshal([]byte(r.Attempts), &attempts); err != nil {
			return models.RefreshEntry{}, fmt.Errorf("invalid attempts payload: %w", err)
		}
	}
	return models.RefreshEntry{
		ID:        r.ID,
		TickerID:  r.TickerID,
		Symbol:    r.Symbol,
		StartedAt: parseTime(r.StartedAt),
		Outcome:   r.Outcome,
		Attempts:  attempts,
	}, nil
}
