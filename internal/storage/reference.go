package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/jpariona/cartera/internal/models"
)

type referenceStore struct {
	db *sqlx.DB
}

// --- Exchanges ---

func (rs *referenceStore) CreateExchange(ctx context.Context, e *models.Exchange) error {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return fmt.Errorf("name is required")
	}
	res, err := rs.db.ExecContext(ctx,
		`INSERT INTO exchanges (name, country, currency) VALUES (?, ?, ?)`,
		e.Name, e.Country, e.Currency)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: exchange %q already exists", ErrConflict, e.Name)
		}
		return fmt.Errorf("failed to create exchange: %w", err)
	}
	e.ID, _ = res.LastInsertId()
	return nil
}

func (rs *referenceStore) ListExchanges(ctx context.Context) ([]models.Exchange, error) {
	var out []models.Exchange
	if err := rs.db.SelectContext(ctx, &out, `SELECT * FROM exchanges ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}
	return out, nil
}

func (rs *referenceStore) UpdateExchange(ctx context.Context, e *models.Exchange) error {
	res, err := rs.db.ExecContext(ctx,
		`UPDATE exchanges SET name = ?, country = ?, currency = ? WHERE id = ?`,
		strings.TrimSpace(e.Name), e.Country, e.Currency, e.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: exchange %q already exists", ErrConflict, e.Name)
		}
		return fmt.Errorf("failed to update exchange %d: %w", e.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (rs *referenceStore) DeleteExchange(ctx context.Context, id int64) error {
	return rs.deleteReference(ctx, "exchanges", "exchange_id", id)
}

// --- Platforms ---

func (rs *referenceStore) CreatePlatform(ctx context.Context, p *models.Platform) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	res, err := rs.db.ExecContext(ctx,
		`INSERT INTO platforms (name, country, currency) VALUES (?, ?, ?)`,
		p.Name, p.Country, p.Currency)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: platform %q already exists", ErrConflict, p.Name)
		}
		return fmt.Errorf("failed to create platform: %w", err)
	}
	p.ID, _ = res.LastInsertId()
	return nil
}

func (rs *referenceStore) ListPlatforms(ctx context.Context) ([]models.Platform, error) {
	var out []models.Platform
	if err := rs.db.SelectContext(ctx, &out, `SELECT * FROM platforms ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list platforms: %w", err)
	}
	return out, nil
}

func (rs *referenceStore) UpdatePlatform(ctx context.Context, p *models.Platform) error {
	res, err := rs.db.ExecContext(ctx,
		`UPDATE platforms SET name = ?, country = ?, currency = ? WHERE id = ?`,
		strings.TrimSpace(p.Name), p.Country, p.Currency, p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: platform %q already exists", ErrConflict, p.Name)
		}
		return fmt.Errorf("failed to update platform %d: %w", p.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (rs *referenceStore) DeletePlatform(ctx context.Context, id int64) error {
	return rs.deleteReference(ctx, "platforms", "platform_id", id)
}

// --- Investment types ---

func (rs *referenceStore) CreateType(ctx context.Context, t *models.InvestmentType) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return fmt.Errorf("name is required")
	}
	res, err := rs.db.ExecContext(ctx,
		`INSERT INTO investment_types (name) VALUES (?)`, t.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: investment type %q already exists", ErrConflict, t.Name)
		}
		return fmt.Errorf("failed to create investment type: %w", err)
	}
	t.ID, _ = res.LastInsertId()
	return nil
}

func (rs *referenceStore) ListTypes(ctx context.Context) ([]models.InvestmentType, error) {
	var out []models.InvestmentType
	if err := rs.db.SelectContext(ctx, &out, `SELECT * FROM investment_types ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list investment types: %w", err)
	}
	return out, nil
}

func (rs *referenceStore) DeleteType(ctx context.Context, id int64) error {
	var refs int
	if err := rs.db.GetContext(ctx, &refs,
		`SELECT COUNT(*) FROM tickers WHERE type_id = ?`, id); err != nil {
		return fmt.Errorf("failed to count type references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: investment type %d is referenced by %d tickers", ErrConflict, id, refs)
	}

	res, err := rs.db.ExecContext(ctx, `DELETE FROM investment_types WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete investment type %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// deleteReference removes a lookup row unless investment events still
// reference it through refColumn.
func (rs *referenceStore) deleteReference(ctx context.Context, table, refColumn string, id int64) error {
	var refs int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM investment_events WHERE %s = ?`, refColumn)
	if err := rs.db.GetContext(ctx, &refs, query, id); err != nil {
		return fmt.Errorf("failed to count references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: record %d in %s is referenced by %d events", ErrConflict, id, table, refs)
	}

	res, err := rs.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
