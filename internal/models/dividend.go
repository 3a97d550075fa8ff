package models

import (
	"fmt"
	"time"
)

// Dividend is a cash dividend credited against a ticker. Dividends count
// toward period returns but never toward invested capital.
type Dividend struct {
	ID       int64     `db:"id" json:"id"`
	TickerID int64     `db:"ticker_id" json:"ticker_id"`
	Date     time.Time `db:"date" json:"date"`
	Amount   float64   `db:"amount" json:"amount"`
	Currency string    `db:"currency" json:"currency"`
	Market   string    `db:"market" json:"market,omitempty"`
}

// Validate checks field-level invariants.
func (d *Dividend) Validate() error {
	if d.TickerID == 0 {
		return fmt.Errorf("ticker_id is required")
	}
	if d.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if d.Amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	if !ValidCurrency(d.Currency) {
		return fmt.Errorf("invalid currency %q; must be USD or PEN", d.Currency)
	}
	return nil
}
