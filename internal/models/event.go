package models

import (
	"fmt"
	"math"
	"time"
)

// OperationType categorizes an investment event.
type OperationType string

const (
	OpInvestment OperationType = "INVESTMENT"
	OpDivestment OperationType = "DIVESTMENT"
)

// ValidOperationType returns true if t is a known operation type.
func ValidOperationType(t OperationType) bool {
	return t == OpInvestment || t == OpDivestment
}

// CapitalOrigin marks where the money for an investment came from.
// Reinvested capital moves quantity and cost basis but is excluded from
// new-contribution totals.
type CapitalOrigin string

const (
	OriginFreshCash    CapitalOrigin = "FRESH_CASH"
	OriginReinvestment CapitalOrigin = "REINVESTMENT"
)

// ValidCapitalOrigin returns true if o is a known capital origin.
func ValidCapitalOrigin(o CapitalOrigin) bool {
	return o == OriginFreshCash || o == OriginReinvestment
}

// InvestmentEvent is a single cash-flow transaction against a ticker.
// Amount and Quantity are signed: positive for investments, negative for
// divestments.
type InvestmentEvent struct {
	ID            int64         `db:"id" json:"id"`
	TickerID      int64         `db:"ticker_id" json:"ticker_id"`
	Date          time.Time     `db:"date" json:"date"`
	Amount        float64       `db:"amount" json:"amount"`
	Quantity      float64       `db:"quantity" json:"quantity"`
	PlatformID    int64         `db:"platform_id" json:"platform_id"`
	ExchangeID    int64         `db:"exchange_id" json:"exchange_id"`
	Operation     OperationType `db:"operation" json:"operation"`
	CapitalOrigin CapitalOrigin `db:"capital_origin" json:"capital_origin"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// IsNewCapital reports whether the event counts toward contribution totals.
func (e *InvestmentEvent) IsNewCapital() bool {
	return e.CapitalOrigin != OriginReinvestment
}

// Validate checks field-level invariants. The running-position check for
// divestments needs storage access and lives in the transaction handler.
func (e *InvestmentEvent) Validate() error {
	if e.TickerID == 0 {
		return fmt.Errorf("ticker_id is required")
	}
	if e.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if !ValidOperationType(e.Operation) {
		return fmt.Errorf("invalid operation %q; must be INVESTMENT or DIVESTMENT", e.Operation)
	}
	if e.CapitalOrigin == "" {
		e.CapitalOrigin = OriginFreshCash
	}
	if !ValidCapitalOrigin(e.CapitalOrigin) {
		return fmt.Errorf("invalid capital_origin %q; must be FRESH_CASH or REINVESTMENT", e.CapitalOrigin)
	}
	if e.Amount == 0 {
		return fmt.Errorf("amount must not be zero")
	}
	if e.Quantity == 0 {
		return fmt.Errorf("quantity must not be zero")
	}
	if math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) {
		return fmt.Errorf("amount must be finite")
	}
	if math.IsNaN(e.Quantity) || math.IsInf(e.Quantity, 0) {
		return fmt.Errorf("quantity must be finite")
	}

	switch e.Operation {
	case OpInvestment:
		if e.Amount < 0 || e.Quantity < 0 {
			return fmt.Errorf("investment amount and quantity must be positive")
		}
	case OpDivestment:
		if e.Amount > 0 || e.Quantity > 0 {
			return fmt.Errorf("divestment amount and quantity must be negative")
		}
	}
	return nil
}
