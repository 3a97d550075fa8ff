// Package models defines the domain types for Cartera
package models

import "time"

// Supported currencies. Holdings are denominated in one of these; reports can
// be expressed in either.
const (
	CurrencyUSD = "USD"
	CurrencyPEN = "PEN"
)

// ValidCurrency returns true if c is a supported currency code.
func ValidCurrency(c string) bool {
	return c == CurrencyUSD || c == CurrencyPEN
}

// Ticker identifies a tradable instrument (stock, ETF, fund).
type Ticker struct {
	ID        int64     `db:"id" json:"id"`
	Symbol    string    `db:"symbol" json:"symbol"`
	Name      string    `db:"name" json:"name"`
	Currency  string    `db:"currency" json:"currency"`
	TypeID    int64     `db:"type_id" json:"type_id"`
	Exchange  string    `db:"exchange" json:"exchange"`
	Country   string    `db:"country" json:"country,omitempty"`
	Sector    string    `db:"sector" json:"sector,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Exchange is a reference entity for where an instrument is listed.
type Exchange struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Country  string `db:"country" json:"country,omitempty"`
	Currency string `db:"currency" json:"currency,omitempty"`
}

// Platform is a reference entity for the broker/platform a trade went through.
type Platform struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Country  string `db:"country" json:"country,omitempty"`
	Currency string `db:"currency" json:"currency,omitempty"`
}

// InvestmentType is a reference entity (stock, ETF, fund).
type InvestmentType struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
