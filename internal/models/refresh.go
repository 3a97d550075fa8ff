package models

import "time"

// Refresh outcomes.
const (
	RefreshOK     = "ok"      // a provider returned data
	RefreshNoData = "no_data" // every provider failed; local data unchanged
)

// ProviderAttempt records one provider call during a price refresh.
type ProviderAttempt struct {
	Provider string `json:"provider"`
	Success  bool   `json:"success"`
	Rows     int    `json:"rows,omitempty"`
	Error    string `json:"error,omitempty"`
}

// RefreshEntry is the stored trail of one per-ticker refresh: which providers
// were tried, in order, and how it ended. Kept for display, not retried.
type RefreshEntry struct {
	ID        int64             `db:"id" json:"id"`
	TickerID  int64             `db:"ticker_id" json:"ticker_id"`
	Symbol    string            `db:"symbol" json:"symbol"`
	StartedAt time.Time         `db:"started_at" json:"started_at"`
	Outcome   string            `db:"outcome" json:"outcome"`
	Attempts  []ProviderAttempt `json:"attempts"`
}
