// Package performance computes per-period portfolio analytics: valuations,
// capital flows, chained returns, drawdowns, and benchmark comparisons.
// Every report view is built on the same aggregation routine so the
// geometric-chaining rule holds identically everywhere.
package performance

import (
	"sort"
	"time"

	"github.com/jpariona/cartera/internal/models"
)

// FlowEvent is one signed cash flow against a position. Amount is in the
// reporting currency; LocalAmount keeps the original denomination for the
// price/FX gain split.
type FlowEvent struct {
	Date        time.Time
	Amount      float64
	LocalAmount float64
	Currency    string
	Quantity    float64
	NewCapital  bool
}

// DividendEvent is one cash dividend, already in the reporting currency.
// Dividends credit period gain, never contributions.
type DividendEvent struct {
	Date   time.Time
	Amount float64
}

// ExtractFlows turns validated investment events into a chronologically
// sorted flow series. Amounts and quantities carry the sign stored on the
// event: positive for investments, negative for divestments. Amount and
// LocalAmount start equal; the caller converts Amount into the reporting
// currency before aggregation.
func ExtractFlows(events []models.InvestmentEvent, currency string) []FlowEvent {
	flows := make([]FlowEvent, 0, len(events))
	for _, e := range events {
		flows = append(flows, FlowEvent{
			Date:        e.Date,
			Amount:      e.Amount,
			LocalAmount: e.Amount,
			Currency:    currency,
			Quantity:    e.Quantity,
			NewCapital:  e.IsNewCapital(),
		})
	}
	sort.SliceStable(flows, func(i, j int) bool { return flows[i].Date.Before(flows[j].Date) })
	return flows
}

// ExtractDividends builds the sorted dividend series for aggregation.
// convert maps each amount from the dividend's own currency into the
// reporting currency; nil keeps amounts as stored.
func ExtractDividends(divs []models.Dividend, convert func(amount float64, currency string, date time.Time) float64) []DividendEvent {
	out := make([]DividendEvent, 0, len(divs))
	for _, d := range divs {
		amount := d.Amount
		if convert != nil {
			amount = convert(d.Amount, d.Currency, d.Date)
		}
		out = append(out, DividendEvent{Date: d.Date, Amount: amount})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
