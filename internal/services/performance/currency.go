package performance

import (
	"sort"
	"time"

	"github.com/jpariona/cartera/internal/models"
)

// Converter translates amounts between USD and PEN using the stored daily
// rate series. Lookups take the rate whose date is the closest at or before
// the requested date, so a conversion for a fixed date never changes as
// later rates are inserted.
type Converter struct {
	rates []models.FXRate // ascending by date
}

// NewConverter builds a converter over the given rate rows.
func NewConverter(rates []models.FXRate) *Converter {
	sorted := make([]models.FXRate, len(rates))
	copy(sorted, rates)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	return &Converter{rates: sorted}
}

// RateAsOf returns the PEN-per-USD rate effective on date, or false when no
// rate exists at or before it.
func (c *Converter) RateAsOf(date time.Time) (float64, bool) {
	// Last rate with Date <= date.
	idx := sort.Search(len(c.rates), func(i int) bool { return c.rates[i].Date.After(date) })
	if idx == 0 {
		return 0, false
	}
	return c.rates[idx-1].USDPEN, true
}

// Convert translates amount from one currency to the other as of date.
// Conversion fails soft: when no rate is available the second return is
// false and the caller decides what to do with the gap.
func (c *Converter) Convert(amount float64, from, to string, date time.Time) (float64, bool) {
	if from == to {
		return amount, true
	}
	rate, ok := c.RateAsOf(date)
	if !ok || rate == 0 {
		return 0, false
	}
	switch {
	case from == models.CurrencyUSD && to == models.CurrencyPEN:
		return amount * rate, true
	case from == models.CurrencyPEN && to == models.CurrencyUSD:
		return amount / rate, true
	}
	return 0, false
}

// ConvertOrKeep converts when a rate is available and otherwise returns the
// amount unchanged. Used for flows that predate the stored rate series, where
// dropping the flow would corrupt contribution totals.
func (c *Converter) ConvertOrKeep(amount float64, from, to string, date time.Time) float64 {
	if v, ok := c.Convert(amount, from, to, date); ok {
		return v
	}
	return amount
}
