package performance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpariona/cartera/internal/models"
)

func testRates() []models.FXRate {
	return []models.FXRate{
		{Date: day("2024-01-02"), USDPEN: 3.70},
		{Date: day("2024-01-05"), USDPEN: 3.80},
	}
}

func TestConvertUSDToPEN(t *testing.T) {
	c := NewConverter(testRates())

	v, ok := c.Convert(100, models.CurrencyUSD, models.CurrencyPEN, day("2024-01-02"))
	require.True(t, ok)
	assert.InDelta(t, 370.0, v, 1e-9)

	v, ok = c.Convert(370, models.CurrencyPEN, models.CurrencyUSD, day("2024-01-02"))
	require.True(t, ok)
	assert.InDelta(t, 100.0, v, 1e-9)
}

func TestConvertUsesNearestEarlierRate(t *testing.T) {
	c := NewConverter(testRates())

	// The 3rd and 4th have no rate of their own; the Jan 2 rate applies.
	v, ok := c.Convert(100, models.CurrencyUSD, models.CurrencyPEN, day("2024-01-04"))
	require.True(t, ok)
	assert.InDelta(t, 370.0, v, 1e-9)
}

func TestConvertSoftFailsBeforeFirstRate(t *testing.T) {
	c := NewConverter(testRates())

	_, ok := c.Convert(100, models.CurrencyUSD, models.CurrencyPEN, day("2024-01-01"))
	assert.False(t, ok, "no rate at or before the date: soft failure, no error")

	// ConvertOrKeep leaves the amount untouched in that case.
	v := c.ConvertOrKeep(100, models.CurrencyUSD, models.CurrencyPEN, day("2024-01-01"))
	assert.Equal(t, 100.0, v)
}

func TestConvertSameCurrencyIsIdentity(t *testing.T) {
	c := NewConverter(nil)
	v, ok := c.Convert(123.45, models.CurrencyUSD, models.CurrencyUSD, day("2024-01-01"))
	require.True(t, ok)
	assert.Equal(t, 123.45, v)
}

func TestConvertIdempotentUnderLaterInserts(t *testing.T) {
	// For a fixed target date the chosen rate never changes as more recent
	// rates are added.
	before := NewConverter(testRates())
	v1, ok := before.Convert(100, models.CurrencyUSD, models.CurrencyPEN, day("2024-01-03"))
	require.True(t, ok)

	extended := append(testRates(),
		models.FXRate{Date: day("2024-01-10"), USDPEN: 3.95},
		models.FXRate{Date: day("2024-02-01"), USDPEN: 4.05},
	)
	after := NewConverter(extended)
	v2, ok := after.Convert(100, models.CurrencyUSD, models.CurrencyPEN, day("2024-01-03"))
	require.True(t, ok)

	assert.Equal(t, v1, v2)
}
