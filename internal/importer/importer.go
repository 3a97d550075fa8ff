// Package importer loads transactions, dividends, and prices from CSV files.
// It exists for the initial bulk load of historical records kept in
// spreadsheets; day-to-day entry goes through the REST API.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jpariona/cartera/internal/common"
	"github.com/jpariona/cartera/internal/interfaces"
	"github.com/jpariona/cartera/internal/models"
)

const dateLayout = "2006-01-02"

// positionEpsilon absorbs float accumulation noise in the running-position
// check for imported divestments.
const positionEpsilon = 1e-9

// pendingEvent is a parsed CSV row awaiting the position check and commit.
type pendingEvent struct {
	line  int
	event *models.InvestmentEvent
}

// Result summarizes one import run. Rows that fail validation are skipped
// and reported; the rest are committed.
type Result struct {
	Total    int
	Imported int
	Skipped  []RowError
}

// RowError records why one CSV line was rejected.
type RowError struct {
	Line    int
	Message string
}

// Importer loads CSV files into the store.
type Importer struct {
	storage interfaces.Store
	logger  *common.Logger
}

// New creates an importer.
func New(storage interfaces.Store, logger *common.Logger) *Importer {
	return &Importer{storage: storage, logger: logger}
}

// header maps column names to indices, case-insensitively.
type header map[string]int

func readHeader(rec []string) header {
	h := make(header, len(rec))
	for i, name := range rec {
		h[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return h
}

func (h header) get(rec []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// parseAmount parses a money or quantity column. Decimal parsing keeps
// values like "1234.56" exact before the float conversion for storage.
func parseAmount(raw string) (float64, error) {
	raw = strings.ReplaceAll(raw, ",", "")
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return d.InexactFloat64(), nil
}

// ImportTransactions reads investment events from CSV. Expected columns:
// symbol, date, amount, quantity, operation, capital_origin (optional),
// platform (optional name), exchange (optional name). Platforms and
// exchanges named in the file are created when missing.
func (im *Importer) ImportTransactions(ctx context.Context, r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	first, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	h := readHeader(first)
	for _, col := range []string{"symbol", "date", "amount", "quantity", "operation"} {
		if _, ok := h[col]; !ok {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}

	platforms, err := im.platformIndex(ctx)
	if err != nil {
		return nil, err
	}
	exchanges, err := im.exchangeIndex(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	line := 1
	var pending []pendingEvent
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Skipped = append(result.Skipped, RowError{Line: line, Message: err.Error()})
			continue
		}
		result.Total++

		event, rowErr := im.rowToEvent(ctx, h, rec, platforms, exchanges)
		if rowErr != "" {
			result.Skipped = append(result.Skipped, RowError{Line: line, Message: rowErr})
			continue
		}
		pending = append(pending, pendingEvent{line: line, event: event})
	}

	// Commit in date order so the running-position check sees every earlier
	// purchase even when the file is not sorted.
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].event.Date.Before(pending[j].event.Date)
	})
	for _, p := range pending {
		if p.event.Operation == models.OpDivestment {
			held, err := im.storage.Events().NetPositionAsOf(ctx, p.event.TickerID, p.event.Date, 0)
			if err != nil {
				return nil, fmt.Errorf("failed to compute net position: %w", err)
			}
			if held+p.event.Quantity < -positionEpsilon {
				result.Skipped = append(result.Skipped, RowError{
					Line:    p.line,
					Message: fmt.Sprintf("divestment of %.4f units exceeds the %.4f held on %s", -p.event.Quantity, held, p.event.Date.Format(dateLayout)),
				})
				continue
			}
		}
		if err := im.storage.Events().Create(ctx, p.event); err != nil {
			result.Skipped = append(result.Skipped, RowError{Line: p.line, Message: err.Error()})
			continue
		}
		result.Imported++
	}

	im.logger.Info().
		Int("total", result.Total).
		Int("imported", result.Imported).
		Int("skipped", len(result.Skipped)).
		Msg("Transaction import finished")
	return result, nil
}

func (im *Importer) rowToEvent(ctx context.Context, h header, rec []string, platforms, exchanges map[string]int64) (*models.InvestmentEvent, string) {
	symbol := strings.ToUpper(h.get(rec, "symbol"))
	ticker, err := im.storage.Tickers().GetBySymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Sprintf("unknown ticker %q", symbol)
	}

	date, err := time.Parse(dateLayout, h.get(rec, "date"))
	if err != nil {
		return nil, fmt.Sprintf("invalid date %q", h.get(rec, "date"))
	}
	amount, err := parseAmount(h.get(rec, "amount"))
	if err != nil {
		return nil, err.Error()
	}
	quantity, err := parseAmount(h.get(rec, "quantity"))
	if err != nil {
		return nil, err.Error()
	}

	event := &models.InvestmentEvent{
		TickerID:      ticker.ID,
		Date:          date,
		Amount:        amount,
		Quantity:      quantity,
		Operation:     models.OperationType(strings.ToUpper(h.get(rec, "operation"))),
		CapitalOrigin: models.CapitalOrigin(strings.ToUpper(h.get(rec, "capital_origin"))),
	}

	if name := h.get(rec, "platform"); name != "" {
		id, err := im.resolvePlatform(ctx, platforms, name)
		if err != nil {
			return nil, err.Error()
		}
		event.PlatformID = id
	}
	if name := h.get(rec, "exchange"); name != "" {
		id, err := im.resolveExchange(ctx, exchanges, name)
		if err != nil {
			return nil, err.Error()
		}
		event.ExchangeID = id
	}

	if err := event.Validate(); err != nil {
		return nil, err.Error()
	}
	return event, ""
}

// ImportDividends reads dividends from CSV. Expected columns: symbol, date,
// amount, currency, market (optional).
func (im *Importer) ImportDividends(ctx context.Context, r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	first, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	h := readHeader(first)
	for _, col := range []string{"symbol", "date", "amount", "currency"} {
		if _, ok := h[col]; !ok {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}

	result := &Result{}
	line := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Skipped = append(result.Skipped, RowError{Line: line, Message: err.Error()})
			continue
		}
		result.Total++

		symbol := strings.ToUpper(h.get(rec, "symbol"))
		ticker, err := im.storage.Tickers().GetBySymbol(ctx, symbol)
		if err != nil {
			result.Skipped = append(result.Skipped, RowError{Line: line, Message: fmt.Sprintf("unknown ticker %q", symbol)})
			continue
		}
		date, err := time.Parse(dateLayout, h.get(rec, "date"))
		if err != nil {
			result.Skipped = append(result.Skipped, RowError{Line: line, Message: fmt.Sprintf("invalid date %q", h.get(rec, "date"))})
			continue
		}
		amount, err := parseAmount(h.get(rec, "amount"))
		if err != nil {
			result.Skipped = append(result.Skipped, RowError{Line: line, Message: err.Error()})
			continue
		}

		dividend := &models.Dividend{
			TickerID: ticker.ID,
			Date:     date,
			Amount:   amount,
			Currency: strings.ToUpper(h.get(rec, "currency")),
			Market:   h.get(rec, "market"),
		}
		if err := dividend.Validate(); err != nil {
			result.Skipped = append(result.Skipped, RowError{Line: line, Message: err.Error()})
			continue
		}
		if err := im.storage.Dividends().Create(ctx, dividend); err != nil {
			result.Skipped = append(result.Skipped, RowError{Line: line, Message: err.Error()})
			continue
		}
		result.Imported++
	}

	im.logger.Info().
		Int("total", result.Total).
		Int("imported", result.Imported).
		Int("skipped", len(result.Skipped)).
		Msg("Dividend import finished")
	return result, nil
}

// ImportPrices reads historical prices from CSV. Expected columns: symbol,
// date, price. Imported rows are marked with source "import".
func (im *Importer) ImportPrices(ctx context.Context, r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	first, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	h := readHeader(first)
	for _, col := range []string{"symbol", "date", "price"} {
		if _, ok := h[col]; !ok {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}

	result := &Result{}
	line := 1
	batch := make(map[int64][]models.HistoricalPrice)
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Skipped = append(result.Skipped, RowError{Line: line, Message: err.Error()})
			continue
		}
		result.Total++

		symbol := strings.ToUpper(h.get(rec, "symbol"))
		ticker, err := im.storage.Tickers().GetBySymbol(ctx, symbol)
		if err != nil {
			result.Skipped = append(result.Skipped, RowError{Line: line, Message: fmt.Sprintf("unknown ticker %q", symbol)})
			continue
		}
		date, err := time.Parse(dateLayout, h.get(rec, "date"))
		if err != nil {
			result.Skipped = append(result.Skipped, RowError{Line: line, Message: fmt.Sprintf("invalid date %q", h.get(rec, "date"))})
			continue
		}
		price, err := parseAmount(h.get(rec, "price"))
		if err != nil {
			result.Skipped = append(result.Skipped, RowError{Line: line, Message: err.Error()})
			continue
		}
		if price <= 0 {
			result.Skipped = append(result.Skipped, RowError{Line: line, Message: "price must be positive"})
			continue
		}

		batch[ticker.ID] = append(batch[ticker.ID], models.HistoricalPrice{
			TickerID: ticker.ID,
			Date:     date,
			Price:    price,
			Source:   "import",
		})
	}

	for _, prices := range batch {
		count, err := im.storage.Prices().UpsertBatch(ctx, prices)
		if err != nil {
			return nil, fmt.Errorf("failed to store prices: %w", err)
		}
		result.Imported += count
	}

	im.logger.Info().
		Int("total", result.Total).
		Int("imported", result.Imported).
		Int("skipped", len(result.Skipped)).
		Msg("Price import finished")
	return result, nil
}

func (im *Importer) platformIndex(ctx context.Context) (map[string]int64, error) {
	platforms, err := im.storage.Reference().ListPlatforms(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int64, len(platforms))
	for _, p := range platforms {
		index[strings.ToLower(p.Name)] = p.ID
	}
	return index, nil
}

func (im *Importer) exchangeIndex(ctx context.Context) (map[string]int64, error) {
	exchanges, err := im.storage.Reference().ListExchanges(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int64, len(exchanges))
	for _, e := range exchanges {
		index[strings.ToLower(e.Name)] = e.ID
	}
	return index, nil
}

func (im *Importer) resolvePlatform(ctx context.Context, index map[string]int64, name string) (int64, error) {
	if id, ok := index[strings.ToLower(name)]; ok {
		return id, nil
	}
	platform := &models.Platform{Name: name}
	if err := im.storage.Reference().CreatePlatform(ctx, platform); err != nil {
		return 0, fmt.Errorf("failed to create platform %q: %w", name, err)
	}
	index[strings.ToLower(name)] = platform.ID
	return platform.ID, nil
}

func (im *Importer) resolveExchange(ctx context.Context, index map[string]int64, name string) (int64, error) {
	if id, ok := index[strings.ToLower(name)]; ok {
		return id, nil
	}
	exchange := &models.Exchange{Name: name}
	if err := im.storage.Reference().CreateExchange(ctx, exchange); err != nil {
		return 0, fmt.Errorf("failed to create exchange %q: %w", name, err)
	}
	index[strings.ToLower(name)] = exchange.ID
	return exchange.ID, nil
}
