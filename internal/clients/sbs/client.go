// Package sbs provides a client for the SBS (Superintendencia de Banca y
// Seguros del Perú) exchange-rate feed, the source of the official daily
// USD/PEN rate.
package sbs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/jpariona/cartera/internal/common"
	"github.com/jpariona/cartera/internal/interfaces"
	"github.com/jpariona/cartera/internal/models"
)

const (
	DefaultBaseURL   = "https://www.sbs.gob.pe"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 2
)

// Client fetches the official USD/PEN series from the SBS feed.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new SBS client. The feed is public, no key required.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name identifies this provider in refresh logs.
func (c *Client) Name() string {
	return "sbs"
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("SBS API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// rateRecord is one row of the SBS feed. Compra is the buy rate, venta the
// sell rate; the stored series uses the sell rate, matching bank statements.
type rateRecord struct {
	Fecha  string  `json:"fecha"` // DD/MM/YYYY
	Moneda string  `json:"moneda"`
	Compra float64 `json:"compra,string"`
	Venta  float64 `json:"venta,string"`
}

// Rates retrieves the USD/PEN rate for each business day in [from, to].
func (c *Client) Rates(ctx context.Context, from, to time.Time) ([]models.FXRate, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("fechaInicio", from.Format("02/01/2006"))
	params.Set("fechaFin", to.Format("02/01/2006"))
	params.Set("moneda", "02") // 02 = US dollar

	path := "/app/pp/SISTIP_PORTAL/Paginas/Publicacion/TipoCambioHistorico.aspx/ObtenerTipoCambio"
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("from", from.Format("2006-01-02")).
		Str("to", to.Format("2006-01-02")).
		Msg("SBS exchange rate request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	var records []rateRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	rates := make([]models.FXRate, 0, len(records))
	for _, r := range records {
		date, err := time.Parse("02/01/2006", r.Fecha)
		if err != nil || r.Venta <= 0 {
			continue
		}
		rates = append(rates, models.FXRate{
			Date:   date,
			USDPEN: r.Venta,
			Source: "sbs",
		})
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i].Date.Before(rates[j].Date) })

	return rates, nil
}

// Ensure Client implements FXProvider
var _ interfaces.FXProvider = (*Client)(nil)
