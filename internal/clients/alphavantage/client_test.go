package alphavantage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestDailyPrices(t *testing.T) {
	mockResp := `{
		"Time Series (Daily)": {
			"2024-01-03": {"1. open": "184.22", "4. close": "184.25"},
			"2024-01-02": {"1. open": "187.15", "4. close": "185.64"},
			"2023-12-29": {"1. open": "193.90", "4. close": "192.53"}
		}
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("function") != "TIME_SERIES_DAILY" {
			t.Errorf("unexpected function %q", r.URL.Query().Get("function"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(mockResp))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	points, err := client.DailyPrices(context.Background(), "AAPL", day("2024-01-01"), day("2024-01-31"))
	if err != nil {
		t.Fatalf("DailyPrices failed: %v", err)
	}

	// 2023-12-29 falls outside the requested range.
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if !points[0].Date.Before(points[1].Date) {
		t.Error("points should be sorted ascending by date")
	}
	if points[0].Price != 185.64 {
		t.Errorf("first close = %.2f, want 185.64", points[0].Price)
	}
}

func TestDailyPricesRateLimitNote(t *testing.T) {
	mockResp := `{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(mockResp))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.DailyPrices(context.Background(), "AAPL", day("2024-01-01"), day("2024-01-31"))
	if err == nil {
		t.Fatal("expected error on rate-limit note")
	}
}

func TestDailyPricesUnknownSymbol(t *testing.T) {
	mockResp := `{"Error Message": "Invalid API call."}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(mockResp))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.DailyPrices(context.Background(), "NOPE", day("2024-01-01"), day("2024-01-31"))
	if err == nil {
		t.Fatal("expected error on API error message")
	}
}
