package polygon

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
		"status": "OK",
		"ticker": "AAPL",
		"resultsCount": 2,
		"results": [
			{"c": 185.92, "t": 1704171600000},
			{"c": 184.25, "t": 1704258000000}
		]
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apiKey") != "test-key" {
			t.Errorf("missing apiKey query parameter")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(mockResp))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	points, err := client.DailyPrices(context.Background(), "AAPL", day("2024-01-01"), day("2024-01-05"))
	if err != nil {
		t.Fatalf("DailyPrices failed: %v", err)
	}

	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].Price != 185.92 {
		t.Errorf("first close = %.2f, want 185.92", points[0].Price)
	}
}

func TestDailyPricesErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "rate limited"}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.DailyPrices(context.Background(), "AAPL", day("2024-01-01"), day("2024-01-05"))
	if err == nil {
		t.Fatal("expected error on 429 response")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", apiErr.StatusCode)
	}
}

func TestDailyPricesNoAPIKey(t *testing.T) {
	client := NewClient("")
	_, err := client.DailyPrices(context.Background(), "AAPL", day("2024-01-01"), day("2024-01-05"))
	if err == nil {
		t.Fatal("expected error when API key is missing")
	}
}

func TestDailyPricesSkipsZeroCloses(t *testing.T) {
	mockResp := `{
		"status": "OK",
		"results": [
			{"c": 0, "t": 1704171600000},
			{"c": 184.25, "t": 1704258000000}
		]
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(mockResp))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	points, err := client.DailyPrices(context.Background(), "AAPL", day("2024-01-01"), day("2024-01-05"))
	if err != nil {
		t.Fatalf("DailyPrices failed: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("expected zero closes to be skipped, got %d points", len(points))
	}
}
