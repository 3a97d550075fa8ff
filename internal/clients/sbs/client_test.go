package sbs

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

func TestRates(t *testing.T) {
	mockResp := `[
		{"fecha": "03/01/2024", "moneda": "02", "compra": "3.698", "venta": "3.706"},
		{"fecha": "02/01/2024", "moneda": "02", "compra": "3.701", "venta": "3.709"}
	]`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("moneda") != "02" {
			t.Errorf("moneda = %q, want 02", r.URL.Query().Get("moneda"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(mockResp))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	rates, err := client.Rates(context.Background(), day("2024-01-01"), day("2024-01-05"))
	if err != nil {
		t.Fatalf("Rates failed: %v", err)
	}

	if len(rates) != 2 {
		t.Fatalf("expected 2 rates, got %d", len(rates))
	}
	if !rates[0].Date.Before(rates[1].Date) {
		t.Error("rates should be sorted ascending by date")
	}
	if rates[0].USDPEN != 3.709 {
		t.Errorf("first rate = %.3f, want sell rate 3.709", rates[0].USDPEN)
	}
	if rates[0].Source != "sbs" {
		t.Errorf("source = %q, want sbs", rates[0].Source)
	}
}

func TestRatesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.Rates(context.Background(), day("2024-01-01"), day("2024-01-05"))
	if err == nil {
		t.Fatal("expected error on 503 response")
	}
}
