package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadRequest, "something went wrong")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
	var resp ErrorResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Error != "something went wrong" {
		t.Errorf("unexpected error message %q", resp.Error)
	}
}

func TestRequireMethod(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/tickers", nil)
	rec := httptest.NewRecorder()
	if RequireMethod(rec, req, http.MethodGet) {
		t.Error("POST should not satisfy a GET requirement")
	}
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != http.MethodGet {
		t.Errorf("expected Allow: GET, got %q", allow)
	}

	rec = httptest.NewRecorder()
	if !RequireMethod(rec, req, http.MethodGet, http.MethodPost) {
		t.Error("POST should satisfy a GET/POST requirement")
	}
}

func TestDecodeJSONRejectsOversizedBody(t *testing.T) {
	big := strings.Repeat("x", 2<<20)
	req := httptest.NewRequest(http.MethodPost, "/api/tickers", strings.NewReader(`{"name":"`+big+`"}`))
	rec := httptest.NewRecorder()

	var v map[string]interface{}
	if DecodeJSON(rec, req, &v) {
		t.Error("expected oversized body to be rejected")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestPathParam(t *testing.T) {
	tests := []struct {
		path   string
		prefix string
		suffix string
		want   string
	}{
		{"/api/prices/AAPL", "/api/prices/", "", "AAPL"},
		{"/api/prices/AAPL/history", "/api/prices/", "/history", "AAPL"},
		{"/api/prices/AAPL/history", "/api/prices/", "", "AAPL"},
		{"/api/other/AAPL", "/api/prices/", "", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if got := PathParam(req, tt.prefix, tt.suffix); got != tt.want {
			t.Errorf("PathParam(%q, %q, %q) = %q, want %q", tt.path, tt.prefix, tt.suffix, got, tt.want)
		}
	}
}
