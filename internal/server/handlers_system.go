package server

import (
	"net/http"
	"time"

	"github.com/jpariona/cartera/internal/common"
)

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"uptime":  time.Since(s.app.StartupTime).Round(time.Second).String(),
		"version": common.GetVersion(),
	})
}

// handleVersion handles GET /api/version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// handleConfig handles GET /api/config. API keys are never echoed back;
// only whether each provider is configured.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	cfg := s.app.Config
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment":        cfg.Environment,
		"reporting_currency": cfg.ReportingCurrency,
		"storage_path":       cfg.Storage.Path,
		"refresh_delay":      cfg.Clients.GetRefreshDelay().String(),
		"providers": map[string]bool{
			"polygon":      cfg.Clients.Polygon.APIKey != "",
			"alphavantage": cfg.Clients.AlphaVantage.APIKey != "",
			"yahoo":        true,
			"sbs":          true,
		},
	})
}
