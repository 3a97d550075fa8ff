package server

import (
	"net/http"

	"github.com/jpariona/cartera/internal/models"
)

// --- Reference entity handlers (exchanges, platforms, investment types) ---

type referenceRequest struct {
	Name     string `json:"name"`
	Country  string `json:"country"`
	Currency string `json:"currency"`
}

// handleExchangesRoot handles GET (list) and POST (create) on /api/exchanges.
func (s *Server) handleExchangesRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		exchanges, err := s.app.Storage.Reference().ListExchanges(r.Context())
		if err != nil {
			s.writeStorageError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, exchanges)

	case http.MethodPost:
		var req referenceRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		exchange := &models.Exchange{Name: req.Name, Country: req.Country, Currency: req.Currency}
		if err := s.app.Storage.Reference().CreateExchange(r.Context(), exchange); err != nil {
			s.writeReferenceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusCreated, exchange)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleExchangeByID handles PUT/DELETE on /api/exchanges/{id}.
func (s *Server) handleExchangeByID(w http.ResponseWriter, r *http.Request, rawID string) {
	id, ok := parseID(rawID)
	if !ok {
		WriteError(w, http.StatusBadRequest, "invalid exchange id")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req referenceRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		exchange := &models.Exchange{ID: id, Name: req.Name, Country: req.Country, Currency: req.Currency}
		if err := s.app.Storage.Reference().UpdateExchange(r.Context(), exchange); err != nil {
			s.writeReferenceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, exchange)

	case http.MethodDelete:
		if err := s.app.Storage.Reference().DeleteExchange(r.Context(), id); err != nil {
			s.writeStorageError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		RequireMethod(w, r, http.MethodPut, http.MethodDelete)
	}
}

// handlePlatformsRoot handles GET (list) and POST (create) on /api/platforms.
func (s *Server) handlePlatformsRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		platforms, err := s.app.Storage.Reference().ListPlatforms(r.Context())
		if err != nil {
			s.writeStorageError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, platforms)

	case http.MethodPost:
		var req referenceRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		platform := &models.Platform{Name: req.Name, Country: req.Country, Currency: req.Currency}
		if err := s.app.Storage.Reference().CreatePlatform(r.Context(), platform); err != nil {
			s.writeReferenceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusCreated, platform)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handlePlatformByID handles PUT/DELETE on /api/platforms/{id}.
func (s *Server) handlePlatformByID(w http.ResponseWriter, r *http.Request, rawID string) {
	id, ok := parseID(rawID)
	if !ok {
		WriteError(w, http.StatusBadRequest, "invalid platform id")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req referenceRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		platform := &models.Platform{ID: id, Name: req.Name, Country: req.Country, Currency: req.Currency}
		if err := s.app.Storage.Reference().UpdatePlatform(r.Context(), platform); err != nil {
			s.writeReferenceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, platform)

	case http.MethodDelete:
		if err := s.app.Storage.Reference().DeletePlatform(r.Context(), id); err != nil {
			s.writeStorageError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})

	default:
		RequireMethod(w, r, http.MethodPut, http.MethodDelete)
	}
}

// handleTypesRoot handles GET (list) and POST (create) on /api/types.
func (s *Server) handleTypesRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		types, err := s.app.Storage.Reference().ListTypes(r.Context())
		if err != nil {
			s.writeStorageError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, types)

	case http.MethodPost:
		var req referenceRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		investmentType := &models.InvestmentType{Name: req.Name}
		if err := s.app.Storage.Reference().CreateType(r.Context(), investmentType); err != nil {
			s.writeReferenceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusCreated, investmentType)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleTypeByID handles DELETE on /api/types/{id}.
func (s *Server) handleTypeByID(w http.ResponseWriter, r *http.Request, rawID string) {
	id, ok := parseID(rawID)
	if !ok {
		WriteError(w, http.StatusBadRequest, "invalid type id")
		return
	}
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	if err := s.app.Storage.Reference().DeleteType(r.Context(), id); err != nil {
		s.writeStorageError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// writeReferenceError treats validation failures from the reference store
// (empty names) as client errors rather than server errors.
func (s *Server) writeReferenceError(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil && err.Error() == "name is required" {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeStorageError(w, r, err)
}
