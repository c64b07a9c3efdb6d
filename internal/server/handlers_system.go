package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/khtseng/folio/internal/common"
	"github.com/khtseng/folio/internal/models"
	"github.com/khtseng/folio/internal/services/pricesync"
)

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": common.GetVersion(),
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// handleVersion handles GET /api/version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// handleConfig handles GET /api/config. Returns a sanitized view; the sheet
// script URL carries a deployment token and is never echoed back.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	cfg := s.app.Config
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment":      cfg.Environment,
		"storage_backend":  cfg.Storage.Backend,
		"sheet_configured": cfg.Clients.Sheet.ScriptURL != "",
		"refresh_enabled":  cfg.Refresh.Enabled,
		"refresh_interval": cfg.Refresh.GetInterval().String(),
		"ws_clients":       s.app.Hub.ClientCount(),
	})
}

// handleRefresh handles POST /api/refresh. Runs one price cycle and blocks
// until it completes.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := s.app.Updater.RefreshNow(r.Context()); err != nil {
		if errors.Is(err, pricesync.ErrRefreshInProgress) {
			WriteError(w, http.StatusConflict, err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

// handleSettings handles GET/PUT /api/settings.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := s.app.Storage.Settings().Get(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, settings)

	case http.MethodPut:
		var settings models.Settings
		if !DecodeJSON(w, r, &settings) {
			return
		}
		if err := s.app.Storage.Settings().Save(r.Context(), &settings); err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, settings)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut)
	}
}

// handlePriceWS handles GET /api/ws/prices.
func (s *Server) handlePriceWS(w http.ResponseWriter, r *http.Request) {
	s.app.Hub.ServeWS(w, r)
}
