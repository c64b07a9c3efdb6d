package server

import (
	"errors"
	"net/http"

	"github.com/khtseng/folio/internal/interfaces"
	"github.com/khtseng/folio/internal/models"
)

// writeServiceError maps domain errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrOversell):
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, models.ErrValidation):
		WriteError(w, http.StatusBadRequest, err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

// handleAssets handles GET/POST /api/assets.
func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		assets, err := s.app.Assets.List(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, assets)

	case http.MethodPost:
		var asset models.Asset
		if !DecodeJSON(w, r, &asset) {
			return
		}
		created, err := s.app.Assets.Create(r.Context(), &asset)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, created)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleAssetByID handles GET/PUT/DELETE /api/assets/{id}.
func (s *Server) handleAssetByID(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r, "/api/assets/", "")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Asset ID is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		asset, err := s.app.Assets.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, asset)

	case http.MethodPut, http.MethodPatch:
		var update interfaces.AssetUpdate
		if !DecodeJSON(w, r, &update) {
			return
		}
		asset, err := s.app.Assets.Update(r.Context(), id, update)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, asset)

	case http.MethodDelete:
		if err := s.app.Assets.Delete(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete)
	}
}

// handleAssetTransactions handles GET /api/assets/{id}/transactions.
func (s *Server) handleAssetTransactions(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	id := PathParam(r, "/api/assets/", "/transactions")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Asset ID is required")
		return
	}

	// 404 for unknown assets rather than an empty list.
	if _, err := s.app.Assets.Get(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	txs, err := s.app.Assets.Transactions(r.Context(), interfaces.TransactionFilter{AssetID: id})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, txs)
}
