package server

import (
	"net/http"

	"github.com/khtseng/folio/internal/interfaces"
	"github.com/khtseng/folio/internal/models"
)

// handleTransactions handles GET/POST /api/transactions.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		filter := interfaces.TransactionFilter{
			AssetID: r.URL.Query().Get("asset_id"),
			Type:    models.TransactionType(r.URL.Query().Get("type")),
		}
		if filter.Type != "" && !filter.Type.Valid() {
			WriteError(w, http.StatusBadRequest, "Unknown transaction type: "+string(filter.Type))
			return
		}

		txs, err := s.app.Assets.Transactions(r.Context(), filter)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, txs)

	case http.MethodPost:
		var tx models.Transaction
		if !DecodeJSON(w, r, &tx) {
			return
		}
		posted, err := s.app.Assets.PostTransaction(r.Context(), &tx)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, posted)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleTransactionByID handles DELETE /api/transactions/{id}.
func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	id := PathParam(r, "/api/transactions/", "")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Transaction ID is required")
		return
	}

	if err := s.app.Assets.DeleteTransaction(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}
