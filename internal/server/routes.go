package server

import (
	"net/http"
	"strings"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/refresh", s.handleRefresh)
	mux.HandleFunc("/api/settings", s.handleSettings)

	// Assets
	mux.HandleFunc("/api/assets/", s.routeAssets)
	mux.HandleFunc("/api/assets", s.handleAssets)

	// Transactions
	mux.HandleFunc("/api/transactions/", s.routeTransactions)
	mux.HandleFunc("/api/transactions", s.handleTransactions)

	// History and charts
	mux.HandleFunc("/api/history/snapshot", s.handleHistorySnapshot)
	mux.HandleFunc("/api/history", s.handleHistoryList)
	mux.HandleFunc("/api/charts/growth", s.handleGrowthChart)
	mux.HandleFunc("/api/charts/allocation", s.handleAllocationChart)

	// Live price stream
	mux.HandleFunc("/api/ws/prices", s.handlePriceWS)
}

// routeAssets dispatches /api/assets/{id} and /api/assets/{id}/transactions.
func (s *Server) routeAssets(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/assets/")
	if rest == "" {
		s.handleAssets(w, r)
		return
	}

	if strings.HasSuffix(rest, "/transactions") {
		s.handleAssetTransactions(w, r)
		return
	}
	if strings.Contains(rest, "/") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	s.handleAssetByID(w, r)
}

// routeTransactions dispatches /api/transactions/{id}.
func (s *Server) routeTransactions(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	if rest == "" {
		s.handleTransactions(w, r)
		return
	}
	if strings.Contains(rest, "/") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	s.handleTransactionByID(w, r)
}
