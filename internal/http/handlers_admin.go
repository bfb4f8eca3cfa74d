package http

import (
	"io"
	"net/http"

	"sunduq/internal/core"
)

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.ledger.Orders(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if orders == nil {
		orders = []core.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) handleReplaceOrders(w http.ResponseWriter, r *http.Request) {
	var orders []core.Order
	if err := readJSON(w, r, &orders); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.ledger.ReplaceOrders(r.Context(), orders); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.ledger.Settings(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var settings core.Settings
	if err := readJSON(w, r, &settings); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.ledger.SaveSettings(r.Context(), settings); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	name, data, err := s.ledger.Backup(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read request body: "+err.Error())
		return
	}

	if err := s.ledger.Restore(r.Context(), data); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.purgeDerived()
	writeJSON(w, http.StatusOK, map[string]string{"status": "restored"})
}
