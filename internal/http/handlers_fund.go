package http

import (
	"net/http"

	"sunduq/internal/core"
)

func (s *Server) handleListFunds(w http.ResponseWriter, r *http.Request) {
	funds, err := s.ledger.Funds(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if funds == nil {
		funds = []core.FundTransaction{}
	}
	writeJSON(w, http.StatusOK, funds)
}

func (s *Server) handleCreateFund(w http.ResponseWriter, r *http.Request) {
	var fund core.FundTransaction
	if err := readJSON(w, r, &fund); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.ledger.AddFund(r.Context(), fund)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.purgeDerived()
	writeJSON(w, http.StatusCreated, created)
}
