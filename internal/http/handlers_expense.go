package http

import (
	"net/http"

	"sunduq/internal/core"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.ledger.Expenses(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var expense core.Expense
	if err := readJSON(w, r, &expense); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.ledger.CreateExpense(r.Context(), expense)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.purgeDerived()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var expense core.Expense
	if err := readJSON(w, r, &expense); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// The path is authoritative for the record identity.
	expense.ID = r.PathValue("id")

	updated, err := s.ledger.UpdateExpense(r.Context(), expense)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.purgeDerived()
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.purgeDerived()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNextDocumentNumber(w http.ResponseWriter, r *http.Request) {
	t := core.ExpenseType(r.URL.Query().Get("type"))
	if !t.Valid() {
		writeError(w, http.StatusBadRequest, "type must be PURCHASE or VOUCHER")
		return
	}

	number, err := s.ledger.NextDocumentNumber(r.Context(), t)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"documentNumber": number})
}
