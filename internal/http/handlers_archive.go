package http

import (
	"log/slog"
	"net/http"

	"sunduq/internal/core"
)

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	q := queryFromRequest(r)
	grouped := r.URL.Query().Get("grouped") == "true"

	transactions, ok := s.transactionsCache.Get(queryCacheKey(q))
	if ok {
		slog.DebugContext(r.Context(), "Transactions cache hit")
	} else {
		var err error
		transactions, err = s.ledger.Transactions(r.Context(), q)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		s.transactionsCache.Set(queryCacheKey(q), transactions)
	}

	if grouped {
		groups := core.GroupByDate(transactions)
		if groups == nil {
			groups = []core.DateGroup{}
		}
		writeJSON(w, http.StatusOK, groups)
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if summary, ok := s.summaryCache.Get("summary"); ok {
		writeJSON(w, http.StatusOK, summary)
		return
	}

	summary, err := s.ledger.Summary(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.summaryCache.Set("summary", summary)
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	q := queryFromRequest(r)

	if report, ok := s.reportCache.Get(queryCacheKey(q)); ok {
		writeJSON(w, http.StatusOK, report)
		return
	}

	report, err := s.ledger.Report(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.reportCache.Set(queryCacheKey(q), report)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	name, data, err := s.ledger.ExportCSV(r.Context(), queryFromRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
