package http

import (
	"net/http"
	"strings"

	"despesas/internal/core"
)

// handleListExpenses lists expenses, optionally filtered by month
// (?month=YYYY-MM) and project (?project=).
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.store.ListExpenses(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	month := core.MonthKey(strings.TrimSpace(r.URL.Query().Get("month")))
	if month != "" {
		if err := month.Validate(); err != nil {
			writeError(w, r, err)
			return
		}
	}
	project := strings.TrimSpace(r.URL.Query().Get("project"))

	views := make([]expenseView, 0, len(expenses))
	for _, e := range expenses {
		if month != "" && !month.Contains(e.Date) {
			continue
		}
		if project != "" && e.ProjectID != project {
			continue
		}
		views = append(views, newExpenseView(e))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := req.toCore()
	if err != nil {
		writeError(w, r, err)
		return
	}

	stored, err := s.expenses.CreateExpense(r.Context(), e)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newExpenseView(stored))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.store.GetExpense(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newExpenseView(e))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.expenses.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
