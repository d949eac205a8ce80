package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"despesas/internal/core"
)

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	templates, err := s.store.ListRecurringExpenses(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]recurringView, 0, len(templates))
	for _, re := range templates {
		views = append(views, newRecurringView(re))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var req recurringRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	re, err := req.toCore()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := re.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.store.GetMember(r.Context(), re.ResponsibleID); err != nil {
		writeError(w, r, err)
		return
	}

	stored, err := s.store.AddRecurringExpense(r.Context(), re)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Recurring expense created",
		"recurring_id", stored.ID, "name", stored.Name, "due_day", stored.DueDay)
	writeJSON(w, http.StatusCreated, newRecurringView(stored))
}

func (s *Server) handleGetRecurring(w http.ResponseWriter, r *http.Request) {
	re, err := s.store.GetRecurringExpense(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRecurringView(re))
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	existing, err := s.store.GetRecurringExpense(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req recurringRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	re, err := req.toCore()
	if err != nil {
		writeError(w, r, err)
		return
	}
	re.ID = existing.ID
	re.CreatedAt = existing.CreatedAt
	if err := re.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.store.UpdateRecurringExpense(r.Context(), re); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRecurringView(re))
}

// handleDeleteRecurring removes the template, its payment records and
// the link from expenses it synthesized.
func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.RemoveRecurringExpense(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	slog.InfoContext(r.Context(), "Recurring expense removed", "recurring_id", id)
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	payment, err := s.reconciler.MarkPaid(r.Context(),
		r.PathValue("id"), core.MonthKey(r.PathValue("month")), time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPaymentView(payment))
}

func (s *Server) handleMarkUnpaid(w http.ResponseWriter, r *http.Request) {
	payment, err := s.reconciler.MarkUnpaid(r.Context(),
		r.PathValue("id"), core.MonthKey(r.PathValue("month")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPaymentView(payment))
}

// handleListPayments lists payment records, filtered by month when
// ?month=YYYY-MM is given.
func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	month := core.MonthKey(strings.TrimSpace(r.URL.Query().Get("month")))
	if month != "" {
		if err := month.Validate(); err != nil {
			writeError(w, r, err)
			return
		}
	}

	payments, err := s.store.ListRecurringPayments(r.Context(), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]paymentView, 0, len(payments))
	for _, p := range payments {
		views = append(views, newPaymentView(p))
	}
	writeJSON(w, http.StatusOK, views)
}
