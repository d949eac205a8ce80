package http

import (
	"net/http"
	"strings"
	"time"

	"despesas/internal/core"
	"despesas/internal/health"
	"despesas/internal/split"
)

// handleBalances returns the per-member split summary, scoped to a
// project when ?project= is given.
func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	members, expenses, err := s.loadSplitInput(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var summaries []split.MemberSummary
	if project := strings.TrimSpace(r.URL.Query().Get("project")); project != "" {
		if _, err := s.store.GetProject(r.Context(), project); err != nil {
			writeError(w, r, err)
			return
		}
		summaries = split.ForProject(members, expenses, project)
	} else {
		summaries = split.Summarize(members, expenses)
	}

	views := make([]balanceView, 0, len(summaries))
	for _, sum := range summaries {
		views = append(views, newBalanceView(sum))
	}
	writeJSON(w, http.StatusOK, views)
}

// handleDebts returns the simplified settlement plan.
func (s *Server) handleDebts(w http.ResponseWriter, r *http.Request) {
	members, expenses, err := s.loadSplitInput(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	edges := split.SettleDebts(split.Summarize(members, expenses))
	views := make([]debtView, 0, len(edges))
	for _, e := range edges {
		views = append(views, newDebtView(e))
	}
	writeJSON(w, http.StatusOK, views)
}

// handleHealth returns per-member monthly financial health. The month
// defaults to the current one.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	month := core.MonthKey(strings.TrimSpace(r.URL.Query().Get("month")))
	if month == "" {
		month = core.MonthOf(time.Now())
	}
	if err := month.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	members, err := s.store.ListMembers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	expenses, err := s.store.ListExpenses(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	recurring, err := s.store.ListRecurringExpenses(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	summaries := health.SummarizeMonth(members, expenses, recurring, month)
	views := make([]healthView, 0, len(summaries))
	for _, sum := range summaries {
		views = append(views, newHealthView(sum))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) loadSplitInput(r *http.Request) ([]core.Member, []core.Expense, error) {
	members, err := s.store.ListMembers(r.Context())
	if err != nil {
		return nil, nil, err
	}
	expenses, err := s.store.ListExpenses(r.Context())
	if err != nil {
		return nil, nil, err
	}
	return members, expenses, nil
}
