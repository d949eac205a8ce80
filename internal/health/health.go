// Package health classifies each member's monthly financial position:
// what they spent, what their recurring obligations add up to, and
// whether their wallet covers it all.
package health

import (
	"despesas/internal/core"
)

// MonthlySummary is one member's financial health for a month. All
// figures are exact cents; nothing here divides.
type MonthlySummary struct {
	MemberID         string
	Name             string
	Month            core.MonthKey
	MonthlyIncome    core.Money
	MonthlyExpenses  core.Money // ad-hoc expenses paid by the member in the month
	RecurringTotal   core.Money // active recurring obligations the member is responsible for
	TotalExpenses    core.Money // MonthlyExpenses + RecurringTotal
	AvailableBalance core.Money // wallet balance - TotalExpenses
	IsBalanceHealthy bool       // AvailableBalance >= 0
}

// SummarizeMonth aggregates per-member monthly totals. Pure and
// deterministic; recomputed on demand from the current collections.
func SummarizeMonth(members []core.Member, expenses []core.Expense, recurring []core.RecurringExpense, month core.MonthKey) []MonthlySummary {
	spent := make(map[string]int64, len(members))
	for _, e := range expenses {
		if month.Contains(e.Date) {
			spent[e.PaidBy] += e.Amount.Cents
		}
	}

	obligations := make(map[string]int64, len(members))
	for _, re := range recurring {
		if re.IsActive {
			obligations[re.ResponsibleID] += re.Amount.Cents
		}
	}

	out := make([]MonthlySummary, 0, len(members))
	for _, m := range members {
		s := MonthlySummary{
			MemberID:        m.ID,
			Name:            m.Name,
			Month:           month,
			MonthlyIncome:   m.MonthlyIncome,
			MonthlyExpenses: core.Money{Cents: spent[m.ID]},
			RecurringTotal:  core.Money{Cents: obligations[m.ID]},
		}
		s.TotalExpenses = core.Money{Cents: s.MonthlyExpenses.Cents + s.RecurringTotal.Cents}
		s.AvailableBalance = core.Money{Cents: m.WalletBalance.Cents - s.TotalExpenses.Cents}
		s.IsBalanceHealthy = s.AvailableBalance.Cents >= 0
		out = append(out, s)
	}
	return out
}
