// Package split computes per-member paid/owed/balance figures from an
// expense set, plus a simplified who-owes-whom settlement list.
//
// Everything here is a pure function over its inputs: no store access,
// deterministic, order-independent. Derived figures are recomputed on
// every read; at household scale there is nothing worth caching.
package split

import "despesas/internal/core"

// MemberSummary carries one member's aggregate position. TotalPaid is
// exact cents; TotalOwed and Balance are fractional cents, because an
// equal share is an exact decimal division with no rounding applied at
// this layer. Display formatting belongs to callers.
type MemberSummary struct {
	MemberID  string
	Name      string
	TotalPaid core.Money
	TotalOwed float64 // fractional cents
	Balance   float64 // TotalPaid - TotalOwed, fractional cents
}

// DebtEdge is a single "From owes To" entry of the simplified
// settlement plan.
type DebtEdge struct {
	FromID   string
	FromName string
	ToID     string
	ToName   string
	Amount   float64 // fractional cents
}

// Summarize computes, for each member, the total they paid, the total
// they owe as their equal share of every expense splitting with them,
// and the resulting balance.
//
// Expenses with an empty split set never reach this function: the store
// boundary rejects them at creation time, so the per-person division is
// always well defined.
func Summarize(members []core.Member, expenses []core.Expense) []MemberSummary {
	paid := make(map[string]int64, len(members))
	owed := make(map[string]float64, len(members))

	for _, e := range expenses {
		paid[e.PaidBy] += e.Amount.Cents
		share := float64(e.Amount.Cents) / float64(len(e.SplitBetween))
		for _, id := range e.SplitBetween {
			owed[id] += share
		}
	}

	out := make([]MemberSummary, 0, len(members))
	for _, m := range members {
		s := MemberSummary{
			MemberID:  m.ID,
			Name:      m.Name,
			TotalPaid: core.Money{Cents: paid[m.ID]},
			TotalOwed: owed[m.ID],
		}
		s.Balance = float64(s.TotalPaid.Cents) - s.TotalOwed
		out = append(out, s)
	}
	return out
}

// ForProject runs Summarize over the subset of expenses belonging to
// the given project. The algorithm is the same one used globally.
func ForProject(members []core.Member, expenses []core.Expense, projectID string) []MemberSummary {
	scoped := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if e.ProjectID == projectID {
			scoped = append(scoped, e)
		}
	}
	return Summarize(members, scoped)
}

// settleEpsilon absorbs floating-point noise when matching debtors to
// creditors; anything under half a cent is considered settled.
const settleEpsilon = 0.5

// SettleDebts turns member summaries into a short list of who-owes-whom
// edges. Debtors (negative balance) are matched greedily against
// creditors (positive balance); because paid and owed sum to the same
// grand total, the two sides always cancel out.
func SettleDebts(summaries []MemberSummary) []DebtEdge {
	var debtors, creditors []MemberSummary
	for _, s := range summaries {
		switch {
		case s.Balance < -settleEpsilon:
			debtors = append(debtors, s)
		case s.Balance > settleEpsilon:
			creditors = append(creditors, s)
		}
	}

	remainingDebt := make(map[string]float64, len(debtors))
	for _, d := range debtors {
		remainingDebt[d.MemberID] = -d.Balance
	}
	remainingCredit := make(map[string]float64, len(creditors))
	for _, c := range creditors {
		remainingCredit[c.MemberID] = c.Balance
	}

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := debtors[i], creditors[j]

		amount := remainingDebt[debtor.MemberID]
		if remainingCredit[creditor.MemberID] < amount {
			amount = remainingCredit[creditor.MemberID]
		}

		if amount > settleEpsilon {
			edges = append(edges, DebtEdge{
				FromID:   debtor.MemberID,
				FromName: debtor.Name,
				ToID:     creditor.MemberID,
				ToName:   creditor.Name,
				Amount:   amount,
			})
		}

		remainingDebt[debtor.MemberID] -= amount
		remainingCredit[creditor.MemberID] -= amount

		if remainingDebt[debtor.MemberID] < settleEpsilon {
			i++
		}
		if remainingCredit[creditor.MemberID] < settleEpsilon {
			j++
		}
	}
	return edges
}
