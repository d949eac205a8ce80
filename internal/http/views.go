package http

import (
	"time"

	"despesas/internal/core"
	"despesas/internal/health"
	"despesas/internal/split"
)

// View types shape the JSON the API returns. Monetary fields carry both
// raw cents and the formatted string clients display.

type memberView struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email,omitempty"`
	WalletBalanceCents int64  `json:"wallet_balance_cents"`
	WalletBalance      string `json:"wallet_balance"`
	MonthlyIncomeCents int64  `json:"monthly_income_cents"`
}

func newMemberView(m core.Member) memberView {
	return memberView{
		ID:                 m.ID,
		Name:               m.Name,
		Email:              m.Email,
		WalletBalanceCents: m.WalletBalance.Cents,
		WalletBalance:      m.WalletBalance.String(),
		MonthlyIncomeCents: m.MonthlyIncome.Cents,
	}
}

type projectView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at,omitempty"`
}

func newProjectView(p core.Project) projectView {
	return projectView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		StartDate:   formatDate(p.StartDate),
		EndDate:     formatDate(p.EndDate),
		Color:       p.Color,
		Icon:        p.Icon,
		IsActive:    p.IsActive,
		CreatedAt:   formatTime(p.CreatedAt),
	}
}

type expenseView struct {
	ID            string   `json:"id"`
	Description   string   `json:"description"`
	AmountCents   int64    `json:"amount_cents"`
	Amount        string   `json:"amount"`
	Date          string   `json:"date"`
	PaidBy        string   `json:"paid_by"`
	Category      string   `json:"category"`
	SplitBetween  []string `json:"split_between"`
	ProjectID     string   `json:"project_id,omitempty"`
	Notes         string   `json:"notes,omitempty"`
	FromRecurring string   `json:"from_recurring,omitempty"`
}

func newExpenseView(e core.Expense) expenseView {
	return expenseView{
		ID:            e.ID,
		Description:   e.Description,
		AmountCents:   e.Amount.Cents,
		Amount:        e.Amount.String(),
		Date:          formatDate(e.Date),
		PaidBy:        e.PaidBy,
		Category:      e.Category,
		SplitBetween:  e.SplitBetween,
		ProjectID:     e.ProjectID,
		Notes:         e.Notes,
		FromRecurring: e.FromRecurring,
	}
}

type recurringView struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	AmountCents   int64    `json:"amount_cents"`
	Amount        string   `json:"amount"`
	DueDay        int      `json:"due_day"`
	ResponsibleID string   `json:"responsible_id"`
	Category      string   `json:"category"`
	SplitBetween  []string `json:"split_between"`
	ProjectID     string   `json:"project_id,omitempty"`
	IsActive      bool     `json:"is_active"`
	CreatedAt     string   `json:"created_at,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

func newRecurringView(re core.RecurringExpense) recurringView {
	return recurringView{
		ID:            re.ID,
		Name:          re.Name,
		AmountCents:   re.Amount.Cents,
		Amount:        re.Amount.String(),
		DueDay:        re.DueDay,
		ResponsibleID: re.ResponsibleID,
		Category:      re.Category,
		SplitBetween:  re.SplitBetween,
		ProjectID:     re.ProjectID,
		IsActive:      re.IsActive,
		CreatedAt:     formatTime(re.CreatedAt),
		Notes:         re.Notes,
	}
}

type paymentView struct {
	ID                 string `json:"id"`
	RecurringExpenseID string `json:"recurring_expense_id"`
	Month              string `json:"month"`
	IsPaid             bool   `json:"is_paid"`
	PaidDate           string `json:"paid_date,omitempty"`
	ExpenseID          string `json:"expense_id,omitempty"`
}

func newPaymentView(p core.RecurringPayment) paymentView {
	return paymentView{
		ID:                 p.ID,
		RecurringExpenseID: p.RecurringExpenseID,
		Month:              string(p.Month),
		IsPaid:             p.IsPaid,
		PaidDate:           formatTime(p.PaidDate),
		ExpenseID:          p.ExpenseID,
	}
}

type walletTransactionView struct {
	ID               string `json:"id"`
	MemberID         string `json:"member_id"`
	Type             string `json:"type"`
	AmountCents      int64  `json:"amount_cents"`
	Amount           string `json:"amount"`
	Description      string `json:"description"`
	Date             string `json:"date"`
	Category         string `json:"category,omitempty"`
	RelatedExpenseID string `json:"related_expense_id,omitempty"`
}

func newWalletTransactionView(t core.WalletTransaction) walletTransactionView {
	return walletTransactionView{
		ID:               t.ID,
		MemberID:         t.MemberID,
		Type:             string(t.Type),
		AmountCents:      t.Amount.Cents,
		Amount:           t.Amount.String(),
		Description:      t.Description,
		Date:             formatDate(t.Date),
		Category:         t.Category,
		RelatedExpenseID: t.RelatedExpenseID,
	}
}

type balanceView struct {
	MemberID       string  `json:"member_id"`
	Name           string  `json:"name"`
	TotalPaidCents int64   `json:"total_paid_cents"`
	TotalOwedCents float64 `json:"total_owed_cents"`
	BalanceCents   float64 `json:"balance_cents"`
}

func newBalanceView(s split.MemberSummary) balanceView {
	return balanceView{
		MemberID:       s.MemberID,
		Name:           s.Name,
		TotalPaidCents: s.TotalPaid.Cents,
		TotalOwedCents: s.TotalOwed,
		BalanceCents:   s.Balance,
	}
}

type debtView struct {
	FromID      string  `json:"from_id"`
	FromName    string  `json:"from_name"`
	ToID        string  `json:"to_id"`
	ToName      string  `json:"to_name"`
	AmountCents float64 `json:"amount_cents"`
}

func newDebtView(e split.DebtEdge) debtView {
	return debtView{
		FromID:      e.FromID,
		FromName:    e.FromName,
		ToID:        e.ToID,
		ToName:      e.ToName,
		AmountCents: e.Amount,
	}
}

type healthView struct {
	MemberID              string `json:"member_id"`
	Name                  string `json:"name"`
	Month                 string `json:"month"`
	MonthlyIncomeCents    int64  `json:"monthly_income_cents"`
	MonthlyExpensesCents  int64  `json:"monthly_expenses_cents"`
	RecurringTotalCents   int64  `json:"recurring_total_cents"`
	TotalExpensesCents    int64  `json:"total_expenses_cents"`
	AvailableBalanceCents int64  `json:"available_balance_cents"`
	IsBalanceHealthy      bool   `json:"is_balance_healthy"`
}

func newHealthView(s health.MonthlySummary) healthView {
	return healthView{
		MemberID:              s.MemberID,
		Name:                  s.Name,
		Month:                 string(s.Month),
		MonthlyIncomeCents:    s.MonthlyIncome.Cents,
		MonthlyExpensesCents:  s.MonthlyExpenses.Cents,
		RecurringTotalCents:   s.RecurringTotal.Cents,
		TotalExpensesCents:    s.TotalExpenses.Cents,
		AvailableBalanceCents: s.AvailableBalance.Cents,
		IsBalanceHealthy:      s.IsBalanceHealthy,
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
