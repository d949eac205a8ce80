package services

import (
	"context"
	"testing"
	"time"

	"despesas/internal/core"
	"despesas/internal/events"
	"despesas/internal/store/memory"
)

func seedRent(t *testing.T, st *memory.Store) (core.Member, core.RecurringExpense) {
	t.Helper()
	ctx := context.Background()

	ana, err := st.AddMember(ctx, core.Member{Name: "Ana", WalletBalance: core.Money{Cents: 200000}})
	if err != nil {
		t.Fatalf("add member: %v", err)
	}
	bruno, err := st.AddMember(ctx, core.Member{Name: "Bruno"})
	if err != nil {
		t.Fatalf("add member: %v", err)
	}

	rent, err := st.AddRecurringExpense(ctx, core.RecurringExpense{
		Name:          "Rent",
		Amount:        core.Money{Cents: 120000},
		DueDay:        10,
		ResponsibleID: ana.ID,
		Category:      "casa",
		SplitBetween:  []string{ana.ID, bruno.ID},
		IsActive:      true,
	})
	if err != nil {
		t.Fatalf("add recurring expense: %v", err)
	}
	return ana, rent
}

func TestMarkPaidSynthesizesExpenseAndDebitsWallet(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	ana, rent := seedRent(t, st)
	rec := NewReconciler(st, nil)

	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	payment, err := rec.MarkPaid(ctx, rent.ID, "2024-01", now)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if !payment.IsPaid || payment.ExpenseID == "" {
		t.Fatalf("expected paid payment with linked expense, got %+v", payment)
	}

	expense, err := st.GetExpense(ctx, payment.ExpenseID)
	if err != nil {
		t.Fatalf("get synthesized expense: %v", err)
	}
	if expense.FromRecurring != rent.ID {
		t.Fatalf("FromRecurring = %q, want %q", expense.FromRecurring, rent.ID)
	}
	if expense.Notes != "Despesa fixa: Rent" {
		t.Fatalf("unexpected notes %q", expense.Notes)
	}
	if expense.PaidBy != ana.ID || expense.Amount.Cents != 120000 {
		t.Fatalf("unexpected expense %+v", expense)
	}

	got, err := st.GetMember(ctx, ana.ID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if got.WalletBalance.Cents != 200000-120000 {
		t.Fatalf("wallet balance = %d, want %d", got.WalletBalance.Cents, 200000-120000)
	}

	txs, err := st.ListWalletTransactions(ctx, ana.ID)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != 1 || txs[0].RelatedExpenseID != expense.ID {
		t.Fatalf("expected one transaction linked to %s, got %+v", expense.ID, txs)
	}
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	ana, rent := seedRent(t, st)
	rec := NewReconciler(st, nil)

	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	first, err := rec.MarkPaid(ctx, rent.ID, "2024-01", now)
	if err != nil {
		t.Fatalf("first mark paid: %v", err)
	}
	second, err := rec.MarkPaid(ctx, rent.ID, "2024-01", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("second mark paid: %v", err)
	}
	if second.ExpenseID != first.ExpenseID {
		t.Fatalf("second call created a new expense: %q vs %q", second.ExpenseID, first.ExpenseID)
	}

	expenses, err := st.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("list expenses: %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("expected 1 expense, got %d", len(expenses))
	}

	got, _ := st.GetMember(ctx, ana.ID)
	if got.WalletBalance.Cents != 200000-120000 {
		t.Fatalf("wallet debited twice: balance %d", got.WalletBalance.Cents)
	}
}

func TestMarkPaidThenUnpaidRestoresBalance(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	ana, rent := seedRent(t, st)
	rec := NewReconciler(st, nil)

	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	payment, err := rec.MarkPaid(ctx, rent.ID, "2024-01", now)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	unpaid, err := rec.MarkUnpaid(ctx, rent.ID, "2024-01")
	if err != nil {
		t.Fatalf("mark unpaid: %v", err)
	}
	if unpaid.IsPaid || unpaid.ExpenseID != "" {
		t.Fatalf("expected cleared payment, got %+v", unpaid)
	}

	if _, err := st.GetExpense(ctx, payment.ExpenseID); !core.IsNotFound(err) {
		t.Fatalf("synthesized expense still present, err = %v", err)
	}

	got, _ := st.GetMember(ctx, ana.ID)
	if got.WalletBalance.Cents != 200000 {
		t.Fatalf("wallet balance = %d, want pre-mark value 200000", got.WalletBalance.Cents)
	}

	txs, _ := st.ListWalletTransactions(ctx, ana.ID)
	if len(txs) != 0 {
		t.Fatalf("expected no transactions after unmark, got %d", len(txs))
	}
}

func TestMarkUnpaidWithoutRecordFails(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	_, rent := seedRent(t, st)
	rec := NewReconciler(st, nil)

	if _, err := rec.MarkUnpaid(ctx, rent.ID, "2024-01"); !core.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestMarkPaidUnknownTemplate(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	rec := NewReconciler(st, nil)

	if _, err := rec.MarkPaid(ctx, "missing", "2024-01", time.Now()); !core.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestMarkPaidRejectsBadMonth(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	_, rent := seedRent(t, st)
	rec := NewReconciler(st, nil)

	if _, err := rec.MarkPaid(ctx, rent.ID, "Jan-2024", time.Now()); err == nil {
		t.Fatal("expected error for malformed month")
	}
}

type recordingPublisher struct {
	published []*events.LedgerEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e *events.LedgerEvent) error {
	p.published = append(p.published, e)
	return nil
}

func TestPaymentEventsCarryMemberAndAmount(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	ana, rent := seedRent(t, st)
	rec := NewReconciler(st, nil)
	pub := &recordingPublisher{}
	rec.events = pub

	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	if _, err := rec.MarkPaid(ctx, rent.ID, "2024-01", now); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if _, err := rec.MarkUnpaid(ctx, rent.ID, "2024-01"); err != nil {
		t.Fatalf("mark unpaid: %v", err)
	}

	if len(pub.published) != 2 {
		t.Fatalf("expected 2 events, got %d", len(pub.published))
	}
	kinds := []string{events.KindPaymentMarked, events.KindPaymentUnmarked}
	for i, e := range pub.published {
		if e.Kind != kinds[i] {
			t.Errorf("event %d kind = %q, want %q", i, e.Kind, kinds[i])
		}
		if e.MemberID != ana.ID {
			t.Errorf("%s event member = %q, want %q", e.Kind, e.MemberID, ana.ID)
		}
		if e.AmountCents != 120000 {
			t.Errorf("%s event amount = %d, want 120000", e.Kind, e.AmountCents)
		}
		if e.Month != "2024-01" {
			t.Errorf("%s event month = %q, want 2024-01", e.Kind, e.Month)
		}
	}
}
