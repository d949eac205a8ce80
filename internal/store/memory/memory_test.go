package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"despesas/internal/core"
	"despesas/internal/store"
)

var day = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func addMember(t *testing.T, s *Store, name string) core.Member {
	t.Helper()
	m, err := s.AddMember(context.Background(), core.Member{Name: name})
	if err != nil {
		t.Fatalf("add member: %v", err)
	}
	return m
}

func addExpense(t *testing.T, s *Store, desc, paidBy string, split []string, projectID string) core.Expense {
	t.Helper()
	e, err := s.AddExpense(context.Background(), core.Expense{
		Description:  desc,
		Amount:       core.Money{Cents: 1000},
		Date:         day,
		PaidBy:       paidBy,
		Category:     "Geral",
		SplitBetween: split,
		ProjectID:    projectID,
	})
	if err != nil {
		t.Fatalf("add expense: %v", err)
	}
	return e
}

func TestMemberNotFound(t *testing.T) {
	s := New()
	_, err := s.GetMember(context.Background(), "nope")
	if !core.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if err := s.UpdateMember(context.Background(), core.Member{ID: "nope", Name: "x"}); !core.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestRemoveMemberCascade(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := addMember(t, s, "Ana")
	b := addMember(t, s, "Bruno")

	paidByA := addExpense(t, s, "mercado", a.ID, []string{a.ID, b.ID}, "")
	paidByB := addExpense(t, s, "farmácia", b.ID, []string{a.ID, b.ID}, "")

	if _, err := s.AddWalletTransaction(ctx, core.WalletTransaction{
		MemberID: a.ID, Type: core.TransactionIncome, Amount: core.Money{Cents: 100},
		Description: "salário", Date: day,
	}); err != nil {
		t.Fatalf("add transaction: %v", err)
	}

	if err := s.RemoveMember(ctx, a.ID); err != nil {
		t.Fatalf("remove member: %v", err)
	}

	// Expenses paid by the removed member are gone.
	if _, err := s.GetExpense(ctx, paidByA.ID); !core.IsNotFound(err) {
		t.Fatalf("expected cascade delete, got %v", err)
	}
	// Expenses only splitting with the member survive.
	if _, err := s.GetExpense(ctx, paidByB.ID); err != nil {
		t.Fatalf("expected expense to survive, got %v", err)
	}
	txs, err := s.ListWalletTransactions(ctx, a.ID)
	if err != nil || len(txs) != 0 {
		t.Fatalf("expected no transactions left, got %d (%v)", len(txs), err)
	}
}

func TestRemoveProjectOrphansExpenses(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := addMember(t, s, "Ana")
	p, err := s.AddProject(ctx, core.Project{Name: "Reforma", IsActive: true, CreatedAt: day})
	if err != nil {
		t.Fatalf("add project: %v", err)
	}
	e := addExpense(t, s, "tinta", a.ID, []string{a.ID}, p.ID)

	if err := s.RemoveProject(ctx, p.ID); err != nil {
		t.Fatalf("remove project: %v", err)
	}
	got, err := s.GetExpense(ctx, e.ID)
	if err != nil {
		t.Fatalf("expected expense to survive, got %v", err)
	}
	if got.ProjectID != "" {
		t.Fatalf("expected orphaned expense, got project %q", got.ProjectID)
	}
}

func TestUpsertRecurringPaymentIsUniquePerPair(t *testing.T) {
	ctx := context.Background()
	s := New()

	p1, err := s.UpsertRecurringPayment(ctx, core.RecurringPayment{
		RecurringExpenseID: "rent", Month: "2024-01", IsPaid: true,
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	p2, err := s.UpsertRecurringPayment(ctx, core.RecurringPayment{
		RecurringExpenseID: "rent", Month: "2024-01", IsPaid: false,
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if p1.ID != p2.ID {
		t.Fatalf("expected one record per pair, got ids %s and %s", p1.ID, p2.ID)
	}

	all, err := s.ListRecurringPayments(ctx, "2024-01")
	if err != nil || len(all) != 1 {
		t.Fatalf("expected exactly one payment, got %d (%v)", len(all), err)
	}
	if all[0].IsPaid {
		t.Fatal("expected latest upsert to win")
	}
}

func TestRemoveRecurringExpenseOrphansSynthesized(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := addMember(t, s, "Ana")
	re, err := s.AddRecurringExpense(ctx, core.RecurringExpense{
		Name: "Aluguel", Amount: core.Money{Cents: 120000}, DueDay: 10,
		ResponsibleID: a.ID, Category: "Moradia", SplitBetween: []string{a.ID},
		IsActive: true, CreatedAt: day,
	})
	if err != nil {
		t.Fatalf("add recurring: %v", err)
	}
	e, err := s.AddExpense(ctx, core.Expense{
		Description: "Aluguel", Amount: core.Money{Cents: 120000}, Date: day,
		PaidBy: a.ID, Category: "Moradia", SplitBetween: []string{a.ID},
		FromRecurring: re.ID,
	})
	if err != nil {
		t.Fatalf("add expense: %v", err)
	}
	if _, err := s.UpsertRecurringPayment(ctx, core.RecurringPayment{
		RecurringExpenseID: re.ID, Month: "2024-01", IsPaid: true, ExpenseID: e.ID,
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := s.RemoveRecurringExpense(ctx, re.ID); err != nil {
		t.Fatalf("remove recurring: %v", err)
	}
	if _, err := s.GetRecurringPayment(ctx, re.ID, "2024-01"); !core.IsNotFound(err) {
		t.Fatalf("expected payments removed, got %v", err)
	}
	got, err := s.GetExpense(ctx, e.ID)
	if err != nil {
		t.Fatalf("expected synthesized expense to survive, got %v", err)
	}
	if got.FromRecurring != "" {
		t.Fatalf("expected FromRecurring cleared, got %q", got.FromRecurring)
	}
}

func TestRunInTransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := addMember(t, s, "Ana")

	boom := errors.New("boom")
	err := s.RunInTransaction(ctx, func(tx store.Store) error {
		if _, err := tx.AddExpense(ctx, core.Expense{
			Description: "meio caminho", Amount: core.Money{Cents: 100}, Date: day,
			PaidBy: a.ID, Category: "Geral", SplitBetween: []string{a.ID},
		}); err != nil {
			return err
		}
		m, err := tx.GetMember(ctx, a.ID)
		if err != nil {
			return err
		}
		m.WalletBalance.Cents -= 100
		if err := tx.UpdateMember(ctx, m); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	// No partial effects remain observable.
	expenses, _ := s.ListExpenses(ctx)
	if len(expenses) != 0 {
		t.Fatalf("expected rollback to drop the expense, found %d", len(expenses))
	}
	m, _ := s.GetMember(ctx, a.ID)
	if m.WalletBalance.Cents != 0 {
		t.Fatalf("expected balance restored, got %d", m.WalletBalance.Cents)
	}
}

func TestRunInTransactionCommits(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := addMember(t, s, "Ana")

	err := s.RunInTransaction(ctx, func(tx store.Store) error {
		_, err := tx.AddExpense(ctx, core.Expense{
			Description: "ok", Amount: core.Money{Cents: 100}, Date: day,
			PaidBy: a.ID, Category: "Geral", SplitBetween: []string{a.ID},
		})
		return err
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	expenses, _ := s.ListExpenses(ctx)
	if len(expenses) != 1 {
		t.Fatalf("expected committed expense, found %d", len(expenses))
	}
}
