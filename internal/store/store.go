// Package store defines the entity store boundary shared by the
// derivation engines and its backends (memory, sqlite).
package store

import (
	"context"

	"despesas/internal/core"
)

// Store holds the six entity collections. Mutations that span several
// collections (member removal cascade, recurring payment reconciliation)
// run through RunInTransaction so a mid-sequence failure leaves no
// partial effect behind.
//
// Get/Update/Remove return *core.NotFoundError for unknown ids.
type Store interface {
	AddMember(ctx context.Context, m core.Member) (core.Member, error)
	GetMember(ctx context.Context, id string) (core.Member, error)
	ListMembers(ctx context.Context) ([]core.Member, error)
	UpdateMember(ctx context.Context, m core.Member) error
	// RemoveMember deletes the member, the expenses they paid for and
	// their wallet transactions. Expenses merely splitting with the
	// member are kept.
	RemoveMember(ctx context.Context, id string) error

	AddProject(ctx context.Context, p core.Project) (core.Project, error)
	GetProject(ctx context.Context, id string) (core.Project, error)
	ListProjects(ctx context.Context) ([]core.Project, error)
	UpdateProject(ctx context.Context, p core.Project) error
	// RemoveProject clears ProjectID on the project's expenses and
	// recurring templates instead of deleting them.
	RemoveProject(ctx context.Context, id string) error

	AddExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	GetExpense(ctx context.Context, id string) (core.Expense, error)
	ListExpenses(ctx context.Context) ([]core.Expense, error)
	RemoveExpense(ctx context.Context, id string) error

	AddRecurringExpense(ctx context.Context, re core.RecurringExpense) (core.RecurringExpense, error)
	GetRecurringExpense(ctx context.Context, id string) (core.RecurringExpense, error)
	ListRecurringExpenses(ctx context.Context) ([]core.RecurringExpense, error)
	UpdateRecurringExpense(ctx context.Context, re core.RecurringExpense) error
	// RemoveRecurringExpense deletes the template and its payment
	// records, and clears FromRecurring on already-synthesized expenses.
	RemoveRecurringExpense(ctx context.Context, id string) error

	// GetRecurringPayment resolves the unique payment record for a
	// (recurring expense, month) pair.
	GetRecurringPayment(ctx context.Context, recurringExpenseID string, month core.MonthKey) (core.RecurringPayment, error)
	// UpsertRecurringPayment creates or replaces the payment record for
	// its (recurring expense, month) pair, never producing a second
	// record for the same pair.
	UpsertRecurringPayment(ctx context.Context, p core.RecurringPayment) (core.RecurringPayment, error)
	// ListRecurringPayments returns payment records, filtered by month
	// when month is non-empty.
	ListRecurringPayments(ctx context.Context, month core.MonthKey) ([]core.RecurringPayment, error)

	AddWalletTransaction(ctx context.Context, t core.WalletTransaction) (core.WalletTransaction, error)
	GetWalletTransaction(ctx context.Context, id string) (core.WalletTransaction, error)
	// ListWalletTransactions returns transactions, filtered by member
	// when memberID is non-empty.
	ListWalletTransactions(ctx context.Context, memberID string) ([]core.WalletTransaction, error)
	RemoveWalletTransaction(ctx context.Context, id string) error

	// RunInTransaction executes fn against a transaction-scoped store.
	// If fn returns an error, none of its mutations remain observable.
	// Nested calls join the enclosing transaction.
	RunInTransaction(ctx context.Context, fn func(Store) error) error

	Close() error
}
