package services

import (
	"context"
	"fmt"
	"log/slog"

	"despesas/internal/core"
	"despesas/internal/events"
	"despesas/internal/store"
)

// eventPublisher is the part of events.Client the services need.
type eventPublisher interface {
	Publish(ctx context.Context, event *events.LedgerEvent) error
}

// ExpenseService orchestrates expense mutations: reference checks,
// store writes and event publishing.
type ExpenseService struct {
	store  store.Store
	events eventPublisher
}

func NewExpenseService(st store.Store, ev *events.Client) *ExpenseService {
	s := &ExpenseService{store: st}
	if ev != nil {
		s.events = ev
	}
	return s
}

// CreateExpense validates the expense, checks that the payer and every
// split member exist, and appends it to the store. Checks and write
// share one transaction so a concurrent member removal cannot slip a
// dangling reference past them.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	var stored core.Expense
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if _, err := tx.GetMember(ctx, e.PaidBy); err != nil {
			return fmt.Errorf("resolve payer: %w", err)
		}
		for _, id := range e.SplitBetween {
			if _, err := tx.GetMember(ctx, id); err != nil {
				return fmt.Errorf("resolve split member: %w", err)
			}
		}
		if e.ProjectID != "" {
			if _, err := tx.GetProject(ctx, e.ProjectID); err != nil {
				return fmt.Errorf("resolve project: %w", err)
			}
		}

		var err error
		stored, err = tx.AddExpense(ctx, e)
		if err != nil {
			return fmt.Errorf("save expense: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Expense{}, err
	}

	slog.InfoContext(ctx, "Expense created",
		"expense_id", stored.ID,
		"description", stored.Description,
		"amount_cents", stored.Amount.Cents,
		"paid_by", stored.PaidBy,
		"split_size", len(stored.SplitBetween))

	s.publish(ctx, events.NewExpenseEvent(events.KindExpenseCreated, stored))
	return stored, nil
}

// DeleteExpense removes the expense and announces the deletion.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id string) error {
	e, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.RemoveExpense(ctx, id); err != nil {
		return fmt.Errorf("remove expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense deleted", "expense_id", id)
	s.publish(ctx, events.NewExpenseEvent(events.KindExpenseDeleted, e))
	return nil
}

func (s *ExpenseService) publish(ctx context.Context, event *events.LedgerEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		// The expense is already saved; a broker hiccup must not fail
		// the request.
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"kind", event.Kind, "error", err)
	}
}
