package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"despesas/internal/core"
	"despesas/internal/events"
	"despesas/internal/ledger"
	"despesas/internal/store"
)

// Reconciler toggles a (recurring expense, month) pair between paid and
// unpaid. Marking paid synthesizes an Expense and a wallet transaction
// for the responsible member; unmarking retracts both. Each transition
// runs as one store transaction, so a failure mid-sequence can never
// leave an Expense without its WalletTransaction or vice versa.
type Reconciler struct {
	store  store.Store
	events eventPublisher
}

// NewReconciler creates a reconciler over the given store. The events
// client is optional; without it transitions are simply not announced.
func NewReconciler(st store.Store, ev *events.Client) *Reconciler {
	r := &Reconciler{store: st}
	if ev != nil {
		r.events = ev
	}
	return r
}

// MarkPaid transitions the pair to Paid:
//
//  1. resolve the template (NotFoundError if missing)
//  2. synthesize the month's Expense from the template
//  3. apply a wallet expense transaction for the responsible member
//  4. upsert the RecurringPayment linking to the new expense
//
// Calling MarkPaid while already Paid is a no-op returning the existing
// payment; two competing expenses for the same pair can never exist.
func (r *Reconciler) MarkPaid(ctx context.Context, recurringExpenseID string, month core.MonthKey, now time.Time) (core.RecurringPayment, error) {
	if err := month.Validate(); err != nil {
		return core.RecurringPayment{}, err
	}

	var payment core.RecurringPayment
	var template core.RecurringExpense
	err := r.store.RunInTransaction(ctx, func(tx store.Store) error {
		re, err := tx.GetRecurringExpense(ctx, recurringExpenseID)
		if err != nil {
			return err
		}
		template = re

		existing, err := tx.GetRecurringPayment(ctx, recurringExpenseID, month)
		if err == nil && existing.IsPaid {
			payment = existing
			return nil
		}
		if err != nil && !core.IsNotFound(err) {
			return err
		}

		expense := core.Expense{
			Description:   re.Name,
			Amount:        re.Amount,
			Date:          now,
			PaidBy:        re.ResponsibleID,
			Category:      re.Category,
			SplitBetween:  append([]string(nil), re.SplitBetween...),
			ProjectID:     re.ProjectID,
			FromRecurring: re.ID,
			Notes:         "Despesa fixa: " + re.Name,
		}
		if err := expense.Validate(); err != nil {
			return fmt.Errorf("synthesize expense: %w", err)
		}
		expense, err = tx.AddExpense(ctx, expense)
		if err != nil {
			return fmt.Errorf("append expense: %w", err)
		}

		if _, err := ledger.Apply(ctx, tx, core.WalletTransaction{
			MemberID:         re.ResponsibleID,
			Type:             core.TransactionExpense,
			Amount:           re.Amount,
			Description:      re.Name,
			Date:             now,
			Category:         re.Category,
			RelatedExpenseID: expense.ID,
		}); err != nil {
			return fmt.Errorf("apply wallet transaction: %w", err)
		}

		payment, err = tx.UpsertRecurringPayment(ctx, core.RecurringPayment{
			RecurringExpenseID: recurringExpenseID,
			Month:              month,
			IsPaid:             true,
			PaidDate:           now,
			ExpenseID:          expense.ID,
		})
		if err != nil {
			return fmt.Errorf("upsert payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.RecurringPayment{}, err
	}

	slog.InfoContext(ctx, "Recurring payment marked paid",
		"recurring_id", recurringExpenseID,
		"month", string(month),
		"expense_id", payment.ExpenseID,
		"amount_cents", template.Amount.Cents)
	r.publish(ctx, events.NewPaymentEvent(events.KindPaymentMarked, recurringExpenseID, month, template.ResponsibleID, template.Amount.Cents))

	return payment, nil
}

// MarkUnpaid transitions the pair back to Unpaid. When the payment has
// a linked expense, the expense is deleted and its wallet transaction
// reversed, restoring the member's balance to its pre-MarkPaid value.
// A payment record without a linked expense only flips the flag.
func (r *Reconciler) MarkUnpaid(ctx context.Context, recurringExpenseID string, month core.MonthKey) (core.RecurringPayment, error) {
	if err := month.Validate(); err != nil {
		return core.RecurringPayment{}, err
	}

	var payment core.RecurringPayment
	var template core.RecurringExpense
	err := r.store.RunInTransaction(ctx, func(tx store.Store) error {
		existing, err := tx.GetRecurringPayment(ctx, recurringExpenseID, month)
		if err != nil {
			return err
		}
		template, err = tx.GetRecurringExpense(ctx, recurringExpenseID)
		if err != nil {
			return err
		}
		if !existing.IsPaid {
			payment = existing
			return nil
		}

		if existing.ExpenseID != "" {
			// Reverse only the transaction created by MarkPaid. Manually
			// added expenses referencing the same template are out of the
			// reconciler's bookkeeping.
			txs, err := tx.ListWalletTransactions(ctx, "")
			if err != nil {
				return fmt.Errorf("list transactions: %w", err)
			}
			for _, wt := range txs {
				if wt.RelatedExpenseID == existing.ExpenseID {
					if err := ledger.Reverse(ctx, tx, wt.ID); err != nil {
						return fmt.Errorf("reverse wallet transaction: %w", err)
					}
					break
				}
			}

			if err := tx.RemoveExpense(ctx, existing.ExpenseID); err != nil && !core.IsNotFound(err) {
				return fmt.Errorf("remove expense: %w", err)
			}
		}

		existing.IsPaid = false
		existing.PaidDate = time.Time{}
		existing.ExpenseID = ""
		payment, err = tx.UpsertRecurringPayment(ctx, existing)
		if err != nil {
			return fmt.Errorf("upsert payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.RecurringPayment{}, err
	}

	slog.InfoContext(ctx, "Recurring payment marked unpaid",
		"recurring_id", recurringExpenseID,
		"month", string(month))
	r.publish(ctx, events.NewPaymentEvent(events.KindPaymentUnmarked, recurringExpenseID, month, template.ResponsibleID, template.Amount.Cents))

	return payment, nil
}

// publish is best-effort: broker trouble is logged, never surfaced.
func (r *Reconciler) publish(ctx context.Context, event *events.LedgerEvent) {
	if r.events == nil {
		return
	}
	if err := r.events.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish payment event",
			"kind", event.Kind, "error", err)
	}
}
