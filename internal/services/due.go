package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"despesas/internal/core"
	"despesas/internal/events"
	"despesas/internal/store"
)

// DueItem is an active recurring template whose due date for the month
// has arrived without a paid record.
type DueItem struct {
	RecurringExpense core.RecurringExpense
	Month            core.MonthKey
	DueDate          time.Time
}

// DueScanner finds recurring templates that are due and not yet paid
// and announces them on the event exchange. Due days past the end of a
// short month are clamped to the month's last day, so a template due on
// the 31st still comes due in February.
type DueScanner struct {
	store  store.Store
	events eventPublisher
}

func NewDueScanner(st store.Store, ev *events.Client) *DueScanner {
	d := &DueScanner{store: st}
	if ev != nil {
		d.events = ev
	}
	return d
}

// Scan returns the templates due at now, publishing a payment.due event
// for each. Inactive templates and already-paid months never come due.
func (d *DueScanner) Scan(ctx context.Context, now time.Time) ([]DueItem, error) {
	month := core.MonthOf(now)

	templates, err := d.store.ListRecurringExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recurring expenses: %w", err)
	}

	var due []DueItem
	for _, re := range templates {
		if !re.IsActive {
			continue
		}

		day := re.DueDay
		if last := month.LastDay(); day > last {
			day = last
		}
		dueDate := time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, now.Location())
		if now.Before(dueDate) {
			continue
		}

		payment, err := d.store.GetRecurringPayment(ctx, re.ID, month)
		if err != nil && !core.IsNotFound(err) {
			return nil, fmt.Errorf("get payment for %s: %w", re.ID, err)
		}
		if err == nil && payment.IsPaid {
			continue
		}

		due = append(due, DueItem{RecurringExpense: re, Month: month, DueDate: dueDate})
	}

	for _, item := range due {
		re := item.RecurringExpense
		slog.InfoContext(ctx, "Recurring expense due",
			"recurring_id", re.ID,
			"name", re.Name,
			"month", string(month),
			"due_date", item.DueDate.Format("2006-01-02"),
			"amount_cents", re.Amount.Cents)
		d.publish(ctx, events.NewPaymentEvent(events.KindPaymentDue, re.ID, month, re.ResponsibleID, re.Amount.Cents))
	}

	return due, nil
}

// Run scans once immediately and then on every tick until ctx is
// cancelled. Scan failures are logged and the loop keeps going.
func (d *DueScanner) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if _, err := d.Scan(ctx, time.Now()); err != nil {
		slog.ErrorContext(ctx, "Due scan failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping due scanner", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if _, err := d.Scan(ctx, time.Now()); err != nil {
				slog.ErrorContext(ctx, "Due scan failed", "error", err)
			}
		}
	}
}

func (d *DueScanner) publish(ctx context.Context, event *events.LedgerEvent) {
	if d.events == nil {
		return
	}
	if err := d.events.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish due event",
			"recurring_id", event.RecurringExpenseID, "error", err)
	}
}
