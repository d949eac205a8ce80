package events

import (
	"encoding/json"
	"time"

	"despesas/internal/core"
)

// Event kinds published on the ledger exchange.
const (
	KindExpenseCreated  = "expense.created"
	KindExpenseDeleted  = "expense.deleted"
	KindPaymentMarked   = "payment.marked"
	KindPaymentUnmarked = "payment.unmarked"
	KindPaymentDue      = "payment.due"
)

// LedgerEvent is the message published for every ledger mutation and
// due reminder. Consumers fetch any further detail through the API;
// the event carries identifiers, not entity bodies.
type LedgerEvent struct {
	Kind               string    `json:"kind"`
	ExpenseID          string    `json:"expense_id,omitempty"`
	RecurringExpenseID string    `json:"recurring_expense_id,omitempty"`
	MemberID           string    `json:"member_id,omitempty"`
	Month              string    `json:"month,omitempty"`
	AmountCents        int64     `json:"amount_cents,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}

// NewExpenseEvent builds a created/deleted event for an expense.
func NewExpenseEvent(kind string, e core.Expense) *LedgerEvent {
	return &LedgerEvent{
		Kind:        kind,
		ExpenseID:   e.ID,
		MemberID:    e.PaidBy,
		AmountCents: e.Amount.Cents,
		Timestamp:   time.Now(),
	}
}

// NewPaymentEvent builds a marked/unmarked/due event for a recurring
// payment month.
func NewPaymentEvent(kind string, recurringExpenseID string, month core.MonthKey, responsibleID string, amountCents int64) *LedgerEvent {
	return &LedgerEvent{
		Kind:               kind,
		RecurringExpenseID: recurringExpenseID,
		MemberID:           responsibleID,
		Month:              string(month),
		AmountCents:        amountCents,
		Timestamp:          time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON parses an event from JSON bytes.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
