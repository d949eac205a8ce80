package events

import (
	"testing"

	"despesas/internal/core"
)

func TestLedgerEventJSON(t *testing.T) {
	src := NewPaymentEvent(KindPaymentMarked, "rent", "2024-01", "ana", 120000)
	body, err := src.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := LedgerEventFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Kind != KindPaymentMarked || got.RecurringExpenseID != "rent" ||
		got.Month != "2024-01" || got.AmountCents != 120000 {
		t.Fatalf("round trip lost data: %+v", got)
	}
}

func TestNewExpenseEvent(t *testing.T) {
	e := core.Expense{ID: "e1", PaidBy: "ana", Amount: core.Money{Cents: 500}}
	ev := NewExpenseEvent(KindExpenseDeleted, e)
	if ev.ExpenseID != "e1" || ev.MemberID != "ana" || ev.AmountCents != 500 {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.Timestamp.IsZero() {
		t.Fatal("expected timestamp to be set")
	}
}

func TestLedgerEventFromJSONRejectsGarbage(t *testing.T) {
	if _, err := LedgerEventFromJSON([]byte("{not json")); err == nil {
		t.Fatal("expected error")
	}
}
