package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"despesas/internal/core"
	"despesas/internal/store"
	"despesas/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s := NewServer(":0", memory.New(), Options{RateLimitPerMinute: 10000})
	t.Cleanup(func() { s.rateLimiter.Stop() })
	return s
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func createMember(t *testing.T, s *Server, name string) memberView {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/members", map[string]any{"name": name})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create member %s: status %d, body %s", name, rec.Code, rec.Body.String())
	}
	return decodeBody[memberView](t, rec)
}

func TestCreateAndGetMember(t *testing.T) {
	s := newTestServer(t)

	created := createMember(t, s, "Ana")
	if created.ID == "" || created.Name != "Ana" {
		t.Fatalf("unexpected member: %+v", created)
	}

	rec := doJSON(t, s, http.MethodGet, "/members/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get member: status %d", rec.Code)
	}
	got := decodeBody[memberView](t, rec)
	if got.ID != created.ID {
		t.Fatalf("got %+v, want id %s", got, created.ID)
	}
}

func TestCreateMemberValidation(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/members", map[string]any{"name": "   "})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("blank name: status %d, want 422", rec.Code)
	}
}

func TestMalformedPayloadIsBadRequest(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/members", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("garbage body: status %d, want 400", rec.Code)
	}
}

func TestGetUnknownMemberIs404(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/members/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}

func TestCreateExpenseAndFilterByMonth(t *testing.T) {
	s := newTestServer(t)
	ana := createMember(t, s, "Ana")
	bruno := createMember(t, s, "Bruno")

	rec := doJSON(t, s, http.MethodPost, "/expenses", map[string]any{
		"description":   "Groceries",
		"amount":        "60.00",
		"date":          "2024-01-12",
		"paid_by":       ana.ID,
		"category":      "mercado",
		"split_between": []string{ana.ID, bruno.ID},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense: status %d, body %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[expenseView](t, rec)
	if created.AmountCents != 6000 {
		t.Fatalf("amount_cents = %d, want 6000", created.AmountCents)
	}

	rec = doJSON(t, s, http.MethodGet, "/expenses?month=2024-01", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d", rec.Code)
	}
	if got := decodeBody[[]expenseView](t, rec); len(got) != 1 {
		t.Fatalf("expected 1 expense in 2024-01, got %d", len(got))
	}

	rec = doJSON(t, s, http.MethodGet, "/expenses?month=2024-02", nil)
	if got := decodeBody[[]expenseView](t, rec); len(got) != 0 {
		t.Fatalf("expected no expenses in 2024-02, got %d", len(got))
	}
}

func TestCreateExpenseWithUnknownPayerIs404(t *testing.T) {
	s := newTestServer(t)
	ana := createMember(t, s, "Ana")

	rec := doJSON(t, s, http.MethodPost, "/expenses", map[string]any{
		"description":   "Groceries",
		"amount":        "60.00",
		"paid_by":       "ghost",
		"category":      "mercado",
		"split_between": []string{ana.ID},
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404, body %s", rec.Code, rec.Body.String())
	}
}

func TestMarkPaidRoundTripOverHTTP(t *testing.T) {
	s := newTestServer(t)
	ana := createMember(t, s, "Ana")
	bruno := createMember(t, s, "Bruno")

	rec := doJSON(t, s, http.MethodPost, "/recurring", map[string]any{
		"name":           "Rent",
		"amount":         "1200.00",
		"due_day":        10,
		"responsible_id": ana.ID,
		"category":       "casa",
		"split_between":  []string{ana.ID, bruno.ID},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create recurring: status %d, body %s", rec.Code, rec.Body.String())
	}
	rent := decodeBody[recurringView](t, rec)

	markURL := fmt.Sprintf("/recurring/%s/payments/2024-01/paid", rent.ID)
	rec = doJSON(t, s, http.MethodPost, markURL, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark paid: status %d, body %s", rec.Code, rec.Body.String())
	}
	payment := decodeBody[paymentView](t, rec)
	if !payment.IsPaid || payment.ExpenseID == "" {
		t.Fatalf("unexpected payment: %+v", payment)
	}

	rec = doJSON(t, s, http.MethodGet, "/members/"+ana.ID, nil)
	if got := decodeBody[memberView](t, rec); got.WalletBalanceCents != -120000 {
		t.Fatalf("wallet balance = %d, want -120000", got.WalletBalanceCents)
	}

	unmarkURL := fmt.Sprintf("/recurring/%s/payments/2024-01/unpaid", rent.ID)
	rec = doJSON(t, s, http.MethodPost, unmarkURL, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark unpaid: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodGet, "/members/"+ana.ID, nil)
	if got := decodeBody[memberView](t, rec); got.WalletBalanceCents != 0 {
		t.Fatalf("wallet balance after unmark = %d, want 0", got.WalletBalanceCents)
	}

	rec = doJSON(t, s, http.MethodGet, "/payments?month=2024-01", nil)
	payments := decodeBody[[]paymentView](t, rec)
	if len(payments) != 1 || payments[0].IsPaid {
		t.Fatalf("expected one unpaid record, got %+v", payments)
	}
}

func TestMarkPaidBadMonthIs422(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/recurring/whatever/payments/Jan-2024/paid", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422, body %s", rec.Code, rec.Body.String())
	}
}

func TestWalletTransactions(t *testing.T) {
	s := newTestServer(t)
	ana := createMember(t, s, "Ana")

	rec := doJSON(t, s, http.MethodPost, "/wallet/"+ana.ID+"/transactions", map[string]any{
		"type":        "income",
		"amount":      "2500.00",
		"description": "Salary",
		"date":        "2024-01-05",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transaction: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodGet, "/members/"+ana.ID, nil)
	if got := decodeBody[memberView](t, rec); got.WalletBalanceCents != 250000 {
		t.Fatalf("wallet balance = %d, want 250000", got.WalletBalanceCents)
	}

	rec = doJSON(t, s, http.MethodGet, "/wallet/"+ana.ID+"/transactions", nil)
	if txs := decodeBody[[]walletTransactionView](t, rec); len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
}

// brokenAppendStore fails every wallet history append while keeping the
// rest of the store intact, inside and outside transactions.
type brokenAppendStore struct {
	store.Store
}

func (b *brokenAppendStore) AddWalletTransaction(context.Context, core.WalletTransaction) (core.WalletTransaction, error) {
	return core.WalletTransaction{}, errors.New("append failed")
}

func (b *brokenAppendStore) RunInTransaction(ctx context.Context, fn func(store.Store) error) error {
	return b.Store.RunInTransaction(ctx, func(tx store.Store) error {
		return fn(&brokenAppendStore{Store: tx})
	})
}

func TestWalletTransactionFailureLeavesBalanceUntouched(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	ana, err := mem.AddMember(ctx, core.Member{Name: "Ana", WalletBalance: core.Money{Cents: 5000}})
	if err != nil {
		t.Fatalf("add member: %v", err)
	}

	s := NewServer(":0", &brokenAppendStore{Store: mem}, Options{RateLimitPerMinute: 10000})
	t.Cleanup(func() { s.rateLimiter.Stop() })

	rec := doJSON(t, s, http.MethodPost, "/wallet/"+ana.ID+"/transactions", map[string]any{
		"type":        "expense",
		"amount":      "100.00",
		"description": "Groceries",
		"date":        "2024-01-05",
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", rec.Code)
	}

	got, err := mem.GetMember(ctx, ana.ID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if got.WalletBalance.Cents != 5000 {
		t.Fatalf("balance = %d after failed append, want 5000", got.WalletBalance.Cents)
	}
	txs, err := mem.ListWalletTransactions(ctx, ana.ID)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("expected empty history, got %d transactions", len(txs))
	}
}

func TestBalancesAndDebts(t *testing.T) {
	s := newTestServer(t)
	ana := createMember(t, s, "Ana")
	bruno := createMember(t, s, "Bruno")

	rec := doJSON(t, s, http.MethodPost, "/expenses", map[string]any{
		"description":   "Dinner",
		"amount":        "60.00",
		"date":          "2024-01-12",
		"paid_by":       ana.ID,
		"category":      "lazer",
		"split_between": []string{ana.ID, bruno.ID},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense: status %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodGet, "/summary/balances", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("balances: status %d", rec.Code)
	}
	balances := decodeBody[[]balanceView](t, rec)
	if len(balances) != 2 {
		t.Fatalf("expected 2 balances, got %d", len(balances))
	}
	for _, b := range balances {
		switch b.MemberID {
		case ana.ID:
			if b.BalanceCents != 3000 {
				t.Errorf("Ana balance = %v, want 3000", b.BalanceCents)
			}
		case bruno.ID:
			if b.BalanceCents != -3000 {
				t.Errorf("Bruno balance = %v, want -3000", b.BalanceCents)
			}
		}
	}

	rec = doJSON(t, s, http.MethodGet, "/summary/debts", nil)
	edges := decodeBody[[]debtView](t, rec)
	if len(edges) != 1 || edges[0].FromID != bruno.ID || edges[0].ToID != ana.ID {
		t.Fatalf("unexpected settlement plan: %+v", edges)
	}
}

func TestHealthSummary(t *testing.T) {
	s := newTestServer(t)
	ana := createMember(t, s, "Ana")

	rec := doJSON(t, s, http.MethodGet, "/summary/health?month=2024-01", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health: status %d", rec.Code)
	}
	summaries := decodeBody[[]healthView](t, rec)
	if len(summaries) != 1 || summaries[0].MemberID != ana.ID {
		t.Fatalf("unexpected summaries: %+v", summaries)
	}
	if !summaries[0].IsBalanceHealthy {
		t.Fatalf("zero balance with no expenses should be healthy")
	}
}

func TestHealthzAndReadyz(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, s, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status %d, want 200", path, rec.Code)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	createMember(t, s, "Ana")

	rec := doJSON(t, s, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: status %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("despesas_http_requests_total")) {
		t.Fatal("expected request counter in metrics output")
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/members", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}

func TestMutationRateLimit(t *testing.T) {
	s := NewServer(":0", memory.New(), Options{RateLimitPerMinute: 2})
	t.Cleanup(func() { s.rateLimiter.Stop() })

	var last int
	for i := 0; i < 3; i++ {
		rec := doJSON(t, s, http.MethodPost, "/members", map[string]any{"name": "Ana"})
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("third mutation: status %d, want 429", last)
	}
}
