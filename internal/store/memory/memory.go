// Package memory implements the entity store as mutex-guarded in-process
// maps. This is the default backend: all state is transient and resets
// when the process restarts.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"despesas/internal/core"
	"despesas/internal/store"
)

// Store keeps every collection in memory behind a single mutex, so each
// mutation reads and writes the collections atomically. A transaction-
// scoped Store shares the collections but carries no mutex; the outer
// RunInTransaction already holds the lock.
type Store struct {
	mu   *sync.Mutex
	data *collections
}

type collections struct {
	members      map[string]core.Member
	projects     map[string]core.Project
	expenses     map[string]core.Expense
	recurring    map[string]core.RecurringExpense
	payments     map[string]core.RecurringPayment
	paymentByKey map[string]string // (recurringExpenseID|month) -> payment id
	transactions map[string]core.WalletTransaction
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		mu: &sync.Mutex{},
		data: &collections{
			members:      make(map[string]core.Member),
			projects:     make(map[string]core.Project),
			expenses:     make(map[string]core.Expense),
			recurring:    make(map[string]core.RecurringExpense),
			payments:     make(map[string]core.RecurringPayment),
			paymentByKey: make(map[string]string),
			transactions: make(map[string]core.WalletTransaction),
		},
	}
}

// lock acquires the store mutex and returns the unlock func. Transaction
// stores have no mutex of their own and lock is a no-op for them.
func (s *Store) lock() func() {
	if s.mu == nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func paymentKey(recurringExpenseID string, month core.MonthKey) string {
	return recurringExpenseID + "|" + string(month)
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// --- members ---

func (s *Store) AddMember(_ context.Context, m core.Member) (core.Member, error) {
	defer s.lock()()
	m.ID = newID(m.ID)
	s.data.members[m.ID] = m
	return m, nil
}

func (s *Store) GetMember(_ context.Context, id string) (core.Member, error) {
	defer s.lock()()
	m, ok := s.data.members[id]
	if !ok {
		return core.Member{}, core.NewNotFound("member", id)
	}
	return m, nil
}

func (s *Store) ListMembers(_ context.Context) ([]core.Member, error) {
	defer s.lock()()
	out := make([]core.Member, 0, len(s.data.members))
	for _, m := range s.data.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateMember(_ context.Context, m core.Member) error {
	defer s.lock()()
	if _, ok := s.data.members[m.ID]; !ok {
		return core.NewNotFound("member", m.ID)
	}
	s.data.members[m.ID] = m
	return nil
}

func (s *Store) RemoveMember(_ context.Context, id string) error {
	defer s.lock()()
	if _, ok := s.data.members[id]; !ok {
		return core.NewNotFound("member", id)
	}
	delete(s.data.members, id)
	// Cascade: expenses paid by the member go away. Expenses that only
	// split with the member survive untouched.
	for eid, e := range s.data.expenses {
		if e.PaidBy == id {
			delete(s.data.expenses, eid)
		}
	}
	for tid, t := range s.data.transactions {
		if t.MemberID == id {
			delete(s.data.transactions, tid)
		}
	}
	return nil
}

// --- projects ---

func (s *Store) AddProject(_ context.Context, p core.Project) (core.Project, error) {
	defer s.lock()()
	p.ID = newID(p.ID)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	s.data.projects[p.ID] = p
	return p, nil
}

func (s *Store) GetProject(_ context.Context, id string) (core.Project, error) {
	defer s.lock()()
	p, ok := s.data.projects[id]
	if !ok {
		return core.Project{}, core.NewNotFound("project", id)
	}
	return p, nil
}

func (s *Store) ListProjects(_ context.Context) ([]core.Project, error) {
	defer s.lock()()
	out := make([]core.Project, 0, len(s.data.projects))
	for _, p := range s.data.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateProject(_ context.Context, p core.Project) error {
	defer s.lock()()
	if _, ok := s.data.projects[p.ID]; !ok {
		return core.NewNotFound("project", p.ID)
	}
	s.data.projects[p.ID] = p
	return nil
}

func (s *Store) RemoveProject(_ context.Context, id string) error {
	defer s.lock()()
	if _, ok := s.data.projects[id]; !ok {
		return core.NewNotFound("project", id)
	}
	delete(s.data.projects, id)
	// Orphan, never cascade: the expenses stay, without a project.
	for eid, e := range s.data.expenses {
		if e.ProjectID == id {
			e.ProjectID = ""
			s.data.expenses[eid] = e
		}
	}
	for rid, re := range s.data.recurring {
		if re.ProjectID == id {
			re.ProjectID = ""
			s.data.recurring[rid] = re
		}
	}
	return nil
}

// --- expenses ---

func (s *Store) AddExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	defer s.lock()()
	e.ID = newID(e.ID)
	s.data.expenses[e.ID] = cloneExpense(e)
	return e, nil
}

func (s *Store) GetExpense(_ context.Context, id string) (core.Expense, error) {
	defer s.lock()()
	e, ok := s.data.expenses[id]
	if !ok {
		return core.Expense{}, core.NewNotFound("expense", id)
	}
	return cloneExpense(e), nil
}

func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	defer s.lock()()
	out := make([]core.Expense, 0, len(s.data.expenses))
	for _, e := range s.data.expenses {
		out = append(out, cloneExpense(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) RemoveExpense(_ context.Context, id string) error {
	defer s.lock()()
	if _, ok := s.data.expenses[id]; !ok {
		return core.NewNotFound("expense", id)
	}
	delete(s.data.expenses, id)
	return nil
}

// --- recurring expenses ---

func (s *Store) AddRecurringExpense(_ context.Context, re core.RecurringExpense) (core.RecurringExpense, error) {
	defer s.lock()()
	re.ID = newID(re.ID)
	if re.CreatedAt.IsZero() {
		re.CreatedAt = time.Now()
	}
	s.data.recurring[re.ID] = cloneRecurring(re)
	return re, nil
}

func (s *Store) GetRecurringExpense(_ context.Context, id string) (core.RecurringExpense, error) {
	defer s.lock()()
	re, ok := s.data.recurring[id]
	if !ok {
		return core.RecurringExpense{}, core.NewNotFound("recurring expense", id)
	}
	return cloneRecurring(re), nil
}

func (s *Store) ListRecurringExpenses(_ context.Context) ([]core.RecurringExpense, error) {
	defer s.lock()()
	out := make([]core.RecurringExpense, 0, len(s.data.recurring))
	for _, re := range s.data.recurring {
		out = append(out, cloneRecurring(re))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateRecurringExpense(_ context.Context, re core.RecurringExpense) error {
	defer s.lock()()
	if _, ok := s.data.recurring[re.ID]; !ok {
		return core.NewNotFound("recurring expense", re.ID)
	}
	s.data.recurring[re.ID] = cloneRecurring(re)
	return nil
}

func (s *Store) RemoveRecurringExpense(_ context.Context, id string) error {
	defer s.lock()()
	if _, ok := s.data.recurring[id]; !ok {
		return core.NewNotFound("recurring expense", id)
	}
	delete(s.data.recurring, id)
	for pid, p := range s.data.payments {
		if p.RecurringExpenseID == id {
			delete(s.data.payments, pid)
			delete(s.data.paymentByKey, paymentKey(p.RecurringExpenseID, p.Month))
		}
	}
	// Synthesized expenses stay, orphaned from their template.
	for eid, e := range s.data.expenses {
		if e.FromRecurring == id {
			e.FromRecurring = ""
			s.data.expenses[eid] = e
		}
	}
	return nil
}

// --- recurring payments ---

func (s *Store) GetRecurringPayment(_ context.Context, recurringExpenseID string, month core.MonthKey) (core.RecurringPayment, error) {
	defer s.lock()()
	id, ok := s.data.paymentByKey[paymentKey(recurringExpenseID, month)]
	if !ok {
		return core.RecurringPayment{}, core.NewNotFound("recurring payment", paymentKey(recurringExpenseID, month))
	}
	return s.data.payments[id], nil
}

func (s *Store) UpsertRecurringPayment(_ context.Context, p core.RecurringPayment) (core.RecurringPayment, error) {
	defer s.lock()()
	key := paymentKey(p.RecurringExpenseID, p.Month)
	if existing, ok := s.data.paymentByKey[key]; ok {
		p.ID = existing
	} else {
		p.ID = newID(p.ID)
	}
	s.data.payments[p.ID] = p
	s.data.paymentByKey[key] = p.ID
	return p, nil
}

func (s *Store) ListRecurringPayments(_ context.Context, month core.MonthKey) ([]core.RecurringPayment, error) {
	defer s.lock()()
	out := make([]core.RecurringPayment, 0, len(s.data.payments))
	for _, p := range s.data.payments {
		if month != "" && p.Month != month {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// --- wallet transactions ---

func (s *Store) AddWalletTransaction(_ context.Context, t core.WalletTransaction) (core.WalletTransaction, error) {
	defer s.lock()()
	t.ID = newID(t.ID)
	s.data.transactions[t.ID] = t
	return t, nil
}

func (s *Store) GetWalletTransaction(_ context.Context, id string) (core.WalletTransaction, error) {
	defer s.lock()()
	t, ok := s.data.transactions[id]
	if !ok {
		return core.WalletTransaction{}, core.NewNotFound("wallet transaction", id)
	}
	return t, nil
}

func (s *Store) ListWalletTransactions(_ context.Context, memberID string) ([]core.WalletTransaction, error) {
	defer s.lock()()
	out := make([]core.WalletTransaction, 0, len(s.data.transactions))
	for _, t := range s.data.transactions {
		if memberID != "" && t.MemberID != memberID {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) RemoveWalletTransaction(_ context.Context, id string) error {
	defer s.lock()()
	if _, ok := s.data.transactions[id]; !ok {
		return core.NewNotFound("wallet transaction", id)
	}
	delete(s.data.transactions, id)
	return nil
}

// --- transactions ---

// RunInTransaction snapshots the collections, runs fn against an
// unlocked store sharing them, and restores the snapshot if fn fails.
// The mutex is held for the whole unit of work.
func (s *Store) RunInTransaction(ctx context.Context, fn func(store.Store) error) error {
	if s.mu == nil {
		// Already inside a transaction: join it.
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	tx := &Store{data: s.data}
	if err := fn(tx); err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}

// --- deep copies ---
//
// Entities holding slices are cloned on the way in and out so callers
// can never alias store-internal state.

func cloneExpense(e core.Expense) core.Expense {
	e.SplitBetween = append([]string(nil), e.SplitBetween...)
	return e
}

func cloneRecurring(re core.RecurringExpense) core.RecurringExpense {
	re.SplitBetween = append([]string(nil), re.SplitBetween...)
	return re
}

func (c *collections) clone() *collections {
	out := &collections{
		members:      make(map[string]core.Member, len(c.members)),
		projects:     make(map[string]core.Project, len(c.projects)),
		expenses:     make(map[string]core.Expense, len(c.expenses)),
		recurring:    make(map[string]core.RecurringExpense, len(c.recurring)),
		payments:     make(map[string]core.RecurringPayment, len(c.payments)),
		paymentByKey: make(map[string]string, len(c.paymentByKey)),
		transactions: make(map[string]core.WalletTransaction, len(c.transactions)),
	}
	for k, v := range c.members {
		out.members[k] = v
	}
	for k, v := range c.projects {
		out.projects[k] = v
	}
	for k, v := range c.expenses {
		out.expenses[k] = cloneExpense(v)
	}
	for k, v := range c.recurring {
		out.recurring[k] = cloneRecurring(v)
	}
	for k, v := range c.payments {
		out.payments[k] = v
	}
	for k, v := range c.paymentByKey {
		out.paymentByKey[k] = v
	}
	for k, v := range c.transactions {
		out.transactions[k] = v
	}
	return out
}
