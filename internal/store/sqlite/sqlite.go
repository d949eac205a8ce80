// Package sqlite implements the entity store on an embedded SQLite
// database, for deployments that want the ledger to survive restarts.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"despesas/internal/core"
	"despesas/internal/store"
)

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store runs every query against q, which is the connection pool
// normally and the enclosing *sql.Tx inside RunInTransaction.
type Store struct {
	db *sql.DB // nil for transaction-scoped stores
	q  dbtx
}

var _ store.Store = (*Store)(nil)

// Open opens (creating if needed) the database at dbPath and migrates
// its schema.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, q: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RunInTransaction runs fn against a transaction-scoped store. Nested
// calls join the enclosing transaction.
func (s *Store) RunInTransaction(ctx context.Context, fn func(store.Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&Store{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// --- encoding helpers ---

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func splitToJSON(split []string) (string, error) {
	b, err := json.Marshal(split)
	if err != nil {
		return "", fmt.Errorf("encode split: %w", err)
	}
	return string(b), nil
}

func splitFromJSON(s string) ([]string, error) {
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("decode split: %w", err)
	}
	return out, nil
}

func encodeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func decodeTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode time %q: %w", s, err)
	}
	return t, nil
}

// --- members ---

func (s *Store) AddMember(ctx context.Context, m core.Member) (core.Member, error) {
	m.ID = newID(m.ID)
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO members (id, name, email, wallet_balance_cents, monthly_income_cents)
		 VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.Email, m.WalletBalance.Cents, m.MonthlyIncome.Cents)
	if err != nil {
		return core.Member{}, fmt.Errorf("insert member: %w", err)
	}
	return m, nil
}

func (s *Store) GetMember(ctx context.Context, id string) (core.Member, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT id, name, email, wallet_balance_cents, monthly_income_cents
		 FROM members WHERE id = ?`, id)

	var m core.Member
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.WalletBalance.Cents, &m.MonthlyIncome.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Member{}, core.NewNotFound("member", id)
	}
	if err != nil {
		return core.Member{}, fmt.Errorf("select member: %w", err)
	}
	return m, nil
}

func (s *Store) ListMembers(ctx context.Context) ([]core.Member, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, name, email, wallet_balance_cents, monthly_income_cents
		 FROM members ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	out := []core.Member{}
	for rows.Next() {
		var m core.Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.WalletBalance.Cents, &m.MonthlyIncome.Cents); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) UpdateMember(ctx context.Context, m core.Member) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE members SET name = ?, email = ?, wallet_balance_cents = ?, monthly_income_cents = ?
		 WHERE id = ?`,
		m.Name, m.Email, m.WalletBalance.Cents, m.MonthlyIncome.Cents, m.ID)
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	return requireRow(res, "member", m.ID)
}

func (s *Store) RemoveMember(ctx context.Context, id string) error {
	return s.RunInTransaction(ctx, func(st store.Store) error {
		tx := st.(*Store)

		res, err := tx.q.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete member: %w", err)
		}
		if err := requireRow(res, "member", id); err != nil {
			return err
		}

		// Expenses paid by the member go away; split-only expenses stay.
		if _, err := tx.q.ExecContext(ctx, `DELETE FROM expenses WHERE paid_by = ?`, id); err != nil {
			return fmt.Errorf("delete member expenses: %w", err)
		}
		if _, err := tx.q.ExecContext(ctx, `DELETE FROM wallet_transactions WHERE member_id = ?`, id); err != nil {
			return fmt.Errorf("delete member transactions: %w", err)
		}
		return nil
	})
}

// --- projects ---

func (s *Store) AddProject(ctx context.Context, p core.Project) (core.Project, error) {
	p.ID = newID(p.ID)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO projects (id, name, description, start_date, end_date, color, icon, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, encodeTime(p.StartDate), encodeTime(p.EndDate),
		p.Color, p.Icon, p.IsActive, encodeTime(p.CreatedAt))
	if err != nil {
		return core.Project{}, fmt.Errorf("insert project: %w", err)
	}
	return p, nil
}

func (s *Store) scanProject(row interface{ Scan(...any) error }) (core.Project, error) {
	var p core.Project
	var start, end, created string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &start, &end, &p.Color, &p.Icon, &p.IsActive, &created); err != nil {
		return core.Project{}, err
	}
	var err error
	if p.StartDate, err = decodeTime(start); err != nil {
		return core.Project{}, err
	}
	if p.EndDate, err = decodeTime(end); err != nil {
		return core.Project{}, err
	}
	if p.CreatedAt, err = decodeTime(created); err != nil {
		return core.Project{}, err
	}
	return p, nil
}

func (s *Store) GetProject(ctx context.Context, id string) (core.Project, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT id, name, description, start_date, end_date, color, icon, is_active, created_at
		 FROM projects WHERE id = ?`, id)

	p, err := s.scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Project{}, core.NewNotFound("project", id)
	}
	if err != nil {
		return core.Project{}, fmt.Errorf("select project: %w", err)
	}
	return p, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]core.Project, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, name, description, start_date, end_date, color, icon, is_active, created_at
		 FROM projects ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := []core.Project{}
	for rows.Next() {
		p, err := s.scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) UpdateProject(ctx context.Context, p core.Project) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE projects SET name = ?, description = ?, start_date = ?, end_date = ?,
		 color = ?, icon = ?, is_active = ? WHERE id = ?`,
		p.Name, p.Description, encodeTime(p.StartDate), encodeTime(p.EndDate),
		p.Color, p.Icon, p.IsActive, p.ID)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return requireRow(res, "project", p.ID)
}

func (s *Store) RemoveProject(ctx context.Context, id string) error {
	return s.RunInTransaction(ctx, func(st store.Store) error {
		tx := st.(*Store)

		res, err := tx.q.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		if err := requireRow(res, "project", id); err != nil {
			return err
		}

		// Orphan, never cascade.
		if _, err := tx.q.ExecContext(ctx, `UPDATE expenses SET project_id = '' WHERE project_id = ?`, id); err != nil {
			return fmt.Errorf("orphan project expenses: %w", err)
		}
		if _, err := tx.q.ExecContext(ctx, `UPDATE recurring_expenses SET project_id = '' WHERE project_id = ?`, id); err != nil {
			return fmt.Errorf("orphan project templates: %w", err)
		}
		return nil
	})
}

// --- expenses ---

func (s *Store) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.ID = newID(e.ID)
	split, err := splitToJSON(e.SplitBetween)
	if err != nil {
		return core.Expense{}, err
	}
	_, err = s.q.ExecContext(ctx,
		`INSERT INTO expenses (id, description, amount_cents, date, paid_by, category, split_between, project_id, notes, from_recurring)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Description, e.Amount.Cents, encodeTime(e.Date), e.PaidBy,
		e.Category, split, e.ProjectID, e.Notes, e.FromRecurring)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	return e, nil
}

func (s *Store) scanExpense(row interface{ Scan(...any) error }) (core.Expense, error) {
	var e core.Expense
	var date, split string
	if err := row.Scan(&e.ID, &e.Description, &e.Amount.Cents, &date, &e.PaidBy,
		&e.Category, &split, &e.ProjectID, &e.Notes, &e.FromRecurring); err != nil {
		return core.Expense{}, err
	}
	var err error
	if e.Date, err = decodeTime(date); err != nil {
		return core.Expense{}, err
	}
	if e.SplitBetween, err = splitFromJSON(split); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func (s *Store) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT id, description, amount_cents, date, paid_by, category, split_between, project_id, notes, from_recurring
		 FROM expenses WHERE id = ?`, id)

	e, err := s.scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.NewNotFound("expense", id)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("select expense: %w", err)
	}
	return e, nil
}

func (s *Store) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, description, amount_cents, date, paid_by, category, split_between, project_id, notes, from_recurring
		 FROM expenses ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	out := []core.Expense{}
	for rows.Next() {
		e, err := s.scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) RemoveExpense(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireRow(res, "expense", id)
}

// --- recurring expenses ---

func (s *Store) AddRecurringExpense(ctx context.Context, re core.RecurringExpense) (core.RecurringExpense, error) {
	re.ID = newID(re.ID)
	if re.CreatedAt.IsZero() {
		re.CreatedAt = time.Now()
	}
	split, err := splitToJSON(re.SplitBetween)
	if err != nil {
		return core.RecurringExpense{}, err
	}
	_, err = s.q.ExecContext(ctx,
		`INSERT INTO recurring_expenses (id, name, amount_cents, due_day, responsible_id, category, split_between, project_id, is_active, created_at, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		re.ID, re.Name, re.Amount.Cents, re.DueDay, re.ResponsibleID, re.Category,
		split, re.ProjectID, re.IsActive, encodeTime(re.CreatedAt), re.Notes)
	if err != nil {
		return core.RecurringExpense{}, fmt.Errorf("insert recurring expense: %w", err)
	}
	return re, nil
}

func (s *Store) scanRecurring(row interface{ Scan(...any) error }) (core.RecurringExpense, error) {
	var re core.RecurringExpense
	var split, created string
	if err := row.Scan(&re.ID, &re.Name, &re.Amount.Cents, &re.DueDay, &re.ResponsibleID,
		&re.Category, &split, &re.ProjectID, &re.IsActive, &created, &re.Notes); err != nil {
		return core.RecurringExpense{}, err
	}
	var err error
	if re.SplitBetween, err = splitFromJSON(split); err != nil {
		return core.RecurringExpense{}, err
	}
	if re.CreatedAt, err = decodeTime(created); err != nil {
		return core.RecurringExpense{}, err
	}
	return re, nil
}

func (s *Store) GetRecurringExpense(ctx context.Context, id string) (core.RecurringExpense, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT id, name, amount_cents, due_day, responsible_id, category, split_between, project_id, is_active, created_at, notes
		 FROM recurring_expenses WHERE id = ?`, id)

	re, err := s.scanRecurring(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringExpense{}, core.NewNotFound("recurring expense", id)
	}
	if err != nil {
		return core.RecurringExpense{}, fmt.Errorf("select recurring expense: %w", err)
	}
	return re, nil
}

func (s *Store) ListRecurringExpenses(ctx context.Context) ([]core.RecurringExpense, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, name, amount_cents, due_day, responsible_id, category, split_between, project_id, is_active, created_at, notes
		 FROM recurring_expenses ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list recurring expenses: %w", err)
	}
	defer rows.Close()

	out := []core.RecurringExpense{}
	for rows.Next() {
		re, err := s.scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring expense: %w", err)
		}
		out = append(out, re)
	}
	return out, rows.Err()
}

func (s *Store) UpdateRecurringExpense(ctx context.Context, re core.RecurringExpense) error {
	split, err := splitToJSON(re.SplitBetween)
	if err != nil {
		return err
	}
	res, err := s.q.ExecContext(ctx,
		`UPDATE recurring_expenses SET name = ?, amount_cents = ?, due_day = ?, responsible_id = ?,
		 category = ?, split_between = ?, project_id = ?, is_active = ?, notes = ? WHERE id = ?`,
		re.Name, re.Amount.Cents, re.DueDay, re.ResponsibleID, re.Category,
		split, re.ProjectID, re.IsActive, re.Notes, re.ID)
	if err != nil {
		return fmt.Errorf("update recurring expense: %w", err)
	}
	return requireRow(res, "recurring expense", re.ID)
}

func (s *Store) RemoveRecurringExpense(ctx context.Context, id string) error {
	return s.RunInTransaction(ctx, func(st store.Store) error {
		tx := st.(*Store)

		res, err := tx.q.ExecContext(ctx, `DELETE FROM recurring_expenses WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete recurring expense: %w", err)
		}
		if err := requireRow(res, "recurring expense", id); err != nil {
			return err
		}

		if _, err := tx.q.ExecContext(ctx, `DELETE FROM recurring_payments WHERE recurring_expense_id = ?`, id); err != nil {
			return fmt.Errorf("delete payment records: %w", err)
		}
		// Synthesized expenses stay, orphaned from their template.
		if _, err := tx.q.ExecContext(ctx, `UPDATE expenses SET from_recurring = '' WHERE from_recurring = ?`, id); err != nil {
			return fmt.Errorf("orphan synthesized expenses: %w", err)
		}
		return nil
	})
}

// --- recurring payments ---

func (s *Store) GetRecurringPayment(ctx context.Context, recurringExpenseID string, month core.MonthKey) (core.RecurringPayment, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT id, recurring_expense_id, month, is_paid, paid_date, expense_id
		 FROM recurring_payments WHERE recurring_expense_id = ? AND month = ?`,
		recurringExpenseID, string(month))

	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringPayment{}, core.NewNotFound("recurring payment", recurringExpenseID+"|"+string(month))
	}
	if err != nil {
		return core.RecurringPayment{}, fmt.Errorf("select recurring payment: %w", err)
	}
	return p, nil
}

func (s *Store) UpsertRecurringPayment(ctx context.Context, p core.RecurringPayment) (core.RecurringPayment, error) {
	var existingID string
	err := s.q.QueryRowContext(ctx,
		`SELECT id FROM recurring_payments WHERE recurring_expense_id = ? AND month = ?`,
		p.RecurringExpenseID, string(p.Month)).Scan(&existingID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		p.ID = newID(p.ID)
		_, err = s.q.ExecContext(ctx,
			`INSERT INTO recurring_payments (id, recurring_expense_id, month, is_paid, paid_date, expense_id)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, p.RecurringExpenseID, string(p.Month), p.IsPaid, encodeTime(p.PaidDate), p.ExpenseID)
		if err != nil {
			return core.RecurringPayment{}, fmt.Errorf("insert recurring payment: %w", err)
		}
	case err != nil:
		return core.RecurringPayment{}, fmt.Errorf("select recurring payment: %w", err)
	default:
		p.ID = existingID
		_, err = s.q.ExecContext(ctx,
			`UPDATE recurring_payments SET is_paid = ?, paid_date = ?, expense_id = ? WHERE id = ?`,
			p.IsPaid, encodeTime(p.PaidDate), p.ExpenseID, p.ID)
		if err != nil {
			return core.RecurringPayment{}, fmt.Errorf("update recurring payment: %w", err)
		}
	}
	return p, nil
}

func (s *Store) ListRecurringPayments(ctx context.Context, month core.MonthKey) ([]core.RecurringPayment, error) {
	query := `SELECT id, recurring_expense_id, month, is_paid, paid_date, expense_id
		 FROM recurring_payments ORDER BY month, id`
	args := []any{}
	if month != "" {
		query = `SELECT id, recurring_expense_id, month, is_paid, paid_date, expense_id
		 FROM recurring_payments WHERE month = ? ORDER BY month, id`
		args = append(args, string(month))
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recurring payments: %w", err)
	}
	defer rows.Close()

	out := []core.RecurringPayment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring payment: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPayment(row interface{ Scan(...any) error }) (core.RecurringPayment, error) {
	var p core.RecurringPayment
	var month, paidDate string
	if err := row.Scan(&p.ID, &p.RecurringExpenseID, &month, &p.IsPaid, &paidDate, &p.ExpenseID); err != nil {
		return core.RecurringPayment{}, err
	}
	p.Month = core.MonthKey(month)
	var err error
	if p.PaidDate, err = decodeTime(paidDate); err != nil {
		return core.RecurringPayment{}, err
	}
	return p, nil
}

// --- wallet transactions ---

func (s *Store) AddWalletTransaction(ctx context.Context, t core.WalletTransaction) (core.WalletTransaction, error) {
	t.ID = newID(t.ID)
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO wallet_transactions (id, member_id, type, amount_cents, description, date, category, related_expense_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.MemberID, string(t.Type), t.Amount.Cents, t.Description,
		encodeTime(t.Date), t.Category, t.RelatedExpenseID)
	if err != nil {
		return core.WalletTransaction{}, fmt.Errorf("insert wallet transaction: %w", err)
	}
	return t, nil
}

func scanWalletTransaction(row interface{ Scan(...any) error }) (core.WalletTransaction, error) {
	var t core.WalletTransaction
	var typ, date string
	if err := row.Scan(&t.ID, &t.MemberID, &typ, &t.Amount.Cents, &t.Description,
		&date, &t.Category, &t.RelatedExpenseID); err != nil {
		return core.WalletTransaction{}, err
	}
	t.Type = core.TransactionType(typ)
	var err error
	if t.Date, err = decodeTime(date); err != nil {
		return core.WalletTransaction{}, err
	}
	return t, nil
}

func (s *Store) GetWalletTransaction(ctx context.Context, id string) (core.WalletTransaction, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT id, member_id, type, amount_cents, description, date, category, related_expense_id
		 FROM wallet_transactions WHERE id = ?`, id)

	t, err := scanWalletTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.WalletTransaction{}, core.NewNotFound("wallet transaction", id)
	}
	if err != nil {
		return core.WalletTransaction{}, fmt.Errorf("select wallet transaction: %w", err)
	}
	return t, nil
}

func (s *Store) ListWalletTransactions(ctx context.Context, memberID string) ([]core.WalletTransaction, error) {
	query := `SELECT id, member_id, type, amount_cents, description, date, category, related_expense_id
		 FROM wallet_transactions ORDER BY date, id`
	args := []any{}
	if memberID != "" {
		query = `SELECT id, member_id, type, amount_cents, description, date, category, related_expense_id
		 FROM wallet_transactions WHERE member_id = ? ORDER BY date, id`
		args = append(args, memberID)
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list wallet transactions: %w", err)
	}
	defer rows.Close()

	out := []core.WalletTransaction{}
	for rows.Next() {
		t, err := scanWalletTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wallet transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) RemoveWalletTransaction(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM wallet_transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete wallet transaction: %w", err)
	}
	return requireRow(res, "wallet transaction", id)
}

// requireRow converts a zero-row mutation into a NotFoundError.
func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.NewNotFound(kind, id)
	}
	return nil
}
