package core

import (
	"errors"
	"strings"
	"time"
)

const (
	TransactionIncome   TransactionType = "income"
	TransactionExpense  TransactionType = "expense"
	TransactionTransfer TransactionType = "transfer"
)

type (
	// TransactionType classifies a wallet movement. Income credits the
	// member's balance; expense and transfer debit it.
	TransactionType string

	// Member is a household participant who can pay for and be charged a
	// share of expenses.
	Member struct {
		ID            string
		Name          string
		Email         string
		WalletBalance Money // signed running balance
		MonthlyIncome Money // zero when not declared
	}

	// Project groups expenses under a named initiative (a trip, a
	// renovation). Expenses keep living when the project goes away.
	Project struct {
		ID          string
		Name        string
		Description string
		StartDate   time.Time
		EndDate     time.Time
		Color       string
		Icon        string
		IsActive    bool
		CreatedAt   time.Time
	}

	// Expense is a concrete shared expense, split equally among the
	// members in SplitBetween.
	Expense struct {
		ID            string
		Description   string
		Amount        Money
		Date          time.Time
		PaidBy        string
		Category      string
		SplitBetween  []string
		ProjectID     string
		Notes         string
		FromRecurring string // recurring template that synthesized this expense, if any
	}

	// RecurringExpense is a monthly obligation template, not itself a
	// transaction. Marking a month paid synthesizes an Expense plus a
	// WalletTransaction for the responsible member.
	RecurringExpense struct {
		ID            string
		Name          string
		Amount        Money
		DueDay        int // 1-31, clamped to short months
		ResponsibleID string
		Category      string
		SplitBetween  []string
		ProjectID     string
		IsActive      bool
		CreatedAt     time.Time
		Notes         string
	}

	// RecurringPayment tracks whether a recurring template has been paid
	// for a given month. At most one record exists per
	// (RecurringExpenseID, Month) pair.
	RecurringPayment struct {
		ID                 string
		RecurringExpenseID string
		Month              MonthKey
		IsPaid             bool
		PaidDate           time.Time
		ExpenseID          string // synthesized expense when paid
	}

	// WalletTransaction is a single movement on a member's wallet. Amount
	// is always a positive magnitude; the sign is implied by Type.
	WalletTransaction struct {
		ID               string
		MemberID         string
		Type             TransactionType
		Amount           Money
		Description      string
		Date             time.Time
		Category         string
		RelatedExpenseID string
	}
)

var (
	ErrEmptyName              = errors.New("empty name")
	ErrEmptyDescription       = errors.New("empty description")
	ErrDescriptionTooLong     = errors.New("description too long (max 200 characters)")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrNegativeIncome         = errors.New("monthly income cannot be negative")
	ErrEmptyCategory          = errors.New("empty category")
	ErrEmptyPayer             = errors.New("empty payer")
	ErrEmptySplit             = errors.New("split set cannot be empty")
	ErrDuplicateSplitMember   = errors.New("duplicate member in split set")
	ErrZeroDate               = errors.New("date cannot be zero")
	ErrInvalidDueDay          = errors.New("due day must be between 1 and 31")
	ErrEmptyResponsible       = errors.New("empty responsible member")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrEmptyMember            = errors.New("empty member")
	ErrEndBeforeStart         = errors.New("end date must not be before start date")
)

// IsValid reports whether t is one of the known transaction types.
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionIncome, TransactionExpense, TransactionTransfer:
		return true
	default:
		return false
	}
}

func (m Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if m.MonthlyIncome.Cents < 0 {
		return ErrNegativeIncome
	}
	return nil
}

func (p Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if !p.StartDate.IsZero() && !p.EndDate.IsZero() && p.EndDate.Before(p.StartDate) {
		return ErrEndBeforeStart
	}
	return nil
}

// validateSplit enforces the non-empty, duplicate-free split invariant.
// The splitter divides by the split size, so an empty set must never
// reach the store.
func validateSplit(split []string) error {
	if len(split) == 0 {
		return ErrEmptySplit
	}
	seen := make(map[string]struct{}, len(split))
	for _, id := range split {
		if strings.TrimSpace(id) == "" {
			return ErrEmptyMember
		}
		if _, ok := seen[id]; ok {
			return ErrDuplicateSplitMember
		}
		seen[id] = struct{}{}
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if e.Date.IsZero() {
		return ErrZeroDate
	}
	if strings.TrimSpace(e.PaidBy) == "" {
		return ErrEmptyPayer
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	return validateSplit(e.SplitBetween)
}

func (re RecurringExpense) Validate() error {
	if strings.TrimSpace(re.Name) == "" {
		return ErrEmptyName
	}
	if len(re.Name) > 200 {
		return ErrDescriptionTooLong
	}
	if err := re.Amount.Validate(); err != nil {
		return err
	}
	if re.DueDay < 1 || re.DueDay > 31 {
		return ErrInvalidDueDay
	}
	if strings.TrimSpace(re.ResponsibleID) == "" {
		return ErrEmptyResponsible
	}
	if strings.TrimSpace(re.Category) == "" {
		return ErrEmptyCategory
	}
	return validateSplit(re.SplitBetween)
}

func (t WalletTransaction) Validate() error {
	if strings.TrimSpace(t.MemberID) == "" {
		return ErrEmptyMember
	}
	if !t.Type.IsValid() {
		return ErrInvalidTransactionType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	return nil
}
