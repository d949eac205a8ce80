package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"despesas/internal/core"
)

// errBadPayload marks request bodies that could not be decoded at all,
// as opposed to well-formed payloads failing domain validation.
var errBadPayload = errors.New("malformed request payload")

const maxBodyBytes = 1 << 20 // 1 MiB

// decodeJSON parses the request body into dst, rejecting unknown fields
// and oversized bodies.
func decodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadPayload, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON body", errBadPayload)
	}
	_, _ = io.Copy(io.Discard, body)
	return nil
}

// parseDate parses a date in YYYY-MM-DD format, defaulting to now when
// empty.
func parseDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Now(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", errBadPayload, s)
	}
	return t, nil
}

// parseAmount converts a decimal string ("123,45" or "123.45") to a
// Money value.
func parseAmount(s string) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

type memberRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	MonthlyIncome string `json:"monthly_income,omitempty"`
}

func (req memberRequest) toCore() (core.Member, error) {
	m := core.Member{
		Name:  sanitizeInput(req.Name),
		Email: sanitizeInput(req.Email),
	}
	if strings.TrimSpace(req.MonthlyIncome) != "" {
		income, err := parseAmount(req.MonthlyIncome)
		if err != nil {
			return core.Member{}, err
		}
		m.MonthlyIncome = income
	}
	return m, nil
}

type projectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

func (req projectRequest) toCore() (core.Project, error) {
	p := core.Project{
		Name:        sanitizeInput(req.Name),
		Description: sanitizeInput(req.Description),
		Color:       sanitizeInput(req.Color),
		Icon:        sanitizeInput(req.Icon),
		IsActive:    true,
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if strings.TrimSpace(req.StartDate) != "" {
		t, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return core.Project{}, fmt.Errorf("%w: invalid start_date", errBadPayload)
		}
		p.StartDate = t
	}
	if strings.TrimSpace(req.EndDate) != "" {
		t, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return core.Project{}, fmt.Errorf("%w: invalid end_date", errBadPayload)
		}
		p.EndDate = t
	}
	return p, nil
}

type expenseRequest struct {
	Description  string   `json:"description"`
	Amount       string   `json:"amount"`
	Date         string   `json:"date,omitempty"`
	PaidBy       string   `json:"paid_by"`
	Category     string   `json:"category"`
	SplitBetween []string `json:"split_between"`
	ProjectID    string   `json:"project_id,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

func (req expenseRequest) toCore() (core.Expense, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.Expense{}, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		Description:  sanitizeInput(req.Description),
		Amount:       amount,
		Date:         date,
		PaidBy:       strings.TrimSpace(req.PaidBy),
		Category:     sanitizeInput(req.Category),
		SplitBetween: req.SplitBetween,
		ProjectID:    strings.TrimSpace(req.ProjectID),
		Notes:        sanitizeInput(req.Notes),
	}, nil
}

type recurringRequest struct {
	Name          string   `json:"name"`
	Amount        string   `json:"amount"`
	DueDay        int      `json:"due_day"`
	ResponsibleID string   `json:"responsible_id"`
	Category      string   `json:"category"`
	SplitBetween  []string `json:"split_between"`
	ProjectID     string   `json:"project_id,omitempty"`
	IsActive      *bool    `json:"is_active,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

func (req recurringRequest) toCore() (core.RecurringExpense, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.RecurringExpense{}, err
	}
	re := core.RecurringExpense{
		Name:          sanitizeInput(req.Name),
		Amount:        amount,
		DueDay:        req.DueDay,
		ResponsibleID: strings.TrimSpace(req.ResponsibleID),
		Category:      sanitizeInput(req.Category),
		SplitBetween:  req.SplitBetween,
		ProjectID:     strings.TrimSpace(req.ProjectID),
		IsActive:      true,
		Notes:         sanitizeInput(req.Notes),
	}
	if req.IsActive != nil {
		re.IsActive = *req.IsActive
	}
	return re, nil
}

type walletTransactionRequest struct {
	Type             string `json:"type"`
	Amount           string `json:"amount"`
	Description      string `json:"description"`
	Date             string `json:"date,omitempty"`
	Category         string `json:"category,omitempty"`
	RelatedExpenseID string `json:"related_expense_id,omitempty"`
}

func (req walletTransactionRequest) toCore(memberID string) (core.WalletTransaction, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.WalletTransaction{}, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return core.WalletTransaction{}, err
	}
	return core.WalletTransaction{
		MemberID:         memberID,
		Type:             core.TransactionType(strings.TrimSpace(req.Type)),
		Amount:           amount,
		Description:      sanitizeInput(req.Description),
		Date:             date,
		Category:         sanitizeInput(req.Category),
		RelatedExpenseID: strings.TrimSpace(req.RelatedExpenseID),
	}, nil
}
