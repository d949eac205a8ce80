package core

import (
	"errors"
	"fmt"
)

// NotFoundError signals that a referenced entity does not exist. The
// store returns it for unknown ids; it must never be silently swallowed
// into a default value.
type NotFoundError struct {
	Kind string // "member", "project", "expense", ...
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// NewNotFound builds a NotFoundError for the given entity kind and id.
func NewNotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// InvariantError signals a violated multi-entity invariant, e.g. a paid
// recurring payment without its synthesized expense.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "invariant violation: " + e.Msg
}

// NewInvariant builds an InvariantError with the given message.
func NewInvariant(format string, args ...any) error {
	return &InvariantError{Msg: fmt.Sprintf(format, args...)}
}

var validationErrors = []error{
	ErrEmptyName,
	ErrEmptyDescription,
	ErrDescriptionTooLong,
	ErrInvalidAmount,
	ErrNegativeIncome,
	ErrEmptyCategory,
	ErrEmptyPayer,
	ErrEmptySplit,
	ErrDuplicateSplitMember,
	ErrZeroDate,
	ErrInvalidDueDay,
	ErrEmptyResponsible,
	ErrInvalidTransactionType,
	ErrEmptyMember,
	ErrEndBeforeStart,
	ErrInvalidMonthKey,
}

// IsValidation reports whether err is (or wraps) one of the entity
// validation sentinels.
func IsValidation(err error) bool {
	for _, sentinel := range validationErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
