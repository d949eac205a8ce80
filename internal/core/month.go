package core

import (
	"errors"
	"fmt"
	"time"
)

// MonthKey identifies a calendar month as "YYYY-MM". Recurring payments
// are keyed by (recurring expense, MonthKey).
type MonthKey string

var ErrInvalidMonthKey = errors.New("invalid month key, expected YYYY-MM")

// MonthOf returns the MonthKey for the month t falls in.
func MonthOf(t time.Time) MonthKey {
	return MonthKey(t.Format("2006-01"))
}

// NewMonthKey builds a MonthKey from a year and a 1-based month.
func NewMonthKey(year int, month time.Month) MonthKey {
	return MonthKey(fmt.Sprintf("%04d-%02d", year, int(month)))
}

func (k MonthKey) Validate() error {
	t, err := time.Parse("2006-01", string(k))
	if err != nil {
		return ErrInvalidMonthKey
	}
	if t.Year() < 1 {
		return ErrInvalidMonthKey
	}
	return nil
}

// Contains reports whether t falls within the month.
func (k MonthKey) Contains(t time.Time) bool {
	return MonthOf(t) == k
}

// Year returns the key's year, or 0 for an invalid key.
func (k MonthKey) Year() int {
	t, err := time.Parse("2006-01", string(k))
	if err != nil {
		return 0
	}
	return t.Year()
}

// Month returns the key's month, or 0 for an invalid key.
func (k MonthKey) Month() time.Month {
	t, err := time.Parse("2006-01", string(k))
	if err != nil {
		return 0
	}
	return t.Month()
}

// LastDay returns the number of days in the month, used to clamp due
// days like 31 in short months.
func (k MonthKey) LastDay() int {
	t, err := time.Parse("2006-01", string(k))
	if err != nil {
		return 0
	}
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (k MonthKey) String() string {
	return string(k)
}
