package core

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// DateLayout is the storage and query-string format of transaction dates.
const DateLayout = "2006-01-02"

type (
	TransactionType string

	// Date is a calendar date at midnight UTC.
	Date struct {
		time.Time
	}

	Category struct {
		ID   int64
		Name string
		Type TransactionType
	}

	Transaction struct {
		ID          int64
		OwnerID     string
		CategoryID  int64
		Date        Date
		Amount      decimal.Decimal
		Description string
	}

	// TransactionWithCategory is a transaction joined with its category row.
	TransactionWithCategory struct {
		Transaction
		CategoryName string
		CategoryType TransactionType
	}
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (t TransactionType) String() string {
	return string(t)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date, keeping t's own wall clock.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses an ISO date (YYYY-MM-DD) or an RFC3339 timestamp.
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MonthNumber returns the month as 1-12.
func (d Date) MonthNumber() int {
	return int(d.Time.Month())
}

// FilterByType returns the categories whose type equals t, preserving order.
func FilterByType(categories []Category, t TransactionType) []Category {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// FindCategory returns the category with the given id.
func FindCategory(categories []Category, id int64) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}
