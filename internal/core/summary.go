package core

import "github.com/shopspring/decimal"

// CashflowEntry is one month's income and expense totals.
type CashflowEntry struct {
	Month    int // 1-12
	Income   decimal.Decimal
	Expenses decimal.Decimal
}

// Cashflow is the annual series for one owner, always 12 entries.
type Cashflow struct {
	Year    int
	Entries [12]CashflowEntry
}

// CashflowTotals are derived from the entries, never queried separately.
type CashflowTotals struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Balance  decimal.Decimal
}

// MonthAmount is one aggregated row: an amount of a given type in a month.
type MonthAmount struct {
	Month  int
	Type   TransactionType
	Amount decimal.Decimal
}

// NewCashflow returns a zeroed series for year.
func NewCashflow(year int) Cashflow {
	cf := Cashflow{Year: year}
	for i := range cf.Entries {
		cf.Entries[i] = CashflowEntry{Month: i + 1, Income: decimal.Zero, Expenses: decimal.Zero}
	}
	return cf
}

// BuildCashflow folds rows into a 12-entry series. Rows with a month outside
// 1-12 or an unknown type are ignored.
func BuildCashflow(year int, rows []MonthAmount) Cashflow {
	cf := NewCashflow(year)
	for _, r := range rows {
		if r.Month < 1 || r.Month > 12 {
			continue
		}
		e := &cf.Entries[r.Month-1]
		switch r.Type {
		case Income:
			e.Income = e.Income.Add(r.Amount)
		case Expense:
			e.Expenses = e.Expenses.Add(r.Amount)
		}
	}
	return cf
}

// Totals sums the 12 entries.
func (c Cashflow) Totals() CashflowTotals {
	t := CashflowTotals{Income: decimal.Zero, Expenses: decimal.Zero}
	for _, e := range c.Entries {
		t.Income = t.Income.Add(e.Income)
		t.Expenses = t.Expenses.Add(e.Expenses)
	}
	t.Balance = t.Income.Sub(t.Expenses)
	return t
}
