package ports

import (
	"context"

	"nextcash/internal/core"
)

// Ports for outbound adapters. Every transaction method is scoped by owner.
type (
	TransactionWriter interface {
		InsertTransaction(ctx context.Context, t core.Transaction) (id int64, err error)
		// UpdateTransaction matches on (t.ID, t.OwnerID); zero affected rows is not an error.
		UpdateTransaction(ctx context.Context, t core.Transaction) (affected int64, err error)
		DeleteTransaction(ctx context.Context, ownerID string, id int64) (affected int64, err error)
	}

	TransactionReader interface {
		// GetTransaction returns core.ErrNotFound when the row is missing or foreign.
		GetTransaction(ctx context.Context, ownerID string, id int64) (core.TransactionWithCategory, error)
		ListMonth(ctx context.Context, ownerID string, year, month int) ([]core.TransactionWithCategory, error)
		Recent(ctx context.Context, ownerID string, limit int) ([]core.TransactionWithCategory, error)
		// EarliestYear reports the year of the owner's oldest transaction.
		EarliestYear(ctx context.Context, ownerID string) (year int, ok bool, err error)
	}

	CategoryReader interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
		GetCategory(ctx context.Context, id int64) (core.Category, error)
	}

	// CashflowReader provides per-month sums split by category type.
	CashflowReader interface {
		MonthAmounts(ctx context.Context, ownerID string, year int) ([]core.MonthAmount, error)
	}
)
