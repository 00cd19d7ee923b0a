package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"nextcash/internal/core"

	_ "modernc.org/sqlite"
)

// dsnPragmas are applied by the modernc driver on every new connection.
const dsnPragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ListCategories implements ports.CategoryReader
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, len(rows))
	for i, c := range rows {
		out[i] = toCategory(c)
	}
	return out, nil
}

// GetCategory implements ports.CategoryReader
func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	c, err := r.queries.GetCategory(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return toCategory(c), nil
}

// InsertTransaction implements ports.TransactionWriter
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	id, err := r.queries.InsertTransaction(ctx, InsertTransactionParams{
		UserID:          t.OwnerID,
		CategoryID:      t.CategoryID,
		Amount:          t.Amount.String(),
		TransactionDate: t.Date.String(),
		Description:     t.Description,
	})
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"category_id", t.CategoryID,
		"date", t.Date.String())

	return id, nil
}

// UpdateTransaction implements ports.TransactionWriter
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	n, err := r.queries.UpdateTransaction(ctx, UpdateTransactionParams{
		CategoryID:      t.CategoryID,
		Amount:          t.Amount.String(),
		TransactionDate: t.Date.String(),
		Description:     t.Description,
		ID:              t.ID,
		UserID:          t.OwnerID,
	})
	if err != nil {
		return 0, fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	return n, nil
}

// DeleteTransaction implements ports.TransactionWriter
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, ownerID string, id int64) (int64, error) {
	n, err := r.queries.DeleteTransaction(ctx, id, ownerID)
	if err != nil {
		return 0, fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return n, nil
}

// GetTransaction implements ports.TransactionReader
func (r *SQLiteRepository) GetTransaction(ctx context.Context, ownerID string, id int64) (core.TransactionWithCategory, error) {
	row, err := r.queries.GetTransaction(ctx, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.TransactionWithCategory{}, core.ErrNotFound
	}
	if err != nil {
		return core.TransactionWithCategory{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return toTransaction(row)
}

// ListMonth implements ports.TransactionReader
func (r *SQLiteRepository) ListMonth(ctx context.Context, ownerID string, year, month int) ([]core.TransactionWithCategory, error) {
	from := core.NewDate(year, month, 1)
	to := core.Date{Time: from.AddDate(0, 1, 0)}
	rows, err := r.queries.ListTransactionsBetween(ctx, ownerID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("list transactions for %d-%02d: %w", year, month, err)
	}
	return toTransactions(rows)
}

// Recent implements ports.TransactionReader
func (r *SQLiteRepository) Recent(ctx context.Context, ownerID string, limit int) ([]core.TransactionWithCategory, error) {
	rows, err := r.queries.ListRecentTransactions(ctx, ownerID, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list recent transactions: %w", err)
	}
	return toTransactions(rows)
}

// EarliestYear implements ports.TransactionReader
func (r *SQLiteRepository) EarliestYear(ctx context.Context, ownerID string) (int, bool, error) {
	d, err := r.queries.EarliestTransactionDate(ctx, ownerID)
	if err != nil {
		return 0, false, fmt.Errorf("get earliest transaction date: %w", err)
	}
	if !d.Valid {
		return 0, false, nil
	}
	date, err := core.ParseDate(d.String)
	if err != nil {
		return 0, false, fmt.Errorf("parse stored date %q: %w", d.String, err)
	}
	return date.Year(), true, nil
}

// MonthAmounts implements ports.CashflowReader
func (r *SQLiteRepository) MonthAmounts(ctx context.Context, ownerID string, year int) ([]core.MonthAmount, error) {
	from := core.NewDate(year, 1, 1)
	to := core.NewDate(year+1, 1, 1)
	rows, err := r.queries.ListMonthAmounts(ctx, ownerID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("list month amounts for %d: %w", year, err)
	}
	out := make([]core.MonthAmount, len(rows))
	for i, row := range rows {
		amount, err := decimal.NewFromString(row.Amount)
		if err != nil {
			return nil, fmt.Errorf("parse stored amount %q: %w", row.Amount, err)
		}
		out[i] = core.MonthAmount{
			Month:  int(row.Month),
			Type:   core.TransactionType(row.Type),
			Amount: amount,
		}
	}
	return out, nil
}

func toCategory(c Category) core.Category {
	return core.Category{ID: c.ID, Name: c.Name, Type: core.TransactionType(c.Type)}
}

func toTransaction(row TransactionRow) (core.TransactionWithCategory, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.TransactionWithCategory{}, fmt.Errorf("parse stored amount of %d: %w", row.ID, err)
	}
	date, err := core.ParseDate(row.TransactionDate)
	if err != nil {
		return core.TransactionWithCategory{}, fmt.Errorf("parse stored date of %d: %w", row.ID, err)
	}
	return core.TransactionWithCategory{
		Transaction: core.Transaction{
			ID:          row.ID,
			OwnerID:     row.UserID,
			CategoryID:  row.CategoryID,
			Date:        date,
			Amount:      amount,
			Description: row.Description,
		},
		CategoryName: row.CategoryName,
		CategoryType: core.TransactionType(row.CategoryType),
	}, nil
}

func toTransactions(rows []TransactionRow) ([]core.TransactionWithCategory, error) {
	out := make([]core.TransactionWithCategory, 0, len(rows))
	for _, row := range rows {
		t, err := toTransaction(row)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
