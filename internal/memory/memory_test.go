package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"nextcash/internal/core"
)

func tx(owner string, cat int64, date core.Date, amount, desc string) core.Transaction {
	return core.Transaction{
		OwnerID:     owner,
		CategoryID:  cat,
		Date:        date,
		Amount:      decimal.RequireFromString(amount),
		Description: desc,
	}
}

func TestMemoryStoreInsertGet(t *testing.T) {
	s := New(DefaultCategories)
	ctx := context.Background()

	id, err := s.InsertTransaction(ctx, tx("alice", 5, core.NewDate(2025, 4, 1), "42.10", "Weekly shop"))
	if err != nil || id != 1 {
		t.Fatalf("unexpected insert: id=%d err=%v", id, err)
	}
	got, err := s.GetTransaction(ctx, "alice", id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CategoryName != "Groceries" || got.CategoryType != core.Expense || got.Amount.String() != "42.1" {
		t.Fatalf("unexpected row: %+v", got)
	}
	if _, err := s.GetTransaction(ctx, "bob", id); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found for foreign owner, got %v", err)
	}
	if _, err := s.InsertTransaction(ctx, tx("alice", 999, core.NewDate(2025, 4, 1), "1", "Unknown")); err == nil {
		t.Fatalf("expected unknown category to be rejected")
	}
}

func TestMemoryStoreScopedWrites(t *testing.T) {
	s := New(DefaultCategories)
	ctx := context.Background()
	id, _ := s.InsertTransaction(ctx, tx("alice", 1, core.NewDate(2025, 1, 1), "10", "Salary"))

	changed := tx("bob", 1, core.NewDate(2025, 1, 2), "99", "Stolen")
	changed.ID = id
	if n, err := s.UpdateTransaction(ctx, changed); err != nil || n != 0 {
		t.Fatalf("foreign update: n=%d err=%v", n, err)
	}
	if n, err := s.DeleteTransaction(ctx, "bob", id); err != nil || n != 0 {
		t.Fatalf("foreign delete: n=%d err=%v", n, err)
	}
	if n, err := s.DeleteTransaction(ctx, "alice", id); err != nil || n != 1 {
		t.Fatalf("owner delete: n=%d err=%v", n, err)
	}
	if n, _ := s.DeleteTransaction(ctx, "alice", id); n != 0 {
		t.Fatalf("second delete should match nothing")
	}
}

func TestMemoryStoreOrderingAndYears(t *testing.T) {
	s := New(DefaultCategories)
	ctx := context.Background()
	s.InsertTransaction(ctx, tx("alice", 5, core.NewDate(2022, 6, 1), "1", "Old"))
	s.InsertTransaction(ctx, tx("alice", 5, core.NewDate(2025, 6, 3), "2", "Third"))
	s.InsertTransaction(ctx, tx("alice", 5, core.NewDate(2025, 6, 3), "3", "Third again"))
	s.InsertTransaction(ctx, tx("alice", 1, core.NewDate(2025, 6, 1), "4", "First"))

	june, _ := s.ListMonth(ctx, "alice", 2025, 6)
	if len(june) != 3 || june[0].Description != "Third again" || june[2].Description != "First" {
		t.Fatalf("unexpected june order: %+v", june)
	}
	recent, _ := s.Recent(ctx, "alice", 2)
	if len(recent) != 2 || recent[1].Description != "Third" {
		t.Fatalf("unexpected recent: %+v", recent)
	}
	if y, ok, _ := s.EarliestYear(ctx, "alice"); !ok || y != 2022 {
		t.Fatalf("unexpected earliest year %d %v", y, ok)
	}
	if _, ok, _ := s.EarliestYear(ctx, "bob"); ok {
		t.Fatalf("bob has no transactions")
	}

	rows, _ := s.MonthAmounts(ctx, "alice", 2025)
	cf := core.BuildCashflow(2025, rows)
	if !cf.Entries[5].Income.Equal(decimal.NewFromInt(4)) || !cf.Entries[5].Expenses.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("unexpected june cashflow: %+v", cf.Entries[5])
	}
}

func TestNewFromFilesSeeds(t *testing.T) {
	dir := t.TempDir()
	s := NewFromFiles(dir)
	cats, _ := s.ListCategories(context.Background())
	if len(cats) != len(DefaultCategories) {
		t.Fatalf("expected defaults when file missing")
	}

	content := "# comment\nincome: Pension\n\nexpense:Rent\nbogus:Nope\nexpense:\n"
	if err := os.WriteFile(filepath.Join(dir, "seed_categories.txt"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	s = NewFromFiles(dir)
	cats, _ = s.ListCategories(context.Background())
	if len(cats) != 2 {
		t.Fatalf("unexpected categories: %+v", cats)
	}
	if cats[0].Name != "Rent" || cats[0].ID != 2 || cats[1].Name != "Pension" || cats[1].Type != core.Income {
		t.Fatalf("unexpected categories: %+v", cats)
	}
}
