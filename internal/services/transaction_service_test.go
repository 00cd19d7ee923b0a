package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"nextcash/internal/auth"
	"nextcash/internal/core"
	"nextcash/internal/memory"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// Category ids from memory.DefaultCategories.
const (
	salaryID    = 1
	groceriesID = 5
)

func asUser(id string) context.Context {
	return auth.WithIdentity(context.Background(), auth.Identity{UserID: id})
}

func newService(store TransactionStore) *TransactionService {
	s := NewTransactionService(store, auth.ContextResolver{}, nil)
	s.now = func() time.Time { return fixedNow }
	return s
}

func input(typ string, cat, date, amount, desc string) url.Values {
	return url.Values{
		core.FieldTransactionType: {typ},
		core.FieldCategoryID:      {cat},
		core.FieldTransactionDate: {date},
		core.FieldAmount:          {amount},
		core.FieldDescription:     {desc},
	}
}

func expectKind(t *testing.T, err error, kind core.ErrorKind, msg string) {
	t.Helper()
	if core.KindOf(err) != kind {
		t.Fatalf("expected %s error, got %v", kind, err)
	}
	if msg != "" && core.MessageOf(err) != msg {
		t.Fatalf("expected message %q, got %q", msg, core.MessageOf(err))
	}
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	store := memory.New(memory.DefaultCategories)
	s := newService(store)
	ctx := asUser("alice")

	id, err := s.Create(ctx, input("expense", "5", "2025-06-14", "23,45", "Farmers market"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Amount.Equal(decimal.RequireFromString("23.45")) || got.Description != "Farmers market" ||
		got.CategoryID != groceriesID || got.Date.String() != "2025-06-14" {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	if _, err := s.Get(asUser("bob"), id); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign get should be not found, got %v", err)
	}
}

func TestMutationsRequireIdentity(t *testing.T) {
	store := memory.New(memory.DefaultCategories)
	s := newService(store)
	anon := context.Background()

	_, err := s.Create(anon, input("bogus", "", "", "", ""))
	expectKind(t, err, core.KindUnauthorized, core.MsgUnauthorized)
	expectKind(t, s.Update(anon, 1, input("income", "1", "2025-06-01", "1", "abc")), core.KindUnauthorized, core.MsgUnauthorized)
	expectKind(t, s.Delete(anon, 1), core.KindUnauthorized, core.MsgUnauthorized)

	_, err = s.Get(anon, 1)
	expectKind(t, err, core.KindUnauthorized, "")
	_, err = s.ListMonth(anon, 2025, 6)
	expectKind(t, err, core.KindUnauthorized, "")
	_, err = s.Recent(anon, 5)
	expectKind(t, err, core.KindUnauthorized, "")
	_, err = s.YearsRange(anon, 2025)
	expectKind(t, err, core.KindUnauthorized, "")

	if items, _ := store.Recent(context.Background(), "", 10); len(items) != 0 {
		t.Fatalf("anonymous calls must not write")
	}
}

func TestCreateValidationWritesNothing(t *testing.T) {
	tests := []struct {
		name string
		in   url.Values
		msg  string
	}{
		{"short description", input("expense", "5", "2025-06-14", "10", "ab"), core.MsgDescriptionTooShort},
		{"long description", input("expense", "5", "2025-06-14", "10", strings.Repeat("x", 301)), core.MsgDescriptionTooLong},
		{"future date", input("expense", "5", "2025-06-17", "10", "Concert"), core.MsgFutureDate},
		{"zero amount", input("expense", "5", "2025-06-14", "0", "Concert"), core.MsgAmountPositive},
		{"no category", input("expense", "0", "2025-06-14", "10", "Concert"), core.MsgSelectCategory},
		{"unknown category", input("expense", "999", "2025-06-14", "10", "Concert"), core.MsgSelectCategory},
		{"category of other type", input("income", "5", "2025-06-14", "10", "Concert"), core.MsgSelectCategory},
		{"bad type", input("gift", "5", "2025-06-14", "10", "Concert"), core.MsgInvalidType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New(memory.DefaultCategories)
			s := newService(store)
			_, err := s.Create(asUser("alice"), tt.in)
			expectKind(t, err, core.KindValidation, tt.msg)
			if items, _ := store.Recent(context.Background(), "alice", 10); len(items) != 0 {
				t.Fatalf("validation failure must not write, got %d rows", len(items))
			}
		})
	}
}

func TestCreateAcceptsTomorrow(t *testing.T) {
	s := newService(memory.New(memory.DefaultCategories))
	if _, err := s.Create(asUser("alice"), input("income", "1", "2025-06-16", "10", "Advance")); err != nil {
		t.Fatalf("today+1 should be accepted: %v", err)
	}
}

func TestForeignUpdateAndDeleteAreNoOps(t *testing.T) {
	store := memory.New(memory.DefaultCategories)
	s := newService(store)
	id, err := s.Create(asUser("alice"), input("income", "1", "2025-06-01", "1000", "June salary"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.Update(asUser("bob"), id, input("income", "1", "2025-06-02", "1", "Changed")); err != nil {
		t.Fatalf("foreign update should succeed silently: %v", err)
	}
	if err := s.Delete(asUser("bob"), id); err != nil {
		t.Fatalf("foreign delete should succeed silently: %v", err)
	}
	got, err := s.Get(asUser("alice"), id)
	if err != nil || got.Description != "June salary" || !got.Amount.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("row must be untouched: %+v %v", got, err)
	}

	if err := s.Update(asUser("alice"), id, input("income", "2", "2025-06-02", "1100", "June salary, revised")); err != nil {
		t.Fatalf("owner update: %v", err)
	}
	got, _ = s.Get(asUser("alice"), id)
	if got.CategoryID != 2 || got.Description != "June salary, revised" {
		t.Fatalf("update not applied: %+v", got)
	}

	if err := s.Delete(asUser("alice"), id); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := s.Get(asUser("alice"), id); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected deleted, got %v", err)
	}
	if err := s.Delete(asUser("alice"), id); err != nil {
		t.Fatalf("deleting a missing row is a no-op: %v", err)
	}
}

func TestUpdateValidation(t *testing.T) {
	store := memory.New(memory.DefaultCategories)
	s := newService(store)
	id, _ := s.Create(asUser("alice"), input("expense", "5", "2025-06-01", "10", "Lunch"))

	err := s.Update(asUser("alice"), id, input("expense", "5", "2025-06-01", "-3", "Lunch"))
	expectKind(t, err, core.KindValidation, core.MsgAmountPositive)
	got, _ := s.Get(asUser("alice"), id)
	if !got.Amount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("failed update must not write: %+v", got)
	}
}

type failingStore struct {
	*memory.Store
}

var errDisk = errors.New("disk I/O error")

func (failingStore) InsertTransaction(context.Context, core.Transaction) (int64, error) {
	return 0, errDisk
}

func (failingStore) DeleteTransaction(context.Context, string, int64) (int64, error) {
	return 0, errDisk
}

func (failingStore) ListMonth(context.Context, string, int, int) ([]core.TransactionWithCategory, error) {
	return nil, errDisk
}

func TestStorageFailuresAreInternal(t *testing.T) {
	s := newService(failingStore{memory.New(memory.DefaultCategories)})
	ctx := asUser("alice")

	_, err := s.Create(ctx, input("income", "1", "2025-06-01", "10", "Salary"))
	expectKind(t, err, core.KindInternal, core.MsgInternal)
	if !errors.Is(err, errDisk) {
		t.Fatalf("cause should be kept for logging: %v", err)
	}
	expectKind(t, s.Delete(ctx, 1), core.KindInternal, core.MsgInternal)
	_, err = s.ListMonth(ctx, 2025, 6)
	expectKind(t, err, core.KindInternal, core.MsgInternal)
}

func TestListMonthAndRecent(t *testing.T) {
	s := newService(memory.New(memory.DefaultCategories))
	ctx := asUser("alice")
	for i, d := range []string{"2025-05-31", "2025-06-01", "2025-06-02", "2025-06-03", "2025-06-04", "2025-06-05", "2025-06-06"} {
		if _, err := s.Create(ctx, input("expense", "5", d, "1", "Item "+string(rune('A'+i)))); err != nil {
			t.Fatalf("create %s: %v", d, err)
		}
	}
	s.Create(asUser("bob"), input("expense", "5", "2025-06-07", "1", "Bob's"))

	june, err := s.ListMonth(ctx, 2025, 6)
	if err != nil || len(june) != 6 {
		t.Fatalf("expected 6 june rows, got %d (%v)", len(june), err)
	}
	recent, err := s.Recent(ctx, 0)
	if err != nil || len(recent) != RecentLimit || recent[0].Description != "Item G" {
		t.Fatalf("unexpected recent: %+v %v", recent, err)
	}
}

func TestYearsRange(t *testing.T) {
	s := newService(memory.New(memory.DefaultCategories))
	ctx := asUser("alice")

	years, err := s.YearsRange(ctx, 0)
	if err != nil || len(years) != 1 || years[0] != 2025 {
		t.Fatalf("no data should list only the current year: %v %v", years, err)
	}

	s.Create(ctx, input("income", "1", "2022-03-01", "1", "Old salary"))
	years, _ = s.YearsRange(ctx, 2025)
	if len(years) != 4 || years[0] != 2025 || years[3] != 2022 {
		t.Fatalf("unexpected years: %v", years)
	}

	years, _ = s.YearsRange(ctx, 2019)
	if years[len(years)-1] != 2019 {
		t.Fatalf("selected year must be included: %v", years)
	}
}

func TestYearSpan(t *testing.T) {
	tests := []struct {
		earliest, latest, selected int
		want                       []int
	}{
		{2025, 2025, 2025, []int{2025}},
		{2023, 2025, 0, []int{2025, 2024, 2023}},
		{2024, 2025, 2027, []int{2027, 2026, 2025, 2024}},
		{2025, 2025, 2024, []int{2025, 2024}},
	}
	for _, tt := range tests {
		got := YearSpan(tt.earliest, tt.latest, tt.selected)
		if len(got) != len(tt.want) {
			t.Fatalf("YearSpan(%d,%d,%d)=%v, want %v", tt.earliest, tt.latest, tt.selected, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Fatalf("YearSpan(%d,%d,%d)=%v, want %v", tt.earliest, tt.latest, tt.selected, got, tt.want)
			}
		}
	}
}
