package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"nextcash/internal/core"
)

// Store is an in-process database for development and tests.
type Store struct {
	mu     sync.Mutex
	cats   []core.Category
	items  []core.Transaction
	nextID int64
}

// DefaultCategories mirror the seed migration of the SQLite backend.
var DefaultCategories = []core.Category{
	{ID: 1, Name: "Salary", Type: core.Income},
	{ID: 2, Name: "Freelance", Type: core.Income},
	{ID: 3, Name: "Other income", Type: core.Income},
	{ID: 4, Name: "Housing", Type: core.Expense},
	{ID: 5, Name: "Groceries", Type: core.Expense},
	{ID: 6, Name: "Transport", Type: core.Expense},
	{ID: 7, Name: "Other expenses", Type: core.Expense},
}

func New(cats []core.Category) *Store {
	sorted := append([]core.Category(nil), cats...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Type != sorted[j].Type {
			return sorted[i].Type < sorted[j].Type
		}
		return sorted[i].Name < sorted[j].Name
	})
	return &Store{cats: sorted}
}

// NewFromFiles seeds categories from base/seed_categories.txt, one
// "type:name" per line. Ids follow line order. Missing or empty files fall
// back to DefaultCategories.
func NewFromFiles(base string) *Store {
	var cats []core.Category
	for _, line := range readLines(filepath.Join(base, "seed_categories.txt")) {
		typ, name, ok := strings.Cut(line, ":")
		t := core.TransactionType(strings.TrimSpace(typ))
		name = strings.TrimSpace(name)
		if !ok || !t.Valid() || name == "" {
			continue
		}
		cats = append(cats, core.Category{ID: int64(len(cats) + 1), Name: name, Type: t})
	}
	if len(cats) == 0 {
		cats = DefaultCategories
	}
	return New(cats)
}

func (s *Store) Close() error { return nil }

func (s *Store) Ping(context.Context) error { return nil }

// ListCategories returns categories ordered by type then name.
func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category(nil), s.cats...), nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := core.FindCategory(s.cats, id); ok {
		return c, nil
	}
	return core.Category{}, core.ErrNotFound
}

func (s *Store) InsertTransaction(_ context.Context, t core.Transaction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := core.FindCategory(s.cats, t.CategoryID); !ok {
		return 0, core.ErrNotFound
	}
	s.nextID++
	t.ID = s.nextID
	s.items = append(s.items, t)
	return t.ID, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(t.OwnerID, t.ID)
	if i < 0 {
		return 0, nil
	}
	s.items[i] = t
	return 1, nil
}

func (s *Store) DeleteTransaction(_ context.Context, ownerID string, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(ownerID, id)
	if i < 0 {
		return 0, nil
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return 1, nil
}

func (s *Store) GetTransaction(_ context.Context, ownerID string, id int64) (core.TransactionWithCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(ownerID, id)
	if i < 0 {
		return core.TransactionWithCategory{}, core.ErrNotFound
	}
	return s.join(s.items[i]), nil
}

func (s *Store) ListMonth(_ context.Context, ownerID string, year, month int) ([]core.TransactionWithCategory, error) {
	return s.selectNewestFirst(ownerID, 0, func(t core.Transaction) bool {
		return t.Date.Year() == year && t.Date.MonthNumber() == month
	}), nil
}

func (s *Store) Recent(_ context.Context, ownerID string, limit int) ([]core.TransactionWithCategory, error) {
	return s.selectNewestFirst(ownerID, limit, func(core.Transaction) bool { return true }), nil
}

func (s *Store) EarliestYear(_ context.Context, ownerID string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	year, ok := 0, false
	for _, t := range s.items {
		if t.OwnerID != ownerID {
			continue
		}
		if !ok || t.Date.Year() < year {
			year, ok = t.Date.Year(), true
		}
	}
	return year, ok, nil
}

func (s *Store) MonthAmounts(_ context.Context, ownerID string, year int) ([]core.MonthAmount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.MonthAmount
	for _, t := range s.items {
		if t.OwnerID != ownerID || t.Date.Year() != year {
			continue
		}
		c, ok := core.FindCategory(s.cats, t.CategoryID)
		if !ok {
			continue
		}
		out = append(out, core.MonthAmount{Month: t.Date.MonthNumber(), Type: c.Type, Amount: t.Amount})
	}
	return out, nil
}

// indexOf must be called with mu held.
func (s *Store) indexOf(ownerID string, id int64) int {
	for i, t := range s.items {
		if t.ID == id && t.OwnerID == ownerID {
			return i
		}
	}
	return -1
}

func (s *Store) join(t core.Transaction) core.TransactionWithCategory {
	out := core.TransactionWithCategory{Transaction: t}
	if c, ok := core.FindCategory(s.cats, t.CategoryID); ok {
		out.CategoryName = c.Name
		out.CategoryType = c.Type
	}
	return out
}

// selectNewestFirst orders by date then id, both descending. limit <= 0 means all.
func (s *Store) selectNewestFirst(ownerID string, limit int, keep func(core.Transaction) bool) []core.TransactionWithCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.TransactionWithCategory{}
	for _, t := range s.items {
		if t.OwnerID == ownerID && keep(t) {
			out = append(out, s.join(t))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
