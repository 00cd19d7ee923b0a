package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"nextcash/internal/config"
	"nextcash/internal/core"
)

func TestFromAppConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		want    BackendType
		wantErr bool
	}{
		{"nil config", nil, "", true},
		{"sqlite", &config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db"}, SQLiteBackend, false},
		{"memory", &config.Config{DataBackend: "memory", MemorySeedDir: "seed"}, MemoryBackend, false},
		{"unsupported backend", &config.Config{DataBackend: "postgres"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAppConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromAppConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got.Type != tt.want {
				t.Errorf("FromAppConfig() type = %v, want %v", got.Type, tt.want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Type: SQLiteBackend}).Validate(); err == nil {
		t.Error("sqlite without path should fail")
	}
	if err := (Config{Type: "postgres"}).Validate(); err == nil {
		t.Error("unknown type should fail")
	}
	if err := (Config{Type: MemoryBackend}).Validate(); err != nil {
		t.Errorf("memory: %v", err)
	}
	if got := GetBackendTypeStrings(); len(got) != 2 || got[0] != "sqlite" || got[1] != "memory" {
		t.Errorf("GetBackendTypeStrings() = %v", got)
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(nil).CreateBackend(ctx, Config{Type: MemoryBackend})
	if err != nil {
		t.Fatal(err)
	}
	defer res.Cleanup()

	cats, err := res.Backend.ListCategories(ctx)
	if err != nil || len(cats) == 0 {
		t.Fatalf("ListCategories() = %d categories, %v", len(cats), err)
	}
	if err := res.Backend.Ping(ctx); err != nil {
		t.Errorf("Ping() = %v", err)
	}
}

func TestCreateMemoryBackendFromSeedDir(t *testing.T) {
	dir := t.TempDir()
	seed := "income:Bonus\nexpense:Rent\n"
	if err := os.WriteFile(filepath.Join(dir, "seed_categories.txt"), []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, MemorySeedDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	cats, _ := res.Backend.ListCategories(context.Background())
	if len(cats) != 2 {
		t.Fatalf("categories = %+v, want 2 seeded", cats)
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "nextcash.db")
	res, err := NewFactory(nil).CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatal(err)
	}
	defer res.Cleanup()

	if err := res.Backend.Ping(ctx); err != nil {
		t.Fatalf("Ping() = %v", err)
	}
	amounts, err := res.Backend.MonthAmounts(ctx, "nobody", 2025)
	if err != nil || len(amounts) != 0 {
		t.Fatalf("MonthAmounts() = %v, %v", amounts, err)
	}
	cats, err := res.Backend.ListCategories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var income int
	for _, c := range cats {
		if c.Type == core.Income {
			income++
		}
	}
	if income == 0 {
		t.Error("seed migration left no income categories")
	}
}
