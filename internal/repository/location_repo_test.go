package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/caden/captionator/internal/config"
	"github.com/caden/captionator/internal/domain"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := InitDB(&config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		AutoMigrate:  true,
	})
	if err != nil {
		t.Fatalf("failed to init test database: %v", err)
	}
	return db
}

func TestLocationRepository_FindByAddress(t *testing.T) {
	repo := NewLocationRepository(testDB(t))
	ctx := context.Background()

	// Miss returns (nil, nil), not an error
	loc, err := repo.FindByAddress(ctx, "nowhere")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc != nil {
		t.Fatalf("expected nil for missing address, got %+v", loc)
	}

	want := &domain.Location{
		Address:  "10 Park Ln, Dayton, OH",
		City:     "Dayton",
		State:    "OH",
		Research: "narrative",
	}
	if err := repo.Create(ctx, want); err != nil {
		t.Fatalf("failed to create location: %v", err)
	}

	loc, err = repo.FindByAddress(ctx, want.Address)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc == nil || loc.City != "Dayton" || loc.State != "OH" {
		t.Errorf("unexpected location %+v", loc)
	}
}

func TestLocationRepository_Create_DuplicateAddress(t *testing.T) {
	repo := NewLocationRepository(testDB(t))
	ctx := context.Background()

	first := &domain.Location{Address: "10 Park Ln, Dayton, OH", City: "Dayton", State: "OH"}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("failed to create location: %v", err)
	}

	dup := &domain.Location{Address: "10 Park Ln, Dayton, OH", City: "Dayton", State: "OH"}
	if err := repo.Create(ctx, dup); err == nil {
		t.Error("expected duplicate address insert to fail")
	}
}

func TestLocationRepository_Upsert(t *testing.T) {
	repo := NewLocationRepository(testDB(t))
	ctx := context.Background()

	loc := &domain.Location{
		Address:  "10 Park Ln, Dayton, OH",
		City:     "Dayton",
		State:    "OH",
		Research: "first pass",
	}
	if err := repo.Upsert(ctx, loc); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}

	updated := &domain.Location{
		Address:  "10 Park Ln, Dayton, OH",
		City:     "Dayton",
		State:    "OH",
		IsRural:  true,
		Research: "second pass",
	}
	if err := repo.Upsert(ctx, updated); err != nil {
		t.Fatalf("failed to upsert update: %v", err)
	}

	stored, err := repo.FindByAddress(ctx, loc.Address)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Research != "second pass" {
		t.Errorf("expected research updated, got %q", stored.Research)
	}
	if !stored.IsRural {
		t.Error("expected is_rural updated")
	}

	var count int64
	if err := repo.db.Model(&domain.Location{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 row after upsert, got %d", count)
	}
}

func TestLocationRepository_ListResearched(t *testing.T) {
	repo := NewLocationRepository(testDB(t))
	ctx := context.Background()

	rows := []*domain.Location{
		{Address: "1 A St, Youngstown, OH", City: "Youngstown", State: "OH", Research: "done"},
		{Address: "2 B St, Akron, OH", City: "Akron", State: "OH", Research: "done"},
		{Address: "3 C St, Dayton, OH", City: "Dayton", State: "OH"}, // research pending
	}
	for _, row := range rows {
		if err := repo.Create(ctx, row); err != nil {
			t.Fatalf("failed to create location: %v", err)
		}
	}

	got, err := repo.ListResearched(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 researched locations, got %d", len(got))
	}
	if got[0].City != "Akron" || got[1].City != "Youngstown" {
		t.Errorf("expected city-ascending order, got %s then %s", got[0].City, got[1].City)
	}
}

func TestLocationRepository_Delete(t *testing.T) {
	repo := NewLocationRepository(testDB(t))
	ctx := context.Background()

	loc := &domain.Location{Address: "10 Park Ln, Dayton, OH", City: "Dayton", State: "OH"}
	if err := repo.Create(ctx, loc); err != nil {
		t.Fatalf("failed to create location: %v", err)
	}

	if err := repo.Delete(ctx, loc.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := repo.Delete(ctx, loc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}

	if _, err := repo.GetByID(ctx, loc.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound from GetByID, got %v", err)
	}
}
