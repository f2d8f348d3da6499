package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/vitaeworks/vitae/core"
	"github.com/vitaeworks/vitae/storage"
)

func TestCategoryBasics(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	ctx := context.Background()
	owner := core.ID(42)

	added, err := stores.Categories.AddCategories(ctx,
		&core.Category{OwnerId: owner, Name: "Publications"},
		&core.Category{OwnerId: owner, Name: "Education"},
	)
	if err != nil {
		t.Fatalf("Failed to add categories: %v", err)
	}
	if len(added) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(added))
	}
	if added[0].Id == 0 || added[1].Id == 0 {
		t.Fatal("Expected non-zero IDs")
	}
	if added[0].DisplayOrder != 1 || added[1].DisplayOrder != 2 {
		t.Fatalf("Expected orders 1,2, got %d,%d", added[0].DisplayOrder, added[1].DisplayOrder)
	}

	retrieved, err := stores.Categories.GetCategory(ctx, added[0].Id)
	if err != nil {
		t.Fatalf("Failed to get category: %v", err)
	}
	if retrieved.Name != "Publications" {
		t.Fatalf("Expected 'Publications', got '%s'", retrieved.Name)
	}
}

func TestCategoryNameLookupIsCaseInsensitive(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	ctx := context.Background()
	owner := core.ID(7)

	if _, err := stores.Categories.AddCategories(ctx,
		&core.Category{OwnerId: owner, Name: "Awards"}); err != nil {
		t.Fatalf("Failed to add category: %v", err)
	}

	found, err := stores.Categories.FindCategoryByName(ctx, owner, "AWARDS")
	if err != nil {
		t.Fatalf("Failed to find category: %v", err)
	}
	if found.Name != "Awards" {
		t.Fatalf("Expected stored casing 'Awards', got '%s'", found.Name)
	}

	// Different owner must not see it
	_, err = stores.Categories.FindCategoryByName(ctx, core.ID(8), "awards")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for other owner, got %v", err)
	}
}

func TestCategoryOrdersContinuePerOwner(t *testing.T) {
	stores, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer stores.Close()

	ctx := context.Background()

	if _, err := stores.Categories.AddCategories(ctx,
		&core.Category{OwnerId: 1, Name: "Talks"}); err != nil {
		t.Fatalf("Failed to add category: %v", err)
	}
	added, err := stores.Categories.AddCategories(ctx,
		&core.Category{OwnerId: 1, Name: "Grants"},
		&core.Category{OwnerId: 2, Name: "Grants"},
	)
	if err != nil {
		t.Fatalf("Failed to add categories: %v", err)
	}

	if added[0].DisplayOrder != 2 {
		t.Fatalf("Expected order 2 for second category of owner 1, got %d", added[0].DisplayOrder)
	}
	if added[1].DisplayOrder != 1 {
		t.Fatalf("Expected order 1 for first category of owner 2, got %d", added[1].DisplayOrder)
	}

	listed, err := stores.Categories.GetCategoriesByOwner(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to list categories: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("Expected 2 categories for owner 1, got %d", len(listed))
	}
	if listed[0].Name != "Talks" || listed[1].Name != "Grants" {
		t.Fatalf("Expected display order listing, got %s, %s", listed[0].Name, listed[1].Name)
	}
}
