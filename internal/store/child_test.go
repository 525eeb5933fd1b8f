package store

import (
	"database/sql"
	"testing"

	"github.com/marlowe/tally/internal/database"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestChildCRUD(t *testing.T) {
	cs := NewChildStore(setupTestDB(t))

	// Create
	child, err := cs.Create("Ada", "#FF0000", "🦊")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	if child.Name != "Ada" {
		t.Errorf("name = %q, want %q", child.Name, "Ada")
	}
	if child.SortOrder != 0 {
		t.Errorf("sort_order = %d, want 0", child.SortOrder)
	}

	// Get
	got, err := cs.GetByID(child.ID)
	if err != nil {
		t.Fatalf("get child: %v", err)
	}
	if got.AvatarEmoji != "🦊" {
		t.Errorf("avatar = %q, want %q", got.AvatarEmoji, "🦊")
	}

	// Update
	updated, err := cs.Update(child.ID, "Ada Lovelace", "#00FF00", "🦉")
	if err != nil {
		t.Fatalf("update child: %v", err)
	}
	if updated.Name != "Ada Lovelace" {
		t.Errorf("updated name = %q, want %q", updated.Name, "Ada Lovelace")
	}

	// Delete
	if err := cs.Delete(child.ID); err != nil {
		t.Fatalf("delete child: %v", err)
	}
	got, err = cs.GetByID(child.ID)
	if err != nil {
		t.Fatalf("get deleted child: %v", err)
	}
	if got != nil {
		t.Error("expected nil for deleted child")
	}
}

func TestChildGetByIDNotFound(t *testing.T) {
	cs := NewChildStore(setupTestDB(t))

	got, err := cs.GetByID(9999)
	if err != nil {
		t.Fatalf("get child: %v", err)
	}
	if got != nil {
		t.Error("expected nil for nonexistent child")
	}
}

func TestChildSortOrder(t *testing.T) {
	cs := NewChildStore(setupTestDB(t))

	ada, _ := cs.Create("Ada", "#FF0000", "")
	ben, _ := cs.Create("Ben", "#00FF00", "")
	cleo, _ := cs.Create("Cleo", "#0000FF", "")

	if err := cs.UpdateSortOrder([]int64{cleo.ID, ada.ID, ben.ID}); err != nil {
		t.Fatalf("update sort order: %v", err)
	}

	children, err := cs.List()
	if err != nil {
		t.Fatalf("list children: %v", err)
	}
	if len(children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(children))
	}

	want := []string{"Cleo", "Ada", "Ben"}
	for i, name := range want {
		if children[i].Name != name {
			t.Errorf("children[%d].Name = %q, want %q", i, children[i].Name, name)
		}
	}
}
