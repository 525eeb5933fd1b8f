package store

import "testing"

func setupRewardTest(t *testing.T) (*RewardStore, int64) {
	t.Helper()
	db := setupTestDB(t)
	child, err := NewChildStore(db).Create("Ada", "#FF0000", "")
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	return NewRewardStore(db), child.ID
}

func TestRewardLedgerBalance(t *testing.T) {
	rs, childID := setupRewardTest(t)

	if err := rs.Credit(childID, 5, 1, "task:Make bed"); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := rs.Credit(childID, 3, 0, "task:Dishes"); err != nil {
		t.Fatalf("credit: %v", err)
	}
	// Spending is a negative entry, not an update.
	if err := rs.Credit(childID, 0, -1, "spend:Sticker"); err != nil {
		t.Fatalf("debit: %v", err)
	}

	balance, err := rs.Balance(childID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Stars != 8 {
		t.Errorf("stars = %d, want 8", balance.Stars)
	}
	if balance.Gems != 0 {
		t.Errorf("gems = %d, want 0", balance.Gems)
	}
}

func TestRewardZeroCreditIsNoop(t *testing.T) {
	rs, childID := setupRewardTest(t)

	if err := rs.Credit(childID, 0, 0, "nothing"); err != nil {
		t.Fatalf("credit: %v", err)
	}

	entries, err := rs.ListEntries(childID, 10)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no ledger entries, got %d", len(entries))
	}
}

func TestRewardListEntriesNewestFirst(t *testing.T) {
	rs, childID := setupRewardTest(t)

	rs.Credit(childID, 1, 0, "first")
	rs.Credit(childID, 2, 0, "second")
	rs.Credit(childID, 3, 0, "third")

	entries, err := rs.ListEntries(childID, 2)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries with limit, got %d", len(entries))
	}
	if entries[0].Source != "third" || entries[1].Source != "second" {
		t.Errorf("order = %q, %q, want third, second", entries[0].Source, entries[1].Source)
	}
}
