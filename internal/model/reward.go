package model

import "time"

// RewardEntry is one row of the append-only reward ledger. Balances are sums
// over the ledger; spending is recorded as negative amounts.
type RewardEntry struct {
	ID        int64     `json:"id"`
	ChildID   int64     `json:"child_id"`
	Stars     int       `json:"stars"`
	Gems      int       `json:"gems"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

type Balance struct {
	ChildID int64 `json:"child_id"`
	Stars   int   `json:"stars"`
	Gems    int   `json:"gems"`
}
