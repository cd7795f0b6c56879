package models

import "time"

// PointEntryKind distinguishes ledger credits from debits
type PointEntryKind string

const (
	PointEntryAward  PointEntryKind = "AWARD"
	PointEntryRedeem PointEntryKind = "REDEEM"
)

// PointAccount holds a user's current points balance
type PointAccount struct {
	UserID    int64     `json:"userId" db:"user_id"`
	Balance   int64     `json:"balance" db:"balance"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// PointEntry is one immutable row in the points ledger
type PointEntry struct {
	ID        int64          `json:"id" db:"id"`
	UserID    int64          `json:"userId" db:"user_id"`
	Kind      PointEntryKind `json:"kind" db:"kind"`
	Amount    int64          `json:"amount" db:"amount"`
	Reason    string         `json:"reason" db:"reason"`
	CreatedBy int64          `json:"createdBy" db:"created_by"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
}
