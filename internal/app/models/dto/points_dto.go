package dto

import "time"

// AwardPointsRequest credits points to a user
type AwardPointsRequest struct {
	UserID int64  `json:"userId" binding:"required"`
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Reason string `json:"reason" binding:"required,max=500"`
}

// RedeemPointsRequest debits points from the caller's balance
type RedeemPointsRequest struct {
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Reason string `json:"reason" binding:"required,max=500"`
}

// PointBalanceResponse reports a user's current balance
type PointBalanceResponse struct {
	UserID  int64 `json:"userId"`
	Balance int64 `json:"balance"`
}

// PointEntryResponse is one ledger row
type PointEntryResponse struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}

// MarkNoticesReadRequest marks feed items of one kind as read
type MarkNoticesReadRequest struct {
	Kind string  `json:"kind" binding:"required,oneof=RESERVATION REJECTION"`
	IDs  []int64 `json:"ids" binding:"required,min=1"`
}
