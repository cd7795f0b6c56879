package models

import "time"

// Club represents a student club.
//
// LeaderID is a denormalized pointer to the user holding the club's single
// LEADER membership row. It is written only by the leadership coordinator,
// which keeps it consistent with the memberships table: non-nil iff exactly
// one membership row for this club has role LEADER, and then it equals that
// row's user ID.
type Club struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	LeaderID    *int64    `json:"leaderId,omitempty" db:"leader_id"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

	// Related entities
	Leader  *User         `json:"leader,omitempty"`
	Members []*Membership `json:"members,omitempty"`
}

// Membership represents a user's membership in a club
type Membership struct {
	ID       int64            `json:"id" db:"id"`
	UserID   int64            `json:"userId" db:"user_id"`
	ClubID   int64            `json:"clubId" db:"club_id"`
	Role     MembershipRole   `json:"role" db:"role"`
	Status   MembershipStatus `json:"status" db:"status"`
	JoinDate time.Time        `json:"joinDate" db:"join_date"`

	// Related entities
	User *User `json:"user,omitempty"`
}
