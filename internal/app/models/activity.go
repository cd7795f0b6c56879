package models

import "time"

// ActivityStatus represents the lifecycle state of an activity
type ActivityStatus string

const (
	ActivityStatusPending   ActivityStatus = "PENDING"
	ActivityStatusApproved  ActivityStatus = "APPROVED"
	ActivityStatusRejected  ActivityStatus = "REJECTED"
	ActivityStatusCompleted ActivityStatus = "COMPLETED"
	ActivityStatusCancelled ActivityStatus = "CANCELLED"
)

// activityTransitions is the set of legal status edges. There are no
// reverse edges; only APPROVED activities accept enrollments.
var activityTransitions = map[ActivityStatus][]ActivityStatus{
	ActivityStatusPending:  {ActivityStatusApproved, ActivityStatusRejected},
	ActivityStatusApproved: {ActivityStatusCompleted, ActivityStatusCancelled},
}

// CanTransition reports whether the edge from -> to is legal.
func CanTransition(from, to ActivityStatus) bool {
	for _, next := range activityTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Activity represents a club activity/event.
//
// MaxParticipants = 0 means unlimited: the capacity check is skipped.
// ParticipantCount is a denormalized cache of the number of ACTIVE
// enrollment rows, written only inside the capacity guard's transaction.
type Activity struct {
	ID               int64          `json:"id" db:"id"`
	ClubID           int64          `json:"clubId" db:"club_id"`
	Title            string         `json:"title" db:"title"`
	Description      string         `json:"description" db:"description"`
	Status           ActivityStatus `json:"status" db:"status"`
	MaxParticipants  int            `json:"maxParticipants" db:"max_participants"`
	ParticipantCount int            `json:"participantCount" db:"participant_count"`
	StartsAt         time.Time      `json:"startsAt" db:"starts_at"`
	CreatedBy        int64          `json:"createdBy" db:"created_by"`
	CreatedAt        time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time      `json:"updatedAt" db:"updated_at"`
}

// Enrollment represents a user's signup for an activity
type Enrollment struct {
	ID         int64            `json:"id" db:"id"`
	ActivityID int64            `json:"activityId" db:"activity_id"`
	UserID     int64            `json:"userId" db:"user_id"`
	Status     EnrollmentStatus `json:"status" db:"status"`
	CreatedAt  time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time        `json:"updatedAt" db:"updated_at"`
}
