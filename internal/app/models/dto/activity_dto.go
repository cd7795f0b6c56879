package dto

import "time"

// CreateActivityRequest is the payload for creating an activity
type CreateActivityRequest struct {
	ClubID      int64     `json:"clubId" binding:"required"`
	Title       string    `json:"title" binding:"required,min=2,max=200"`
	Description string    `json:"description" binding:"max=4000"`
	// MaxParticipants = 0 means unlimited
	MaxParticipants int       `json:"maxParticipants" binding:"min=0"`
	StartsAt        time.Time `json:"startsAt" binding:"required"`
}

// TransitionRequest moves an activity along the approval state machine
type TransitionRequest struct {
	Status string `json:"status" binding:"required,oneof=APPROVED REJECTED COMPLETED CANCELLED"`
	// Reason is required when rejecting; it is delivered to the club
	// leader through the notification feed.
	Reason string `json:"reason" binding:"max=1000"`
}

// ActivityResponse is the public view of an activity
type ActivityResponse struct {
	ID               int64     `json:"id"`
	ClubID           int64     `json:"clubId"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Status           string    `json:"status"`
	MaxParticipants  int       `json:"maxParticipants"`
	ParticipantCount int       `json:"participantCount"`
	StartsAt         time.Time `json:"startsAt"`
	CreatedAt        time.Time `json:"createdAt"`
}

// EnrollmentResponse is the public view of an enrollment row
type EnrollmentResponse struct {
	ID         int64     `json:"id"`
	ActivityID int64     `json:"activityId"`
	UserID     int64     `json:"userId"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// RecountResponse reports a counter reconciliation
type RecountResponse struct {
	ActivityID       int64 `json:"activityId"`
	ParticipantCount int   `json:"participantCount"`
}
