package models

import "time"

// NoticeKind tags the two notification sources in the unified feed
type NoticeKind string

const (
	NoticeKindReservation NoticeKind = "RESERVATION"
	NoticeKindRejection   NoticeKind = "REJECTION"
)

// RejectionNotice is created when an admin rejects a pending activity.
// It is read by the club's leader through the notification feed.
type RejectionNotice struct {
	ID         int64     `json:"id" db:"id"`
	ActivityID int64     `json:"activityId" db:"activity_id"`
	ClubID     int64     `json:"clubId" db:"club_id"`
	Reason     string    `json:"reason" db:"reason"`
	IsRead     bool      `json:"isRead" db:"is_read"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// ReservationNotice is created when a user enrolls in an activity.
type ReservationNotice struct {
	ID         int64     `json:"id" db:"id"`
	ActivityID int64     `json:"activityId" db:"activity_id"`
	UserID     int64     `json:"userId" db:"user_id"`
	IsRead     bool      `json:"isRead" db:"is_read"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// Notice is the tagged union served by the feed. Each item keeps its
// source table's primary key; Kind disambiguates the ID namespace so the
// read path never renames keys.
type Notice struct {
	Kind      NoticeKind  `json:"kind"`
	ID        int64       `json:"id"`
	IsRead    bool        `json:"isRead"`
	CreatedAt time.Time   `json:"createdAt"`
	Payload   interface{} `json:"payload"`
}
