package models

// RoleType defines the global user role type
type RoleType string

const (
	RoleAdmin   RoleType = "ADMIN"
	RoleStudent RoleType = "STUDENT"
	RoleLeader  RoleType = "LEADER"
)

// MembershipRole defines a user's role within a single club
type MembershipRole string

const (
	MembershipRoleMember     MembershipRole = "MEMBER"
	MembershipRoleLeader     MembershipRole = "LEADER"
	MembershipRoleViceLeader MembershipRole = "VICE_LEADER"
)

// MembershipStatus defines whether a membership row is active
type MembershipStatus string

const (
	MembershipStatusActive   MembershipStatus = "ACTIVE"
	MembershipStatusDisabled MembershipStatus = "DISABLED"
)

// EnrollmentStatus defines whether an enrollment row is active.
// Withdrawn rows are kept for auditability, never deleted.
type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "ACTIVE"
	EnrollmentStatusWithdrawn EnrollmentStatus = "WITHDRAWN"
)
