package dto

import "time"

// CreateClubRequest is the payload for creating a club
type CreateClubRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=120"`
	Description string `json:"description" binding:"max=2000"`
	// LeaderUserID optionally names the initial leader. The user is added
	// as a member first and then promoted through the coordinator.
	LeaderUserID *int64 `json:"leaderUserId"`
}

// ClubResponse is the public view of a club
type ClubResponse struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	LeaderID    *int64             `json:"leaderId,omitempty"`
	Leader      *UserBasicResponse `json:"leader,omitempty"`
	MemberCount int                `json:"memberCount"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// ClubListResponse is a paginated list of clubs
type ClubListResponse struct {
	Clubs          []ClubResponse `json:"clubs"`
	PaginationInfo PaginationInfo `json:"paginationInfo"`
}

// AddMemberRequest is the payload for adding a club member
type AddMemberRequest struct {
	UserID int64 `json:"userId" binding:"required"`
	// Role may be MEMBER or VICE_LEADER. LEADER is rejected here; leadership
	// changes go through the promote endpoint.
	Role string `json:"role" binding:"omitempty,oneof=MEMBER VICE_LEADER"`
}

// SetRoleRequest is the payload for changing a member's role
type SetRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=MEMBER VICE_LEADER"`
}

// PromoteLeaderRequest names the membership to promote to club leader
type PromoteLeaderRequest struct {
	MembershipID int64 `json:"membershipId" binding:"required"`
}

// MembershipResponse is the public view of a membership row
type MembershipResponse struct {
	ID       int64              `json:"id"`
	UserID   int64              `json:"userId"`
	ClubID   int64              `json:"clubId"`
	Role     string             `json:"role"`
	Status   string             `json:"status"`
	JoinDate time.Time          `json:"joinDate"`
	User     *UserBasicResponse `json:"user,omitempty"`
}
