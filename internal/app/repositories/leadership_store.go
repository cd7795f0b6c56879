package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/oguzk/campusclub/internal/app/models"
	"github.com/oguzk/campusclub/internal/db"
	"github.com/oguzk/campusclub/internal/pkg/apperrors"
)

// LeadershipStore is the view of storage the leadership coordinator works
// against inside one club-scoped transaction. Every method runs on the same
// transaction; LockClub must be called first so all later reads and writes
// happen under the club's row lock.
type LeadershipStore interface {
	LockClub(ctx context.Context, clubID int64) (*models.Club, error)
	CurrentLeader(ctx context.Context, clubID int64) (*models.Membership, error)
	GetMembership(ctx context.Context, membershipID int64) (*models.Membership, error)
	SetMembershipRole(ctx context.Context, membershipID int64, role models.MembershipRole) error
	DeleteMembership(ctx context.Context, membershipID int64) error
	SetClubLeader(ctx context.Context, clubID int64, leaderID *int64) error
	GrantLeaderRole(ctx context.Context, userID int64) error
	RevokeLeaderRole(ctx context.Context, userID int64) error
}

// LeadershipTx runs a function inside a club-scoped engine transaction.
// The transaction commits iff fn returns nil; lock-wait expiry surfaces as
// apperrors.ErrBusy.
type LeadershipTx interface {
	InClubTx(ctx context.Context, fn func(ctx context.Context, store LeadershipStore) error) error
}

type pgLeadershipTx struct {
	db *db.PostgresDB
}

// NewLeadershipTx creates the Postgres-backed LeadershipTx
func NewLeadershipTx(database *db.PostgresDB) LeadershipTx {
	return &pgLeadershipTx{db: database}
}

func (r *pgLeadershipTx) InClubTx(ctx context.Context, fn func(ctx context.Context, store LeadershipStore) error) error {
	return r.db.WithEngineTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &pgLeadershipStore{tx: tx})
	})
}

type pgLeadershipStore struct {
	tx pgx.Tx
}

// LockClub reads the club row under FOR UPDATE, serializing all leadership
// transitions for the club.
func (s *pgLeadershipStore) LockClub(ctx context.Context, clubID int64) (*models.Club, error) {
	query := `
		SELECT id, name, description, leader_id, created_at, updated_at
		FROM clubs
		WHERE id = $1
		FOR UPDATE
	`

	var club models.Club
	err := s.tx.QueryRow(ctx, query, clubID).Scan(
		&club.ID,
		&club.Name,
		&club.Description,
		&club.LeaderID,
		&club.CreatedAt,
		&club.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrClubNotFound
		}
		return nil, fmt.Errorf("error locking club row: %w", err)
	}

	return &club, nil
}

// CurrentLeader returns the club's active LEADER membership row, nil if
// none. The predicate matches the partial unique index, so at most one row
// can exist.
func (s *pgLeadershipStore) CurrentLeader(ctx context.Context, clubID int64) (*models.Membership, error) {
	query := `
		SELECT id, user_id, club_id, role, status, join_date
		FROM memberships
		WHERE club_id = $1 AND role = $2 AND status = $3
	`

	var m models.Membership
	err := s.tx.QueryRow(ctx, query, clubID, models.MembershipRoleLeader, models.MembershipStatusActive).Scan(
		&m.ID,
		&m.UserID,
		&m.ClubID,
		&m.Role,
		&m.Status,
		&m.JoinDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying current leader: %w", err)
	}

	return &m, nil
}

func (s *pgLeadershipStore) GetMembership(ctx context.Context, membershipID int64) (*models.Membership, error) {
	query := `
		SELECT id, user_id, club_id, role, status, join_date
		FROM memberships
		WHERE id = $1
	`

	var m models.Membership
	err := s.tx.QueryRow(ctx, query, membershipID).Scan(
		&m.ID,
		&m.UserID,
		&m.ClubID,
		&m.Role,
		&m.Status,
		&m.JoinDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying membership: %w", err)
	}

	return &m, nil
}

func (s *pgLeadershipStore) SetMembershipRole(ctx context.Context, membershipID int64, role models.MembershipRole) error {
	result, err := s.tx.Exec(ctx,
		`UPDATE memberships SET role = $1 WHERE id = $2`,
		role, membershipID,
	)
	if err != nil {
		return fmt.Errorf("error updating membership role: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrMembershipNotFound
	}

	return nil
}

// DeleteMembership removes a non-leader membership row. The role guard
// backstops the caller's in-transaction check the same way SetRole does on
// the pool repository.
func (s *pgLeadershipStore) DeleteMembership(ctx context.Context, membershipID int64) error {
	result, err := s.tx.Exec(ctx,
		`DELETE FROM memberships WHERE id = $1 AND role <> $2`,
		membershipID, models.MembershipRoleLeader,
	)
	if err != nil {
		return fmt.Errorf("error deleting membership: %w", err)
	}

	if result.RowsAffected() == 0 {
		m, err := s.GetMembership(ctx, membershipID)
		if err != nil {
			return err
		}
		if m == nil {
			return apperrors.ErrMembershipNotFound
		}
		return apperrors.ErrCannotRemoveLeader
	}

	return nil
}

func (s *pgLeadershipStore) SetClubLeader(ctx context.Context, clubID int64, leaderID *int64) error {
	result, err := s.tx.Exec(ctx,
		`UPDATE clubs SET leader_id = $1, updated_at = NOW() WHERE id = $2`,
		leaderID, clubID,
	)
	if err != nil {
		return fmt.Errorf("error updating club leader: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrClubNotFound
	}

	return nil
}

// GrantLeaderRole lifts a STUDENT account to the global LEADER role.
// Admins keep ADMIN, so zero rows affected is not an error.
func (s *pgLeadershipStore) GrantLeaderRole(ctx context.Context, userID int64) error {
	_, err := s.tx.Exec(ctx, `
		UPDATE users
		SET role_type = $1, updated_at = NOW()
		WHERE id = $2 AND role_type = $3
	`, models.RoleLeader, userID, models.RoleStudent)
	if err != nil {
		return fmt.Errorf("error granting leader role: %w", err)
	}

	return nil
}

// RevokeLeaderRole drops a user's global LEADER role back to STUDENT,
// unless the user still leads another club. Runs after the demoting role
// update in the same transaction, so the membership check sees it.
func (s *pgLeadershipStore) RevokeLeaderRole(ctx context.Context, userID int64) error {
	_, err := s.tx.Exec(ctx, `
		UPDATE users
		SET role_type = $1, updated_at = NOW()
		WHERE id = $2 AND role_type = $3
		AND NOT EXISTS (
			SELECT 1 FROM memberships
			WHERE user_id = $2 AND role = $4 AND status = $5
		)
	`, models.RoleStudent, userID, models.RoleLeader, models.MembershipRoleLeader, models.MembershipStatusActive)
	if err != nil {
		return fmt.Errorf("error revoking leader role: %w", err)
	}

	return nil
}
