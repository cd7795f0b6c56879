package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oguzk/campusclub/internal/app/models"
)

// MembershipRepository handles database operations for club memberships.
//
// The role column may be set to LEADER only through the leadership
// transaction store, and rows are deleted there too so the check runs
// under the club lock; plain role updates here refuse the leader role.
type MembershipRepository struct {
	db *pgxpool.Pool
}

// NewMembershipRepository creates a new MembershipRepository
func NewMembershipRepository(db *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// GetByID retrieves a membership by ID, nil if not found
func (r *MembershipRepository) GetByID(ctx context.Context, id int64) (*models.Membership, error) {
	query := squirrel.Select(
		"id", "user_id", "club_id", "role", "status", "join_date",
	).
		From("memberships").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var m models.Membership
	err = r.db.QueryRow(ctx, sql, args...).Scan(
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
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &m, nil
}

// GetActiveByUserAndClub retrieves a user's active membership in a club, nil if none
func (r *MembershipRepository) GetActiveByUserAndClub(ctx context.Context, userID, clubID int64) (*models.Membership, error) {
	query := squirrel.Select(
		"id", "user_id", "club_id", "role", "status", "join_date",
	).
		From("memberships").
		Where("user_id = ? AND club_id = ?", userID, clubID).
		Where("status = ?", models.MembershipStatusActive).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var m models.Membership
	err = r.db.QueryRow(ctx, sql, args...).Scan(
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
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &m, nil
}

// ListByClub retrieves all active memberships of a club
func (r *MembershipRepository) ListByClub(ctx context.Context, clubID int64) ([]*models.Membership, error) {
	query := squirrel.Select(
		"m.id", "m.user_id", "m.club_id", "m.role", "m.status", "m.join_date",
	).
		From("memberships m").
		Where("m.club_id = ?", clubID).
		Where("m.status = ?", models.MembershipStatusActive).
		OrderBy("m.join_date DESC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var memberships []*models.Membership
	for rows.Next() {
		var m models.Membership
		err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.ClubID,
			&m.Role,
			&m.Status,
			&m.JoinDate,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		memberships = append(memberships, &m)
	}

	return memberships, nil
}

// Insert adds a membership row with the given non-leader role
func (r *MembershipRepository) Insert(ctx context.Context, m *models.Membership) (int64, error) {
	query := squirrel.Insert("memberships").
		Columns("user_id", "club_id", "role", "status", "join_date").
		Values(m.UserID, m.ClubID, m.Role, m.Status, m.JoinDate).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return id, nil
}

// SetRole updates a membership's role to a non-leader value
func (r *MembershipRepository) SetRole(ctx context.Context, membershipID int64, role models.MembershipRole) error {
	if role == models.MembershipRoleLeader {
		return fmt.Errorf("leader role must be assigned through the leadership coordinator")
	}

	query := `
		UPDATE memberships
		SET role = $1
		WHERE id = $2 AND role <> $3
	`

	result, err := r.db.Exec(ctx, query, role, membershipID, models.MembershipRoleLeader)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("no rows affected")
	}

	return nil
}
