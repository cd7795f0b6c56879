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

// ClubRepository handles database operations for clubs.
//
// The leader_id column is written only through the leadership transaction
// store; this repository reads it but never mutates it.
type ClubRepository struct {
	db *pgxpool.Pool
}

// NewClubRepository creates a new ClubRepository
func NewClubRepository(db *pgxpool.Pool) *ClubRepository {
	return &ClubRepository{db: db}
}

// GetAll retrieves clubs with optional name search and pagination
func (r *ClubRepository) GetAll(ctx context.Context, search *string, page, pageSize int) ([]models.Club, int64, error) {
	query := `
		SELECT
			id, name, description, leader_id, created_at, updated_at,
			COUNT(*) OVER() as total_count
		FROM clubs
		WHERE 1=1
	`

	args := []interface{}{}
	argIndex := 1

	if search != nil && *search != "" {
		query += fmt.Sprintf(" AND name ILIKE $%d", argIndex)
		args = append(args, "%"+*search+"%")
		argIndex++
	}

	offset := (page - 1) * pageSize
	query += " ORDER BY id"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var clubs []models.Club
	var total int64
	for rows.Next() {
		var club models.Club
		err := rows.Scan(
			&club.ID,
			&club.Name,
			&club.Description,
			&club.LeaderID,
			&club.CreatedAt,
			&club.UpdatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		clubs = append(clubs, club)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	if clubs == nil {
		clubs = []models.Club{}
	}

	return clubs, total, nil
}

// GetByID retrieves a club by ID, nil if not found
func (r *ClubRepository) GetByID(ctx context.Context, id int64) (*models.Club, error) {
	query := `
		SELECT id, name, description, leader_id, created_at, updated_at
		FROM clubs
		WHERE id = $1
	`

	var club models.Club
	err := r.db.QueryRow(ctx, query, id).Scan(
		&club.ID,
		&club.Name,
		&club.Description,
		&club.LeaderID,
		&club.CreatedAt,
		&club.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &club, nil
}

// GetLeader returns the denormalized leader pointer for a club
func (r *ClubRepository) GetLeader(ctx context.Context, clubID int64) (*int64, error) {
	var leaderID *int64
	err := r.db.QueryRow(ctx, `SELECT leader_id FROM clubs WHERE id = $1`, clubID).Scan(&leaderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("club not found with ID %d", clubID)
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return leaderID, nil
}

// GetClubIDsLedBy retrieves IDs of clubs whose leader pointer names the user
func (r *ClubRepository) GetClubIDsLedBy(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM clubs WHERE leader_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// Create creates a new club
func (r *ClubRepository) Create(ctx context.Context, club *models.Club) (int64, error) {
	query := `
		INSERT INTO clubs (name, description)
		VALUES ($1, $2)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query, club.Name, club.Description).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return id, nil
}

// Delete deletes a club. Memberships and activities cascade in the schema.
func (r *ClubRepository) Delete(ctx context.Context, id int64) error {
	query := squirrel.Delete("clubs").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("no rows affected")
	}

	return nil
}

// GetMemberCountsByClubIDs retrieves active member counts for multiple clubs
func (r *ClubRepository) GetMemberCountsByClubIDs(ctx context.Context, clubIDs []int64) (map[int64]int, error) {
	if len(clubIDs) == 0 {
		return make(map[int64]int), nil
	}

	query := squirrel.Select("club_id", "COUNT(*)").
		From("memberships").
		Where(squirrel.Eq{"club_id": clubIDs}).
		Where("status = ?", models.MembershipStatusActive).
		GroupBy("club_id").
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

	counts := make(map[int64]int)
	for rows.Next() {
		var clubID int64
		var count int
		if err := rows.Scan(&clubID, &count); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		counts[clubID] = count
	}

	return counts, nil
}
