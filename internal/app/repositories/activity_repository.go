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

// ActivityRepository handles database operations for activities.
//
// participant_count is written only through the enrollment transaction
// store; status is written only through UpdateStatus, which the activity
// service guards with the transition table.
type ActivityRepository struct {
	db *pgxpool.Pool
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// GetByID retrieves an activity by ID, nil if not found
func (r *ActivityRepository) GetByID(ctx context.Context, id int64) (*models.Activity, error) {
	query := `
		SELECT id, club_id, title, description, status, max_participants,
			participant_count, starts_at, created_by, created_at, updated_at
		FROM activities
		WHERE id = $1
	`

	var a models.Activity
	err := r.db.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.ClubID,
		&a.Title,
		&a.Description,
		&a.Status,
		&a.MaxParticipants,
		&a.ParticipantCount,
		&a.StartsAt,
		&a.CreatedBy,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	return &a, nil
}

// ListByClub retrieves all activities of a club
func (r *ActivityRepository) ListByClub(ctx context.Context, clubID int64) ([]*models.Activity, error) {
	query := squirrel.Select(
		"id", "club_id", "title", "description", "status", "max_participants",
		"participant_count", "starts_at", "created_by", "created_at", "updated_at",
	).
		From("activities").
		Where("club_id = ?", clubID).
		OrderBy("starts_at DESC").
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

	var activities []*models.Activity
	for rows.Next() {
		var a models.Activity
		err := rows.Scan(
			&a.ID,
			&a.ClubID,
			&a.Title,
			&a.Description,
			&a.Status,
			&a.MaxParticipants,
			&a.ParticipantCount,
			&a.StartsAt,
			&a.CreatedBy,
			&a.CreatedAt,
			&a.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		activities = append(activities, &a)
	}

	return activities, nil
}

// Create creates a new activity in PENDING status
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) (int64, error) {
	query := `
		INSERT INTO activities (club_id, title, description, status, max_participants, starts_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		activity.ClubID,
		activity.Title,
		activity.Description,
		models.ActivityStatusPending,
		activity.MaxParticipants,
		activity.StartsAt,
		activity.CreatedBy,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return id, nil
}

// UpdateStatus moves an activity to a new status, guarded by the expected
// current status so concurrent transitions cannot race past the FSM check.
func (r *ActivityRepository) UpdateStatus(ctx context.Context, activityID int64, from, to models.ActivityStatus) error {
	query := `
		UPDATE activities
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	result, err := r.db.Exec(ctx, query, to, activityID, from)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("no rows affected")
	}

	return nil
}
