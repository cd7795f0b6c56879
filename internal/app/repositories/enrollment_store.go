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

// EnrollmentStore is the view of storage the capacity guard works against
// inside one activity-scoped transaction. LockActivity must be called first;
// every later read and write happens under the activity's row lock, so the
// count-check-insert sequence cannot interleave with another caller.
type EnrollmentStore interface {
	LockActivity(ctx context.Context, activityID int64) (*models.Activity, error)
	CountActive(ctx context.Context, activityID int64) (int, error)
	ActiveEnrollment(ctx context.Context, activityID, userID int64) (*models.Enrollment, error)
	InsertEnrollment(ctx context.Context, activityID, userID int64) (int64, error)
	MarkWithdrawn(ctx context.Context, enrollmentID int64) error
	SetParticipantCount(ctx context.Context, activityID int64, count int) error
	InsertReservationNotice(ctx context.Context, activityID, userID int64) error
}

// EnrollmentTx runs a function inside an activity-scoped engine transaction.
type EnrollmentTx interface {
	InActivityTx(ctx context.Context, fn func(ctx context.Context, store EnrollmentStore) error) error
}

type pgEnrollmentTx struct {
	db *db.PostgresDB
}

// NewEnrollmentTx creates the Postgres-backed EnrollmentTx
func NewEnrollmentTx(database *db.PostgresDB) EnrollmentTx {
	return &pgEnrollmentTx{db: database}
}

func (r *pgEnrollmentTx) InActivityTx(ctx context.Context, fn func(ctx context.Context, store EnrollmentStore) error) error {
	return r.db.WithEngineTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &pgEnrollmentStore{tx: tx})
	})
}

type pgEnrollmentStore struct {
	tx pgx.Tx
}

// LockActivity reads the activity row under FOR UPDATE, serializing all
// signup/withdraw/recount work for the activity.
func (s *pgEnrollmentStore) LockActivity(ctx context.Context, activityID int64) (*models.Activity, error) {
	query := `
		SELECT id, club_id, title, description, status, max_participants,
			participant_count, starts_at, created_by, created_at, updated_at
		FROM activities
		WHERE id = $1
		FOR UPDATE
	`

	var a models.Activity
	err := s.tx.QueryRow(ctx, query, activityID).Scan(
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
			return nil, apperrors.ErrActivityNotFound
		}
		return nil, fmt.Errorf("error locking activity row: %w", err)
	}

	return &a, nil
}

// CountActive counts ACTIVE enrollment rows. This is the source of truth
// the cached participant_count must agree with.
func (s *pgEnrollmentStore) CountActive(ctx context.Context, activityID int64) (int, error) {
	var count int
	err := s.tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM enrollments WHERE activity_id = $1 AND status = $2`,
		activityID, models.EnrollmentStatusActive,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting enrollments: %w", err)
	}
	return count, nil
}

func (s *pgEnrollmentStore) ActiveEnrollment(ctx context.Context, activityID, userID int64) (*models.Enrollment, error) {
	query := `
		SELECT id, activity_id, user_id, status, created_at, updated_at
		FROM enrollments
		WHERE activity_id = $1 AND user_id = $2 AND status = $3
	`

	var e models.Enrollment
	err := s.tx.QueryRow(ctx, query, activityID, userID, models.EnrollmentStatusActive).Scan(
		&e.ID,
		&e.ActivityID,
		&e.UserID,
		&e.Status,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying enrollment: %w", err)
	}

	return &e, nil
}

func (s *pgEnrollmentStore) InsertEnrollment(ctx context.Context, activityID, userID int64) (int64, error) {
	var id int64
	err := s.tx.QueryRow(ctx,
		`INSERT INTO enrollments (activity_id, user_id, status) VALUES ($1, $2, $3) RETURNING id`,
		activityID, userID, models.EnrollmentStatusActive,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error inserting enrollment: %w", err)
	}
	return id, nil
}

// MarkWithdrawn flips the row's status instead of deleting it, keeping the
// enrollment history auditable.
func (s *pgEnrollmentStore) MarkWithdrawn(ctx context.Context, enrollmentID int64) error {
	result, err := s.tx.Exec(ctx,
		`UPDATE enrollments SET status = $1, updated_at = NOW() WHERE id = $2`,
		models.EnrollmentStatusWithdrawn, enrollmentID,
	)
	if err != nil {
		return fmt.Errorf("error updating enrollment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotEnrolled
	}

	return nil
}

func (s *pgEnrollmentStore) SetParticipantCount(ctx context.Context, activityID int64, count int) error {
	result, err := s.tx.Exec(ctx,
		`UPDATE activities SET participant_count = $1, updated_at = NOW() WHERE id = $2`,
		count, activityID,
	)
	if err != nil {
		return fmt.Errorf("error updating participant count: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrActivityNotFound
	}

	return nil
}

func (s *pgEnrollmentStore) InsertReservationNotice(ctx context.Context, activityID, userID int64) error {
	_, err := s.tx.Exec(ctx,
		`INSERT INTO reservation_notices (activity_id, user_id) VALUES ($1, $2)`,
		activityID, userID,
	)
	if err != nil {
		return fmt.Errorf("error inserting reservation notice: %w", err)
	}
	return nil
}
