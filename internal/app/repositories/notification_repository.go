package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oguzk/campusclub/internal/app/models"
)

// NotificationRepository handles the two notice tables backing the
// unified feed. Reservation notices are written by the enrollment store;
// rejection notices by the activity service on an admin rejection.
type NotificationRepository struct {
	db *pgxpool.Pool
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// InsertRejectionNotice records a rejection for the club's leader to read
func (r *NotificationRepository) InsertRejectionNotice(ctx context.Context, activityID, clubID int64, reason string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO rejection_notices (activity_id, club_id, reason) VALUES ($1, $2, $3) RETURNING id`,
		activityID, clubID, reason,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error inserting rejection notice: %w", err)
	}
	return id, nil
}

// ListRejectionsByClubs retrieves rejection notices for the given clubs
func (r *NotificationRepository) ListRejectionsByClubs(ctx context.Context, clubIDs []int64) ([]*models.RejectionNotice, error) {
	if len(clubIDs) == 0 {
		return nil, nil
	}

	query := squirrel.Select("id", "activity_id", "club_id", "reason", "is_read", "created_at").
		From("rejection_notices").
		Where(squirrel.Eq{"club_id": clubIDs}).
		OrderBy("created_at DESC").
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

	var notices []*models.RejectionNotice
	for rows.Next() {
		var n models.RejectionNotice
		err := rows.Scan(&n.ID, &n.ActivityID, &n.ClubID, &n.Reason, &n.IsRead, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		notices = append(notices, &n)
	}

	return notices, nil
}

// ListReservationsByUser retrieves a user's reservation notices
func (r *NotificationRepository) ListReservationsByUser(ctx context.Context, userID int64) ([]*models.ReservationNotice, error) {
	query := squirrel.Select("id", "activity_id", "user_id", "is_read", "created_at").
		From("reservation_notices").
		Where("user_id = ?", userID).
		OrderBy("created_at DESC").
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

	var notices []*models.ReservationNotice
	for rows.Next() {
		var n models.ReservationNotice
		err := rows.Scan(&n.ID, &n.ActivityID, &n.UserID, &n.IsRead, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		notices = append(notices, &n)
	}

	return notices, nil
}

// MarkRead flips is_read for notices of one kind. The kind picks the table,
// so the two ID namespaces never mix.
func (r *NotificationRepository) MarkRead(ctx context.Context, kind models.NoticeKind, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	table := "reservation_notices"
	if kind == models.NoticeKindRejection {
		table = "rejection_notices"
	}

	query := squirrel.Update(table).
		Set("is_read", true).
		Where(squirrel.Eq{"id": ids}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	_, err = r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}
