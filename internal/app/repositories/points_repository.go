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

// PointsStore is the transaction-scoped view the points service works
// against. LockAccount must be called first; the balance check and the
// ledger insert then happen under the account's row lock.
type PointsStore interface {
	LockAccount(ctx context.Context, userID int64) (*models.PointAccount, error)
	SetBalance(ctx context.Context, userID, balance int64) error
	InsertEntry(ctx context.Context, entry *models.PointEntry) (int64, error)
}

// PointsTx runs a function inside an account-scoped engine transaction.
type PointsTx interface {
	InAccountTx(ctx context.Context, fn func(ctx context.Context, store PointsStore) error) error
}

type pgPointsTx struct {
	db *db.PostgresDB
}

// NewPointsTx creates the Postgres-backed PointsTx
func NewPointsTx(database *db.PostgresDB) PointsTx {
	return &pgPointsTx{db: database}
}

func (r *pgPointsTx) InAccountTx(ctx context.Context, fn func(ctx context.Context, store PointsStore) error) error {
	return r.db.WithEngineTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &pgPointsStore{tx: tx})
	})
}

type pgPointsStore struct {
	tx pgx.Tx
}

// LockAccount reads the account row under FOR UPDATE, creating it lazily
// on first use.
func (s *pgPointsStore) LockAccount(ctx context.Context, userID int64) (*models.PointAccount, error) {
	// Upsert keeps first-award and first-redeem paths uniform
	_, err := s.tx.Exec(ctx,
		`INSERT INTO point_accounts (user_id, balance) VALUES ($1, 0) ON CONFLICT (user_id) DO NOTHING`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("error ensuring point account: %w", err)
	}

	var account models.PointAccount
	err = s.tx.QueryRow(ctx,
		`SELECT user_id, balance, updated_at FROM point_accounts WHERE user_id = $1 FOR UPDATE`,
		userID,
	).Scan(&account.UserID, &account.Balance, &account.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error locking point account: %w", err)
	}

	return &account, nil
}

func (s *pgPointsStore) SetBalance(ctx context.Context, userID, balance int64) error {
	result, err := s.tx.Exec(ctx,
		`UPDATE point_accounts SET balance = $1, updated_at = NOW() WHERE user_id = $2`,
		balance, userID,
	)
	if err != nil {
		return fmt.Errorf("error updating balance: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

func (s *pgPointsStore) InsertEntry(ctx context.Context, entry *models.PointEntry) (int64, error) {
	var id int64
	err := s.tx.QueryRow(ctx,
		`INSERT INTO point_entries (user_id, kind, amount, reason, created_by)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		entry.UserID, entry.Kind, entry.Amount, entry.Reason, entry.CreatedBy,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error inserting point entry: %w", err)
	}
	return id, nil
}

// PointsRepository covers the non-transactional read side of the ledger
type PointsRepository struct {
	db *db.PostgresDB
}

// NewPointsRepository creates a new PointsRepository
func NewPointsRepository(database *db.PostgresDB) *PointsRepository {
	return &PointsRepository{db: database}
}

// GetBalance returns a user's balance, zero when no account row exists yet
func (r *PointsRepository) GetBalance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT balance FROM point_accounts WHERE user_id = $1`,
		userID,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return balance, nil
}

// ListEntries retrieves a user's ledger entries, newest first
func (r *PointsRepository) ListEntries(ctx context.Context, userID int64, limit int) ([]*models.PointEntry, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, user_id, kind, amount, reason, created_by, created_at
		 FROM point_entries WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var entries []*models.PointEntry
	for rows.Next() {
		var e models.PointEntry
		err := rows.Scan(&e.ID, &e.UserID, &e.Kind, &e.Amount, &e.Reason, &e.CreatedBy, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		entries = append(entries, &e)
	}

	return entries, nil
}
