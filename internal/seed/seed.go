package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/oguzk/campusclub/internal/app/models"
	"github.com/oguzk/campusclub/internal/app/repositories"
)

const (
	defaultAdminEmail    = "admin@campusclub.app"
	defaultAdminPassword = "Admin123!"
)

// adminDirectory is the slice of user storage the seeder needs.
type adminDirectory interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (int64, error)
	UpdateRoleType(ctx context.Context, userID int64, role models.RoleType) error
}

// CreateDefaultData seeds the records a fresh database needs to be usable.
// Today that is a single admin account: registration only hands out the
// STUDENT role, so without the seed no one could ever reach the admin-gated
// surfaces (club creation, activity approval, point awards).
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data...")
	return createDefaultAdmin(ctx, repositories.NewUserRepository(dbPool), lgr)
}

func createDefaultAdmin(ctx context.Context, users adminDirectory, lgr zerolog.Logger) error {
	existing, err := users.FindByEmail(ctx, defaultAdminEmail)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		return err
	}

	if existing != nil {
		if existing.RoleType != models.RoleAdmin {
			// The admin email was registered through the public endpoint,
			// which only grants STUDENT. Reclaim the account.
			lgr.Warn().Int64("userID", existing.ID).Msg("Admin account holds the wrong role, repairing")
			return users.UpdateRoleType(ctx, existing.ID, models.RoleAdmin)
		}
		lgr.Info().Msg("Admin user already exists, skipping creation")
		return nil
	}

	lgr.Info().Msg("Creating default admin user...")

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return err
	}

	admin := &models.User{
		Email:     defaultAdminEmail,
		Password:  string(hashedPassword),
		FirstName: "System",
		LastName:  "Administrator",
		RoleType:  models.RoleAdmin,
		IsActive:  true,
	}

	adminID, err := users.Create(ctx, admin)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			// Another instance won the race to seed; nothing to do
			return nil
		}
		lgr.Error().Err(err).Msg("Error creating admin user")
		return err
	}

	lgr.Info().Int64("adminID", adminID).Msg("Default admin user created successfully")
	return nil
}
