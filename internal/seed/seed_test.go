package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oguzk/campusclub/internal/app/models"
	"github.com/oguzk/campusclub/internal/app/repositories"
)

type fakeUserDirectory struct {
	users  map[string]*models.User
	nextID int64
}

func newFakeUserDirectory() *fakeUserDirectory {
	return &fakeUserDirectory{users: make(map[string]*models.User)}
}

func (f *fakeUserDirectory) FindByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserDirectory) Create(_ context.Context, user *models.User) (int64, error) {
	if _, ok := f.users[user.Email]; ok {
		return 0, repositories.ErrDuplicateEmail
	}
	f.nextID++
	stored := *user
	stored.ID = f.nextID
	f.users[user.Email] = &stored
	return stored.ID, nil
}

func (f *fakeUserDirectory) UpdateRoleType(_ context.Context, userID int64, role models.RoleType) error {
	for _, u := range f.users {
		if u.ID == userID {
			u.RoleType = role
			return nil
		}
	}
	return nil
}

func TestCreateDefaultAdminSeedsAdminAccount(t *testing.T) {
	dir := newFakeUserDirectory()

	err := createDefaultAdmin(context.Background(), dir, zerolog.Nop())
	require.NoError(t, err)

	admin := dir.users[defaultAdminEmail]
	require.NotNil(t, admin)
	require.Equal(t, models.RoleAdmin, admin.RoleType)
	require.True(t, admin.IsActive)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(defaultAdminPassword)))
}

func TestCreateDefaultAdminIsIdempotent(t *testing.T) {
	dir := newFakeUserDirectory()

	require.NoError(t, createDefaultAdmin(context.Background(), dir, zerolog.Nop()))
	first := *dir.users[defaultAdminEmail]

	require.NoError(t, createDefaultAdmin(context.Background(), dir, zerolog.Nop()))
	require.Len(t, dir.users, 1)
	require.Equal(t, first, *dir.users[defaultAdminEmail])
}

func TestCreateDefaultAdminRepairsRole(t *testing.T) {
	dir := newFakeUserDirectory()
	dir.users[defaultAdminEmail] = &models.User{
		ID:       7,
		Email:    defaultAdminEmail,
		Password: "registered-through-the-public-endpoint",
		RoleType: models.RoleStudent,
		IsActive: true,
	}

	err := createDefaultAdmin(context.Background(), dir, zerolog.Nop())
	require.NoError(t, err)

	admin := dir.users[defaultAdminEmail]
	require.Equal(t, models.RoleAdmin, admin.RoleType)
	require.Equal(t, "registered-through-the-public-endpoint", admin.Password)
}
