package repositories

import (
	"github.com/oguzk/campusclub/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	ClubRepository         *ClubRepository
	MembershipRepository   *MembershipRepository
	ActivityRepository     *ActivityRepository
	PointsRepository       *PointsRepository
	NotificationRepository *NotificationRepository

	// Transaction-scoped engine stores
	LeadershipTx LeadershipTx
	EnrollmentTx EnrollmentTx
	PointsTx     PointsTx
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	pool := database.Pool
	return &Repositories{
		UserRepository:         NewUserRepository(pool),
		ClubRepository:         NewClubRepository(pool),
		MembershipRepository:   NewMembershipRepository(pool),
		ActivityRepository:     NewActivityRepository(pool),
		PointsRepository:       NewPointsRepository(database),
		NotificationRepository: NewNotificationRepository(pool),
		LeadershipTx:           NewLeadershipTx(database),
		EnrollmentTx:           NewEnrollmentTx(database),
		PointsTx:               NewPointsTx(database),
	}
}
