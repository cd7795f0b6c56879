package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/oguzk/campusclub/internal/app/controllers"
	appMigrations "github.com/oguzk/campusclub/internal/app/migrations"
	appRepos "github.com/oguzk/campusclub/internal/app/repositories"
	appRoutes "github.com/oguzk/campusclub/internal/app/routes"
	appServices "github.com/oguzk/campusclub/internal/app/services"
	"github.com/oguzk/campusclub/internal/config"
	"github.com/oguzk/campusclub/internal/db"
	"github.com/oguzk/campusclub/internal/middleware"
	"github.com/oguzk/campusclub/internal/mirror"
	pkgAuth "github.com/oguzk/campusclub/internal/pkg/auth"
	"github.com/oguzk/campusclub/internal/pkg/logger"
	"github.com/oguzk/campusclub/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService            appServices.AuthService
	ClubService            appServices.ClubService
	MembershipService      appServices.MembershipService
	LeadershipService      appServices.LeadershipService
	ActivityService        appServices.ActivityService
	EnrollmentService      appServices.EnrollmentService
	PointsService          appServices.PointsService
	NotificationService    appServices.NotificationService
	AuthController         *appControllers.AuthController
	ClubController         *appControllers.ClubController
	MembershipController   *appControllers.MembershipController
	ActivityController     *appControllers.ActivityController
	PointsController       *appControllers.PointsController
	NotificationController *appControllers.NotificationController
	AuthMiddleware         *middleware.AuthMiddleware
	Repos                  *appRepos.Repositories
	JWTService             *pkgAuth.JWTService
	Logger                 zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	// Create default data (after migrations)
	if err := seed.CreateDefaultData(context.Background(), database.Pool, lgr); err != nil {
		// Log the error but don't necessarily fail the startup
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	lgr.Info().Msg("Database ready.")
	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  parseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: parseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	retryAttempts := cfg.Engine.RetryAttempts

	mirrorPublisher := mirror.NewPublisher(&mirror.LogSink{Logger: lgr}, lgr)

	deps.AuthService = appServices.NewAuthService(deps.Repos.UserRepository, deps.JWTService, lgr)
	deps.LeadershipService = appServices.NewLeadershipService(deps.Repos.LeadershipTx, retryAttempts, lgr)
	deps.EnrollmentService = appServices.NewEnrollmentService(deps.Repos.EnrollmentTx, retryAttempts, lgr)
	deps.MembershipService = appServices.NewMembershipService(
		deps.Repos.MembershipRepository,
		deps.Repos.ClubRepository,
		deps.Repos.UserRepository,
		deps.Repos.LeadershipTx,
		retryAttempts,
		lgr,
	)
	deps.ClubService = appServices.NewClubService(
		deps.Repos.ClubRepository,
		deps.Repos.UserRepository,
		deps.MembershipService,
		deps.LeadershipService,
		lgr,
	)
	deps.ActivityService = appServices.NewActivityService(
		deps.Repos.ActivityRepository,
		deps.Repos.ClubRepository,
		deps.Repos.NotificationRepository,
		lgr,
	)
	deps.PointsService = appServices.NewPointsService(
		deps.Repos.PointsTx,
		deps.Repos.PointsRepository,
		mirrorPublisher,
		retryAttempts,
		lgr,
	)
	deps.NotificationService = appServices.NewNotificationService(
		deps.Repos.NotificationRepository,
		deps.Repos.ClubRepository,
		lgr,
	)

	deps.AuthMiddleware = middleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.ClubController = appControllers.NewClubController(deps.ClubService)
	deps.MembershipController = appControllers.NewMembershipController(deps.MembershipService, deps.LeadershipService)
	deps.ActivityController = appControllers.NewActivityController(deps.ActivityService, deps.EnrollmentService)
	deps.PointsController = appControllers.NewPointsController(deps.PointsService)
	deps.NotificationController = appControllers.NewNotificationController(deps.NotificationService)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(lgr))

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.ClubController,
		deps.MembershipController,
		deps.ActivityController,
		deps.PointsController,
		deps.NotificationController,
		deps.AuthMiddleware,
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
