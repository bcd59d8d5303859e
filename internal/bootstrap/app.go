package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"jobbooster-backend/internal/activitylogs"
	googleauth "jobbooster-backend/internal/auth"
	"jobbooster-backend/internal/documents"
	"jobbooster-backend/internal/gdpr"
	"jobbooster-backend/internal/generated"
	"jobbooster-backend/internal/queue"
	"jobbooster-backend/internal/retention"
	"jobbooster-backend/internal/sessions"
	"jobbooster-backend/internal/shared/config"
	"jobbooster-backend/internal/shared/server"
	"jobbooster-backend/internal/shared/storage/db"
	"jobbooster-backend/internal/shared/storage/object"
	localstore "jobbooster-backend/internal/shared/storage/object/local"
	s3store "jobbooster-backend/internal/shared/storage/object/s3"
	"jobbooster-backend/internal/users"
)

// App holds the wired application: shared infrastructure, services, and the
// HTTP router.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	UsersRepo     users.Repo
	DocumentsRepo documents.Repo
	GeneratedRepo generated.Repo
	ActivityRepo  activitylogs.Repo
	SessionsRepo  sessions.Repo
	ConsentsRepo  gdpr.ConsentRepo

	UsersService     *users.Service
	DocumentsService *documents.Service
	GeneratedService *generated.Service
	ActivityService  *activitylogs.Service
	SessionsService  *sessions.Service
	GDPRService      *gdpr.Service

	RetentionStore     retention.Store
	RetentionSettings  retention.SettingsRepo
	RetentionScheduler *retention.Scheduler

	GoogleAuth *googleauth.GoogleService
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}

	buildServices(app)
	buildRetention(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		UserHandler:      users.NewHandler(app.UsersService),
		DocumentHandler:  documents.NewHandler(app.DocumentsService),
		GeneratedHandler: generated.NewHandler(app.GeneratedService),
		ActivityHandler:  activitylogs.NewHandler(app.ActivityService),
		SessionHandler:   sessions.NewHandler(app.SessionsService),
		GDPRHandler:      gdpr.NewHandler(app.GDPRService),
		RetentionHandler: retention.NewHandler(app.RetentionScheduler, cfg.RetentionEnabled),
		CronHandler: &retention.CronHandler{
			Scheduler:  app.RetentionScheduler,
			Secret:     cfg.CronSecret,
			Enabled:    cfg.RetentionEnabled,
			DailyCron:  cfg.RetentionDailyCron,
			NotifyCron: cfg.RetentionNotifyCron,
			WeeklyCron: cfg.RetentionWeeklyCron,
		},
		GoogleAuth: app.GoogleAuth,
		Sessions:   app.SessionsService,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(os.Getenv("RETENTION_SQS_QUEUE_URL")) == "" {
		if isDevLike(cfg.Env) {
			return queue.NewMemoryClient(), nil
		}
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func buildServices(app *App) {
	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.DocumentsRepo = &documents.PGRepo{DB: app.DB}
		app.GeneratedRepo = &generated.PGRepo{DB: app.DB}
		app.ActivityRepo = &activitylogs.PGRepo{DB: app.DB}
		app.SessionsRepo = &sessions.PGRepo{DB: app.DB}
		app.ConsentsRepo = &gdpr.PGConsentRepo{DB: app.DB}
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.DocumentsRepo = documents.NewMemoryRepo()
		app.GeneratedRepo = generated.NewMemoryRepo()
		app.ActivityRepo = activitylogs.NewMemoryRepo()
		app.SessionsRepo = sessions.NewMemoryRepo()
		app.ConsentsRepo = gdpr.NewMemoryConsentRepo()
	}

	app.UsersService = users.NewService(app.UsersRepo)
	app.DocumentsService = &documents.Service{
		Store:           app.Store,
		Repo:            app.DocumentsRepo,
		StorageProvider: app.Config.ObjectStoreType,
	}
	app.GeneratedService = &generated.Service{
		Repo:    app.GeneratedRepo,
		DocRepo: app.DocumentsRepo,
	}
	app.ActivityService = &activitylogs.Service{Repo: app.ActivityRepo}
	app.SessionsService = &sessions.Service{Repo: app.SessionsRepo}
	app.GDPRService = &gdpr.Service{
		Consents:  app.ConsentsRepo,
		Users:     app.UsersService,
		Documents: app.DocumentsService,
		Generated: app.GeneratedService,
		Activity:  app.ActivityRepo,
		Sessions:  app.SessionsRepo,
	}

	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
	)
	app.GoogleAuth.Users = app.UsersService
	app.GoogleAuth.Sessions = app.SessionsService
	app.GoogleAuth.Activity = app.ActivityService
}

func buildRetention(app *App) {
	var (
		store    retention.Store
		settings retention.SettingsRepo
		locks    retention.LockRepo
	)
	if app.DB != nil {
		store = &retention.PGStore{DB: app.DB}
		settings = &retention.PGSettingsRepo{DB: app.DB}
		locks = &retention.PGLockRepo{DB: app.DB}
	} else {
		store = retention.NewMemoryStore()
		settings = retention.NewMemorySettingsRepo()
		locks = retention.NewMemoryLockRepo()
	}

	deletion := retention.NewDeletionService(store, retention.DeletionConfig{
		ContinueOnError: true,
		BatchSize:       app.Config.RetentionBatchSize,
	})

	var notifier retention.Notifier
	if app.Queue != nil {
		notifier = &retention.QueueNotifier{Queue: app.Queue}
	}

	app.RetentionStore = store
	app.RetentionSettings = settings
	app.RetentionScheduler = retention.NewScheduler(deletion, settings, locks, notifier, retention.SchedulerConfig{
		BatchSize:       app.Config.RetentionBatchSize,
		WeeklyBatchSize: app.Config.RetentionWeeklyBatch,
		LockTTL:         time.Duration(app.Config.RetentionLockTTLMinutes) * time.Minute,
	})
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
