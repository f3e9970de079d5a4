package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"ats-backend/internal/checks"
	"ats-backend/internal/quota"
	"ats-backend/internal/shared/config"
	"ats-backend/internal/shared/server"
	"ats-backend/internal/shared/storage/db"
	"ats-backend/internal/shared/storage/object"
	localstore "ats-backend/internal/shared/storage/object/local"
	s3store "ats-backend/internal/shared/storage/object/s3"
	"ats-backend/internal/taxonomy"
)

// App holds shared dependencies.
type App struct {
	Config       config.Config
	Router       *gin.Engine
	DB           *sql.DB
	Store        object.ObjectStore
	Taxonomy     taxonomy.Taxonomy
	ChecksRepo   checks.Repo
	Quota        *quota.Tracker
	CheckService *checks.Service
	CheckHandler *checks.Handler
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

	tax, err := taxonomy.Load(cfg.TaxonomyPath)
	if err != nil {
		// A malformed taxonomy is a configuration error; refuse to start.
		return nil, err
	}

	boundary, err := quotaBoundary(cfg.QuotaTimezone)
	if err != nil {
		return nil, err
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var repo checks.Repo
	if sqlDB != nil {
		repo = &checks.PGRepo{DB: sqlDB, Boundary: boundary}
	} else {
		repo = checks.NewMemoryRepo(boundary)
	}

	tracker := quota.NewTracker(repo, boundary)
	checkSvc := &checks.Service{
		Repo:           repo,
		Quota:          tracker,
		Store:          store,
		Taxonomy:       tax,
		IngestTimeout:  cfg.IngestTimeout,
		StorageTimeout: cfg.StorageTimeout,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}
	checkHandler := checks.NewHandler(checkSvc)

	app := &App{
		Config:       cfg,
		DB:           sqlDB,
		Store:        store,
		Taxonomy:     tax,
		ChecksRepo:   repo,
		Quota:        tracker,
		CheckService: checkSvc,
		CheckHandler: checkHandler,
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:       cfg,
		CheckHandler: checkHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repository")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repository: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func quotaBoundary(name string) (*time.Location, error) {
	if strings.TrimSpace(name) == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("QUOTA_TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
