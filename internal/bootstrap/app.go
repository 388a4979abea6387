package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resumefit/internal/analyses"
	"resumefit/internal/flows"
	"resumefit/internal/generations"
	"resumefit/internal/llm"
	"resumefit/internal/llm/gemini"
	"resumefit/internal/llm/openai"
	"resumefit/internal/records"
	"resumefit/internal/services/health"
	"resumefit/internal/shared/config"
	"resumefit/internal/shared/metrics"
	"resumefit/internal/shared/server"
	"resumefit/internal/shared/server/middleware"
	"resumefit/internal/shared/storage/db"
	"resumefit/internal/shared/storage/object"
	localstore "resumefit/internal/shared/storage/object/local"
	miniostore "resumefit/internal/shared/storage/object/minio"
	s3store "resumefit/internal/shared/storage/object/s3"
	"resumefit/internal/shared/telemetry"
	"resumefit/internal/validation"
)

// App holds shared dependencies.
type App struct {
	Config             config.Config
	Router             *gin.Engine
	DB                 *sql.DB
	Provider           llm.Provider
	Flows              *flows.Service
	Records            *records.Service
	Archive            object.ObjectStore
	AnalysesService    *analyses.Service
	GenerationsService *generations.Service
}

// Build wires configuration into services and the HTTP router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	metrics.Register()

	provider, err := BuildProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	archive, err := buildArchive(ctx, cfg)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	limiter, err := buildLimiter(cfg)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Provider: provider,
		Archive:  archive,
	}
	buildServices(app)

	storeKind := "memory"
	var pinger health.Pinger
	if sqlDB != nil {
		storeKind = "postgres"
		pinger = sqlDB
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            cfg,
		AnalysisHandler:   analyses.NewHandler(app.AnalysesService),
		GenerationHandler: generations.NewHandler(app.GenerationsService),
		Health:            health.NewService(pinger, provider.Name(), storeKind),
		Limiter:           limiter,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":      cfg.Env,
		"provider": provider.Name(),
		"model":    cfg.LLMModel,
		"store":    storeKind,
		"archive":  cfg.ResumeArchive,
	})
	return app, nil
}

// BuildServices wires the provider, records and both actions without an
// HTTP router or archive. Used by the CLI.
func BuildServices(ctx context.Context, cfg config.Config) (*App, error) {
	provider, err := BuildProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, DB: sqlDB, Provider: provider}
	buildServices(app)
	return app, nil
}

// Close releases the database pool, if any.
func (a *App) Close() {
	closeDB(a.DB)
}

func buildServices(app *App) {
	var store records.Store
	if app.DB != nil {
		store = &records.PGStore{DB: app.DB}
	} else {
		store = records.NewMemoryStore()
	}

	validator := validation.New(validation.Policy{
		MinJobDescriptionChars: app.Config.MinJobDescriptionChars,
		MinResumeTextChars:     app.Config.MinResumeTextChars,
		MaxResumeBytes:         app.Config.MaxResumeBytes,
	})

	app.Flows = flows.NewService(app.Provider)
	app.Records = records.NewService(store)

	var archiver *analyses.Archiver
	if app.Archive != nil {
		archiver = &analyses.Archiver{Store: app.Archive}
	}

	app.AnalysesService = &analyses.Service{
		Validator: validator,
		Flows:     app.Flows,
		Records:   app.Records,
		Archive:   archiver,
	}
	app.GenerationsService = &generations.Service{
		Validator: validator,
		Generator: app.Flows,
		Records:   app.Records,
	}
}

// BuildProvider returns the configured model provider wrapped with retries.
func BuildProvider(ctx context.Context, cfg config.Config) (llm.Provider, error) {
	var base llm.Provider
	switch cfg.LLMProvider {
	case "gemini":
		client, err := gemini.NewClient(ctx, gemini.Options{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.LLMModel,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		base = client
	case "openai":
		client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.OpenAIBaseURL, cfg.LLMTimeout)
		if err != nil {
			return nil, fmt.Errorf("openai client: %w", err)
		}
		base = client
	case "placeholder":
		base = llm.PlaceholderClient{}
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLMProvider)
	}
	return llm.NewRetrying(base, cfg.LLMMaxAttempts, cfg.LLMTimeout), nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.database_missing", map[string]any{"fallback": "memory"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			closeDB(sqlDB)
		}
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.database_unavailable", map[string]any{
				"fallback": "memory",
				"error":    err,
			})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildArchive(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ResumeArchive {
	case config.ArchiveLocal:
		return localstore.New(cfg.LocalStoreDir), nil
	case config.ArchiveS3:
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case config.ArchiveMinIO:
		return miniostore.New(ctx, miniostore.Config{
			Endpoint:        cfg.MinIO.Endpoint,
			AccessKeyID:     cfg.MinIO.AccessKeyID,
			SecretAccessKey: cfg.MinIO.SecretAccessKey,
			UseSSL:          cfg.MinIO.UseSSL,
			Region:          cfg.AWSRegion,
			Bucket:          cfg.MinIO.Bucket,
		})
	default:
		return nil, nil
	}
}

func buildLimiter(cfg config.Config) (middleware.Limiter, error) {
	if cfg.RedisURL == "" {
		return middleware.NewRateLimiter(nil), nil
	}
	limiter, err := middleware.NewRedisLimiter(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis limiter: %w", err)
	}
	return limiter, nil
}

func closeDB(sqlDB *sql.DB) {
	if sqlDB != nil {
		_ = sqlDB.Close()
	}
}
