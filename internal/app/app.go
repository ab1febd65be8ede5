package app

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lullaby-ai/server/internal/adapter/outbound/aiprovider"
	s3adapter "github.com/lullaby-ai/server/internal/adapter/outbound/s3"
	"github.com/lullaby-ai/server/internal/module/auth"
	"github.com/lullaby-ai/server/internal/module/story"
	"github.com/lullaby-ai/server/internal/module/story/pipeline"
	sharedcache "github.com/lullaby-ai/server/internal/shared/cache"
	"github.com/lullaby-ai/server/internal/shared/config"
	"github.com/lullaby-ai/server/internal/shared/database"
	"github.com/lullaby-ai/server/internal/shared/logger"
	"github.com/lullaby-ai/server/internal/shared/metrics"
	"github.com/lullaby-ai/server/internal/shared/middleware"
	"github.com/lullaby-ai/server/internal/shared/task"
)

// App represents the application.
type App struct {
	config    *config.Config
	db        *gorm.DB
	redis     redis.UniversalClient
	router    *gin.Engine
	logger    *logger.Logger
	zapLogger *zap.Logger
	metrics   *metrics.Metrics

	// Modules
	taskManager  *task.Manager
	storyHandler *story.Handler
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	zapLog, err := logger.NewZapLogger(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("init zap logger: %w", err)
	}

	app := &App{
		config:    cfg,
		logger:    log,
		zapLogger: zapLog,
		metrics:   metrics.New("lullaby"),
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	app.db = db

	// Redis is optional; without it job status is served from the database.
	if cfg.Redis.Address != "" {
		redisClient, err := sharedcache.NewRedisClient(&cfg.Redis)
		if err != nil {
			zapLog.Warn("redis connection failed, continuing without status cache", zap.Error(err))
		} else {
			app.redis = redisClient
		}
	}

	app.router = app.setupRouter()

	if err := app.initModules(); err != nil {
		return nil, fmt.Errorf("init modules: %w", err)
	}

	return app, nil
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter() *gin.Engine {
	if a.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.Metrics(a.metrics))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// initModules initializes all application modules and registers routes.
func (a *App) initModules() error {
	mediaClient, err := s3adapter.NewClient(&a.config.Storage)
	if err != nil {
		return fmt.Errorf("create storage client: %w", err)
	}
	media := s3adapter.NewMediaStorageAdapter(mediaClient, a.config.Storage.Bucket, a.config.Storage.PublicBaseURL)

	// AI provider adapters
	temperature := a.config.Text.Temperature
	text := aiprovider.NewChatAdapter(
		&http.Client{Timeout: a.config.Text.Timeout},
		aiprovider.ChatAdapterConfig{
			BaseURL:     a.config.Text.BaseURL,
			APIKey:      a.config.Text.APIKey,
			Model:       a.config.Text.Model,
			Temperature: &temperature,
			MaxTokens:   a.config.Text.MaxTokens,
		},
		"narrative", a.metrics,
	)
	titler := aiprovider.NewChatAdapter(
		&http.Client{Timeout: a.config.Text.Timeout},
		aiprovider.ChatAdapterConfig{
			BaseURL: a.config.Text.BaseURL,
			APIKey:  a.config.Text.APIKey,
			Model:   a.config.Text.TitleModel,
		},
		"title", a.metrics,
	)
	vision := aiprovider.NewChatAdapter(
		&http.Client{Timeout: a.config.Vision.Timeout},
		aiprovider.ChatAdapterConfig{
			BaseURL: a.config.Vision.BaseURL,
			APIKey:  a.config.Vision.APIKey,
			Model:   a.config.Vision.Model,
		},
		"vision", a.metrics,
	)
	speech := aiprovider.NewSpeechAdapter(
		&http.Client{Timeout: a.config.Speech.Timeout},
		aiprovider.SpeechAdapterConfig{
			BaseURL:      a.config.Speech.BaseURL,
			APIKey:       a.config.Speech.APIKey,
			Model:        a.config.Speech.Model,
			OutputFormat: a.config.Speech.OutputFormat,
		},
		a.metrics,
	)

	// Story module
	storyRepo := story.NewRepository(a.db, a.config.Pipeline.MusicCacheTTL)

	gen := pipeline.New(
		storyRepo,
		media,
		text,
		titler,
		vision,
		speech,
		a.zapLogger,
		a.metrics,
		pipeline.Config{
			MaxImages:         a.config.Pipeline.MaxImages,
			NarrationMaxChars: a.config.Pipeline.NarrationMaxChars,
		},
	)

	var statusCache task.StatusCache
	if a.redis != nil {
		statusCache = task.NewRedisStatusCache(a.redis, a.config.Pipeline.StatusCacheTTL)
	}

	jobRepo := task.NewRepository(a.db)
	a.taskManager = task.NewManager(jobRepo, gen.Run, statusCache, a.metrics, a.zapLogger, &task.ManagerConfig{
		MaxConcurrent: a.config.Pipeline.MaxConcurrentJobs,
	})

	storyService := story.NewService(storyRepo, a.taskManager, gen.Run, a.zapLogger)
	a.storyHandler = story.NewHandler(storyService)

	// Auth
	jwtManager := auth.NewJWTManager(&auth.JWTConfig{
		Secret:            a.config.Auth.JWTSecret,
		AccessTokenExpiry: a.config.Auth.AccessTokenExpiry,
	})

	v1 := a.router.Group("/api/v1")
	protected := v1.Group("")
	protected.Use(middleware.Auth(jwtManager))
	a.storyHandler.RegisterRoutes(protected)

	return nil
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop stops the application and releases resources.
func (a *App) Stop() {
	if a.taskManager != nil {
		a.taskManager.Stop()
	}

	if a.zapLogger != nil {
		_ = a.zapLogger.Sync()
	}

	if a.redis != nil {
		_ = sharedcache.Close(a.redis)
	}

	if a.db != nil {
		_ = database.Close(a.db)
	}
}
