package app

import (
	"context"
	"fmt"
	"julekalender_backend/internal/config"
	"julekalender_backend/internal/controller"
	"julekalender_backend/internal/repository"
	"julekalender_backend/internal/service"
	"julekalender_backend/internal/util"
	"julekalender_backend/pkg/database"
	"julekalender_backend/pkg/lock"
	"julekalender_backend/pkg/logger"
	"julekalender_backend/pkg/monitoring"
	"julekalender_backend/pkg/security"
	"julekalender_backend/pkg/tracing"
	"julekalender_backend/pkg/vault"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
	tracer *sdktrace.TracerProvider
}

type repositories struct {
	user    *repository.UserRepository
	task    *repository.TaskRepository
	result  *repository.TaskResultRepository
	attempt *repository.TaskAttemptRepository
}

type services struct {
	auth     *service.AuthService
	user     *service.UserService
	storage  *service.StorageService
	task     *service.TaskService
	attempt  *service.AttemptService
	hint     *service.HintService
	calendar *service.Calendar
}

type controllers struct {
	auth      *controller.AuthController
	user      *controller.UserController
	task      *controller.TaskController
	adminTask *controller.AdminTaskController
	health    *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:    repository.NewUserRepository(db),
		task:    repository.NewTaskRepository(db),
		result:  repository.NewTaskResultRepository(db),
		attempt: repository.NewTaskAttemptRepository(db),
	}
}

// newLocker picks the per-(user, task) lock. Redis is needed once more than
// one instance serves submissions.
func newLocker(cfg *config.Config, rdb *redis.Client) lock.Locker {
	wait := time.Duration(cfg.Lock.WaitSeconds) * time.Second
	if cfg.Lock.Type == util.LockRedis && rdb != nil {
		return lock.NewRedisLocker(rdb, "julekalender:lock:",
			time.Duration(cfg.Lock.TTLSeconds)*time.Second,
			wait,
		)
	}
	return lock.NewKeyedMutex(wait)
}

func newVault(cfg *config.Config) (*vault.Vault, error) {
	if cfg.Quiz.AnswerKey == "" {
		logger.Log.Warn("quiz.answer_key is not set, answers are sealed with the JWT secret")
		return vault.NewFromSecret("julekalender:" + cfg.JWT.Secret)
	}
	return vault.NewFromSecret(cfg.Quiz.AnswerKey)
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*services, error) {
	s := &services{}

	v, err := newVault(cfg)
	if err != nil {
		return nil, fmt.Errorf("answer vault: %w", err)
	}
	storage, err := service.NewStorageService(cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	locker := newLocker(cfg, rdb)
	policy := service.ProgressPolicy{
		Budget:   cfg.Quiz.AttemptBudget,
		Cooldown: cfg.Quiz.Cooldown(),
	}

	s.calendar = service.NewCalendar(cfg.Quiz.Location())
	s.storage = storage
	s.auth = service.NewAuthService(repos.user, cfg, s.calendar)
	s.user = service.NewUserService(db, repos.user, repos.result, cfg)
	s.task = service.NewTaskService(db, repos.task, repos.result, v, storage, s.calendar)
	s.attempt = service.NewAttemptService(db, repos.result, repos.attempt, v, locker, policy, s.calendar)
	s.hint = service.NewHintService(db, repos.task, repos.result, locker, policy, s.calendar)

	return s, nil
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		user:      controller.NewUserController(s.user, s.task),
		task:      controller.NewTaskController(s.task, s.attempt, s.hint, s.calendar),
		adminTask: controller.NewAdminTaskController(s.task),
		health:    controller.NewHealthController(db, s.calendar),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	if cfg.Server.Mode != gin.ReleaseMode || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app, nil
	}

	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("initialize redis: %w", err)
		}
		app.Redis = rdb
	}

	repos := app.initRepositories(db)
	services, err := app.initServices(repos, cfg, db, app.Redis)
	if err != nil {
		return nil, err
	}
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("julekalender", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return nil, fmt.Errorf("initialize tracing: %w", err)
		}
		app.tracer = tp
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg, repos.user)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app, nil
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close(ctx)
	logger.Log.Info("Server exiting")
}

// Close releases the tracer, Redis and database handles.
func (a *App) Close(ctx context.Context) {
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Log.Error("Failed to close redis", zap.Error(err))
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
