package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"student_dashboard_backend/internal/config"
	"student_dashboard_backend/internal/controller"
	"student_dashboard_backend/internal/repository"
	"student_dashboard_backend/internal/service"
	"student_dashboard_backend/pkg/database"
	"student_dashboard_backend/pkg/logger"
	"student_dashboard_backend/pkg/monitoring"
	"student_dashboard_backend/pkg/security"
	"student_dashboard_backend/pkg/tracing"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

type repositories struct {
	user      *repository.UserRepository
	session   *repository.SessionRepository
	progress  *repository.ProgressRepository
	dashboard *repository.DashboardRepository
	denylist  *repository.TokenDenylist
}

type services struct {
	auth      *service.AuthService
	progress  *service.ProgressService
	dashboard *service.DashboardService
	analytics *service.AnalyticsService
	session   *service.SessionService
	user      *service.UserService
	storage   *service.StorageService
}

type controllers struct {
	auth    *controller.AuthController
	student *controller.StudentController
	teacher *controller.TeacherController
	user    *controller.UserController
	health  *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		user:      repository.NewUserRepository(db),
		session:   repository.NewSessionRepository(db),
		progress:  repository.NewProgressRepository(db),
		dashboard: repository.NewDashboardRepository(db),
		denylist:  repository.NewTokenDenylist(rdb),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) (*services, error) {
	storage, err := service.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}

	return &services{
		auth:      service.NewAuthService(repos.user, repos.denylist, cfg),
		progress:  service.NewProgressService(repos.progress, repos.session),
		dashboard: service.NewDashboardService(repos.dashboard),
		analytics: service.NewAnalyticsService(repos.dashboard, repos.user),
		session:   service.NewSessionService(repos.session),
		user:      service.NewUserService(repos.user),
		storage:   storage,
	}, nil
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	isRelease := a.Config.Server.Mode == "release"
	return &controllers{
		auth:    controller.NewAuthController(s.auth, isRelease),
		student: controller.NewStudentController(s.dashboard, s.progress),
		teacher: controller.NewTeacherController(s.analytics, s.session),
		user:    controller.NewUserController(s.user, s.storage),
		health:  controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode, cfg.ForceMigrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb)
	services, err := app.initServices(repos, cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize services", zap.Error(err))
	}
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(gin.ReleaseMode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("student-dashboard", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
