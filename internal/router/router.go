package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/chamada-api/api/swagger"
	"github.com/noah-isme/chamada-api/internal/handler"
	"github.com/noah-isme/chamada-api/internal/middleware"
	"github.com/noah-isme/chamada-api/internal/models"
	"github.com/noah-isme/chamada-api/internal/service"
	"github.com/noah-isme/chamada-api/pkg/config"
	"github.com/noah-isme/chamada-api/pkg/export"
	"github.com/noah-isme/chamada-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/chamada-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/chamada-api/pkg/middleware/requestid"
	timeoutmiddleware "github.com/noah-isme/chamada-api/pkg/middleware/timeout"
)

// Options carries everything the HTTP layer is built from.
type Options struct {
	Config  *config.Config
	Logger  *zap.Logger
	Stores  Stores
	Cache   service.CacheRepository
	Metrics *service.MetricsService
	// DB is pinged by /ready. Nil for the in-memory store.
	DB handler.Pinger
}

// App is the assembled API.
type App struct {
	Engine    *gin.Engine
	Auth      *service.AuthService
	Backup    *service.BackupService
	Dashboard *service.DashboardService
	Seed      *service.SeedService
}

// New wires services and handlers onto a gin engine.
func New(opts Options) *App {
	cfg := opts.Config
	logr := opts.Logger
	if logr == nil {
		logr = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = service.NewMetricsService()
	}
	validate := validator.New()
	st := opts.Stores

	cacheSvc := service.NewCacheService(opts.Cache, metrics, cfg.Dashboard.CacheTTL, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Units:      st.Units,
		Classes:    st.Classes,
		Students:   st.Students,
		Attendance: st.Attendance,
		Cache:      cacheSvc,
		CacheTTL:   cfg.Dashboard.CacheTTL,
	})

	userSvc := service.NewUserService(st.Users, st.Units, validate, logr)
	authSvc := service.NewAuthService(st.Users, userSvc, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	unitSvc := service.NewUnitService(st.Units, dashboardSvc, validate, logr)
	courseSvc := service.NewCourseService(st.Courses, validate, logr)
	classSvc := service.NewClassService(st.Classes, st.Units, st.Courses, dashboardSvc, validate, logr)
	studentSvc := service.NewStudentService(st.Students, dashboardSvc, validate, logr)
	attendanceSvc := service.NewAttendanceService(st.Attendance, dashboardSvc, validate, logr).WithMetrics(metrics)
	reportSvc := service.NewReportService(st.Attendance, st.Classes, st.Units, st.Students, export.NewCSVExporter(), export.NewPDFExporter(), logr)
	backupSvc := service.NewBackupService(service.BackupSources{
		Users:      st.Users,
		Units:      st.Units,
		Courses:    st.Courses,
		Classes:    st.Classes,
		Students:   st.Students,
		Attendance: st.Attendance,
	}, logr).WithDownloadPath(apiPrefix(cfg.APIPrefix) + "/backup/download")
	seedSvc := service.NewSeedService(service.SeedStores{
		Users:    st.Users,
		Units:    st.Units,
		Courses:  st.Courses,
		Classes:  st.Classes,
		Students: st.Students,
	}, cfg.SeedPassword, logr)

	healthHandler := handler.NewHealthHandler(metrics, opts.DB)
	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	unitHandler := handler.NewUnitHandler(unitSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	classHandler := handler.NewClassHandler(classSvc, studentSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	backupHandler := handler.NewBackupHandler(backupSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metrics, "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", healthHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(apiPrefix(cfg.APIPrefix))
	api.Use(timeoutmiddleware.New(cfg.RequestTimeout))
	api.GET("/", healthHandler.Root)

	public := api.Group("/auth")
	public.POST("/login", authHandler.Login)
	public.POST("/register", authHandler.Register)
	public.POST("/reset", authHandler.Reset)

	// Signed links authorise themselves.
	api.GET("/backup/download/:token", backupHandler.Download)

	self := api.Group("/auth", middleware.JWT(authSvc))
	self.POST("/change-password", authHandler.ChangePassword)
	self.GET("/me", authHandler.Me)

	secured := api.Group("", middleware.Authenticate(authSvc, cfg.Auth.Required))
	adminOnly := middleware.Noop()
	if cfg.Auth.Required {
		adminOnly = middleware.RequireRoles(models.RoleAdmin)
	}

	users := secured.Group("/users", adminOnly)
	users.GET("", userHandler.List)
	users.GET("/pending", userHandler.Pending)
	users.POST("", userHandler.Create)
	users.POST("/approve/:id", userHandler.Approve)
	users.POST("/reject/:id", userHandler.Reject)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	secured.GET("/units", unitHandler.List)
	secured.POST("/units", unitHandler.Create)
	secured.PUT("/units/:id", unitHandler.Update)

	secured.GET("/courses", courseHandler.List)
	secured.POST("/courses", courseHandler.Create)
	secured.PUT("/courses/:id", courseHandler.Update)

	secured.GET("/classes", classHandler.List)
	secured.POST("/classes", classHandler.Create)
	secured.PUT("/classes/:id", classHandler.Update)
	secured.GET("/classes/:id/students", classHandler.Students)

	secured.GET("/students", studentHandler.List)
	secured.POST("/students", studentHandler.Create)

	secured.GET("/attendance", attendanceHandler.List)
	secured.POST("/attendance", attendanceHandler.Save)

	secured.GET("/dashboard/stats", dashboardHandler.Stats)
	secured.POST("/reports/generate", reportHandler.Generate)

	backup := secured.Group("/backup", adminOnly)
	backup.GET("/export", backupHandler.Export)
	backup.POST("/archive", backupHandler.Archive)

	return &App{
		Engine:    r,
		Auth:      authSvc,
		Backup:    backupSvc,
		Dashboard: dashboardSvc,
		Seed:      seedSvc,
	}
}

func apiPrefix(prefix string) string {
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return "/api"
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix
}
