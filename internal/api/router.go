package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/mcms/admin-panel/docs"
	"github.com/mcms/admin-panel/internal/api/handler"
	"github.com/mcms/admin-panel/internal/api/middleware"
	"github.com/mcms/admin-panel/internal/core/domain"
	"github.com/mcms/admin-panel/internal/core/ports"
	"github.com/mcms/admin-panel/internal/core/service"
	mongodb "github.com/mcms/admin-panel/internal/infrastructure/db/mongo"
	redisdb "github.com/mcms/admin-panel/internal/infrastructure/db/redis"
	"github.com/mcms/admin-panel/internal/pkg/config"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The audit sink is provided by the caller so its workers can share the
// application lifecycle.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, audit ports.AuditSink, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("adminpanel"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	projectRepo := mongodb.NewProjectRepository(db)
	throttle := redisdb.NewLoginThrottle(rdb, 0)

	authService := service.NewAuthService(userRepo, throttle, cfg.JWTSecret, cfg.TokenTTL, log)
	userService := service.NewUserService(userRepo, audit, log)
	projectService := service.NewProjectService(projectRepo, userRepo, audit, log)

	authHandler := handler.NewAuthHandler(authService, userService)
	userHandler := handler.NewUserHandler(userService)
	projectHandler := handler.NewProjectHandler(projectService)

	authRequired := middleware.Auth(cfg.JWTSecret, audit, log)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.GET("/auth/profile", authHandler.Profile, authRequired)

	// --- User routes ---
	users := e.Group("/users", authRequired)
	users.GET("/profile", userHandler.Profile)
	users.PUT("/update-user/:id", userHandler.UpdateProfile)
	users.PUT("/change-password", userHandler.ChangePassword)
	users.GET("/users", userHandler.List, adminOnly)
	users.PUT("/users/:id/set-password", userHandler.SetPassword, adminOnly)
	users.PUT("/admin/users/:id/activate", userHandler.Activate, adminOnly)

	// --- Project routes ---
	projects := e.Group("/projects", authRequired)
	projects.POST("", projectHandler.Create)
	projects.GET("", projectHandler.List)
	projects.GET("/:id", projectHandler.Get)
	projects.PUT("/:id", projectHandler.Update)
	projects.DELETE("/:id", projectHandler.Delete)
	projects.POST("/:id/invite", projectHandler.Invite)
	projects.PUT("/:projectId/members/:memberId", projectHandler.UpdateMemberRole)
	projects.DELETE("/:projectId/members/:memberId", projectHandler.RemoveMember)
	projects.POST("/:id/subprojects", projectHandler.AddSubProject)
	projects.PUT("/:projectId/subprojects/:subId", projectHandler.UpdateSubProject)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
