package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/chocobaby727/taskhub/internal/auth"
	"github.com/chocobaby727/taskhub/internal/cache"
	"github.com/chocobaby727/taskhub/internal/config"
	"github.com/chocobaby727/taskhub/internal/http/handlers"
	"github.com/chocobaby727/taskhub/internal/http/middlewares"
	"github.com/chocobaby727/taskhub/internal/observability"
	"github.com/chocobaby727/taskhub/internal/repo/memory"
	"github.com/chocobaby727/taskhub/internal/repo/postgres"
)

// NewRouter wires the full HTTP surface. A nil pool swaps in the in-memory
// repositories, which keeps the router runnable (and testable) without a
// database; a nil redis client disables the distributed login limiter.
func NewRouter(log *slog.Logger, pool *pgxpool.Pool, rdb *redis.Client, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(otelgin.Middleware("taskhub"))

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	}

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)
	r.Use(prom.GinHandleMiddleware())
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// health

	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	// wire up repositories

	var (
		usersRepo handlers.UserStore
		todosRepo interface {
			handlers.TodoStore
			handlers.AdminTodoLister
		}
	)

	if pool != nil {
		usersRepo = postgres.NewUsersRepo(pool, prom)
		todosRepo = postgres.NewTodosRepo(pool, prom)
	} else {
		usersRepo = memory.NewUsersRepo()
		todosRepo = memory.NewTodosRepo()
	}

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTAccessTTL())
	authMiddleware := middlewares.NewAuthMiddleware(jwtManager)

	usersHandler := handlers.NewUsersHandler(usersRepo, jwtManager)

	// one cache for the admin listing, shared so todo mutations can drop it
	adminCache := cache.New(10 * time.Second)
	todosHandler := handlers.NewTodosHandlerWithCache(todosRepo, adminCache)
	adminHandler := handlers.NewAdminHandlerWithCache(todosRepo, adminCache)

	loginWindow := time.Duration(cfg.LoginRateWindowSeconds) * time.Second
	loginLimiter := middlewares.NewLoginLimiter(rdb, log, cfg.LoginRateLimit, loginWindow)
	signupLimiter := middlewares.NewRateLimiter(cfg.LoginRateLimit, loginWindow)

	// users

	users := r.Group("/users")
	{
		users.POST("", middlewares.RequireJSON(), signupLimiter.RateLimiterMiddleware(middlewares.KeyByIP), usersHandler.Register)
		// form-encoded OAuth2 password flow, deliberately outside RequireJSON
		users.POST("/auth/token", loginLimiter.Middleware(), usersHandler.Token)

		me := users.Group("", authMiddleware.RequireAuth())
		{
			me.GET("/me", usersHandler.Me)
			me.PUT("/me/password", middlewares.RequireJSON(), usersHandler.ChangePassword)
		}
	}

	// todos, all ownership-scoped

	todos := r.Group("/todos", authMiddleware.RequireAuth(), middlewares.RequireJSON())
	{
		todos.GET("", todosHandler.ListTodos)
		todos.POST("", todosHandler.CreateTodo)
		todos.GET("/:id", todosHandler.GetTodoByID)
		todos.PUT("/:id", todosHandler.UpdateTodo)
		todos.DELETE("/:id", todosHandler.DeleteTodo)
	}

	// admin

	admin := r.Group("/admin", authMiddleware.RequireAuth(), authMiddleware.RequireRole("admin"))
	{
		admin.GET("/todos", adminHandler.ListAllTodos)
	}

	return r
}
