package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/HammerMeetNail/fittrack/internal/config"
	"github.com/HammerMeetNail/fittrack/internal/database"
	"github.com/HammerMeetNail/fittrack/internal/handlers"
	"github.com/HammerMeetNail/fittrack/internal/logging"
	"github.com/HammerMeetNail/fittrack/internal/middleware"
	"github.com/HammerMeetNail/fittrack/internal/models"
	"github.com/HammerMeetNail/fittrack/internal/services"
)

const (
	defaultAuthRateLimit     int64 = 20
	developmentAuthRateLimit int64 = 200
)

func main() {
	if err := run(); err != nil {
		logging.Error("Application error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	logger := logging.New()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.Server.Debug {
		logger.SetLevel(logging.LevelDebug)
		logging.SetDefaultLevel(logging.LevelDebug)
		logger.Debug("Debug logging enabled", map[string]interface{}{"env": cfg.Server.Environment})
	}

	logger.Info("Starting FitTrack server...")

	logger.Info("Connecting to PostgreSQL", map[string]interface{}{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
	})
	db, err := database.NewPostgresDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	if err := database.EnsureSchema(context.Background(), db.Pool); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	logger.Info("Schema ready")

	// Redis only backs rate limiting; without it the limiter passes everything.
	var counter services.WindowCounter
	var redisHealth interface {
		Health(ctx context.Context) error
	}
	if cfg.Redis.Enabled {
		logger.Info("Connecting to Redis", map[string]interface{}{"addr": cfg.Redis.Addr()})
		redisDB, err := database.NewRedisDB(cfg.Redis)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer func() { _ = redisDB.Close() }()
		counter = services.NewRedisAdapter(redisDB.Client)
		redisHealth = redisDB
		logger.Info("Connected to Redis")
	} else {
		logger.Warn("Redis disabled; auth rate limiting is off")
	}

	dbAdapter := services.NewPoolAdapter(db.Pool)

	userService := services.NewUserService(dbAdapter)
	authService := services.NewAuthService(userService, cfg.JWT)
	weightService := services.NewMetricService(dbAdapter, models.MetricWeight)
	calorieService := services.NewMetricService(dbAdapter, models.MetricCalorie)
	statsService := services.NewStatisticsService(userService, weightService, calorieService)
	friendService := services.NewFriendService(dbAdapter)
	foodService := services.NewFoodService(dbAdapter)

	metrics := middleware.NewMetrics()
	authLimit := resolveAuthRateLimit(cfg, logger, os.LookupEnv)

	mux := newRouter(routerDeps{
		health:       handlers.NewHealthHandler(db, redisHealth),
		auth:         handlers.NewAuthHandler(authService),
		profile:      handlers.NewProfileHandler(userService),
		weights:      handlers.NewMetricHandler(weightService),
		calories:     handlers.NewMetricHandler(calorieService),
		statistics:   handlers.NewStatisticsHandler(statsService),
		foods:        handlers.NewFoodHandler(foodService),
		friends:      handlers.NewFriendHandler(friendService),
		requireAuth:  middleware.NewAuthMiddleware(authService).RequireAuth,
		authLimiter:  middleware.NewRateLimiter(counter, authLimit, cfg.RateLimit.Window, "ratelimit:auth:", middleware.GetClientIP, true),
		writeLimiter: middleware.NewRateLimiter(counter, cfg.RateLimit.Write, cfg.RateLimit.WriteWindow, "ratelimit:write:", middleware.UserKey, true),
		metrics:      metrics,
	})

	// Build middleware chain (order matters: outermost first)
	var handler http.Handler = middleware.JSONFallback(mux)
	handler = cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler(handler)
	handler = middleware.NewRequestLogger(logger).Apply(handler)
	handler = metrics.Middleware(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), resolveShutdownTimeout(logger, os.LookupEnv))
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Could not gracefully shutdown the server", map[string]interface{}{
				"error": err.Error(),
			})
		}
		close(done)
	}()

	logger.Info("Server listening", map[string]interface{}{
		"addr": addr,
	})
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("Server stopped")
	return nil
}

type routerDeps struct {
	health       *handlers.HealthHandler
	auth         *handlers.AuthHandler
	profile      *handlers.ProfileHandler
	weights      *handlers.MetricHandler
	calories     *handlers.MetricHandler
	statistics   *handlers.StatisticsHandler
	foods        *handlers.FoodHandler
	friends      *handlers.FriendHandler
	requireAuth  func(http.Handler) http.Handler
	authLimiter  *middleware.RateLimiter
	writeLimiter *middleware.RateLimiter
	metrics      *middleware.Metrics
}

func newRouter(d routerDeps) *http.ServeMux {
	mux := http.NewServeMux()
	protected := func(h http.HandlerFunc) http.Handler {
		return d.requireAuth(h)
	}
	// Writes are limited per user, so the limiter runs inside requireAuth.
	write := func(h http.HandlerFunc) http.Handler {
		return d.requireAuth(d.writeLimiter.Middleware(h))
	}

	// Health endpoints (no auth, no rate limit)
	mux.HandleFunc("GET /health", d.health.Health)
	mux.HandleFunc("GET /ready", d.health.Ready)
	mux.HandleFunc("GET /live", d.health.Live)
	mux.Handle("GET /metrics", d.metrics.Handler())

	// Auth endpoints
	mux.Handle("POST /api/auth/register", d.authLimiter.Middleware(http.HandlerFunc(d.auth.Register)))
	mux.Handle("POST /api/auth/login", d.authLimiter.Middleware(http.HandlerFunc(d.auth.Login)))

	// Profile, goals, statistics
	mux.Handle("GET /api/users/profile", protected(d.profile.Get))
	mux.Handle("POST /api/users/profile", write(d.profile.Update))
	mux.Handle("POST /api/users/goals", write(d.profile.UpdateGoals))
	mux.Handle("GET /api/users/statistics", protected(d.statistics.Statistics))
	mux.Handle("GET /api/users/monthly-data", protected(d.statistics.MonthlyData))

	// Foods
	mux.Handle("GET /api/users/foods", protected(d.foods.List))
	mux.Handle("POST /api/users/foods", write(d.foods.Create))

	// Friends
	mux.Handle("GET /api/users/friends", protected(d.friends.List))
	mux.Handle("POST /api/users/friends", write(d.friends.SendRequest))
	mux.Handle("POST /api/users/friends/{id}/accept", write(d.friends.Accept))
	mux.Handle("POST /api/users/friends/{id}/reject", write(d.friends.Reject))

	// Weight and calorie entries share one route shape
	for prefix, h := range map[string]*handlers.MetricHandler{"/api/weights": d.weights, "/api/calories": d.calories} {
		mux.Handle("GET "+prefix, protected(h.List))
		mux.Handle("POST "+prefix, write(h.Upsert))
		mux.Handle("PUT "+prefix, write(h.Upsert))
		mux.Handle("GET "+prefix+"/recent", protected(h.Recent))
		mux.Handle("GET "+prefix+"/latest", protected(h.Latest))
		mux.Handle("GET "+prefix+"/date/{date}", protected(h.ByDate))
		mux.Handle("DELETE "+prefix+"/{id}", write(h.Delete))
	}

	return mux
}

// resolveAuthRateLimit loosens the per-IP register/login limit in development
// unless AUTH_RATE_LIMIT was set explicitly.
func resolveAuthRateLimit(cfg *config.Config, logger *logging.Logger, lookupEnv func(string) (string, bool)) int64 {
	limit := cfg.RateLimit.Auth
	if v, ok := lookupEnv("AUTH_RATE_LIMIT"); ok && v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil || parsed <= 0 {
			logger.Warn("Invalid AUTH_RATE_LIMIT; using default", map[string]interface{}{
				"value": v,
				"limit": defaultAuthRateLimit,
			})
			return defaultAuthRateLimit
		}
		logger.Info("Using auth rate limit from env", map[string]interface{}{"limit": parsed})
		return parsed
	}
	if cfg.Server.Environment == "development" {
		limit = developmentAuthRateLimit
		logger.Info("Using development auth rate limit", map[string]interface{}{"limit": limit})
	}
	return limit
}

func resolveShutdownTimeout(logger *logging.Logger, lookupEnv func(string) (string, bool)) time.Duration {
	timeout := 30 * time.Second
	if value, ok := lookupEnv("SHUTDOWN_TIMEOUT"); ok && value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil || parsed <= 0 {
			logger.Warn("Invalid SHUTDOWN_TIMEOUT; using default", map[string]interface{}{
				"value":   value,
				"default": timeout.String(),
			})
		} else {
			timeout = parsed
		}
	}
	return timeout
}
