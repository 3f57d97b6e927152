package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"alttabwell/internal/config"
	"alttabwell/internal/db"
	"alttabwell/internal/estimator"
	"alttabwell/internal/handlers"
	"alttabwell/internal/identity"
	mw "alttabwell/internal/middleware"
	"alttabwell/internal/services"
	"alttabwell/internal/storage"
	"alttabwell/internal/store"
)

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsDevelopment() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger config depends on cfg, so fall back to a production logger here
		zap.Must(zap.NewProduction()).Fatal("invalid configuration", zap.Error(err))
	}

	logger := newLogger(cfg)
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx := context.Background()

	dbConn, err := sqlx.Open("pgx", cfg.Database.URL)
	if err != nil {
		logger.Fatal("failed to open db", zap.Error(err))
	}
	dbConn.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbConn.SetConnMaxLifetime(2 * time.Hour)
	if err := dbConn.PingContext(ctx); err != nil {
		logger.Fatal("failed to ping db", zap.Error(err))
	}
	if err := db.RunMigrations(ctx, dbConn); err != nil {
		logger.Fatal("failed migrations", zap.Error(err))
	}

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Fatal("invalid REDIS_URL", zap.Error(err))
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to ping redis", zap.Error(err))
	}

	encSvc, err := services.NewEncryptionService(cfg.Auth.EncryptionSecret)
	if err != nil {
		logger.Fatal("failed to init encryption", zap.Error(err))
	}

	gemini, err := estimator.NewGemini(ctx, estimator.Options{
		APIKey:     cfg.Gemini.APIKey,
		Model:      cfg.Gemini.Model,
		RatePerSec: cfg.Gemini.RatePerSec,
		Burst:      cfg.Gemini.Burst,
	}, logger.Named("gemini"))
	if err != nil {
		logger.Fatal("failed to init calorie estimator", zap.Error(err))
	}
	defer gemini.Close()

	images, err := storage.NewStorage(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("failed to init image storage", zap.Error(err))
	}

	st := store.New(dbConn)
	google := identity.NewGoogle(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL,
		identity.NewStateStore(rdb, identity.DefaultStateTTL))
	authMW := mw.NewAuthMiddleware([]byte(cfg.Auth.JWTSecret))

	authHandler := handlers.NewAuthHandler(st, google, authMW, logger)
	userHandler := handlers.NewUserHandler(st, logger)
	departmentHandler := handlers.NewDepartmentHandler(st, logger)
	leaderboardHandler := handlers.NewLeaderboardHandler(st, logger)
	dashboardHandler := handlers.NewDashboardHandler(st, encSvc, logger)
	wellnessHandler := handlers.NewWellnessHandler(st, encSvc, logger)
	stepsHandler := handlers.NewStepsHandler(st, logger)
	nutritionHandler := handlers.NewNutritionHandler(st, gemini, images, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.ZapRequestLogger(logger))
	r.Use(mw.ZapRecoverer(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := dbConn.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/quote", handlers.RandomQuote)
		api.Get("/departments", departmentHandler.List)
		api.Get("/leaderboard", leaderboardHandler.Weekly)
		api.Get("/auth/google/login", authHandler.GoogleLogin)
		api.Get("/auth/google/callback", authHandler.GoogleCallback)

		api.Group(func(pr chi.Router) {
			pr.Use(authMW.RequireAuth)
			pr.Get("/me", userHandler.GetMe)
			pr.Put("/me/department", userHandler.SelectDepartment)
			pr.Get("/nutrition/estimate", nutritionHandler.Estimate)

			pr.Group(func(dr chi.Router) {
				dr.Use(mw.RequireDepartment(st, logger))
				dr.Get("/dashboard", dashboardHandler.Get)
				dr.Post("/wellness", wellnessHandler.Upsert)
				dr.Get("/wellness/history", wellnessHandler.History)
				dr.Put("/steps", stepsHandler.Upsert)
				dr.Post("/nutrition", nutritionHandler.Add)
				dr.Post("/nutrition/upload", nutritionHandler.Upload)
				dr.Get("/departments/nutrition", departmentHandler.NutritionTotals)
			})
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Environment))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown initiated")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	logger.Info("server stopped")
}
