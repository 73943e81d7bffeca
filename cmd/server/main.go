package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"

	"sales-dashboard/internal/config"
	api "sales-dashboard/internal/controllers/http"
	"sales-dashboard/internal/infra/cache"
	"sales-dashboard/internal/infra/database"
	"sales-dashboard/internal/infra/rabbitmq"
	"sales-dashboard/internal/repository/gormrepo"
	"sales-dashboard/internal/services"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	db, err := database.Open(cfg.DB)
	if err != nil {
		slog.Error("db: connect", "error", err)
		os.Exit(1)
	}

	orders := gormrepo.NewOrderRepository(db)
	products := gormrepo.NewProductRepository(db)
	history := gormrepo.NewImportHistoryRepository(db)
	reports := gormrepo.NewReportRepository(db)

	var publisher rabbitmq.PublisherInterface = rabbitmq.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			slog.Error("failed to init publisher", "error", err)
			os.Exit(1)
		}
		defer p.Close()
		publisher = p
	} else {
		slog.Warn("RABBITMQ_URL not set, import events are dropped")
	}

	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Host + ":" + cfg.Redis.Port,
			DB:           0,
			PoolSize:     50,
			MinIdleConns: 5,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		})
		defer redisClient.Close()
	} else {
		slog.Warn("REDIS_HOST not set, report cache disabled")
	}
	reportCache := cache.NewReportCache(redisClient, cfg.Redis.CacheTTL)

	importService := services.NewImportService(orders, products, history, publisher)
	handler := api.NewHandler(
		importService,
		services.NewCatalogService(orders, products, history),
		services.NewReportService(reports, orders, products),
		reportCache,
		cfg.MaxUploadMB<<20,
	)

	var auth gin.HandlerFunc
	if cfg.Auth.GoogleClientID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		verifier, err := api.NewGoogleVerifier(ctx, cfg.Auth.GoogleClientID)
		cancel()
		if err != nil {
			slog.Error("failed to init google verifier", "error", err)
			os.Exit(1)
		}
		auth = api.RequireAuth(verifier, cfg.Auth.ApprovedEmails)
	} else {
		slog.Warn("GOOGLE_CLIENT_ID not set, API is unauthenticated")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxUploadMB << 20
	r.Use(gin.Recovery(), api.RequestLogger())
	handler.RegisterRoutes(r, auth)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		})(r),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("starting sales dashboard", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server run", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	slog.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	importService.Drain()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	slog.Info("server stopped")
}
