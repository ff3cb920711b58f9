package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"platewise_server/config"
	"platewise_server/controllers"
	"platewise_server/logger"
	"platewise_server/routes"
	"platewise_server/services"
	"platewise_server/socket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(logger.Options{Mode: cfg.LogMode, Redact: cfg.LogRedaction, HashSalt: cfg.LogHashSalt})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize the store
	var store services.Store
	switch cfg.StoreBackend {
	case config.StoreMemory:
		log.Warn("Using in-memory store, data will not survive a restart")
		store = services.NewMemoryStore()
	default:
		log.Info("Initializing DynamoDB client", "region", cfg.AWSRegion, "users_table", cfg.UsersTable, "history_table", cfg.HistoryTable)
		client, err := services.InitializeDynamoDBClient(ctx, cfg.AWSRegion, cfg.DynamoEndpoint)
		if err != nil {
			log.Fatal("Failed to initialize DynamoDB", "error", err)
		}
		store = services.NewDynamoStore(client, cfg.UsersTable, cfg.HistoryTable, log)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	hub := socket.NewSocketServer(log)
	hub.Start()
	defer hub.Close()

	// Initialize Services
	preferenceService := services.NewUserPreferenceService(store, log)
	preferenceService.Metrics = services.NewMetrics(registry)
	preferenceService.Notifier = hub
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("Invalid REDIS_URL", "error", err)
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()
		preferenceService.Locker = services.NewRedisLocker(redisClient, cfg.LockTTL, log)
		log.Info("Using Redis user locks", "ttl", cfg.LockTTL.String())
	}

	// Initialize the router
	r := mux.NewRouter()
	routes.RegisterRoutes(r, cfg.StoreBackend, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), hub)
	routes.RegisterUserPreferenceRoutes(r, controllers.NewUserPreferenceController(preferenceService, log))

	if cfg.S3BucketName != "" {
		photos, err := services.NewMealPhotoService(ctx, cfg.AWSRegion, cfg.S3BucketName)
		if err != nil {
			log.Fatal("Failed to initialize S3", "error", err)
		}
		routes.RegisterMealPhotoRoutes(r, controllers.NewMealPhotoController(photos, log))
	}

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           corsHandler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Graceful shutdown failed", "error", err)
		}
	}()

	// Start the HTTP server
	log.Info("Starting server", "port", cfg.Port, "store", cfg.StoreBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("Server failed", "error", err)
	}
	log.Info("Server stopped")
}
