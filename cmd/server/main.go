package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/cors"

	"github.com/iliyamo/bola-na-rede/internal/config"
	"github.com/iliyamo/bola-na-rede/internal/database"
	"github.com/iliyamo/bola-na-rede/internal/geo"
	"github.com/iliyamo/bola-na-rede/internal/handler"
	"github.com/iliyamo/bola-na-rede/internal/kvstore"
	"github.com/iliyamo/bola-na-rede/internal/logger"
	"github.com/iliyamo/bola-na-rede/internal/middleware"
	"github.com/iliyamo/bola-na-rede/internal/queue"
	"github.com/iliyamo/bola-na-rede/internal/repository"
	"github.com/iliyamo/bola-na-rede/internal/router"
	"github.com/iliyamo/bola-na-rede/internal/scheduler"
	"github.com/iliyamo/bola-na-rede/internal/service"
)

func main() {
	// .env is optional; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("could not read .env: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(os.Getenv("LOG_LEVEL")))
	cfg := config.Load()

	// Users and refresh tokens
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	defer db.Close()
	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 10*time.Second)
	err = database.Migrate(migrateCtx, db)
	cancelMigrate()
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Redis is optional unless it also holds the match collection.
	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}
	store, closeStore, err := kvstore.Open(cfg.Storage, rdb)
	if err != nil {
		log.Fatalf("match store: %v", err)
	}
	defer closeStore()

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		events = service.NewAMQPPublisher(cfg.RabbitMQURL)
		go queue.StartMatchEventConsumer(cfg.RabbitMQURL, cfg.EventLogDir)
	}

	loc := cfg.Match.Location()
	matches := service.NewMatchService(
		repository.NewMatchRepo(store, cfg.Storage.Key, service.PerPerson),
		events,
		service.MatchRules{Location: loc, Grace: cfg.Match.Grace},
	)

	if sc := config.LoadSweepConfig(); sc.Enabled {
		sched, err := scheduler.New(sc, matches, loc)
		if err != nil {
			log.Fatalf("sweep scheduler: %v", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	geoCache, err := geo.OpenCache(cfg.Geo.CachePath)
	if err != nil {
		logger.Warn("geocode cache disabled: %v", err)
	} else {
		defer geoCache.Close()
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.Recover(), echomw.RequestID(), echomw.Logger())

	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e, store)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db)), cfg.JWTSecret)
	router.RegisterMatches(e, handler.NewMatchHandler(matches), cfg.JWTSecret, limit)
	router.RegisterAddress(e, handler.NewAddressHandler(geo.NewClient(cfg.Geo, geoCache)), cfg.JWTSecret, limit, cache)
	router.RegisterAdmin(e, handler.NewAdminHandler(matches), cfg.JWTSecret)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: cors.New(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After", "X-Cache"},
			AllowCredentials: true,
		}).Handler(e),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening on %s (env=%s, store=%s)", srv.Addr, cfg.Env, cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown: %v", err)
	}
}
