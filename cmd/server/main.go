package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/api"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/config"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/database"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/game"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/handler"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/logger"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/services"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/utils"
)

const leaderboardCacheTTL = 10 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Could not load config: %v", err)
		os.Exit(1)
	}

	// Connect to PostgreSQL
	db, err := database.ConnectPostgres(cfg)
	if err != nil {
		logger.Error("Database connection failed: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.CreateSchema(context.Background(), db); err != nil {
		logger.Error("Schema creation failed: %v", err)
		os.Exit(1)
	}

	deps := api.Deps{
		Tokens:         utils.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL),
		RefreshTTL:     cfg.RefreshTokenTTL,
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
	}

	// Redis est optionnel: sans lui le classement des games n'est pas mis en cache
	var gameOpts []game.Option
	if cfg.RedisURL != "" {
		rdb, err := database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Warning("Redis disabled: %v", err)
		} else {
			defer closeRedis(rdb)
			cache := services.NewLeaderboardCache(rdb, leaderboardCacheTTL)
			gameOpts = append(gameOpts, game.WithInvalidator(cache))
			deps.Cache = handler.StandingsCache(cache)
		}
	} else {
		logger.Warning("REDIS_URL not set, leaderboard cache disabled")
	}

	if cfg.CloudinaryEnabled() {
		uploader, err := services.NewCloudinaryService(cfg)
		if err != nil {
			logger.Error("Cloudinary init failed: %v", err)
			os.Exit(1)
		}
		deps.Uploader = uploader
		logger.Success("Cloudinary uploads enabled")
	} else {
		logger.Warning("Cloudinary not configured, image uploads disabled")
	}

	deps.Games = game.NewService(database.NewPGStore(db), gameOpts...)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.SetupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Success("Server starting on %s (port %s)", cfg.URL, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}

func closeRedis(rdb *redis.Client) {
	if err := rdb.Close(); err != nil {
		logger.Warning("Redis close: %v", err)
	}
}
