package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SimpnicServerTeam/instaclone-auth/internal/config"
	"github.com/SimpnicServerTeam/instaclone-auth/internal/handlers"
	"github.com/SimpnicServerTeam/instaclone-auth/internal/logger"
	"github.com/SimpnicServerTeam/instaclone-auth/internal/repository"
	ent_repo "github.com/SimpnicServerTeam/instaclone-auth/internal/repository/ent"
	"github.com/SimpnicServerTeam/instaclone-auth/internal/repository/memory"
	redis_repo "github.com/SimpnicServerTeam/instaclone-auth/internal/repository/redis"
	"github.com/SimpnicServerTeam/instaclone-auth/internal/router"
	"github.com/SimpnicServerTeam/instaclone-auth/internal/server"
	"github.com/SimpnicServerTeam/instaclone-auth/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel, cfg.AppEnv)

	accountRepo, closer, err := openAccountRepository(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("Failed to open account storage")
	}
	defer closer.Close()

	credentialParams := service.CredentialParamsFromConfig(cfg.KDF)
	credentialStore, err := service.NewCredentialStore(credentialParams)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid KDF configuration")
	}
	tokenService, err := service.NewTokenService(cfg.Token, accountRepo)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid token configuration")
	}

	app := server.New(cfg)
	router.SetupAccountRoutes(app, handlers.NewAccountHandler(
		service.NewAccountService(accountRepo, credentialStore, tokenService),
	), tokenService)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("storage", cfg.StorageDriver).
			Int("kdfIterations", credentialParams.Iterations).
			Dur("tokenTTL", cfg.Token.TTL).
			Msg("Server starting")
		if err := app.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	log.Info().Msg("Server stopped gracefully.")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openAccountRepository selects the account store named by STORAGE_DRIVER.
func openAccountRepository(ctx context.Context, cfg *config.Config) (repository.AccountRepository, io.Closer, error) {
	switch cfg.StorageDriver {
	case config.StorageSQLite:
		drv, err := ent_repo.Open(cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		// Run the auto migration tool.
		if err := ent_repo.Migrate(ctx, drv); err != nil {
			drv.Close()
			return nil, nil, err
		}
		return ent_repo.NewEntAccountRepository(drv), drv, nil
	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisSettings.Address,
			Password: cfg.RedisSettings.Password,
			DB:       cfg.RedisSettings.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisSettings.Address, err)
		}
		return redis_repo.NewRedisAccountRepository(client), client, nil
	default:
		log.Warn().Msg("Using in-memory account storage, accounts are lost on restart")
		return memory.NewMemoryAccountRepository(), nopCloser{}, nil
	}
}
