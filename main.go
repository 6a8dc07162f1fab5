package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/postgate/internal/api"
	"github.com/isdelr/postgate/internal/auth"
	"github.com/isdelr/postgate/internal/config"
	"github.com/isdelr/postgate/internal/database"
	"github.com/isdelr/postgate/internal/logger"
	"github.com/isdelr/postgate/internal/repository"
	"github.com/isdelr/postgate/internal/services"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.LogLevel, !cfg.IsProduction())

	// Set up database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), time.Minute)
	err = database.Migrate(migrateCtx, db)
	cancelMigrate()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize token service")
	}

	// Set up repositories and services
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)

	userService := services.NewUserService(userRepo, auth.NewBcryptHasher(cfg.BcryptCost), tokens, cfg.TokenTTL, cfg.KeepLoggedInTTL)
	postService := services.NewPostService(postRepo, cfg.SlugMaxLength)

	gateway := auth.NewGateway(tokens, auth.NewAccountGate(userRepo))

	// Set up router
	router := api.NewRouter(api.Deps{
		Gateway:        gateway,
		Users:          userService,
		Posts:          postService,
		DB:             db,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("dialect", string(db.Dialect)).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
