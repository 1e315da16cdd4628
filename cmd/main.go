package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/fantasy-arena/backend/config"
	"github.com/fantasy-arena/backend/db"
	"github.com/fantasy-arena/backend/handlers"
	"github.com/fantasy-arena/backend/repositories"
	"github.com/fantasy-arena/backend/routes"
	"github.com/fantasy-arena/backend/services"
	"github.com/fantasy-arena/backend/storage"
	"github.com/fantasy-arena/backend/ws"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(context.Background(), storage.CloudflareR2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize object storage", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("object storage initialized")
	} else {
		logger.Warn("object storage not configured, crest uploads disabled")
	}

	hub := ws.NewHub(logger)
	go hub.Run()

	txRunner := repositories.NewTxRunner(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	seasonRepo := repositories.NewPostgresSeasonRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	entryRepo := repositories.NewPostgresTournamentEntryRepository(dbConn)
	bracketRepo := repositories.NewPostgresBracketMatchRepository(dbConn)
	standingRepo := repositories.NewPostgresSeasonStandingRepository(dbConn)

	simulator := services.NewScoreSimulator()
	scheduleGen := services.NewLeagueScheduler(teamRepo, matchRepo, logger)
	standingsService := services.NewStandingsService(matchRepo, standingRepo)
	seasonEffects := services.NewStandingsEffects(standingsService, logger)
	catchUp := services.NewCatchUpExecutor(matchRepo, simulator, logger)
	rollover := services.NewRolloverCoordinator(txRunner, seasonRepo, seasonEffects, scheduleGen, hub, logger)
	progression := services.NewProgression(seasonRepo, catchUp, rollover, hub, logger)
	provisioner := services.NewBotProvisioner(tournamentRepo, teamRepo, logger)
	bracketEngine := services.NewBracketEngine(txRunner, tournamentRepo, entryRepo, bracketRepo, provisioner, simulator, hub, logger)

	authService := services.NewAuthService(userRepo, cfg.JWTSecretKey)
	seasonService := services.NewSeasonService(seasonRepo, matchRepo, scheduleGen, logger)
	teamService := services.NewTeamService(teamRepo, uploader, logger)
	tournamentService := services.NewTournamentService(tournamentRepo, entryRepo, bracketRepo, teamRepo)

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 30*time.Second)
	if err := seasonService.Bootstrap(bootCtx); err != nil {
		cancelBoot()
		logger.Error("failed to bootstrap initial season", slog.Any("error", err))
		os.Exit(1)
	}
	cancelBoot()

	scheduler := services.NewScheduler(progression, bracketEngine, cfg.DayTickInterval, cfg.TournamentTickInterval, logger)
	scheduler.Start(context.Background())
	defer scheduler.Stop()

	authHandler := handlers.NewAuthHandler(authService)
	seasonHandler := handlers.NewSeasonHandler(seasonService, standingsService)
	teamHandler := handlers.NewTeamHandler(teamService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	webSocketHandler := handlers.NewWebSocketHandler(hub, logger)

	router := chi.NewRouter()
	routes.SetupRoutes(router, cfg.JWTSecretKey, authHandler, seasonHandler, teamHandler, tournamentHandler, webSocketHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
	}
	logger.Info("application exited")
}
