package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bidfeed/bidfeed-client/internal/config"
	"github.com/bidfeed/bidfeed-client/internal/engine"
	"github.com/bidfeed/bidfeed-client/internal/feed"
	"github.com/bidfeed/bidfeed-client/internal/handlers"
	"github.com/bidfeed/bidfeed-client/internal/models"
	"github.com/bidfeed/bidfeed-client/internal/services"
	"github.com/bidfeed/bidfeed-client/internal/storage"
	"github.com/bidfeed/bidfeed-client/internal/store"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().
		Int("port", cfg.ServerPort).
		Str("feed", cfg.FeedURL).
		Msg("Starting bidfeed client")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.NewDatabase(cfg.SnapshotPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open snapshot cache")
	}
	defer db.Close()
	snapshots := store.NewSnapshotRepository(db)

	initial, err := snapshots.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Snapshot load failed, starting cold")
		initial = nil
	} else if len(initial) > 0 {
		log.Info().Int("count", len(initial)).Msg("Warm-started from snapshot")
	}

	media, err := storage.NewMediaStorage(
		cfg.MediaEndpoint,
		cfg.MediaPublicEndpoint,
		cfg.MediaAccessKey,
		cfg.MediaSecretKey,
		cfg.MediaBucket,
		cfg.MediaUseSSL,
		log.Logger,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize media storage")
	}

	client, err := feed.Dial(ctx, cfg.FeedURL, nil, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to auction feed")
	}
	go client.Run(ctx)

	eng := engine.New(engine.Options{
		Log:             log.Logger,
		ItemsPerPage:    cfg.ItemsPerPage,
		NoticeDismiss:   cfg.NoticeDismiss(),
		RefreshInterval: cfg.RefreshInterval(),
		Snapshots:       snapshots,
		Navigate: func(route string) {
			log.Info().Str("route", route).Msg("navigation hint")
		},
		Initial: initial,
	})

	creator := models.Creator{ID: cfg.CreatorID, UserName: cfg.CreatorName}
	submissions := services.NewSubmissionService(media, client, eng, creator, cfg.AuthToken, log.Logger)
	eng.Observe(submissions)

	go eng.Run(ctx, client.Events())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: handlers.NewRouter(eng, submissions, media),
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown failed")
	}
}
