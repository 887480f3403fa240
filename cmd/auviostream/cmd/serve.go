package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/auviostream/auviostream/internal/auth"
	"github.com/auviostream/auviostream/internal/cast"
	"github.com/auviostream/auviostream/internal/database"
	"github.com/auviostream/auviostream/internal/epg"
	internalhttp "github.com/auviostream/auviostream/internal/http"
	"github.com/auviostream/auviostream/internal/http/handlers"
	"github.com/auviostream/auviostream/internal/httpclient"
	"github.com/auviostream/auviostream/internal/playback"
	"github.com/auviostream/auviostream/internal/playlist"
	"github.com/auviostream/auviostream/internal/progress"
	"github.com/auviostream/auviostream/internal/provider"
	"github.com/auviostream/auviostream/internal/provider/auvio"
	"github.com/auviostream/auviostream/internal/provider/ln24"
	"github.com/auviostream/auviostream/internal/provider/regional"
	"github.com/auviostream/auviostream/internal/provider/rtlplay"
	"github.com/auviostream/auviostream/internal/remotesync"
	"github.com/auviostream/auviostream/internal/service"
	"github.com/auviostream/auviostream/internal/store"
	"github.com/auviostream/auviostream/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the auviostream daemon",
	Long: `Start the auviostream HTTP server and background jobs.

The server provides:
- REST API for platforms, catalogs, search, streams, progress and playlists
- Daily TV guide assembled from the primary broadcaster
- Health check endpoint and OpenAPI documentation at /docs`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "Host to bind to (overrides config)")
	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	if cmd.Flags().Changed("host") {
		cfg.Server.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port, _ = cmd.Flags().GetInt("port")
	}

	// Local store
	localDB, err := database.New(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("opening local store: %w", err)
	}
	defer localDB.Close()

	st, err := store.New(localDB, logger)
	if err != nil {
		return fmt.Errorf("initializing local store: %w", err)
	}

	// Optional remote mirror; a missing DSN yields a disabled client and
	// every remote call degrades to a no-op.
	sync, err := remotesync.New(cfg.Sync, logger)
	if err != nil {
		return fmt.Errorf("connecting remote sync: %w", err)
	}
	defer sync.Close()

	// Shared upstream HTTP client
	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = cfg.Upstream.HTTPTimeout
	clientCfg.RetryAttempts = cfg.Upstream.RetryAttempts
	clientCfg.RetryDelay = cfg.Upstream.RetryDelay
	clientCfg.UserAgent = version.UserAgent()
	clientCfg.Logger = logger
	client := httpclient.New(clientCfg)

	// Auth and stream resolution for the primary broadcaster
	authManager := auth.NewManager(cfg.Auth, client, st, sync, logger)
	resolver := playback.NewResolver(client, logger)

	// Provider adapters
	auvioCfg := auvio.DefaultConfig()
	if cfg.Upstream.UserAgent != "" {
		auvioCfg.UserAgent = cfg.Upstream.UserAgent
	}
	auvioAdapter := auvio.New(auvioCfg, client, authManager, resolver, logger)

	registry := provider.NewRegistry()
	registry.Register(auvioAdapter)
	registry.Register(rtlplay.New(rtlplay.DefaultConfig(), client, logger))
	registry.Register(ln24.New(ln24.DefaultConfig(), client, logger))
	for _, station := range regional.NewAll(client, logger) {
		registry.Register(station)
	}

	// Services
	contentService := service.NewContentService(registry, sync, logger)
	tracker := progress.NewTracker(st, sync, cfg.Progress, logger)
	playlists := playlist.NewService(st, sync, logger)
	guide := epg.NewService(auvioAdapter, st, logger)

	// No receiver integration ships with the daemon; the controller
	// answers 503 until a sender is wired in.
	caster := cast.NewController(nil, logger)

	// HTTP server and handlers
	server := internalhttp.NewServer(cfg.Server, logger, version.Version)

	healthHandler := handlers.NewHealthHandler(version.Version).WithDB(localDB)
	if sync.Enabled() {
		healthHandler = healthHandler.WithSyncDB(sync.DB())
	}
	healthHandler.Register(server.API())

	handlers.NewAuthHandler(authManager).Register(server.API())
	handlers.NewPlatformHandler(contentService).Register(server.API())
	handlers.NewContentHandler(contentService).Register(server.API())
	handlers.NewSearchHandler(contentService).Register(server.API())
	handlers.NewStreamHandler(contentService).Register(server.API())
	handlers.NewProgressHandler(tracker).Register(server.API())
	handlers.NewPlaylistHandler(playlists).Register(server.API())
	handlers.NewFavoritesHandler(sync).Register(server.API())
	handlers.NewEPGHandler(guide).Register(server.API())
	handlers.NewCastHandler(caster, contentService, tracker).Register(server.API())

	// Graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		cancel()
	}()

	// Background jobs
	jobs := cron.New(cron.WithSeconds())
	if _, err := jobs.AddFunc(cfg.Jobs.RegistryRefreshCron, func() {
		if err := contentService.RefreshRegistry(ctx); err != nil {
			logger.Warn("registry refresh failed", slog.String("error", err.Error()))
		}
	}); err != nil {
		return fmt.Errorf("scheduling registry refresh: %w", err)
	}
	if _, err := jobs.AddFunc(cfg.Jobs.HistorySyncCron, func() {
		if err := tracker.Reconcile(ctx); err != nil {
			logger.Warn("history reconcile failed", slog.String("error", err.Error()))
		}
	}); err != nil {
		return fmt.Errorf("scheduling history sync: %w", err)
	}
	jobs.Start()
	defer jobs.Stop()

	logger.Info("starting auviostream daemon",
		slog.String("host", cfg.Server.Host),
		slog.Int("port", cfg.Server.Port),
		slog.String("version", version.Version),
		slog.Bool("remote_sync", sync.Enabled()),
	)

	return server.ListenAndServe(ctx)
}
