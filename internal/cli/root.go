package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/vndesk/helpdesk/internal/auth"
	"github.com/vndesk/helpdesk/internal/core/config"
	redisclient "github.com/vndesk/helpdesk/internal/infra/redis"
	"github.com/vndesk/helpdesk/internal/infra/sheets"
	"github.com/vndesk/helpdesk/internal/infra/storage"
	"github.com/vndesk/helpdesk/internal/infra/storage/memory"
	"github.com/vndesk/helpdesk/internal/infra/storage/postgres"
	"github.com/vndesk/helpdesk/internal/server"
)

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "helpdesk",
	Short: "Helpdesk ticket service",
	Long:  `Helpdesk records IT support tickets into a shared spreadsheet-backed store and serves the filtered SLA report with CSV/Excel export.`,
	Run:   runServer,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

func initLogger(level slog.Level) {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	})))
}

func runServer(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()

	// Load Configuration
	cfg, err := config.Load(cfgPath)
	if err != nil {
		initLogger(slog.LevelInfo)
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup logging
	slogLevel := slog.LevelInfo
	if isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}
	initLogger(slogLevel)
	slog.Info("Logger initialized", "level", slogLevel.String())

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		slog.Error("Invalid timezone", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	policy, err := cfg.Retry.Policy()
	if err != nil {
		slog.Error("Invalid retry config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Initialize Storage
	var store storage.Store
	switch {
	case cfg.Sheets.SpreadsheetID != "":
		store, err = sheets.NewStore(ctx, cfg.Sheets, policy)
		if err != nil {
			slog.Error("Failed to init sheets store", "error", err)
			os.Exit(1)
		}
		slog.Info("Using Google Sheets storage", "spreadsheet", cfg.Sheets.SpreadsheetID)
	case cfg.Database.URL != "":
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			slog.Error("Failed to init db", "error", err)
			os.Exit(1)
		}
		if err := db.Migrate("migrations"); err != nil {
			slog.Error("Failed to migrate db", "error", err)
			os.Exit(1)
		}
		store = db
		slog.Info("Using PostgreSQL storage")
	default:
		store = memory.NewMemoryStorage()
		slog.Warn("Using Memory storage, tickets are lost on restart")
	}
	defer store.Close()

	// Initialize Authorization + Drafts
	allowlist := auth.NewAllowlist(cfg.Auth.AllowedEmails)
	var authPolicy auth.Policy = allowlist
	var drafts *redisclient.DraftStore

	if cfg.Redis.URL != "" {
		rc, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			slog.Error("Failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rc.Close()

		if err := rc.SeedAllowlist(ctx, cfg.Auth.AllowedEmails); err != nil {
			slog.Warn("Failed to seed allowlist", "error", err)
		}
		if len(cfg.Auth.AllowedEmails) > 0 {
			authPolicy = auth.NewRedisPolicy(rc, allowlist, slog.Default())
		}

		ttl := time.Duration(0)
		if cfg.Redis.DraftTTL != "" {
			ttl, err = time.ParseDuration(cfg.Redis.DraftTTL)
			if err != nil {
				slog.Error("Invalid draft_ttl", "error", err)
				os.Exit(1)
			}
		}
		drafts = redisclient.NewDraftStore(rc, ttl)
	}

	// Initialize HTTP Server
	srv := server.New(server.Config{
		Port:           cfg.Server.Port,
		Location:       loc,
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
	}, store, drafts, authPolicy, slog.Default())

	// Handle OS Signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
	case err := <-errChan:
		if err != nil {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Graceful Shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Helpdesk stopped gracefully")
}
