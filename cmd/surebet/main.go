package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/surebet/config"
	"github.com/alejandrodnm/surebet/internal/adapters/httpapi"
	"github.com/alejandrodnm/surebet/internal/adapters/notify"
	"github.com/alejandrodnm/surebet/internal/adapters/oddsapi"
	"github.com/alejandrodnm/surebet/internal/adapters/storage"
	"github.com/alejandrodnm/surebet/internal/adapters/synthetic"
	"github.com/alejandrodnm/surebet/internal/cache"
	"github.com/alejandrodnm/surebet/internal/domain"
	"github.com/alejandrodnm/surebet/internal/ports"
	"github.com/alejandrodnm/surebet/internal/scanner"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one scan cycle and exit")
	serve := flag.Bool("serve", false, "serve the HTTP API instead of the console loop")
	mock := flag.Bool("mock", false, "force synthetic data only (ignores the live source)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", true, "print full table (false: compact 1-line)")
	jsonOut := flag.Bool("json", false, "print opportunities as JSON")
	validate := flag.Bool("validate", false, "print step-by-step staking for top 3")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("surebet starting",
		"config", *configPath,
		"interval", cfg.ScanInterval(),
		"sports", cfg.Scanner.Sports,
		"market", cfg.Scanner.Market,
		"once", *once,
		"serve", *serve,
		"mock", *mock,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	if seeded, err := store.SeedSettings(ctx, cfg.InitialSettings()); err != nil {
		slog.Warn("failed to seed settings", "err", err)
	} else if seeded {
		slog.Info("settings seeded from config")
	}

	var settings ports.SettingsStore = store
	if *mock {
		settings = forceMockMode{store}
	}

	liveCache := cache.New[[]domain.Event]()
	var live ports.OddsProvider
	if cfg.API.OddsAPIKey == "" {
		slog.Warn("ODDS_API_KEY not set, live source disabled")
	} else {
		client := oddsapi.NewClient(cfg.API.OddsBase, cfg.API.OddsAPIKey, cfg.RequestTimeout())
		live = oddsapi.NewProvider(client, liveCache)
	}

	svc := scanner.NewService(scanner.ServiceConfig{
		Sports:       cfg.Scanner.Sports,
		Regions:      cfg.Sources.Regions,
		MarketKey:    cfg.Scanner.Market,
		TotalStake:   cfg.Scanner.TotalStake,
		FetchTimeout: cfg.FetchTimeout(),
		Filter: scanner.FilterConfig{
			MinHoursToStart: cfg.Scanner.MinHoursToStart,
			MaxHoursToStart: cfg.Scanner.MaxHoursToStart,
		},
	}, synthetic.NewProvider(nil), live, settings, store)

	if *serve {
		runServer(ctx, cfg, svc, store, liveCache)
		return
	}

	format := notify.FormatCompact
	switch {
	case *jsonOut:
		format = notify.FormatJSON
	case *table:
		format = notify.FormatTable
	}
	notifier := notify.NewConsole(format, *validate)

	scanCfg := scanner.DefaultConfig()
	scanCfg.ScanInterval = cfg.ScanInterval()
	scanCfg.Once = *once
	scanCfg.Query = scanner.Query{
		Sports:       cfg.Scanner.Sports,
		MinProfitPct: cfg.Scanner.MinProfitPct,
		Bookmakers:   cfg.Scanner.Bookmakers,
	}

	s := scanner.New(scanCfg, svc, notifier)
	if err := s.Run(ctx); err != nil {
		slog.Error("scanner exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("surebet stopped cleanly")
}

// runServer sirve la API HTTP hasta recibir SIGINT/SIGTERM.
func runServer(ctx context.Context, cfg *config.Config, svc *scanner.Service, store *storage.SQLiteStorage, liveCache *cache.TTL[[]domain.Event]) {
	h := httpapi.NewHandler(svc, store, store, liveCache, cfg.Scanner.TotalStake, cfg.Scanner.KellyFraction)
	server := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: httpapi.NewRouter(h, httpapi.RouterConfig{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			RequestTimeout: cfg.ServerTimeout(),
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.ServerTimeout() + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		slog.Error("http server error", "err", err)
		os.Exit(1)
	}

	slog.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
}

// forceMockMode fuerza MockMode sobre los settings del store (flag -mock).
type forceMockMode struct {
	ports.SettingsStore
}

func (f forceMockMode) Settings(ctx context.Context) (domain.Settings, error) {
	st, err := f.SettingsStore.Settings(ctx)
	if err != nil {
		return st, err
	}
	st.MockMode = true
	st.ShowMockData = true
	return st, nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
