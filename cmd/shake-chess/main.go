package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	appcfg "github.com/park285/shake-chess/internal/config"
	"github.com/park285/shake-chess/internal/movecache"
	"github.com/park285/shake-chess/internal/msgcat"
	"github.com/park285/shake-chess/internal/obslog"
	"github.com/park285/shake-chess/internal/observer"
	"github.com/park285/shake-chess/internal/remoteengine"
	"github.com/park285/shake-chess/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("shake_chess_exit", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *appcfg.AppConfig, logger *zap.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		return fmt.Errorf("messages: %w", err)
	}

	mode, err := session.ParseMode(cfg.GameMode)
	if err != nil {
		return err
	}
	if mode, err = mode.WithOverrides(cfg.WhitePlayer, cfg.BlackPlayer); err != nil {
		return err
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			err = multierror.Append(err, fmt.Errorf("close move cache: %w", cerr))
		}
	}()

	engine := remoteengine.NewClient(cfg.RemoteEngineURL,
		remoteengine.WithDepth(cfg.RemoteEngineDepth),
		remoteengine.WithTimeout(cfg.RemoteEngineTimeout()),
		remoteengine.WithMaxConnsPerHost(cfg.RemoteEngineMaxConns),
		remoteengine.WithHeaderProvider(apiKeyHeaders(cfg.RemoteEngineAPIKey)),
		remoteengine.WithLogger(logger.Named("remote")),
	)
	fetcher := movecache.NewFetcher(engine, store,
		movecache.WithNamespace("d"+strconv.Itoa(cfg.RemoteEngineDepth)),
		movecache.WithTTL(cfg.MoveCacheTTL()),
		movecache.WithLogger(logger.Named("movecache")),
	)

	hub := observer.NewHub(logger.Named("observer"))
	go hub.Run(ctx.Done())

	controller, err := session.NewController(session.Config{
		Mode:     mode,
		StartFEN: cfg.StartFEN,
		Providers: &session.Providers{
			Seed:       cfg.RandomSeed,
			Fetcher:    fetcher,
			Timeout:    cfg.RemoteEngineTimeout(),
			RetryDelay: cfg.RemoteRetryDelay(),
			Logger:     logger.Named("provider"),
		},
		Messages:    catalog,
		Listener:    hub,
		Logger:      logger.Named("session"),
		StartInMenu: cfg.StartInMenu,
		AutoRestart: cfg.AutoRestart(),
	})
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	loop := session.NewLoop(controller, cfg.TickInterval(), logger.Named("loop"))

	api := observer.NewServer(loop, loop, hub,
		observer.WithMessages(catalog),
		observer.WithServerLogger(logger.Named("http")),
		observer.WithOriginPatterns(cfg.HTTPAllowedOrigins...),
		observer.WithPingInterval(cfg.WSPingInterval()),
	)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http_listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	logger.Info("shake_chess_started",
		zap.String("mode", mode.Name),
		zap.String("white", string(mode.White)),
		zap.String("black", string(mode.Black)),
		zap.String("config_file", cfg.Source),
		zap.Bool("remote_player", mode.Uses(session.KindRemote)),
	)

	loopCtx, cancelLoop := context.WithCancel(ctx)
	defer cancelLoop()
	loopDone := make(chan error, 1)
	go func() { loopDone <- loop.Run(loopCtx) }()

	select {
	case <-ctx.Done():
	case serr, ok := <-serveErr:
		if ok {
			err = multierror.Append(err, fmt.Errorf("http server: %w", serr))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		err = multierror.Append(err, fmt.Errorf("http shutdown: %w", serr))
	}
	cancelLoop()
	<-loopDone
	logger.Info("shake_chess_stopped")
	return err
}

func openStore(ctx context.Context, cfg *appcfg.AppConfig, logger *zap.Logger) (movecache.Store, error) {
	if cfg.RedisURL == "" {
		logger.Info("move_cache_memory")
		return movecache.NewMemoryStore(), nil
	}
	store, err := movecache.NewRedisStore(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("move cache: %w", err)
	}
	logger.Info("move_cache_redis")
	return store, nil
}

func apiKeyHeaders(key string) remoteengine.HeaderProvider {
	return func() map[string]string {
		if key == "" {
			return nil
		}
		return map[string]string{"X-Api-Key": key}
	}
}
