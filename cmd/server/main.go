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

	"github.com/alecthomas/kong"
	"golang.org/x/sync/errgroup"

	"focustimer/internal/chime"
	"focustimer/internal/companion"
	"focustimer/internal/config"
	"focustimer/internal/db"
	"focustimer/internal/focus"
	"focustimer/internal/handler"
	"focustimer/internal/logging"
	"focustimer/internal/repository"
	"focustimer/internal/router"
	"focustimer/internal/service"
	"focustimer/internal/video"
)

const shutdownTimeout = 10 * time.Second

type CLI struct {
	Config  string `help:"Path to a YAML config file." type:"path" short:"c"`
	Debug   bool   `help:"Enable debug logging."`
	LogFile string `help:"Write logs to this file instead of stderr." type:"path"`
	Port    string `help:"Listen port, overrides the config file."`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("focustimer"),
		kong.Description("Focus timer service with background video and a companion window."),
		kong.UsageOnError(),
	)
	if err := kctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (c *CLI) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if c.Port != "" {
		cfg.Port = c.Port
	}
	if c.LogFile != "" {
		cfg.LogFile = c.LogFile
	}

	logger, closer, err := logging.New(cfg.Debug || c.Debug, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)

	location, err := cfg.Location()
	if err != nil {
		return err
	}

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	if _, err := db.RunMigrations(database, cfg.MigrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	userRepo := repository.NewUserRepository(database)
	settingsService := service.NewSettingsService(repository.NewSettingsRepository(database))
	recordService := service.NewRecordService(repository.NewRecordRepository(database), location)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL())

	loader := video.NewLoader(func(string) video.Provider {
		return video.NewSimulatedPlayer(time.Now, cfg.Video.ContentSeconds)
	})
	registry := focus.NewRegistry(
		settingsService,
		recordService,
		companion.NewStreamHost(cfg.Companion.Enabled),
		companion.Size{Width: cfg.Companion.Width, Height: cfg.Companion.Height},
		focus.Options{
			Chime:  newChimePlayer(cfg.Chime, logger),
			Loader: loader,
			Logger: logger,
		},
	)

	engine := router.New(authService, router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Timer:     handler.NewTimerHandler(registry),
		Records:   handler.NewRecordHandler(recordService, time.Now),
		Video:     handler.NewVideoHandler(),
		Companion: handler.NewCompanionHandler(registry, logger),
	}, cfg.Origins(), logger)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("backend listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("run server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")

		// companion streams hold requests open until their surfaces close
		registry.CloseAll()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func newChimePlayer(cfg config.ChimeConfig, logger *slog.Logger) chime.Player {
	timed := chime.NewTimedPlayer(cfg.Duration())
	if cfg.Mode == "silent" {
		return timed
	}
	return chime.NewSystemPlayer(cfg.File, timed, logger)
}
