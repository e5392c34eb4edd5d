package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"focustimer/internal/config"
	"focustimer/internal/db"
	"focustimer/internal/logging"
)

type CLI struct {
	Config string `help:"Path to a YAML config file." type:"path" short:"c"`
	Debug  bool   `help:"Enable debug logging."`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("focustimer-migrate"),
		kong.Description("Apply pending SQLite migrations."),
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

	logger, closer, err := logging.New(cfg.Debug || c.Debug, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	applied, err := db.RunMigrations(database, cfg.MigrationsDir)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	logger.Info("migrations applied successfully", "applied", len(applied))
	return nil
}
