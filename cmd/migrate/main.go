package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/Tomlord1122/portfolio-backend/internal/config"
	"github.com/Tomlord1122/portfolio-backend/internal/database"
	"github.com/Tomlord1122/portfolio-backend/internal/logger"
)

func main() {
	command := flag.String("command", "up", "migrate command (up|status|down|seed)")
	timeout := flag.Duration("timeout", time.Minute, "command timeout")
	target := flag.Int64("target", 0, "target version for down command (optional)")
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to a YAML config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	log := logger.New(cfg.Env).With(slog.String("service", "migrate"))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	dbService, err := database.New(cfg.DB, log)
	if err != nil {
		log.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbService.Close()

	runner, err := database.NewMigrator(dbService.GetDB(), log)
	if err != nil {
		log.Error("failed to configure migration runner", slog.Any("error", err))
		os.Exit(1)
	}

	switch *command {
	case "up":
		err = runner.Up(ctx)
	case "status":
		err = runner.Status(ctx)
	case "down":
		err = runner.Down(ctx, *target)
	case "seed":
		if cfg.Env == config.EnvProd {
			log.Error("refusing to seed a production database")
			os.Exit(1)
		}
		err = database.Seed(ctx, dbService.GetDB())
	default:
		log.Error("unsupported command", slog.String("command", *command))
		os.Exit(1)
	}
	if err != nil {
		log.Error("migration command failed", slog.String("command", *command), slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("migration command completed", slog.String("command", *command))
}
