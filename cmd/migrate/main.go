package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/hall-booking-api/internal/repository"
	"github.com/noah-isme/hall-booking-api/migrations"
	"github.com/noah-isme/hall-booking-api/pkg/config"
	"github.com/noah-isme/hall-booking-api/pkg/database"
	"github.com/noah-isme/hall-booking-api/pkg/logger"
)

func main() {
	os.Exit(realMain(os.Args))
}

func realMain(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}
	logr, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		return 1
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Error("connect postgres", zap.Error(err))
		return 1
	}
	defer db.Close()

	dir := "."
	if info, statErr := os.Stat(cfg.Migrations.Dir); statErr == nil && info.IsDir() {
		dir = cfg.Migrations.Dir
	} else {
		goose.SetBaseFS(migrations.FS)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		logr.Error("set goose dialect", zap.Error(err))
		return 1
	}

	cli := &commandLine{
		db:     db.DB,
		dir:    dir,
		users:  repository.NewUserRepository(db),
		logger: logr,
	}
	if err := cli.run(context.Background(), args); err != nil {
		if errors.Is(err, errHelp) {
			return 2
		}
		logr.Error("command failed", zap.Error(err))
		return 1
	}
	return 0
}
