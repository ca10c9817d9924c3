package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"restaurant/internal/config"
	"restaurant/internal/infra/db"
	"restaurant/internal/infra/logging"
	"restaurant/internal/infra/metrics"
	"restaurant/internal/server"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", slog.Any("err", err))
		os.Exit(1)
	}
}

func run() error {
	//.env + 環境変数
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := server.Build(cfg, gormDB, logger, metrics.NewServerMetrics("restaurant"))

	//初期管理者
	if err := app.Auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return err
	}

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}
	return server.Start(ctx, app.Echo, addr, logger)
}
