package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/odyssey-erp/odyssey-ledger/cmd/odyssey/cli"
	"github.com/odyssey-erp/odyssey-ledger/internal/app"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	var commands cli.Commands
	kctx := kong.Parse(&commands,
		kong.Name("odyssey"),
		kong.Description("Double-entry ledger and reporting service."),
		kong.UsageOnError(),
		kong.Bind(&cli.Runtime{Config: cfg, Logger: logger, Stdout: os.Stdout}),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err := kctx.Run(); err != nil {
		logger.Error("command failed", slog.String("command", kctx.Command()), slog.Any("error", err))
		os.Exit(1)
	}
}
