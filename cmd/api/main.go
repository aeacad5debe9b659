package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"taskAssistant/internal/app"
	"taskAssistant/internal/config"
	"taskAssistant/internal/logger"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "task-assistant:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := app.New(cfg)
	if err := a.Init(ctx); err != nil {
		return multierr.Append(err, a.Shutdown(context.Background()))
	}

	if err := a.Run(ctx); err != nil {
		logger.Error("Server stopped with error", err)
		return err
	}
	return nil
}
