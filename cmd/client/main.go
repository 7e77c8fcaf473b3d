package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/leun/leun-client/internal/client/api"
	"github.com/leun/leun-client/internal/client/auth"
	"github.com/leun/leun-client/internal/client/cli"
	"github.com/leun/leun-client/internal/client/config"
	"github.com/leun/leun-client/internal/client/iocli"
	"github.com/leun/leun-client/internal/client/profile"
	"github.com/leun/leun-client/internal/client/session"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	stdio := iocli.NewStdio()

	cfg, args, err := config.Load(".env", os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			cli.PrintUsage(stdio)
			return nil
		}
		return err
	}

	// Show version and exit if requested
	if cfg.ShowVersion {
		printVersion()
		return nil
	}

	// Получаем команду
	if len(args) == 0 {
		cli.PrintUsage(stdio)
		return errors.New("no command given")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Открываем хранилище сессии
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("failed to close session store", "error", err)
		}
	}()

	// Создаем API клиент и ставим перед транспортом session guard
	apiClient := api.NewClient(cfg.ServerURL,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logger),
	)
	guard := session.NewGuard(store, apiClient,
		session.WithLogger(logger),
		session.WithRefreshTimeout(cfg.RefreshTimeout),
		session.WithRefreshRetries(cfg.RefreshRetries, defaultRetryBase),
		session.WithOnSignedOut(func() {
			logger.Info("session ended")
		}),
	)
	apiClient.Use(guard.Middleware)

	authService := auth.NewAuthService(apiClient, guard, logger)
	profileService := profile.NewService(apiClient, guard, logger)

	c := cli.New(stdio, authService, profileService, guard)
	err = c.Run(ctx, args[0], args[1:])
	if errors.Is(err, session.ErrRefreshFailed) {
		return fmt.Errorf("%w\nYour session has expired. Please run 'leun login' again", err)
	}
	return err
}

func printVersion() {
	fmt.Printf("Leun Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
