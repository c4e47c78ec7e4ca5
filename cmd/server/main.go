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

	"github.com/roomcast/roomcast/internal/moderation"
	"github.com/roomcast/roomcast/internal/presence"
	"github.com/roomcast/roomcast/internal/server"
)

// Exit codes provide meaningful status to the operating system or a service
// manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "roomcast terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components and manages the server lifecycle. Keeping
// the logic out of main ensures deferred cleanup executes before the
// process exits.
func run() (int, error) {
	cfg, err := server.LoadConfig()
	if err != nil {
		return exitConfig, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	words := cfg.BannedWords
	if len(words) == 0 {
		words = moderation.DefaultWords
	}
	filter, err := moderation.NewFilter(words)
	if err != nil {
		return exitConfig, fmt.Errorf("building profanity filter: %w", err)
	}

	registry := presence.NewRegistry()
	hub := server.NewHub(logger, registry)
	go hub.Run()

	handler := server.NewHandler(hub, filter, cfg, logger)
	httpServer := server.CreateServer(cfg.Addr(), server.SetupRoutes(handler))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		if serveErr := server.StartServer(httpServer); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
	}()
	logger.Info("server listening", "addr", cfg.Addr())

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr := <-errChan:
		_ = hub.Shutdown(cfg.ShutdownTimeout)
		return exitRuntime, serveErr
	}

	if err := server.ShutdownServer(httpServer, cfg.ShutdownTimeout, logger); err != nil {
		_ = hub.Shutdown(cfg.ShutdownTimeout)
		return exitRuntime, err
	}
	if err := hub.Shutdown(cfg.ShutdownTimeout); err != nil {
		return exitRuntime, err
	}
	return exitOK, nil
}
