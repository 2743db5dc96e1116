// Package main - Entry point for the feecalc HTTP server
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"feecalc/api"
	"feecalc/internal/config"
	"feecalc/internal/logging"
	"feecalc/providers"
)

const version = "1.0.0"

func main() {
	cfgPath := flag.String("config", config.DefaultPath(), "config file path")
	addr := flag.String("addr", "", "server address, overrides config")
	uiPath := flag.String("ui", "", "path to UI files, overrides config")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *uiPath != "" {
		cfg.Server.UIDir = *uiPath
	}
	config.Set(cfg)

	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	server := api.NewServer(providers.NewEngine(), cfg, version)
	defer server.Close()

	fmt.Printf("🧮 feecalc server v%s\n", version)
	fmt.Printf("   API: http://localhost%s/v1\n", cfg.Server.Addr)
	if cfg.Server.UIDir != "" {
		fmt.Printf("   UI:  http://localhost%s\n", cfg.Server.Addr)
	}
	fmt.Println()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logging.Fatal("server failed", zap.Error(err))
		}
	case sig := <-quit:
		logging.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logging.Error("shutdown error", zap.Error(err))
		}
	}
}
