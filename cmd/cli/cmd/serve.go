package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"feecalc/api"
	"feecalc/internal/config"
	"feecalc/internal/logging"
	"feecalc/providers"
)

var (
	serveAddr string
	serveUI   string
)

// serveCmd runs the HTTP server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and browser UI server",
	Long: `Serve starts the HTTP server exposing the quote API under /v1 and,
when a UI directory is configured, the static browser calculator on /.
It shuts down gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveAddr, "addr", "", "listen address, overrides config")
	f.StringVar(&serveUI, "ui", "", "path to UI files, overrides config")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveUI != "" {
		cfg.Server.UIDir = serveUI
	}

	server := api.NewServer(providers.NewEngine(), cfg, Version)
	defer server.Close()

	fmt.Printf("feecalc server v%s listening on %s\n", Version, cfg.Server.Addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
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
	return nil
}
