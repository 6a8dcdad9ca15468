package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/heimdex/reeldate/internal/api"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog and run operations over a local HTTP API",
	Long: `Starts the HTTP API on 127.0.0.1. Every route except /health needs the
bearer token printed at startup. Run options in request bodies override
the options file.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default $REELDATE_PORT or 8790)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	startTime := time.Now()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	opts, err := a.loadOptions()
	if err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	authToken, err := a.service.EnsureAuthToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	port := a.cfg.Port()
	if servePort > 0 {
		port = servePort
	}

	a.logger.Info("starting reeldate", "version", version, "data_dir", a.cfg.DataDir())

	server := api.NewServer(api.ServerConfig{
		Port:           port,
		CatalogService: a.service,
		Repository:     a.repo,
		Catalog:        a.service.Host(),
		Stater:         a.stater,
		Options:        opts,
		Logger:         a.logger,
		StartTime:      startTime,
		Version:        version,
	})

	cmd.Println()
	cmd.Printf("  API URL:    http://%s\n", server.Addr())
	cmd.Printf("  Auth Token: %s\n", authToken)
	cmd.Println()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		a.logger.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("failed to shutdown HTTP server", "error", err)
	}

	a.logger.Info("shutdown complete")
	return nil
}
