package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/spachava753/procreg/internal/remote"
)

var mockAddr string

var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Serve an in-memory remote process service for local development",
	Long: `Serve the start, stop and processes endpoints from memory.

The endpoints are mounted under the path of remote.base_url, so the default
configuration talks to this server without changes.`,
	Args: cobra.NoArgs,
	RunE: runMockServer,
}

func init() {
	mockServerCmd.Flags().StringVar(&mockAddr, "addr", "", "listen address (default: host of remote.base_url)")
	rootCmd.AddCommand(mockServerCmd)
}

func runMockServer(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	base, err := url.Parse(cfg.Remote.BaseURL)
	if err != nil {
		return fmt.Errorf("parsing remote.base_url: %w", err)
	}
	addr := mockAddr
	if addr == "" {
		addr = base.Host
	}
	prefix := strings.TrimSuffix(base.Path, "/")

	srv := remote.NewServer(cat, slog.Default())
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           http.StripPrefix(prefix, srv.Handler()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("mock remote service listening", "addr", addr, "prefix", prefix)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-cmd.Context().Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
