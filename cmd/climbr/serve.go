package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/climbr/internal/api"
	"github.com/Veraticus/climbr/internal/certs"
	"github.com/Veraticus/climbr/internal/config"
)

const shutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis HTTP API",
		Long: `Serve wall analysis over HTTP.

Endpoints:
  GET    /healthz
  GET    /v1/grades
  GET    /v1/grades/convert?v=V4
  POST   /v1/analyze[?demo=true|remote=true][&save=true]
  GET    /v1/sets
  GET    /v1/sets/{id}
  DELETE /v1/sets/{id}`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (default :8080)")
	cmd.Flags().Bool("tls", false, "Serve HTTPS with a self-signed certificate")
	cmd.Flags().StringSlice("tls-host", nil, "Extra host name or IP the certificate must cover (repeatable)")
	_ = viper.BindPFlag(config.KeyServeAddr, cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag(config.KeyServeTLS, cmd.Flags().Lookup("tls"))
	_ = viper.BindPFlag(config.KeyTLSHosts, cmd.Flags().Lookup("tls-host"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	store, err := openStorage(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	apiKey := resolveAPIKey(ctx, settings, store)
	analyzer, err := buildAnalyzer(settings, apiKey)
	if err != nil {
		return err
	}

	handler := api.NewRouter(api.Config{
		Analyzer:       analyzer,
		Store:          store,
		AllowedOrigins: settings.AllowedOrigins,
		Timeout:        settings.Timeout,
		Remote:         analyzer.Remote(),
	})

	srv := &http.Server{
		Addr:              settings.ServeAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      settings.Timeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ln, err := net.Listen("tcp", settings.ServeAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", settings.ServeAddr, err)
	}

	if settings.ServeTLS {
		manager := certs.NewFileManager(filepath.Join(config.DefaultConfigDir(), "tls"), settings.TLSHosts...)
		cert, err := manager.GetOrCreateCertificate()
		if err != nil {
			_ = ln.Close()
			return fmt.Errorf("failed to prepare TLS certificate: %w", err)
		}
		srv.TLSConfig = &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
		ln = tls.NewListener(ln, srv.TLSConfig)
		slog.Info("Serving HTTPS", "certificate", manager.CertFile())
	}

	slog.Info("Server listening",
		"addr", ln.Addr().String(),
		"tls", settings.ServeTLS,
		"remote", analyzer.Remote(),
		"database", store.Path())
	return serve(ctx, srv, ln)
}

// serve runs srv on ln until ctx is cancelled, then shuts down gracefully.
func serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	<-errCh
	return nil
}
