package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/Veraticus/climbr/internal/analysis"
	"github.com/Veraticus/climbr/internal/common"
	"github.com/Veraticus/climbr/internal/config"
	"github.com/Veraticus/climbr/internal/llm"
	"github.com/Veraticus/climbr/internal/storage"
)

func loadSettings() (config.Settings, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Settings{}, common.NewUserError("invalid configuration: "+err.Error(), err)
	}
	return settings, nil
}

// openStorage opens and migrates the database named by settings.
func openStorage(ctx context.Context, settings config.Settings) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(settings.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// resolveAPIKey prefers the configured key and falls back to the credential
// stored for the configured provider. An unreadable credential store degrades
// to no key.
func resolveAPIKey(ctx context.Context, settings config.Settings, kv config.KV) string {
	if settings.APIKey != "" {
		return settings.APIKey
	}
	if kv == nil {
		return ""
	}

	cred := config.NewCredential(kv, config.CredentialKeyFor(settings.Provider))
	if err := cred.Load(ctx); err != nil {
		slog.Warn("Failed to load stored API key", "provider", settings.Provider, "error", err)
		return ""
	}
	return cred.Get()
}

// buildAnalyzer creates an analyzer that calls the configured provider when
// apiKey is set and serves the demo wall otherwise.
func buildAnalyzer(settings config.Settings, apiKey string) (*analysis.Analyzer, error) {
	opts := []analysis.Option{analysis.WithDemoDelay(settings.DemoDelay)}
	if apiKey == "" {
		return analysis.New(nil, opts...), nil
	}

	client, err := llm.NewClient(settings.LLMConfig(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	if settings.RateLimit > 0 {
		client = llm.RateLimited(client, settings.RateLimit)
	}
	slog.Debug("Vision client ready", "provider", client.Name(), "model", settings.Model)
	return analysis.New(client, opts...), nil
}

// analysisFailure turns a failed analysis into a message fit for the terminal.
func analysisFailure(err error) error {
	var msg string
	switch analysis.KindOf(err) {
	case analysis.KindMissingCredential:
		msg = "no API key configured; run `climbr key set` or pass --demo"
	case analysis.KindTransport:
		var transportErr *analysis.TransportError
		if errors.As(err, &transportErr) {
			msg = "vision provider error: " + transportErr.Error()
		}
	case analysis.KindUnparseable:
		msg = "the vision model's answer could not be read"
	case analysis.KindNoRoutes:
		msg = "no routes were found in the photo"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "analysis timed out"
	}
	if msg == "" {
		msg = err.Error()
	}
	return common.NewUserError(msg, err)
}
