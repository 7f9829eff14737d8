// Package analysis turns a wall photo into route detections, either through a
// remote vision model or from a fixed demo set.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/climbr/internal/llm"
	"github.com/Veraticus/climbr/internal/model"
)

// Mode selects where detections come from.
type Mode int

const (
	// ModeAuto uses the remote service when a client is configured and demo data otherwise.
	ModeAuto Mode = iota
	// ModeRemote always calls the vision service.
	ModeRemote
	// ModeDemo always returns the demo set.
	ModeDemo
)

func (m Mode) String() string {
	switch m {
	case ModeRemote:
		return "remote"
	case ModeDemo:
		return "demo"
	default:
		return "auto"
	}
}

// ProviderDemo is reported as the source of demo detections.
const ProviderDemo = "demo"

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithDemoDelay makes demo analysis wait before answering.
func WithDemoDelay(d time.Duration) Option {
	return func(a *Analyzer) {
		a.demoDelay = d
	}
}

// WithPrompt overrides the instruction sent to the vision service.
func WithPrompt(prompt string) Option {
	return func(a *Analyzer) {
		a.prompt = prompt
	}
}

// Analyzer runs one detection request at a time for its caller.
type Analyzer struct {
	client    llm.Client
	prompt    string
	demoDelay time.Duration
}

// New creates an Analyzer. A nil client means only demo data is available.
func New(client llm.Client, opts ...Option) *Analyzer {
	a := &Analyzer{
		client: client,
		prompt: Prompt,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Remote reports whether a vision client is configured.
func (a *Analyzer) Remote() bool {
	return a.client != nil
}

// Resolve maps ModeAuto onto the concrete mode that Analyze would use.
func (a *Analyzer) Resolve(mode Mode) Mode {
	if mode != ModeAuto {
		return mode
	}
	if a.Remote() {
		return ModeRemote
	}
	return ModeDemo
}

// Provider names the source used for mode.
func (a *Analyzer) Provider(mode Mode) string {
	if a.Resolve(mode) == ModeRemote && a.client != nil {
		return a.client.Name()
	}
	return ProviderDemo
}

// Analyze returns the routes found in img. The call is made exactly once;
// failures are never retried.
func (a *Analyzer) Analyze(ctx context.Context, img model.Image, mode Mode) ([]model.RouteDetection, error) {
	switch a.Resolve(mode) {
	case ModeDemo:
		return a.demo(ctx)
	case ModeRemote:
		return a.remote(ctx, img)
	default:
		return nil, fmt.Errorf("unknown analysis mode %d", mode)
	}
}

func (a *Analyzer) demo(ctx context.Context) ([]model.RouteDetection, error) {
	if a.demoDelay > 0 {
		timer := time.NewTimer(a.demoDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	slog.Debug("Using demo detections", "routes", len(demoRoutes))
	return Demo(), nil
}

func (a *Analyzer) remote(ctx context.Context, img model.Image) ([]model.RouteDetection, error) {
	if a.client == nil {
		return nil, ErrMissingCredential
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	text, err := a.client.Describe(ctx, img, a.prompt)
	if err != nil {
		slog.Warn("Vision request failed",
			"provider", a.client.Name(),
			"duration", time.Since(start),
			"error", err)
		return nil, a.classify(err)
	}

	detections, err := ParseDetections(text)
	if err != nil {
		slog.Warn("Vision response rejected",
			"provider", a.client.Name(),
			"kind", KindOf(err),
			"response_length", len(text))
		return nil, err
	}

	slog.Info("Wall analysed",
		"provider", a.client.Name(),
		"routes", len(detections),
		"duration", time.Since(start))
	return detections, nil
}

// classify maps client failures onto the analysis error taxonomy.
func (a *Analyzer) classify(err error) error {
	if errors.Is(err, llm.ErrEmptyResponse) {
		return unparseable(err)
	}

	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		return &TransportError{
			Provider: apiErr.Provider,
			Status:   apiErr.Status,
			Message:  apiErr.Message,
			Err:      err,
		}
	}

	return &TransportError{
		Provider: a.client.Name(),
		Message:  err.Error(),
		Err:      err,
	}
}
