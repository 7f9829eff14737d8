package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/climbr/internal/model"
)

// Supported providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
)

// DefaultMaxTokens bounds the length of a vision response.
const DefaultMaxTokens = 1024

var (
	// ErrMissingAPIKey is returned when a client is built without a credential.
	ErrMissingAPIKey = errors.New("API key is required")
	// ErrEmptyResponse is returned when the provider answers without any text.
	ErrEmptyResponse = errors.New("no content in response")
)

// Client sends a single image plus instruction to a vision model and returns
// the model's text reply.
type Client interface {
	Describe(ctx context.Context, img model.Image, prompt string) (string, error)
	Name() string
}

// Config holds configuration for a vision client.
type Config struct {
	Provider  string
	APIKey    string
	Model     string
	BaseURL   string
	Timeout   time.Duration
	MaxTokens int
}

// APIError is a non-success answer from the provider.
type APIError struct {
	Provider string
	Message  string
	Status   int
}

func (e *APIError) Error() string {
	return e.Message
}

// newAPIError builds an APIError, falling back to a generic message when the
// provider did not supply one.
func newAPIError(provider string, status int, message string) *APIError {
	if message == "" {
		message = fmt.Sprintf("API error %d", status)
	}
	return &APIError{Provider: provider, Status: status, Message: message}
}
