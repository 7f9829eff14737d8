package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/climbr/internal/common"
	"github.com/Veraticus/climbr/internal/llm"
)

// Configuration keys.
const (
	KeyLogLevel       = "logging.level"
	KeyLogFormat      = "logging.format"
	KeyProvider       = "vision.provider"
	KeyModel          = "vision.model"
	KeyMaxTokens      = "vision.max_tokens"
	KeyTimeout        = "vision.timeout"
	KeyAPIKey         = "vision.api_key"
	KeyBaseURL        = "vision.base_url"
	KeyDatabasePath   = "database.path"
	KeyExportDir      = "export.dir"
	KeyExportPrefix   = "export.prefix"
	KeyServeAddr      = "serve.addr"
	KeyAllowedOrigins = "serve.allowed_origins"
	KeyServeTLS       = "serve.tls"
	KeyTLSHosts       = "serve.tls_hosts"
	KeyRateLimit      = "vision.requests_per_minute"
	KeyDemoDelay      = "demo.delay"
	KeyTheme          = "tui.theme"
)

// Settings is the resolved configuration for one climbr invocation.
type Settings struct {
	Provider       string
	Model          string
	APIKey         string
	BaseURL        string
	DatabasePath   string
	ExportDir      string
	ExportPrefix   string
	ServeAddr      string
	Theme          string
	AllowedOrigins []string
	TLSHosts       []string
	Timeout        time.Duration
	DemoDelay      time.Duration
	MaxTokens      int
	RateLimit      int
	ServeTLS       bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyProvider, llm.ProviderAnthropic)
	v.SetDefault(KeyMaxTokens, llm.DefaultMaxTokens)
	v.SetDefault(KeyTimeout, 60*time.Second)
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath())
	v.SetDefault(KeyExportDir, ".")
	v.SetDefault(KeyExportPrefix, "wall-set")
	v.SetDefault(KeyServeAddr, ":8080")
	v.SetDefault(KeyAllowedOrigins, []string{"*"})
	v.SetDefault(KeyDemoDelay, time.Duration(0))
	v.SetDefault(KeyTheme, "default")
	v.SetDefault(KeyServeTLS, false)
	v.SetDefault(KeyRateLimit, 0)
}

// Load reads Settings from v. The API key comes from vision.api_key first and
// the provider's conventional environment variable second; the persisted
// credential is consulted later by the caller.
func Load(v *viper.Viper) (Settings, error) {
	s := Settings{
		Provider:       strings.ToLower(strings.TrimSpace(v.GetString(KeyProvider))),
		Model:          v.GetString(KeyModel),
		APIKey:         strings.TrimSpace(v.GetString(KeyAPIKey)),
		BaseURL:        v.GetString(KeyBaseURL),
		DatabasePath:   ExpandPath(v.GetString(KeyDatabasePath)),
		ExportDir:      ExpandPath(v.GetString(KeyExportDir)),
		ExportPrefix:   v.GetString(KeyExportPrefix),
		ServeAddr:      v.GetString(KeyServeAddr),
		Theme:          v.GetString(KeyTheme),
		AllowedOrigins: v.GetStringSlice(KeyAllowedOrigins),
		TLSHosts:       v.GetStringSlice(KeyTLSHosts),
		ServeTLS:       v.GetBool(KeyServeTLS),
		RateLimit:      v.GetInt(KeyRateLimit),
		Timeout:        v.GetDuration(KeyTimeout),
		DemoDelay:      v.GetDuration(KeyDemoDelay),
		MaxTokens:      v.GetInt(KeyMaxTokens),
	}

	if s.Provider == "" {
		s.Provider = llm.ProviderAnthropic
	}
	if !llm.Supported(s.Provider) {
		return Settings{}, fmt.Errorf("%w: unsupported vision provider %q", common.ErrInvalidConfig, s.Provider)
	}

	if s.APIKey == "" {
		s.APIKey = strings.TrimSpace(os.Getenv(llm.APIKeyEnv(s.Provider)))
	}
	if s.MaxTokens < 0 {
		return Settings{}, fmt.Errorf("%w: %s must not be negative", common.ErrInvalidConfig, KeyMaxTokens)
	}
	if s.RateLimit < 0 {
		return Settings{}, fmt.Errorf("%w: %s must not be negative", common.ErrInvalidConfig, KeyRateLimit)
	}
	if s.Timeout < 0 || s.DemoDelay < 0 {
		return Settings{}, fmt.Errorf("%w: durations must not be negative", common.ErrInvalidConfig)
	}
	if s.ExportPrefix == "" {
		s.ExportPrefix = "wall-set"
	}

	return s, nil
}

// LLMConfig converts the settings into a vision client configuration using
// apiKey as the credential.
func (s Settings) LLMConfig(apiKey string) llm.Config {
	return llm.Config{
		Provider:  s.Provider,
		APIKey:    apiKey,
		Model:     s.Model,
		BaseURL:   s.BaseURL,
		Timeout:   s.Timeout,
		MaxTokens: s.MaxTokens,
	}
}
