package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Gmail delivery modes.
const (
	GmailModeSend  = "send"
	GmailModeDraft = "draft"
)

// Generator providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOffline   = "offline"
)

const (
	scopeGmailSend    = "https://www.googleapis.com/auth/gmail.send"
	scopeGmailCompose = "https://www.googleapis.com/auth/gmail.compose"
	scopeGmailModify  = "https://www.googleapis.com/auth/gmail.modify"
	scopeMailFull     = "https://mail.google.com/"
)

// GmailConfig holds the OAuth client and mailbox settings.
type GmailConfig struct {
	// CredentialsPath is the OAuth client secrets JSON downloaded from
	// the Google Cloud console.
	CredentialsPath string `mapstructure:"credentials_path" yaml:"credentials_path"`

	// TokenPath is a writable file caching the user's OAuth token.
	TokenPath string `mapstructure:"token_path" yaml:"token_path"`

	// Mode is "send" to deliver on confirmation or "draft" to only
	// create a draft in the mailbox.
	Mode string `mapstructure:"mode" yaml:"mode"`

	// Scopes overrides the default gmail.compose scope.
	Scopes []string `mapstructure:"scopes" yaml:"scopes"`

	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// OAuthScopes returns the configured scopes, or gmail.compose when none
// are configured. gmail.compose covers both sending and drafts, so the
// single-shot draft command works in either mode.
func (g GmailConfig) OAuthScopes() []string {
	if len(g.Scopes) > 0 {
		return g.Scopes
	}
	return []string{scopeGmailCompose}
}

// CanDraft reports whether the requested scopes allow creating drafts.
// gmail.send alone does not.
func (g GmailConfig) CanDraft() bool {
	for _, s := range g.OAuthScopes() {
		switch s {
		case scopeGmailCompose, scopeGmailModify, scopeMailFull:
			return true
		}
	}
	return false
}

// AIConfig holds settings for the structured-response generator.
type AIConfig struct {
	Provider      string  `mapstructure:"provider" yaml:"provider"`
	Model         string  `mapstructure:"model" yaml:"model"`
	MaxTokens     int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature   float64 `mapstructure:"temperature" yaml:"temperature"`
	TimeoutSec    int     `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	HistoryWindow int     `mapstructure:"history_window" yaml:"history_window"`
}

// DisplayConfig holds UI preferences.
type DisplayConfig struct {
	Title          string `mapstructure:"title" yaml:"title"`
	CentralMailbox string `mapstructure:"central_mailbox" yaml:"central_mailbox"`
	SenderName     string `mapstructure:"sender_name" yaml:"sender_name"`
}

// LogConfig controls the log file.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Gmail   GmailConfig   `mapstructure:"gmail" yaml:"gmail"`
	AI      AIConfig      `mapstructure:"ai" yaml:"ai"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// ConfigDir returns ~/.config/lenah, or the working directory when the
// home directory cannot be resolved.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "lenah")
}

// DefaultConfigPath returns the default path for the configuration file.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() *AppConfig {
	dir := ConfigDir()
	return &AppConfig{
		Gmail: GmailConfig{
			CredentialsPath: filepath.Join(dir, "credentials.json"),
			TokenPath:       filepath.Join(dir, "token.json"),
			Mode:            GmailModeSend,
			TimeoutSec:      30,
		},
		AI: AIConfig{
			Provider:      ProviderOpenAI,
			Model:         "gpt-4o-mini",
			MaxTokens:     1024,
			Temperature:   0.3,
			TimeoutSec:    60,
			HistoryWindow: 12,
		},
		Display: DisplayConfig{
			Title:          "LENAH",
			CentralMailbox: "lenah.test.enquiries@gmail.com",
			SenderName:     "LENAH",
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dir, "lenah.log"),
		},
	}
}

// newViper returns a viper instance with defaults and environment
// bindings registered.
func newViper(path string) *viper.Viper {
	def := DefaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("gmail.credentials_path", def.Gmail.CredentialsPath)
	v.SetDefault("gmail.token_path", def.Gmail.TokenPath)
	v.SetDefault("gmail.mode", def.Gmail.Mode)
	v.SetDefault("gmail.timeout_sec", def.Gmail.TimeoutSec)
	v.SetDefault("ai.provider", def.AI.Provider)
	v.SetDefault("ai.model", def.AI.Model)
	v.SetDefault("ai.max_tokens", def.AI.MaxTokens)
	v.SetDefault("ai.temperature", def.AI.Temperature)
	v.SetDefault("ai.timeout_sec", def.AI.TimeoutSec)
	v.SetDefault("ai.history_window", def.AI.HistoryWindow)
	v.SetDefault("display.title", def.Display.Title)
	v.SetDefault("display.central_mailbox", def.Display.CentralMailbox)
	v.SetDefault("display.sender_name", def.Display.SenderName)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.file", def.Log.File)

	// Variable names kept compatible with existing .env files.
	_ = v.BindEnv("gmail.credentials_path", "GMAIL_CREDENTIALS_PATH")
	_ = v.BindEnv("gmail.token_path", "GMAIL_TOKEN_PATH")
	_ = v.BindEnv("ai.model", "OPENAI_MODEL")

	v.SetEnvPrefix("LENAH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A missing file is not an error: defaults and environment overrides apply.
func LoadConfig(path string) (*AppConfig, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks enumerated settings.
func (c *AppConfig) Validate() error {
	switch c.Gmail.Mode {
	case GmailModeSend, GmailModeDraft:
	default:
		return fmt.Errorf("gmail.mode must be %q or %q, got %q",
			GmailModeSend, GmailModeDraft, c.Gmail.Mode)
	}

	switch c.AI.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderOffline:
	default:
		return fmt.Errorf("unknown ai.provider %q", c.AI.Provider)
	}

	if c.AI.HistoryWindow <= 0 {
		return fmt.Errorf("ai.history_window must be positive, got %d", c.AI.HistoryWindow)
	}

	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("gmail", cfg.Gmail)
	v.Set("ai", cfg.AI)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
