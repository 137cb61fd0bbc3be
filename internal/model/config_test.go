package model

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("GMAIL_TOKEN_PATH", "")
	t.Setenv("OPENAI_MODEL", "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	def := DefaultAppConfig()
	if cfg.Gmail.Mode != GmailModeSend {
		t.Errorf("gmail.mode = %q, want %q", cfg.Gmail.Mode, GmailModeSend)
	}
	if cfg.AI.Provider != ProviderOpenAI {
		t.Errorf("ai.provider = %q, want %q", cfg.AI.Provider, ProviderOpenAI)
	}
	if cfg.AI.HistoryWindow != 12 {
		t.Errorf("ai.history_window = %d, want 12", cfg.AI.HistoryWindow)
	}
	if cfg.Display.SenderName != def.Display.SenderName {
		t.Errorf("display.sender_name = %q, want %q", cfg.Display.SenderName, def.Display.SenderName)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Setenv("GMAIL_TOKEN_PATH", "")
	t.Setenv("OPENAI_MODEL", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
gmail:
  mode: draft
  credentials_path: /etc/lenah/client.json
ai:
  provider: offline
  history_window: 6
display:
  sender_name: Jo
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Gmail.Mode != GmailModeDraft {
		t.Errorf("gmail.mode = %q, want draft", cfg.Gmail.Mode)
	}
	if cfg.Gmail.CredentialsPath != "/etc/lenah/client.json" {
		t.Errorf("gmail.credentials_path = %q", cfg.Gmail.CredentialsPath)
	}
	if cfg.AI.Provider != ProviderOffline {
		t.Errorf("ai.provider = %q, want offline", cfg.AI.Provider)
	}
	if cfg.AI.HistoryWindow != 6 {
		t.Errorf("ai.history_window = %d, want 6", cfg.AI.HistoryWindow)
	}
	if cfg.AI.Model != "gpt-4o-mini" {
		t.Errorf("ai.model = %q, want default", cfg.AI.Model)
	}
	if cfg.Display.SenderName != "Jo" {
		t.Errorf("display.sender_name = %q, want Jo", cfg.Display.SenderName)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("GMAIL_TOKEN_PATH", "/tmp/lenah-token.json")
	t.Setenv("OPENAI_MODEL", "gpt-4.1-mini")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Gmail.TokenPath != "/tmp/lenah-token.json" {
		t.Errorf("gmail.token_path = %q", cfg.Gmail.TokenPath)
	}
	if cfg.AI.Model != "gpt-4.1-mini" {
		t.Errorf("ai.model = %q", cfg.AI.Model)
	}
}

func TestLoadConfigRejectsUnknownMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("gmail:\n  mode: broadcast\n"), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for unknown gmail.mode")
	}
	if !strings.Contains(err.Error(), "gmail.mode") {
		t.Errorf("error %q does not name gmail.mode", err)
	}
}

func TestOAuthScopes(t *testing.T) {
	tests := []struct {
		name     string
		cfg      GmailConfig
		want     string
		canDraft bool
	}{
		{"send mode", GmailConfig{Mode: GmailModeSend}, scopeGmailCompose, true},
		{"draft mode", GmailConfig{Mode: GmailModeDraft}, scopeGmailCompose, true},
		{"send only", GmailConfig{Mode: GmailModeSend, Scopes: []string{scopeGmailSend}}, scopeGmailSend, false},
		{"full access", GmailConfig{Scopes: []string{scopeMailFull}}, scopeMailFull, true},
		{"explicit", GmailConfig{Mode: GmailModeSend, Scopes: []string{"custom"}}, "custom", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.OAuthScopes()
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("OAuthScopes() = %v, want [%s]", got, tt.want)
			}
			if tt.cfg.CanDraft() != tt.canDraft {
				t.Errorf("CanDraft() = %v, want %v", tt.cfg.CanDraft(), tt.canDraft)
			}
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	t.Setenv("GMAIL_TOKEN_PATH", "")
	t.Setenv("OPENAI_MODEL", "")

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultAppConfig()
	cfg.Gmail.Mode = GmailModeDraft
	cfg.AI.Provider = ProviderAnthropic

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Gmail.Mode != GmailModeDraft || loaded.AI.Provider != ProviderAnthropic {
		t.Errorf("loaded = %+v / %+v", loaded.Gmail, loaded.AI)
	}
}
