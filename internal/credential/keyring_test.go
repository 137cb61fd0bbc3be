package credential

import (
	"testing"

	"github.com/99designs/keyring"
)

func TestStoreRoundTrip(t *testing.T) {
	s := NewStoreWithRing(keyring.NewArrayKeyring(nil))

	if err := s.Set("openai-api-key", "sk-test"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get("openai-api-key")
	if err != nil || got != "sk-test" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if err := s.Delete("openai-api-key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("openai-api-key"); err == nil {
		t.Fatal("expected error after delete")
	}
}

func TestAPIKeyResolution(t *testing.T) {
	tests := []struct {
		name       string
		env        string
		stored     string
		wantKey    string
		wantSource string
	}{
		{"env wins", "sk-env", "sk-ring", "sk-env", "env"},
		{"keyring fallback", "", "sk-ring", "sk-ring", "keyring"},
		{"absent", "", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OPENAI_API_KEY", tt.env)

			var items []keyring.Item
			if tt.stored != "" {
				items = append(items, keyring.Item{Key: KeyName("openai"), Data: []byte(tt.stored)})
			}
			s := NewStoreWithRing(keyring.NewArrayKeyring(items))

			key, source, err := s.APIKey("openai")
			if err != nil {
				t.Fatalf("APIKey: %v", err)
			}
			if key != tt.wantKey || source != tt.wantSource {
				t.Errorf("APIKey = %q from %q, want %q from %q", key, source, tt.wantKey, tt.wantSource)
			}
		})
	}
}

func TestNames(t *testing.T) {
	if KeyName("anthropic") != "anthropic-api-key" {
		t.Errorf("KeyName = %q", KeyName("anthropic"))
	}
	if EnvName("anthropic") != "ANTHROPIC_API_KEY" {
		t.Errorf("EnvName = %q", EnvName("anthropic"))
	}
}
