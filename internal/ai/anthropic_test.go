package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/nhle/lenah/internal/model"
)

func newTestAnthropic(t *testing.T, handler http.HandlerFunc) *AnthropicGenerator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g := NewAnthropic("test-key", model.AIConfig{Model: "gpt-4o-mini"}, "Jo", log.New(io.Discard))
	g.baseURL = srv.URL
	return g
}

func TestAnthropicGenerate(t *testing.T) {
	var req apiRequest
	g := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "msg_1", "type": "message", "role": "assistant", "model": "claude", "stop_reason": "tool_use",
			"content": [{"type": "tool_use", "id": "tu_1", "name": "lenah_output",
				"input": {"assistant_text": "Done.", "action": "none", "to": "", "cc": [], "subject": "Viewing", "body": "Hello"}}]
		}`)
	})

	res, err := g.Generate(context.Background(), []model.Message{
		{Role: model.RoleAssistant, Content: "Hi, I'm LENAH."},
		{Role: model.RoleUser, Content: "Book a viewing"},
		{Role: model.RoleSystem, Content: "The recipient email address is agent@agency.com."},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Subject != "Viewing" {
		t.Errorf("Subject = %q", res.Subject)
	}

	if req.Model != defaultAnthropicModel {
		t.Errorf("Model = %q, want default Claude model", req.Model)
	}
	if req.ToolChoice == nil || req.ToolChoice.Name != SchemaName {
		t.Errorf("ToolChoice = %+v", req.ToolChoice)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
		t.Errorf("Messages = %+v, want the single user turn", req.Messages)
	}
	if !strings.Contains(req.System, "agent@agency.com") {
		t.Errorf("system prompt missing context note")
	}
}

func TestAnthropicErrors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantContract bool
	}{
		{"api error", http.StatusUnauthorized, `{"error":{"type":"authentication_error","message":"invalid x-api-key"}}`, false},
		{"no tool call", http.StatusOK, `{"content":[{"type":"text","text":"hello"}]}`, true},
		{"bad tool input", http.StatusOK, `{"content":[{"type":"tool_use","name":"lenah_output","input":{"action":"none"}}]}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})
			_, err := g.Generate(context.Background(), []model.Message{{Role: model.RoleUser, Content: "hi"}})
			if err == nil {
				t.Fatal("expected error")
			}
			if IsContractError(err) != tt.wantContract {
				t.Errorf("IsContractError = %v, want %v (%v)", IsContractError(err), tt.wantContract, err)
			}
		})
	}
}
