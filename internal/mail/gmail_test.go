package mail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/nhle/lenah/internal/model"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

// newTestGateway points a Gmail client at handler.
func newTestGateway(t *testing.T, handler http.HandlerFunc) *GmailGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := gmail.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	if err != nil {
		t.Fatalf("creating service: %v", err)
	}
	return newGatewayWithService(svc, testLogger())
}

func decodeRaw(t *testing.T, r io.Reader, draft bool) string {
	t.Helper()
	var raw string
	if draft {
		var d gmail.Draft
		if err := json.NewDecoder(r).Decode(&d); err != nil {
			t.Fatalf("decoding draft body: %v", err)
		}
		raw = d.Message.Raw
	} else {
		var m gmail.Message
		if err := json.NewDecoder(r).Decode(&m); err != nil {
			t.Fatalf("decoding message body: %v", err)
		}
		raw = m.Raw
	}
	b, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		t.Fatalf("decoding raw: %v", err)
	}
	return string(b)
}

func TestGmailSend(t *testing.T) {
	var gotPath, gotRaw string
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRaw = decodeRaw(t, r.Body, false)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"abc123"}`)
	})

	id, err := gw.Send(context.Background(), Outgoing{
		To:      "agent@agency.com",
		Cc:      []string{"jo@example.com"},
		Subject: "Enquiry",
		Body:    "Hello,\n\nIs it available?\n",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if id != "abc123" {
		t.Errorf("id = %q, want abc123", id)
	}
	if !strings.HasSuffix(gotPath, "/users/me/messages/send") {
		t.Errorf("path = %q", gotPath)
	}
	for _, want := range []string{"To: <agent@agency.com>", "Cc: <jo@example.com>", "Subject: Enquiry"} {
		if !strings.Contains(gotRaw, want) {
			t.Errorf("raw message missing %q:\n%s", want, gotRaw)
		}
	}
}

func TestGmailCreateDraft(t *testing.T) {
	var gotPath, gotRaw string
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRaw = decodeRaw(t, r.Body, true)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"r-42","message":{"id":"m1"}}`)
	})

	id, err := gw.CreateDraft(context.Background(), Outgoing{
		To:      "agent@agency.com",
		Cc:      []string{"jo@example.com"},
		Subject: "Enquiry",
		Body:    "Hello\n",
	})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	if id != "r-42" {
		t.Errorf("id = %q, want r-42", id)
	}
	if !strings.HasSuffix(gotPath, "/users/me/drafts") {
		t.Errorf("path = %q", gotPath)
	}
	if !strings.Contains(gotRaw, "Cc: <jo@example.com>") {
		t.Errorf("draft missing Cc:\n%s", gotRaw)
	}
}

func TestGmailProviderError(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"error":{"code":403,"message":"Insufficient Permission"}}`)
	})

	_, err := gw.Send(context.Background(), Outgoing{To: "agent@agency.com", Subject: "s", Body: "b"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsProviderError(err) {
		t.Fatalf("expected ProviderError, got %T: %v", err, err)
	}
	var pErr *ProviderError
	errors.As(err, &pErr)
	if pErr.Code != http.StatusForbidden {
		t.Errorf("Code = %d, want 403", pErr.Code)
	}
	if got := Detail(err); got != "Insufficient Permission" {
		t.Errorf("Detail = %q", got)
	}
}

func TestGmailMissingCredentials(t *testing.T) {
	dir := t.TempDir()
	gw := NewGmailGateway(model.GmailConfig{
		CredentialsPath: filepath.Join(dir, "credentials.json"),
		TokenPath:       filepath.Join(dir, "token.json"),
		Mode:            model.GmailModeSend,
	}, testLogger())

	for i := 0; i < 2; i++ {
		_, err := gw.Send(context.Background(), Outgoing{To: "a@b.com"})
		if !IsMissingCredential(err) {
			t.Fatalf("call %d: expected MissingCredentialError, got %v", i, err)
		}
	}
	if IsProviderError(gw.initErr) {
		t.Error("missing credential should not be a provider error")
	}
}

func TestCallbackHandler(t *testing.T) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	h := callbackHandler("st", codeCh, errCh)

	tests := []struct {
		name     string
		query    string
		wantCode int
	}{
		{"wrong state", "?state=x&code=c", http.StatusBadRequest},
		{"missing code", "?state=st", http.StatusBadRequest},
		{"ok", "?state=st&code=abc", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}

	select {
	case code := <-codeCh:
		if code != "abc" {
			t.Errorf("code = %q", code)
		}
	default:
		t.Fatal("no code delivered")
	}
}

func TestMockGateway(t *testing.T) {
	m := NewMockGateway()
	if _, err := m.Send(context.Background(), Outgoing{To: "a@b.com"}); err != nil {
		t.Fatal(err)
	}
	m.DraftErr = errors.New("boom")
	if _, err := m.CreateDraft(context.Background(), Outgoing{}); err == nil {
		t.Fatal("expected draft error")
	}
	if m.Calls() != 1 {
		t.Errorf("Calls = %d, want 1", m.Calls())
	}
}
