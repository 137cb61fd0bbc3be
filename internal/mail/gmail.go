package mail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/nhle/lenah/internal/model"
)

const userID = "me"

// GmailGateway implements Gateway with the Gmail API. The API client is
// created on first use; a missing credential found then is remembered and
// returned on every later call instead of being retried.
type GmailGateway struct {
	cfg    model.GmailConfig
	logger *log.Logger
	now    func() time.Time

	mu      sync.Mutex
	svc     *gmail.Service
	initErr error
}

// NewGmailGateway creates a gateway for the configured mailbox.
func NewGmailGateway(cfg model.GmailConfig, logger *log.Logger) *GmailGateway {
	return &GmailGateway{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// newGatewayWithService wraps an existing API client.
func newGatewayWithService(svc *gmail.Service, logger *log.Logger) *GmailGateway {
	return &GmailGateway{
		logger: logger,
		now:    time.Now,
		svc:    svc,
	}
}

func (g *GmailGateway) service() (*gmail.Service, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.svc != nil {
		return g.svc, nil
	}
	if g.initErr != nil {
		return nil, g.initErr
	}

	client, err := authorizedClient(g.cfg, g.logger)
	if err != nil {
		if IsMissingCredential(err) {
			g.logger.Error("gmail credentials unavailable", "err", err)
			g.initErr = err
		}
		return nil, err
	}

	svc, err := gmail.NewService(context.Background(), option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("creating Gmail service: %w", err)
	}
	g.svc = svc
	return svc, nil
}

// Send delivers msg from the authorised mailbox.
func (g *GmailGateway) Send(ctx context.Context, msg Outgoing) (string, error) {
	svc, err := g.service()
	if err != nil {
		return "", err
	}

	raw, err := g.encode(msg)
	if err != nil {
		return "", err
	}

	sent, err := svc.Users.Messages.Send(userID, &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return "", providerError("send", err)
	}

	g.logger.Info("message sent", "id", sent.Id, "cc", len(msg.Cc))
	return sent.Id, nil
}

// CreateDraft stores msg in the mailbox's drafts.
func (g *GmailGateway) CreateDraft(ctx context.Context, msg Outgoing) (string, error) {
	svc, err := g.service()
	if err != nil {
		return "", err
	}

	raw, err := g.encode(msg)
	if err != nil {
		return "", err
	}

	draft := &gmail.Draft{Message: &gmail.Message{Raw: raw}}
	created, err := svc.Users.Drafts.Create(userID, draft).Context(ctx).Do()
	if err != nil {
		return "", providerError("create draft", err)
	}

	g.logger.Info("draft created", "id", created.Id)
	return created.Id, nil
}

func (g *GmailGateway) encode(msg Outgoing) (string, error) {
	raw, err := BuildRaw(msg, g.now())
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

// providerError converts an API or transport error into a ProviderError.
func providerError(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		detail := apiErr.Message
		if detail == "" {
			detail = apiErr.Error()
		}
		return &ProviderError{Op: op, Code: apiErr.Code, Detail: detail, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ProviderError{Op: op, Detail: "the mail provider did not respond in time", Err: err}
	}
	return &ProviderError{Op: op, Detail: err.Error(), Err: err}
}
