package ai

import (
	"context"
	"strings"
	"time"

	"github.com/nhle/lenah/internal/draft"
	"github.com/nhle/lenah/internal/model"
)

// minDetailWords is the shortest message the offline generator will turn
// into a draft.
const minDetailWords = 4

// OfflineGenerator drafts with the fixed template instead of a language
// model. It never proposes a send and leaves the recipient blank so the
// caller's collected recipient is used.
type OfflineGenerator struct {
	signOff string
	now     func() time.Time
}

// NewOffline creates an offline generator signing drafts with signOff.
func NewOffline(signOff string) *OfflineGenerator {
	return &OfflineGenerator{signOff: signOff, now: time.Now}
}

// Name identifies the generator.
func (g *OfflineGenerator) Name() string {
	return "offline"
}

// Generate drafts from the latest user message.
func (g *OfflineGenerator) Generate(_ context.Context, msgs []model.Message) (Result, error) {
	var latest string
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == model.RoleUser {
			latest = strings.TrimSpace(msgs[i].Content)
			break
		}
	}

	if len(strings.Fields(latest)) < minDetailWords {
		return Result{
			AssistantText: "Tell me a bit more about the enquiry: which property, and what would you like to ask?",
			Action:        ActionNone,
			Cc:            []string{},
		}, nil
	}

	d := draft.Build(draft.Input{Message: latest, YourName: g.signOff}, g.now())
	return Result{
		AssistantText: "Here is a draft based on your message.",
		Action:        ActionNone,
		Cc:            []string{},
		Subject:       d.Subject,
		Body:          d.Body,
	}, nil
}
