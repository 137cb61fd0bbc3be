// Package conversation drives the enquiry chat: it collects the user's and
// the recipient's addresses, asks the generator for a draft, previews it and
// sends it on confirmation.
package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nhle/lenah/internal/ai"
	"github.com/nhle/lenah/internal/draft"
	"github.com/nhle/lenah/internal/extract"
	"github.com/nhle/lenah/internal/mail"
	"github.com/nhle/lenah/internal/model"
)

const (
	defaultWindow          = 12
	defaultGenerateTimeout = 60 * time.Second
	defaultSendTimeout     = 30 * time.Second

	confirmWord = "send"
)

// Options tunes a Machine. Zero values select the defaults.
type Options struct {
	// Mode is model.GmailModeSend or model.GmailModeDraft.
	Mode string

	// Window is the number of trailing messages given to the generator.
	Window int

	GenerateTimeout time.Duration
	SendTimeout     time.Duration
}

// OptionsFromConfig derives machine options from the application config.
func OptionsFromConfig(cfg *model.AppConfig) Options {
	return Options{
		Mode:            cfg.Gmail.Mode,
		Window:          cfg.AI.HistoryWindow,
		GenerateTimeout: time.Duration(cfg.AI.TimeoutSec) * time.Second,
		SendTimeout:     time.Duration(cfg.Gmail.TimeoutSec) * time.Second,
	}
}

// Reply is the outcome of one turn.
type Reply struct {
	// Text is the assistant message appended to the transcript.
	Text string

	// State is the session state after the turn.
	State model.State

	// DeliveryID is the provider's message or draft ID when the turn sent
	// or stored an email.
	DeliveryID string
}

// Machine is the conversation state machine. It holds no session state of
// its own; every turn mutates only the Session passed to it.
type Machine struct {
	gen    ai.Generator
	gw     mail.Gateway
	opts   Options
	logger *log.Logger
	now    func() time.Time
}

// New creates a machine.
func New(gen ai.Generator, gw mail.Gateway, opts Options, logger *log.Logger) *Machine {
	if opts.Mode == "" {
		opts.Mode = model.GmailModeSend
	}
	if opts.Window <= 0 {
		opts.Window = defaultWindow
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = defaultGenerateTimeout
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = defaultSendTimeout
	}

	return &Machine{
		gen:    gen,
		gw:     gw,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

// Mode returns the delivery mode.
func (m *Machine) Mode() string {
	return m.opts.Mode
}

// GeneratorName identifies the generator in use.
func (m *Machine) GeneratorName() string {
	return m.gen.Name()
}

// Greeting appends the opening message to an empty transcript and returns
// it. It does nothing once the conversation has started.
func (m *Machine) Greeting(sess *model.Session) string {
	if len(sess.Messages) > 0 {
		return ""
	}
	sess.Append(model.RoleAssistant, greetingText)
	return greetingText
}

// Reset clears the session and greets again.
func (m *Machine) Reset(sess *model.Session) Reply {
	sess.Reset()
	m.logger.Info("session reset", "session", sess.ID)
	return Reply{Text: m.Greeting(sess), State: sess.State}
}

// Forget clears only the user's address and asks for a new one.
func (m *Machine) Forget(sess *model.Session) Reply {
	sess.ForgetUserEmail()
	m.logger.Info("user email forgotten", "session", sess.ID)
	return m.reply(sess, forgetText)
}

// Handle processes one user message. Generator failures are returned as
// errors and leave the session state as it was; every other outcome,
// including a failed send, is a Reply.
func (m *Machine) Handle(ctx context.Context, sess *model.Session, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{State: sess.State}, nil
	}

	sess.Append(model.RoleUser, text)
	sess.Remember(extract.AllEmails(text)...)
	if url, ok := extract.FirstURL(text); ok {
		sess.PropertyURL = url
	}

	m.logger.Debug("turn", "session", sess.ID, "state", sess.State)

	switch sess.State {
	case model.StateNeedUserEmail:
		return m.handleUserEmail(sess, text), nil
	case model.StateNeedRecipient:
		return m.handleRecipient(sess, text), nil
	case model.StateConfirm:
		if strings.EqualFold(text, confirmWord) {
			return m.deliver(ctx, sess), nil
		}
		return m.handleDetails(ctx, sess)
	default:
		return m.handleDetails(ctx, sess)
	}
}

func (m *Machine) handleUserEmail(sess *model.Session, text string) Reply {
	addr, ok := extract.FirstEmail(text)
	if !ok {
		return m.reply(sess, askUserEmailText)
	}

	sess.UserEmail = addr
	sess.State = sess.ResumeState()
	m.logger.Info("user email collected", "session", sess.ID, "next", sess.State)

	switch sess.State {
	case model.StateNeedRecipient:
		return m.reply(sess, fmt.Sprintf(
			"Thanks, I'll copy you at **%s** on anything I send.\n\n%s", addr, askRecipientText))
	case model.StateConfirm:
		return m.reply(sess, fmt.Sprintf(
			"Thanks, I'll copy you at **%s**.\n\n%s", addr, m.preview(sess)))
	default:
		return m.reply(sess, fmt.Sprintf(
			"Thanks, I'll copy you at **%s**.\n\n%s", addr, askDetailsText))
	}
}

func (m *Machine) handleRecipient(sess *model.Session, text string) Reply {
	addr, ok := extract.FirstEmail(text)
	if !ok {
		return m.reply(sess, askRecipientText)
	}

	sess.RecipientEmail = addr
	sess.State = model.StateNeedDetails
	m.logger.Info("recipient collected", "session", sess.ID)

	return m.reply(sess, fmt.Sprintf(
		"Got it, the enquiry will go to **%s**.\n\n%s", addr, askDetailsText))
}

// handleDetails asks the generator for a draft. It serves both the first
// request and revisions made from the confirm state.
func (m *Machine) handleDetails(ctx context.Context, sess *model.Session) (Reply, error) {
	window := sess.Window(m.opts.Window)
	window = append(window, ai.ContextNote(sess.RecipientEmail, sess.PropertyURL))

	gctx, cancel := context.WithTimeout(ctx, m.opts.GenerateTimeout)
	defer cancel()

	res, err := m.gen.Generate(gctx, window)
	if err != nil {
		m.logger.Error("generator failed", "session", sess.ID, "err", err)
		return Reply{State: sess.State}, fmt.Errorf("generating reply: %w", err)
	}

	res, downgraded := m.enforceRecipient(sess, res)
	if downgraded && sess.PendingDraft != nil {
		sess.PendingDraft = nil
		sess.State = model.StateNeedDetails
		return m.reply(sess, strings.TrimSpace(res.AssistantText)+"\n\n"+discardedDraftText), nil
	}

	d, ok := m.draftFrom(sess, res)
	if !ok {
		text := strings.TrimSpace(res.AssistantText)
		if text == "" {
			text = tellMeMoreText
		}
		return m.reply(sess, text), nil
	}

	sess.PendingDraft = &d
	sess.State = model.StateConfirm
	m.logger.Info("draft ready", "session", sess.ID, "generator", m.gen.Name())

	text := m.preview(sess)
	if intro := strings.TrimSpace(res.AssistantText); intro != "" {
		text = intro + "\n\n" + text
	}
	return m.reply(sess, text), nil
}

// enforceRecipient downgrades a result whose recipient was never seen in
// the conversation and reports whether it did. Generator output is
// untrusted with respect to where mail goes.
func (m *Machine) enforceRecipient(sess *model.Session, res ai.Result) (ai.Result, bool) {
	to := strings.TrimSpace(res.To)

	unsafe := false
	switch {
	case res.Action == ai.ActionSendEmail && to == "":
		unsafe = true
	case to != "" && !sess.HasSeen(to):
		unsafe = true
	}
	if !unsafe {
		return res, false
	}

	m.logger.Warn("generator proposed an unverified recipient",
		"session", sess.ID, "action", res.Action, "to_blank", to == "")

	text := strings.TrimSpace(res.AssistantText)
	if text != "" {
		text += "\n\n"
	}
	return ai.Result{
		AssistantText: text + askExplicitRecipientText,
		Action:        ai.ActionNone,
		Cc:            []string{},
	}, true
}

// draftFrom turns a result into a complete draft. A blank recipient falls
// back to the collected one; a blank subject gets the dated default.
func (m *Machine) draftFrom(sess *model.Session, res ai.Result) (model.Draft, bool) {
	if !res.HasDraft() {
		return model.Draft{}, false
	}

	d := model.Draft{
		To:      strings.TrimSpace(res.To),
		Subject: strings.TrimSpace(res.Subject),
		Body:    strings.TrimSpace(res.Body) + "\n",
	}
	if d.To == "" {
		d.To = sess.RecipientEmail
	}
	if d.Subject == "" {
		d.Subject = draft.Subject(m.now())
	}
	if !d.Complete() || !sess.HasSeen(d.To) {
		return model.Draft{}, false
	}
	return d, true
}

// deliver sends or stores the pending draft with the user in CC.
func (m *Machine) deliver(ctx context.Context, sess *model.Session) Reply {
	d := sess.PendingDraft
	if d == nil {
		sess.State = model.StateNeedDetails
		return m.reply(sess, "There's no draft to send yet. "+askDetailsText)
	}
	if !sess.HasSeen(d.To) {
		m.logger.Warn("refusing to send to unseen recipient", "session", sess.ID)
		return m.reply(sess, askExplicitRecipientText)
	}

	out := mail.Outgoing{
		To:      d.To,
		Cc:      []string{sess.UserEmail},
		Subject: d.Subject,
		Body:    d.Body,
	}

	sctx, cancel := context.WithTimeout(ctx, m.opts.SendTimeout)
	defer cancel()

	var (
		id  string
		err error
	)
	if m.opts.Mode == model.GmailModeDraft {
		id, err = m.gw.CreateDraft(sctx, out)
	} else {
		id, err = m.gw.Send(sctx, out)
	}
	if err != nil {
		m.logger.Error("delivery failed", "session", sess.ID, "mode", m.opts.Mode, "err", err)
		return m.reply(sess, fmt.Sprintf(
			"I couldn't %s the email: %s\n\nYour draft is still here. Type `%s` to try again.",
			m.opts.Mode, mail.Detail(err), confirmWord))
	}

	sess.PendingDraft = nil
	sess.State = model.StateNeedDetails
	m.logger.Info("delivered", "session", sess.ID, "mode", m.opts.Mode, "id", id)

	var text string
	if m.opts.Mode == model.GmailModeDraft {
		text = fmt.Sprintf("Saved a draft to **%s** in your mailbox (id `%s`), with **%s** in CC.",
			out.To, id, sess.UserEmail)
	} else {
		text = fmt.Sprintf("Sent to **%s**. A copy went to you at **%s**.", out.To, sess.UserEmail)
	}
	r := m.reply(sess, text+"\n\nAnything else? Describe another enquiry and I'll draft it.")
	r.DeliveryID = id
	return r
}

// Preview renders the pending draft without changing the session.
func (m *Machine) Preview(sess *model.Session) (string, bool) {
	if sess.PendingDraft == nil {
		return "", false
	}
	return m.preview(sess), true
}

func (m *Machine) preview(sess *model.Session) string {
	return FormatPreview(*sess.PendingDraft, sess.UserEmail, m.opts.Mode)
}

// reply appends text as the assistant's message.
func (m *Machine) reply(sess *model.Session, text string) Reply {
	sess.Append(model.RoleAssistant, text)
	return Reply{Text: text, State: sess.State}
}
