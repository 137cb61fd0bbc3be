package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/nhle/lenah/internal/conversation"
	"github.com/nhle/lenah/internal/draft"
	"github.com/nhle/lenah/internal/extract"
	"github.com/nhle/lenah/internal/mail"
	"github.com/nhle/lenah/internal/model"
	"github.com/nhle/lenah/internal/ui/draftform"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Build one enquiry from flags and save or send it",
	Long: `Build an enquiry email from a message without the chat or a language
model. The body is wrapped in a standard greeting and sign-off and the
subject defaults to "Enquiry (<date>)".

Missing recipient or message values are asked for in a form when running
in a terminal. By default the email is saved as a Gmail draft; pass --send
together with --me to deliver it with yourself in CC.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		v := draftform.Values{
			Input: draft.Input{
				To:       draftTo,
				Message:  draftMessage,
				YourName: draftName,
				Subject:  draftSubject,
			},
			Me: draftMe,
		}
		if draftSend {
			v.Action = draftform.ActionSend
		}

		if needsForm(v) && !draftNoInput && isatty.IsTerminal(0) {
			if err := draftform.Run(&v); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return nil
				}
				return err
			}
		}

		gw := openGateway(logger)
		ctx := cmd.Context()
		if cfg.Gmail.TimeoutSec > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Gmail.TimeoutSec)*time.Second)
			defer cancel()
		}

		return runDraft(ctx, cmd.OutOrStdout(), v, cfg.Gmail, gw, time.Now())
	},
}

var (
	draftTo      string
	draftMessage string
	draftName    string
	draftSubject string
	draftMe      string
	draftSend    bool
	draftNoInput bool
)

func init() {
	draftCmd.Flags().StringVar(&draftTo, "to", "", "recipient email address")
	draftCmd.Flags().StringVarP(&draftMessage, "message", "m", "", "what to ask")
	draftCmd.Flags().StringVar(&draftName, "name", "", "your name for the sign-off (default LENAH)")
	draftCmd.Flags().StringVar(&draftSubject, "subject", "", "subject line (default dated enquiry)")
	draftCmd.Flags().StringVar(&draftMe, "me", "", "your email address, copied when sending")
	draftCmd.Flags().BoolVar(&draftSend, "send", false, "send immediately instead of saving a draft")
	draftCmd.Flags().BoolVar(&draftNoInput, "no-input", false, "never prompt; fail on missing values")
	rootCmd.AddCommand(draftCmd)
}

func needsForm(v draftform.Values) bool {
	return strings.TrimSpace(v.To) == "" || strings.TrimSpace(v.Message) == ""
}

const draftScopeHint = "saving a draft needs the gmail.compose scope; " +
	"remove the gmail.scopes override (or add gmail.compose) and run `lenah auth` again, " +
	"or pass --send --me <your address>"

// runDraft validates v, builds the email and hands it to gw.
func runDraft(
	ctx context.Context,
	out io.Writer,
	v draftform.Values,
	gc model.GmailConfig,
	gw mail.Gateway,
	now time.Time,
) error {
	if err := draft.Validate(v.Input); err != nil {
		return err
	}

	send := v.Action == draftform.ActionSend
	me := strings.TrimSpace(v.Me)
	switch {
	case send && me == "":
		return fmt.Errorf("sending needs --me with your email address so you get a copy")
	case me != "" && !extract.IsEmail(me):
		return fmt.Errorf("--me %q is not a valid email address", me)
	case !send && !gc.CanDraft():
		return errors.New(draftScopeHint)
	}

	d := draft.Build(v.Input, now)
	msg := mail.Outgoing{To: d.To, Subject: d.Subject, Body: d.Body}
	if me != "" {
		msg.Cc = []string{me}
	}

	fmt.Fprintln(out, conversation.FormatDraft(d, me))

	if send {
		id, err := gw.Send(ctx, msg)
		if err != nil {
			return fmt.Errorf("sending: %s", mail.Detail(err))
		}
		logger.Info("enquiry sent", "id", id)
		fmt.Fprintf(out, "Sent to %s (message %s), copy to %s.\n", d.To, id, me)
		return nil
	}

	id, err := gw.CreateDraft(ctx, msg)
	if err != nil {
		var pErr *mail.ProviderError
		if errors.As(err, &pErr) && pErr.Code == http.StatusForbidden {
			return fmt.Errorf("creating draft: %s (%s)", pErr.Detail, draftScopeHint)
		}
		return fmt.Errorf("creating draft: %s", mail.Detail(err))
	}
	logger.Info("enquiry drafted", "id", id)
	fmt.Fprintf(out, "Saved draft %s to %s.\n", id, d.To)
	return nil
}
