package conversation

import (
	"fmt"
	"strings"

	"github.com/nhle/lenah/internal/model"
)

const (
	greetingText = "Hi, I'm **LENAH**. I write and send property enquiry emails for you.\n\n" +
		"To get started, what's your email address? I'll copy you on everything I send."
	askUserEmailText = "Before we start, what's your email address? " +
		"I'll copy you on every email I send."
	askRecipientText = "Who should the enquiry go to? Paste the agent's or landlord's email address."
	askDetailsText   = "What would you like to ask? Paste the property link or describe the enquiry " +
		"(viewing, availability, price, anything else)."
	askExplicitRecipientText = "I can only email an address you've given me. " +
		"Please paste the recipient's email address."
	discardedDraftText = "I've discarded the previous draft, so `send` won't do anything yet. " +
		"Tell me the recipient's address and what to change and I'll draft it again."
	tellMeMoreText = "Tell me a bit more about the enquiry and I'll draft it."
	forgetText     = "I've forgotten your email address. What address should I copy you at from now on?"
)

// FormatPreview renders a draft as markdown ending with the confirmation
// instruction.
func FormatPreview(d model.Draft, cc, mode string) string {
	var sb strings.Builder

	sb.WriteString("**Draft preview**\n\n")
	sb.WriteString(FormatDraft(d, cc))
	sb.WriteString("\n")

	if mode == model.GmailModeDraft {
		sb.WriteString("Confirming saves this as a draft in your mailbox.\n\n")
	}
	fmt.Fprintf(&sb, "Type `%s` to confirm, or paste edits to revise.", confirmWord)
	return sb.String()
}

// FormatDraft renders the headers and a blockquoted body.
func FormatDraft(d model.Draft, cc string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "**To:** %s  \n", d.To)
	if cc != "" {
		fmt.Fprintf(&sb, "**Cc:** %s  \n", cc)
	}
	fmt.Fprintf(&sb, "**Subject:** %s\n\n", d.Subject)

	for _, line := range strings.Split(strings.TrimRight(d.Body, "\n"), "\n") {
		if line == "" {
			sb.WriteString(">\n")
			continue
		}
		sb.WriteString("> " + line + "\n")
	}
	return sb.String()
}
