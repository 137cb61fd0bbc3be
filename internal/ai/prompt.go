package ai

import (
	"fmt"
	"strings"

	"github.com/nhle/lenah/internal/model"
)

// SystemRules builds the fixed instruction string. signOff is used when the
// sender's name is unknown.
func SystemRules(signOff string) string {
	if signOff == "" {
		signOff = "LENAH"
	}

	var sb strings.Builder
	sb.WriteString("You are LENAH, a helpful conversational assistant for property-related emails.\n\n")
	sb.WriteString(`Only choose action="send_email" when the user clearly wants you to draft an email `)
	sb.WriteString("AND a recipient email address is present in the conversation.\n\n")

	sb.WriteString("Always output ONLY valid JSON with every key present:\n")
	sb.WriteString(`{"assistant_text": string, "action": "none" | "send_email", "to": string, `)
	sb.WriteString(`"cc": [string], "subject": string, "body": string}` + "\n\n")

	sb.WriteString("Rules:\n")
	sb.WriteString(`- If action="none" and you are not drafting, set to="", cc=[], subject="", body="".` + "\n")
	sb.WriteString(`- When you draft an email, fill subject and body, and set to to the recipient address.` + "\n")
	sb.WriteString("- If the user says hello or similar, introduce yourself briefly and explain what you can do.\n")
	sb.WriteString("- If the user wants to send an email but has not provided the recipient address, ask them to paste it.\n")
	sb.WriteString("- If the user requests a property enquiry with minimal details, write a sensible default draft.\n")
	sb.WriteString("- If a property link is known, mention it in the body.\n")
	sb.WriteString("- Never use placeholders like [Recipient's Name], [Your Name] or [Your Contact Information].\n")
	fmt.Fprintf(&sb, "- If the sender name is unknown, sign off as %q only.\n", signOff)

	return sb.String()
}

// ContextNote describes locally known facts for the generator.
func ContextNote(recipient, propertyURL string) model.Message {
	var parts []string
	if recipient != "" {
		parts = append(parts, fmt.Sprintf("The recipient email address is %s.", recipient))
	} else {
		parts = append(parts, "No recipient email address has been given yet.")
	}
	if propertyURL != "" {
		parts = append(parts, fmt.Sprintf("The property link is %s.", propertyURL))
	}
	return model.Message{Role: model.RoleSystem, Content: strings.Join(parts, " ")}
}

// splitSystem separates system notes from the chat turns, preserving order.
func splitSystem(msgs []model.Message) (notes []string, turns []model.Message) {
	for _, m := range msgs {
		if m.Role == model.RoleSystem {
			notes = append(notes, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	return notes, turns
}
