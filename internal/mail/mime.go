package mail

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	gomail "github.com/emersion/go-message/mail"
)

// BuildRaw renders msg as an RFC 5322 plain-text message.
func BuildRaw(msg Outgoing, now time.Time) ([]byte, error) {
	var h gomail.Header
	h.SetDate(now)
	h.SetSubject(msg.Subject)
	h.SetAddressList("To", []*gomail.Address{{Address: strings.TrimSpace(msg.To)}})

	if len(msg.Cc) > 0 {
		cc := make([]*gomail.Address, 0, len(msg.Cc))
		for _, addr := range msg.Cc {
			cc = append(cc, &gomail.Address{Address: strings.TrimSpace(addr)})
		}
		h.SetAddressList("Cc", cc)
	}

	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("generating message id: %w", err)
	}
	h.Set("MIME-Version", "1.0")
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	h.Set("Content-Transfer-Encoding", "quoted-printable")

	var buf bytes.Buffer
	w, err := gomail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("creating message writer: %w", err)
	}
	if _, err := w.Write([]byte(msg.Body)); err != nil {
		return nil, fmt.Errorf("writing message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing message writer: %w", err)
	}

	return buf.Bytes(), nil
}
