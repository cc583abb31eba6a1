package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Message is one rendered email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
	// Tag groups messages in Mailgun analytics, e.g. the template name.
	Tag string
}

// Mailgun delivers messages through the Mailgun HTTP API.
type Mailgun struct {
	Sender string
	client mg.Mailgun
}

// NewMailgun returns nil when any credential is missing.
func NewMailgun(domain, apiKey, sender string) *Mailgun {
	if domain == "" || apiKey == "" || sender == "" {
		return nil
	}
	return &Mailgun{Sender: sender, client: mg.NewMailgun(domain, apiKey)}
}

// Send delivers m. Rejections that retrying cannot fix (bad address,
// auth, payload) wrap ErrPermanent.
func (m *Mailgun) Send(ctx context.Context, msg Message) error {
	out := m.client.NewMessage(m.Sender, msg.Subject, msg.Text, msg.To)
	if msg.HTML != "" {
		out.SetHtml(msg.HTML)
	}
	if msg.Tag != "" {
		if err := out.AddTag(msg.Tag); err != nil {
			return fmt.Errorf("%w: tag: %v", ErrPermanent, err)
		}
	}
	_, _, err := m.client.Send(ctx, out)
	var ure *mg.UnexpectedResponseError
	if errors.As(err, &ure) && ure.Actual >= 400 && ure.Actual < 500 && ure.Actual != http.StatusTooManyRequests {
		return fmt.Errorf("%w: mailgun %d", ErrPermanent, ure.Actual)
	}
	return err
}
