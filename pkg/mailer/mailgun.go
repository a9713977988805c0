package mailer

import (
	"context"
	"errors"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

var ErrMailgunNotConfigured = errors.New("mailgun domain, api key and sender are required")

// Mailgun delivers rendered notifications. The client is built once and shared
// by the worker's consumer goroutine.
type Mailgun struct {
	client *mg.MailgunImpl
	Sender string
}

// NewMailgun builds the client. apiBase is optional; pass mg.APIBaseEU for
// domains hosted in the EU region.
func NewMailgun(domain, apiKey, sender, apiBase string) (*Mailgun, error) {
	if domain == "" || apiKey == "" || sender == "" {
		return nil, ErrMailgunNotConfigured
	}
	client := mg.NewMailgun(domain, apiKey)
	if apiBase != "" {
		client.SetAPIBase(apiBase)
	}
	return &Mailgun{client: client, Sender: sender}, nil
}

// Send sends one message; html is optional. Tag groups deliveries by
// notification type in the Mailgun dashboard.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html, tag string) error {
	msg := m.client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	if tag != "" {
		if err := msg.AddTag(tag); err != nil {
			return err
		}
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := m.client.Send(c, msg)
	return err
}
