// Package resendmail implements mailer.Mailer with the Resend API.
package resendmail

import (
	"context"
	"fmt"
	"net/url"
	"rightfit/pkg/mailer"
	"sort"

	"github.com/resend/resend-go/v2"
)

// Options configures the Resend client.
type Options struct {
	APIKey string
	// From is used when a message has no sender of its own.
	From string
	// BaseURL overrides the API endpoint. Empty means the public API.
	BaseURL string
}

// Client sends email through Resend.
type Client struct {
	client *resend.Client
	from   string
}

var _ mailer.Mailer = (*Client)(nil)

// New creates a Resend backed mailer.
func New(opts Options) (*Client, error) {
	client := resend.NewClient(opts.APIKey)
	if opts.BaseURL != "" {
		u, err := url.Parse(opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("could not parse resend base url: %w", err)
		}
		client.BaseURL = u
	}

	return &Client{client: client, from: opts.From}, nil
}

func (c *Client) Send(ctx context.Context, msg mailer.Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}

	from := msg.From
	if from == "" {
		from = c.from
	}

	req := &resend.SendEmailRequest{
		From:    from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	}

	names := make([]string, 0, len(msg.Tags))
	for name := range msg.Tags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		req.Tags = append(req.Tags, resend.Tag{Name: name, Value: msg.Tags[name]})
	}

	resp, err := c.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return "", fmt.Errorf("could not send email via resend: %w", err)
	}

	return resp.Id, nil
}
