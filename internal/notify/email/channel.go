// Package email implements the SMTP-backed email channel sender.
package email

import (
	"context"

	"dishpatch/internal/external"
	"dishpatch/internal/types"
)

// Channel delivers notifications over SMTP. Every outbound email carries
// the fixed sender identity and fixed subject from configuration; the body
// is the final rendered content used as both plain-text and HTML parts.
type Channel struct {
	mailer  external.MailProvider
	from    types.SenderIdentity
	subject string
	logger  types.Logger
}

// ChannelConfig holds the dependencies needed to create an email Channel.
type ChannelConfig struct {
	Mailer  external.MailProvider
	From    types.SenderIdentity
	Subject string
	Logger  types.Logger
}

// NewChannel creates a new email Channel.
func NewChannel(cfg ChannelConfig) *Channel {
	return &Channel{
		mailer:  cfg.Mailer,
		from:    cfg.From,
		subject: cfg.Subject,
		logger:  cfg.Logger,
	}
}

// Channel returns the channel type identifier for email.
func (c *Channel) Channel() types.ChannelType {
	return types.ChannelEmail
}

// Send submits one SMTP message per recipient. Each recipient is an
// independent attempt: a failed submission is logged and the remaining
// recipients are still attempted, with no short-circuit on first error.
// Delivery is fire-and-forget: Send never reports per-recipient failure
// to the dispatch loop, so an SMTP outage surfaces only in logs.
func (c *Channel) Send(ctx context.Context, n *types.Notification) error {
	for _, addr := range n.To {
		err := c.mailer.Send(ctx, external.SendInput{
			To:       addr,
			From:     c.from,
			Subject:  c.subject,
			BodyText: n.Body.Text,
			BodyHTML: n.Body.Text,
		})
		if err != nil {
			c.logger.Error("email submission failed",
				"dest", RedactEmail(addr),
				"error", err.Error(),
			)
			continue
		}

		c.logger.Info("email submitted", "dest", RedactEmail(addr))
	}

	return nil
}
