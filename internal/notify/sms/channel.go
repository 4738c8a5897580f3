// Package sms implements the gateway-backed SMS channel sender.
package sms

import (
	"context"

	"dishpatch/internal/external"
	"dishpatch/internal/types"
)

// Channel delivers notifications as text messages through a third-party
// gateway. Every outbound message carries the fixed sender number from
// configuration and the notification's final body.
type Channel struct {
	provider   external.SMSProvider
	fromNumber string
	logger     types.Logger
}

// ChannelConfig holds the dependencies needed to create an SMS Channel.
type ChannelConfig struct {
	Provider   external.SMSProvider
	FromNumber string
	Logger     types.Logger
}

// NewChannel creates a new SMS Channel.
func NewChannel(cfg ChannelConfig) *Channel {
	return &Channel{
		provider:   cfg.Provider,
		fromNumber: cfg.FromNumber,
		logger:     cfg.Logger,
	}
}

// Channel returns the channel type identifier for SMS.
func (c *Channel) Channel() types.ChannelType {
	return types.ChannelSMS
}

// Send submits one gateway request per recipient. Each recipient is an
// independent attempt: a failed submission is logged and the remaining
// recipients are still attempted. Delivery is fire-and-forget: Send never
// reports per-recipient failure to the dispatch loop.
func (c *Channel) Send(ctx context.Context, n *types.Notification) error {
	for _, number := range n.To {
		sid, err := c.provider.Send(ctx, external.SMSInput{
			To:   number,
			From: c.fromNumber,
			Body: n.Body.Text,
		})
		if err != nil {
			c.logger.Error("sms submission failed",
				"dest", RedactPhone(number),
				"error", err.Error(),
			)
			continue
		}

		c.logger.Info("sms submitted", "dest", RedactPhone(number), "message_sid", sid)
	}

	return nil
}

// RedactPhone masks a phone number for safe logging, keeping only the last
// two digits: "+15551234567" becomes "*********67".
func RedactPhone(number string) string {
	if number == "" {
		return ""
	}
	if len(number) <= 2 {
		return "**"
	}

	masked := make([]byte, len(number)-2)
	for i := range masked {
		masked[i] = '*'
	}
	return string(masked) + number[len(number)-2:]
}
