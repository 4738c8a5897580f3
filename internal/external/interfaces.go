package external

import (
	"context"

	"dishpatch/internal/types"
)

// ---------------------------------------------------------------------------
// Email transport (SMTP)
// ---------------------------------------------------------------------------

// SendInput carries one fully-rendered email for transmission.
type SendInput struct {
	To       string
	From     types.SenderIdentity
	Subject  string
	BodyHTML string
	BodyText string
}

// MailProvider abstracts the SMTP transport. Implementations transmit
// pre-rendered content; they never touch templates or validation.
type MailProvider interface {
	// Send submits a single email. SMTP submission returns no provider
	// message ID, so success is simply a nil error.
	Send(ctx context.Context, input SendInput) error
}

// ---------------------------------------------------------------------------
// SMS transport (HTTP gateway)
// ---------------------------------------------------------------------------

// SMSInput carries one outbound text message.
type SMSInput struct {
	To   string
	From string
	Body string
}

// SMSProvider abstracts the third-party SMS gateway. Implementations submit
// a message creation request and return the gateway's message SID for log
// correlation.
type SMSProvider interface {
	Send(ctx context.Context, input SMSInput) (string, error)
}
