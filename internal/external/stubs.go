package external

import (
	"context"
	"fmt"
	"log/slog"
)

// ---------------------------------------------------------------------------
// Stub Implementations
//
// Stubs allow the worker to boot in local mode without real SMTP or gateway
// credentials. They log every action and return predictable, safe values.
// ---------------------------------------------------------------------------

// StubMailProvider implements MailProvider by logging the submission and
// succeeding. Used when APP_ENV=local.
type StubMailProvider struct {
	logger *slog.Logger
}

// NewStubMailProvider creates a new StubMailProvider.
func NewStubMailProvider(logger *slog.Logger) *StubMailProvider {
	return &StubMailProvider{logger: logger}
}

func (s *StubMailProvider) Send(ctx context.Context, input SendInput) error {
	s.logger.InfoContext(ctx, "stub: email send",
		"to", input.To,
		"subject", input.Subject,
		"body_bytes", len(input.BodyText),
	)
	return nil
}

// StubSMSProvider implements SMSProvider by logging the submission and
// returning a synthetic message SID. Used when APP_ENV=local.
type StubSMSProvider struct {
	logger *slog.Logger
	calls  int
}

// NewStubSMSProvider creates a new StubSMSProvider.
func NewStubSMSProvider(logger *slog.Logger) *StubSMSProvider {
	return &StubSMSProvider{logger: logger}
}

func (s *StubSMSProvider) Send(ctx context.Context, input SMSInput) (string, error) {
	s.calls++
	s.logger.InfoContext(ctx, "stub: sms send",
		"to", input.To,
		"body_bytes", len(input.Body),
	)
	return fmt.Sprintf("SM_stub_%06d", s.calls), nil
}

var (
	_ MailProvider = (*StubMailProvider)(nil)
	_ SMSProvider  = (*StubSMSProvider)(nil)
)
