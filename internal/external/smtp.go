package external

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/smtp"
	"net/textproto"

	"dishpatch/internal/types"
)

// sendMailFunc matches the signature of net/smtp.SendMail. Extracted so
// tests can capture the submission without a live SMTP server.
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailerConfig holds the parameters for creating an SMTPMailer.
type SMTPMailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Logger   *slog.Logger
}

// SMTPMailer implements MailProvider over a plain SMTP transport with
// PLAIN auth. Each Send is a single, independent SMTP submission; the
// mailer holds no connection state between calls.
type SMTPMailer struct {
	addr     string
	auth     smtp.Auth
	sendMail sendMailFunc
	logger   *slog.Logger
}

// NewSMTPMailer creates an SMTPMailer from transport configuration.
func NewSMTPMailer(cfg SMTPMailerConfig) *SMTPMailer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &SMTPMailer{
		addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth:     smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host),
		sendMail: smtp.SendMail,
		logger:   logger,
	}
}

// NewSMTPMailerWithSendFunc creates an SMTPMailer with an injected send
// function. Used by tests to record submissions.
func NewSMTPMailerWithSendFunc(cfg SMTPMailerConfig, send sendMailFunc) *SMTPMailer {
	m := NewSMTPMailer(cfg)
	m.sendMail = send
	return m
}

// Send builds a multipart/alternative MIME message (text + HTML parts from
// the same rendered body) and submits it over SMTP.
//
// net/smtp carries no context support; ctx is accepted for interface
// symmetry only. A hung SMTP session therefore blocks this message's
// handler without affecting other in-flight handlers.
func (m *SMTPMailer) Send(ctx context.Context, input SendInput) error {
	msg, err := buildMessage(input)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build MIME message", err)
	}

	if err := m.sendMail(m.addr, m.auth, input.From.Address, []string{input.To}, msg); err != nil {
		return types.NewAppError(types.ErrCodeUpstreamSMTP, "smtp submission failed", err)
	}

	return nil
}

// buildMessage assembles the RFC 5322 message: headers followed by a
// multipart/alternative body with text/plain and text/html parts.
func buildMessage(input SendInput) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	from := input.From.Address
	if input.From.Name != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", input.From.Name), input.From.Address)
	}

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", input.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", input.Subject))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n", mw.Boundary())
	fmt.Fprintf(&buf, "\r\n")

	// Plain part first: multipart/alternative lists parts in increasing
	// order of preference.
	textPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=UTF-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := textPart.Write([]byte(input.BodyText)); err != nil {
		return nil, err
	}

	htmlPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=UTF-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := htmlPart.Write([]byte(input.BodyHTML)); err != nil {
		return nil, err
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Compile-time assertion that SMTPMailer implements MailProvider.
var _ MailProvider = (*SMTPMailer)(nil)
