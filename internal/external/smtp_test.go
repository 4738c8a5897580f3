package external

import (
	"context"
	"errors"
	"log/slog"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dishpatch/internal/types"
)

// sentMail captures one sendMailFunc invocation.
type sentMail struct {
	addr string
	from string
	to   []string
	msg  []byte
}

func testMailerConfig() SMTPMailerConfig {
	return SMTPMailerConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "mailer",
		Password: "hunter2",
		Logger:   slog.New(slog.DiscardHandler),
	}
}

func TestSMTPMailerSend(t *testing.T) {
	var got sentMail
	mailer := NewSMTPMailerWithSendFunc(testMailerConfig(),
		func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			got = sentMail{addr: addr, from: from, to: to, msg: msg}
			return nil
		})

	err := mailer.Send(context.Background(), SendInput{
		To:       "a@example.com",
		From:     types.SenderIdentity{Address: "no-reply@dishpatch.app", Name: "Dishpatch"},
		Subject:  "Dishpatch notification",
		BodyText: "Order 123 confirmed",
		BodyHTML: "Order 123 confirmed",
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", got.addr)
	assert.Equal(t, "no-reply@dishpatch.app", got.from)
	assert.Equal(t, []string{"a@example.com"}, got.to)

	msg := string(got.msg)
	assert.Contains(t, msg, "From: Dishpatch <no-reply@dishpatch.app>\r\n")
	assert.Contains(t, msg, "To: a@example.com\r\n")
	assert.Contains(t, msg, "Subject: Dishpatch notification\r\n")
	assert.Contains(t, msg, "MIME-Version: 1.0\r\n")
	assert.Contains(t, msg, "Content-Type: multipart/alternative; boundary=")
	assert.Contains(t, msg, "Content-Type: text/plain; charset=UTF-8")
	assert.Contains(t, msg, "Content-Type: text/html; charset=UTF-8")
	// Body appears in both alternative parts.
	assert.Equal(t, 2, strings.Count(msg, "Order 123 confirmed"))
}

func TestSMTPMailerSendSubmissionFailure(t *testing.T) {
	submitErr := errors.New("421 service not available")
	mailer := NewSMTPMailerWithSendFunc(testMailerConfig(),
		func(string, smtp.Auth, string, []string, []byte) error { return submitErr })

	err := mailer.Send(context.Background(), SendInput{
		To:       "a@example.com",
		From:     types.SenderIdentity{Address: "no-reply@dishpatch.app"},
		Subject:  "hi",
		BodyText: "hi",
		BodyHTML: "hi",
	})

	require.Error(t, err)
	assert.True(t, types.HasCode(err, types.ErrCodeUpstreamSMTP))
	assert.ErrorIs(t, err, submitErr)
}

func TestSMTPMailerFromWithoutDisplayName(t *testing.T) {
	var got sentMail
	mailer := NewSMTPMailerWithSendFunc(testMailerConfig(),
		func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
			got = sentMail{msg: msg}
			return nil
		})

	err := mailer.Send(context.Background(), SendInput{
		To:       "a@example.com",
		From:     types.SenderIdentity{Address: "no-reply@dishpatch.app"},
		Subject:  "hi",
		BodyText: "hi",
		BodyHTML: "hi",
	})
	require.NoError(t, err)
	assert.Contains(t, string(got.msg), "From: no-reply@dishpatch.app\r\n")
}
