package email

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dishpatch/internal/external"
	"dishpatch/internal/types"
)

// fakeMailer records submissions and can fail selected recipients.
type fakeMailer struct {
	failFor map[string]error
	inputs  []external.SendInput
}

func (f *fakeMailer) Send(_ context.Context, in external.SendInput) error {
	f.inputs = append(f.inputs, in)
	if err, ok := f.failFor[in.To]; ok {
		return err
	}
	return nil
}

func newTestChannel(mailer external.MailProvider) *Channel {
	return NewChannel(ChannelConfig{
		Mailer:  mailer,
		From:    types.SenderIdentity{Address: "no-reply@dishpatch.app", Name: "Dishpatch"},
		Subject: "Dishpatch notification",
		Logger:  types.NopLogger{},
	})
}

func TestSendFansOutPerRecipient(t *testing.T) {
	mailer := &fakeMailer{}
	ch := newTestChannel(mailer)

	err := ch.Send(context.Background(), &types.Notification{
		Channel: types.ChannelEmail,
		To:      []string{"a@example.com", "b@example.com"},
		Body:    types.LiteralBody("Order 123 confirmed"),
	})

	require.NoError(t, err)
	require.Len(t, mailer.inputs, 2)
	assert.Equal(t, "a@example.com", mailer.inputs[0].To)
	assert.Equal(t, "b@example.com", mailer.inputs[1].To)
	for _, in := range mailer.inputs {
		assert.Equal(t, "no-reply@dishpatch.app", in.From.Address)
		assert.Equal(t, "Dishpatch notification", in.Subject)
		assert.Equal(t, "Order 123 confirmed", in.BodyText)
		assert.Equal(t, "Order 123 confirmed", in.BodyHTML)
	}
}

func TestSendContinuesAfterRecipientFailure(t *testing.T) {
	mailer := &fakeMailer{failFor: map[string]error{
		"a@example.com": errors.New("mailbox unavailable"),
	}}
	ch := newTestChannel(mailer)

	err := ch.Send(context.Background(), &types.Notification{
		Channel: types.ChannelEmail,
		To:      []string{"a@example.com", "b@example.com"},
		Body:    types.LiteralBody("hi"),
	})

	// Fire and forget: the failure is logged, not returned, and the second
	// recipient is still attempted.
	require.NoError(t, err)
	assert.Len(t, mailer.inputs, 2)
}

func TestRedactEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"john@gmail.com", "j***@gmail.com"},
		{"a@b.co", "a***@b.co"},
		{"@example.com", "***@example.com"},
		{"not-an-address", "***"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := RedactEmail(tt.in); got != tt.want {
			t.Errorf("RedactEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
