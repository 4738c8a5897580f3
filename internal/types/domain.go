// Package types defines the shared domain model for the dishpatch
// notification worker: the validated Notification record, channel and body
// enums, the application error type, and small cross-cutting interfaces.
package types

// ChannelType identifies a delivery channel for a notification.
type ChannelType string

const (
	// ChannelEmail routes to the SMTP-backed email sender.
	ChannelEmail ChannelType = "email"

	// ChannelSMS routes to the HTTP gateway-backed SMS sender.
	ChannelSMS ChannelType = "sms"
)

// KnownChannel reports whether t is a recognized delivery channel.
func KnownChannel(t ChannelType) bool {
	switch t {
	case ChannelEmail, ChannelSMS:
		return true
	default:
		return false
	}
}

// BodyKind tags the Body variant. The variant is decided exactly once, at
// validation time, so downstream code never re-inspects the wire payload.
type BodyKind int

const (
	// BodyLiteral means the payload carried a final string body.
	BodyLiteral BodyKind = iota

	// BodyTemplated means the payload named a template; the body becomes
	// final only after the template store renders it.
	BodyTemplated
)

// Body is the tagged content variant of a Notification.
//
// Exactly one variant is populated: Text for BodyLiteral, or
// TemplateName/TemplateData for BodyTemplated.
type Body struct {
	Kind         BodyKind
	Text         string
	TemplateName string
	TemplateData any
}

// LiteralBody constructs a BodyLiteral variant carrying a final string.
func LiteralBody(text string) Body {
	return Body{Kind: BodyLiteral, Text: text}
}

// TemplatedBody constructs a BodyTemplated variant carrying the template
// lookup name and the decoded content payload used as render data.
func TemplatedBody(name string, data any) Body {
	return Body{Kind: BodyTemplated, TemplateName: name, TemplateData: data}
}

// Notification is the validated internal record produced from an inbound
// queue payload. It is the only shape channel senders ever see; untrusted
// wire data never crosses the validation boundary.
type Notification struct {
	// Channel selects the sender (email or sms).
	Channel ChannelType

	// To is the non-empty list of recipient addresses. Email addresses or
	// phone numbers depending on Channel; every element is non-empty.
	To []string

	// Body is the tagged content variant. The dispatch loop collapses
	// BodyTemplated into BodyLiteral before handing off to a sender.
	Body Body
}

// SenderIdentity is the fixed From identity used by the email channel.
type SenderIdentity struct {
	Address string
	Name    string
}
