// Package notify implements the dispatch core: inbound payload validation
// and the consuming loop that routes validated notifications to channel
// senders.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"dishpatch/internal/types"
)

// rawMessage mirrors the queue wire format. Pointer and RawMessage fields
// distinguish "absent" from "present but empty/invalid" so rejections can
// name the exact violation.
type rawMessage struct {
	Type     *string         `json:"type"`
	To       []string        `json:"to"`
	Template *string         `json:"template"`
	Content  json.RawMessage `json:"content"`
}

// jsonNull is the encoded null literal; a null content field counts as missing.
var jsonNull = []byte("null")

// Validate parses and validates a raw queue payload into a typed
// Notification. The payload originates from independently-deployed producer
// services, so this gate converts untrusted external data into a typed
// internal record or a validation_failed rejection; the dispatch loop never
// crashes on a misbehaving producer.
//
// Rules:
//   - type must be a recognized channel ("email" or "sms")
//   - to must be a non-empty list of non-empty strings
//   - template, when present, must be a non-empty string
//   - content must be present; when content is not a JSON string, template
//     MUST be present (cross-field invariant)
//
// The body variant is decided here, exactly once: a named template yields
// BodyTemplated with the decoded content as render data, otherwise the
// string content becomes BodyLiteral.
func Validate(body []byte) (*types.Notification, error) {
	var raw rawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, types.NewValidationError(fmt.Sprintf("malformed JSON body: %v", err))
	}

	if raw.Type == nil {
		return nil, types.NewValidationError("missing required field \"type\"")
	}
	channel := types.ChannelType(*raw.Type)
	if !types.KnownChannel(channel) {
		return nil, types.NewValidationError(fmt.Sprintf("unknown notification type %q", *raw.Type))
	}

	if len(raw.To) == 0 {
		return nil, types.NewValidationError("\"to\" must be a non-empty list of recipients")
	}
	for i, addr := range raw.To {
		if strings.TrimSpace(addr) == "" {
			return nil, types.NewValidationError(fmt.Sprintf("\"to\" contains an empty recipient at index %d", i))
		}
	}

	if raw.Template != nil && *raw.Template == "" {
		return nil, types.NewValidationError("\"template\", when present, must be a non-empty string")
	}

	if len(raw.Content) == 0 || bytes.Equal(bytes.TrimSpace(raw.Content), jsonNull) {
		return nil, types.NewValidationError("missing required field \"content\"")
	}

	var text string
	isString := json.Unmarshal(raw.Content, &text) == nil

	if raw.Template == nil && !isString {
		return nil, types.NewValidationError("\"content\" must be a string when no \"template\" is named")
	}

	n := &types.Notification{
		Channel: channel,
		To:      raw.To,
	}

	// A named template wins regardless of content's JSON type; the decoded
	// content becomes the render data.
	if raw.Template != nil {
		var data any
		if err := json.Unmarshal(raw.Content, &data); err != nil {
			return nil, types.NewValidationError(fmt.Sprintf("\"content\" is not valid JSON: %v", err))
		}
		n.Body = types.TemplatedBody(*raw.Template, data)
		return n, nil
	}

	n.Body = types.LiteralBody(text)
	return n, nil
}
