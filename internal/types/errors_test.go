package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorErrorAndUnwrap(t *testing.T) {
	underlying := errors.New("dial tcp: connection refused")
	err := NewAppError(ErrCodeBrokerUnreachable, "broker unreachable after 5 attempts", underlying)

	assert.Equal(t, "broker_unreachable: broker unreachable after 5 attempts", err.Error())
	assert.ErrorIs(t, err, underlying)
}

func TestHasCode(t *testing.T) {
	err := NewAppError(ErrCodeTemplateParse, "bad template", nil)

	assert.True(t, HasCode(err, ErrCodeTemplateParse))
	assert.False(t, HasCode(err, ErrCodeTemplateRender))
	assert.False(t, HasCode(errors.New("plain"), ErrCodeTemplateParse))
	assert.False(t, HasCode(nil, ErrCodeTemplateParse))
}

func TestHasCodeThroughWrapping(t *testing.T) {
	inner := NewValidationError("missing required field \"type\"")
	wrapped := fmt.Errorf("handling message: %w", inner)

	assert.True(t, IsValidationError(wrapped))
	assert.True(t, HasCode(wrapped, ErrCodeValidationFailed))
}

func TestNewTemplateNotFound(t *testing.T) {
	err := NewTemplateNotFound("order_confirm")

	assert.True(t, IsTemplateNotFound(err))
	assert.Contains(t, err.Error(), `"order_confirm"`)
}
