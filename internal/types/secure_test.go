package types

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretStringMasksFormatting(t *testing.T) {
	secret := SecretString("super-secret-password")

	assert.Equal(t, "******", secret.String())
	assert.Equal(t, "broker password: ******", fmt.Sprintf("broker password: %v", secret))
	assert.Equal(t, "broker password: ******", fmt.Sprintf("broker password: %s", secret))
}

func TestSecretStringMasksJSON(t *testing.T) {
	payload := struct {
		Password SecretString `json:"password"`
	}{Password: SecretString("super-secret-password")}

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"password":"******"}`, string(out))
}

func TestSecretStringUnmask(t *testing.T) {
	secret := SecretString("super-secret-password")
	assert.Equal(t, "super-secret-password", secret.Unmask())
}
