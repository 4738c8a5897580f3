package external

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dishpatch/internal/types"
)

func newTestTwilioClient(serverURL string) *TwilioClient {
	return NewTwilioClient(&http.Client{}, TwilioClientConfig{
		AccountSID: "AC0000000000",
		AuthToken:  "token-123",
		BaseURL:    serverURL,
		Logger:     slog.New(slog.DiscardHandler),
	})
}

func TestTwilioSend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/2010-04-01/Accounts/AC0000000000/Messages.json", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "AC0000000000", user)
		assert.Equal(t, "token-123", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "+15551230099", r.PostForm.Get("To"))
		assert.Equal(t, "+15550001111", r.PostForm.Get("From"))
		assert.Equal(t, "Your order is ready", r.PostForm.Get("Body"))

		assert.Equal(t, "msg-42", r.Header.Get("X-Request-Id"))

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM123","status":"queued"}`))
	}))
	defer server.Close()

	client := newTestTwilioClient(server.URL)
	ctx := types.WithMessageID(context.Background(), "msg-42")

	sid, err := client.Send(ctx, SMSInput{
		To:   "+15551230099",
		From: "+15550001111",
		Body: "Your order is ready",
	})

	require.NoError(t, err)
	assert.Equal(t, "SM123", sid)
}

func TestTwilioSendStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode types.ErrorCode
	}{
		{
			name:     "bad request",
			status:   http.StatusBadRequest,
			body:     `{"code":21211,"message":"Invalid 'To' phone number"}`,
			wantCode: types.ErrCodeUpstreamRejected,
		},
		{
			name:     "unauthorized",
			status:   http.StatusUnauthorized,
			body:     `{"code":20003,"message":"Authenticate"}`,
			wantCode: types.ErrCodeUpstreamRejected,
		},
		{
			name:     "rate limited",
			status:   http.StatusTooManyRequests,
			body:     `{"code":20429,"message":"Too many requests"}`,
			wantCode: types.ErrCodeUpstreamRateLimited,
		},
		{
			name:     "server error",
			status:   http.StatusInternalServerError,
			body:     `{}`,
			wantCode: types.ErrCodeUpstreamSMSGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestTwilioClient(server.URL)
			_, err := client.Send(context.Background(), SMSInput{
				To:   "+15551230099",
				From: "+15550001111",
				Body: "hi",
			})

			require.Error(t, err)
			assert.True(t, types.HasCode(err, tt.wantCode),
				"expected %s, got %v", tt.wantCode, err)
		})
	}
}

func TestTwilioSendTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse all connections

	client := newTestTwilioClient(server.URL)
	_, err := client.Send(context.Background(), SMSInput{To: "+1", From: "+2", Body: "hi"})

	require.Error(t, err)
	assert.True(t, types.HasCode(err, types.ErrCodeUpstreamSMSGateway))
}
