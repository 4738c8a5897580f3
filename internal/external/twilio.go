package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"dishpatch/internal/types"
)

// twilioAPIBase is the default gateway API base URL.
// Overridable in tests via TwilioClientConfig.BaseURL.
const twilioAPIBase = "https://api.twilio.com"

// TwilioClientConfig holds the configuration for creating a TwilioClient.
type TwilioClientConfig struct {
	AccountSID string
	AuthToken  string
	BaseURL    string // Override for testing; defaults to twilioAPIBase
	Logger     *slog.Logger
}

// TwilioClient implements SMSProvider by calling the Twilio-compatible
// Messages API through BaseClient. Requests inherit the platform's
// resilience infrastructure (circuit breaker, error mapping); transport
// retries stay disabled because notification sends are fire-and-forget.
type TwilioClient struct {
	base       *BaseClient
	accountSID string
	authToken  string
	baseURL    string
	logger     *slog.Logger
}

// NewTwilioClient creates a new TwilioClient. The httpClient timeout bounds
// each gateway call.
func NewTwilioClient(httpClient *http.Client, cfg TwilioClientConfig) *TwilioClient {
	base := NewBaseClient(
		httpClient,
		"sms-gateway",
		NoRetryPolicy(),
		"Dishpatch/1.0",
	)

	return NewTwilioClientWithBase(base, cfg)
}

// NewTwilioClientWithBase creates a TwilioClient with a pre-configured
// BaseClient. Useful for tests that control breaker or retry behavior.
func NewTwilioClientWithBase(base *BaseClient, cfg TwilioClientConfig) *TwilioClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = twilioAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &TwilioClient{
		base:       base,
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		logger:     logger,
	}
}

// messageResponse is the subset of the gateway's message resource we consume.
type messageResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

// errorResponse is the gateway's error envelope.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Send submits one message creation request to the gateway's Messages
// endpoint and returns the created message SID.
//
// Error mapping (429 and 5xx are mapped inside BaseClient):
//   - 400 -> upstream_rejected (invalid destination or body)
//   - 401/403 -> upstream_rejected (credentials or permissions)
//   - other non-2xx -> upstream_sms_gateway_unavailable
func (t *TwilioClient) Send(ctx context.Context, input SMSInput) (string, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.baseURL, t.accountSID)

	form := url.Values{}
	form.Set("To", input.To)
	form.Set("From", input.From)
	form.Set("Body", input.Body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build gateway request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(t.accountSID, t.authToken)

	resp, err := t.base.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", types.NewAppError(types.ErrCodeUpstreamSMSGateway, "failed to read gateway response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", t.mapStatus(resp.StatusCode, body)
	}

	var msg messageResponse
	if err := json.Unmarshal(body, &msg); err != nil {
		return "", types.NewAppError(types.ErrCodeUpstreamSMSGateway, "failed to decode gateway response", err)
	}

	return msg.SID, nil
}

// mapStatus translates non-2xx gateway statuses that BaseClient passes
// through (anything that is not 429/5xx) into domain errors.
func (t *TwilioClient) mapStatus(status int, body []byte) *types.AppError {
	var envelope errorResponse
	detail := ""
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		detail = fmt.Sprintf(" (gateway code %d: %s)", envelope.Code, envelope.Message)
	}

	switch status {
	case http.StatusBadRequest:
		return types.NewAppError(types.ErrCodeUpstreamRejected,
			"gateway rejected the message"+detail, nil)
	case http.StatusUnauthorized, http.StatusForbidden:
		return types.NewAppError(types.ErrCodeUpstreamRejected,
			"gateway rejected the credentials"+detail, nil)
	default:
		return types.NewAppError(types.ErrCodeUpstreamSMSGateway,
			fmt.Sprintf("gateway returned %d%s", status, detail), nil)
	}
}

// Compile-time assertion that TwilioClient implements SMSProvider.
var _ SMSProvider = (*TwilioClient)(nil)
