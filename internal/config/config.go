// Package config defines the configuration for the dishpatch notification
// worker. Configuration is loaded once at process startup and is immutable
// thereafter, following 12-Factor principles: all values come from the
// environment (optionally seeded by a .env file for local development).
//
// Any missing required value or invalid format fails the process immediately
// on startup. Secret values are typed as SecretString so the resulting error
// dump is redacted.
package config

import (
	"fmt"
	"time"

	"dishpatch/internal/types"
)

// SecretString is an alias for types.SecretString, the masked secret type
// used throughout configuration to prevent accidental logging of credentials.
type SecretString = types.SecretString

// Config is the top-level configuration struct for the notification worker.
// It is populated once during startup and never modified. Sub-components
// receive only the specific subsets they require.
type Config struct {
	// System metadata
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"dishpatch-notify-worker"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Domain configurations
	Broker    BrokerConfig
	Templates TemplateConfig
	Email     EmailConfig
	SMS       SMSConfig
	Ops       OpsConfig
}

// BrokerConfig holds AMQP connection parameters and the consumed queue name.
type BrokerConfig struct {
	Host     string       `envconfig:"AMQP_HOST" validate:"required"`
	Port     int          `envconfig:"AMQP_PORT" default:"5672"`
	Username string       `envconfig:"AMQP_USERNAME" validate:"required"`
	Password SecretString `envconfig:"AMQP_PASSWORD" validate:"required"`

	// Queue is the durable queue the dispatch loop consumes.
	Queue string `envconfig:"NOTIFY_QUEUE" validate:"required"`

	// Startup connect retry budget. The broker is typically started
	// alongside this service, so a short fixed grace period is applied to
	// connection-refused failures before giving up for the orchestrator
	// to restart the process.
	ConnectAttempts int           `envconfig:"AMQP_CONNECT_ATTEMPTS" default:"5"`
	ConnectInterval time.Duration `envconfig:"AMQP_CONNECT_INTERVAL" default:"2s"`
}

// URL assembles the AMQP connection URL from the broker parameters.
func (c BrokerConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", c.Username, c.Password.Unmask(), c.Host, c.Port)
}

// TemplateConfig locates the Handlebars template directory.
type TemplateConfig struct {
	// Dir is the directory scanned for *.hbs files at startup. The filename
	// stem (text before the first dot) is the template's lookup key.
	Dir string `envconfig:"TEMPLATE_DIR" default:"template"`
}

// EmailConfig holds SMTP transport parameters and the fixed sender identity
// applied to every outbound email.
type EmailConfig struct {
	SMTPHost     string       `envconfig:"SMTP_HOST" validate:"required"`
	SMTPPort     int          `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string       `envconfig:"SMTP_USERNAME" validate:"required"`
	SMTPPassword SecretString `envconfig:"SMTP_PASSWORD" validate:"required"`

	FromAddress string `envconfig:"EMAIL_FROM_ADDRESS" default:"no-reply@dishpatch.app"`
	FromName    string `envconfig:"EMAIL_FROM_NAME" default:"Dishpatch"`
	Subject     string `envconfig:"EMAIL_SUBJECT" default:"Dishpatch notification"`
}

// SMSConfig holds the SMS gateway credentials and the fixed sender number.
type SMSConfig struct {
	AccountSID string       `envconfig:"SMS_ACCOUNT_SID" validate:"required"`
	AuthToken  SecretString `envconfig:"SMS_AUTH_TOKEN" validate:"required"`
	FromNumber string       `envconfig:"SMS_FROM_NUMBER" validate:"required"`

	// GatewayURL overrides the gateway API base, mainly for tests and
	// local fakes. Defaults to the hosted gateway.
	GatewayURL string `envconfig:"SMS_GATEWAY_URL" default:"https://api.twilio.com"`
}

// OpsConfig holds the operational HTTP surface (health endpoint) settings.
type OpsConfig struct {
	Port string `envconfig:"OPS_PORT" default:"8081"`
}
