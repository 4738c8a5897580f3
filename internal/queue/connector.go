// Package queue establishes the AMQP broker connection for the dispatch
// loop: bounded-retry dial at startup, durable queue declaration, and the
// auto-ack consuming handle.
package queue

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"dishpatch/internal/config"
	"dishpatch/internal/types"
)

// amqpChannel is the subset of *amqp.Channel used by the connector.
// Extracted for testability.
type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// amqpConnection is the subset of *amqp.Connection used by the connector.
type amqpConnection interface {
	Channel() (amqpChannel, error)
	IsClosed() bool
	Close() error
}

// dialFunc opens a broker connection. Production uses amqp.Dial; tests
// inject failures and fakes.
type dialFunc func(url string) (amqpConnection, error)

// realConnection adapts *amqp.Connection to the amqpConnection interface.
type realConnection struct {
	conn *amqp.Connection
}

func (r *realConnection) Channel() (amqpChannel, error) {
	ch, err := r.conn.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func (r *realConnection) IsClosed() bool { return r.conn.IsClosed() }
func (r *realConnection) Close() error   { return r.conn.Close() }

func defaultDial(url string) (amqpConnection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return &realConnection{conn: conn}, nil
}

// Session is the live subscription capability returned by Connect. It is
// created once per process lifetime and consumed until process exit; there
// is no reconnection after the initial connect succeeds.
type Session struct {
	conn   amqpConnection
	ch     amqpChannel
	queue  string
	logger types.Logger
}

// Consume subscribes to the declared queue with auto-acknowledgement:
// the broker marks each message consumed the moment it is delivered,
// independent of processing outcome (at-most-once, best-effort delivery).
func (s *Session) Consume() (<-chan amqp.Delivery, error) {
	tag := "notify-worker-" + uuid.NewString()

	deliveries, err := s.ch.Consume(
		s.queue, // queue
		tag,     // consumer tag
		true,    // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeBrokerRejected,
			fmt.Sprintf("failed to start consuming queue %q", s.queue), err)
	}

	s.logger.Info("consuming started", "queue", s.queue, "consumer_tag", tag)
	return deliveries, nil
}

// Queue returns the declared queue name.
func (s *Session) Queue() string { return s.queue }

// Alive reports whether the underlying broker connection is still open.
// Used by the ops health probe.
func (s *Session) Alive() bool {
	return s.conn != nil && !s.conn.IsClosed()
}

// Close releases the channel and connection.
func (s *Session) Close() error {
	var lastErr error
	if s.ch != nil {
		if err := s.ch.Close(); err != nil {
			lastErr = err
		}
	}
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Connector dials the broker and prepares the consuming session.
type Connector struct {
	cfg    config.BrokerConfig
	logger types.Logger
	dial   dialFunc
	sleep  func(time.Duration)
}

// ConnectorOption is a functional option for configuring a Connector.
type ConnectorOption func(*Connector)

// WithDialFunc overrides the dial function. Intended for tests.
func WithDialFunc(fn dialFunc) ConnectorOption {
	return func(c *Connector) {
		c.dial = fn
	}
}

// WithSleepFunc overrides the sleep between connect attempts. Intended for
// tests to avoid real delays.
func WithSleepFunc(fn func(time.Duration)) ConnectorOption {
	return func(c *Connector) {
		c.sleep = fn
	}
}

// NewConnector creates a Connector for the given broker configuration.
func NewConnector(cfg config.BrokerConfig, logger types.Logger, opts ...ConnectorOption) *Connector {
	c := &Connector{
		cfg:    cfg,
		logger: logger,
		dial:   defaultDial,
		sleep:  time.Sleep,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Connect establishes the broker connection, opens a channel, and declares
// the configured durable queue, returning the consuming Session.
//
// Retry policy: the broker is typically started concurrently with this
// service, so connection-refused failures are retried on a fixed attempt
// budget (default 5) with a fixed interval (default 2s) between attempts.
// Failures the broker itself answers with (e.g. ACCESS_REFUSED on bad
// credentials) propagate immediately without retry, and exhausting the
// budget propagates the final dial error. A persistently-down broker should
// fail the process fast for the orchestrator to restart, not loop forever.
func (c *Connector) Connect(ctx context.Context) (*Session, error) {
	attempts := c.cfg.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		conn, err := c.dial(c.cfg.URL())
		if err == nil {
			return c.open(conn)
		}
		lastErr = err

		if !isRetryableConnectError(err) {
			return nil, types.NewAppError(types.ErrCodeBrokerRejected,
				"broker rejected the connection", err)
		}

		c.logger.Warn("broker not reachable",
			"host", c.cfg.Host,
			"attempt", attempt,
			"max_attempts", attempts,
			"error", err.Error(),
		)

		if attempt < attempts {
			c.sleep(c.cfg.ConnectInterval)
		}
	}

	return nil, types.NewAppError(types.ErrCodeBrokerUnreachable,
		fmt.Sprintf("broker unreachable after %d attempts", attempts), lastErr)
}

// open builds the Session from a freshly dialed connection: one logical
// channel, one durable queue declaration (a no-op when the queue already
// exists with the same properties).
func (c *Connector) open(conn amqpConnection) (*Session, error) {
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, types.NewAppError(types.ErrCodeBrokerRejected,
			"failed to open broker channel", err)
	}

	if _, err := ch.QueueDeclare(
		c.cfg.Queue, // name
		true,        // durable
		false,       // auto-delete
		false,       // exclusive
		false,       // no-wait
		nil,         // args
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, types.NewAppError(types.ErrCodeBrokerRejected,
			fmt.Sprintf("failed to declare queue %q", c.cfg.Queue), err)
	}

	c.logger.Info("connected to broker", "host", c.cfg.Host, "queue", c.cfg.Queue)

	return &Session{
		conn:   conn,
		ch:     ch,
		queue:  c.cfg.Queue,
		logger: c.logger,
	}, nil
}

// isRetryableConnectError classifies dial failures. Only the
// connection-refused class (the broker's port is not accepting yet) earns a
// retry; anything the broker answered at the protocol level is final.
func isRetryableConnectError(err error) bool {
	var amqpErr *amqp.Error
	if errors.As(err, &amqpErr) {
		// The broker responded; handshake failures (auth, vhost) do not
		// resolve by waiting.
		return false
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}

	return false
}
