package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"dishpatch/internal/templates"
	"dishpatch/internal/types"
)

// Sender is the capability shared by all delivery channels. Implementations
// fan out to each recipient independently and surface failures only via
// logging at the sender boundary; Send reports nothing durable to the loop.
type Sender interface {
	// Channel returns the channel type this sender handles.
	Channel() types.ChannelType

	// Send attempts delivery of a validated notification whose body is
	// already a final literal string.
	Send(ctx context.Context, n *types.Notification) error
}

// Dispatcher is the consuming loop: it reads deliveries from the broker,
// validates each payload, renders templated bodies, and routes to the
// matching channel sender. Every per-message failure is caught at the
// message boundary, logged, and dropped, so one bad message never halts
// the worker.
type Dispatcher struct {
	store   *templates.Store
	senders map[types.ChannelType]Sender
	logger  types.Logger

	wg sync.WaitGroup
}

// NewDispatcher creates a Dispatcher routing to the given senders.
func NewDispatcher(store *templates.Store, senders []Sender, logger types.Logger) *Dispatcher {
	byChannel := make(map[types.ChannelType]Sender, len(senders))
	for _, s := range senders {
		byChannel[s.Channel()] = s
	}

	return &Dispatcher{
		store:   store,
		senders: byChannel,
		logger:  logger,
	}
}

// Run consumes deliveries until the channel closes or ctx is done, then
// drains in-flight handlers before returning.
//
// Each delivery is handled in its own goroutine: handlers may overlap in
// time and complete out of order relative to delivery order. No explicit
// in-flight limit is imposed; backpressure is whatever the broker client's
// prefetch provides. Messages are auto-acked at delivery, so a failed
// handler means the notification silently never arrives; that is the
// accepted at-most-once failure mode of this worker.
func (d *Dispatcher) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("dispatch loop stopping", "reason", ctx.Err().Error())
			d.wg.Wait()
			return
		case delivery, ok := <-deliveries:
			if !ok {
				d.logger.Info("delivery channel closed, dispatch loop stopping")
				d.wg.Wait()
				return
			}

			d.wg.Add(1)
			go func(delivery amqp.Delivery) {
				defer d.wg.Done()
				d.Handle(ctx, delivery)
			}(delivery)
		}
	}
}

// Handle processes a single delivery end to end. Exported so tests can
// drive individual messages synchronously.
func (d *Dispatcher) Handle(ctx context.Context, delivery amqp.Delivery) {
	msgID := delivery.MessageId
	if msgID == "" {
		msgID = uuid.NewString()
	}
	ctx = types.WithMessageID(ctx, msgID)
	logger := d.logger.With("message_id", msgID)

	logger.Info("message received", "bytes", len(delivery.Body))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("handler panicked, message dropped", "panic", fmt.Sprint(r))
		}
	}()

	if err := d.process(ctx, delivery.Body); err != nil {
		// Per-message errors are terminal for the message only: logged,
		// dropped, no requeue, no dead-letter.
		logger.Error("message dropped", "error", err.Error())
	}
}

// process runs the per-message pipeline: parse+validate, render when a
// template is named, route to the channel sender.
func (d *Dispatcher) process(ctx context.Context, body []byte) error {
	n, err := Validate(body)
	if err != nil {
		return err
	}

	if n.Body.Kind == types.BodyTemplated {
		rendered, err := d.store.Render(n.Body.TemplateName, n.Body.TemplateData)
		if err != nil {
			return err
		}
		n.Body = types.LiteralBody(rendered)
	}

	sender, ok := d.senders[n.Channel]
	if !ok {
		// Unreachable after validation unless a channel sender was not
		// registered at startup.
		return types.NewAppError(types.ErrCodeInternalUnexpected,
			fmt.Sprintf("no sender registered for channel %q", n.Channel), nil)
	}

	return sender.Send(ctx, n)
}
