// Package amqp carries chat messages in and replies out over RabbitMQ.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rabbitmq/amqp091-go"
)

// Circuit breaker states for publishing.
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	publishTimeout = 5 * time.Second
)

type Config struct {
	URL          string
	Exchange     string
	InboundQueue string
	ReplyQueue   string
	Prefetch     int
	// MaxDialElapsed bounds how long Connect keeps retrying. Zero means
	// until the context ends.
	MaxDialElapsed time.Duration
}

type Client struct {
	cfg     Config
	logger  *slog.Logger
	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	state        int32
	failureCount int64
	lastFailure  time.Time
}

// NewClient returns an unconnected client. Call Connect before use.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Prefetch < 1 {
		cfg.Prefetch = 1
	}
	return &Client{cfg: cfg, logger: logger}
}

// Connect dials the broker, retrying with exponential backoff, and declares
// the exchange and both queues.
func (c *Client) Connect(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = c.cfg.MaxDialElapsed

	attempt := 0
	op := func() error {
		attempt++
		conn, err := amqp091.Dial(c.cfg.URL)
		if err != nil {
			return fmt.Errorf("dial AMQP: %w", err)
		}
		ch, err := conn.Channel()
		if err != nil {
			conn.Close()
			return fmt.Errorf("open channel: %w", err)
		}
		if err := setup(ch, c.cfg); err != nil {
			ch.Close()
			conn.Close()
			return backoff.Permanent(fmt.Errorf("setup exchange and queues: %w", err))
		}
		c.mu.Lock()
		c.conn, c.channel = conn, ch
		c.mu.Unlock()
		return nil
	}
	notify := func(err error, wait time.Duration) {
		c.logger.WarnContext(ctx, "AMQP connection failed, retrying",
			"attempt", attempt,
			"retry_in", wait,
			"error", err)
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
		return err
	}
	c.recordSuccess()
	c.logger.InfoContext(ctx, "Connected to AMQP broker",
		"exchange", c.cfg.Exchange,
		"inbound_queue", c.cfg.InboundQueue,
		"reply_queue", c.cfg.ReplyQueue)
	return nil
}

func setup(ch *amqp091.Channel, cfg Config) error {
	if err := ch.ExchangeDeclare(
		cfg.Exchange, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	for _, q := range []string{cfg.InboundQueue, cfg.ReplyQueue} {
		if _, err := ch.QueueDeclare(
			q,     // name
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		); err != nil {
			return fmt.Errorf("declare queue %s: %w", q, err)
		}
		// Routing key is the queue name on the direct exchange.
		if err := ch.QueueBind(q, q, cfg.Exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", q, err)
		}
	}

	return ch.Qos(cfg.Prefetch, 0, false)
}

func (c *Client) ch() *amqp091.Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel
}

// PublishChat sends an inbound message. Used by gastosctl and tests against
// a real broker.
func (c *Client) PublishChat(ctx context.Context, msg ChatMessage) error {
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return c.publish(ctx, c.cfg.InboundQueue, body)
}

// PublishReply sends a reply to the reply queue.
func (c *Client) PublishReply(ctx context.Context, reply ChatReply) error {
	body, err := reply.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}
	return c.publish(ctx, c.cfg.ReplyQueue, body)
}

func (c *Client) publish(ctx context.Context, routingKey string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.isCircuitOpen() {
		return errors.New("circuit breaker is open")
	}
	ch := c.ch()
	if ch == nil {
		return errors.New("amqp client not connected")
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := ch.PublishWithContext(ctx,
		c.cfg.Exchange, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		if isConnectionError(err) {
			c.recordFailure()
		}
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()
	return nil
}

// Handler answers one chat message. A non-nil error with a usable reply
// means the reply should still be sent if the message will not be retried.
type Handler func(ctx context.Context, msg ChatMessage) (ChatReply, error)

// ConsumeChat processes inbound messages until ctx ends or the delivery
// channel closes.
func (c *Client) ConsumeChat(ctx context.Context, handle Handler) error {
	ch := c.ch()
	if ch == nil {
		return errors.New("amqp client not connected")
	}
	msgs, err := ch.Consume(
		c.cfg.InboundQueue, // queue
		"",                 // consumer
		false,              // auto-ack
		false,              // exclusive
		false,              // no-local
		false,              // no-wait
		nil,                // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.logger.InfoContext(ctx, "Started consuming chat messages", "queue", c.cfg.InboundQueue)
	return consumeLoop(ctx, c.logger, msgs, handle, c.PublishReply)
}

// consumeLoop acks a message once its reply is published. A failing handler
// gets one redelivery; after that its reply is sent and the message acked.
// Malformed messages are dropped.
func consumeLoop(ctx context.Context, logger *slog.Logger, msgs <-chan amqp091.Delivery, handle Handler, publish func(context.Context, ChatReply) error) error {
	for {
		select {
		case <-ctx.Done():
			logger.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("message channel closed")
			}

			msg, err := ChatMessageFromJSON(d.Body)
			if err != nil {
				logger.ErrorContext(ctx, "Failed to decode chat message", "error", err)
				_ = d.Nack(false, false)
				continue
			}

			reply, err := handle(ctx, *msg)
			if err != nil {
				logger.ErrorContext(ctx, "Failed to handle chat message",
					"message_id", msg.ID,
					"redelivered", d.Redelivered,
					"error", err)
				if !d.Redelivered {
					_ = d.Nack(false, true)
					continue
				}
			}

			if err := publish(ctx, reply); err != nil {
				logger.ErrorContext(ctx, "Failed to publish reply", "message_id", msg.ID, "error", err)
				_ = d.Nack(false, !d.Redelivered)
				continue
			}
			_ = d.Ack(false)
			logger.DebugContext(ctx, "Chat message processed", "message_id", msg.ID)
		}
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

func (c *Client) isCircuitOpen() bool {
	switch atomic.LoadInt32(&c.state) {
	case StateOpen:
		c.mu.Lock()
		last := c.lastFailure
		c.mu.Unlock()
		if time.Since(last) > openTimeout {
			atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
			return false
		}
		return true
	default:
		return false
	}
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()
	if atomic.AddInt64(&c.failureCount, 1) >= maxFailures {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "eof", "broken pipe", "closed network"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
