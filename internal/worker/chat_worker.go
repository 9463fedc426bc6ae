// Package worker answers chat messages arriving from the message broker.
package worker

import (
	"context"
	"sync/atomic"
	"time"

	"gastos/internal/amqp"
	"gastos/internal/assistant"
	"gastos/internal/cache"
	"gastos/internal/log"
)

// Assistant is the part of assistant.Service the worker needs.
type Assistant interface {
	Handle(ctx context.Context, text string) (assistant.Reply, error)
}

// ChatWorker turns inbound chat messages into replies. Replies are kept for
// a while by message ID so a redelivered message is answered again without
// recording its expense twice.
type ChatWorker struct {
	assistant Assistant
	now       func() time.Time
	logger    *log.Logger
	replies   *cache.LRUCache[amqp.ChatReply]

	handled atomic.Int64
	failed  atomic.Int64
}

func NewChatWorker(a Assistant, now func() time.Time, logger *log.Logger) *ChatWorker {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &ChatWorker{
		assistant: a,
		now:       now,
		logger:    logger.WithComponent(log.ComponentWorker),
		replies:   cache.NewLRUCache[amqp.ChatReply](1000, 10*time.Minute),
	}
}

// Replies exposes the reply cache so its owner can register it for cleanup.
func (w *ChatWorker) Replies() cache.Cleaner {
	return w.replies
}

// HandleChatMessage answers msg. On failure the returned reply carries the
// user-facing error text. Errors the user must fix are answered with a nil
// error; others are returned as well so the consumer retries.
func (w *ChatWorker) HandleChatMessage(ctx context.Context, msg amqp.ChatMessage) (amqp.ChatReply, error) {
	if msg.ID != "" {
		if cached, ok := w.replies.Get(msg.ID); ok {
			w.logger.InfoContext(ctx, "Replaying reply for duplicate message",
				log.FieldMessageID, msg.ID,
				log.FieldSender, msg.From)
			return cached, nil
		}
	}

	reply := amqp.ChatReply{
		MessageID: msg.ID,
		To:        msg.From,
	}

	res, err := w.assistant.Handle(ctx, msg.Text)
	reply.Parsed = res.Parsed
	reply.Timestamp = w.now()
	if err != nil {
		w.failed.Add(1)
		reply.Text = assistant.ErrorText(err)
		reply.Error = err.Error()
		if assistant.IsUserError(err) {
			// A retry would fail the same way; answer instead of requeueing.
			w.logger.WarnContext(ctx, "Chat message rejected",
				log.FieldMessageID, msg.ID,
				log.FieldSender, msg.From,
				log.FieldError, err)
			return reply, nil
		}
		return reply, err
	}

	reply.Text = res.Text
	w.handled.Add(1)
	if msg.ID != "" {
		w.replies.Set(msg.ID, reply)
	}
	w.logger.InfoContext(ctx, "Chat message answered",
		log.FieldMessageID, msg.ID,
		log.FieldSender, msg.From,
		log.FieldIntent, res.Parsed.Kind)
	return reply, nil
}

// Stats returns how many messages were answered and how many failed.
func (w *ChatWorker) Stats() (handled, failed int64) {
	return w.handled.Load(), w.failed.Load()
}
