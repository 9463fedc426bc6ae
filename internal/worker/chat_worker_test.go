package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"gastos/internal/amqp"
	"gastos/internal/assistant"
	"gastos/internal/core"
	"gastos/internal/intent"
	"gastos/internal/ledger/memory"
	"gastos/internal/log"
)

var fixedNow = time.Date(2025, time.March, 17, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type failingAssistant struct{ err error }

func (f failingAssistant) Handle(context.Context, string) (assistant.Reply, error) {
	return assistant.Reply{Parsed: intent.Envelope{Kind: intent.KindExpense}}, f.err
}

func TestHandleChatMessageRecordsOnce(t *testing.T) {
	store := memory.New()
	svc := assistant.NewService(store, store, assistant.WithClock(clock), assistant.WithLogger(log.Discard()))
	w := NewChatWorker(svc, clock, log.Discard())

	msg := amqp.ChatMessage{ID: "m-1", From: "+573001234567", Text: "Gasté 15 mil en almuerzo"}
	reply, err := w.HandleChatMessage(context.Background(), msg)
	if err != nil {
		t.Fatalf("HandleChatMessage: %v", err)
	}
	if reply.MessageID != "m-1" || reply.To != msg.From || !reply.Timestamp.Equal(fixedNow) {
		t.Fatalf("unexpected reply header: %+v", reply)
	}
	if reply.Parsed.Kind != intent.KindExpense || !strings.HasPrefix(reply.Text, "✅") {
		t.Fatalf("unexpected reply: %+v", reply)
	}

	again, err := w.HandleChatMessage(context.Background(), msg)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if again.Text != reply.Text {
		t.Fatalf("duplicate reply differs: %q vs %q", again.Text, reply.Text)
	}

	entries, _ := store.List(context.Background(), core.DateOf(fixedNow), core.DateOf(fixedNow))
	if len(entries) != 1 {
		t.Fatalf("expense recorded %d times", len(entries))
	}
	if handled, failed := w.Stats(); handled != 1 || failed != 0 {
		t.Fatalf("Stats() = %d, %d", handled, failed)
	}
}

func TestHandleChatMessageFailure(t *testing.T) {
	w := NewChatWorker(failingAssistant{err: errors.New("disk full")}, clock, nil)

	reply, err := w.HandleChatMessage(context.Background(), amqp.ChatMessage{ID: "m-2", From: "ana", Text: "gasté 10"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if reply.Text != assistant.FailureText || reply.Error != "disk full" || reply.To != "ana" {
		t.Fatalf("unexpected failure reply: %+v", reply)
	}
	if reply.Parsed.Kind != intent.KindExpense {
		t.Fatalf("parsed envelope lost: %+v", reply.Parsed)
	}
	if w.replies.Size() != 0 {
		t.Fatalf("failed replies must not be cached")
	}

}

func TestHandleChatMessageUserErrorsAreAnswered(t *testing.T) {
	tests := []struct {
		name string
		err  error
		text string
	}{
		{"export not configured", assistant.ErrExportUnavailable, assistant.ExportUnavailableText},
		{"entry rejected", fmt.Errorf("record expense: %w", core.ErrDescriptionLong), assistant.InvalidEntryText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewChatWorker(failingAssistant{err: tt.err}, clock, nil)
			reply, err := w.HandleChatMessage(context.Background(), amqp.ChatMessage{ID: "m-3", Text: "exportar"})
			if err != nil {
				t.Fatalf("user errors must not be retried, got %v", err)
			}
			if reply.Text != tt.text || reply.Error == "" {
				t.Fatalf("unexpected reply: %+v", reply)
			}
			if _, failed := w.Stats(); failed != 1 {
				t.Fatalf("rejected message not counted as failed")
			}
		})
	}
}
