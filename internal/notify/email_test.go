package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-loja/internal/common"
	"github.com/noah-isme/backend-loja/internal/events"
)

func orderEvent(t *testing.T, topic string, payload map[string]any) events.Event {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return events.Event{
		ID:          "ev-1",
		Topic:       topic,
		AggregateID: "order-1",
		Payload:     data,
		OccurredAt:  time.Now().UTC(),
	}
}

func TestNotifySendsPortugueseEmail(t *testing.T) {
	mail := &common.InMemoryEmail{}
	n := EmailNotifier{Mail: mail, Enabled: true}

	ev := orderEvent(t, events.TopicOrderShipped, map[string]any{
		"email":        "maria@example.com",
		"orderId":      "order-1",
		"trackingCode": "BR123456789",
	})
	require.NoError(t, n.Notify(context.Background(), ev))

	require.Len(t, mail.Outbox, 1)
	sent := mail.Outbox[0]
	require.Equal(t, "maria@example.com", sent.To)
	require.Equal(t, "Pedido enviado", sent.Subject)
	require.Contains(t, sent.HTML, "order-1")
	require.Contains(t, sent.HTML, "BR123456789")
}

func TestNotifySkipsWhenDisabledOrToggledOff(t *testing.T) {
	mail := &common.InMemoryEmail{}
	ev := orderEvent(t, events.TopicOrderPaid, map[string]any{"email": "maria@example.com"})

	n := EmailNotifier{Mail: mail, Enabled: false}
	require.NoError(t, n.Notify(context.Background(), ev))

	n = EmailNotifier{
		Mail:         mail,
		Enabled:      true,
		TopicToggles: map[string]bool{events.TopicOrderPaid: false},
	}
	require.NoError(t, n.Notify(context.Background(), ev))

	require.Empty(t, mail.Outbox)
}

func TestNotifySkipsWithoutRecipient(t *testing.T) {
	mail := &common.InMemoryEmail{}
	n := EmailNotifier{Mail: mail, Enabled: true}

	ev := orderEvent(t, events.TopicOrderCreated, map[string]any{"orderId": "order-1"})
	require.NoError(t, n.Notify(context.Background(), ev))
	require.Empty(t, mail.Outbox)
}

func TestHandleOrderEventTask(t *testing.T) {
	mail := &common.InMemoryEmail{}
	n := EmailNotifier{Mail: mail, Enabled: true}

	ev := orderEvent(t, events.TopicOrderDelivered, map[string]any{"email": "maria@example.com"})
	task, err := NewOrderEventTask(ev)
	require.NoError(t, err)
	require.Equal(t, TaskOrderEvent, task.Type())

	require.NoError(t, n.HandleOrderEventTask(context.Background(), task))
	require.Len(t, mail.Outbox, 1)
	require.Equal(t, "Pedido entregue", mail.Outbox[0].Subject)

	err = n.HandleOrderEventTask(context.Background(), asynq.NewTask(TaskOrderEvent, []byte("not json")))
	require.Error(t, err)
}

func TestSubjectFallback(t *testing.T) {
	require.Equal(t, "Notificação estoque.baixo", subjectFor("estoque.baixo"))
}
