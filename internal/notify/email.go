package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/noah-isme/backend-loja/internal/common"
	"github.com/noah-isme/backend-loja/internal/events"
)

// EmailNotifier sends transactional emails for selected topics.
type EmailNotifier struct {
	Mail         common.EmailSender
	Enabled      bool
	From         string
	TopicToggles map[string]bool
}

// Notify implements the events.Notifier interface.
func (n EmailNotifier) Notify(_ context.Context, event events.Event) error {
	if !n.Enabled || n.Mail == nil {
		return nil
	}
	if n.TopicToggles != nil {
		if enabled, ok := n.TopicToggles[event.Topic]; ok && !enabled {
			return nil
		}
	}
	payload := map[string]any{}
	if len(event.Payload) > 0 {
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("email notify: decode payload: %w", err)
		}
	}
	to := extractRecipient(payload)
	if to == "" {
		return nil
	}
	subject := subjectFor(event.Topic)
	body := bodyFor(event.Topic, payload, event.OccurredAt)
	return n.Mail.Send(to, subject, body)
}

// HandleOrderEventTask processes a queued order event on the worker side.
func (n EmailNotifier) HandleOrderEventTask(ctx context.Context, task *asynq.Task) error {
	var event events.Event
	if err := json.Unmarshal(task.Payload(), &event); err != nil {
		return fmt.Errorf("email notify: decode task: %w", err)
	}
	return n.Notify(ctx, event)
}

func extractRecipient(payload map[string]any) string {
	keys := []string{"email", "recipient", "buyerEmail", "customerEmail"}
	for _, key := range keys {
		if val, ok := payload[key]; ok {
			if s, ok := val.(string); ok {
				s = strings.TrimSpace(s)
				if s != "" {
					return s
				}
			}
		}
	}
	return ""
}

func subjectFor(topic string) string {
	switch topic {
	case events.TopicOrderCreated:
		return "Pedido recebido"
	case events.TopicOrderPaid:
		return "Pagamento confirmado"
	case events.TopicOrderShipped:
		return "Pedido enviado"
	case events.TopicOrderDelivered:
		return "Pedido entregue"
	case events.TopicOrderCancelled:
		return "Pedido cancelado"
	default:
		return fmt.Sprintf("Notificação %s", topic)
	}
}

func bodyFor(topic string, payload map[string]any, occurred time.Time) string {
	summary := fmt.Sprintf("Evento %s em %s.", topic, occurred.Format(time.RFC3339))
	if orderID, ok := payload["orderId"].(string); ok && orderID != "" {
		summary += fmt.Sprintf("\nNúmero do pedido: %s", orderID)
	}
	if tracking, ok := payload["trackingCode"].(string); ok && tracking != "" {
		summary += fmt.Sprintf("\nCódigo de rastreio: %s", tracking)
	}
	if note, ok := payload["message"].(string); ok && note != "" {
		summary += "\n" + note
	}
	return summary
}
