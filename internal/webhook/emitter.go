package webhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hasiltani/agritrace/internal/queue"
	"github.com/hasiltani/agritrace/internal/store"
)

// Emitter fans an event out to every active matching registration by
// enqueueing one delivery task per webhook. Delivery is best-effort;
// enqueue failures are logged and never surface to the mutation.
type Emitter struct {
	store store.Store
	queue *queue.Client
}

func NewEmitter(st store.Store, qc *queue.Client) *Emitter {
	return &Emitter{store: st, queue: qc}
}

type envelope struct {
	Event     string      `json:"event"`
	CompanyID uuid.UUID   `json:"company_id"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func (e *Emitter) Notify(ctx context.Context, companyID uuid.UUID, event string, payload interface{}) {
	webhooks, err := e.store.Webhooks().ListActiveByEvent(ctx, companyID, event)
	if err != nil {
		slog.Warn("webhook lookup failed", "company_id", companyID, "event", event, "error", err)
		return
	}
	if len(webhooks) == 0 {
		return
	}

	body, err := json.Marshal(envelope{
		Event:     event,
		CompanyID: companyID,
		Timestamp: time.Now().UTC(),
		Data:      payload,
	})
	if err != nil {
		slog.Warn("webhook payload marshal failed", "event", event, "error", err)
		return
	}

	for _, wh := range webhooks {
		err := e.queue.EnqueueWebhookDeliver(queue.WebhookDeliverPayload{
			WebhookID: wh.ID.String(),
			CompanyID: companyID.String(),
			Event:     event,
			Payload:   body,
		})
		if err != nil {
			slog.Warn("webhook enqueue failed", "webhook_id", wh.ID, "event", event, "error", err)
		}
	}
}
