package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/hasiltani/agritrace/internal/apperr"
	"github.com/hasiltani/agritrace/internal/queue"
	"github.com/hasiltani/agritrace/internal/store"
	"github.com/hasiltani/agritrace/internal/webhook"
)

// WebhookWorker delivers one enqueued webhook event. Retries are asynq's
// concern; a failed delivery returns an error so the task is retried.
type WebhookWorker struct {
	store      store.Store
	dispatcher *webhook.Dispatcher
}

func NewWebhookWorker(st store.Store, dispatcher *webhook.Dispatcher) *WebhookWorker {
	return &WebhookWorker{store: st, dispatcher: dispatcher}
}

func (w *WebhookWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.WebhookDeliverPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	webhookID, err := uuid.Parse(payload.WebhookID)
	if err != nil {
		return fmt.Errorf("parse webhook ID: %w", err)
	}
	companyID, err := uuid.Parse(payload.CompanyID)
	if err != nil {
		return fmt.Errorf("parse company ID: %w", err)
	}

	wh, err := w.store.Webhooks().GetByID(ctx, companyID, webhookID)
	if err != nil {
		if apperr.IsNotFound(err) {
			// Registration was removed after enqueue; nothing to deliver.
			slog.Info("webhook gone, dropping delivery", "webhook_id", webhookID, "event", payload.Event)
			return nil
		}
		return fmt.Errorf("load webhook: %w", err)
	}
	if !wh.IsActive {
		slog.Info("webhook inactive, dropping delivery", "webhook_id", webhookID, "event", payload.Event)
		return nil
	}

	if err := w.dispatcher.Deliver(ctx, wh, payload.Event, payload.Payload); err != nil {
		return fmt.Errorf("deliver webhook %s: %w", webhookID, err)
	}

	slog.Info("webhook delivered", "webhook_id", webhookID, "event", payload.Event)
	return nil
}
