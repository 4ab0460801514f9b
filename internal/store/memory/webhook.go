package memory

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/hasiltani/agritrace/internal/apperr"
	"github.com/hasiltani/agritrace/internal/models"
)

type webhookStore struct{ s *Store }

func (w *webhookStore) Create(ctx context.Context, hook *models.Webhook) error {
	defer w.s.lock()()
	hook.ID = uuid.New()
	hook.CreatedAt = time.Now()
	w.s.data.webhooks[hook.ID] = *hook
	w.s.data.touch(hook.ID)
	return nil
}

func (w *webhookStore) GetByID(ctx context.Context, companyID, webhookID uuid.UUID) (*models.Webhook, error) {
	defer w.s.lock()()
	hook, ok := w.s.data.webhooks[webhookID]
	if !ok || hook.CompanyID != companyID {
		return nil, apperr.NotFound("webhook not found")
	}
	return &hook, nil
}

func (w *webhookStore) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Webhook, error) {
	defer w.s.lock()()
	var hooks []models.Webhook
	for _, hook := range w.s.data.webhooks {
		if hook.CompanyID == companyID {
			hooks = append(hooks, hook)
		}
	}
	sortBySeq(w.s.data, hooks, func(x models.Webhook) uuid.UUID { return x.ID }, true)
	return hooks, nil
}

func (w *webhookStore) ListActiveByEvent(ctx context.Context, companyID uuid.UUID, event string) ([]models.Webhook, error) {
	defer w.s.lock()()
	var hooks []models.Webhook
	for _, hook := range w.s.data.webhooks {
		if hook.CompanyID == companyID && hook.IsActive && slices.Contains(hook.Events, event) {
			hooks = append(hooks, hook)
		}
	}
	sortBySeq(w.s.data, hooks, func(x models.Webhook) uuid.UUID { return x.ID }, false)
	return hooks, nil
}

func (w *webhookStore) Delete(ctx context.Context, companyID, webhookID uuid.UUID) error {
	defer w.s.lock()()
	hook, ok := w.s.data.webhooks[webhookID]
	if ok && hook.CompanyID == companyID {
		delete(w.s.data.webhooks, webhookID)
	}
	return nil
}

func (w *webhookStore) DeleteByCompany(ctx context.Context, companyID uuid.UUID) error {
	defer w.s.lock()()
	for id, hook := range w.s.data.webhooks {
		if hook.CompanyID == companyID {
			delete(w.s.data.webhooks, id)
		}
	}
	return nil
}

type auditStore struct{ s *Store }

func (a *auditStore) Insert(ctx context.Context, l *models.AuditLog) error {
	defer a.s.lock()()
	l.ID = uuid.New()
	l.CreatedAt = time.Now()
	a.s.data.audits = append(a.s.data.audits, *l)
	return nil
}

func (a *auditStore) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]models.AuditLog, error) {
	defer a.s.lock()()
	var logs []models.AuditLog
	for i := len(a.s.data.audits) - 1; i >= 0; i-- {
		if a.s.data.audits[i].CompanyID == companyID {
			logs = append(logs, a.s.data.audits[i])
		}
	}
	if offset > 0 {
		if offset >= len(logs) {
			return nil, nil
		}
		logs = logs[offset:]
	}
	if limit > 0 && limit < len(logs) {
		logs = logs[:limit]
	}
	return logs, nil
}
