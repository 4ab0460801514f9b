package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/hasiltani/agritrace/internal/models"
)

type webhookStore struct{ db querier }

const webhookColumns = "id, company_id, url, events, secret, is_active, created_at"

func scanWebhook(row interface{ Scan(...any) error }, w *models.Webhook) error {
	var events json.RawMessage
	if err := row.Scan(&w.ID, &w.CompanyID, &w.URL, &events, &w.Secret, &w.IsActive, &w.CreatedAt); err != nil {
		return err
	}
	return json.Unmarshal(events, &w.Events)
}

func (s *webhookStore) Create(ctx context.Context, w *models.Webhook) error {
	events, err := json.Marshal(w.Events)
	if err != nil {
		return fmt.Errorf("marshal webhook events: %w", err)
	}
	err = s.db.QueryRow(ctx,
		`INSERT INTO webhooks (company_id, url, events, secret, is_active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		w.CompanyID, w.URL, events, w.Secret, w.IsActive,
	).Scan(&w.ID, &w.CreatedAt)
	if err != nil {
		return fmt.Errorf("create webhook: %w", err)
	}
	return nil
}

func (s *webhookStore) GetByID(ctx context.Context, companyID, webhookID uuid.UUID) (*models.Webhook, error) {
	var w models.Webhook
	err := scanWebhook(s.db.QueryRow(ctx,
		"SELECT "+webhookColumns+" FROM webhooks WHERE id = $1 AND company_id = $2",
		webhookID, companyID,
	), &w)
	if err != nil {
		return nil, notFound(err, "get webhook", "webhook not found")
	}
	return &w, nil
}

func (s *webhookStore) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]models.Webhook, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+webhookColumns+" FROM webhooks WHERE company_id = $1 ORDER BY created_at ASC",
		companyID)
	if err != nil {
		return nil, fmt.Errorf("list webhooks: %w", err)
	}
	defer rows.Close()
	return collectWebhooks(rows)
}

func (s *webhookStore) ListActiveByEvent(ctx context.Context, companyID uuid.UUID, event string) ([]models.Webhook, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+webhookColumns+` FROM webhooks
		 WHERE company_id = $1 AND is_active AND events @> $2`,
		companyID, fmt.Sprintf("[%q]", event))
	if err != nil {
		return nil, fmt.Errorf("list active webhooks: %w", err)
	}
	defer rows.Close()
	return collectWebhooks(rows)
}

func collectWebhooks(rows pgx.Rows) ([]models.Webhook, error) {
	var ws []models.Webhook
	for rows.Next() {
		var w models.Webhook
		if err := scanWebhook(rows, &w); err != nil {
			return nil, fmt.Errorf("scan webhook: %w", err)
		}
		ws = append(ws, w)
	}
	return ws, rows.Err()
}

func (s *webhookStore) Delete(ctx context.Context, companyID, webhookID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		"DELETE FROM webhooks WHERE id = $1 AND company_id = $2", webhookID, companyID)
	if err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	return nil
}

func (s *webhookStore) DeleteByCompany(ctx context.Context, companyID uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM webhooks WHERE company_id = $1", companyID)
	if err != nil {
		return fmt.Errorf("delete company webhooks: %w", err)
	}
	return nil
}

type auditStore struct{ db querier }

func (s *auditStore) Insert(ctx context.Context, l *models.AuditLog) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO audit_logs (company_id, user_id, action, resource_type, resource_id, details)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		l.CompanyID, l.UserID, l.Action, l.ResourceType, l.ResourceID, l.Details)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func (s *auditStore) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]models.AuditLog, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, company_id, user_id, action, resource_type, resource_id, details, created_at
		 FROM audit_logs WHERE company_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query audit logs: %w", err)
	}
	defer rows.Close()

	var logs []models.AuditLog
	for rows.Next() {
		var l models.AuditLog
		if err := rows.Scan(&l.ID, &l.CompanyID, &l.UserID, &l.Action, &l.ResourceType,
			&l.ResourceID, &l.Details, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
