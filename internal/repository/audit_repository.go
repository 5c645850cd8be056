package repository

import (
	"context"
	"fmt"

	"github.com/onerilhan/thankatech-ledger/internal/db"
	"github.com/onerilhan/thankatech-ledger/internal/models"
)

// AuditRepository audit log database işlemleri
type AuditRepository struct {
	q db.Querier
}

// NewAuditRepository yeni repository oluşturur
func NewAuditRepository(q db.Querier) *AuditRepository {
	return &AuditRepository{q: q}
}

// Create yeni audit log oluşturur
func (r *AuditRepository) Create(ctx context.Context, log *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (entity_type, entity_id, action, actor, old_data, new_data, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.q.QueryRowContext(ctx, query,
		log.EntityType,
		log.EntityID,
		log.Action,
		log.Actor,
		jsonArg(log.OldData),
		jsonArg(log.NewData),
		log.Details,
	).Scan(&log.ID, &log.CreatedAt)
	if err != nil {
		return fmt.Errorf("audit log oluşturulamadı: %w", err)
	}
	return nil
}

// GetByEntity entity'nin audit loglarını yeniden eskiye getirir
func (r *AuditRepository) GetByEntity(ctx context.Context, entityType, entityID string, limit, offset int) ([]*models.AuditLog, error) {
	query := `
		SELECT id, entity_type, entity_id, action, actor, old_data, new_data, details, created_at
		FROM audit_logs
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.q.QueryContext(ctx, query, entityType, entityID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("audit log listesi alınamadı: %w", err)
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		var (
			l                models.AuditLog
			oldData, newData []byte
		)
		if err := rows.Scan(&l.ID, &l.EntityType, &l.EntityID, &l.Action, &l.Actor, &oldData, &newData, &l.Details, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("audit log scan hatası: %w", err)
		}
		l.OldData = oldData
		l.NewData = newData
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}

// jsonArg jsonb kolonu için parametre; boşsa NULL
func jsonArg(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
