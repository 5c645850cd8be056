package models

import (
	"encoding/json"
	"time"
)

// Audit aksiyonları
const (
	AuditReconcileTransaction = "reconcile_transaction"
	AuditReconcilePoints      = "reconcile_points"
)

// AuditLog bilinçli düzeltmelerin kaydı (organik trafikten ayırt edilebilir)
type AuditLog struct {
	ID         int64           `json:"id" db:"id"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   string          `json:"entity_id" db:"entity_id"`
	Action     string          `json:"action" db:"action"`
	Actor      string          `json:"actor" db:"actor"`
	OldData    json.RawMessage `json:"old_data" db:"old_data"`
	NewData    json.RawMessage `json:"new_data" db:"new_data"`
	Details    string          `json:"details" db:"details"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}
