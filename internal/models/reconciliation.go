package models

import "time"

// ReconcileOptions reconciliation çalıştırma ayarları
type ReconcileOptions struct {
	DryRun    bool   `json:"dry_run"`
	FixPoints bool   `json:"fix_points"`
	PageSize  int    `json:"page_size"`
	Actor     string `json:"-"` // audit log'a yazılır (cron, cli, admin id)
}

// ReconciliationReport tek bir çalıştırmanın özeti
type ReconciliationReport struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DryRun     bool      `json:"dry_run"`

	Scanned           int `json:"scanned"`
	TransactionsDrift int `json:"transactions_drift"`
	TransactionsFixed int `json:"transactions_fixed"`
	TransactionsRaced int `json:"transactions_raced"` // koşullu UPDATE eşleşmedi, atlandı
	ProfilesScanned   int `json:"profiles_scanned"`
	ProfilesDrift     int `json:"profiles_drift"`
	ProfilesFixed     int `json:"profiles_fixed"`
	ProfilesRaced     int `json:"profiles_raced"`
	ProfilesSkipped   int `json:"profiles_skipped"` // kimlik birden fazla tabloda veya ledger tutarsız

	Corrections []Correction `json:"corrections,omitempty"`
}

// Correction tespit edilen tek bir sapma
type Correction struct {
	EntityType string `json:"entity_type"` // transaction | technician | customer | admin
	EntityID   string `json:"entity_id"`
	Field      string `json:"field"`
	Observed   string `json:"observed"`
	Expected   string `json:"expected"`
	Applied    bool   `json:"applied"`
}
