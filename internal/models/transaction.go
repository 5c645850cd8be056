package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType ledger kayıt tipi
type TransactionType string

const (
	TypeThankYou         TransactionType = "thank_you"
	TypeToaToken         TransactionType = "toa_token"
	TypeTokenPurchase    TransactionType = "token_purchase"
	TypePointsConversion TransactionType = "points_conversion"
)

// Valid bilinen bir tip mi
func (t TransactionType) Valid() bool {
	switch t {
	case TypeThankYou, TypeToaToken, TypeTokenPurchase, TypePointsConversion:
		return true
	}
	return false
}

// Transaction append-only ledger kaydı.
// Puan ve para alanları yazıldıktan sonra sadece reconciliation ile düzeltilir.
type Transaction struct {
	ID                  string              `json:"id" db:"id"`
	FromUserID          string              `json:"from_user_id" db:"from_user_id"`
	ToTechnicianID      string              `json:"to_technician_id,omitempty" db:"to_technician_id"`
	FromName            string              `json:"from_name" db:"from_name"`
	ToName              string              `json:"to_name,omitempty" db:"to_name"`
	Tokens              int64               `json:"tokens" db:"tokens"`
	Message             string              `json:"message" db:"message"`
	Type                TransactionType     `json:"type" db:"type"`
	Timestamp           time.Time           `json:"timestamp" db:"created_at"`
	DollarValue         decimal.NullDecimal `json:"dollar_value" db:"dollar_value"`
	TechnicianPayout    decimal.NullDecimal `json:"technician_payout" db:"technician_payout"`
	PlatformFee         decimal.NullDecimal `json:"platform_fee" db:"platform_fee"`
	PointsAwarded       *int64              `json:"points_awarded" db:"points_awarded"`
	SenderPointsAwarded *int64              `json:"sender_points_awarded" db:"sender_points_awarded"`
	ExternalReference   *string             `json:"external_reference,omitempty" db:"external_reference"`
	ReconciledAt        *time.Time          `json:"reconciled_at,omitempty" db:"reconciled_at"`
}

// Points nil-safe pointsAwarded okuması
func (t *Transaction) Points() int64 {
	if t.PointsAwarded == nil {
		return 0
	}
	return *t.PointsAwarded
}

// SenderPoints nil-safe senderPointsAwarded okuması
func (t *Transaction) SenderPoints() int64 {
	if t.SenderPointsAwarded == nil {
		return 0
	}
	return *t.SenderPointsAwarded
}

// TransactionPatch reconciliation'ın tek bir kayıtta yaptığı düzeltme.
// Expected* alanları gözlemlenen (eski) değerlerdir; UPDATE sadece bunlar hâlâ geçerliyse uygulanır.
type TransactionPatch struct {
	TransactionID string

	ObservedPoints           *int64
	ObservedSenderPoints     *int64
	ObservedDollarValue      decimal.NullDecimal
	ObservedTechnicianPayout decimal.NullDecimal
	ObservedPlatformFee      decimal.NullDecimal

	PointsAwarded       int64
	SenderPointsAwarded int64
	DollarValue         decimal.NullDecimal
	TechnicianPayout    decimal.NullDecimal
	PlatformFee         decimal.NullDecimal
}

// Int64Ptr küçük yardımcı
func Int64Ptr(v int64) *int64 {
	return &v
}

// StringPtr küçük yardımcı
func StringPtr(v string) *string {
	return &v
}
