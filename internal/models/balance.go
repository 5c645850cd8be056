package models

import "time"

// Balance kullanıcının harcanabilir TOA bakiyesi.
// Tokens, TotalPurchased ve TotalSpent her zaman tek bir UPDATE içinde birlikte değişir.
type Balance struct {
	UserID         string    `json:"user_id" db:"user_id"`
	Tokens         int64     `json:"tokens" db:"tokens"`
	TotalPurchased int64     `json:"total_purchased" db:"total_purchased"` // satın alma + dönüşüm
	TotalSpent     int64     `json:"total_spent" db:"total_spent"`         // başkalarına gönderilen
	LastUpdated    time.Time `json:"last_updated" db:"last_updated"`
}

// BalanceSummary bakiye ve puanların birlikte gösterimi
type BalanceSummary struct {
	Balance *Balance    `json:"balance"`
	Points  int64       `json:"points"`
	Kind    AccountKind `json:"account_kind,omitempty"`
}
