package models

import "github.com/shopspring/decimal"

// SendThankYouRequest ücretsiz teşekkür isteği
type SendThankYouRequest struct {
	TechnicianID string `json:"technician_id"`
}

// SendTokensRequest ücretli TOA gönderim isteği
type SendTokensRequest struct {
	TechnicianID string `json:"technician_id"`
	Tokens       int64  `json:"tokens"`
}

// ConvertPointsRequest puan dönüşüm isteği
type ConvertPointsRequest struct {
	Points int64 `json:"points"`
}

// ThankYouResult sendFreeThankYou sonucu
type ThankYouResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id"`
	Message       string `json:"message"`
	PointsAwarded int64  `json:"points_awarded"`
}

// TokenTransferResult sendTokens sonucu
type TokenTransferResult struct {
	Success             bool            `json:"success"`
	TransactionID       string          `json:"transaction_id"`
	Tokens              int64           `json:"tokens"`
	DollarValue         decimal.Decimal `json:"dollar_value"`
	TechnicianPayout    decimal.Decimal `json:"technician_payout"`
	PlatformFee         decimal.Decimal `json:"platform_fee"`
	SenderPointsAwarded int64           `json:"sender_points_awarded"`
	NewBalance          int64           `json:"new_balance"`
	Message             string          `json:"message"`
}

// PurchaseResult addTokensToBalance sonucu. Duplicate=true ise işlem tekrar uygulanmadı.
type PurchaseResult struct {
	Success       bool   `json:"success"`
	Duplicate     bool   `json:"duplicate"`
	TransactionID string `json:"transaction_id"`
	NewBalance    int64  `json:"new_balance"`
}

// ConversionResult convertPointsToTOA sonucu
type ConversionResult struct {
	Success          bool   `json:"success"`
	ConversionID     string `json:"conversion_id"`
	TokensGenerated  int64  `json:"tokens_generated"`
	NewPointsBalance int64  `json:"new_points_balance"`
	NewTokenBalance  int64  `json:"new_token_balance"`
}

// ThankYouStatus bugün bu teknisyene teşekkür edilebilir mi
type ThankYouStatus struct {
	TechnicianID   string `json:"technician_id"`
	Date           string `json:"date"`
	AlreadyThanked bool   `json:"already_thanked"`
}
