// internal/interfaces/service.go
package interfaces

import (
	"context"

	"github.com/onerilhan/thankatech-ledger/internal/models"
)

// AppreciationServiceInterface ücretsiz teşekkür ve ücretli token gönderimi
type AppreciationServiceInterface interface {
	// SendFreeThankYou günde bir kez, sadece alıcıya puan
	SendFreeThankYou(ctx context.Context, senderID, recipientID string) (*models.ThankYouResult, error)

	// SendTokens gönderen bakiyesinden teknisyene TOA gönderir
	SendTokens(ctx context.Context, senderID, recipientID string, tokenCount int64) (*models.TokenTransferResult, error)

	// ThankYouStatus bugün bu teknisyene teşekkür edildi mi
	ThankYouStatus(ctx context.Context, senderID, recipientID string) (*models.ThankYouStatus, error)
}

// PurchaseServiceInterface ödeme onayı sonrası token yükleme
type PurchaseServiceInterface interface {
	// AddTokensToBalance externalRef üzerinden idempotent
	AddTokensToBalance(ctx context.Context, userID string, tokenCount int64, purchaseAmount string, externalRef string) (*models.PurchaseResult, error)
}

// ConversionServiceInterface puan -> TOA dönüşümü
type ConversionServiceInterface interface {
	// ConvertPointsToTOA puanları token'a çevirir
	ConvertPointsToTOA(ctx context.Context, userID string, points int64) (*models.ConversionResult, error)

	// GetConversions kullanıcının dönüşüm geçmişi
	GetConversions(ctx context.Context, userID string, limit, offset int) ([]*models.ConversionRecord, error)
}

// BalanceServiceInterface bakiye ve ledger okuma işlemleri
type BalanceServiceInterface interface {
	// GetBalance bakiye + puan özeti
	GetBalance(ctx context.Context, userID string) (*models.BalanceSummary, error)

	// GetUserTransactions kullanıcının ledger geçmişi
	GetUserTransactions(ctx context.Context, userID string, limit, offset int) ([]*models.Transaction, error)

	// GetTransactionByID ID ile ledger kaydı
	GetTransactionByID(ctx context.Context, id string) (*models.Transaction, error)

	// GetTransactionForUser sadece kullanıcının taraf olduğu kayıt
	GetTransactionForUser(ctx context.Context, userID, id string) (*models.Transaction, error)
}

// ReconciliationServiceInterface ledger drift tespiti ve düzeltmesi
type ReconciliationServiceInterface interface {
	// Run ledger'ı tarar ve katalog formüllerinden sapan kayıtları düzeltir
	Run(ctx context.Context, opts models.ReconcileOptions) (*models.ReconciliationReport, error)
}
