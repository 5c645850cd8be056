// internal/interfaces/repository.go
package interfaces

import (
	"context"

	"github.com/onerilhan/thankatech-ledger/internal/models"
)

// BalanceRepositoryInterface TOA bakiye işlemleri için interface
type BalanceRepositoryInterface interface {
	// GetByUserID bakiyeyi getirir, yoksa sıfır bakiye oluşturur
	GetByUserID(ctx context.Context, userID string) (*models.Balance, error)

	// GetForUpdate bakiyeyi transaction sonuna kadar kilitler (yoksa oluşturur)
	GetForUpdate(ctx context.Context, userID string) (*models.Balance, error)

	// Credit tokens ve total_purchased alanlarını birlikte artırır
	Credit(ctx context.Context, userID string, tokens int64) (*models.Balance, error)

	// Debit tokens'ı azaltır ve total_spent'i artırır; bakiye yetersizse ErrInsufficientTokens
	Debit(ctx context.Context, userID string, tokens int64) (*models.Balance, error)
}

// TransactionRepositoryInterface append-only ledger işlemleri için interface
type TransactionRepositoryInterface interface {
	// Create yeni ledger kaydı ekler (ID ve Timestamp doldurulur)
	Create(ctx context.Context, tx *models.Transaction) error

	// GetByID ID ile kayıt getirir
	GetByID(ctx context.Context, id string) (*models.Transaction, error)

	// GetByExternalReference ödeme referansı ile satın alma kaydını getirir
	GetByExternalReference(ctx context.Context, ref string) (*models.Transaction, error)

	// GetByUserID kullanıcının gönderdiği veya aldığı kayıtları getirir (yeniden eskiye)
	GetByUserID(ctx context.Context, userIDs []string, limit, offset int) ([]*models.Transaction, error)

	// List tüm ledger'ı eskiden yeniye sayfalı tarar (reconciliation)
	List(ctx context.Context, limit, offset int) ([]*models.Transaction, error)

	// ApplyPatch gözlemlenen değerler hâlâ geçerliyse düzeltmeyi uygular
	ApplyPatch(ctx context.Context, patch *models.TransactionPatch) (bool, error)

	// SumPointsFor kimliklerin ledger'dan kazandığı toplam puan (alınan + gönderen payı)
	SumPointsFor(ctx context.Context, identities []string) (int64, error)
}

// DailyLimitRepositoryInterface günlük ücretsiz teşekkür limiti için interface
type DailyLimitRepositoryInterface interface {
	// Get gün kaydını getirir, yoksa ErrNotFound
	Get(ctx context.Context, userID, date string) (*models.DailyLimit, error)

	// GetForUpdate gün kaydını kilitler, yoksa boş kayıt oluşturur
	GetForUpdate(ctx context.Context, userID, date string, maxDailyThanks int64) (*models.DailyLimit, error)

	// AddTechnician teknisyeni bugünkü sete ekler
	AddTechnician(ctx context.Context, userID, date, technicianID string) error
}

// ProfileRepositoryInterface hesap profilleri (gömülü puan alanı) için interface
type ProfileRepositoryInterface interface {
	// FindByIdentity birincil id veya auth uid ile profil bulur
	FindByIdentity(ctx context.Context, kind models.AccountKind, identity string) (*models.Profile, error)

	// FindByIdentityForUpdate aynı arama, satırı kilitleyerek
	FindByIdentityForUpdate(ctx context.Context, kind models.AccountKind, identity string) (*models.Profile, error)

	// ApplyDelta sayaç ve puan artışlarını tek UPDATE ile uygular
	ApplyDelta(ctx context.Context, kind models.AccountKind, id string, delta models.ProfileDelta) (*models.Profile, error)

	// DeductPoints puan düşer; yetersizse ErrInsufficientPoints
	DeductPoints(ctx context.Context, kind models.AccountKind, id string, points int64) (*models.Profile, error)

	// SetPoints puanı sadece observed değer hâlâ geçerliyse değiştirir
	SetPoints(ctx context.Context, kind models.AccountKind, id string, observed, points int64) (bool, error)

	// List profilleri sayfalı listeler
	List(ctx context.Context, kind models.AccountKind, limit, offset int) ([]*models.Profile, error)
}

// ConversionRepositoryInterface dönüşüm kayıtları için interface
type ConversionRepositoryInterface interface {
	// Create yeni dönüşüm kaydı ekler
	Create(ctx context.Context, rec *models.ConversionRecord) error

	// GetByUserID kullanıcının dönüşüm geçmişi
	GetByUserID(ctx context.Context, userIDs []string, limit, offset int) ([]*models.ConversionRecord, error)

	// SumPointsConverted kimliklerin toplam harcadığı puan
	SumPointsConverted(ctx context.Context, identities []string) (int64, error)
}

// AuditRepositoryInterface audit log database işlemleri için interface
type AuditRepositoryInterface interface {
	// Create yeni audit log oluşturur
	Create(ctx context.Context, log *models.AuditLog) error

	// GetByEntity belirli entity'nin audit loglarını getirir
	GetByEntity(ctx context.Context, entityType, entityID string, limit, offset int) ([]*models.AuditLog, error)
}

// Repositories bir unit içinde kullanılan repository seti
type Repositories struct {
	Balances     BalanceRepositoryInterface
	Transactions TransactionRepositoryInterface
	DailyLimits  DailyLimitRepositoryInterface
	Profiles     ProfileRepositoryInterface
	Conversions  ConversionRepositoryInterface
	Audit        AuditRepositoryInterface
}

// StoreInterface atomik unit sağlayıcı (PostgreSQL veya bellek içi)
type StoreInterface interface {
	// RunInTx fn'i tek all-or-nothing unit olarak çalıştırır; çakışmada tekrar dener
	RunInTx(ctx context.Context, fn func(repos *Repositories) error) error

	// Repos transaction dışı okumalar için repository seti
	Repos() *Repositories
}
