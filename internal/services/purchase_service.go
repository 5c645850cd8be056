package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/onerilhan/thankatech-ledger/internal/interfaces"
	"github.com/onerilhan/thankatech-ledger/internal/metrics"
	"github.com/onerilhan/thankatech-ledger/internal/models"
	"github.com/onerilhan/thankatech-ledger/internal/repository"
)

// PurchaseService onaylanmış ödemeleri bakiyeye yansıtır
type PurchaseService struct {
	store interfaces.StoreInterface
	now   Clock
}

// NewPurchaseService yeni service oluşturur
func NewPurchaseService(store interfaces.StoreInterface, now Clock) *PurchaseService {
	if now == nil {
		now = time.Now
	}
	return &PurchaseService{store: store, now: now}
}

// AddTokensToBalance externalRef üzerinden idempotent token yükleme.
// Aynı referans ikinci kez gelirse hiçbir şey değişmez ve Duplicate=true döner.
func (s *PurchaseService) AddTokensToBalance(ctx context.Context, userID string, tokenCount int64, purchaseAmount string, externalRef string) (result *models.PurchaseResult, err error) {
	start := time.Now()
	defer func() { metrics.RecordOperation("add_tokens", outcome(err), time.Since(start)) }()

	if strings.TrimSpace(userID) == "" {
		return nil, invalidPurchase("User id is required")
	}
	if tokenCount <= 0 {
		return nil, invalidPurchase("Token count must be positive")
	}
	if strings.TrimSpace(externalRef) == "" {
		return nil, invalidPurchase("Payment reference is required")
	}

	amount := decimal.NullDecimal{}
	if purchaseAmount != "" {
		parsed, perr := decimal.NewFromString(purchaseAmount)
		if perr != nil {
			return nil, invalidPurchase(fmt.Sprintf("Invalid purchase amount: %s", purchaseAmount))
		}
		amount = decimal.NewNullDecimal(parsed)
	}

	now := s.now()
	res := &models.PurchaseResult{}

	err = s.store.RunInTx(ctx, func(repos *interfaces.Repositories) error {
		*res = models.PurchaseResult{}

		// Ödemedeki user_id profil id de olabilir; bakiye hesabın ledger anahtarına yazılır
		key, _, err := ledgerKeyOf(ctx, repos.Profiles, userID)
		if err != nil {
			return err
		}

		// 1. Aynı ödeme daha önce işlendi mi
		existing, err := repos.Transactions.GetByExternalReference(ctx, externalRef)
		switch {
		case err == nil:
			balance, err := repos.Balances.GetByUserID(ctx, key)
			if err != nil {
				return err
			}
			res.Duplicate = true
			res.TransactionID = existing.ID
			res.NewBalance = balance.Tokens
			return nil
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}

		// 2. Bakiyeyi artır (tokens ve totalPurchased birlikte)
		balance, err := repos.Balances.Credit(ctx, key, tokenCount)
		if err != nil {
			return err
		}

		// 3. Ledger kaydı; eşzamanlı kopya unique index'e takılır ve unit tekrar denenir
		tx := &models.Transaction{
			FromUserID:          key,
			FromName:            "Token purchase",
			Tokens:              tokenCount,
			Message:             fmt.Sprintf("Purchased %d TOA tokens", tokenCount),
			Type:                models.TypeTokenPurchase,
			Timestamp:           now,
			DollarValue:         amount,
			PointsAwarded:       models.Int64Ptr(0),
			SenderPointsAwarded: models.Int64Ptr(0),
			ExternalReference:   models.StringPtr(externalRef),
		}
		if err := repos.Transactions.Create(ctx, tx); err != nil {
			return err
		}

		res.TransactionID = tx.ID
		res.NewBalance = balance.Tokens
		return nil
	})
	if err != nil {
		return nil, translate("add_tokens", err)
	}

	res.Success = true
	if res.Duplicate {
		log.Info().Str("external_ref", externalRef).Str("user_id", userID).Msg("🔁 Ödeme zaten işlenmiş, atlandı")
	} else {
		log.Info().
			Str("transaction_id", res.TransactionID).
			Str("user_id", userID).
			Int64("tokens", tokenCount).
			Msg("🪙 Token satın alımı bakiyeye eklendi")
	}
	return res, nil
}
