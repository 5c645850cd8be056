package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/onerilhan/thankatech-ledger/internal/catalog"
	"github.com/onerilhan/thankatech-ledger/internal/interfaces"
	"github.com/onerilhan/thankatech-ledger/internal/metrics"
	"github.com/onerilhan/thankatech-ledger/internal/models"
	"github.com/onerilhan/thankatech-ledger/internal/repository"
)

// ConversionService ThankATech puanlarını TOA token'a çevirir
type ConversionService struct {
	store   interfaces.StoreInterface
	catalog *catalog.Catalog
	now     Clock
}

// NewConversionService yeni service oluşturur
func NewConversionService(store interfaces.StoreInterface, cat *catalog.Catalog, now Clock) *ConversionService {
	if now == nil {
		now = time.Now
	}
	return &ConversionService{store: store, catalog: cat, now: now}
}

// ConvertPointsToTOA puanları düşer, karşılığı token'ı bakiyeye ekler
func (s *ConversionService) ConvertPointsToTOA(ctx context.Context, userID string, points int64) (result *models.ConversionResult, err error) {
	start := time.Now()
	defer func() { metrics.RecordOperation("convert_points", outcome(err), time.Since(start)) }()

	if points < s.catalog.MinConversionPoints {
		return nil, minConversion(s.catalog.MinConversionPoints)
	}
	if points%s.catalog.ConversionRate != 0 {
		return nil, conversionMultiple(s.catalog.ConversionRate)
	}

	tokens := s.catalog.TokensFor(points)
	now := s.now()
	res := &models.ConversionResult{}

	err = s.store.RunInTx(ctx, func(repos *interfaces.Repositories) error {
		// Önce hesabı çöz; bakiye hesabın ledger anahtarında tutulur
		key, resolved, err := ledgerKeyOf(ctx, repos.Profiles, userID)
		if err != nil {
			return err
		}
		if resolved == nil {
			return ErrAccountNotFound
		}

		// Kilit sırası: bakiye -> profil
		if _, err := repos.Balances.GetForUpdate(ctx, key); err != nil {
			return err
		}

		locked, err := repos.Profiles.FindByIdentityForUpdate(ctx, resolved.Kind, resolved.Profile.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		if err != nil {
			return err
		}
		account := &models.ResolvedAccount{Kind: resolved.Kind, Profile: locked}
		if points > account.Profile.Points {
			return ErrInsufficientPoints
		}

		profile, err := repos.Profiles.DeductPoints(ctx, account.Kind, account.Profile.ID, points)
		if errors.Is(err, repository.ErrInsufficientPoints) {
			return ErrInsufficientPoints
		}
		if err != nil {
			return err
		}

		balance, err := repos.Balances.Credit(ctx, key, tokens)
		if err != nil {
			return err
		}

		record := &models.ConversionRecord{
			UserID:          key,
			PointsConverted: points,
			TokensGenerated: tokens,
			ConversionDate:  now,
			ConversionRate:  s.catalog.ConversionRate,
		}
		if err := repos.Conversions.Create(ctx, record); err != nil {
			return err
		}

		tx := &models.Transaction{
			FromUserID:          key,
			FromName:            account.Profile.Name,
			Tokens:              tokens,
			Message:             fmt.Sprintf("Converted %d points to %d TOA", points, tokens),
			Type:                models.TypePointsConversion,
			Timestamp:           now,
			PointsAwarded:       models.Int64Ptr(0),
			SenderPointsAwarded: models.Int64Ptr(0),
		}
		if err := repos.Transactions.Create(ctx, tx); err != nil {
			return err
		}

		*res = models.ConversionResult{
			Success:          true,
			ConversionID:     record.ID,
			TokensGenerated:  tokens,
			NewPointsBalance: profile.Points,
			NewTokenBalance:  balance.Tokens,
		}
		return nil
	})
	if err != nil {
		return nil, translate("convert_points", err)
	}

	log.Info().
		Str("conversion_id", res.ConversionID).
		Str("user_id", userID).
		Int64("points", points).
		Int64("tokens", tokens).
		Msg("🔄 Puanlar TOA'ya dönüştürüldü")

	return res, nil
}

// GetConversions kullanıcının dönüşüm geçmişi
func (s *ConversionService) GetConversions(ctx context.Context, userID string, limit, offset int) ([]*models.ConversionRecord, error) {
	limit, offset = normalizePage(limit, offset)
	repos := s.store.Repos()

	identities, err := identitiesOf(ctx, repos, userID)
	if err != nil {
		return nil, translate("get_conversions", err)
	}

	records, err := repos.Conversions.GetByUserID(ctx, identities, limit, offset)
	if err != nil {
		return nil, translate("get_conversions", err)
	}
	return records, nil
}
