package services

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/onerilhan/thankatech-ledger/internal/cache"
	"github.com/onerilhan/thankatech-ledger/internal/catalog"
	"github.com/onerilhan/thankatech-ledger/internal/interfaces"
	"github.com/onerilhan/thankatech-ledger/internal/metrics"
	"github.com/onerilhan/thankatech-ledger/internal/models"
	"github.com/onerilhan/thankatech-ledger/internal/notify"
	"github.com/onerilhan/thankatech-ledger/internal/repository"
)

// AppreciationService ücretsiz teşekkür ve ücretli TOA gönderimi
type AppreciationService struct {
	store    interfaces.StoreInterface
	catalog  *catalog.Catalog
	thanked  cache.ThankedCache
	notifier Notifier
	now      Clock
	loc      *time.Location
}

// NewAppreciationService yeni service oluşturur. thanked/notifier nil ise no-op kullanılır.
func NewAppreciationService(store interfaces.StoreInterface, cat *catalog.Catalog, thanked cache.ThankedCache, notifier Notifier, now Clock, loc *time.Location) *AppreciationService {
	if thanked == nil {
		thanked = cache.NoopCache{}
	}
	if notifier == nil {
		notifier = discardNotifier{}
	}
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AppreciationService{
		store:    store,
		catalog:  cat,
		thanked:  thanked,
		notifier: notifier,
		now:      now,
		loc:      loc,
	}
}

// SendFreeThankYou günde bir kez (gönderen, teknisyen) başına; sadece alıcı puan kazanır
func (s *AppreciationService) SendFreeThankYou(ctx context.Context, senderID, recipientID string) (result *models.ThankYouResult, err error) {
	start := time.Now()
	defer func() { metrics.RecordOperation("send_free_thank_you", outcome(err), time.Since(start)) }()

	if senderID == recipientID {
		return nil, ErrSelfThank
	}

	recipient, sender, err := s.resolveParties(ctx, senderID, recipientID, ErrSelfThank)
	if err != nil {
		return nil, translate("send_free_thank_you", err)
	}

	now := s.now()
	day := dayKey(now, s.loc)
	// profil id ve auth uid aynı kişi: limit tek anahtar üzerinden tutulur
	senderKey := sender.Profile.LedgerKey()

	// Hızlı yol: cache hatası store'a düşer
	thanked, cacheErr := s.thanked.WasThanked(ctx, senderKey, day, recipient.Profile.ID)
	if cacheErr != nil {
		log.Warn().Err(cacheErr).Msg("⚠️ Teşekkür cache'i okunamadı, store kontrol edilecek")
	} else if thanked {
		return nil, ErrDailyLimitReached
	}

	points := s.catalog.FreeThankYouPoints
	message := s.catalog.ThankYouMessage()
	var tx *models.Transaction

	err = s.store.RunInTx(ctx, func(repos *interfaces.Repositories) error {
		// 1. Gönderenin bugünkü kaydını kilitle (eşzamanlı teşekkürler burada sıraya girer)
		limit, err := repos.DailyLimits.GetForUpdate(ctx, senderKey, day, s.catalog.MaxDailyThanks)
		if err != nil {
			return err
		}
		if limit.HasThanked(recipient.Profile.ID) {
			return ErrDailyLimitReached
		}
		if s.catalog.MaxDailyThanks > 0 && int64(len(limit.ThankedTechnicians)) >= s.catalog.MaxDailyThanks {
			return ErrDailyThanksExhausted
		}

		// 2. Ledger kaydı
		tx = &models.Transaction{
			FromUserID:          senderKey,
			ToTechnicianID:      recipient.Profile.ID,
			FromName:            sender.Profile.Name,
			ToName:              recipient.Profile.Name,
			Tokens:              0,
			Message:             message,
			Type:                models.TypeThankYou,
			Timestamp:           now,
			PointsAwarded:       models.Int64Ptr(points),
			SenderPointsAwarded: models.Int64Ptr(0),
		}
		if err := repos.Transactions.Create(ctx, tx); err != nil {
			return err
		}

		// 3. Günlük set ve profil sayaçları
		if err := repos.DailyLimits.AddTechnician(ctx, senderKey, day, recipient.Profile.ID); err != nil {
			return err
		}
		return applyProfileUpdates(ctx, repos.Profiles,
			profileUpdate{recipient, models.ProfileDelta{Points: points, TotalThankYous: 1}},
			profileUpdate{sender, models.ProfileDelta{ThankYousSent: 1}},
		)
	})
	if err != nil {
		return nil, translate("send_free_thank_you", err)
	}

	// Commit sonrası: cache ve bildirim, ikisi de best effort
	if err := s.thanked.MarkThanked(ctx, senderKey, day, recipient.Profile.ID, nextMidnight(now, s.loc)); err != nil {
		log.Warn().Err(err).Msg("⚠️ Teşekkür cache'i yazılamadı")
	}
	s.notifier.Enqueue(NotificationJob{
		Address:  recipient.Profile.Email,
		Template: notify.TemplateThankYouReceived,
		Params: map[string]string{
			"from":    sender.Profile.Name,
			"message": message,
			"points":  strconv.FormatInt(points, 10),
		},
	})

	log.Info().
		Str("transaction_id", tx.ID).
		Str("from", senderKey).
		Str("to", recipient.Profile.ID).
		Msg("🙏 Teşekkür gönderildi")

	return &models.ThankYouResult{
		Success:       true,
		TransactionID: tx.ID,
		Message:       message,
		PointsAwarded: points,
	}, nil
}

// SendTokens gönderenin bakiyesinden teknisyene TOA gönderir ve geliri paylaştırır
func (s *AppreciationService) SendTokens(ctx context.Context, senderID, recipientID string, tokenCount int64) (result *models.TokenTransferResult, err error) {
	start := time.Now()
	defer func() { metrics.RecordOperation("send_tokens", outcome(err), time.Since(start)) }()

	if senderID == recipientID {
		return nil, ErrSelfSend
	}
	if !s.catalog.InSendRange(tokenCount) {
		return nil, invalidTokenAmount(s.catalog.MinTokensPerSend, s.catalog.MaxTokensPerSend)
	}

	recipient, sender, err := s.resolveParties(ctx, senderID, recipientID, ErrSelfSend)
	if err != nil {
		return nil, translate("send_tokens", err)
	}

	split := s.catalog.SplitFor(tokenCount)
	recipientPoints := s.catalog.PaidRecipientPoints
	senderPoints := s.catalog.PaidSenderPoints
	message := s.catalog.TokenMessage()
	now := s.now()
	senderKey := sender.Profile.LedgerKey()

	var (
		tx         *models.Transaction
		newBalance *models.Balance
	)

	err = s.store.RunInTx(ctx, func(repos *interfaces.Repositories) error {
		// 1. Gönderen bakiyesini kilitle ve kontrol et
		balance, err := repos.Balances.GetForUpdate(ctx, senderKey)
		if err != nil {
			return err
		}
		if balance.Tokens < tokenCount {
			return ErrInsufficientTokens
		}

		// 2. Ledger kaydı
		tx = &models.Transaction{
			FromUserID:          senderKey,
			ToTechnicianID:      recipient.Profile.ID,
			FromName:            sender.Profile.Name,
			ToName:              recipient.Profile.Name,
			Tokens:              tokenCount,
			Message:             message,
			Type:                models.TypeToaToken,
			Timestamp:           now,
			DollarValue:         decimal.NewNullDecimal(split.DollarValue),
			TechnicianPayout:    decimal.NewNullDecimal(split.TechnicianPayout),
			PlatformFee:         decimal.NewNullDecimal(split.PlatformFee),
			PointsAwarded:       models.Int64Ptr(recipientPoints),
			SenderPointsAwarded: models.Int64Ptr(senderPoints),
		}
		if err := repos.Transactions.Create(ctx, tx); err != nil {
			return err
		}

		// 3. Bakiye düş (tokens ve totalSpent birlikte)
		newBalance, err = repos.Balances.Debit(ctx, senderKey, tokenCount)
		if errors.Is(err, repository.ErrInsufficientTokens) {
			return ErrInsufficientTokens
		}
		if err != nil {
			return err
		}

		// 4. Profil sayaçları ve puanlar
		return applyProfileUpdates(ctx, repos.Profiles,
			profileUpdate{recipient, models.ProfileDelta{
				Points:              recipientPoints,
				TotalTokensReceived: tokenCount,
				TotalToaValue:       split.DollarValue,
				TotalEarnings:       split.TechnicianPayout,
			}},
			profileUpdate{sender, models.ProfileDelta{
				Points:     senderPoints,
				TokensSent: tokenCount,
			}},
		)
	})
	if err != nil {
		return nil, translate("send_tokens", err)
	}

	tokens := strconv.FormatInt(tokenCount, 10)
	s.notifier.Enqueue(NotificationJob{
		Address:  recipient.Profile.Email,
		Template: notify.TemplateTokensReceived,
		Params:   map[string]string{"from": sender.Profile.Name, "tokens": tokens, "message": message},
	})
	s.notifier.Enqueue(NotificationJob{
		Address:  sender.Profile.Email,
		Template: notify.TemplateTokensSent,
		Params:   map[string]string{"to": recipient.Profile.Name, "tokens": tokens},
	})

	log.Info().
		Str("transaction_id", tx.ID).
		Str("from", senderKey).
		Str("to", recipient.Profile.ID).
		Int64("tokens", tokenCount).
		Str("dollar_value", split.DollarValue.String()).
		Msg("💸 TOA gönderildi")

	return &models.TokenTransferResult{
		Success:             true,
		TransactionID:       tx.ID,
		Tokens:              tokenCount,
		DollarValue:         split.DollarValue,
		TechnicianPayout:    split.TechnicianPayout,
		PlatformFee:         split.PlatformFee,
		SenderPointsAwarded: senderPoints,
		NewBalance:          newBalance.Tokens,
		Message:             message,
	}, nil
}

// ThankYouStatus gönderen bugün bu teknisyene teşekkür etti mi
func (s *AppreciationService) ThankYouStatus(ctx context.Context, senderID, recipientID string) (*models.ThankYouStatus, error) {
	repos := s.store.Repos()

	recipient, err := NewIdentityResolver(repos.Profiles).ResolveKind(ctx, models.KindTechnician, recipientID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTechnicianNotFound
	}
	if err != nil {
		return nil, translate("thank_you_status", err)
	}

	senderKey, _, err := ledgerKeyOf(ctx, repos.Profiles, senderID)
	if err != nil {
		return nil, translate("thank_you_status", err)
	}

	day := dayKey(s.now(), s.loc)
	status := &models.ThankYouStatus{TechnicianID: recipient.Profile.ID, Date: day}

	limit, err := repos.DailyLimits.Get(ctx, senderKey, day)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return status, nil
	case err != nil:
		return nil, translate("thank_you_status", err)
	}
	status.AlreadyThanked = limit.HasThanked(recipient.Profile.ID)
	return status, nil
}

// resolveParties alıcıyı teknisyen, göndereni herhangi bir hesap olarak çözer ve kendine gönderimi engeller
func (s *AppreciationService) resolveParties(ctx context.Context, senderID, recipientID string, selfErr *LedgerError) (recipient, sender *models.ResolvedAccount, err error) {
	resolver := NewIdentityResolver(s.store.Repos().Profiles)

	recipient, err = resolver.ResolveKind(ctx, models.KindTechnician, recipientID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrTechnicianNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	if recipient.Profile.Matches(senderID) {
		return nil, nil, selfErr
	}

	sender, err = resolver.Resolve(ctx, senderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrSenderNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	if sameAccount(sender, recipient) {
		return nil, nil, selfErr
	}
	return recipient, sender, nil
}

type profileUpdate struct {
	account *models.ResolvedAccount
	delta   models.ProfileDelta
}

// applyProfileUpdates profilleri (tip, id) sırasıyla günceller, satır kilit sırası sabit kalır
func applyProfileUpdates(ctx context.Context, profiles interfaces.ProfileRepositoryInterface, updates ...profileUpdate) error {
	sort.Slice(updates, func(i, j int) bool {
		a, b := updates[i].account, updates[j].account
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Profile.ID < b.Profile.ID
	})

	for _, u := range updates {
		if _, err := profiles.ApplyDelta(ctx, u.account.Kind, u.account.Profile.ID, u.delta); err != nil {
			return err
		}
	}
	return nil
}

type discardNotifier struct{}

func (discardNotifier) Enqueue(NotificationJob) bool { return false }
