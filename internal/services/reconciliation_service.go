package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/onerilhan/thankatech-ledger/internal/catalog"
	"github.com/onerilhan/thankatech-ledger/internal/interfaces"
	"github.com/onerilhan/thankatech-ledger/internal/metrics"
	"github.com/onerilhan/thankatech-ledger/internal/models"
	"github.com/onerilhan/thankatech-ledger/internal/repository"
)

const defaultReconcilePageSize = 200

// ReconciliationService ledger kayıtlarını katalog formülleriyle karşılaştırır ve sapmaları düzeltir.
// Düzeltmeler koşullu yazılır: arada değişmiş bir kayıt atlanır, üzerine yazılmaz.
type ReconciliationService struct {
	store   interfaces.StoreInterface
	catalog *catalog.Catalog
	now     Clock
}

// NewReconciliationService yeni service oluşturur
func NewReconciliationService(store interfaces.StoreInterface, cat *catalog.Catalog, now Clock) *ReconciliationService {
	if now == nil {
		now = time.Now
	}
	return &ReconciliationService{store: store, catalog: cat, now: now}
}

// Run ledger'ı baştan sona tarar; FixPoints ise profil puanlarını da ledger'dan yeniden hesaplar
func (s *ReconciliationService) Run(ctx context.Context, opts models.ReconcileOptions) (*models.ReconciliationReport, error) {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultReconcilePageSize
	}
	if opts.Actor == "" {
		opts.Actor = "system"
	}

	report := &models.ReconciliationReport{StartedAt: s.now(), DryRun: opts.DryRun}
	log.Info().Bool("dry_run", opts.DryRun).Bool("fix_points", opts.FixPoints).Str("actor", opts.Actor).Msg("🧮 Reconciliation başladı")

	if err := s.reconcileTransactions(ctx, opts, report); err != nil {
		return nil, err
	}
	if opts.FixPoints {
		if err := s.reconcileProfiles(ctx, opts, report); err != nil {
			return nil, err
		}
	}

	report.FinishedAt = s.now()
	log.Info().
		Int("scanned", report.Scanned).
		Int("transactions_drift", report.TransactionsDrift).
		Int("transactions_fixed", report.TransactionsFixed).
		Int("profiles_drift", report.ProfilesDrift).
		Int("profiles_fixed", report.ProfilesFixed).
		Msg("✅ Reconciliation tamamlandı")
	return report, nil
}

func (s *ReconciliationService) reconcileTransactions(ctx context.Context, opts models.ReconcileOptions, report *models.ReconciliationReport) error {
	repo := s.store.Repos().Transactions

	for offset := 0; ; offset += opts.PageSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := repo.List(ctx, opts.PageSize, offset)
		if err != nil {
			return fmt.Errorf("ledger sayfası okunamadı: %w", err)
		}

		for _, tx := range page {
			report.Scanned++
			if err := s.reconcileTransaction(ctx, tx, opts, report); err != nil {
				return err
			}
		}
		if len(page) < opts.PageSize {
			return nil
		}
	}
}

func senderShareDrifted(observed *int64, want int64) bool {
	if observed == nil {
		return want != 0
	}
	return *observed != want
}

func (s *ReconciliationService) reconcileTransaction(ctx context.Context, tx *models.Transaction, opts models.ReconcileOptions, report *models.ReconciliationReport) error {
	if !tx.Type.Valid() {
		log.Warn().Str("transaction_id", tx.ID).Str("type", string(tx.Type)).Msg("⚠️ Bilinmeyen işlem tipi, atlandı")
		return nil
	}

	expected := s.catalog.ExpectedFor(tx.Type, tx.Tokens)
	patch := &models.TransactionPatch{
		TransactionID:            tx.ID,
		ObservedPoints:           tx.PointsAwarded,
		ObservedSenderPoints:     tx.SenderPointsAwarded,
		ObservedDollarValue:      tx.DollarValue,
		ObservedTechnicianPayout: tx.TechnicianPayout,
		ObservedPlatformFee:      tx.PlatformFee,
		PointsAwarded:            expected.PointsAwarded,
		SenderPointsAwarded:      expected.SenderPointsAwarded,
		DollarValue:              tx.DollarValue,
		TechnicianPayout:         tx.TechnicianPayout,
		PlatformFee:              tx.PlatformFee,
	}

	var corrections []models.Correction
	add := func(field, observed, want string) {
		corrections = append(corrections, models.Correction{
			EntityType: "transaction",
			EntityID:   tx.ID,
			Field:      field,
			Observed:   observed,
			Expected:   want,
		})
	}

	if tx.PointsAwarded == nil || *tx.PointsAwarded != expected.PointsAwarded {
		add("points_awarded", intString(tx.PointsAwarded), strconv.FormatInt(expected.PointsAwarded, 10))
	}
	// Gönderen payı sütunundan önceki kayıtlarda NULL; beklenen pay 0 ise eşleşmiş sayılır
	if senderShareDrifted(tx.SenderPointsAwarded, expected.SenderPointsAwarded) {
		add("sender_points_awarded", intString(tx.SenderPointsAwarded), strconv.FormatInt(expected.SenderPointsAwarded, 10))
	}
	if split := expected.Split; split != nil {
		for _, f := range []struct {
			name     string
			observed decimal.NullDecimal
			want     decimal.Decimal
			target   *decimal.NullDecimal
		}{
			{"dollar_value", tx.DollarValue, split.DollarValue, &patch.DollarValue},
			{"technician_payout", tx.TechnicianPayout, split.TechnicianPayout, &patch.TechnicianPayout},
			{"platform_fee", tx.PlatformFee, split.PlatformFee, &patch.PlatformFee},
		} {
			if !f.observed.Valid || !f.observed.Decimal.Equal(f.want) {
				add(f.name, decimalString(f.observed), f.want.String())
				*f.target = decimal.NewNullDecimal(f.want)
			}
		}
	}

	if len(corrections) == 0 {
		return nil
	}
	report.TransactionsDrift++

	if opts.DryRun {
		report.Corrections = append(report.Corrections, corrections...)
		metrics.RecordReconcilePatch("transaction", "dry_run")
		return nil
	}

	applied := false
	err := s.store.RunInTx(ctx, func(repos *interfaces.Repositories) error {
		ok, err := repos.Transactions.ApplyPatch(ctx, patch)
		if err != nil || !ok {
			applied = false
			return err
		}
		applied = true
		return repos.Audit.Create(ctx, &models.AuditLog{
			EntityType: "transaction",
			EntityID:   tx.ID,
			Action:     models.AuditReconcileTransaction,
			Actor:      opts.Actor,
			OldData:    mustJSON(transactionSnapshot(tx.PointsAwarded, tx.SenderPointsAwarded, tx.DollarValue, tx.TechnicianPayout, tx.PlatformFee)),
			NewData: mustJSON(transactionSnapshot(models.Int64Ptr(patch.PointsAwarded), models.Int64Ptr(patch.SenderPointsAwarded),
				patch.DollarValue, patch.TechnicianPayout, patch.PlatformFee)),
			Details: fmt.Sprintf("%d field(s) recomputed from catalog", len(corrections)),
		})
	})
	if err != nil {
		return fmt.Errorf("transaction %s düzeltilemedi: %w", tx.ID, err)
	}

	for i := range corrections {
		corrections[i].Applied = applied
	}
	report.Corrections = append(report.Corrections, corrections...)

	if applied {
		report.TransactionsFixed++
		metrics.RecordReconcilePatch("transaction", "applied")
		log.Info().Str("transaction_id", tx.ID).Int("fields", len(corrections)).Msg("🩹 Ledger kaydı düzeltildi")
	} else {
		report.TransactionsRaced++
		metrics.RecordReconcilePatch("transaction", "raced")
		log.Warn().Str("transaction_id", tx.ID).Msg("⚠️ Kayıt tarama sırasında değişti, düzeltme atlandı")
	}
	return nil
}

func (s *ReconciliationService) reconcileProfiles(ctx context.Context, opts models.ReconcileOptions, report *models.ReconciliationReport) error {
	repos := s.store.Repos()

	for _, kind := range models.ResolutionOrder {
		for offset := 0; ; offset += opts.PageSize {
			if err := ctx.Err(); err != nil {
				return err
			}

			profiles, err := repos.Profiles.List(ctx, kind, opts.PageSize, offset)
			if err != nil {
				return fmt.Errorf("%s profilleri okunamadı: %w", kind, err)
			}
			for _, p := range profiles {
				report.ProfilesScanned++
				if err := s.reconcileProfile(ctx, repos, p, opts, report); err != nil {
					return err
				}
			}
			if len(profiles) < opts.PageSize {
				break
			}
		}
	}
	return nil
}

func (s *ReconciliationService) reconcileProfile(ctx context.Context, repos *interfaces.Repositories, p *models.Profile, opts models.ReconcileOptions, report *models.ReconciliationReport) error {
	identities := p.Identities()

	// Aynı kimlik daha öncelikli bir tabloda da varsa ledger payı o profile gider; karar verilemez
	resolver := NewIdentityResolver(repos.Profiles)
	for _, id := range identities {
		owner, err := resolver.Resolve(ctx, id)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if owner != nil && (owner.Kind != p.Kind || owner.Profile.ID != p.ID) {
			report.ProfilesSkipped++
			return nil
		}
	}

	earned, err := repos.Transactions.SumPointsFor(ctx, identities)
	if err != nil {
		return err
	}
	converted, err := repos.Conversions.SumPointsConverted(ctx, identities)
	if err != nil {
		return err
	}

	expected := earned - converted
	if expected < 0 {
		log.Warn().Str("profile_id", p.ID).Int64("expected", expected).Msg("⚠️ Ledger'dan negatif puan çıktı, profil atlandı")
		report.ProfilesSkipped++
		return nil
	}
	if expected == p.Points {
		return nil
	}

	report.ProfilesDrift++
	correction := models.Correction{
		EntityType: string(p.Kind),
		EntityID:   p.ID,
		Field:      "points",
		Observed:   strconv.FormatInt(p.Points, 10),
		Expected:   strconv.FormatInt(expected, 10),
	}

	if opts.DryRun {
		report.Corrections = append(report.Corrections, correction)
		metrics.RecordReconcilePatch(string(p.Kind), "dry_run")
		return nil
	}

	err = s.store.RunInTx(ctx, func(tx *interfaces.Repositories) error {
		ok, err := tx.Profiles.SetPoints(ctx, p.Kind, p.ID, p.Points, expected)
		if err != nil || !ok {
			correction.Applied = false
			return err
		}
		correction.Applied = true
		return tx.Audit.Create(ctx, &models.AuditLog{
			EntityType: string(p.Kind),
			EntityID:   p.ID,
			Action:     models.AuditReconcilePoints,
			Actor:      opts.Actor,
			OldData:    mustJSON(map[string]int64{"points": p.Points}),
			NewData:    mustJSON(map[string]int64{"points": expected}),
			Details:    fmt.Sprintf("earned %d, converted %d", earned, converted),
		})
	})
	if err != nil {
		return fmt.Errorf("profil %s düzeltilemedi: %w", p.ID, err)
	}

	report.Corrections = append(report.Corrections, correction)
	if correction.Applied {
		report.ProfilesFixed++
		metrics.RecordReconcilePatch(string(p.Kind), "applied")
		log.Info().Str("profile_id", p.ID).Int64("from", p.Points).Int64("to", expected).Msg("🩹 Profil puanı düzeltildi")
	} else {
		report.ProfilesRaced++
		metrics.RecordReconcilePatch(string(p.Kind), "raced")
	}
	return nil
}

func transactionSnapshot(points, senderPoints *int64, value, payout, fee decimal.NullDecimal) map[string]any {
	return map[string]any{
		"points_awarded":        points,
		"sender_points_awarded": senderPoints,
		"dollar_value":          value,
		"technician_payout":     payout,
		"platform_fee":          fee,
	}
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

func intString(v *int64) string {
	if v == nil {
		return "null"
	}
	return strconv.FormatInt(*v, 10)
}

func decimalString(v decimal.NullDecimal) string {
	if !v.Valid {
		return "null"
	}
	return v.Decimal.String()
}
