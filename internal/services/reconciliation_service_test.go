package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onerilhan/thankatech-ledger/internal/models"
)

// seedDrift eski formüllerle yazılmış iki kayıt ekler:
// puanı olmayan bir teşekkür ve token sayısıyla puanlanmış bir ücretli gönderim
func seedDrift(f *fixture) {
	at := f.clock.Now().Add(-48 * time.Hour)
	f.store.PutTransaction(&models.Transaction{
		ID:             "legacy-thanks",
		FromUserID:     "uid-cust-1",
		ToTechnicianID: "tech-1",
		Type:           models.TypeThankYou,
		Timestamp:      at,
	})
	f.store.PutTransaction(&models.Transaction{
		ID:                  "legacy-tokens",
		FromUserID:          "uid-cust-1",
		ToTechnicianID:      "tech-1",
		Tokens:              10,
		Type:                models.TypeToaToken,
		Timestamp:           at.Add(time.Minute),
		DollarValue:         decimal.NewNullDecimal(decimal.RequireFromString("0.1")),
		TechnicianPayout:    decimal.NewNullDecimal(decimal.RequireFromString("0.08")),
		PlatformFee:         decimal.NewNullDecimal(decimal.RequireFromString("0.02")),
		PointsAwarded:       models.Int64Ptr(10),
		SenderPointsAwarded: models.Int64Ptr(1),
	})
	f.store.PutProfile(&models.Profile{ID: "tech-1", AuthUID: "uid-tech-1", Kind: models.KindTechnician, Name: "Mehmet", Points: 10})
	f.store.PutProfile(&models.Profile{ID: "cust-1", AuthUID: "uid-cust-1", Kind: models.KindCustomer, Name: "Ayşe", Points: 1})
}

func TestReconcile_DryRunChangesNothing(t *testing.T) {
	// Arrange
	f := newFixture(t)
	seedDrift(f)
	ctx := context.Background()

	// Act
	report, err := f.reconcile.Run(ctx, models.ReconcileOptions{DryRun: true, FixPoints: true})

	// Assert
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 2, report.TransactionsDrift)
	assert.Zero(t, report.TransactionsFixed)
	assert.NotEmpty(t, report.Corrections)
	for _, c := range report.Corrections {
		assert.False(t, c.Applied)
	}

	ledger := f.ledger(t)
	assert.Nil(t, ledger[0].PointsAwarded)
	assert.Equal(t, int64(10), ledger[1].Points())
	assert.Equal(t, int64(10), f.profile(t, models.KindTechnician, "tech-1").Points)

	audit, err := f.store.Repos().Audit.GetByEntity(ctx, "transaction", "legacy-tokens", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, audit)
}

func TestReconcile_FixesTransactionsAndPoints(t *testing.T) {
	f := newFixture(t)
	seedDrift(f)
	ctx := context.Background()

	report, err := f.reconcile.Run(ctx, models.ReconcileOptions{FixPoints: true, Actor: "admin:adm-1"})

	require.NoError(t, err)
	assert.Equal(t, 2, report.TransactionsFixed)
	assert.Zero(t, report.TransactionsRaced)

	thanks, err := f.balances.GetTransactionByID(ctx, "legacy-thanks")
	require.NoError(t, err)
	assert.Equal(t, int64(1), thanks.Points())
	assert.Equal(t, int64(0), thanks.SenderPoints())
	assert.NotNil(t, thanks.ReconciledAt)

	tokens, err := f.balances.GetTransactionByID(ctx, "legacy-tokens")
	require.NoError(t, err)
	assert.Equal(t, int64(2), tokens.Points())
	assert.Equal(t, "0.085", tokens.TechnicianPayout.Decimal.String())
	assert.Equal(t, "0.015", tokens.PlatformFee.Decimal.String())
	assert.Equal(t, "0.1", tokens.DollarValue.Decimal.String())

	// teknisyen: 1 + 2 = 3 puan, müşteri: 1 gönderen puanı
	assert.Equal(t, int64(3), f.profile(t, models.KindTechnician, "tech-1").Points)
	assert.Equal(t, int64(1), f.profile(t, models.KindCustomer, "cust-1").Points)
	assert.Equal(t, 1, report.ProfilesFixed)

	audit, err := f.store.Repos().Audit.GetByEntity(ctx, "transaction", "legacy-tokens", 10, 0)
	require.NoError(t, err)
	require.Len(t, audit, 1)
	assert.Equal(t, models.AuditReconcileTransaction, audit[0].Action)
	assert.Equal(t, "admin:adm-1", audit[0].Actor)
	assert.JSONEq(t, `{"points_awarded":10,"sender_points_awarded":1,"dollar_value":"0.1","technician_payout":"0.08","platform_fee":"0.02"}`, string(audit[0].OldData))

	points, err := f.store.Repos().Audit.GetByEntity(ctx, "technician", "tech-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, models.AuditReconcilePoints, points[0].Action)
}

// TestReconcile_MatchingThankYouWithoutSenderShareUntouched eşleşen puanlı teşekkür
// kaydı, gönderen payı NULL olsa da değiştirilmez
func TestReconcile_MatchingThankYouWithoutSenderShareUntouched(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()
	f.store.PutTransaction(&models.Transaction{
		ID:             "old-thanks",
		FromUserID:     "uid-cust-1",
		ToTechnicianID: "tech-1",
		Type:           models.TypeThankYou,
		Timestamp:      f.clock.Now().Add(-time.Hour),
		PointsAwarded:  models.Int64Ptr(1),
	})

	// Act
	report, err := f.reconcile.Run(ctx, models.ReconcileOptions{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, report.Scanned)
	assert.Zero(t, report.TransactionsDrift)
	assert.Zero(t, report.TransactionsFixed)

	tx, err := f.balances.GetTransactionByID(ctx, "old-thanks")
	require.NoError(t, err)
	assert.Nil(t, tx.ReconciledAt)
	assert.Nil(t, tx.SenderPointsAwarded)

	audit, err := f.store.Repos().Audit.GetByEntity(ctx, "transaction", "old-thanks", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, audit)
}

func TestReconcile_SecondRunIsClean(t *testing.T) {
	f := newFixture(t)
	seedDrift(f)
	ctx := context.Background()

	_, err := f.reconcile.Run(ctx, models.ReconcileOptions{FixPoints: true})
	require.NoError(t, err)

	report, err := f.reconcile.Run(ctx, models.ReconcileOptions{FixPoints: true, PageSize: 1})

	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	assert.Zero(t, report.TransactionsDrift)
	assert.Zero(t, report.ProfilesDrift)
	assert.Empty(t, report.Corrections)
}

func TestReconcile_WithoutFixPointsLeavesProfiles(t *testing.T) {
	f := newFixture(t)
	seedDrift(f)

	report, err := f.reconcile.Run(context.Background(), models.ReconcileOptions{})

	require.NoError(t, err)
	assert.Equal(t, 2, report.TransactionsFixed)
	assert.Zero(t, report.ProfilesScanned)
	assert.Equal(t, int64(10), f.profile(t, models.KindTechnician, "tech-1").Points)
}

func TestReconcile_SkipsAmbiguousIdentity(t *testing.T) {
	f := newFixture(t)
	// aynı auth uid hem teknisyen hem müşteri tablosunda
	f.store.PutProfile(&models.Profile{ID: "cust-2", AuthUID: "uid-tech-2", Kind: models.KindCustomer, Points: 7})

	report, err := f.reconcile.Run(context.Background(), models.ReconcileOptions{FixPoints: true})

	require.NoError(t, err)
	assert.Equal(t, 1, report.ProfilesSkipped)
	assert.Equal(t, int64(7), f.profile(t, models.KindCustomer, "cust-2").Points)
}

// TestReconcile_LiveTrafficMatchesLedger normal trafik sonrası profil puanları ledger toplamına eşittir
func TestReconcile_LiveTrafficMatchesLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.PutBalance(&models.Balance{UserID: "uid-cust-1", Tokens: 200})

	_, err := f.appreciation.SendFreeThankYou(ctx, "uid-cust-1", "tech-1")
	require.NoError(t, err)
	_, err = f.appreciation.SendTokens(ctx, "uid-cust-1", "tech-1", 25)
	require.NoError(t, err)
	_, err = f.appreciation.SendTokens(ctx, "uid-cust-1", "tech-2", 5)
	require.NoError(t, err)
	_, err = f.purchases.AddTokensToBalance(ctx, "uid-tech-1", 100, "1.00", "cs_live")
	require.NoError(t, err)

	report, err := f.reconcile.Run(ctx, models.ReconcileOptions{DryRun: true, FixPoints: true})

	require.NoError(t, err)
	assert.Equal(t, 4, report.Scanned)
	assert.Zero(t, report.TransactionsDrift)
	assert.Zero(t, report.ProfilesDrift)
	assert.Equal(t, int64(3), f.profile(t, models.KindTechnician, "tech-1").Points)
	assert.Equal(t, int64(2), f.profile(t, models.KindCustomer, "cust-1").Points)
}
