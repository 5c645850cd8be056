package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onerilhan/thankatech-ledger/internal/models"
	"github.com/onerilhan/thankatech-ledger/internal/notify"
)

func TestSendFreeThankYou_Success(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()

	// Act
	result, err := f.appreciation.SendFreeThankYou(ctx, "uid-cust-1", "tech-1")

	// Assert
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int64(1), result.PointsAwarded)
	assert.Contains(t, f.catalog.Messages.ThankYou, result.Message)

	ledger := f.ledger(t)
	require.Len(t, ledger, 1)
	tx := ledger[0]
	assert.Equal(t, models.TypeThankYou, tx.Type)
	assert.Equal(t, int64(0), tx.Tokens)
	assert.Equal(t, int64(1), tx.Points())
	assert.Equal(t, int64(0), tx.SenderPoints())
	assert.Equal(t, "uid-cust-1", tx.FromUserID)
	assert.Equal(t, "tech-1", tx.ToTechnicianID)
	assert.Equal(t, "Ayşe", tx.FromName)

	tech := f.profile(t, models.KindTechnician, "tech-1")
	assert.Equal(t, int64(1), tech.Points)
	assert.Equal(t, int64(1), tech.TotalThankYous)

	// gönderen puan kazanmaz, sadece sayaç artar
	cust := f.profile(t, models.KindCustomer, "cust-1")
	assert.Equal(t, int64(0), cust.Points)
	assert.Equal(t, int64(1), cust.ThankYousSent)

	jobs := f.notifier.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "mehmet@example.com", jobs[0].Address)
	assert.Equal(t, notify.TemplateThankYouReceived, jobs[0].Template)
}

func TestSendFreeThankYou_SecondSameDayRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.appreciation.SendFreeThankYou(ctx, "uid-cust-1", "tech-1")
	require.NoError(t, err)

	// technician auth uid ile de aynı teknisyen
	_, err = f.appreciation.SendFreeThankYou(ctx, "uid-cust-1", "uid-tech-1")

	assert.ErrorIs(t, err, ErrDailyLimitReached)
	assert.Equal(t, "Daily limit reached for this technician", err.Error())
	assert.Len(t, f.ledger(t), 1)
	assert.Equal(t, int64(1), f.profile(t, models.KindTechnician, "tech-1").Points)
}

func TestSendFreeThankYou_OtherTechnicianSameDayAllowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.appreciation.SendFreeThankYou(ctx, "uid-cust-1", "tech-1")
	require.NoError(t, err)
	_, err = f.appreciation.SendFreeThankYou(ctx, "uid-cust-1", "tech-2")

	assert.NoError(t, err)
	assert.Len(t, f.ledger(t), 2)
}

func TestSendFreeThankYou_NextDayAllowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.appreciation.SendFreeThankYou(ctx, "uid-cust-1", "tech-1")
	require.NoError(t, err)

	f.clock.Advance(24 * time.Hour)
	_, err = f.appreciation.SendFreeThankYou(ctx, "uid-cust-1", "tech-1")

	assert.NoError(t, err)
	assert.Equal(t, int64(2), f.profile(t, models.KindTechnician, "tech-1").Points)
}

func TestSendFreeThankYou_DayBoundaryFollowsLocation(t *testing.T) {
	f := newFixture(t)
	ist, err := time.LoadLocation("Europe/Istanbul")
	if err != nil {
		t.Skip("tz verisi yok")
	}
	svc := NewAppreciationService(f.store, f.catalog, nil, nil, f.clock.Now, ist)
	ctx := context.Background()

	// 14:30 UTC = 17:30 İstanbul; 7 saat sonra İstanbul'da yeni gün, UTC'de aynı gün
	_, err = svc.SendFreeThankYou(ctx, "uid-cust-1", "tech-1")
	require.NoError(t, err)
	f.clock.Advance(7 * time.Hour)
	_, err = svc.SendFreeThankYou(ctx, "uid-cust-1", "tech-1")

	assert.NoError(t, err)
}

func TestSendFreeThankYou_SelfChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// aynı kimlik: teknisyen var olmasa da önce bu hata
	_, err := f.appreciation.SendFreeThankYou(ctx, "ghost", "ghost")
	assert.ErrorIs(t, err, ErrSelfThank)
	assert.Equal(t, "You cannot thank yourself", err.Error())

	// teknisyenin bağlı auth uid'i gönderen
	_, err = f.appreciation.SendFreeThankYou(ctx, "uid-tech-1", "tech-1")
	assert.ErrorIs(t, err, ErrSelfThank)

	assert.Empty(t, f.ledger(t))
}

func TestSendFreeThankYou_SameAuthUIDAcrossTablesIsSelf(t *testing.T) {
	f := newFixture(t)
	f.store.PutProfile(&models.Profile{ID: "cust-9", AuthUID: "uid-tech-2", Kind: models.KindCustomer, Name: "Zeynep (customer)"})

	_, err := f.appreciation.SendFreeThankYou(context.Background(), "cust-9", "tech-2")

	assert.ErrorIs(t, err, ErrSelfThank)
}

func TestSendFreeThankYou_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.appreciation.SendFreeThankYou(ctx, "uid-cust-1", "cust-1")
	assert.ErrorIs(t, err, ErrTechnicianNotFound)

	_, err = f.appreciation.SendFreeThankYou(ctx, "nobody", "tech-1")
	assert.ErrorIs(t, err, ErrSenderNotFound)
}

// TestSendFreeThankYou_Concurrent aynı teşekkürün eşzamanlı N kopyasından sadece biri yazılır
func TestSendFreeThankYou_Concurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		limited   int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.appreciation.SendFreeThankYou(ctx, "uid-cust-1", "tech-1")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrDailyLimitReached):
				limited++
			default:
				t.Errorf("beklenmeyen hata: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, limited)
	assert.Len(t, f.ledger(t), 1)
	assert.Equal(t, int64(1), f.profile(t, models.KindTechnician, "tech-1").Points)
}

func TestSendFreeThankYou_MaxDailyThanks(t *testing.T) {
	f := newFixture(t)
	f.catalog.MaxDailyThanks = 1
	ctx := context.Background()

	_, err := f.appreciation.SendFreeThankYou(ctx, "uid-cust-1", "tech-1")
	require.NoError(t, err)
	_, err = f.appreciation.SendFreeThankYou(ctx, "uid-cust-1", "tech-2")

	assert.ErrorIs(t, err, ErrDailyThanksExhausted)
}

type stubCache struct {
	thanked bool
	err     error
	marked  int
	senders []string
}

func (c *stubCache) WasThanked(_ context.Context, senderID, _, _ string) (bool, error) {
	c.senders = append(c.senders, senderID)
	return c.thanked, c.err
}

func (c *stubCache) MarkThanked(_ context.Context, senderID, _, _ string, _ time.Time) error {
	c.marked++
	c.senders = append(c.senders, senderID)
	return c.err
}

func TestSendFreeThankYou_CacheFastPath(t *testing.T) {
	f := newFixture(t)
	svc := NewAppreciationService(f.store, f.catalog, &stubCache{thanked: true}, nil, f.clock.Now, time.UTC)

	_, err := svc.SendFreeThankYou(context.Background(), "uid-cust-1", "tech-1")

	assert.ErrorIs(t, err, ErrDailyLimitReached)
	assert.Empty(t, f.ledger(t))
}

func TestSendFreeThankYou_CacheErrorFallsBackToStore(t *testing.T) {
	f := newFixture(t)
	c := &stubCache{err: errors.New("redis down")}
	svc := NewAppreciationService(f.store, f.catalog, c, nil, f.clock.Now, time.UTC)

	_, err := svc.SendFreeThankYou(context.Background(), "uid-cust-1", "tech-1")

	assert.NoError(t, err)
	assert.Equal(t, 1, c.marked)
	assert.Len(t, f.ledger(t), 1)
}

// TestSendFreeThankYou_OncePerAccountAcrossIdentityForms profil id ve auth uid aynı
// hesaptır: ikinci teşekkür aynı gün reddedilir
func TestSendFreeThankYou_OncePerAccountAcrossIdentityForms(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()
	c := &stubCache{}
	svc := NewAppreciationService(f.store, f.catalog, c, nil, f.clock.Now, time.UTC)

	// Act
	_, err := svc.SendFreeThankYou(ctx, "cust-1", "tech-1")
	require.NoError(t, err)
	_, err = svc.SendFreeThankYou(ctx, "uid-cust-1", "tech-1")

	// Assert
	assert.ErrorIs(t, err, ErrDailyLimitReached)
	require.Len(t, f.ledger(t), 1)
	assert.Equal(t, "uid-cust-1", f.ledger(t)[0].FromUserID)
	assert.Equal(t, int64(1), f.profile(t, models.KindTechnician, "tech-1").Points)
	assert.Equal(t, int64(1), f.profile(t, models.KindCustomer, "cust-1").ThankYousSent)
	for _, sender := range c.senders {
		assert.Equal(t, "uid-cust-1", sender)
	}

	status, err := svc.ThankYouStatus(ctx, "cust-1", "tech-1")
	require.NoError(t, err)
	assert.True(t, status.AlreadyThanked)
}

// TestSendTokens_SpendsPurchaseMadeUnderOtherIdentity profil id ile yüklenen token
// auth uid ile harcanabilir (tek bakiye)
func TestSendTokens_SpendsPurchaseMadeUnderOtherIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.purchases.AddTokensToBalance(ctx, "cust-1", 20, "0.20", "cs_test_alias")
	require.NoError(t, err)

	result, err := f.appreciation.SendTokens(ctx, "uid-cust-1", "tech-1", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), result.NewBalance)

	result, err = f.appreciation.SendTokens(ctx, "cust-1", "tech-1", 10)
	require.NoError(t, err)
	assert.Zero(t, result.NewBalance)

	byID, err := f.balances.GetBalance(ctx, "cust-1")
	require.NoError(t, err)
	byUID, err := f.balances.GetBalance(ctx, "uid-cust-1")
	require.NoError(t, err)
	assert.Zero(t, byID.Balance.Tokens)
	assert.Equal(t, int64(20), byUID.Balance.TotalSpent)
	assert.Equal(t, byID.Balance.UserID, byUID.Balance.UserID)
}

func TestThankYouStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	status, err := f.appreciation.ThankYouStatus(ctx, "uid-cust-1", "tech-1")
	require.NoError(t, err)
	assert.False(t, status.AlreadyThanked)
	assert.Equal(t, "2026-10-17", status.Date)

	_, err = f.appreciation.SendFreeThankYou(ctx, "uid-cust-1", "tech-1")
	require.NoError(t, err)

	status, err = f.appreciation.ThankYouStatus(ctx, "uid-cust-1", "uid-tech-1")
	require.NoError(t, err)
	assert.True(t, status.AlreadyThanked)

	_, err = f.appreciation.ThankYouStatus(ctx, "uid-cust-1", "missing")
	assert.ErrorIs(t, err, ErrTechnicianNotFound)
}

func TestSendTokens_ValidationOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// kendine gönderim aralık kontrolünden önce
	_, err := f.appreciation.SendTokens(ctx, "tech-1", "tech-1", 1)
	assert.ErrorIs(t, err, ErrSelfSend)

	for _, n := range []int64{0, 4, 51} {
		_, err = f.appreciation.SendTokens(ctx, "uid-cust-1", "tech-1", n)
		assert.ErrorIs(t, err, ErrInvalidTokenAmount, "n=%d", n)
		assert.Equal(t, "Token amount must be between 5 and 50", err.Error())
	}

	_, err = f.appreciation.SendTokens(ctx, "uid-tech-1", "tech-1", 10)
	assert.ErrorIs(t, err, ErrSelfSend)
}

func TestSendTokens_Success(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()
	f.store.PutBalance(&models.Balance{UserID: "uid-cust-1", Tokens: 100, TotalPurchased: 100})

	// Act
	result, err := f.appreciation.SendTokens(ctx, "uid-cust-1", "tech-1", 10)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "0.1", result.DollarValue.String())
	assert.Equal(t, "0.085", result.TechnicianPayout.String())
	assert.Equal(t, "0.015", result.PlatformFee.String())
	assert.Equal(t, int64(90), result.NewBalance)
	assert.Equal(t, int64(1), result.SenderPointsAwarded)
	assert.Contains(t, f.catalog.Messages.Token, result.Message)

	balance := f.balance(t, "uid-cust-1")
	assert.Equal(t, int64(90), balance.Tokens)
	assert.Equal(t, int64(10), balance.TotalSpent)
	assert.Equal(t, int64(100), balance.TotalPurchased)

	ledger := f.ledger(t)
	require.Len(t, ledger, 1)
	tx := ledger[0]
	assert.Equal(t, models.TypeToaToken, tx.Type)
	assert.Equal(t, int64(2), tx.Points())
	assert.Equal(t, int64(1), tx.SenderPoints())
	assert.True(t, tx.TechnicianPayout.Decimal.Add(tx.PlatformFee.Decimal).Equal(tx.DollarValue.Decimal))

	tech := f.profile(t, models.KindTechnician, "tech-1")
	assert.Equal(t, int64(2), tech.Points)
	assert.Equal(t, int64(10), tech.TotalTokensReceived)
	assert.Equal(t, "0.1", tech.TotalToaValue.String())
	assert.Equal(t, "0.085", tech.TotalEarnings.String())

	cust := f.profile(t, models.KindCustomer, "cust-1")
	assert.Equal(t, int64(1), cust.Points)
	assert.Equal(t, int64(10), cust.TokensSent)

	jobs := f.notifier.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, notify.TemplateTokensReceived, jobs[0].Template)
	assert.Equal(t, notify.TemplateTokensSent, jobs[1].Template)
	assert.Equal(t, "ayse@example.com", jobs[1].Address)
}

func TestSendTokens_FlatPointsPerTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.PutBalance(&models.Balance{UserID: "uid-cust-1", Tokens: 100})

	_, err := f.appreciation.SendTokens(ctx, "uid-cust-1", "tech-1", 50)
	require.NoError(t, err)

	// token sayısından bağımsız: 50 token da 2 puan
	assert.Equal(t, int64(2), f.profile(t, models.KindTechnician, "tech-1").Points)
}

func TestSendTokens_InsufficientBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.PutBalance(&models.Balance{UserID: "uid-cust-1", Tokens: 5})

	_, err := f.appreciation.SendTokens(ctx, "uid-cust-1", "tech-1", 10)

	assert.ErrorIs(t, err, ErrInsufficientTokens)
	assert.Equal(t, "Insufficient token balance", err.Error())
	assert.Equal(t, int64(5), f.balance(t, "uid-cust-1").Tokens)
	assert.Empty(t, f.ledger(t))
	assert.Zero(t, f.profile(t, models.KindTechnician, "tech-1").Points)
	assert.Empty(t, f.notifier.Jobs())
}

// TestSendTokens_ConcurrentNeverOverdraws bakiye hiçbir zaman negatife inmez
func TestSendTokens_ConcurrentNeverOverdraws(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.PutBalance(&models.Balance{UserID: "uid-cust-1", Tokens: 50})

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.appreciation.SendTokens(ctx, "uid-cust-1", "tech-1", 10)
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrInsufficientTokens)
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, successes)
	balance := f.balance(t, "uid-cust-1")
	assert.Equal(t, int64(0), balance.Tokens)
	assert.Equal(t, int64(50), balance.TotalSpent)
	assert.Len(t, f.ledger(t), 5)
}
