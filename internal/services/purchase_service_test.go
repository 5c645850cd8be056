package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onerilhan/thankatech-ledger/internal/models"
)

func TestAddTokensToBalance_Success(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()

	// Act
	result, err := f.purchases.AddTokensToBalance(ctx, "uid-cust-1", 500, "5.00", "cs_test_1")

	// Assert
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.Duplicate)
	assert.Equal(t, int64(500), result.NewBalance)

	balance := f.balance(t, "uid-cust-1")
	assert.Equal(t, int64(500), balance.Tokens)
	assert.Equal(t, int64(500), balance.TotalPurchased)
	assert.Zero(t, balance.TotalSpent)

	ledger := f.ledger(t)
	require.Len(t, ledger, 1)
	assert.Equal(t, models.TypeTokenPurchase, ledger[0].Type)
	assert.Equal(t, "cs_test_1", *ledger[0].ExternalReference)
	assert.Equal(t, "5", ledger[0].DollarValue.Decimal.String())
	assert.Zero(t, ledger[0].Points())
}

func TestAddTokensToBalance_DuplicateReferenceIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.purchases.AddTokensToBalance(ctx, "uid-cust-1", 100, "1.00", "cs_dup")
	require.NoError(t, err)

	second, err := f.purchases.AddTokensToBalance(ctx, "uid-cust-1", 100, "1.00", "cs_dup")

	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.True(t, second.Duplicate)
	assert.Equal(t, first.TransactionID, second.TransactionID)
	assert.Equal(t, int64(100), second.NewBalance)
	assert.Equal(t, int64(100), f.balance(t, "uid-cust-1").Tokens)
	assert.Len(t, f.ledger(t), 1)
}

func TestAddTokensToBalance_ConcurrentDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.purchases.AddTokensToBalance(ctx, "uid-cust-1", 100, "", "cs_race")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), f.balance(t, "uid-cust-1").Tokens)
	assert.Len(t, f.ledger(t), 1)
}

func TestAddTokensToBalance_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		userID string
		tokens int64
		amount string
		ref    string
	}{
		{"boş kullanıcı", "", 100, "1", "ref"},
		{"sıfır token", "uid-cust-1", 0, "1", "ref"},
		{"boş referans", "uid-cust-1", 100, "1", " "},
		{"geçersiz tutar", "uid-cust-1", 100, "bir dolar", "ref"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.purchases.AddTokensToBalance(ctx, tt.userID, tt.tokens, tt.amount, tt.ref)
			assert.ErrorIs(t, err, ErrInvalidPurchase)
		})
	}
	assert.Empty(t, f.ledger(t))
}
