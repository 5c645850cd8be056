package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onerilhan/thankatech-ledger/internal/models"
)

// TestSplitFor_SumsExactly her geçerli miktar için payout + fee = dollar value
func TestSplitFor_SumsExactly(t *testing.T) {
	c := Default()

	for n := c.MinTokensPerSend; n <= c.MaxTokensPerSend; n++ {
		split := c.SplitFor(n)
		assert.True(t, split.TechnicianPayout.Add(split.PlatformFee).Equal(split.DollarValue), "n=%d", n)
		assert.True(t, split.DollarValue.Equal(decimal.NewFromInt(n).Mul(decimal.RequireFromString("0.01"))), "n=%d", n)
	}
}

func TestSplitFor_KnownValues(t *testing.T) {
	split := Default().SplitFor(10)

	assert.Equal(t, "0.1", split.DollarValue.String())
	assert.Equal(t, "0.085", split.TechnicianPayout.String())
	assert.Equal(t, "0.015", split.PlatformFee.String())
}

func TestExpectedFor(t *testing.T) {
	c := Default()

	thanks := c.ExpectedFor(models.TypeThankYou, 0)
	assert.Equal(t, int64(1), thanks.PointsAwarded)
	assert.Zero(t, thanks.SenderPointsAwarded)
	assert.Nil(t, thanks.Split)

	paid := c.ExpectedFor(models.TypeToaToken, 20)
	assert.Equal(t, int64(2), paid.PointsAwarded)
	assert.Equal(t, int64(1), paid.SenderPointsAwarded)
	require.NotNil(t, paid.Split)
	assert.Equal(t, "0.2", paid.Split.DollarValue.String())

	assert.Zero(t, c.ExpectedFor(models.TypeTokenPurchase, 500).PointsAwarded)
	assert.Zero(t, c.ExpectedFor(models.TypePointsConversion, 5).PointsAwarded)
}

func TestTokensFor(t *testing.T) {
	c := Default()
	assert.Equal(t, int64(5), c.TokensFor(25))
	assert.Equal(t, int64(4), c.TokensFor(23))
}

func TestValidate_RejectsInconsistentSplit(t *testing.T) {
	c := Default()
	c.PlatformFeePerToken = decimal.RequireFromString("0.002")

	assert.Error(t, c.Validate())
}

func TestValidate_RejectsBadRanges(t *testing.T) {
	c := Default()
	c.MinTokensPerSend = 60
	assert.Error(t, c.Validate())

	c = Default()
	c.ConversionRate = 0
	assert.Error(t, c.Validate())
}

func TestParse_OverridesOnlyGivenFields(t *testing.T) {
	data := []byte(`
conversion_rate: 10
min_conversion_points: 20
max_tokens_per_send: 100
messages:
  thank_you:
    - "Cheers!"
`)

	c, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, int64(10), c.ConversionRate)
	assert.Equal(t, int64(20), c.MinConversionPoints)
	assert.Equal(t, int64(100), c.MaxTokensPerSend)
	assert.Equal(t, int64(5), c.MinTokensPerSend)
	assert.Equal(t, []string{"Cheers!"}, c.Messages.ThankYou)
	assert.NotEmpty(t, c.Messages.Token)
	assert.Equal(t, "Cheers!", c.ThankYouMessage())
}

func TestParse_InvalidDecimal(t *testing.T) {
	_, err := Parse([]byte(`price_per_token: "abc"`))
	assert.Error(t, err)
}

func TestMessages_FromApprovedSet(t *testing.T) {
	c := Default()
	for i := 0; i < 20; i++ {
		assert.Contains(t, c.Messages.ThankYou, c.ThankYouMessage())
		assert.Contains(t, c.Messages.Token, c.TokenMessage())
	}
}

func TestLoadFile_EmptyPathReturnsDefault(t *testing.T) {
	c, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, Default().ConversionRate, c.ConversionRate)

	_, ok := c.FindPack("starter")
	assert.True(t, ok)
}
