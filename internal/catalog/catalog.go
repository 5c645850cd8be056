package catalog

import (
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"
)

// TokenPack satın alınabilir TOA paketi
type TokenPack struct {
	ID         string `json:"id" yaml:"id"`
	Tokens     int64  `json:"tokens" yaml:"tokens"`
	PriceCents int64  `json:"price_cents" yaml:"price_cents"`
}

// Split ücretli token gönderiminin gelir paylaşımı
type Split struct {
	DollarValue      decimal.Decimal `json:"dollar_value"`
	TechnicianPayout decimal.Decimal `json:"technician_payout"`
	PlatformFee      decimal.Decimal `json:"platform_fee"`
}

// Messages onaylı tebrik mesajları
type Messages struct {
	ThankYou []string `json:"thank_you" yaml:"thank_you"`
	Token    []string `json:"token" yaml:"token"`
}

// Catalog para birimi ve oran ayarları.
// Paket seviyesinde global değil, her servise constructor ile verilir.
type Catalog struct {
	TokenPacks []TokenPack

	// Token başına ekonomi: PricePerToken = TechnicianPayoutPerToken + PlatformFeePerToken
	PricePerToken            decimal.Decimal
	TechnicianPayoutPerToken decimal.Decimal
	PlatformFeePerToken      decimal.Decimal

	FreeThankYouPoints  int64 // sadece alıcıya
	PaidRecipientPoints int64 // işlem başına, token sayısından bağımsız
	PaidSenderPoints    int64

	ConversionRate      int64 // N puan = 1 token
	MinConversionPoints int64

	MaxThanksPerTechnicianPerDay int64
	MaxDailyThanks               int64 // 0 = gönderen için günlük toplam limit yok

	MinTokensPerSend int64
	MaxTokensPerSend int64

	Messages Messages
}

// Default üretimdeki değerlerle katalog döner
func Default() *Catalog {
	return &Catalog{
		TokenPacks: []TokenPack{
			{ID: "starter", Tokens: 100, PriceCents: 100},
			{ID: "supporter", Tokens: 500, PriceCents: 500},
			{ID: "champion", Tokens: 1000, PriceCents: 1000},
			{ID: "hero", Tokens: 5000, PriceCents: 5000},
		},
		PricePerToken:                decimal.RequireFromString("0.01"),
		TechnicianPayoutPerToken:     decimal.RequireFromString("0.0085"),
		PlatformFeePerToken:          decimal.RequireFromString("0.0015"),
		FreeThankYouPoints:           1,
		PaidRecipientPoints:          2,
		PaidSenderPoints:             1,
		ConversionRate:               5,
		MinConversionPoints:          5,
		MaxThanksPerTechnicianPerDay: 1,
		MaxDailyThanks:               0,
		MinTokensPerSend:             5,
		MaxTokensPerSend:             50,
		Messages:                     defaultMessages(),
	}
}

// Validate katalog tutarlılığını kontrol eder
func (c *Catalog) Validate() error {
	if !c.PricePerToken.IsPositive() {
		return fmt.Errorf("token fiyatı pozitif olmalı: %s", c.PricePerToken)
	}
	if c.TechnicianPayoutPerToken.IsNegative() || c.PlatformFeePerToken.IsNegative() {
		return fmt.Errorf("payout ve platform fee negatif olamaz")
	}
	if !c.TechnicianPayoutPerToken.Add(c.PlatformFeePerToken).Equal(c.PricePerToken) {
		return fmt.Errorf("payout (%s) + fee (%s) fiyata (%s) eşit değil",
			c.TechnicianPayoutPerToken, c.PlatformFeePerToken, c.PricePerToken)
	}
	if c.ConversionRate <= 0 {
		return fmt.Errorf("dönüşüm oranı pozitif olmalı: %d", c.ConversionRate)
	}
	if c.MinConversionPoints < c.ConversionRate {
		return fmt.Errorf("minimum dönüşüm (%d) orandan (%d) küçük olamaz", c.MinConversionPoints, c.ConversionRate)
	}
	if c.MinTokensPerSend <= 0 || c.MinTokensPerSend > c.MaxTokensPerSend {
		return fmt.Errorf("geçersiz token aralığı: %d-%d", c.MinTokensPerSend, c.MaxTokensPerSend)
	}
	if c.MaxThanksPerTechnicianPerDay != 1 {
		// günlük kayıt bir set, teknisyen başına sayaç tutmuyor
		return fmt.Errorf("teknisyen başına günlük limit 1 olmalı: %d", c.MaxThanksPerTechnicianPerDay)
	}
	if c.MaxDailyThanks < 0 {
		return fmt.Errorf("günlük toplam limit negatif olamaz")
	}
	if c.FreeThankYouPoints < 0 || c.PaidRecipientPoints < 0 || c.PaidSenderPoints < 0 {
		return fmt.Errorf("puan oranları negatif olamaz")
	}
	if len(c.Messages.ThankYou) == 0 || len(c.Messages.Token) == 0 {
		return fmt.Errorf("mesaj setleri boş olamaz")
	}
	for _, p := range c.TokenPacks {
		if p.Tokens <= 0 || p.PriceCents <= 0 {
			return fmt.Errorf("geçersiz token paketi: %s", p.ID)
		}
	}
	return nil
}

// SplitFor n token için dolar değeri, teknisyen payı ve platform ücretini hesaplar.
// Ücret fiyattan payout çıkarılarak bulunur, toplam her zaman tam olarak DollarValue'dur.
func (c *Catalog) SplitFor(tokens int64) Split {
	n := decimal.NewFromInt(tokens)
	value := n.Mul(c.PricePerToken)
	payout := n.Mul(c.TechnicianPayoutPerToken)
	return Split{
		DollarValue:      value,
		TechnicianPayout: payout,
		PlatformFee:      value.Sub(payout),
	}
}

// TokensFor puan miktarının kaç token ettiğini döner (aşağı yuvarlanır)
func (c *Catalog) TokensFor(points int64) int64 {
	return points / c.ConversionRate
}

// InSendRange ücretli gönderim miktarı aralıkta mı
func (c *Catalog) InSendRange(tokens int64) bool {
	return tokens >= c.MinTokensPerSend && tokens <= c.MaxTokensPerSend
}

// FindPack ID ile paket bulur
func (c *Catalog) FindPack(id string) (TokenPack, bool) {
	for _, p := range c.TokenPacks {
		if p.ID == id {
			return p, true
		}
	}
	return TokenPack{}, false
}

// ThankYouMessage onaylı setten rastgele teşekkür mesajı seçer
func (c *Catalog) ThankYouMessage() string {
	return pick(c.Messages.ThankYou)
}

// TokenMessage onaylı setten rastgele token mesajı seçer
func (c *Catalog) TokenMessage() string {
	return pick(c.Messages.Token)
}

func pick(set []string) string {
	if len(set) == 0 {
		return ""
	}
	return set[rand.Intn(len(set))]
}
