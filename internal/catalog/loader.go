package catalog

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// fileCatalog YAML dosyasındaki override alanları (boş olanlar default kalır)
type fileCatalog struct {
	TokenPacks []TokenPack `yaml:"token_packs"`

	PricePerToken            string `yaml:"price_per_token"`
	TechnicianPayoutPerToken string `yaml:"technician_payout_per_token"`
	PlatformFeePerToken      string `yaml:"platform_fee_per_token"`

	FreeThankYouPoints  *int64 `yaml:"free_thank_you_points"`
	PaidRecipientPoints *int64 `yaml:"paid_recipient_points"`
	PaidSenderPoints    *int64 `yaml:"paid_sender_points"`

	ConversionRate      *int64 `yaml:"conversion_rate"`
	MinConversionPoints *int64 `yaml:"min_conversion_points"`

	MaxThanksPerTechnicianPerDay *int64 `yaml:"max_thanks_per_technician_per_day"`
	MaxDailyThanks               *int64 `yaml:"max_daily_thanks"`

	MinTokensPerSend *int64 `yaml:"min_tokens_per_send"`
	MaxTokensPerSend *int64 `yaml:"max_tokens_per_send"`

	Messages *Messages `yaml:"messages"`
}

// LoadFile default katalog üzerine YAML dosyasını uygular ve doğrular.
// path boşsa default katalog döner.
func LoadFile(path string) (*Catalog, error) {
	c := Default()
	if path == "" {
		return c, c.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("katalog dosyası okunamadı: %w", err)
	}
	if err := c.apply(data); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("katalog geçersiz: %w", err)
	}
	return c, nil
}

// Parse YAML içeriğini default katalog üzerine uygular
func Parse(data []byte) (*Catalog, error) {
	c := Default()
	if err := c.apply(data); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("katalog geçersiz: %w", err)
	}
	return c, nil
}

func (c *Catalog) apply(data []byte) error {
	var fc fileCatalog
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("katalog YAML parse edilemedi: %w", err)
	}

	if len(fc.TokenPacks) > 0 {
		c.TokenPacks = fc.TokenPacks
	}

	for _, d := range []struct {
		raw    string
		target *decimal.Decimal
		name   string
	}{
		{fc.PricePerToken, &c.PricePerToken, "price_per_token"},
		{fc.TechnicianPayoutPerToken, &c.TechnicianPayoutPerToken, "technician_payout_per_token"},
		{fc.PlatformFeePerToken, &c.PlatformFeePerToken, "platform_fee_per_token"},
	} {
		if d.raw == "" {
			continue
		}
		v, err := decimal.NewFromString(d.raw)
		if err != nil {
			return fmt.Errorf("%s geçersiz: %w", d.name, err)
		}
		*d.target = v
	}

	setInt(&c.FreeThankYouPoints, fc.FreeThankYouPoints)
	setInt(&c.PaidRecipientPoints, fc.PaidRecipientPoints)
	setInt(&c.PaidSenderPoints, fc.PaidSenderPoints)
	setInt(&c.ConversionRate, fc.ConversionRate)
	setInt(&c.MinConversionPoints, fc.MinConversionPoints)
	setInt(&c.MaxThanksPerTechnicianPerDay, fc.MaxThanksPerTechnicianPerDay)
	setInt(&c.MaxDailyThanks, fc.MaxDailyThanks)
	setInt(&c.MinTokensPerSend, fc.MinTokensPerSend)
	setInt(&c.MaxTokensPerSend, fc.MaxTokensPerSend)

	if fc.Messages != nil {
		if len(fc.Messages.ThankYou) > 0 {
			c.Messages.ThankYou = fc.Messages.ThankYou
		}
		if len(fc.Messages.Token) > 0 {
			c.Messages.Token = fc.Messages.Token
		}
	}
	return nil
}

func setInt(target *int64, v *int64) {
	if v != nil {
		*target = *v
	}
}
