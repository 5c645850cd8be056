package memory

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/onerilhan/thankatech-ledger/internal/models"
)

type seedProfile struct {
	ID      string `yaml:"id"`
	AuthUID string `yaml:"auth_uid"`
	Kind    string `yaml:"kind"`
	Name    string `yaml:"name"`
	Email   string `yaml:"email"`
	Points  int64  `yaml:"points"`
}

type seedBalance struct {
	UserID string `yaml:"user_id"`
	Tokens int64  `yaml:"tokens"`
}

type seedFile struct {
	Profiles []seedProfile `yaml:"profiles"`
	Balances []seedBalance `yaml:"balances"`
}

// LoadSeedFile geliştirme ortamı için profil ve bakiye yükler
func (s *Store) LoadSeedFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("seed dosyası okunamadı: %w", err)
	}
	return s.LoadSeed(data)
}

// LoadSeed YAML içeriğinden profil ve bakiye yükler
func (s *Store) LoadSeed(data []byte) error {
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("seed YAML parse edilemedi: %w", err)
	}

	for _, p := range seed.Profiles {
		kind := models.AccountKind(p.Kind)
		if _, ok := s.st.profiles[kind]; !ok {
			return fmt.Errorf("profil %s: bilinmeyen hesap tipi %q", p.ID, p.Kind)
		}
		if p.ID == "" {
			return fmt.Errorf("profil id boş olamaz")
		}
		s.PutProfile(&models.Profile{
			ID:            p.ID,
			AuthUID:       p.AuthUID,
			Kind:          kind,
			Name:          p.Name,
			Email:         p.Email,
			Points:        p.Points,
			TotalToaValue: decimal.Zero,
			TotalEarnings: decimal.Zero,
		})
	}

	for _, b := range seed.Balances {
		s.PutBalance(&models.Balance{
			UserID:         b.UserID,
			Tokens:         b.Tokens,
			TotalPurchased: b.Tokens,
			LastUpdated:    s.now(),
		})
	}
	return nil
}
