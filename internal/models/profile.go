package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind hesap tipi; aynı kişi rolüne göre birden fazla tabloda olabilir
type AccountKind string

const (
	KindTechnician AccountKind = "technician"
	KindCustomer   AccountKind = "customer"
	KindAdmin      AccountKind = "admin"
)

// ResolutionOrder kimlik çözümlemede aranacak tablo sırası
var ResolutionOrder = []AccountKind{KindTechnician, KindCustomer, KindAdmin}

// Profile müşteri, teknisyen veya admin hesabı. Points burada gömülü tutulur.
type Profile struct {
	ID                  string          `json:"id" db:"id"`
	AuthUID             string          `json:"auth_uid,omitempty" db:"auth_uid"` // harici auth kimliği
	Kind                AccountKind     `json:"kind" db:"-"`
	Name                string          `json:"name" db:"name"`
	Email               string          `json:"email" db:"email"`
	Points              int64           `json:"points" db:"points"`
	ThankYousSent       int64           `json:"thank_yous_sent" db:"thank_yous_sent"`
	TokensSent          int64           `json:"tokens_sent" db:"tokens_sent"`
	TotalThankYous      int64           `json:"total_thank_yous" db:"total_thank_yous"`
	TotalTokensReceived int64           `json:"total_tokens_received" db:"total_tokens_received"`
	TotalToaValue       decimal.Decimal `json:"total_toa_value" db:"total_toa_value"`
	TotalEarnings       decimal.Decimal `json:"total_earnings" db:"total_earnings"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// Identities profilin bilinen tüm kimlikleri (birincil id + bağlı auth uid)
func (p *Profile) Identities() []string {
	if p.AuthUID == "" || p.AuthUID == p.ID {
		return []string{p.ID}
	}
	return []string{p.ID, p.AuthUID}
}

// LedgerKey bakiye, günlük limit ve ledger satırlarında kullanılan tek kimlik.
// Bağlı auth uid varsa o, yoksa profil id; ödeme metadata'sındaki user_id ile aynı biçim.
func (p *Profile) LedgerKey() string {
	if p.AuthUID != "" {
		return p.AuthUID
	}
	return p.ID
}

// Matches verilen kimlik bu profile mi ait
func (p *Profile) Matches(identity string) bool {
	if identity == "" {
		return false
	}
	return p.ID == identity || p.AuthUID == identity
}

// ResolvedAccount kimlik çözümlemesinin sonucu: {kind, profile}
type ResolvedAccount struct {
	Kind    AccountKind
	Profile *Profile
}

// ProfileDelta tek bir profil üzerinde atomik artışlar
type ProfileDelta struct {
	Points              int64
	ThankYousSent       int64
	TokensSent          int64
	TotalThankYous      int64
	TotalTokensReceived int64
	TotalToaValue       decimal.Decimal
	TotalEarnings       decimal.Decimal
}
