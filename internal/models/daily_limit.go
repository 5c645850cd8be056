package models

import "time"

// DailyLimit gönderen başına günlük ücretsiz teşekkür kaydı.
// Aynı gün içinde ThankedTechnicians sadece büyür.
type DailyLimit struct {
	UserID             string    `json:"user_id" db:"user_id"`
	Date               string    `json:"date" db:"limit_date"` // YYYY-MM-DD
	ThankedTechnicians []string  `json:"thanked_technicians" db:"thanked_technicians"`
	MaxDailyThanks     int64     `json:"max_daily_thanks" db:"max_daily_thanks"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// HasThanked teknisyen bugün zaten teşekkür aldı mı
func (d *DailyLimit) HasThanked(technicianID string) bool {
	for _, id := range d.ThankedTechnicians {
		if id == technicianID {
			return true
		}
	}
	return false
}

// DateLayout günlük anahtar formatı
const DateLayout = "2006-01-02"
