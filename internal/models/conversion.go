package models

import "time"

// ConversionRecord puan -> token dönüşüm kaydı (değişmez, sadece audit/geçmiş için)
type ConversionRecord struct {
	ID              string    `json:"id" db:"id"`
	UserID          string    `json:"user_id" db:"user_id"`
	PointsConverted int64     `json:"points_converted" db:"points_converted"`
	TokensGenerated int64     `json:"tokens_generated" db:"tokens_generated"`
	ConversionDate  time.Time `json:"conversion_date" db:"conversion_date"`
	ConversionRate  int64     `json:"conversion_rate" db:"conversion_rate"`
}
