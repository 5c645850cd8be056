package repository

import "errors"

var (
	// ErrNotFound kayıt bulunamadı
	ErrNotFound = errors.New("kayıt bulunamadı")

	// ErrInsufficientTokens koşullu debit eşleşmedi
	ErrInsufficientTokens = errors.New("yetersiz token bakiyesi")

	// ErrInsufficientPoints koşullu puan düşümü eşleşmedi
	ErrInsufficientPoints = errors.New("yetersiz puan")
)

// scanner *sql.Row ve *sql.Rows ortak yüzü
type scanner interface {
	Scan(dest ...any) error
}
