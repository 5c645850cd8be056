package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/onerilhan/thankatech-ledger/internal/db"
)

// ErrorKind kullanıcıya dönen hata sınıfı
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindLimit        ErrorKind = "limit"
	KindInsufficient ErrorKind = "insufficient"
	KindContention   ErrorKind = "contention"
)

// LedgerError iş kuralı hatası; middleware'in APIError arayüzünü karşılar
type LedgerError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

// Error error interface implementation'ı
func (e *LedgerError) Error() string {
	return e.Message
}

// Status HTTP status kodu
func (e *LedgerError) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindLimit:
		return http.StatusConflict
	case KindInsufficient:
		return http.StatusUnprocessableEntity
	case KindContention:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode istemciye dönen makine okunur kod
func (e *LedgerError) ErrorCode() string {
	return e.Code
}

// Is aynı Code'a sahip hataları eşit sayar (mesaj dinamik olabilir)
func (e *LedgerError) Is(target error) bool {
	t, ok := target.(*LedgerError)
	return ok && t.Code == e.Code
}

var (
	ErrSelfThank          = &LedgerError{KindValidation, "self_thank", "You cannot thank yourself"}
	ErrSelfSend           = &LedgerError{KindValidation, "self_send", "You cannot send tokens to yourself"}
	ErrInvalidTokenAmount = &LedgerError{KindValidation, "invalid_token_amount", "Token amount is out of range"}
	ErrMinConversion      = &LedgerError{KindValidation, "min_conversion", "Minimum conversion not reached"}
	ErrConversionMultiple = &LedgerError{KindValidation, "conversion_multiple", "Points must be a multiple of the conversion rate"}
	ErrInvalidPurchase    = &LedgerError{KindValidation, "invalid_purchase", "Invalid purchase"}

	ErrTechnicianNotFound  = &LedgerError{KindNotFound, "technician_not_found", "Technician not found"}
	ErrSenderNotFound      = &LedgerError{KindNotFound, "sender_not_found", "Sender not found"}
	ErrAccountNotFound     = &LedgerError{KindNotFound, "account_not_found", "Account not found"}
	ErrTransactionNotFound = &LedgerError{KindNotFound, "transaction_not_found", "Transaction not found"}

	ErrDailyLimitReached    = &LedgerError{KindLimit, "daily_limit_reached", "Daily limit reached for this technician"}
	ErrDailyThanksExhausted = &LedgerError{KindLimit, "daily_thanks_exhausted", "Daily thank-you limit reached"}

	ErrInsufficientTokens = &LedgerError{KindInsufficient, "insufficient_tokens", "Insufficient token balance"}
	ErrInsufficientPoints = &LedgerError{KindInsufficient, "insufficient_points", "Insufficient points"}

	ErrTryAgain = &LedgerError{KindContention, "try_again", "Please try again"}
)

func invalidTokenAmount(min, max int64) *LedgerError {
	return &LedgerError{KindValidation, ErrInvalidTokenAmount.Code, fmt.Sprintf("Token amount must be between %d and %d", min, max)}
}

func minConversion(min int64) *LedgerError {
	return &LedgerError{KindValidation, ErrMinConversion.Code, fmt.Sprintf("Minimum conversion is %d points", min)}
}

func conversionMultiple(rate int64) *LedgerError {
	return &LedgerError{KindValidation, ErrConversionMultiple.Code, fmt.Sprintf("Points must be a multiple of %d", rate)}
}

func invalidPurchase(msg string) *LedgerError {
	return &LedgerError{KindValidation, ErrInvalidPurchase.Code, msg}
}

// translate unit'ten dönen hatayı kullanıcıya dönecek hale getirir.
// İş kuralı hataları aynen, tekrar deneme limiti "Please try again" olarak döner.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}

	var le *LedgerError
	if errors.As(err, &le) {
		return le
	}
	if errors.Is(err, db.ErrTxContention) {
		log.Warn().Err(err).Str("operation", op).Msg("⚠️ Transaction çakışması, istemci tekrar denemeli")
		return ErrTryAgain
	}

	log.Error().Err(err).Str("operation", op).Msg("❌ Ledger işlemi başarısız")
	return fmt.Errorf("%s başarısız: %w", op, err)
}

// outcome metrics etiketi
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	var le *LedgerError
	if errors.As(err, &le) {
		return le.Code
	}
	return "error"
}
