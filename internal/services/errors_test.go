package services

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/onerilhan/thankatech-ledger/internal/db"
)

func TestLedgerError_Status(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ErrSelfThank.Status())
	assert.Equal(t, http.StatusNotFound, ErrTechnicianNotFound.Status())
	assert.Equal(t, http.StatusConflict, ErrDailyLimitReached.Status())
	assert.Equal(t, http.StatusUnprocessableEntity, ErrInsufficientTokens.Status())
	assert.Equal(t, http.StatusServiceUnavailable, ErrTryAgain.Status())
}

func TestLedgerError_IsMatchesByCode(t *testing.T) {
	err := invalidTokenAmount(5, 50)

	assert.ErrorIs(t, err, ErrInvalidTokenAmount)
	assert.NotErrorIs(t, err, ErrSelfSend)
	assert.Equal(t, "Token amount must be between 5 and 50", err.Error())
}

func TestTranslate(t *testing.T) {
	assert.Nil(t, translate("op", nil))

	// iş kuralı hatası sarılmış olsa da aynen döner
	wrapped := fmt.Errorf("unit: %w", ErrInsufficientPoints)
	assert.Same(t, ErrInsufficientPoints, translate("op", wrapped))

	contention := fmt.Errorf("deneme bitti: %w", db.ErrTxContention)
	assert.Same(t, ErrTryAgain, translate("op", contention))
	assert.Equal(t, "Please try again", translate("op", contention).Error())

	boom := errors.New("bağlantı koptu")
	err := translate("send_tokens", boom)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "send_tokens")
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", outcome(nil))
	assert.Equal(t, "daily_limit_reached", outcome(ErrDailyLimitReached))
	assert.Equal(t, "error", outcome(errors.New("x")))
}
