package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/onerilhan/thankatech-ledger/internal/interfaces"
	"github.com/onerilhan/thankatech-ledger/internal/middleware"
)

// BalanceHandler balance HTTP isteklerini yönetir
type BalanceHandler struct {
	balanceService interfaces.BalanceServiceInterface
}

// NewBalanceHandler yeni handler oluşturur
func NewBalanceHandler(balanceService interfaces.BalanceServiceInterface) *BalanceHandler {
	return &BalanceHandler{balanceService: balanceService}
}

// GetCurrentBalance kullanıcının mevcut token bakiyesi ve puanları (protected)
func (h *BalanceHandler) GetCurrentBalance(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	summary, err := h.balanceService.GetBalance(r.Context(), claims.UserID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, summary, "Bakiye bilgisi başarıyla getirildi")

	log.Debug().
		Str("user_id", claims.UserID).
		Int64("tokens", summary.Balance.Tokens).
		Int64("points", summary.Points).
		Msg("Bakiye bilgisi getirildi")
}
