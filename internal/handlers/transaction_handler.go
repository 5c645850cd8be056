package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/onerilhan/thankatech-ledger/internal/interfaces"
	"github.com/onerilhan/thankatech-ledger/internal/middleware"
	"github.com/onerilhan/thankatech-ledger/internal/models"
	"github.com/onerilhan/thankatech-ledger/internal/utils"
)

// TransactionHandler ledger okuma isteklerini yönetir
type TransactionHandler struct {
	balanceService interfaces.BalanceServiceInterface
}

// NewTransactionHandler yeni handler oluşturur
func NewTransactionHandler(balanceService interfaces.BalanceServiceInterface) *TransactionHandler {
	return &TransactionHandler{balanceService: balanceService}
}

// GetHistory kullanıcının gönderdiği ve aldığı kayıtlar (protected)
func (h *TransactionHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	limit, offset := utils.Pagination(r, 10)

	transactions, err := h.balanceService.GetUserTransactions(r.Context(), claims.UserID, limit, offset)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"limit":        limit,
		"offset":       offset,
		"count":        len(transactions),
	}, "İşlem geçmişi başarıyla getirildi")

	log.Debug().
		Str("user_id", claims.UserID).
		Int("count", len(transactions)).
		Int("limit", limit).
		Int("offset", offset).
		Msg("İşlem geçmişi getirildi")
}

// GetTransaction ID ile kayıt; admin her kaydı, diğerleri sadece taraf oldukları kaydı görür
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	id := mux.Vars(r)["id"]

	var (
		tx  *models.Transaction
		err error
	)
	if middleware.HasPermission(claims.Role, middleware.PermViewAnyTransaction) {
		tx, err = h.balanceService.GetTransactionByID(r.Context(), id)
	} else {
		tx, err = h.balanceService.GetTransactionForUser(r.Context(), claims.UserID, id)
	}
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, tx, "İşlem getirildi")
}
