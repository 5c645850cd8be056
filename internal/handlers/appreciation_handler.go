package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/onerilhan/thankatech-ledger/internal/interfaces"
	"github.com/onerilhan/thankatech-ledger/internal/middleware"
	"github.com/onerilhan/thankatech-ledger/internal/middleware/errors"
	"github.com/onerilhan/thankatech-ledger/internal/models"
)

// AppreciationHandler teşekkür ve token gönderim isteklerini yönetir
type AppreciationHandler struct {
	service interfaces.AppreciationServiceInterface
}

// NewAppreciationHandler yeni handler oluşturur
func NewAppreciationHandler(service interfaces.AppreciationServiceInterface) *AppreciationHandler {
	return &AppreciationHandler{service: service}
}

// SendThankYou ücretsiz teşekkür endpoint'i (protected)
func (h *AppreciationHandler) SendThankYou(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	var req models.SendThankYouRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.TechnicianID = strings.TrimSpace(req.TechnicianID)
	if req.TechnicianID == "" {
		middleware.WriteError(w, r, errors.NewValidationError("technician_id", "technician_id gerekli", req.TechnicianID))
		return
	}

	result, err := h.service.SendFreeThankYou(r.Context(), claims.UserID, req.TechnicianID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, result, result.Message)

	log.Info().
		Str("user_id", claims.UserID).
		Str("technician_id", req.TechnicianID).
		Str("transaction_id", result.TransactionID).
		Msg("🙏 Teşekkür gönderildi")
}

// SendTokens ücretli TOA gönderim endpoint'i (protected)
func (h *AppreciationHandler) SendTokens(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	var req models.SendTokensRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.TechnicianID = strings.TrimSpace(req.TechnicianID)
	if req.TechnicianID == "" {
		middleware.WriteError(w, r, errors.NewValidationError("technician_id", "technician_id gerekli", req.TechnicianID))
		return
	}

	// miktar aralığı servis tarafında kontrol edilir
	result, err := h.service.SendTokens(r.Context(), claims.UserID, req.TechnicianID, req.Tokens)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, result, result.Message)

	log.Info().
		Str("user_id", claims.UserID).
		Str("technician_id", req.TechnicianID).
		Int64("tokens", req.Tokens).
		Str("transaction_id", result.TransactionID).
		Msg("💸 Token gönderildi")
}

// ThankYouStatus bugün bu teknisyene teşekkür edildi mi (protected)
func (h *AppreciationHandler) ThankYouStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	technicianID := mux.Vars(r)["technicianId"]
	status, err := h.service.ThankYouStatus(r.Context(), claims.UserID, technicianID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, status, "Teşekkür durumu getirildi")
}
