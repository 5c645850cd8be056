package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/onerilhan/thankatech-ledger/internal/interfaces"
	"github.com/onerilhan/thankatech-ledger/internal/middleware"
	"github.com/onerilhan/thankatech-ledger/internal/models"
	"github.com/onerilhan/thankatech-ledger/internal/utils"
)

// ConversionHandler puan -> TOA dönüşüm isteklerini yönetir
type ConversionHandler struct {
	service interfaces.ConversionServiceInterface
}

// NewConversionHandler yeni handler oluşturur
func NewConversionHandler(service interfaces.ConversionServiceInterface) *ConversionHandler {
	return &ConversionHandler{service: service}
}

// Convert puanları token'a çevirir (protected)
func (h *ConversionHandler) Convert(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	var req models.ConvertPointsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.service.ConvertPointsToTOA(r.Context(), claims.UserID, req.Points)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, result, "Puanlar başarıyla dönüştürüldü")

	log.Info().
		Str("user_id", claims.UserID).
		Int64("points", req.Points).
		Int64("tokens", result.TokensGenerated).
		Msg("🔄 Puan dönüşümü tamamlandı")
}

// GetConversions kullanıcının dönüşüm geçmişi (protected)
func (h *ConversionHandler) GetConversions(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	limit, offset := utils.Pagination(r, 10)

	records, err := h.service.GetConversions(r.Context(), claims.UserID, limit, offset)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"conversions": records,
		"limit":       limit,
		"offset":      offset,
		"count":       len(records),
	}, "Dönüşüm geçmişi getirildi")
}
