package handlers

import (
	"net/http"

	"github.com/onerilhan/thankatech-ledger/internal/auth"
	"github.com/onerilhan/thankatech-ledger/internal/middleware"
	"github.com/onerilhan/thankatech-ledger/internal/middleware/errors"
	"github.com/onerilhan/thankatech-ledger/internal/utils"
)

// writeSuccess standart başarılı cevap formatı
func writeSuccess(w http.ResponseWriter, status int, data interface{}, message string) {
	utils.WriteJSON(w, status, map[string]interface{}{
		"success": true,
		"data":    data,
		"message": message,
	})
}

// callerClaims context'teki kullanıcı; yoksa 401 yazar
func callerClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		middleware.WriteError(w, r, &errors.AuthError{
			Message:    "Yetkilendirme hatası. Lütfen tekrar giriş yapın.",
			StatusCode: http.StatusUnauthorized,
		})
		return nil, false
	}
	return claims, true
}

// decodeBody JSON gövdeyi çözer; hata olursa 400 yazar
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := utils.DecodeJSON(w, r, dst); err != nil {
		middleware.WriteError(w, r, errors.NewValidationError("body", err.Error(), nil))
		return false
	}
	return true
}
