package middleware

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/onerilhan/thankatech-ledger/internal/middleware/errors"
	"github.com/onerilhan/thankatech-ledger/internal/utils"
)

// NotFoundJSONHandler router'ın 404 cevabı
func NotFoundJSONHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Warn().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("client_ip", utils.GetClientIP(r)).
			Msg("404 Not Found")
		sendErrorResponse(w, r, http.StatusNotFound, "Endpoint bulunamadı.", "", errors.DefaultErrorConfig(), "")
	}
}

// MethodNotAllowedJSONHandler router'ın 405 cevabı
func MethodNotAllowedJSONHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Warn().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("405 Method Not Allowed")
		sendErrorResponse(w, r, http.StatusMethodNotAllowed, "HTTP metodu bu endpoint için desteklenmiyor.", "", errors.DefaultErrorConfig(), "")
	}
}
