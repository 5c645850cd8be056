package middleware

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/onerilhan/thankatech-ledger/internal/middleware/errors"
	"github.com/onerilhan/thankatech-ledger/internal/utils"
)

type errorConfigKey struct{}

// ErrorHandlingMiddleware panic recovery yapar ve config'i WriteError için context'e koyar
func ErrorHandlingMiddleware(config *errors.ErrorConfig) func(http.Handler) http.Handler {
	if config == nil {
		config = errors.DefaultErrorConfig()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = r.WithContext(context.WithValue(r.Context(), errorConfigKey{}, config))

			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}

				// APIError panic'i normal hata gibi cevaplanır
				if apiErr, ok := recovered.(errors.APIError); ok {
					WriteError(w, r, apiErr)
					return
				}

				panicInfo := &errors.PanicInfo{
					Value:     recovered,
					Stack:     string(debug.Stack()),
					RequestID: w.Header().Get("X-Request-ID"),
					Method:    r.Method,
					Path:      r.URL.Path,
					UserAgent: r.Header.Get("User-Agent"),
					ClientIP:  utils.GetClientIP(r),
					Timestamp: time.Now(),
				}
				logPanic(panicInfo, config)

				for key := range w.Header() {
					if !contains(config.IncludeHeaders, key) {
						w.Header().Del(key)
					}
				}

				stack := ""
				if config.ShowStackTrace {
					stack = panicInfo.Stack
				}
				sendErrorResponse(w, r, http.StatusInternalServerError, getErrorMessage(http.StatusInternalServerError, config), "", config, stack)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// WriteError hatayı standart JSON formatında yazar.
// APIError kendi status ve mesajıyla, diğer hatalar 500 ve genel mesajla döner.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	config, ok := r.Context().Value(errorConfigKey{}).(*errors.ErrorConfig)
	if !ok {
		config = errors.DefaultErrorConfig()
	}

	var apiErr errors.APIError
	if !stderrors.As(err, &apiErr) {
		log.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("❌ Beklenmeyen hata")

		message := getErrorMessage(http.StatusInternalServerError, config)
		if config.ShowStackTrace {
			message = err.Error()
		}
		sendErrorResponse(w, r, http.StatusInternalServerError, message, "", config, "")
		return
	}

	logAPIError(apiErr, r)

	code := ""
	var coded errors.CodedError
	if stderrors.As(err, &coded) {
		code = coded.ErrorCode()
	}
	sendErrorResponse(w, r, apiErr.Status(), apiErr.Error(), code, config, "")
}

// sendErrorResponse standart hata cevabını gönderir
func sendErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, message, code string, config *errors.ErrorConfig, stack string) {
	response := errors.ErrorResponse{
		Success:   false,
		Error:     truncateString(message, config.MaxErrorLength),
		ErrorCode: code,
		Code:      statusCode,
		Timestamp: time.Now().Format(time.RFC3339),
		RequestID: w.Header().Get("X-Request-ID"),
		Stack:     stack,
		Details: map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().Err(err).Str("request_id", response.RequestID).Msg("Error response JSON encoding failed")
		return
	}

	logError(r, statusCode, message, response.RequestID)
}

// ErrorHandlingMiddlewareForEnv ortama göre config ile middleware döner
func ErrorHandlingMiddlewareForEnv(env string) func(http.Handler) http.Handler {
	return ErrorHandlingMiddleware(errors.ForEnv(env))
}

func statusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP Error %d", code)
}
