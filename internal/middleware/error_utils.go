package middleware

import (
	"github.com/onerilhan/thankatech-ledger/internal/middleware/errors"
)

// getErrorMessage status code'a göre custom mesaj, yoksa standart metin
func getErrorMessage(statusCode int, config *errors.ErrorConfig) string {
	if customMessage, exists := config.CustomErrorMap[statusCode]; exists {
		return customMessage
	}
	return statusText(statusCode)
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// truncateString string'i belirtilen uzunlukta keser
func truncateString(s string, maxLength int) string {
	if maxLength <= 3 || len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}
