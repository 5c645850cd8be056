package errors

import "time"

// ErrorResponse tüm hata cevaplarının ortak JSON formatı
type ErrorResponse struct {
	Success   bool                   `json:"success"`
	Error     string                 `json:"error"`
	ErrorCode string                 `json:"error_code,omitempty"` // ör. daily_limit_reached
	Code      int                    `json:"code"`
	Timestamp string                 `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Stack     string                 `json:"stack,omitempty"` // sadece development
}

// PanicInfo yakalanan panic hakkında bilgi
type PanicInfo struct {
	Value     interface{}
	Stack     string
	RequestID string
	Method    string
	Path      string
	UserAgent string
	ClientIP  string
	Timestamp time.Time
}
