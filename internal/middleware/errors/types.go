package errors

// APIError HTTP status'u taşıyan hata; servis hataları (LedgerError) da bunu karşılar
type APIError interface {
	error
	Status() int
}

// CodedError istemcinin makine tarafından okunabilir hata kodu
type CodedError interface {
	ErrorCode() string
}

// AuthError authentication hatası
type AuthError struct {
	Message    string
	StatusCode int
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Status() int { return e.StatusCode }

// RBACError authorization hatası
type RBACError struct {
	Message    string
	StatusCode int
	Resource   string
	Action     string
}

func (e *RBACError) Error() string { return e.Message }

func (e *RBACError) Status() int { return e.StatusCode }

// ValidationError istek gövdesi veya parametre hatası
type ValidationError struct {
	Message    string
	StatusCode int
	Field      string
	Value      interface{}
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Status() int { return e.StatusCode }

// NewValidationError 400 dönen validation hatası
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Message: message, StatusCode: 400, Field: field, Value: value}
}

// RateLimitError istemci kovası boşaldığında döner
type RateLimitError struct {
	Message    string
	RetryAfter int // saniye
}

func (e *RateLimitError) Error() string { return e.Message }

func (e *RateLimitError) Status() int { return 429 }

func (e *RateLimitError) ErrorCode() string { return "rate_limited" }
