package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onerilhan/thankatech-ledger/internal/auth"
	"github.com/onerilhan/thankatech-ledger/internal/middleware/errors"
	"github.com/onerilhan/thankatech-ledger/internal/services"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errors.ErrorResponse {
	t.Helper()
	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestAuthMiddleware(t *testing.T) {
	manager := auth.NewManager("s3cret", time.Hour)
	token, err := manager.GenerateToken("uid-cust-1", auth.RoleCustomer)
	require.NoError(t, err)

	var seen *auth.Claims
	handler := AuthMiddleware(manager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFrom(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"header yok", "", http.StatusUnauthorized},
		{"yanlış format", "Token " + token, http.StatusUnauthorized},
		{"geçersiz token", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"geçerli", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/balances/current", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
	require.NotNil(t, seen)
	assert.Equal(t, "uid-cust-1", seen.UserID)
}

func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin()(http.HandlerFunc(okHandler))

	for role, want := range map[string]int{
		auth.RoleAdmin:      http.StatusOK,
		auth.RoleTechnician: http.StatusForbidden,
		"":                  http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/reconcile", nil)
		req = req.WithContext(WithClaims(req.Context(), &auth.Claims{UserID: "u", Role: role}))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, want, rec.Code, "role=%q", role)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/reconcile", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWriteError_LedgerError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/thank-you", nil)
	rec := httptest.NewRecorder()

	WriteError(rec, req, services.ErrDailyLimitReached)

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeError(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "Daily limit reached for this technician", resp.Error)
	assert.Equal(t, "daily_limit_reached", resp.ErrorCode)
}

func TestWriteError_UnknownErrorIsHidden(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler := ErrorHandlingMiddleware(errors.ProductionErrorConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, assert.AnError)
	}))
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, decodeError(t, rec).Error, assert.AnError.Error())
}

func TestErrorHandlingMiddleware_RecoversPanic(t *testing.T) {
	handler := ErrorHandlingMiddleware(errors.DevelopmentErrorConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("beklenmedik durum")
	}))
	rec := httptest.NewRecorder()

	assert.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, decodeError(t, rec).Stack)
}

func TestErrorHandlingMiddleware_APIErrorPanic(t *testing.T) {
	handler := ErrorHandlingMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(&errors.RBACError{Message: "yasak", StatusCode: http.StatusForbidden})
	}))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "yasak", decodeError(t, rec).Error)
}

func TestRequestLoggingMiddleware_SetsRequestID(t *testing.T) {
	handler := RequestLoggingMiddleware(nil)(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tokens/packs", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}

// TestRequestLogger_CarriesUserID auth sonrası context logger'ı request_id ve user_id taşır
func TestRequestLogger_CarriesUserID(t *testing.T) {
	// Arrange
	manager := auth.NewManager("s3cret", time.Hour)
	token, err := manager.GenerateToken("uid-tech-1", auth.RoleTechnician)
	require.NoError(t, err)

	var buf bytes.Buffer
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := zerolog.Ctx(r.Context()).Output(&buf)
		l.Info().Msg("points converted")
	})
	handler := RequestLoggingMiddleware(nil)(AuthMiddleware(manager)(inner))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/points/convert", nil)
	req.Header.Set("X-Request-ID", "req-7")
	req.Header.Set("Authorization", "Bearer "+token)

	// Act
	handler.ServeHTTP(httptest.NewRecorder(), req)

	// Assert
	assert.Contains(t, buf.String(), `"request_id":"req-7"`)
	assert.Contains(t, buf.String(), `"user_id":"uid-tech-1"`)
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	router := mux.NewRouter()
	router.Use(MetricsMiddleware(nil))
	var route string
	router.HandleFunc("/transactions/{id}", func(w http.ResponseWriter, r *http.Request) {
		route = routeTemplate(r)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transactions/abc-123", nil))

	assert.Equal(t, "/transactions/{id}", route)
}

func TestNotFoundJSONHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFoundJSONHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimitMiddleware(&RateLimitConfig{
		RequestsPerMinute: 1,
		Burst:             2,
		SkipPaths:         []string{"/health"},
	})
	defer rl.Stop()
	handler := rl.Handler()(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/balances/current", nil)
		req.RemoteAddr = "198.51.100.1:1000"
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, req)
		codes = append(codes, last.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
	assert.Equal(t, "60", last.Header().Get("Retry-After"))
	assert.Contains(t, last.Body.String(), `"error_code":"rate_limited"`)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "198.51.100.1:1000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// TestRateLimitMiddleware_WriteBucketSeparate POST'lar okuma kovasını tüketmez
func TestRateLimitMiddleware_WriteBucketSeparate(t *testing.T) {
	rl := NewRateLimitMiddleware(&RateLimitConfig{
		RequestsPerMinute:      10,
		Burst:                  5,
		WriteRequestsPerMinute: 1,
		WriteBurst:             1,
	})
	defer rl.Stop()
	handler := rl.Handler()(http.HandlerFunc(okHandler))

	send := func(method string) int {
		req := httptest.NewRequest(method, "/api/v1/tokens/send", nil)
		req.RemoteAddr = "203.0.113.7:4000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send(http.MethodPost))
	assert.Equal(t, http.StatusTooManyRequests, send(http.MethodPost))
	assert.Equal(t, http.StatusOK, send(http.MethodGet))
}
