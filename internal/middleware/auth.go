package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/onerilhan/thankatech-ledger/internal/auth"
	"github.com/onerilhan/thankatech-ledger/internal/middleware/errors"
)

// ContextKey middleware'de context için key tipi
type ContextKey string

const UserContextKey ContextKey = "user"

// TokenValidator bearer token'ı claims'e çevirir
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
}

// AuthMiddleware bearer token'dan çağıranın kimliğini ve rolünü context'e koyar
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteError(w, r, &errors.AuthError{Message: "Authorization header gerekli", StatusCode: http.StatusUnauthorized})
				return
			}

			tokenParts := strings.Fields(authHeader)
			if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") {
				WriteError(w, r, &errors.AuthError{Message: "Authorization format: 'Bearer <token>'", StatusCode: http.StatusUnauthorized})
				return
			}

			claims, err := validator.ValidateToken(tokenParts[1])
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("Token doğrulama başarısız")
				WriteError(w, r, &errors.AuthError{Message: "Geçersiz token", StatusCode: http.StatusUnauthorized})
				return
			}

			zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("user_id", claims.UserID)
			})

			log.Debug().
				Str("user_id", claims.UserID).
				Str("role", claims.Role).
				Str("path", r.URL.Path).
				Msg("🔐 Authentication successful")

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// WithClaims claims'i context'e ekler
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

// ClaimsFrom context'teki claims
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*auth.Claims)
	return claims, ok && claims != nil
}
