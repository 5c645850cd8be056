package middleware

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/onerilhan/thankatech-ledger/internal/auth"
	"github.com/onerilhan/thankatech-ledger/internal/middleware/errors"
)

// Permission tek bir yetki
type Permission string

const (
	PermSendAppreciation Permission = "send_appreciation"
	PermConvertPoints    Permission = "convert_points"
	PermViewOwnLedger    Permission = "view_own_ledger"

	PermViewAnyTransaction Permission = "view_any_transaction"
	PermReconcile          Permission = "reconcile"
)

// RolePermissions her rolün yetkileri
var RolePermissions = map[string][]Permission{
	auth.RoleCustomer: {
		PermSendAppreciation,
		PermConvertPoints,
		PermViewOwnLedger,
	},
	auth.RoleTechnician: {
		PermSendAppreciation,
		PermConvertPoints,
		PermViewOwnLedger,
	},
	auth.RoleAdmin: {
		PermSendAppreciation,
		PermConvertPoints,
		PermViewOwnLedger,
		PermViewAnyTransaction,
		PermReconcile,
	},
}

// RequirePermission claims'teki rolün yetkisi yoksa 403 döner
func RequirePermission(permission Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok {
				log.Error().
					Str("path", r.URL.Path).
					Msg("RBAC: User context not found - AuthMiddleware might be missing")
				WriteError(w, r, &errors.AuthError{Message: "Authentication required", StatusCode: http.StatusUnauthorized})
				return
			}

			role := getUserRole(claims)
			if !HasPermission(role, permission) {
				WriteError(w, r, &errors.RBACError{
					Message:    "Bu işlem için yetkiniz bulunmuyor",
					StatusCode: http.StatusForbidden,
					Resource:   r.URL.Path,
					Action:     r.Method,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin sadece admin rolü
func RequireAdmin() func(http.Handler) http.Handler {
	return RequirePermission(PermReconcile)
}

// HasPermission rolün yetkisi var mı
func HasPermission(role string, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}

// getUserRole token'da rol yoksa customer kabul edilir
func getUserRole(claims *auth.Claims) string {
	if claims.Role != "" {
		return claims.Role
	}
	log.Debug().Str("user_id", claims.UserID).Msg("Role not found in JWT claims, using default 'customer' role")
	return auth.RoleCustomer
}
