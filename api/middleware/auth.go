package middleware

import (
	"net/http"
	"strings"

	"github.com/rmarasigan/printshop-pos-backend/api/responses"
	pkgauth "github.com/rmarasigan/printshop-pos-backend/pkg/auth"
	"github.com/rmarasigan/printshop-pos-backend/pkg/config"
	pkgerrors "github.com/rmarasigan/printshop-pos-backend/pkg/errors"
	"github.com/rmarasigan/printshop-pos-backend/pkg/logger"
)

// Auth validates the cashier bearer token and seeds the request context with
// the cashier, terminal and role claims. Tokens are minted by the shop's auth
// provider; this service only verifies them.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.TerminalID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "token missing terminal id"))
				return
			}

			ctx := WithCashierID(r.Context(), claims.CashierID.String())
			ctx = WithTerminalID(ctx, claims.TerminalID)
			ctx = WithRole(ctx, string(claims.Role))

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"cashier_id":  claims.CashierID.String(),
					"terminal_id": claims.TerminalID,
					"actor_role":  string(claims.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
