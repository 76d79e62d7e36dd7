package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"inventory-service/internal/model"
	"inventory-service/pkg/database"
	"inventory-service/pkg/jwtutil"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware validates the session token and binds the tenant record
// store for this request. The store is re-derived from the token's stored
// location on every request — never from a process-wide default and never by
// re-querying the tenant directory — so interleaved requests for different
// tenants cannot cross-contaminate.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Error("Missing Authorization header")
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Error("Invalid Authorization header format")
			prometheus.RecordAuthError("invalid_auth_format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Error("Invalid session token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		role, ok := model.ParseRole(claims.Role)
		if !ok {
			log.Error("Session token carries unknown role", zap.String("role", claims.Role))
			prometheus.RecordAuthError("invalid_role")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		db, err := database.Open(claims.StoreLocation)
		if err != nil {
			// The detailed cause stays server-side; the client only
			// learns the store is unavailable.
			log.Error("Tenant store unreachable",
				zap.String("access_code", claims.AccessCode),
				zap.String("location", claims.StoreLocation),
				zap.Error(err))
			prometheus.RecordAuthError("store_unavailable")
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "store unavailable"})
		}

		c.Set(database.ContextKey, db)
		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("role", role)
		c.Set("access_code", claims.AccessCode)

		c.Set("logger", log.With(
			zap.Uint("user_id", claims.UserID),
			zap.String("access_code", claims.AccessCode),
		))

		return next(c)
	}
}

// RequireAdmin short-circuits with a distinct forbidden outcome before any
// guarded operation runs. The role set is closed; anything but admin is
// rejected explicitly.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		role, ok := c.Get("role").(model.Role)
		if !ok {
			log.Error("Missing role in context")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}

		switch role {
		case model.RoleAdmin:
			return next(c)
		case model.RoleEmployee:
			log.Warn("Forbidden: admin role required")
			prometheus.RecordAuthError("forbidden")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		default:
			log.Error("Unknown role in context", zap.String("role", string(role)))
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}
}

// TenantAdminMiddleware gates the tenant directory management surface behind
// a single shared secret configured out of band. This is a coarse gate, not
// per-user authorization.
func TenantAdminMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			provided := c.Request().Header.Get("X-Tenant-Admin-Secret")
			if secret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				log.Warn("Rejected tenant management request")
				prometheus.RecordAuthError("tenant_admin_secret")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid tenant admin secret"})
			}
			return next(c)
		}
	}
}
