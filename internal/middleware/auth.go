package middleware

import (
	"net/http"
	"strings"

	"catalog-service/internal/policy"
	"catalog-service/pkg/jwtutil"
	"catalog-service/pkg/logger"
	"catalog-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const roleKey = "user_role"

// IdentityMiddleware resolves the caller role from an optional bearer token. Requests
// without a token are anonymous; a token that does not validate is rejected.
func IdentityMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			c.Set(roleKey, policy.Anonymous)
			return next(c)
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			prometheus.RecordAuth(false)
			return c.JSON(http.StatusUnauthorized, echo.Map{
				"error": "invalid authorization format, expected Bearer token",
				"code":  "unauthorized",
			})
		}

		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Warn("Invalid JWT token", zap.Error(err))
			prometheus.RecordAuth(false)
			return c.JSON(http.StatusUnauthorized, echo.Map{
				"error": "invalid or expired token",
				"code":  "unauthorized",
			})
		}
		prometheus.RecordAuth(true)

		role := policy.ParseRole(claims.RoleClaim())
		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set(roleKey, role)

		log.Debug("Request authenticated",
			zap.Uint("user_id", claims.UserID),
			zap.String("role", role.String()))
		return next(c)
	}
}

// RoleFromContext returns the caller role; requests that skipped the identity middleware
// are anonymous
func RoleFromContext(c echo.Context) policy.Role {
	if role, ok := c.Get(roleKey).(policy.Role); ok {
		return role
	}
	return policy.Anonymous
}
