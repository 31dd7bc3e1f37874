package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	echo "github.com/labstack/echo/v4"
)

// BearerAuth authenticates requests against the single configured token.
// The header must be exactly "Bearer <token>"; any other shape is 403.
// The expected token is never echoed back or logged.
func BearerAuth(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Request().Header.Get("Authorization")
			got, ok := strings.CutPrefix(h, "Bearer ")
			if h == "" || !ok || got == "" {
				return c.JSON(http.StatusForbidden, map[string]string{
					"error":   "Forbidden",
					"details": "missing or malformed Authorization header (Bearer token required)",
				})
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				return c.JSON(http.StatusForbidden, map[string]string{
					"error":   "Forbidden",
					"details": "invalid token",
				})
			}
			return next(c)
		}
	}
}
