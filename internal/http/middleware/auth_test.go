package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	echo "github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestBearerAuth(t *testing.T) {
	e := echo.New()
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, BearerAuth("s3cret"))

	tests := []struct {
		name string
		auth string
		code int
	}{
		{"no header", "", http.StatusForbidden},
		{"wrong scheme", "Basic s3cret", http.StatusForbidden},
		{"bare token", "s3cret", http.StatusForbidden},
		{"empty bearer", "Bearer ", http.StatusForbidden},
		{"wrong token", "Bearer nope", http.StatusForbidden},
		{"prefix of token", "Bearer s3cre", http.StatusForbidden},
		{"exact token", "Bearer s3cret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.code, rec.Code)
			if tt.code == http.StatusForbidden {
				assert.NotContains(t, rec.Body.String(), "s3cret")
			}
		})
	}
}
