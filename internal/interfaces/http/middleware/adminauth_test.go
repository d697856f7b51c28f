package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enverge/internal/shared/logger"
)

const adminSecret = "test-secret"

func newAdminRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := NewAdminAuth(adminSecret, logger.NewLogger())

	r := gin.New()
	r.GET("/probe", auth.Require(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func signToken(t *testing.T, secret string, expiry time.Time) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "operator",
		"exp": expiry.Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAdminAuthRequire(t *testing.T) {
	r := newAdminRouter()

	probe := func(authorization string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("valid token", func(t *testing.T) {
		token := signToken(t, adminSecret, time.Now().Add(time.Hour))
		assert.Equal(t, http.StatusOK, probe("Bearer "+token).Code)
	})

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, probe("").Code)
	})

	t.Run("not a bearer scheme", func(t *testing.T) {
		token := signToken(t, adminSecret, time.Now().Add(time.Hour))
		assert.Equal(t, http.StatusUnauthorized, probe("Basic "+token).Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signToken(t, "other-secret", time.Now().Add(time.Hour))
		assert.Equal(t, http.StatusUnauthorized, probe("Bearer "+token).Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, adminSecret, time.Now().Add(-time.Hour))
		assert.Equal(t, http.StatusUnauthorized, probe("Bearer "+token).Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, probe("Bearer not.a.jwt").Code)
	})
}
