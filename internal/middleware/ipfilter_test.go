package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/threedv/saiban/internal/config"
	"go.uber.org/zap"
)

func newIPFilterRouter(enabled bool, allowed []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.IPFilter.Enabled = enabled
	cfg.IPFilter.AllowedIPs = allowed

	r := gin.New()
	r.Use(IPFilter(cfg, zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func doRequest(r *gin.Engine, remoteAddr, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIPFilter(t *testing.T) {
	t.Run("disabled passes everything", func(t *testing.T) {
		r := newIPFilterRouter(false, nil)
		w := doRequest(r, "203.0.113.50:1234", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("allowlisted address passes", func(t *testing.T) {
		r := newIPFilterRouter(true, []string{"203.0.113.50"})
		w := doRequest(r, "203.0.113.50:1234", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unlisted address is blocked", func(t *testing.T) {
		r := newIPFilterRouter(true, []string{"203.0.113.50"})
		w := doRequest(r, "198.51.100.7:1234", "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("loopback is always allowed", func(t *testing.T) {
		r := newIPFilterRouter(true, nil)
		w := doRequest(r, "127.0.0.1:1234", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("first forwarded hop wins", func(t *testing.T) {
		r := newIPFilterRouter(true, []string{"203.0.113.50"})
		w := doRequest(r, "10.0.0.1:1234", "203.0.113.50, 10.0.0.1")
		assert.Equal(t, http.StatusOK, w.Code)

		w = doRequest(r, "10.0.0.1:1234", "198.51.100.7, 203.0.113.50")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("allowlist entries are trimmed", func(t *testing.T) {
		r := newIPFilterRouter(true, []string{" 203.0.113.50 "})
		w := doRequest(r, "203.0.113.50:1234", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
