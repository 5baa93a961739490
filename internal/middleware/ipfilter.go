package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/threedv/saiban/internal/config"
	"github.com/threedv/saiban/internal/modules/serializer"
	"go.uber.org/zap"
)

// IPFilter restricts the whole API to an allowlist of office addresses.
// Loopback is always allowed so local development and health probes work.
// Behind the reverse proxy the client address comes from X-Forwarded-For
// (first hop).
func IPFilter(cfg *config.Config, log *zap.Logger) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(cfg.IPFilter.AllowedIPs))
	for _, ip := range cfg.IPFilter.AllowedIPs {
		allowed[strings.TrimSpace(ip)] = struct{}{}
	}

	return func(c *gin.Context) {
		if !cfg.IPFilter.Enabled {
			c.Next()
			return
		}

		remote := clientIP(c)
		if remote == nil {
			log.Warn("ip filter: unparseable client address", zap.String("remote_addr", c.Request.RemoteAddr))
			c.AbortWithStatusJSON(http.StatusForbidden, serializer.ForbiddenErr("アクセスが拒否されました"))
			return
		}

		if remote.IsLoopback() {
			c.Next()
			return
		}

		if _, ok := allowed[remote.String()]; ok {
			c.Next()
			return
		}

		log.Warn("ip filter: blocked", zap.String("ip", remote.String()))
		c.AbortWithStatusJSON(http.StatusForbidden, serializer.ForbiddenErr("アクセスが拒否されました"))
	}
}

func clientIP(c *gin.Context) net.IP {
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if ip := net.ParseIP(first); ip != nil {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return net.ParseIP(c.Request.RemoteAddr)
	}
	return net.ParseIP(host)
}
