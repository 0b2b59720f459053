package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"

	"carebook/config"
)

// getClientIP resolves the address rate limits are keyed on. Forwarding
// headers are only consulted when TRUST_PROXY_HEADERS is set; without a
// trusted reverse proxy in front they are attacker-controlled and would let
// a caller rotate limiter buckets at will.
func getClientIP(c *gin.Context) string {
	if config.AppConfig.TrustProxyHeaders {
		// X-Forwarded-For carries the whole proxy chain; the originating
		// client is the first entry.
		if chain := c.GetHeader("X-Forwarded-For"); chain != "" {
			if first := strings.TrimSpace(strings.SplitN(chain, ",", 2)[0]); first != "" {
				return first
			}
		}
		if realIP := strings.TrimSpace(c.GetHeader("X-Real-IP")); realIP != "" {
			return realIP
		}
	}

	remote := c.Request.RemoteAddr
	if host, _, err := net.SplitHostPort(remote); err == nil {
		return host
	}
	return remote
}
