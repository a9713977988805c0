package middleware

import (
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
)

// CtxRealIPKey holds the resolved client address.
const CtxRealIPKey = "real_ip"

// proxyHeaders are consulted in order; the first parsable address wins.
// X-Forwarded-For contributes its left-most entry, the original client.
var proxyHeaders = []string{"CF-Connecting-IP", "X-Real-IP", "X-Forwarded-For"}

func firstAddr(v string) (netip.Addr, bool) {
	first, _, _ := strings.Cut(v, ",")
	addr, err := netip.ParseAddr(strings.TrimSpace(first))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

// RealIP resolves the client address once per request and stores it under
// CtxRealIPKey for the rate limiter, presence tracking and reset emails.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range proxyHeaders {
			if addr, ok := firstAddr(c.GetHeader(h)); ok {
				c.Set(CtxRealIPKey, addr.String())
				c.Next()
				return
			}
		}
		c.Set(CtxRealIPKey, c.ClientIP())
		c.Next()
	}
}

// ClientIP returns the address RealIP resolved, falling back to gin's view
// when the middleware did not run.
func ClientIP(c *gin.Context) string {
	if ip := c.GetString(CtxRealIPKey); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}
