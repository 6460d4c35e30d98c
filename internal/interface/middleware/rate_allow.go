package middleware

import (
	"net"

	"github.com/gin-gonic/gin"
)

// AllowPrivateIP bypasses the limiter for loopback and RFC 1918 clients,
// e.g. in-cluster probes scraping /debug/vars.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}

// AllowSafeMethods bypasses the limiter for GET and HEAD.
func AllowSafeMethods() AllowFunc {
	return func(c *gin.Context) bool {
		m := c.Request.Method
		return m == "GET" || m == "HEAD"
	}
}
