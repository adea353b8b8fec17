package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/bitirgenalperen/ilkevim-sub000/pkg/appenv"

	"github.com/gin-gonic/gin"
)

const (
	corsMethods = "GET, POST, PATCH, DELETE, OPTIONS"
	corsHeaders = "Origin, Content-Type, Authorization, Accept-Language, X-Request-ID"
)

// ParseOrigins splits a comma-separated origin list, dropping blanks.
func ParseOrigins(raw string) map[string]struct{} {
	origins := make(map[string]struct{})
	for _, o := range strings.Split(raw, ",") {
		if origin := strings.TrimSpace(o); origin != "" {
			origins[origin] = struct{}{}
		}
	}
	return origins
}

// CORSMiddleware lets the site frontends call the API.
// Outside production any origin is allowed. In production the Origin header is
// reflected only when it appears in ALLOWED_ORIGINS.
func CORSMiddleware() gin.HandlerFunc {
	return corsWith(appenv.IsProduction() || gin.Mode() == gin.ReleaseMode, ParseOrigins(os.Getenv("ALLOWED_ORIGINS")))
}

func corsWith(isProd bool, allowed map[string]struct{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Vary", "Origin")

		origin := c.Request.Header.Get("Origin")
		allowOrigin := ""
		if !isProd {
			allowOrigin = "*"
		} else if _, ok := allowed[origin]; ok && origin != "" {
			allowOrigin = origin
		}
		if allowOrigin != "" {
			c.Header("Access-Control-Allow-Origin", allowOrigin)
			c.Header("Access-Control-Allow-Methods", corsMethods)
			c.Header("Access-Control-Allow-Headers", corsHeaders)
			c.Header("Access-Control-Expose-Headers", "X-Request-ID, Retry-After")
		}

		// Preflight from a disallowed origin gets no CORS headers and the browser blocks it.
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
