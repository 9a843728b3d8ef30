package middleware

import "github.com/gin-gonic/gin"

// NoCache marks the response as uncacheable. Headers are set before the handler runs so error
// responses carry them too.
func NoCache() gin.HandlerFunc {
	return func(c *gin.Context) {
		SetNoCacheHeaders(c)
		c.Next()
	}
}

// SetNoCacheHeaders is NoCache for handlers outside a route chain, such as NoMethod.
func SetNoCacheHeaders(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("X-Content-Type-Options", "nosniff")
}
