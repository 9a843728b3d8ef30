package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cloudapp/webapp/utils"
)

// Metrics counts every call and times the whole handler chain, keyed by the route template.
func Metrics(m *utils.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		endpoint := routeName(c)
		method := c.Request.Method
		m.RecordCall(c.Request.Context(), endpoint, method)

		start := time.Now()
		c.Next()

		m.ObserveRequest(c.Request.Context(), endpoint, method, c.Writer.Status(), time.Since(start))
	}
}

// routeName keeps metric cardinality bounded: ids never leak into the endpoint attribute.
func routeName(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return "unmatched"
}
