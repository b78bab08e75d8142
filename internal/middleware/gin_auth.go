package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinGateway adapts the net/http Gateway to Gin. Resolution happens for
// every request carrying a phantom token; the handler chain is aborted
// only when the gateway already wrote a rejection.
func GinGateway(gateway *Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Bridge handler to allow net/http middleware execution
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})

		handler := gateway.Handler(next)

		handler.ServeHTTP(c.Writer, c.Request)

		if c.Writer.Written() {
			c.Abort()
			return
		}
	}
}

// GinRequireIdentity rejects requests the gateway passed through
// anonymously. Use it on route groups that need an authenticated caller.
func GinRequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := IdentityFromContext(c.Request.Context()); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Not authenticated",
			})
			return
		}
		c.Next()
	}
}
