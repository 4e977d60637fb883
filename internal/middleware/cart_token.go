// internal/middleware/cart_token.go
package middleware

import (
	"github.com/gin-gonic/gin"
)

const CartTokenHeader = "X-Cart-Token"

// CartToken copies the client's cart token header into the request context.
// An empty token is allowed; the cart handlers issue a fresh one and echo it
// back in the response header.
func CartToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := c.GetHeader(CartTokenHeader); token != "" {
			c.Set("cart_token", token)
		}
		c.Next()
	}
}

func GetCartToken(c *gin.Context) string {
	if token, exists := c.Get("cart_token"); exists {
		if tokenStr, ok := token.(string); ok {
			return tokenStr
		}
	}
	return ""
}
