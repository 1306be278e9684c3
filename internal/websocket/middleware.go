package websocket

import (
	"github.com/gin-gonic/gin"
)

// TokenQueryParam é o parâmetro usado por navegadores, que não enviam headers no handshake
const TokenQueryParam = "token"

// TokenFromQuery copia ?token= para o header Authorization antes do BearerAuth
func TokenFromQuery() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			if token := c.Query(TokenQueryParam); token != "" {
				c.Request.Header.Set("Authorization", "Bearer "+token)
			}
		}
		c.Next()
	}
}
