package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/cleberrangel/jusbr-consulta/internal/model"
)

// AuthConfig contém a configuração do middleware de autenticação.
// TokenAPIHash (bcrypt) tem precedência sobre TokenAPI.
type AuthConfig struct {
	TokenAPI     string
	TokenAPIHash string
}

// HashToken gera o hash bcrypt de um token para uso em TOKEN_API_HASH
func HashToken(token string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	return string(bytes), err
}

// valid compara o token recebido com a credencial configurada
func (cfg AuthConfig) valid(token string) bool {
	if cfg.TokenAPIHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(cfg.TokenAPIHash), []byte(token)) == nil
	}
	if cfg.TokenAPI == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(cfg.TokenAPI)) == 1
}

// BearerAuth retorna um middleware que valida o token Bearer
func BearerAuth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
				Error: "header Authorization ausente",
			})
			return
		}

		// Extrai o token do formato "Bearer {token}"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
				Error: "formato inválido, esperado: Bearer {token}",
			})
			return
		}

		if !cfg.valid(strings.TrimSpace(parts[1])) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
				Error: "token inválido",
			})
			return
		}

		c.Next()
	}
}
