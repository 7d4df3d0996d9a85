package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

const ClaimsKey = "claims"

type TokenValidator interface {
	ValidateToken(tokenStr, expectedType string) (jwt.MapClaims, error)
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "Acesso não autorizado",
		"message": "Você precisa estar autenticado para acessar este recurso",
	})
}

// bearerToken reads the token from the Authorization header, falling back
// to the "token" query parameter.
func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && scheme == "Bearer" {
			return strings.TrimSpace(token)
		}
	}
	return c.Query("token")
}

// RequireAuth validates an access token and stores its claims under ClaimsKey.
func RequireAuth(validator TokenValidator, tokenType string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			logger.Warn("Unauthorized access attempt", zap.String("path", c.Request.URL.Path), zap.String("client_ip", c.ClientIP()))
			unauthorized(c)
			return
		}

		claims, err := validator.ValidateToken(token, tokenType)
		if err != nil {
			logger.Warn("Unauthorized access attempt",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
				zap.Error(err),
			)
			unauthorized(c)
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// Claims returns the token claims stored by RequireAuth.
func Claims(c *gin.Context) jwt.MapClaims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(jwt.MapClaims); ok {
			return claims
		}
	}
	return jwt.MapClaims{}
}

// RequireRole must run after RequireAuth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if r, _ := Claims(c)["role"].(string); r != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Acesso negado"})
			return
		}
		c.Next()
	}
}
