package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"catalog_admin/internal/catalogapi"
)

// AuthRequired vérifie le bearer token de l'admin et le transmet à l'API
// catalogue via le contexte de la requête. Un navigateur ne peut pas mettre
// d'en-tête sur un handshake websocket, le token peut donc venir de ?access_token=.
func AuthRequired(secret []byte, log zerolog.Logger) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))

	return func(c *gin.Context) {
		tokenString, problem := bearer(c)
		if problem != "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": problem})
			c.Abort()
			return
		}

		claims := jwt.MapClaims{}
		_, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
			return secret, nil
		})
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token expired"
			}
			log.Warn().Err(err).Str("path", c.FullPath()).Msg("❌ Token refusé")
			c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
			c.Abort()
			return
		}

		userID := firstString(claims, "user_id", "sub", "id")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user_id missing"})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("email", firstString(claims, "email"))
		c.Set("role", firstString(claims, "role"))
		c.Request = c.Request.WithContext(catalogapi.WithToken(c.Request.Context(), tokenString))
		c.Next()
	}
}

// bearer renvoie le token, ou le message expliquant son absence.
func bearer(c *gin.Context) (string, string) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if t := c.Query("access_token"); t != "" {
			return t, ""
		}
		return "", "Missing token"
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", "Invalid Authorization format"
	}
	return parts[1], ""
}

func firstString(claims jwt.MapClaims, names ...string) string {
	for _, n := range names {
		if s, ok := claims[n].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
