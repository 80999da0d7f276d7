package middleware

import (
	"net/http"
	"strings"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ClaimsKey is the gin context key holding the parsed *JWTClaims.
const ClaimsKey = "claims"

// Roles known to the backend. Station roles map 1:1 to the pub/sub channels
// their screens subscribe to.
const (
	RolCliente       = "cliente"
	RolCajero        = "cajero"
	RolCocinero      = "cocinero"
	RolDelivery      = "delivery"
	RolAdministrador = "administrador"
)

// JWTClaims are the custom claims embedded in every access token. Tokens
// are issued by the identity service; this backend only verifies them.
type JWTClaims struct {
	UserID     string  `json:"user_id"`
	Email      string  `json:"email"`
	Rol        string  `json:"rol"`
	SucursalID *string `json:"sucursal_id"`
	jwt.RegisteredClaims
}

func parsearToken(tokenStr, secret string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		// Reject alg=none and RSA-signed tokens outright
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

// JWTAuth validates the Bearer token on every protected route and stores
// the claims under ClaimsKey for handlers downstream.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				apierror.New(apierror.CodeUnauthorized, "Autenticacion requerida"))
			return
		}

		claims, err := parsearToken(tokenStr, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				apierror.New(apierror.CodeUnauthorized, "Token invalido o expirado"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRole rejects requests whose token role is not in the allowed list.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims != nil {
			for _, r := range roles {
				if claims.Rol == r {
					c.Next()
					return
				}
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden,
			apierror.New(apierror.CodeForbidden, "Permisos insuficientes"))
	}
}

// GetClaims retrieves the typed claims, or nil outside an authenticated route.
func GetClaims(c *gin.Context) *JWTClaims {
	v, _ := c.Get(ClaimsKey)
	claims, _ := v.(*JWTClaims)
	return claims
}
