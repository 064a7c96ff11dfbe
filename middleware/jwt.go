package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"quizcore/config"
	"quizcore/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const principalKey = "principal"

// JWTMiddleware is a middleware to check for valid JWT token in the request.
// Tokens are issued elsewhere; they carry the caller's userId and role.
func JWTMiddleware(c *fiber.Ctx) error {
	// Get the token from the Authorization header
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Missing or invalid Authorization header", nil)
	}

	// The token should be prefixed with "Bearer "
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid Authorization header format", nil)
	}
	tokenString := authHeader[len("Bearer "):]

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTKey), nil
	})
	if err != nil || !token.Valid {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid or expired token", nil)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid token payload", nil)
	}
	principal, ok := principalFromClaims(claims)
	if !ok {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid token payload", nil)
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// principalFromClaims reads userId and role. userId may be a string or a
// number, since JSON numbers decode as float64.
func principalFromClaims(claims jwt.MapClaims) (models.Principal, bool) {
	var userID string
	switch v := claims["userId"].(type) {
	case string:
		userID = v
	case float64:
		userID = strconv.FormatInt(int64(v), 10)
	}
	role, _ := claims["role"].(string)

	principal := models.Principal{UserID: userID, Role: models.Role(strings.ToLower(role))}
	if principal.UserID == "" || !principal.Role.IsValid() {
		return models.Principal{}, false
	}
	return principal, true
}

// CurrentPrincipal returns the caller stored by JWTMiddleware
func CurrentPrincipal(c *fiber.Ctx) (models.Principal, bool) {
	principal, ok := c.Locals(principalKey).(models.Principal)
	return principal, ok
}
