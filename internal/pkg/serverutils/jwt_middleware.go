package serverutils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// NewJwtMiddleware guards routes with an HS256 bearer token. An empty secret
// leaves the API open.
func NewJwtMiddleware(secret string) fiber.Handler {
	if secret == "" {
		return func(ctx *fiber.Ctx) error { return ctx.Next() }
	}

	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Missing token"))
		}

		token, err := jwt.Parse(authHeader[7:], func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Invalid token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(401, "Invalid claims"))
		}

		if sub, err := claims.GetSubject(); err == nil {
			ctx.Locals("subject", sub)
		}
		return ctx.Next()
	}
}
