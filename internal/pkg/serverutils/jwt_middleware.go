package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const userIdLocal = "user_id"

var errInvalidToken = errors.New("invalid token")

// NewJwtMiddleware verifies an HS256 bearer token and stores its user_id
// claim in the request locals. Websocket upgrades may pass the token as the
// "token" query parameter since browsers cannot set headers there.
func NewJwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := BearerToken(ctx)
		if tokenStr == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Missing token"))
		}

		userId, err := ParseUserToken(tokenStr, secret)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
		}

		ctx.Locals(userIdLocal, userId)
		return ctx.Next()
	}
}

// BearerToken returns the token from the Authorization header, falling back
// to the "token" query parameter.
func BearerToken(ctx *fiber.Ctx) string {
	authHeader := ctx.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ctx.Query("token")
}

func ParseUserToken(tokenStr, secret string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return uuid.Nil, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errInvalidToken
	}

	raw, _ := claims["user_id"].(string)
	userId, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: user_id claim", errInvalidToken)
	}
	return userId, nil
}

// SignUserToken issues a token accepted by NewJwtMiddleware. Used by tests
// and local tooling; production tokens come from the auth service.
func SignUserToken(userId uuid.UUID, secret string) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userId.String(),
	}).SignedString([]byte(secret))
}

// UserId returns the caller set by NewJwtMiddleware.
func UserId(ctx *fiber.Ctx) uuid.UUID {
	if id, ok := ctx.Locals(userIdLocal).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
