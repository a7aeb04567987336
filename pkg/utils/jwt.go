package utils

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

// UserClaimsKey stores *UserClaims in both fiber Locals and the request's user context.
const UserClaimsKey contextKey = "user_claims"

var (
	jwtSecret     = []byte("secret")
	jwtExpiration = 72 * time.Hour
)

// SetSecret allows injecting the secret from config
func SetSecret(secret string) {
	jwtSecret = []byte(secret)
}

// SetExpiration overrides the token lifetime.
func SetExpiration(d time.Duration) {
	if d > 0 {
		jwtExpiration = d
	}
}

type UserClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func GenerateToken(userID, email, role string) (string, time.Time, error) {
	expiresAt := time.Now().Add(jwtExpiration)
	claims := UserClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret)
	return signed, expiresAt, err
}

func ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		if claims.UserID == "" || claims.Role == "" {
			return nil, errors.New("token is missing identity claims")
		}
		return claims, nil
	}

	return nil, jwt.ErrTokenSignatureInvalid
}

// ClaimsFromCtx returns the claims set by AuthMiddleware.
func ClaimsFromCtx(c *fiber.Ctx) (*UserClaims, bool) {
	claims, ok := c.Locals(UserClaimsKey).(*UserClaims)
	return claims, ok && claims != nil
}

// ClaimsFromContext is the context.Context counterpart of ClaimsFromCtx.
func ClaimsFromContext(ctx context.Context) (*UserClaims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(*UserClaims)
	return claims, ok && claims != nil
}

// WithClaims attaches claims to ctx.
func WithClaims(ctx context.Context, claims *UserClaims) context.Context {
	return context.WithValue(ctx, UserClaimsKey, claims)
}
