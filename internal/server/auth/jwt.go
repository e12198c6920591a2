package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gabrielslopes/labelcheck/internal/common"
	"github.com/gabrielslopes/labelcheck/internal/server/models"
)

// Claims carries the operator identity inside a session token. The token ID
// (jti) doubles as the session identifier keying per-session scan state.
type Claims struct {
	jwt.RegisteredClaims
	UserID string      `json:"uid"`
	Login  string      `json:"login"`
	Role   models.Role `json:"role"`
}

// SessionID returns the session identifier embedded in the token.
func (c *Claims) SessionID() string {
	return c.ID
}

// GenerateSessionToken signs an HS256 token for the given user with a fresh
// session id, valid for validityDuration.
func GenerateSessionToken(user *models.User, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID: user.ID,
		Login:  user.Login,
		Role:   user.Role,
	})

	return token.SignedString(secretKey)
}

// ParseSessionToken validates tokenString and returns its claims.
func ParseSessionToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, common.ErrInvalidCredentials
	}

	return claims, nil
}
