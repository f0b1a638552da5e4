package utils

import (
	"errors"
	"time"

	"parkventure/config"

	"github.com/golang-jwt/jwt"
)

func secretKey() []byte {
	return []byte(config.AppConfig.JWTSecret)
}

// GenerateToken creates a signed JWT for the given principal. Used by
// the identity service; the booking core only verifies.
func GenerateToken(subject, role, parkID string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(duration).Unix(),
	}
	if parkID != "" {
		claims["parkId"] = parkID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// ExtractPrincipalFromToken verifies the token and returns the subject,
// role, and optional park id claims.
func ExtractPrincipalFromToken(tokenString string) (subject, role, parkID string, err error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey(), nil
	})
	if err != nil || !token.Valid {
		return "", "", "", errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", "", errors.New("invalid token claims")
	}
	subject, _ = claims["sub"].(string)
	role, _ = claims["role"].(string)
	parkID, _ = claims["parkId"].(string)
	if subject == "" {
		return "", "", "", errors.New("token missing subject")
	}
	return subject, role, parkID, nil
}
