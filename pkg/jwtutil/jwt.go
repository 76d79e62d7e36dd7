package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"inventory-service/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.JWTConfig

// SessionClaims represents the JWT claims carried by an authenticated session.
// AccessCode and StoreLocation are the tenant binding: the middleware re-opens
// the record store from StoreLocation on every request, without going back to
// the tenant directory.
type SessionClaims struct {
	UserID        uint   `json:"user_id"`
	Username      string `json:"username"`
	Role          string `json:"role"`
	AccessCode    string `json:"access_code"`
	StoreLocation string `json:"store_location"`
	jwt.RegisteredClaims
}

// Initialize configures the package with the JWT settings from config
func Initialize(c *config.JWTConfig) {
	cfg = c
}

// GenerateToken creates a signed session token bound to a tenant store
func GenerateToken(userID uint, username, role, accessCode, storeLocation string) (string, error) {
	if cfg == nil {
		return "", errors.New("JWT configuration not provided")
	}

	claims := SessionClaims{
		UserID:        userID,
		Username:      username,
		Role:          role,
		AccessCode:    accessCode,
		StoreLocation: storeLocation,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(cfg.ExpirationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.SigningKey))
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*SessionClaims, error) {
	if cfg == nil {
		return nil, errors.New("JWT configuration not provided")
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.SigningKey), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
