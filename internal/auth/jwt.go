package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultTokenTTL = 24 * time.Hour
	roleDevice      = "device"
)

// JWTClaims represents the claims in a device token
type JWTClaims struct {
	DeviceID string `json:"device_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and validates HS256 device tokens
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a token manager. A zero ttl means 24 hours.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("JWT secret is required")
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}, nil
}

// GenerateDeviceToken generates a JWT token for device authentication
func (m *TokenManager) GenerateDeviceToken(deviceID string) (string, time.Time, error) {
	if deviceID == "" {
		return "", time.Time{}, errors.New("device ID is required")
	}

	now := time.Now()
	expiresAt := now.Add(m.ttl)
	claims := &JWTClaims{
		DeviceID: deviceID,
		Role:     roleDevice,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   deviceID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken validates a device token and returns its claims
func (m *TokenManager) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Role != roleDevice || claims.DeviceID == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
