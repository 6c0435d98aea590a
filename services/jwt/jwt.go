package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	// AccessTokenValidity is how long an access token stays usable.
	AccessTokenValidity = 24 * time.Hour
	// RefreshTokenValidity is how long a refresh token stays usable.
	RefreshTokenValidity = 7 * 24 * time.Hour
)

// GenerateTokenPair returns a signed access and refresh token for the user.
func GenerateTokenPair(email string, secret string, userID uint) (string, string, error) {
	accessClaims := jwt.MapClaims{
		"id":    userID,
		"email": email,
		"type":  "access",
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(AccessTokenValidity).Unix(),
	}
	accessToken, err := signClaims(accessClaims, secret)
	if err != nil {
		return "", "", errors.Wrap(err, "signing access token")
	}

	refreshClaims := jwt.MapClaims{
		"id":   userID,
		"type": "refresh",
		"jti":  uuid.New().String(),
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(RefreshTokenValidity).Unix(),
	}
	refreshToken, err := signClaims(refreshClaims, secret)
	if err != nil {
		return "", "", errors.Wrap(err, "signing refresh token")
	}

	return accessToken, refreshToken, nil
}

func signClaims(claims jwt.MapClaims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateAndGetClaims parses and verifies a token, returning its claims.
func ValidateAndGetClaims(tokenString string, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// ValidateRefreshToken verifies a refresh token and returns the user id it
// was issued for.
func ValidateRefreshToken(tokenString string, secret string) (uint, error) {
	claims, err := ValidateAndGetClaims(tokenString, secret)
	if err != nil {
		return 0, err
	}
	if t, _ := claims["type"].(string); t != "refresh" {
		return 0, errors.New("not a refresh token")
	}
	id, ok := claims["id"].(float64)
	if !ok {
		return 0, errors.New("invalid user id in refresh token")
	}
	return uint(id), nil
}
