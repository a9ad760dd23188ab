package utils

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var parseJWT = func(tokenStr string, keyFunc jwt.Keyfunc) (*jwt.Token, error) {
	return jwt.Parse(tokenStr, keyFunc)
}

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidClaims = errors.New("invalid token claims")
)

// UserRefFromToken validates the HMAC-signed token and returns the
// durable user reference from its subject claim. Membership is not
// checked anywhere; the token only attributes a connection to a user.
func UserRefFromToken(tokenStr, secret string) (string, error) {
	token, err := parseJWT(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidClaims
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrInvalidClaims
	}
	return sub, nil
}
