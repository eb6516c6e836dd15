package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenPrefix marks a site token.
const TokenPrefix = "st_"

var ErrTokenPrefix = errors.New("token is not a site token")

type Claims struct {
	SiteID string `json:"siteId"`
	jwt.RegisteredClaims
}

// GenerateToken issues a site token: the prefix followed by an HS256 JWT.
// Site tokens do not expire.
func GenerateToken(secret, siteID string) (string, error) {
	claims := Claims{
		SiteID: siteID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  siteID,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}
	return TokenPrefix + signed, nil
}

func ValidateToken(secret, tokenStr string) (*Claims, error) {
	if !strings.HasPrefix(tokenStr, TokenPrefix) {
		return nil, ErrTokenPrefix
	}
	token, err := jwt.ParseWithClaims(strings.TrimPrefix(tokenStr, TokenPrefix), &Claims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SiteID == "" {
		return nil, jwt.ErrSignatureInvalid
	}
	return claims, nil
}
