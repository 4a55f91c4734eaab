package httppage

import (
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	apperrors "github.com/kbukum/lazyseq/errors"
)

const bearerPrefix = "Bearer "

// signToken issues a short-lived HS256 token for one request.
func signToken(cfg *AuthConfig, now time.Time) (string, error) {
	claims := gojwt.RegisteredClaims{
		Subject:   cfg.Subject,
		Issuer:    cfg.Issuer,
		IssuedAt:  gojwt.NewNumericDate(now),
		ExpiresAt: gojwt.NewNumericDate(now.Add(cfg.TTL)),
	}
	signed, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", apperrors.Internal(err)
	}
	return signed, nil
}

// parseToken verifies an HS256 token and returns its claims.
func parseToken(secret []byte, raw string) (*gojwt.RegisteredClaims, error) {
	claims := &gojwt.RegisteredClaims{}
	_, err := gojwt.ParseWithClaims(raw, claims, func(*gojwt.Token) (any, error) {
		return secret, nil
	}, gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}), gojwt.WithExpirationRequired())
	if err != nil {
		return nil, apperrors.InvalidToken("bearer").WithCause(err)
	}
	return claims, nil
}
