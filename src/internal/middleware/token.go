package middleware

import (
	"errors"
	"time"
	"whisp-chat-svc/src/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const accessTokenType = "access"

// Claims represents JWT token claims
type Claims struct {
	UserID    string `json:"userId"`
	TokenType string `json:"tokenType"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HMAC-signed access tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs an access token for userID and returns it with its expiry.
func (t *Tokens) Issue(userID string) (string, time.Time, error) {
	issuedAt := t.now()
	expiresAt := issuedAt.Add(t.ttl)

	claims := &Claims{
		UserID:    userID,
		TokenType: accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Verify checks signature, expiry and token type, and returns the user id.
func (t *Tokens) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", models.ErrTokenExpired
		}
		return "", models.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", models.ErrInvalidToken
	}

	if claims.TokenType != accessTokenType || claims.UserID == "" {
		return "", models.ErrInvalidToken
	}

	return claims.UserID, nil
}
