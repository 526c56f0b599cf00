package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	purposeSession = "session"
	purposeReset   = "password_reset"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidClaims = errors.New("invalid claims")
)

// Tokens issues and parses HS256 tokens carrying a user id.
type Tokens struct {
	secret []byte
	expiry time.Duration
}

func NewTokens(secret string, expiry time.Duration) *Tokens {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &Tokens{secret: []byte(secret), expiry: expiry}
}

func (t *Tokens) GenerateToken(userID string) (string, error) {
	return t.generate(userID, purposeSession, t.expiry)
}

func (t *Tokens) ParseToken(tokenStr string) (string, error) {
	return t.parse(tokenStr, purposeSession)
}

func (t *Tokens) generateResetToken(userID string, ttl time.Duration) (string, error) {
	return t.generate(userID, purposeReset, ttl)
}

func (t *Tokens) parseResetToken(tokenStr string) (string, error) {
	return t.parse(tokenStr, purposeReset)
}

func (t *Tokens) generate(userID, purpose string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"purpose": purpose,
		"exp":     time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *Tokens) parse(tokenStr, purpose string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["user_id"] == nil {
		return "", ErrInvalidClaims
	}
	// tokens without a purpose predate reset tokens and count as sessions
	if p, _ := claims["purpose"].(string); p != purpose && !(p == "" && purpose == purposeSession) {
		return "", ErrInvalidClaims
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", ErrInvalidClaims
	}
	return userID, nil
}
