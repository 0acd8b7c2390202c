package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid session token")

// Tokens signs and parses session tokens with HS256.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is how long an issued token stays valid.
func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// Issue signs s and returns the token with its expiry.
func (t *Tokens) Issue(s Session) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  s.UserID,
		"name": s.UserName,
		"role": s.Role,
		"dept": s.Department,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies the signature and expiry of raw and returns its session.
func (t *Tokens) Parse(raw string) (Session, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, ErrInvalidToken
	}
	s := Session{
		UserID:     claimString(claims, "sub"),
		UserName:   claimString(claims, "name"),
		Role:       claimString(claims, "role"),
		Department: claimString(claims, "dept"),
	}
	if s.UserID == "" {
		return Session{}, ErrInvalidToken
	}
	return s, nil
}

func claimString(c jwt.MapClaims, key string) string {
	v, _ := c[key].(string)
	return v
}
