package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessCookieName  = "ws_access"
	RefreshCookieName = "ws_refresh"
	EmailCookieName   = "user_email"
)

const (
	useAccess  = "access"
	useRefresh = "refresh"
)

type tokenClaims struct {
	SessionID string `json:"sid"`
	Token     string `json:"tok"`
	Use       string `json:"use"`
	jwt.RegisteredClaims
}

// CookieCodec signs bearer tokens into cookie values so the browser
// copy cannot be tampered with. The email cookie stays plaintext; it
// only scopes history queries.
type CookieCodec struct {
	secret []byte
}

func NewCookieCodec(secret string) *CookieCodec {
	return &CookieCodec{secret: []byte(secret)}
}

func (cc *CookieCodec) Sign(sessionID, token, use string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		SessionID: sessionID,
		Token:     token,
		Use:       use,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cc.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s cookie: %w", use, err)
	}
	return signed, nil
}

func (cc *CookieCodec) Parse(value, use string) (sessionID, token string, err error) {
	var claims tokenClaims
	_, err = jwt.ParseWithClaims(value, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return cc.secret, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("parse %s cookie: %w", use, err)
	}
	if claims.Use != use {
		return "", "", fmt.Errorf("cookie use mismatch: want %s got %s", use, claims.Use)
	}

	return claims.SessionID, claims.Token, nil
}
