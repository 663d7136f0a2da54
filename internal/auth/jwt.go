package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type JWTAuthenticator struct {
	secret string
	iss    string
	exp    time.Duration
	now    func() time.Time
}

func NewJWTAuthenticator(secret, iss string, exp time.Duration) *JWTAuthenticator {
	return &JWTAuthenticator{secret: secret, iss: iss, exp: exp, now: time.Now}
}

// GenerateToken signs a session token whose subject is userID.
func (a *JWTAuthenticator) GenerateToken(userID string) (string, error) {
	now := a.now()
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": now.Add(a.exp).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"iss": a.iss,
		"aud": a.iss,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.secret))
}

func (a *JWTAuthenticator) ValidateToken(token string) (*jwt.Token, error) {
	return jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(a.secret), nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithAudience(a.iss),
		jwt.WithIssuer(a.iss),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(a.now),
	)
}

// Subject returns the user id carried by a validated token.
func Subject(token *jwt.Token) (string, error) {
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}
