package auth

import "github.com/golang-jwt/jwt/v5"

// Authenticator issues and checks the bearer tokens handed to HTTP clients.
type Authenticator interface {
	GenerateToken(userID string) (string, error)
	ValidateToken(token string) (*jwt.Token, error)
}
