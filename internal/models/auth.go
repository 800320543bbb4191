package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthMethod names the credential scheme a request authenticated with.
type AuthMethod string

const (
	AuthMethodBasic  AuthMethod = "basic"
	AuthMethodBearer AuthMethod = "bearer"
	AuthMethodAPIKey AuthMethod = "api_key"
)

// LoginRequest holds credentials for issuing an access token.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
}

// Principal is the authenticated caller attached to the request context.
type Principal struct {
	UserID   int64      `json:"user_id,omitempty"`
	Username string     `json:"username"`
	Method   AuthMethod `json:"method"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
