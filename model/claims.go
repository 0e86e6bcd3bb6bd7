package model

import "github.com/golang-jwt/jwt/v5"

// TokenTypeRefresh tags refresh tokens. Access tokens carry no type claim.
const TokenTypeRefresh = "refresh"

type AppClaims struct {
	Type string `json:"type,omitempty"`
	jwt.RegisteredClaims
}
