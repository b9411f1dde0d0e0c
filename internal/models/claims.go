package models

import "github.com/golang-jwt/jwt"

// Claims carries the caller identity resolved by the auth gate.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.StandardClaims
}
