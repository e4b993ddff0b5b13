package tokenizer

import "github.com/golang-jwt/jwt/v5"

// AccessClaims combines standard claims with the principal fields
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}
