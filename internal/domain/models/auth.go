package models

import "github.com/golang-jwt/jwt/v5"

// Claims is the bearer token payload issued by the identity provider.
// The subject is the user id; session_id identifies the login session.
type Claims struct {
	jwt.RegisteredClaims        // sub, iss, aud, exp, iat
	Email                string `json:"email"`
	Role                 string `json:"role"` // "authenticated" or "anon"
	SessionID            string `json:"session_id"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *Claims) GetUserID() string {
	return c.Subject
}
