package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the advisory fields read from a backend access token. The site does not
// hold the backend's signing key, so they only drive UI state; the backend verifies
// the token on every call.
type Claims struct {
	Subject   string
	Role      string
	Name      string
	ExpiresAt time.Time
}

type tokenClaims struct {
	UID  string `json:"uid,omitempty"`
	Role string `json:"role,omitempty"`
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// ReadClaims parses token without verifying its signature. Opaque tokens report false.
func ReadClaims(token string) (Claims, bool) {
	var tc tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &tc); err != nil {
		return Claims{}, false
	}
	c := Claims{Subject: tc.UID, Role: tc.Role, Name: tc.Name}
	if c.Subject == "" {
		c.Subject = tc.Subject
	}
	if tc.ExpiresAt != nil {
		c.ExpiresAt = tc.ExpiresAt.Time
	}
	return c, true
}
