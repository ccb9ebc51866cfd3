package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExtractExpiry reads the exp claim from a bearer token without verifying
// its signature. The client treats the token as opaque; signature
// verification is the authority's job. Used when an auth response carries
// no explicit expires_in.
func ExtractExpiry(bearer string) (time.Time, error) {
	tok, _, err := jwt.NewParser().ParseUnverified(bearer, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("parse bearer token: %w", err)
	}
	exp, err := tok.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("bearer token has no exp claim")
	}
	return exp.Time, nil
}
